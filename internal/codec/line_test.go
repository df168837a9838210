package codec

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestLineCodec(t *testing.T) *LineCodec {
	t.Helper()
	lc, err := NewLineCodec(context.Background(), DefaultConfiguration(), newStubDirectory())
	require.NoError(t, err)
	return lc
}

// attrsOf builds an ordered set from alternating code, value arguments.
func attrsOf(pairs ...any) *Attributes {
	attrs := NewAttributes(len(pairs) / 2)
	for i := 0; i < len(pairs); i += 2 {
		code := pairs[i].(string)
		switch v := pairs[i+1].(type) {
		case string:
			attrs.Set(code, StringValue(v))
		case bool:
			attrs.Set(code, BoolValue(v))
		case []string:
			attrs.Set(code, ListValue(v))
		case Value:
			attrs.Set(code, v)
		default:
			panic("attrsOf: unsupported value type")
		}
	}
	return attrs
}

func assertAttributes(t *testing.T, want, got *Attributes) {
	t.Helper()
	require.NotNil(t, got)
	assert.Equal(t, want.Keys(), got.Keys(), "attribute order")
	for _, code := range want.Keys() {
		w, _ := want.Get(code)
		g, ok := got.Get(code)
		require.True(t, ok, "missing %s", code)
		assert.True(t, w.Equal(g), "%s: want %v (%s), got %v (%s)", code, w, w.Kind(), g, g.Kind())
	}
}

// ----------------------------------------------------------------------------
// Construction
// ----------------------------------------------------------------------------

func TestNewLineCodec(t *testing.T) {
	lc := newTestLineCodec(t)
	assert.Equal(t, EntityType{ID: testEntityTypeID, Code: DefaultEntityTypeCode}, lc.EntityType())
}

func TestNewLineCodec_UnknownEntityType(t *testing.T) {
	cfg := DefaultConfiguration()
	cfg.EntityTypeCode = "catalog_category"

	_, err := NewLineCodec(context.Background(), cfg, newStubDirectory())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEntityTypeNotFound))
}

func TestNewLineCodec_NilDirectory(t *testing.T) {
	_, err := NewLineCodec(context.Background(), DefaultConfiguration(), nil)
	assert.ErrorIs(t, err, ErrConfigurationMissing)
}

func TestNewLineCodec_InvalidConfiguration(t *testing.T) {
	cfg := DefaultConfiguration()
	cfg.MultipleFieldDelimiter = DefaultEnclosure

	_, err := NewLineCodec(context.Background(), cfg, newStubDirectory())
	assert.ErrorIs(t, err, ErrInvalidDelimiters)
}

func TestLineCodec_ResolvesEntityTypeOnce(t *testing.T) {
	ctx := context.Background()
	dir := new(mockDirectory)
	dir.On("EntityType", ctx, DefaultEntityTypeCode).
		Return(EntityType{ID: 9, Code: DefaultEntityTypeCode}, nil).Once()
	dir.On("Attribute", ctx, 9, "color").
		Return(AttributeDescriptor{Code: "color", EntityTypeID: 9, FrontendInput: InputPlain}, nil)

	lc, err := NewLineCodec(ctx, DefaultConfiguration(), dir)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		text, ok, err := lc.Normalize(ctx, attrsOf("color", "red"), true)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "color=red", text)
	}

	dir.AssertNumberOfCalls(t, "EntityType", 1)
	dir.AssertNumberOfCalls(t, "Attribute", 3)
}

// ----------------------------------------------------------------------------
// Normalize
// ----------------------------------------------------------------------------

func TestLineCodec_NormalizeEmpty(t *testing.T) {
	lc := newTestLineCodec(t)

	for name, attrs := range map[string]*Attributes{
		"nil":   nil,
		"zero":  {},
		"empty": NewAttributes(0),
	} {
		t.Run(name, func(t *testing.T) {
			text, ok, err := lc.Normalize(context.Background(), attrs, true)
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Empty(t, text)
		})
	}
}

func TestLineCodec_Normalize(t *testing.T) {
	tests := []struct {
		name  string
		attrs *Attributes
		want  string
	}{
		{
			name:  "plain pairs",
			attrs: attrsOf("ac_01", "ov_01", "ac_02", "ov_02"),
			want:  `ac_01=ov_01,ac_02=ov_02`,
		},
		{
			name: "boolean select multiselect",
			attrs: attrsOf(
				"my_boolean_attribute", true,
				"my_select_attribute", "selected_value_01",
				"my_multiselect_attribute", []string{"multiselected_value_01", "multiselected_value_02"},
			),
			want: `my_boolean_attribute=true,my_select_attribute=selected_value_01,my_multiselect_attribute=multiselected_value_01|multiselected_value_02`,
		},
		{
			name:  "boolean false",
			attrs: attrsOf("my_boolean_attribute", false),
			want:  `my_boolean_attribute=false`,
		},
		{
			name:  "boolean given a string",
			attrs: attrsOf("my_boolean_attribute", "true"),
			want:  `my_boolean_attribute=false`,
		},
		{
			name: "comma separated text",
			attrs: attrsOf(
				"Application", "Empfangshallen,Postabteilungen,Arztpraxen,Verkaufsräume,Reisebüros",
				"BulletText2", "<strong>Material:</strong>&nbsp;Polyethylen, transparent <br><strong>Fachtiefe:</strong>&nbsp;45 mm <br><strong>Lieferumfang:</strong>&nbsp;inkl. Befestigungsmaterial",
			),
			want: `"Application=Empfangshallen,Postabteilungen,Arztpraxen,Verkaufsräume,Reisebüros","BulletText2=<strong>Material:</strong>&nbsp;Polyethylen, transparent <br><strong>Fachtiefe:</strong>&nbsp;45 mm <br><strong>Lieferumfang:</strong>&nbsp;inkl. Befestigungsmaterial"`,
		},
		{
			name:  "empty multiselect",
			attrs: attrsOf("size", []string{}),
			want:  `size=`,
		},
		{
			name:  "value containing the pair separator",
			attrs: attrsOf("ac_01", "x=y=z"),
			want:  `"ac_01=""x=y=z"""`,
		},
		{
			name:  "multiselect option containing the value delimiter",
			attrs: attrsOf("size", []string{"a|b", "c"}),
			want:  `"size=""""""a|b""""|c"""`,
		},
	}

	lc := newTestLineCodec(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := lc.Normalize(context.Background(), tt.attrs, true)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLineCodec_NormalizeUnknownAttribute(t *testing.T) {
	lc := newTestLineCodec(t)

	_, _, err := lc.Normalize(context.Background(), attrsOf("ac_01", "x", "no_such_code", "y"), true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAttributeNotFound)
	assert.Contains(t, err.Error(), "no_such_code")
}

func TestLineCodec_NormalizeWithoutPacking(t *testing.T) {
	lc := newTestLineCodec(t)

	// No lookup happens, so unknown codes are fine.
	got, ok, err := lc.Normalize(context.Background(), attrsOf("anything", "a,b", "size", "3|4"), false)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `"anything=a,b",size=3|4`, got)

	_, _, err = lc.Normalize(context.Background(), attrsOf("size", []string{"3", "4"}), false)
	assert.ErrorIs(t, err, ErrValueKind)
}

func TestLineCodec_CodesNeedingEnclosure(t *testing.T) {
	lc := newTestLineCodec(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		attrs *Attributes
		want  string
	}{
		{"leading enclosure", attrsOf(`"x`, "v"), `"""""""x""=v"`},
		{"separator in code", attrsOf("a=b", "c", "plain", `"q`), `"""a=b""=c","plain=""""""q"""`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, ok, err := lc.Normalize(ctx, tt.attrs, false)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, tt.want, text)

			got, err := lc.Denormalize(ctx, text, false)
			require.NoError(t, err)
			assertAttributes(t, tt.attrs, got)
		})
	}
}

func TestLineCodec_NormalizeKindMismatch(t *testing.T) {
	lc := newTestLineCodec(t)

	_, _, err := lc.Normalize(context.Background(), attrsOf("size", "3,6 mm"), true)
	assert.ErrorIs(t, err, ErrValueKind)
}

// ----------------------------------------------------------------------------
// Denormalize
// ----------------------------------------------------------------------------

func TestLineCodec_DenormalizeEmpty(t *testing.T) {
	lc := newTestLineCodec(t)

	got, err := lc.Denormalize(context.Background(), "", true)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 0, got.Len())
}

func TestLineCodec_Denormalize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want *Attributes
	}{
		{
			name: "enclosed pairs",
			text: `"ac_01=ov_01","ac_02=ov_02"`,
			want: attrsOf("ac_01", "ov_01", "ac_02", "ov_02"),
		},
		{
			name: "single pair",
			text: `"delivery_date_1=2019011"`,
			want: attrsOf("delivery_date_1", "2019011"),
		},
		{
			name: "without enclosure",
			text: `my_boolean_attribute=true,my_select_attribute=selected_value_01,my_multiselect_attribute=multiselected_value_01|multiselected_value_02`,
			want: attrsOf(
				"my_boolean_attribute", true,
				"my_select_attribute", "selected_value_01",
				"my_multiselect_attribute", []string{"multiselected_value_01", "multiselected_value_02"},
			),
		},
		{
			name: "with enclosure",
			text: `"my_boolean_attribute=true","my_select_attribute=selected_value_01","my_multiselect_attribute=multiselected_value_01|multiselected_value_02"`,
			want: attrsOf(
				"my_boolean_attribute", true,
				"my_select_attribute", "selected_value_01",
				"my_multiselect_attribute", []string{"multiselected_value_01", "multiselected_value_02"},
			),
		},
		{
			name: "partially enclosed values with commas",
			text: `my_boolean_attribute=true,"my_select_attribute=selected_value,01","my_multiselect_attribute=multiselected_value,01|multiselected_value,02"`,
			want: attrsOf(
				"my_boolean_attribute", true,
				"my_select_attribute", "selected_value,01",
				"my_multiselect_attribute", []string{"multiselected_value,01", "multiselected_value,02"},
			),
		},
		{
			name: "lenient boolean",
			text: `my_boolean_attribute=Yes`,
			want: attrsOf("my_boolean_attribute", true),
		},
		{
			name: "unrecognised boolean",
			text: `my_boolean_attribute=maybe`,
			want: attrsOf("my_boolean_attribute", false),
		},
		{
			name: "code without value",
			text: `ac_01=a,ac_02`,
			want: attrsOf("ac_01", "a", "ac_02", ""),
		},
		{
			name: "empty multiselect",
			text: `size=`,
			want: attrsOf("size", ListValue(nil)),
		},
		{
			name: "empty pair skipped",
			text: `ac_01=a,,ac_02=b`,
			want: attrsOf("ac_01", "a", "ac_02", "b"),
		},
		{
			name: "duplicate code keeps last value and first position",
			text: `ac_01=a,ac_02=b,ac_01=c`,
			want: attrsOf("ac_01", "c", "ac_02", "b"),
		},
		{
			name: "segments past the second are dropped",
			text: `ac_01=a=b=c`,
			want: attrsOf("ac_01", "a"),
		},
		{
			name: "enclosed value keeps its pair separators",
			text: `"ac_01=""x=y=z"""`,
			want: attrsOf("ac_01", "x=y=z"),
		},
	}

	lc := newTestLineCodec(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := lc.Denormalize(context.Background(), tt.text, true)
			require.NoError(t, err)
			assertAttributes(t, tt.want, got)
		})
	}
}

func TestLineCodec_DenormalizeColumnCell(t *testing.T) {
	// The cell arrives still enclosed as a column of the import file, so the
	// column level is decoded first.
	vc := newTestValueCodec(t)
	lc := newTestLineCodec(t)

	t.Run("multiselect with commas", func(t *testing.T) {
		column := vc.Decode(`"""size=3,6 mm|3,8 mm"",""features_bags=Audio Pocket|Waterproof"""`)
		require.Len(t, column, 1)

		got, err := lc.Denormalize(context.Background(), column[0], true)
		require.NoError(t, err)
		assertAttributes(t, attrsOf(
			"size", []string{"3,6 mm", "3,8 mm"},
			"features_bags", []string{"Audio Pocket", "Waterproof"},
		), got)
	})

	t.Run("many attributes", func(t *testing.T) {
		column := vc.Decode(manyAttributesColumn)
		require.Len(t, column, 1)

		got, err := lc.Denormalize(context.Background(), column[0], true)
		require.NoError(t, err)
		assert.Equal(t, 25, got.Len())
		assertAttributes(t, attrsOf(
			"ClothingSize", "Eine Größe XXL",
			"Colours", "Gelb",
			"Description", "Schutzoverall",
			"FlagNew", "Nein",
			"FlagSample", "Ja",
			"Manufacturer", "DS SafetyWear",
			"Material", "Vliesstoff",
			"MergeUomFactor", "Stück",
			"Packaging", "Stück",
			"PublishTo", "Web & Catalogue",
			"Type", "Mit Kapuze, verklebten Nähten und extra Polyethylenbeschichtung",
			"BulletText2", manyAttributesBulletText,
			"Category1Header", "Erste Hilfe & Arbeitsschutzausrüstung",
			"Category3Header", "Schutzkleidung",
			"Legend", "Schutzoveralls",
			"MainlinePageNumber", "U-370",
			"Properties", "CE-Kategorie III, Typ 3, 4, 5",
			"PubCodeRankingValue", "13825",
			"SpaceCode", "CJE: TYVEK-SCHUTZKLEIDUNG",
			"StyleNo", "195609",
			"StyleNoHeader", "Artikel-<br>nummer",
			"SubHeader", "Optimaler Schutz vor Staub, Farbe, Schadstoffen",
			"TableHead1", "Geben Sie bitte die gewünschte Größe an.",
			"YNumberMaterial", "Y2932705",
			"SP_STATUS", "CURRENT",
		), got)
	})
}

func TestLineCodec_DenormalizeUnknownAttribute(t *testing.T) {
	lc := newTestLineCodec(t)

	_, err := lc.Denormalize(context.Background(), `ac_01=a,mystery=b`, true)
	assert.ErrorIs(t, err, ErrAttributeNotFound)

	got, err := lc.Denormalize(context.Background(), `ac_01=a,mystery=b`, false)
	require.NoError(t, err)
	assertAttributes(t, attrsOf("ac_01", "a", "mystery", "b"), got)
}

func TestLineCodec_DenormalizeWithoutUnpacking(t *testing.T) {
	lc := newTestLineCodec(t)

	got, err := lc.Denormalize(context.Background(), `my_boolean_attribute=on,size=S|M`, false)
	require.NoError(t, err)
	assertAttributes(t, attrsOf("my_boolean_attribute", "on", "size", "S|M"), got)
}

func TestLineCodec_DirectoryFailurePropagates(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("connection reset")

	dir := new(mockDirectory)
	dir.On("EntityType", ctx, DefaultEntityTypeCode).Return(EntityType{ID: 4, Code: DefaultEntityTypeCode}, nil)
	dir.On("Attribute", ctx, 4, mock.Anything).Return(AttributeDescriptor{}, boom)

	lc, err := NewLineCodec(ctx, DefaultConfiguration(), dir)
	require.NoError(t, err)

	_, _, err = lc.Normalize(ctx, attrsOf("color", "red"), true)
	assert.ErrorIs(t, err, boom)

	_, err = lc.Denormalize(ctx, "color=red", true)
	assert.ErrorIs(t, err, boom)
}

// ----------------------------------------------------------------------------
// Round trip
// ----------------------------------------------------------------------------

func TestLineCodec_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		attrs *Attributes
	}{
		{"plain", attrsOf("ac_01", "ov_01", "ac_02", "ov_02")},
		{"mixed", attrsOf(
			"my_boolean_attribute", true,
			"my_select_attribute", "selected_value,01",
			"my_multiselect_attribute", []string{"multiselected_value,01", "multiselected_value \"02\""},
		)},
		{"separators in values", attrsOf(
			"size", []string{"a|b", "c"},
			"ac_01", "x=y=z",
			"ac_02", `"lead`,
		)},
		{"lone empty option", attrsOf("features_bags", []string{""})},
		{"boolean false", attrsOf("my_boolean_attribute", false)},
		{"whitespace", attrsOf("Description", " padded\tvalue\n")},
	}

	lc := newTestLineCodec(t)
	vc := newTestValueCodec(t)
	ctx := context.Background()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, ok, err := lc.Normalize(ctx, tt.attrs, true)
			require.NoError(t, err)
			require.True(t, ok)

			got, err := lc.Denormalize(ctx, text, true)
			require.NoError(t, err)
			assertAttributes(t, tt.attrs, got)

			// Once more as a column of an import row.
			column, ok := vc.Encode([]string{text})
			require.True(t, ok)
			decoded := vc.Decode(column)
			require.Len(t, decoded, 1)

			got, err = lc.Denormalize(ctx, decoded[0], true)
			require.NoError(t, err)
			assertAttributes(t, tt.attrs, got)
		})
	}
}

func TestLineCodec_ExplodeImplode(t *testing.T) {
	lc := newTestLineCodec(t)

	pairs := lc.Explode(`"a=1,2",b=3`)
	assert.Equal(t, []string{"a=1,2", "b=3"}, pairs)

	text, ok := lc.Implode(pairs)
	assert.True(t, ok)
	assert.Equal(t, `"a=1,2",b=3`, text)
}

const manyAttributesBulletText = `<strong>195603:</strong><br>Mit Kapuze, Reißverschluss mit Abdeckblende und Gummizügen an Hosenbeinen, Armen und Kapuze. CE-Kategorie III, Typ 5, 6.<br><strong>Farbe:</strong>&nbsp;Weiß<br><strong>Größen:</strong> M, L, XL, XXL<br><br><strong>195608:</strong><br>Ausführung wie <strong>195603</strong>, jedoch mit verklebten Nähten für verbesserten Schutz. CE-Kategorie III, Typ 4, 5, 6.<br><strong>Farbe:</strong>&nbsp;Weiß<br><strong>Größen:&nbsp;</strong>M, L, XL, XXL<br><br><strong>195609:</strong><br>Ausführung wie <strong>195608</strong>, jedoch mit zusätzlicher Polyethylenbeschichtung für noch höheren Schutz, z.B. gegen aggressive Flüssigkeiten oder Sprühnebel. Geeignet für den Einsatz bei kontaminationsgefährlichen Arbeiten. CE-Kategorie III, Typ 3, 4, 5.<br><strong>Farbe:&nbsp;</strong>Gelb<br><strong>Größen:&nbsp;</strong>L, XL, XXL`

const manyAttributesColumn = `"""ClothingSize=Eine Größe XXL"",""Colours=Gelb"",""Description=Schutzoverall"",""FlagNew=Nein"",""FlagSample=Ja"",""Manufacturer=DS SafetyWear"",""Material=Vliesstoff"",""MergeUomFactor=Stück"",""Packaging=Stück"",""PublishTo=Web & Catalogue"",""Type=Mit Kapuze, verklebten Nähten und extra Polyethylenbeschichtung"",""BulletText2=<strong>195603:</strong><br>Mit Kapuze, Reißverschluss mit Abdeckblende und Gummizügen an Hosenbeinen, Armen und Kapuze. CE-Kategorie III, Typ 5, 6.<br><strong>Farbe:</strong>&nbsp;Weiß<br><strong>Größen:</strong> M, L, XL, XXL<br><br><strong>195608:</strong><br>Ausführung wie <strong>195603</strong>, jedoch mit verklebten Nähten für verbesserten Schutz. CE-Kategorie III, Typ 4, 5, 6.<br><strong>Farbe:</strong>&nbsp;Weiß<br><strong>Größen:&nbsp;</strong>M, L, XL, XXL<br><br><strong>195609:</strong><br>Ausführung wie <strong>195608</strong>, jedoch mit zusätzlicher Polyethylenbeschichtung für noch höheren Schutz, z.B. gegen aggressive Flüssigkeiten oder Sprühnebel. Geeignet für den Einsatz bei kontaminationsgefährlichen Arbeiten. CE-Kategorie III, Typ 3, 4, 5.<br><strong>Farbe:&nbsp;</strong>Gelb<br><strong>Größen:&nbsp;</strong>L, XL, XXL"",""Category1Header=Erste Hilfe & Arbeitsschutzausrüstung"",""Category3Header=Schutzkleidung"",""Legend=Schutzoveralls"",""MainlinePageNumber=U-370"",""Properties=CE-Kategorie III, Typ 3, 4, 5"",""PubCodeRankingValue=13825"",""SpaceCode=CJE: TYVEK-SCHUTZKLEIDUNG"",""StyleNo=195609"",""StyleNoHeader=Artikel-<br>nummer"",""SubHeader=Optimaler Schutz vor Staub, Farbe, Schadstoffen"",""TableHead1=Geben Sie bitte die gewünschte Größe an."",""YNumberMaterial=Y2932705"",""SP_STATUS=CURRENT"""`
