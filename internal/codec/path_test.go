package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPathCodec(t *testing.T) *PathCodec {
	t.Helper()
	pc, err := NewPathCodec(DefaultConfiguration())
	require.NoError(t, err)
	return pc
}

func TestNewPathCodec_Validates(t *testing.T) {
	cfg := DefaultConfiguration()
	cfg.CategoryDelimiter = 0

	_, err := NewPathCodec(cfg)
	assert.ErrorIs(t, err, ErrConfigurationMissing)
}

func TestPathCodec_Implode(t *testing.T) {
	pc := newTestPathCodec(t)

	tests := []struct {
		name     string
		segments []string
		want     string
	}{
		{"plain", []string{"Root", "Shoes", "Boots"}, "Root/Shoes/Boots"},
		{"spaces", []string{"Default Category", "Etiketten und Prüfplaketten"}, `"Default Category"/"Etiketten und Prüfplaketten"`},
		{"delimiter in segment", []string{"Root", "A/B"}, `Root/"A/B"`},
		{
			"quotes and delimiter",
			[]string{"Default Category", "Etiketten und Prüfplaketten", "Prüfplaketten", `Prüfplaketten "Nächster Prüftermin / Geprüft" 2`},
			`"Default Category"/"Etiketten und Prüfplaketten"/Prüfplaketten/"Prüfplaketten ""Nächster Prüftermin / Geprüft"" 2"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := pc.Implode(tt.segments)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.segments, pc.Explode(got))
		})
	}

	_, ok := pc.Implode(nil)
	assert.False(t, ok)
}

func TestPathCodec_Normalize(t *testing.T) {
	pc := newTestPathCodec(t)

	tests := []struct {
		path string
		want string
	}{
		{"Root/Shoes", "Root/Shoes"},
		{`"Root"/"Shoes"`, "Root/Shoes"},
		{`Default Category/"Etiketten"/Plain`, `"Default Category"/Etiketten/Plain`},
		{`Root/"A/B"`, `Root/"A/B"`},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := pc.Normalize(tt.path)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)

			again, ok := pc.Normalize(got)
			require.True(t, ok)
			assert.Equal(t, got, again, "normalize is idempotent")
		})
	}

	_, ok := pc.Normalize("")
	assert.False(t, ok, "empty path stays absent")
}

func TestPathCodec_Denormalize(t *testing.T) {
	pc := newTestPathCodec(t)

	got, err := pc.Denormalize("Root/Shoes")
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.Empty(t, got)
}

func TestPathCodec_ExplodeList(t *testing.T) {
	pc := newTestPathCodec(t)
	vc := newTestValueCodec(t)

	t.Run("unenclosed paths", func(t *testing.T) {
		column := vc.Decode(`"Default Category/Arbeitsschutz und Betriebssicherheit/Brandschutz/Feuerlöscher und Zubehör,Default Category/Arbeitsschutz und Betriebssicherheit/Brandschutz/Feuerlöscher und Zubehör 2"`)
		require.Len(t, column, 1)

		assert.Equal(t, [][]string{
			{"Default Category", "Arbeitsschutz und Betriebssicherheit", "Brandschutz", "Feuerlöscher und Zubehör"},
			{"Default Category", "Arbeitsschutz und Betriebssicherheit", "Brandschutz", "Feuerlöscher und Zubehör 2"},
		}, pc.ExplodeList(column[0]))
	})

	t.Run("enclosed paths with commas", func(t *testing.T) {
		column := vc.Decode(`"""Default Category/Etiketten und Prüfplaketten/Prüfplaketten/Prüfvorschriften - BGV, DGUV etc."",""Default Category/Etiketten und Prüfplaketten/Prüfplaketten/Prüfvorschriften - BGV, DGUV etc. 2"""`)
		require.Len(t, column, 1)

		assert.Equal(t, [][]string{
			{"Default Category", "Etiketten und Prüfplaketten", "Prüfplaketten", "Prüfvorschriften - BGV, DGUV etc."},
			{"Default Category", "Etiketten und Prüfplaketten", "Prüfplaketten", "Prüfvorschriften - BGV, DGUV etc. 2"},
		}, pc.ExplodeList(column[0]))
	})

	assert.Nil(t, pc.ExplodeList(""))
}

func TestPathCodec_ImplodeList(t *testing.T) {
	pc := newTestPathCodec(t)

	paths := [][]string{
		{"Default Category", "Etiketten und Prüfplaketten"},
		{"Root", "A/B", `x"y`},
	}

	cell, ok := pc.ImplodeList(paths)
	require.True(t, ok)
	assert.Equal(t, `"""Default Category""/""Etiketten und Prüfplaketten""","Root/""A/B""/""x""""y"""`, cell)
	assert.Equal(t, paths, pc.ExplodeList(cell))

	_, ok = pc.ImplodeList(nil)
	assert.False(t, ok)
}
