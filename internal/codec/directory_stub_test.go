package codec

import (
	"context"
	"fmt"

	"github.com/stretchr/testify/mock"
)

const testEntityTypeID = 4

// stubDirectory resolves the catalog_product fixtures used across the tests.
type stubDirectory struct {
	inputs map[string]InputType
}

func newStubDirectory() *stubDirectory {
	inputs := map[string]InputType{
		"size":                     InputMultiselect,
		"features_bags":            InputMultiselect,
		"my_boolean_attribute":     InputBoolean,
		"my_select_attribute":      InputPlain,
		"my_multiselect_attribute": InputMultiselect,
	}
	for _, code := range []string{
		"ac_01", "ac_02", "delivery_date_1", "Application", "BulletText2",
		"ClothingSize", "Colours", "Description", "FlagNew", "FlagSample",
		"Manufacturer", "Material", "MergeUomFactor", "Packaging", "PublishTo",
		"Type", "Category1Header", "Category3Header", "Legend",
		"MainlinePageNumber", "Properties", "PubCodeRankingValue", "SpaceCode",
		"StyleNo", "StyleNoHeader", "SubHeader", "TableHead1",
		"YNumberMaterial", "SP_STATUS",
	} {
		inputs[code] = InputPlain
	}
	return &stubDirectory{inputs: inputs}
}

func (d *stubDirectory) EntityType(_ context.Context, code string) (EntityType, error) {
	if code != DefaultEntityTypeCode {
		return EntityType{}, fmt.Errorf("%q: %w", code, ErrEntityTypeNotFound)
	}
	return EntityType{ID: testEntityTypeID, Code: code}, nil
}

func (d *stubDirectory) Attribute(_ context.Context, entityTypeID int, code string) (AttributeDescriptor, error) {
	in, ok := d.inputs[code]
	if !ok || entityTypeID != testEntityTypeID {
		return AttributeDescriptor{}, fmt.Errorf("%d/%q: %w", entityTypeID, code, ErrAttributeNotFound)
	}
	return AttributeDescriptor{Code: code, EntityTypeID: entityTypeID, FrontendInput: in}, nil
}

// mockDirectory records lookups.
type mockDirectory struct {
	mock.Mock
}

func (m *mockDirectory) EntityType(ctx context.Context, code string) (EntityType, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(EntityType), args.Error(1)
}

func (m *mockDirectory) Attribute(ctx context.Context, entityTypeID int, code string) (AttributeDescriptor, error) {
	args := m.Called(ctx, entityTypeID, code)
	return args.Get(0).(AttributeDescriptor), args.Error(1)
}
