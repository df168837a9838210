package directory

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/csvcell/internal/codec"
)

// catalogFile is the on-disk attribute catalog:
//
//	entity_types:
//	  - id: 4
//	    code: catalog_product
//	attributes:
//	  catalog_product:
//	    - code: size
//	      frontend_input: multiselect
type catalogFile struct {
	EntityTypes []struct {
		ID   int    `yaml:"id"`
		Code string `yaml:"code"`
	} `yaml:"entity_types"`
	Attributes map[string][]struct {
		Code          string `yaml:"code"`
		FrontendInput string `yaml:"frontend_input"`
	} `yaml:"attributes"`
}

// LoadYAML reads a catalog into a new Memory directory.
func LoadYAML(r io.Reader) (*Memory, error) {
	var file catalogFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode attribute catalog: %w", err)
	}

	m := NewMemory()
	ids := make(map[string]int, len(file.EntityTypes))
	for _, et := range file.EntityTypes {
		if err := m.AddEntityType(codec.EntityType{ID: et.ID, Code: et.Code}); err != nil {
			return nil, err
		}
		ids[et.Code] = et.ID
	}

	for entityCode, attrs := range file.Attributes {
		id, ok := ids[entityCode]
		if !ok {
			return nil, fmt.Errorf("attributes listed for undeclared entity type %q", entityCode)
		}
		for _, a := range attrs {
			err := m.AddAttribute(codec.AttributeDescriptor{
				Code:          a.Code,
				EntityTypeID:  id,
				FrontendInput: codec.ParseInputType(a.FrontendInput),
			})
			if err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// LoadYAMLFile reads the catalog at path.
func LoadYAMLFile(path string) (*Memory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open attribute catalog: %w", err)
	}
	defer f.Close()

	m, err := LoadYAML(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
