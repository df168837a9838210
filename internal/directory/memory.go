// Package directory provides attribute directories for the codec package:
// an in-memory catalog (optionally loaded from YAML), a Postgres catalog
// reading the EAV tables, and a caching wrapper for either.
package directory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/JonMunkholm/csvcell/internal/codec"
)

// Lister is implemented by directories that can enumerate the attributes of
// an entity type.
type Lister interface {
	Attributes(ctx context.Context, entityTypeID int) ([]codec.AttributeDescriptor, error)
}

type attributeKey struct {
	entityTypeID int
	code         string
}

// Memory is a mutable, in-memory attribute directory.
type Memory struct {
	mu          sync.RWMutex
	entityTypes map[string]codec.EntityType
	attributes  map[attributeKey]codec.AttributeDescriptor
}

// NewMemory returns an empty directory.
func NewMemory() *Memory {
	return &Memory{
		entityTypes: make(map[string]codec.EntityType),
		attributes:  make(map[attributeKey]codec.AttributeDescriptor),
	}
}

// AddEntityType registers et. Registering a code twice is an error.
func (m *Memory) AddEntityType(et codec.EntityType) error {
	if et.Code == "" {
		return fmt.Errorf("entity type %d: empty code", et.ID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entityTypes[et.Code]; exists {
		return fmt.Errorf("entity type already registered: %s", et.Code)
	}
	m.entityTypes[et.Code] = et
	return nil
}

// AddAttribute registers desc, replacing any earlier descriptor with the
// same entity type and code.
func (m *Memory) AddAttribute(desc codec.AttributeDescriptor) error {
	if desc.Code == "" {
		return fmt.Errorf("attribute for entity type %d: empty code", desc.EntityTypeID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.attributes[attributeKey{desc.EntityTypeID, desc.Code}] = desc
	return nil
}

// EntityType implements codec.Directory.
func (m *Memory) EntityType(_ context.Context, code string) (codec.EntityType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	et, ok := m.entityTypes[code]
	if !ok {
		return codec.EntityType{}, fmt.Errorf("%q: %w", code, codec.ErrEntityTypeNotFound)
	}
	return et, nil
}

// Attribute implements codec.Directory.
func (m *Memory) Attribute(_ context.Context, entityTypeID int, code string) (codec.AttributeDescriptor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	desc, ok := m.attributes[attributeKey{entityTypeID, code}]
	if !ok {
		return codec.AttributeDescriptor{}, fmt.Errorf("%q: %w", code, codec.ErrAttributeNotFound)
	}
	return desc, nil
}

// Attributes returns the attributes of an entity type sorted by code.
func (m *Memory) Attributes(_ context.Context, entityTypeID int) ([]codec.AttributeDescriptor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []codec.AttributeDescriptor
	for key, desc := range m.attributes {
		if key.entityTypeID == entityTypeID {
			result = append(result, desc)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Code < result[j].Code
	})
	return result, nil
}

// Len returns the number of registered attributes.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.attributes)
}
