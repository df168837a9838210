package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/JonMunkholm/csvcell/internal/codec"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o600)
}

// countingDirectory counts lookups that reach it.
type countingDirectory struct {
	*Memory

	mu         sync.Mutex
	entityHits int
	attrHits   int
	fail       error
}

func (d *countingDirectory) EntityType(ctx context.Context, code string) (codec.EntityType, error) {
	d.mu.Lock()
	d.entityHits++
	fail := d.fail
	d.mu.Unlock()
	if fail != nil {
		return codec.EntityType{}, fail
	}
	return d.Memory.EntityType(ctx, code)
}

func (d *countingDirectory) Attribute(ctx context.Context, entityTypeID int, code string) (codec.AttributeDescriptor, error) {
	d.mu.Lock()
	d.attrHits++
	fail := d.fail
	d.mu.Unlock()
	if fail != nil {
		return codec.AttributeDescriptor{}, fmt.Errorf("lookup %s: %w", code, fail)
	}
	return d.Memory.Attribute(ctx, entityTypeID, code)
}

// plainDirectory hides the Lister implementation of the wrapped Memory.
type plainDirectory struct {
	m *Memory
}

func (d plainDirectory) EntityType(ctx context.Context, code string) (codec.EntityType, error) {
	return d.m.EntityType(ctx, code)
}

func (d plainDirectory) Attribute(ctx context.Context, entityTypeID int, code string) (codec.AttributeDescriptor, error) {
	return d.m.Attribute(ctx, entityTypeID, code)
}

func attrsFromJSON(t *testing.T, data string) *codec.Attributes {
	t.Helper()
	var attrs codec.Attributes
	if err := json.Unmarshal([]byte(data), &attrs); err != nil {
		t.Fatalf("attributes %s: %v", data, err)
	}
	return &attrs
}
