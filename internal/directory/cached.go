package directory

import (
	"context"
	"sync"

	"github.com/JonMunkholm/csvcell/internal/codec"
)

// Cached memoizes successful lookups of an underlying directory. Misses and
// errors are not cached, so a newly created attribute becomes visible on the
// next lookup.
type Cached struct {
	next codec.Directory

	mu          sync.RWMutex
	entityTypes map[string]codec.EntityType
	attributes  map[attributeKey]codec.AttributeDescriptor
	hits        int
	misses      int
}

// NewCached wraps next.
func NewCached(next codec.Directory) *Cached {
	return &Cached{
		next:        next,
		entityTypes: make(map[string]codec.EntityType),
		attributes:  make(map[attributeKey]codec.AttributeDescriptor),
	}
}

// EntityType implements codec.Directory.
func (c *Cached) EntityType(ctx context.Context, code string) (codec.EntityType, error) {
	c.mu.RLock()
	et, ok := c.entityTypes[code]
	c.mu.RUnlock()
	if ok {
		c.count(true)
		return et, nil
	}

	c.count(false)
	et, err := c.next.EntityType(ctx, code)
	if err != nil {
		return codec.EntityType{}, err
	}

	c.mu.Lock()
	c.entityTypes[code] = et
	c.mu.Unlock()
	return et, nil
}

// Attribute implements codec.Directory.
func (c *Cached) Attribute(ctx context.Context, entityTypeID int, code string) (codec.AttributeDescriptor, error) {
	key := attributeKey{entityTypeID, code}

	c.mu.RLock()
	desc, ok := c.attributes[key]
	c.mu.RUnlock()
	if ok {
		c.count(true)
		return desc, nil
	}

	c.count(false)
	desc, err := c.next.Attribute(ctx, entityTypeID, code)
	if err != nil {
		return codec.AttributeDescriptor{}, err
	}

	c.mu.Lock()
	c.attributes[key] = desc
	c.mu.Unlock()
	return desc, nil
}

// Attributes lists through to the underlying directory when it is a Lister
// and primes the cache with the result.
func (c *Cached) Attributes(ctx context.Context, entityTypeID int) ([]codec.AttributeDescriptor, error) {
	lister, ok := c.next.(Lister)
	if !ok {
		return nil, codec.ErrUnsupported
	}
	descs, err := lister.Attributes(ctx, entityTypeID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	for _, d := range descs {
		c.attributes[attributeKey{d.EntityTypeID, d.Code}] = d
	}
	c.mu.Unlock()
	return descs, nil
}

// Invalidate drops every cached entry.
func (c *Cached) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entityTypes = make(map[string]codec.EntityType)
	c.attributes = make(map[attributeKey]codec.AttributeDescriptor)
}

// CacheStats is a snapshot of cache effectiveness.
type CacheStats struct {
	Hits    int `json:"hits"`
	Misses  int `json:"misses"`
	Entries int `json:"entries"`
}

// Stats returns the current counters.
func (c *Cached) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CacheStats{
		Hits:    c.hits,
		Misses:  c.misses,
		Entries: len(c.entityTypes) + len(c.attributes),
	}
}

func (c *Cached) count(hit bool) {
	c.mu.Lock()
	if hit {
		c.hits++
	} else {
		c.misses++
	}
	c.mu.Unlock()
}
