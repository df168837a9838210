package codec

import "fmt"

// PathCodec encodes hierarchical category paths as segment lists joined with
// the category delimiter (default '/').
type PathCodec struct {
	values        *ValueCodec
	delimiter     rune
	listDelimiter rune
}

// NewPathCodec returns a path codec for cfg.
func NewPathCodec(cfg Configuration) (*PathCodec, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	values, err := NewValueCodec(cfg.Delimiters)
	if err != nil {
		return nil, err
	}
	return &PathCodec{
		values:        values,
		delimiter:     cfg.CategoryDelimiter,
		listDelimiter: cfg.MultipleFieldDelimiter,
	}, nil
}

// Explode splits path into its segments.
func (c *PathCodec) Explode(path string) []string {
	return c.values.DecodeWith(path, c.delimiter)
}

// Implode joins segments into a path. ok is false when there are none.
func (c *PathCodec) Implode(segments []string) (string, bool) {
	return c.values.EncodeWith(segments, c.delimiter)
}

// Normalize re-renders path in canonical quoting: superfluous enclosures
// are removed and segments that need them gain them.
func (c *PathCodec) Normalize(path string) (string, bool) {
	return c.Implode(c.Explode(path))
}

// Denormalize is not available for category paths.
func (c *PathCodec) Denormalize(path string) (string, error) {
	return "", fmt.Errorf("denormalize category path: %w", ErrUnsupported)
}

// ExplodeList decodes a cell holding several category paths, separated by
// the multiple-field delimiter, into their segments.
func (c *PathCodec) ExplodeList(cell string) [][]string {
	paths := c.values.DecodeWith(cell, c.listDelimiter)
	if paths == nil {
		return nil
	}
	out := make([][]string, len(paths))
	for i, p := range paths {
		out[i] = c.Explode(p)
	}
	return out
}

// ImplodeList is the inverse of ExplodeList. Paths without segments are
// written as empty fields.
func (c *PathCodec) ImplodeList(paths [][]string) (string, bool) {
	rendered := make([]string, len(paths))
	for i, segments := range paths {
		rendered[i], _ = c.Implode(segments)
	}
	return c.values.EncodeWith(rendered, c.listDelimiter)
}
