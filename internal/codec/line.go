package codec

import (
	"context"
	"fmt"
	"strings"
)

// LineCodec encodes a set of code=value pairs (the "additional_attributes"
// column) into one cell and back, using two nested levels of the ValueCodec:
// pairs are joined with the multiple-field delimiter, and each pair is split
// on '=' with the same quote-aware rules.
type LineCodec struct {
	cfg        Configuration
	values     *ValueCodec
	packer     *Packer
	dir        Directory
	entityType EntityType
}

// NewLineCodec validates cfg and resolves cfg.EntityTypeCode once through dir.
func NewLineCodec(ctx context.Context, cfg Configuration, dir Directory) (*LineCodec, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if dir == nil {
		return nil, fmt.Errorf("%w: attribute directory", ErrConfigurationMissing)
	}
	values, err := NewValueCodec(cfg.Delimiters)
	if err != nil {
		return nil, err
	}
	et, err := dir.EntityType(ctx, cfg.EntityTypeCode)
	if err != nil {
		return nil, fmt.Errorf("resolve entity type %q: %w", cfg.EntityTypeCode, err)
	}
	return &LineCodec{
		cfg:        cfg,
		values:     values,
		packer:     NewPacker(values, cfg.MultipleValueDelimiter),
		dir:        dir,
		entityType: et,
	}, nil
}

// EntityType returns the entity type resolved at construction.
func (c *LineCodec) EntityType() EntityType {
	return c.entityType
}

// Normalize encodes attrs into one cell. ok is false for an empty set.
//
// With pack set, each value is packed according to its attribute's input
// type, which requires a directory lookup per code. Without it every value
// must already be a string.
func (c *LineCodec) Normalize(ctx context.Context, attrs *Attributes, pack bool) (text string, ok bool, err error) {
	pairs := make([]string, 0, attrs.Len())
	err = attrs.Each(func(code string, v Value) error {
		var packed string
		if pack {
			desc, err := c.descriptor(ctx, code)
			if err != nil {
				return err
			}
			if packed, err = c.packer.Pack(desc, v); err != nil {
				return err
			}
		} else {
			var err error
			if packed, err = plainText(code, v); err != nil {
				return err
			}
		}
		pairs = append(pairs, c.formatPair(code, packed))
		return nil
	})
	if err != nil {
		return "", false, err
	}
	text, ok = c.values.EncodeWith(pairs, c.cfg.MultipleFieldDelimiter)
	return text, ok, nil
}

// Denormalize decodes a cell into attributes. Empty text yields an empty,
// non-nil set.
//
// Each pair is split on '=': a pair without segments is skipped, a lone
// segment is a code with an empty value, and only the first two segments of
// longer pairs are kept. Later duplicates of a code overwrite earlier ones.
func (c *LineCodec) Denormalize(ctx context.Context, text string, unpack bool) (*Attributes, error) {
	pairs := c.values.DecodeWith(text, c.cfg.MultipleFieldDelimiter)
	attrs := NewAttributes(len(pairs))

	for _, pair := range pairs {
		segments := c.values.DecodeWith(pair, pairSeparator)

		var code, raw string
		switch len(segments) {
		case 0:
			continue
		case 1:
			code = segments[0]
		default:
			// Segments past the second are dropped; see DESIGN.md.
			code, raw = segments[0], segments[1]
		}

		if !unpack {
			attrs.Set(code, StringValue(raw))
			continue
		}
		desc, err := c.descriptor(ctx, code)
		if err != nil {
			return nil, err
		}
		v, err := c.packer.Unpack(desc, raw)
		if err != nil {
			return nil, err
		}
		attrs.Set(code, v)
	}
	return attrs, nil
}

// Explode splits a cell on the multiple-field delimiter without unpacking.
func (c *LineCodec) Explode(text string) []string {
	return c.values.DecodeWith(text, c.cfg.MultipleFieldDelimiter)
}

// Implode joins pair strings with the multiple-field delimiter.
func (c *LineCodec) Implode(pairs []string) (string, bool) {
	return c.values.EncodeWith(pairs, c.cfg.MultipleFieldDelimiter)
}

// formatPair renders code=value. Each side is enclosed only when the '='
// level of Denormalize could not otherwise read it back: it contains '=' or
// starts with the enclosure.
func (c *LineCodec) formatPair(code, value string) string {
	return c.pairSide(code) + string(pairSeparator) + c.pairSide(value)
}

func (c *LineCodec) pairSide(s string) string {
	if strings.ContainsRune(s, pairSeparator) || strings.HasPrefix(s, string(c.cfg.Delimiters.Enclosure)) {
		return c.values.enclose(s)
	}
	return s
}

func (c *LineCodec) descriptor(ctx context.Context, code string) (AttributeDescriptor, error) {
	desc, err := c.dir.Attribute(ctx, c.entityType.ID, code)
	if err != nil {
		return AttributeDescriptor{}, fmt.Errorf("attribute %q (entity type %d): %w", code, c.entityType.ID, err)
	}
	return desc, nil
}
