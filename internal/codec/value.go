package codec

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ValueCodec encodes a flat sequence of strings into one delimited text field
// and decodes it back. Instances are immutable; the delimiter can be
// overridden per call but is never stored.
//
// Encoding follows the pipeline's CSV dialect: a field is enclosed when it
// contains the delimiter, the enclosure, the escape character, a line break,
// a tab or a space, and enclosure runes inside an enclosed field are doubled.
// The escape character never alters decoding.
type ValueCodec struct {
	delims DelimiterSet
}

// NewValueCodec returns a codec for the given characters.
func NewValueCodec(delims DelimiterSet) (*ValueCodec, error) {
	if err := delims.Validate(); err != nil {
		return nil, err
	}
	return &ValueCodec{delims: delims}, nil
}

// Delimiters returns the characters the codec was built with.
func (c *ValueCodec) Delimiters() DelimiterSet {
	return c.delims
}

// Encode joins fields with the configured delimiter. ok is false when fields
// is empty, which callers must treat as an absent value.
func (c *ValueCodec) Encode(fields []string) (text string, ok bool) {
	return c.EncodeWith(fields, c.delims.Delimiter)
}

// EncodeWith joins fields with delim instead of the configured delimiter.
// A zero delim selects the configured one. Callers taking delim from input
// should check it with CheckDelimiter first: text joined with the enclosure
// cannot be decoded.
func (c *ValueCodec) EncodeWith(fields []string, delim rune) (string, bool) {
	if len(fields) == 0 {
		return "", false
	}
	delim = c.delimiter(delim)

	// A lone empty field would otherwise be indistinguishable from absence.
	if len(fields) == 1 && fields[0] == "" {
		return string([]rune{c.delims.Enclosure, c.delims.Enclosure}), true
	}

	var b strings.Builder
	for i, field := range fields {
		if i > 0 {
			b.WriteRune(delim)
		}
		c.writeField(&b, field, delim)
	}
	return b.String(), true
}

// Decode splits text on the configured delimiter. Empty text is absent and
// yields nil.
func (c *ValueCodec) Decode(text string) []string {
	return c.DecodeWith(text, c.delims.Delimiter)
}

// DecodeWith splits text on delim instead of the configured delimiter.
// A zero delim selects the configured one.
//
// Outside an enclosure the delimiter ends a field. An enclosure opens only as
// the first rune of a field; elsewhere it is literal. Inside an enclosure a
// doubled enclosure is one literal rune and a single one closes the
// enclosure; anything after it up to the next delimiter is kept as-is. An
// unterminated enclosure runs to the end of text.
func (c *ValueCodec) DecodeWith(text string, delim rune) []string {
	if text == "" {
		return nil
	}
	delim = c.delimiter(delim)
	enc := c.delims.Enclosure

	var (
		fields   []string
		field    strings.Builder
		enclosed bool
		atStart  = true
	)
	// Fields are copied byte for byte so text that is not valid UTF-8
	// survives unchanged.
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		switch {
		case r == utf8.RuneError && size == 1:
			// An invalid byte never matches a delimiter or the enclosure.
			field.WriteString(text[i : i+size])
		case enclosed:
			if r == enc {
				if next, n := utf8.DecodeRuneInString(text[i+size:]); n > 0 && next == enc {
					field.WriteString(text[i : i+size])
					i += size + n
				} else {
					enclosed = false
					i += size
				}
				continue
			}
			field.WriteString(text[i : i+size])
		case r == delim:
			fields = append(fields, field.String())
			field.Reset()
			atStart = true
			i += size
			continue
		case r == enc && atStart:
			enclosed = true
		default:
			field.WriteString(text[i : i+size])
		}
		atStart = false
		i += size
	}
	return append(fields, field.String())
}

// Explode is DecodeWith under its split-style name.
func (c *ValueCodec) Explode(text string, delim rune) []string {
	return c.DecodeWith(text, delim)
}

// Implode is EncodeWith under its join-style name.
func (c *ValueCodec) Implode(fields []string, delim rune) (string, bool) {
	return c.EncodeWith(fields, delim)
}

// CheckDelimiter reports whether delim can be passed to EncodeWith and
// DecodeWith. Zero is accepted and selects the configured delimiter.
func (c *ValueCodec) CheckDelimiter(delim rune) error {
	if delim == c.delims.Enclosure {
		return fmt.Errorf("%w: delimiter equals enclosure %q", ErrInvalidDelimiters, delim)
	}
	if delim != 0 && !utf8.ValidRune(delim) {
		return fmt.Errorf("%w: delimiter %U is not a valid character", ErrInvalidDelimiters, delim)
	}
	return nil
}

func (c *ValueCodec) delimiter(delim rune) rune {
	if delim == 0 {
		return c.delims.Delimiter
	}
	return delim
}

func (c *ValueCodec) writeField(b *strings.Builder, field string, delim rune) {
	if !c.needsEnclosure(field, delim) {
		b.WriteString(field)
		return
	}
	c.writeEnclosed(b, field)
}

func (c *ValueCodec) writeEnclosed(b *strings.Builder, field string) {
	enc := string(c.delims.Enclosure)
	b.WriteString(enc)
	b.WriteString(strings.ReplaceAll(field, enc, enc+enc))
	b.WriteString(enc)
}

// enclose wraps field in the enclosure unconditionally.
func (c *ValueCodec) enclose(field string) string {
	var b strings.Builder
	c.writeEnclosed(&b, field)
	return b.String()
}

func (c *ValueCodec) needsEnclosure(field string, delim rune) bool {
	return strings.ContainsFunc(field, func(r rune) bool {
		switch r {
		case delim, c.delims.Enclosure, c.delims.Escape, '\n', '\r', '\t', ' ':
			return true
		}
		return false
	})
}
