package codec

import (
	"context"
	"fmt"
	"strings"
)

// InputType is an attribute's frontend input type, which decides how its
// value is packed into and unpacked from a cell.
type InputType int

const (
	InputPlain InputType = iota
	InputMultiselect
	InputBoolean
)

// ParseInputType maps a directory frontend_input string to an InputType.
// Anything other than multiselect or boolean (text, select, date, ...) is
// packed verbatim and therefore Plain.
func ParseInputType(s string) InputType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "multiselect":
		return InputMultiselect
	case "boolean":
		return InputBoolean
	default:
		return InputPlain
	}
}

func (t InputType) String() string {
	switch t {
	case InputMultiselect:
		return "multiselect"
	case InputBoolean:
		return "boolean"
	default:
		return "plain"
	}
}

// EntityType identifies the entity (product, category, ...) whose attributes
// are being encoded.
type EntityType struct {
	ID   int
	Code string
}

// AttributeDescriptor is the metadata the packer needs for one attribute.
type AttributeDescriptor struct {
	Code          string
	EntityTypeID  int
	FrontendInput InputType
}

// Directory resolves entity types and attribute metadata. Lookups of unknown
// keys return errors wrapping ErrEntityTypeNotFound or ErrAttributeNotFound.
type Directory interface {
	EntityType(ctx context.Context, code string) (EntityType, error)
	Attribute(ctx context.Context, entityTypeID int, code string) (AttributeDescriptor, error)
}

// Packer converts attribute values to and from their in-cell text form
// according to the attribute's input type.
type Packer struct {
	values         *ValueCodec
	valueDelimiter rune
}

// NewPacker returns a packer that joins multiselect options with
// valueDelimiter.
func NewPacker(values *ValueCodec, valueDelimiter rune) *Packer {
	return &Packer{values: values, valueDelimiter: valueDelimiter}
}

// Pack renders v for desc.
//
// Booleans render "true" only when v holds the boolean true; every other
// value, including the string "true", renders "false".
func (p *Packer) Pack(desc AttributeDescriptor, v Value) (string, error) {
	switch desc.FrontendInput {
	case InputMultiselect:
		list, ok := v.List()
		if !ok {
			return "", fmt.Errorf("pack %s: %w: want list, got %s", desc.Code, ErrValueKind, v.Kind())
		}
		text, _ := p.values.EncodeWith(list, p.valueDelimiter)
		return text, nil
	case InputBoolean:
		if b, ok := v.Bool(); ok && b {
			return "true", nil
		}
		return "false", nil
	case InputPlain:
		return plainText(desc.Code, v)
	default:
		return "", fmt.Errorf("pack %s: unknown input type %d", desc.Code, desc.FrontendInput)
	}
}

// Unpack parses text for desc.
func (p *Packer) Unpack(desc AttributeDescriptor, text string) (Value, error) {
	switch desc.FrontendInput {
	case InputMultiselect:
		return ListValue(p.values.DecodeWith(text, p.valueDelimiter)), nil
	case InputBoolean:
		return BoolValue(ParseBool(text)), nil
	case InputPlain:
		return StringValue(text), nil
	default:
		return Value{}, fmt.Errorf("unpack %s: unknown input type %d", desc.Code, desc.FrontendInput)
	}
}

// ParseBool reports whether s is one of the truthy tokens 1, true, on or yes
// (case-insensitive, surrounding whitespace ignored). Every other input,
// including garbage, is false.
//
// TODO: decide with the import team whether unrecognised tokens should be
// rejected instead of read as false.
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "on", "yes":
		return true
	default:
		return false
	}
}

func plainText(code string, v Value) (string, error) {
	s, ok := v.Str()
	if !ok {
		return "", fmt.Errorf("pack %s: %w: want string, got %s", code, ErrValueKind, v.Kind())
	}
	return s, nil
}
