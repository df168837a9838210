package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ValueKind identifies which variant a Value holds.
type ValueKind int

const (
	KindString ValueKind = iota
	KindBool
	KindList
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a decoded attribute value: a string, a boolean or a list of
// strings, depending on the attribute's input type.
type Value struct {
	kind ValueKind
	str  string
	b    bool
	list []string
}

// StringValue wraps a plain string.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// BoolValue wraps a boolean.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// ListValue wraps a list of option values. A nil list is kept nil.
func ListValue(list []string) Value { return Value{kind: KindList, list: list} }

// Kind returns the held variant.
func (v Value) Kind() ValueKind { return v.kind }

// Str returns the string and whether v holds one.
func (v Value) Str() (string, bool) { return v.str, v.kind == KindString }

// Bool returns the boolean and whether v holds one.
func (v Value) Bool() (bool, bool) { return v.b, v.kind == KindBool }

// List returns the list and whether v holds one.
func (v Value) List() ([]string, bool) { return v.list, v.kind == KindList }

// Equal reports whether both values hold the same variant and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == o.b
	case KindList:
		if len(v.list) != len(o.list) || (v.list == nil) != (o.list == nil) {
			return false
		}
		for i := range v.list {
			if v.list[i] != o.list[i] {
				return false
			}
		}
		return true
	default:
		return v.str == o.str
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindList:
		return fmt.Sprintf("%q", v.list)
	default:
		return v.str
	}
}

// MarshalJSON encodes the held variant as a JSON string, boolean or array.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindBool:
		return json.Marshal(v.b)
	case KindList:
		return json.Marshal(v.list)
	default:
		return json.Marshal(v.str)
	}
}

// UnmarshalJSON accepts a JSON string, boolean or array of strings. null
// decodes to the empty string.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("%w: empty JSON value", ErrValueKind)
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = StringValue(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = BoolValue(b)
	case '[':
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*v = ListValue(list)
	case 'n':
		*v = StringValue("")
	default:
		return fmt.Errorf("%w: unsupported JSON value %s", ErrValueKind, data)
	}
	return nil
}
