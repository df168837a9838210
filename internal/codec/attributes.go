package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Attributes is an insertion-ordered mapping of attribute code to value.
// Order is significant: it is the order pairs are written into a cell.
// The zero value is ready to use.
type Attributes struct {
	keys   []string
	values map[string]Value
}

// NewAttributes returns an empty set sized for n codes.
func NewAttributes(n int) *Attributes {
	return &Attributes{
		keys:   make([]string, 0, n),
		values: make(map[string]Value, n),
	}
}

// Set stores v under code. Re-setting a code replaces its value but keeps
// the position of its first insertion.
func (a *Attributes) Set(code string, v Value) {
	if a.values == nil {
		a.values = make(map[string]Value)
	}
	if _, exists := a.values[code]; !exists {
		a.keys = append(a.keys, code)
	}
	a.values[code] = v
}

// Get returns the value stored under code.
func (a *Attributes) Get(code string) (Value, bool) {
	if a == nil {
		return Value{}, false
	}
	v, ok := a.values[code]
	return v, ok
}

// Len returns the number of codes.
func (a *Attributes) Len() int {
	if a == nil {
		return 0
	}
	return len(a.keys)
}

// Keys returns the codes in insertion order.
func (a *Attributes) Keys() []string {
	if a == nil {
		return nil
	}
	out := make([]string, len(a.keys))
	copy(out, a.keys)
	return out
}

// Each calls fn for every pair in insertion order, stopping at the first error.
func (a *Attributes) Each(fn func(code string, v Value) error) error {
	if a == nil {
		return nil
	}
	for _, k := range a.keys {
		if err := fn(k, a.values[k]); err != nil {
			return err
		}
	}
	return nil
}

// MarshalJSON writes a JSON object whose member order follows insertion order.
func (a *Attributes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	err := a.Each(func(code string, v Value) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(code)
		if err != nil {
			return err
		}
		val, err := v.MarshalJSON()
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(val)
		return nil
	})
	if err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, keeping member order.
func (a *Attributes) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("attributes: expected JSON object, got %v", tok)
	}

	*a = Attributes{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		code, ok := tok.(string)
		if !ok {
			return fmt.Errorf("attributes: expected string key, got %v", tok)
		}
		var v Value
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("attributes: %s: %w", code, err)
		}
		a.Set(code, v)
	}
	_, err = dec.Token()
	return err
}
