package payload

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// SkinFieldName is the synthetic field that carries the skin form inside a
// compile payload.
const SkinFieldName = "skin"

// Field is a single name/value pair produced by form serialization. Value is
// either a string or a nested Payload.
type Field struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// String returns the value when it holds a plain string.
func (f Field) String() (string, bool) {
	value, ok := f.Value.(string)
	return value, ok
}

// Nested returns the value when it holds a nested payload.
func (f Field) Nested() (Payload, bool) {
	value, ok := f.Value.(Payload)
	return value, ok
}

// UnmarshalJSON accepts either a string or an array of fields as value.
func (f *Field) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name  string          `json:"name"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	f.Name = raw.Name

	trimmed := bytes.TrimSpace(raw.Value)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		f.Value = ""
	case trimmed[0] == '[':
		var nested Payload
		if err := json.Unmarshal(trimmed, &nested); err != nil {
			return fmt.Errorf("payload: field %q: %w", raw.Name, err)
		}
		f.Value = nested
	case trimmed[0] == '"':
		var value string
		if err := json.Unmarshal(trimmed, &value); err != nil {
			return fmt.Errorf("payload: field %q: %w", raw.Name, err)
		}
		f.Value = value
	default:
		// numbers and booleans are kept in their literal form
		f.Value = string(trimmed)
	}
	return nil
}

// Payload is an ordered list of fields. Names are not required to be unique,
// matching native form serialization.
type Payload []Field

// Add appends a string field and returns the extended payload.
func (p Payload) Add(name, value string) Payload {
	return append(p, Field{Name: name, Value: value})
}

// Nest appends a field whose value is another payload. The nested payload is
// copied so later edits to it do not leak into p.
func (p Payload) Nest(name string, nested Payload) Payload {
	return append(p, Field{Name: name, Value: nested.Clone()})
}

// Clone returns a deep copy.
func (p Payload) Clone() Payload {
	if p == nil {
		return Payload{}
	}
	out := make(Payload, len(p))
	for idx, field := range p {
		if nested, ok := field.Nested(); ok {
			field.Value = nested.Clone()
		}
		out[idx] = field
	}
	return out
}

// Get returns the first string value stored under name.
func (p Payload) Get(name string) (string, bool) {
	for _, field := range p {
		if field.Name != name {
			continue
		}
		if value, ok := field.String(); ok {
			return value, true
		}
	}
	return "", false
}

// All returns every string value stored under name, in order.
func (p Payload) All(name string) []string {
	var out []string
	for _, field := range p {
		if field.Name != name {
			continue
		}
		if value, ok := field.String(); ok {
			out = append(out, value)
		}
	}
	return out
}

// Lookup returns the first nested payload stored under name.
func (p Payload) Lookup(name string) (Payload, bool) {
	for _, field := range p {
		if field.Name != name {
			continue
		}
		if nested, ok := field.Nested(); ok {
			return nested, true
		}
	}
	return nil, false
}

// Names lists field names in order, duplicates included.
func (p Payload) Names() []string {
	out := make([]string, 0, len(p))
	for _, field := range p {
		out = append(out, field.Name)
	}
	return out
}

// MarshalJSON always emits an array, never null.
func (p Payload) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Field(p))
}

// Decode parses a JSON array of fields.
func Decode(data []byte) (Payload, error) {
	var out Payload
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("payload: decode: %w", err)
	}
	if out == nil {
		out = Payload{}
	}
	return out, nil
}

// Form is a serialized HTML form together with its declared submission target.
type Form struct {
	ID     string
	Action string
	Method string
	Fields Payload
}

// SubmitMethod returns the upper-cased declared method, defaulting to POST.
func (f Form) SubmitMethod() string {
	method := strings.ToUpper(strings.TrimSpace(f.Method))
	if method == "" {
		return "POST"
	}
	return method
}
