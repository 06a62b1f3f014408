package db

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Kind is the type tag of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindText
	// KindComplex covers arrays and objects. Complex values are bound as their
	// canonical JSON text and are never read back as structured data.
	KindComplex
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindComplex:
		return "complex"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Value is a loosely typed value exchanged with callers: a statement parameter
// or a result cell.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
}

func Null() Value               { return Value{kind: KindNull} }
func Bool(b bool) Value         { return Value{kind: KindBool, b: b} }
func Int(i int64) Value         { return Value{kind: KindInt, i: i} }
func Float(f float64) Value     { return Value{kind: KindFloat, f: f} }
func Text(s string) Value       { return Value{kind: KindText, s: s} }
func (v Value) Kind() Kind      { return v.kind }
func (v Value) IsNull() bool    { return v.kind == KindNull }
func (v Value) BoolValue() bool { return v.b }
func (v Value) IntValue() int64 { return v.i }

func (v Value) FloatValue() float64 { return v.f }

// TextValue returns the text of a Text value, or the canonical JSON of a
// Complex value.
func (v Value) TextValue() string { return v.s }

// Complex creates a Complex value from raw JSON, which must be an array or an
// object. The JSON is stored in canonical form.
func Complex(raw []byte) (Value, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || (raw[0] != '[' && raw[0] != '{') {
		return Value{}, fmt.Errorf("complex: expected JSON array or object, got %q", raw)
	}
	canonical, err := canonicalJSON(raw)
	if err != nil {
		return Value{}, fmt.Errorf("complex: %w", err)
	}
	return Value{kind: KindComplex, s: canonical}, nil
}

// ValueOf converts a native Go value into a Value. Slices, maps and structs
// become Complex values via JSON marshalling.
func ValueOf(v any) (Value, error) {
	switch v := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return v, nil
	case bool:
		return Bool(v), nil
	case int:
		return Int(int64(v)), nil
	case int8:
		return Int(int64(v)), nil
	case int16:
		return Int(int64(v)), nil
	case int32:
		return Int(int64(v)), nil
	case int64:
		return Int(v), nil
	case uint8:
		return Int(int64(v)), nil
	case uint16:
		return Int(int64(v)), nil
	case uint32:
		return Int(int64(v)), nil
	case float32:
		return Float(float64(v)), nil
	case float64:
		return Float(v), nil
	case string:
		return Text(v), nil
	case json.Number:
		return valueOfNumber(v.String()), nil
	case json.RawMessage:
		var out Value
		if err := out.UnmarshalJSON(v); err != nil {
			return Value{}, err
		}
		return out, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return Value{}, fmt.Errorf("value: cannot convert %T: %w", v, err)
	}
	var out Value
	if err = out.UnmarshalJSON(raw); err != nil {
		return Value{}, err
	}
	return out, nil
}

// MustValuesOf converts native Go values to Values, panicking on failure.
func MustValuesOf(values ...any) []Value {
	out := make([]Value, len(values))
	for i, v := range values {
		var err error
		if out[i], err = ValueOf(v); err != nil {
			panic(err)
		}
	}
	return out
}

// Interface returns the native Go form of the value: nil, bool, int64,
// float64, string, or json.RawMessage for Complex values.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindText:
		return v.s
	case KindComplex:
		return json.RawMessage(v.s)
	}
	return nil
}

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == other.b
	case KindInt:
		return v.i == other.i
	case KindFloat:
		return v.f == other.f
	case KindText, KindComplex:
		return v.s == other.s
	}
	return true
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	}
	return v.s
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindBool:
		return strconv.AppendBool(nil, v.b), nil
	case KindInt:
		return strconv.AppendInt(nil, v.i, 10), nil
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return []byte("null"), nil
		}
		return json.Marshal(v.f)
	case KindText:
		return marshalNoEscape(v.s)
	case KindComplex:
		return []byte(v.s), nil
	}
	return []byte("null"), nil
}

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("value: empty JSON")
	}
	switch data[0] {
	case 'n':
		*v = Null()
		return nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return fmt.Errorf("value: %w", err)
		}
		*v = Bool(b)
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("value: %w", err)
		}
		*v = Text(s)
		return nil
	case '[', '{':
		c, err := Complex(data)
		if err != nil {
			return fmt.Errorf("value: %w", err)
		}
		*v = c
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("value: %w", err)
	}
	*v = valueOfNumber(n.String())
	return nil
}

// valueOfNumber prefers int64, then a finite float64, and keeps anything else
// (e.g. integers beyond 64 bits that overflow float64) as its literal text.
func valueOfNumber(s string) Value {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) {
		return Float(f)
	}
	return Text(s)
}

// canonicalJSON re-encodes JSON compactly with sorted object keys and numbers
// kept as written.
func canonicalJSON(raw []byte) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", err
	}
	if dec.More() {
		return "", fmt.Errorf("unexpected data after JSON value")
	}
	b, err := marshalNoEscape(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
