package db

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Binding is a statement parameter produced by Encode.
type Binding struct {
	// Kind is one of KindNull, KindBool, KindInt, KindFloat or KindText.
	Kind  Kind
	Bool  bool
	Int   int64
	Float float64
	Text  string
}

// Any returns the binding as a driver argument.
func (b Binding) Any() any {
	switch b.Kind {
	case KindBool:
		return b.Bool
	case KindInt:
		return b.Int
	case KindFloat:
		return b.Float
	case KindText:
		return b.Text
	}
	return nil
}

// Encode converts a Value into a Binding. Complex values are bound as their
// canonical JSON text, so they can never be read back as structured data.
func Encode(v Value) Binding {
	switch v.kind {
	case KindBool:
		return Binding{Kind: KindBool, Bool: v.b}
	case KindInt:
		return Binding{Kind: KindInt, Int: v.i}
	case KindFloat:
		return Binding{Kind: KindFloat, Float: v.f}
	case KindText, KindComplex:
		return Binding{Kind: KindText, Text: v.s}
	}
	return Binding{Kind: KindNull}
}

// EncodeAll encodes params in order.
func EncodeAll(params []Value) []Binding {
	bindings := make([]Binding, len(params))
	for i, p := range params {
		bindings[i] = Encode(p)
	}
	return bindings
}

// Args encodes params in order and returns them as driver arguments.
func Args(params []Value) []any {
	args := make([]any, len(params))
	for i, p := range params {
		args[i] = Encode(p).Any()
	}
	return args
}

// Candidate is a type tried when decoding a result cell.
type Candidate int

const (
	CandidateInt64 Candidate = iota
	CandidateFloat64
	CandidateText
	CandidateBool
)

// DecodeOrder is the order Decode tries candidate types in. Integers win over
// booleans, so a 0/1 column decodes as a number.
var DecodeOrder = [...]Candidate{CandidateInt64, CandidateFloat64, CandidateText, CandidateBool}

// Cell is a single result column of a row. Each method reports whether the
// cell can be read as that type.
type Cell interface {
	Int64() (int64, bool)
	Float64() (float64, bool)
	Text() (string, bool)
	Bool() (bool, bool)
}

// Decode converts a result cell to a Value using the first candidate in
// DecodeOrder that accepts it. Non-finite floats and cells no candidate
// accepts decode to Null.
func Decode(c Cell) Value {
	for _, p := range DecodeOrder {
		switch p {
		case CandidateInt64:
			if i, ok := c.Int64(); ok {
				return Int(i)
			}
		case CandidateFloat64:
			if f, ok := c.Float64(); ok {
				if math.IsNaN(f) || math.IsInf(f, 0) {
					return Null()
				}
				return Float(f)
			}
		case CandidateText:
			if s, ok := c.Text(); ok {
				return Text(s)
			}
		case CandidateBool:
			if b, ok := c.Bool(); ok {
				return Bool(b)
			}
		}
	}
	return Null()
}

// NativeCell is a cell holding a value already converted to a Go type by a
// driver, e.g. by database/sql or pgx.
type NativeCell struct {
	V any
	// Binary marks the column as binary data, so []byte is not read as text.
	Binary bool
}

func (c NativeCell) Int64() (int64, bool) {
	switch v := c.V.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int16:
		return int64(v), true
	case int8:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		if v <= math.MaxInt64 {
			return int64(v), true
		}
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, true
		}
	}
	return 0, false
}

func (c NativeCell) Float64() (float64, bool) {
	switch v := c.V.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f, true
		}
	}
	return 0, false
}

func (c NativeCell) Text() (string, bool) {
	switch v := c.V.(type) {
	case string:
		return v, true
	case []byte:
		if c.Binary {
			return "", false
		}
		return string(v), true
	case time.Time:
		return v.Format(time.RFC3339Nano), true
	}
	return "", false
}

func (c NativeCell) Bool() (bool, bool) {
	b, ok := c.V.(bool)
	return b, ok
}

// IsBinaryType reports whether a database type name describes binary data.
func IsBinaryType(databaseTypeName string) bool {
	t := strings.ToUpper(databaseTypeName)
	return strings.Contains(t, "BLOB") || strings.Contains(t, "BINARY") || t == "BYTEA"
}

// AffinityCell is a cell from a store that transmits numbers as JSON (so
// integers arrive as float64) alongside the declared column type. The declared
// type is interpreted using SQLite column affinity rules.
type AffinityCell struct {
	V            any
	DeclaredType string
}

func (c AffinityCell) realAffinity() bool {
	t := strings.ToUpper(c.DeclaredType)
	if strings.Contains(t, "INT") {
		return false
	}
	return strings.Contains(t, "REAL") || strings.Contains(t, "FLOA") || strings.Contains(t, "DOUB")
}

func (c AffinityCell) Int64() (int64, bool) {
	switch v := c.V.(type) {
	case float64:
		if c.realAffinity() || v != math.Trunc(v) || v < math.MinInt64 || v >= math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case json.Number:
		if i, err := strconv.ParseInt(v.String(), 10, 64); err == nil && !c.realAffinity() {
			return i, true
		}
	}
	return 0, false
}

func (c AffinityCell) Float64() (float64, bool) {
	return NativeCell{V: c.V}.Float64()
}

func (c AffinityCell) Text() (string, bool) {
	s, ok := c.V.(string)
	return s, ok
}

func (c AffinityCell) Bool() (bool, bool) {
	b, ok := c.V.(bool)
	return b, ok
}

// DecodeRow decodes every cell of a row in column order.
func DecodeRow[C Cell](cells []C) Row {
	row := make(Row, len(cells))
	for i, c := range cells {
		row[i] = Decode(c)
	}
	return row
}
