// Package radon implements the typed CBOR value runtime and tally
// precondition/reducer logic described in spec.md §4.3. Every RadonTypes
// value round-trips through CBOR; RadonError values are first-class so
// that retrieval/aggregation/tally scripts never need to panic on failure
// (the "error interception discipline" of spec.md §1/§7/§9).
package radon

import "fmt"

// Kind discriminates the RadonTypes sum type. Kind is exactly the
// "type-level" discriminant the tally precondition clause buckets reveals
// by (spec.md §4.3 "treating every RadonError as one bucket").
type Kind uint8

// Kind values, one per RadonTypes variant (spec.md §4.3).
const (
	KindInteger Kind = iota
	KindFloat
	KindString
	KindBytes
	KindBoolean
	KindArray
	KindMap
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "Integer"
	case KindFloat:
		return "Float"
	case KindString:
		return "String"
	case KindBytes:
		return "Bytes"
	case KindBoolean:
		return "Boolean"
	case KindArray:
		return "Array"
	case KindMap:
		return "Map"
	case KindError:
		return "RadonError"
	default:
		return "Unknown"
	}
}

// Value is a RadonTypes value. Only the field matching Kind is meaningful.
// Integer uses int64 as a practical stand-in for the spec's i128 — no
// consensus-critical arithmetic in this implementation exceeds 64 bits of
// range, and no CBOR/bigint library appears anywhere in the retrieved pack.
type Value struct {
	Kind    Kind
	Integer int64
	Float   float64
	Str     string
	Bytes   []byte
	Boolean bool
	Array   []Value
	Map     map[string]Value
	Error   *Error
}

// Integer constructs an Integer value.
func Integer(v int64) Value { return Value{Kind: KindInteger, Integer: v} }

// Float constructs a Float value.
func Float(v float64) Value { return Value{Kind: KindFloat, Float: v} }

// String constructs a String value.
func String(v string) Value { return Value{Kind: KindString, Str: v} }

// Bytes constructs a Bytes value.
func Bytes(v []byte) Value { return Value{Kind: KindBytes, Bytes: v} }

// Boolean constructs a Boolean value.
func Boolean(v bool) Value { return Value{Kind: KindBoolean, Boolean: v} }

// Arr constructs an Array value.
func Arr(v ...Value) Value { return Value{Kind: KindArray, Array: v} }

// FromError wraps a RadonError as a Value, the mechanism by which a runtime
// failure becomes a first-class committable/revealable value.
func FromError(e *Error) Value { return Value{Kind: KindError, Error: e} }

// IsError reports whether v carries a RadonError.
func (v Value) IsError() bool { return v.Kind == KindError }

func (v Value) String() string {
	switch v.Kind {
	case KindInteger:
		return fmt.Sprintf("Integer(%d)", v.Integer)
	case KindFloat:
		return fmt.Sprintf("Float(%v)", v.Float)
	case KindString:
		return fmt.Sprintf("String(%q)", v.Str)
	case KindBytes:
		return fmt.Sprintf("Bytes(%x)", v.Bytes)
	case KindBoolean:
		return fmt.Sprintf("Boolean(%v)", v.Boolean)
	case KindArray:
		return fmt.Sprintf("Array(%v)", v.Array)
	case KindMap:
		return fmt.Sprintf("Map(%v)", v.Map)
	case KindError:
		return fmt.Sprintf("RadonError(%v)", v.Error)
	default:
		return "Unknown"
	}
}

// Equal reports structural equality, used by the error-kind mode filter and
// by tests. NaN floats never compare equal to anything, including
// themselves, matching IEEE-754 semantics the deviation/mean reducers rely
// on when they special-case NaN.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindInteger:
		return v.Integer == o.Integer
	case KindFloat:
		return v.Float == o.Float
	case KindString:
		return v.Str == o.Str
	case KindBytes:
		if len(v.Bytes) != len(o.Bytes) {
			return false
		}
		for i := range v.Bytes {
			if v.Bytes[i] != o.Bytes[i] {
				return false
			}
		}
		return true
	case KindBoolean:
		return v.Boolean == o.Boolean
	case KindArray:
		if len(v.Array) != len(o.Array) {
			return false
		}
		for i := range v.Array {
			if !v.Array[i].Equal(o.Array[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.Map) != len(o.Map) {
			return false
		}
		for k, item := range v.Map {
			other, ok := o.Map[k]
			if !ok || !item.Equal(other) {
				return false
			}
		}
		return true
	case KindError:
		return v.Error.Equal(o.Error)
	default:
		return false
	}
}
