package radon

// Minimal deterministic CBOR codec for the RadonTypes value set (spec.md
// §4.3: "Every value round-trips through CBOR"). No CBOR library appears
// anywhere in the retrieved example pack's go.mod surface, so this is
// written directly against RFC 8949's major-type encoding, scoped to
// exactly the major types RadonTypes needs (0/1 integers, 2 bytes,
// 3 text, 4 array, 5 map, 7 float/bool, plus tag 39 for RadonError) rather
// than a general-purpose implementation — see DESIGN.md.

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/pkg/errors"
)

const radonErrorTag = 39

// Encode serializes v to its canonical CBOR byte representation.
func Encode(v Value) []byte {
	var buf []byte
	return appendValue(buf, v)
}

func appendValue(buf []byte, v Value) []byte {
	switch v.Kind {
	case KindInteger:
		return appendInt(buf, v.Integer)
	case KindFloat:
		return appendFloat(buf, v.Float)
	case KindString:
		return appendText(buf, v.Str)
	case KindBytes:
		return appendBytesMajor(buf, v.Bytes)
	case KindBoolean:
		if v.Boolean {
			return append(buf, 0xf5)
		}
		return append(buf, 0xf4)
	case KindArray:
		buf = appendHead(buf, 4, uint64(len(v.Array)))
		for _, item := range v.Array {
			buf = appendValue(buf, item)
		}
		return buf
	case KindMap:
		buf = appendHead(buf, 5, uint64(len(v.Map)))
		// Keys are written in RFC 8949 deterministic order: shorter first,
		// then bytewise, which is the order of their encoded text strings.
		keys := make([]string, 0, len(v.Map))
		for k := range v.Map {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			if len(keys[i]) != len(keys[j]) {
				return len(keys[i]) < len(keys[j])
			}
			return keys[i] < keys[j]
		})
		for _, k := range keys {
			buf = appendText(buf, k)
			buf = appendValue(buf, v.Map[k])
		}
		return buf
	case KindError:
		buf = appendHead(buf, 6, radonErrorTag) // tag
		items := make([]Value, 0, 1+len(v.Error.Args))
		items = append(items, Integer(int64(v.Error.Kind)))
		items = append(items, v.Error.Args...)
		buf = appendHead(buf, 4, uint64(len(items)))
		for _, item := range items {
			buf = appendValue(buf, item)
		}
		return buf
	default:
		return append(buf, 0xf6) // null, unreachable for well-formed values
	}
}

func appendHead(buf []byte, major byte, n uint64) []byte {
	prefix := major << 5
	switch {
	case n < 24:
		return append(buf, prefix|byte(n))
	case n <= 0xff:
		return append(buf, prefix|24, byte(n))
	case n <= 0xffff:
		b := make([]byte, 2)
		binary.BigEndian.PutUint16(b, uint16(n))
		return append(append(buf, prefix|25), b...)
	case n <= 0xffffffff:
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, uint32(n))
		return append(append(buf, prefix|26), b...)
	default:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, n)
		return append(append(buf, prefix|27), b...)
	}
}

func appendInt(buf []byte, v int64) []byte {
	if v >= 0 {
		return appendHead(buf, 0, uint64(v))
	}
	return appendHead(buf, 1, uint64(-1-v))
}

func appendFloat(buf []byte, v float64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, math.Float64bits(v))
	return append(append(buf, 0xfb), b...)
}

func appendText(buf []byte, s string) []byte {
	buf = appendHead(buf, 3, uint64(len(s)))
	return append(buf, s...)
}

func appendBytesMajor(buf []byte, b []byte) []byte {
	buf = appendHead(buf, 2, uint64(len(b)))
	return append(buf, b...)
}

// Decode parses a single CBOR-encoded Value from data, returning the number
// of bytes consumed.
func Decode(data []byte) (Value, int, error) {
	if len(data) == 0 {
		return Value{}, 0, errors.New("cbor: empty input")
	}
	major := data[0] >> 5
	addl := data[0] & 0x1f

	switch major {
	case 0:
		n, sz, err := readUint(data, addl)
		return Integer(int64(n)), sz, err
	case 1:
		n, sz, err := readUint(data, addl)
		return Integer(-1 - int64(n)), sz, err
	case 2:
		n, sz, err := readUint(data, addl)
		if err != nil {
			return Value{}, 0, err
		}
		if sz+int(n) > len(data) {
			return Value{}, 0, errors.New("cbor: byte string overruns input")
		}
		return Bytes(append([]byte{}, data[sz:sz+int(n)]...)), sz + int(n), nil
	case 3:
		n, sz, err := readUint(data, addl)
		if err != nil {
			return Value{}, 0, err
		}
		if sz+int(n) > len(data) {
			return Value{}, 0, errors.New("cbor: text string overruns input")
		}
		return String(string(data[sz : sz+int(n)])), sz + int(n), nil
	case 4:
		n, sz, err := readUint(data, addl)
		if err != nil {
			return Value{}, 0, err
		}
		items := make([]Value, 0, n)
		off := sz
		for i := uint64(0); i < n; i++ {
			item, consumed, err := Decode(data[off:])
			if err != nil {
				return Value{}, 0, err
			}
			items = append(items, item)
			off += consumed
		}
		return Value{Kind: KindArray, Array: items}, off, nil
	case 5:
		n, sz, err := readUint(data, addl)
		if err != nil {
			return Value{}, 0, err
		}
		m := make(map[string]Value, n)
		off := sz
		for i := uint64(0); i < n; i++ {
			key, consumed, err := Decode(data[off:])
			if err != nil {
				return Value{}, 0, err
			}
			off += consumed
			val, consumed, err := Decode(data[off:])
			if err != nil {
				return Value{}, 0, err
			}
			off += consumed
			m[key.Str] = val
		}
		return Value{Kind: KindMap, Map: m}, off, nil
	case 6:
		tag, sz, err := readUint(data, addl)
		if err != nil {
			return Value{}, 0, err
		}
		inner, consumed, err := Decode(data[sz:])
		if err != nil {
			return Value{}, 0, err
		}
		if tag == radonErrorTag {
			if inner.Kind != KindArray || len(inner.Array) < 1 {
				return Value{}, 0, errors.New("cbor: malformed RadonError tag payload")
			}
			kind := ErrorKind(inner.Array[0].Integer)
			return FromError(NewError(kind, inner.Array[1:]...)), sz + consumed, nil
		}
		return inner, sz + consumed, nil
	case 7:
		switch addl {
		case 20:
			return Boolean(false), 1, nil
		case 21:
			return Boolean(true), 1, nil
		case 22:
			return Value{}, 1, nil // null
		case 27:
			if len(data) < 9 {
				return Value{}, 0, errors.New("cbor: truncated float64")
			}
			bits := binary.BigEndian.Uint64(data[1:9])
			return Float(math.Float64frombits(bits)), 9, nil
		default:
			return Value{}, 0, errors.Errorf("cbor: unsupported simple/float addl %d", addl)
		}
	default:
		return Value{}, 0, errors.Errorf("cbor: unsupported major type %d", major)
	}
}

func readUint(data []byte, addl byte) (uint64, int, error) {
	switch {
	case addl < 24:
		return uint64(addl), 1, nil
	case addl == 24:
		if len(data) < 2 {
			return 0, 0, errors.New("cbor: truncated uint8 length")
		}
		return uint64(data[1]), 2, nil
	case addl == 25:
		if len(data) < 3 {
			return 0, 0, errors.New("cbor: truncated uint16 length")
		}
		return uint64(binary.BigEndian.Uint16(data[1:3])), 3, nil
	case addl == 26:
		if len(data) < 5 {
			return 0, 0, errors.New("cbor: truncated uint32 length")
		}
		return uint64(binary.BigEndian.Uint32(data[1:5])), 5, nil
	case addl == 27:
		if len(data) < 9 {
			return 0, 0, errors.New("cbor: truncated uint64 length")
		}
		return binary.BigEndian.Uint64(data[1:9]), 9, nil
	default:
		return 0, 0, errors.Errorf("cbor: unsupported additional info %d", addl)
	}
}
