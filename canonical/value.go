package canonical

import (
	"bytes"
	"errors"
)

/**
 * Value is the structured value carried by a committed leaf.
 *
 * It is an explicit tagged union over the value kinds that have a single,
 * deterministic canonical encoding. Values are immutable once constructed:
 * every constructor copies the slices it is given.
 */

var (
	ErrSerialization = errors.New("value can not be canonically serialized")
)

// Kind identifies which variant of the Value union is set.
type Kind uint8

const (
	// KindNull is the zero Kind, so the zero Value is null.
	KindNull Kind = iota
	KindBool
	KindInt
	KindUint
	KindFloat32
	KindFloat
	KindString
	KindBytes
	KindList
	KindMap
)

var kindNames = [...]string{
	KindNull:    "null",
	KindBool:    "bool",
	KindInt:     "int",
	KindUint:    "uint",
	KindFloat32: "float32",
	KindFloat:   "float",
	KindString:  "string",
	KindBytes:   "bytes",
	KindList:    "list",
	KindMap:     "map",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Field is a single entry of an ordered mapping.
type Field struct {
	Key   string
	Value Value
}

// Value is a structured value. The zero Value is null.
type Value struct {
	kind   Kind
	b      bool
	i      int64
	u      uint64
	f      float64
	s      string
	bytes  []byte
	list   []Value
	fields []Field
}

func Null() Value {
	return Value{kind: KindNull}
}

func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

func Int(i int64) Value {
	return Value{kind: KindInt, i: i}
}

// Uint holds unsigned integers, including those above the int64 range.
//
// Uint(n) and Int(n) encode to the same bytes for any n that fits both.
func Uint(u uint64) Value {
	return Value{kind: KindUint, u: u}
}

func Float32(f float32) Value {
	return Value{kind: KindFloat32, f: float64(f)}
}

func Float(f float64) Value {
	return Value{kind: KindFloat, f: f}
}

func String(s string) Value {
	return Value{kind: KindString, s: s}
}

// Bytes is a raw byte string. A nil slice is the empty byte string.
func Bytes(b []byte) Value {
	return Value{kind: KindBytes, bytes: bytes.Clone(nonNil(b))}
}

func List(values ...Value) Value {
	list := make([]Value, len(values))
	copy(list, values)
	return Value{kind: KindList, list: list}
}

// Map is an ordered mapping, the given order of the fields is preserved.
func Map(fields ...Field) Value {
	fs := make([]Field, len(fields))
	copy(fs, fields)
	return Value{kind: KindMap, fields: fs}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsNull() bool {
	return v.kind == KindNull
}

func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// AsInt returns the value as an int64, for Int values and for Uint values
// that fit in an int64.
func (v Value) AsInt() (int64, bool) {
	switch v.kind {
	case KindInt:
		return v.i, true
	case KindUint:
		if v.u <= 1<<63-1 {
			return int64(v.u), true
		}
	}
	return 0, false
}

// AsUint returns the value as a uint64, for Uint values and non negative Int values.
func (v Value) AsUint() (uint64, bool) {
	switch v.kind {
	case KindUint:
		return v.u, true
	case KindInt:
		if v.i >= 0 {
			return uint64(v.i), true
		}
	}
	return 0, false
}

func (v Value) AsFloat() (float64, bool) {
	return v.f, v.kind == KindFloat || v.kind == KindFloat32
}

func (v Value) AsString() (string, bool) {
	return v.s, v.kind == KindString
}

func (v Value) AsBytes() ([]byte, bool) {
	if v.kind != KindBytes {
		return nil, false
	}
	return bytes.Clone(nonNil(v.bytes)), true
}

func (v Value) AsList() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	list := make([]Value, len(v.list))
	copy(list, v.list)
	return list, true
}

func (v Value) AsMap() ([]Field, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	fields := make([]Field, len(v.fields))
	copy(fields, v.fields)
	return fields, true
}

// Get returns the value for key in a map value.
func (v Value) Get(key string) (Value, bool) {
	for _, f := range v.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Len is the number of elements of a list or map, or the length of a string
// or byte string.
func (v Value) Len() int {
	switch v.kind {
	case KindString:
		return len(v.s)
	case KindBytes:
		return len(v.bytes)
	case KindList:
		return len(v.list)
	case KindMap:
		return len(v.fields)
	}
	return 0
}

// Equal reports whether v and other are the same logical value.
//
// Int and Uint values holding the same number are equal, as they share an
// encoding.
func (v Value) Equal(other Value) bool {
	if isInteger(v.kind) && isInteger(other.kind) {
		a, aok := v.AsUint()
		b, bok := other.AsUint()
		if aok || bok {
			return aok && bok && a == b
		}
		return v.i == other.i
	}
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindFloat32, KindFloat:
		return v.f == other.f
	case KindString:
		return v.s == other.s
	case KindBytes:
		return bytes.Equal(v.bytes, other.bytes)
	case KindList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(other.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.fields) != len(other.fields) {
			return false
		}
		for i := range v.fields {
			if v.fields[i].Key != other.fields[i].Key || !v.fields[i].Value.Equal(other.fields[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}

func isInteger(k Kind) bool {
	return k == KindInt || k == KindUint
}

func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
