package canonical

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

// Decoder reads canonically encoded values from an underlying reader.
type Decoder struct {
	dec *msgpack.Decoder
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{dec: msgpack.NewDecoder(r)}
}

// Decode decodes a single value that must span all of b.
//
// Input that decodes, but is not the canonical encoding of the decoded value,
// is rejected. This keeps decode(encode(v)) and encode(decode(b)) as
// inverses, so a decoded value re-hashes to the digest it was committed under.
func Decode(b []byte) (Value, error) {
	r := bytes.NewReader(b)
	v, err := NewDecoder(r).DecodeValue()
	if err != nil {
		return Value{}, err
	}
	if r.Len() != 0 {
		return Value{}, fmt.Errorf("%w: %d trailing bytes", ErrSerialization, r.Len())
	}

	reencoded, err := Encode(v)
	if err != nil {
		return Value{}, err
	}
	if !bytes.Equal(reencoded, b) {
		return Value{}, fmt.Errorf("%w: input is not canonically encoded", ErrSerialization)
	}

	return v, nil
}

// DecodeValue reads the next value.
func (d *Decoder) DecodeValue() (Value, error) {
	return d.decodeValue(0)
}

func (d *Decoder) decodeValue(depth int) (Value, error) {
	if depth > maxDepth {
		return Value{}, fmt.Errorf("%w: nesting deeper than %d", ErrSerialization, maxDepth)
	}

	c, err := d.dec.PeekCode()
	if err != nil {
		return Value{}, err
	}

	switch {
	case c == msgpcode.Nil:
		return Null(), d.dec.DecodeNil()

	case c == msgpcode.False || c == msgpcode.True:
		b, err := d.dec.DecodeBool()
		return Bool(b), err

	case isUnsignedCode(c):
		u, err := d.dec.DecodeUint64()
		if err != nil {
			return Value{}, err
		}
		if u <= math.MaxInt64 {
			return Int(int64(u)), nil
		}
		return Uint(u), nil

	case isSignedCode(c):
		i, err := d.dec.DecodeInt64()
		return Int(i), err

	case c == msgpcode.Float:
		f, err := d.dec.DecodeFloat32()
		return Float32(f), err

	case c == msgpcode.Double:
		f, err := d.dec.DecodeFloat64()
		return Float(f), err

	case msgpcode.IsString(c):
		s, err := d.dec.DecodeString()
		return String(s), err

	case msgpcode.IsBin(c):
		b, err := d.dec.DecodeBytes()
		return Bytes(b), err

	case msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32:
		n, err := d.dec.DecodeArrayLen()
		if err != nil {
			return Value{}, err
		}
		list := make([]Value, 0, min(n, 1024))
		for range n {
			item, err := d.decodeValue(depth + 1)
			if err != nil {
				return Value{}, err
			}
			list = append(list, item)
		}
		return Value{kind: KindList, list: list}, nil

	case msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32:
		n, err := d.dec.DecodeMapLen()
		if err != nil {
			return Value{}, err
		}
		fields := make([]Field, 0, min(n, 1024))
		for range n {
			key, err := d.DecodeString()
			if err != nil {
				return Value{}, err
			}
			item, err := d.decodeValue(depth + 1)
			if err != nil {
				return Value{}, err
			}
			fields = append(fields, Field{Key: key, Value: item})
		}
		return Value{kind: KindMap, fields: fields}, nil
	}

	return Value{}, fmt.Errorf("%w: unsupported msgpack code 0x%02x", ErrSerialization, c)
}

// DecodeArrayLen reads the header of an array, or a record.
func (d *Decoder) DecodeArrayLen() (int, error) {
	c, err := d.dec.PeekCode()
	if err != nil {
		return 0, err
	}
	if !(msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32) {
		return 0, fmt.Errorf("%w: expected array, got code 0x%02x", ErrSerialization, c)
	}
	return d.dec.DecodeArrayLen()
}

func (d *Decoder) DecodeString() (string, error) {
	c, err := d.dec.PeekCode()
	if err != nil {
		return "", err
	}
	if !msgpcode.IsString(c) {
		return "", fmt.Errorf("%w: expected string, got code 0x%02x", ErrSerialization, c)
	}
	return d.dec.DecodeString()
}

func (d *Decoder) DecodeBytes() ([]byte, error) {
	c, err := d.dec.PeekCode()
	if err != nil {
		return nil, err
	}
	if !msgpcode.IsBin(c) {
		return nil, fmt.Errorf("%w: expected bytes, got code 0x%02x", ErrSerialization, c)
	}
	b, err := d.dec.DecodeBytes()
	return nonNil(b), err
}

func (d *Decoder) DecodeUint() (uint64, error) {
	c, err := d.dec.PeekCode()
	if err != nil {
		return 0, err
	}
	if !isUnsignedCode(c) {
		return 0, fmt.Errorf("%w: expected unsigned integer, got code 0x%02x", ErrSerialization, c)
	}
	return d.dec.DecodeUint64()
}

func isUnsignedCode(c byte) bool {
	return c <= msgpcode.PosFixedNumHigh ||
		c == msgpcode.Uint8 || c == msgpcode.Uint16 || c == msgpcode.Uint32 || c == msgpcode.Uint64
}

func isSignedCode(c byte) bool {
	return c >= msgpcode.NegFixedNumLow ||
		c == msgpcode.Int8 || c == msgpcode.Int16 || c == msgpcode.Int32 || c == msgpcode.Int64
}
