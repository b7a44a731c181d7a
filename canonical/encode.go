package canonical

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"github.com/vmihailenco/msgpack/v5"
)

/**
 * Canonical encoding, version 1.
 *
 * The encoding is MessagePack with every choice pinned down:
 *
 *   null         0xc0
 *   bool         0xc2 / 0xc3
 *   int / uint   the shortest MessagePack integer form for the number
 *   float32      0xca + 4 bytes big endian
 *   float        0xcb + 8 bytes big endian
 *   string       fixstr / str8 / str16 / str32, valid UTF-8 only
 *   bytes        bin8 / bin16 / bin32, the empty byte string is bin8 of length 0
 *   list         fixarray / array16 / array32
 *   map          fixmap / map16 / map32, entries in insertion order
 *
 * Records are encoded as an array of their fields in declaration order.
 *
 * NaN and infinite floats, duplicate map keys and invalid UTF-8 have no
 * canonical form and are rejected with ErrSerialization.
 */

const (
	// Version of the canonical encoding. Commitments made with one version
	// only verify against encoders of the same version.
	Version = 1

	maxDepth = 512
)

// Encoder writes canonically encoded values to an underlying writer.
type Encoder struct {
	enc *msgpack.Encoder
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{enc: msgpack.NewEncoder(w)}
}

// Encode returns the canonical encoding of v.
func Encode(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := NewEncoder(&buf).EncodeValue(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeValue writes the canonical encoding of v.
func (e *Encoder) EncodeValue(v Value) error {
	return e.encodeValue(v, 0)
}

func (e *Encoder) encodeValue(v Value, depth int) error {
	if depth > maxDepth {
		return fmt.Errorf("%w: nesting deeper than %d", ErrSerialization, maxDepth)
	}

	switch v.kind {
	case KindNull:
		return e.enc.EncodeNil()
	case KindBool:
		return e.enc.EncodeBool(v.b)
	case KindInt:
		return e.enc.EncodeInt(v.i)
	case KindUint:
		return e.enc.EncodeUint(v.u)
	case KindFloat32:
		if err := checkFinite(v.f); err != nil {
			return err
		}
		return e.enc.EncodeFloat32(float32(v.f))
	case KindFloat:
		if err := checkFinite(v.f); err != nil {
			return err
		}
		return e.enc.EncodeFloat64(v.f)
	case KindString:
		return e.EncodeString(v.s)
	case KindBytes:
		return e.EncodeBytes(v.bytes)
	case KindList:
		if err := e.EncodeArrayLen(len(v.list)); err != nil {
			return err
		}
		for _, item := range v.list {
			if err := e.encodeValue(item, depth+1); err != nil {
				return err
			}
		}
		return nil
	case KindMap:
		return e.encodeFields(v.fields, depth)
	default:
		return fmt.Errorf("%w: unknown value kind %d", ErrSerialization, v.kind)
	}
}

func (e *Encoder) encodeFields(fields []Field, depth int) error {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, ok := seen[f.Key]; ok {
			return fmt.Errorf("%w: duplicate map key %q", ErrSerialization, f.Key)
		}
		seen[f.Key] = struct{}{}
	}

	if err := e.enc.EncodeMapLen(len(fields)); err != nil {
		return err
	}
	for _, f := range fields {
		if err := e.EncodeString(f.Key); err != nil {
			return err
		}
		if err := e.encodeValue(f.Value, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// EncodeString writes a UTF-8 string.
func (e *Encoder) EncodeString(s string) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("%w: string is not valid utf-8", ErrSerialization)
	}
	return e.enc.EncodeString(s)
}

// EncodeBytes writes a byte string. A nil slice is written as the empty byte string.
func (e *Encoder) EncodeBytes(b []byte) error {
	return e.enc.EncodeBytes(nonNil(b))
}

// EncodeArrayLen starts an array, or a record, of n elements.
func (e *Encoder) EncodeArrayLen(n int) error {
	return e.enc.EncodeArrayLen(n)
}

func (e *Encoder) EncodeUint(u uint64) error {
	return e.enc.EncodeUint(u)
}

func checkFinite(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%w: non finite float %v", ErrSerialization, f)
	}
	return nil
}
