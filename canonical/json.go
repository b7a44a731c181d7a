package canonical

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

/**
 * JSON bridge.
 *
 * encoding/json decodes objects into Go maps, which lose key order. Leaf values
 * are ordered mappings, so objects are read token by token instead.
 */

// ParseJSON converts a JSON document into a Value, preserving object key order.
//
// Integral numbers become Int (or Uint above the int64 range), other numbers Float.
func ParseJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := parseJSONValue(dec, 0)
	if err != nil {
		if errors.Is(err, ErrSerialization) {
			return Value{}, err
		}
		return Value{}, fmt.Errorf("%w: %v", ErrSerialization, err)
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, fmt.Errorf("%w: trailing data after json value", ErrSerialization)
	}
	return v, nil
}

func parseJSONValue(dec *json.Decoder, depth int) (Value, error) {
	if depth > maxDepth {
		return Value{}, fmt.Errorf("%w: nesting deeper than %d", ErrSerialization, maxDepth)
	}

	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}

	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		return parseJSONNumber(t)
	case json.Delim:
		switch t {
		case '[':
			list := []Value{}
			for dec.More() {
				item, err := parseJSONValue(dec, depth+1)
				if err != nil {
					return Value{}, err
				}
				list = append(list, item)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Value{kind: KindList, list: list}, nil
		case '{':
			fields := []Field{}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("%w: non string object key", ErrSerialization)
				}
				item, err := parseJSONValue(dec, depth+1)
				if err != nil {
					return Value{}, err
				}
				fields = append(fields, Field{Key: key, Value: item})
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Value{kind: KindMap, fields: fields}, nil
		}
	}

	return Value{}, fmt.Errorf("%w: unexpected json token %v", ErrSerialization, tok)
}

func parseJSONNumber(n json.Number) (Value, error) {
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		return Int(i), nil
	}
	if u, err := strconv.ParseUint(n.String(), 10, 64); err == nil {
		return Uint(u), nil
	}
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return Float(f), nil
}

// UnmarshalJSON implements json.Unmarshaler using ParseJSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := ParseJSON(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalJSON renders the value as JSON, keeping map order. Byte strings are
// rendered as base64 strings, so the JSON view is not always reversible.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) writeJSON(buf *bytes.Buffer) error {
	var scalar any
	switch v.kind {
	case KindNull:
		scalar = nil
	case KindBool:
		scalar = v.b
	case KindInt:
		scalar = v.i
	case KindUint:
		scalar = v.u
	case KindFloat32, KindFloat:
		if err := checkFinite(v.f); err != nil {
			return err
		}
		scalar = v.f
	case KindString:
		scalar = v.s
	case KindBytes:
		scalar = nonNil(v.bytes)
	case KindList:
		buf.WriteByte('[')
		for i, item := range v.list {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case KindMap:
		buf.WriteByte('{')
		for i, f := range v.fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(f.Key)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := f.Value.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	default:
		return fmt.Errorf("%w: unknown value kind %d", ErrSerialization, v.kind)
	}

	data, err := json.Marshal(scalar)
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}
