package canonical

import (
	"fmt"
	"math"
	"sort"

	"google.golang.org/protobuf/types/known/structpb"
)

// FromProto converts a google.protobuf.Value into a Value.
//
// Struct fields carry no order on the wire, so they are sorted by key. Numbers
// with an exact int64 representation become Int, the rest Float.
func FromProto(pv *structpb.Value) (Value, error) {
	if pv == nil {
		return Null(), nil
	}

	switch k := pv.GetKind().(type) {
	case nil, *structpb.Value_NullValue:
		return Null(), nil
	case *structpb.Value_BoolValue:
		return Bool(k.BoolValue), nil
	case *structpb.Value_NumberValue:
		n := k.NumberValue
		if n == math.Trunc(n) && n >= math.MinInt64 && n < math.MaxInt64 {
			return Int(int64(n)), nil
		}
		if err := checkFinite(n); err != nil {
			return Value{}, err
		}
		return Float(n), nil
	case *structpb.Value_StringValue:
		return String(k.StringValue), nil
	case *structpb.Value_ListValue:
		items := k.ListValue.GetValues()
		list := make([]Value, 0, len(items))
		for _, item := range items {
			v, err := FromProto(item)
			if err != nil {
				return Value{}, err
			}
			list = append(list, v)
		}
		return Value{kind: KindList, list: list}, nil
	case *structpb.Value_StructValue:
		src := k.StructValue.GetFields()
		keys := make([]string, 0, len(src))
		for key := range src {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		fields := make([]Field, 0, len(keys))
		for _, key := range keys {
			v, err := FromProto(src[key])
			if err != nil {
				return Value{}, err
			}
			fields = append(fields, Field{Key: key, Value: v})
		}
		return Value{kind: KindMap, fields: fields}, nil
	}

	return Value{}, fmt.Errorf("%w: unsupported protobuf value kind %T", ErrSerialization, pv.GetKind())
}

// ToProto converts a Value into a google.protobuf.Value.
//
// Byte strings have no protobuf Value form and are rejected. Integers beyond
// 2^53 lose precision, as protobuf numbers are doubles.
func ToProto(v Value) (*structpb.Value, error) {
	switch v.kind {
	case KindNull:
		return structpb.NewNullValue(), nil
	case KindBool:
		return structpb.NewBoolValue(v.b), nil
	case KindInt:
		return structpb.NewNumberValue(float64(v.i)), nil
	case KindUint:
		return structpb.NewNumberValue(float64(v.u)), nil
	case KindFloat32, KindFloat:
		if err := checkFinite(v.f); err != nil {
			return nil, err
		}
		return structpb.NewNumberValue(v.f), nil
	case KindString:
		return structpb.NewStringValue(v.s), nil
	case KindList:
		values := make([]*structpb.Value, 0, len(v.list))
		for _, item := range v.list {
			pv, err := ToProto(item)
			if err != nil {
				return nil, err
			}
			values = append(values, pv)
		}
		return structpb.NewListValue(&structpb.ListValue{Values: values}), nil
	case KindMap:
		fields := make(map[string]*structpb.Value, len(v.fields))
		for _, f := range v.fields {
			if _, ok := fields[f.Key]; ok {
				return nil, fmt.Errorf("%w: duplicate map key %q", ErrSerialization, f.Key)
			}
			pv, err := ToProto(f.Value)
			if err != nil {
				return nil, err
			}
			fields[f.Key] = pv
		}
		return structpb.NewStructValue(&structpb.Struct{Fields: fields}), nil
	case KindBytes:
		return nil, fmt.Errorf("%w: byte strings have no protobuf value form", ErrSerialization)
	}

	return nil, fmt.Errorf("%w: unknown value kind %d", ErrSerialization, v.kind)
}
