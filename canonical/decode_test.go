package canonical

import (
	"encoding/hex"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		value Value
	}{
		{name: "null", value: Null()},
		{name: "bool", value: Bool(true)},
		{name: "negative int", value: Int(-70000)},
		{name: "uint above int64", value: Uint(math.MaxUint64)},
		{name: "float32", value: Float32(-0.25)},
		{name: "float", value: Float(3.14159)},
		{name: "bytes", value: Bytes([]byte("abc"))},
		{
			name: "nested",
			value: Map(
				Field{Key: "z", Value: List(Int(1), Map(Field{Key: "k", Value: String("v")}))},
				Field{Key: "a", Value: Bytes(nil)},
			),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := Encode(tt.value)
			require.NoError(t, err)

			decoded, err := Decode(encoded)
			require.NoError(t, err)
			assert.True(t, tt.value.Equal(decoded))
		})
	}
}

// TestDecode_Rejected tests:
//
// 1. inputs that decode but are not in canonical form are rejected.
// 2. trailing bytes and unsupported msgpack types are rejected.
func TestDecode_Rejected(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "uint8 holding a fixint", input: "cc05"},
		{name: "int8 holding a positive number", input: "d005"},
		{name: "str8 holding a short string", input: "d90161"},
		{name: "array16 holding one element", input: "dc000101"},
		{name: "duplicate map key", input: "82a16101a16102"},
		{name: "trailing bytes", input: "c0c0"},
		{name: "reserved code", input: "c1"},
		{name: "extension type", input: "d40100"},
		{name: "non string map key", input: "810101"},
		{name: "invalid utf-8", input: "a1ff"},
		{name: "nan", input: "cb7ff8000000000000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, err := hex.DecodeString(tt.input)
			require.NoError(t, err)

			_, err = Decode(input)
			assert.ErrorIs(t, err, ErrSerialization)
		})
	}
}

func TestDecode_Truncated(t *testing.T) {
	_, err := Decode([]byte{0x92, 0x01})
	assert.Error(t, err)
}
