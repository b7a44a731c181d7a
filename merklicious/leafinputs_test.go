package merklicious

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLeafInputs(t *testing.T) {
	tests := []struct {
		name            string
		input           string
		expectedLabels  []string
		expectedEntropy []byte
		err             error
	}{
		{
			name:           "leaves",
			input:          `{"leaves":[{"label":"a","value":1},{"label":"b","value":{"y":1,"x":2}}]}`,
			expectedLabels: []string{"a", "b"},
		},
		{
			name:            "leaves with entropy",
			input:           `{"leaves":[{"label":"a","value":null}],"entropy":"0102"}`,
			expectedLabels:  []string{"a"},
			expectedEntropy: []byte{1, 2},
		},
		{
			name:           "missing value is null",
			input:          `{"leaves":[{"label":""}]}`,
			expectedLabels: []string{""},
		},
		{
			name:  "missing label",
			input: `{"leaves":[{"value":1}]}`,
			err:   ErrLabelRequired,
		},
		{
			name:  "no leaves",
			input: `{"leaves":[]}`,
			err:   ErrEmptyTree,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			leaves, entropy, err := ParseLeafInputs([]byte(tt.input))
			assert.ErrorIs(t, err, tt.err)
			if tt.err != nil {
				return
			}

			labels := []string{}
			for _, leaf := range leaves {
				labels = append(labels, leaf.Label)
			}
			assert.Equal(t, tt.expectedLabels, labels)
			assert.Equal(t, tt.expectedEntropy, entropy)
		})
	}
}

// TestParseLeafInputs_Fixture tests:
//
// 1. leaves parsed from json commit to the same root as the same leaves built in code.
// 2. object key order inside a value is part of the commitment.
func TestParseLeafInputs_Fixture(t *testing.T) {
	input := `{"leaves":[{"label":"a","value":1},{"label":"b","value":2},{"label":"c","value":3}],` +
		`"entropy":"0000000000000000000000000000000000000000000000000000000000000000"}`

	leaves, entropy, err := ParseLeafInputs([]byte(input))
	require.NoError(t, err)

	commitment, err := CreateTree(leaves, WithEntropy(entropy))
	require.NoError(t, err)
	assert.Equal(t, rootHex, commitment.Root().Hex())

	xy, _, err := ParseLeafInputs([]byte(`{"leaves":[{"label":"m","value":{"x":1,"y":2}}]}`))
	require.NoError(t, err)
	yx, _, err := ParseLeafInputs([]byte(`{"leaves":[{"label":"m","value":{"y":2,"x":1}}]}`))
	require.NoError(t, err)

	first, err := CreateTree(xy, WithEntropy(zeroEntropy))
	require.NoError(t, err)
	second, err := CreateTree(yx, WithEntropy(zeroEntropy))
	require.NoError(t, err)
	assert.NotEqual(t, first.Root(), second.Root())
}

func TestParseLeafInputs_InvalidJSON(t *testing.T) {
	_, _, err := ParseLeafInputs([]byte(`{"leaves":`))
	assert.Error(t, err)

	_, _, err = ParseLeafInputs([]byte(`{"leaves":[{"label":"a"}],"entropy":"zz"}`))
	assert.Error(t, err)
}
