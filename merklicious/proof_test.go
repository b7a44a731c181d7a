package merklicious

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTree_Prove tests:
//
// 1. siblings are listed bottom level first.
// 2. nothing is listed for a level where the path is the promoted lone node.
func TestTree_Prove(t *testing.T) {
	leaf0 := mustDigest(t, leaf0Hex)
	leaf1 := mustDigest(t, leaf1Hex)
	leaf2 := mustDigest(t, leaf2Hex)
	h01 := mustDigest(t, h01Hex)

	tree, err := BuildTree([]Digest{leaf0, leaf1, leaf2})
	require.NoError(t, err)

	tests := []struct {
		name     string
		index    uint64
		expected []Digest
		err      error
	}{
		{name: "first leaf", index: 0, expected: []Digest{leaf1, leaf2}},
		{name: "middle leaf", index: 1, expected: []Digest{leaf0, leaf2}},
		{name: "promoted leaf", index: 2, expected: []Digest{h01}},
		{name: "out of range", index: 3, err: ErrIndexOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proof, err := tree.Prove(tt.index)
			assert.ErrorIs(t, err, tt.err)
			if tt.err != nil {
				return
			}

			assert.Equal(t, tt.expected, proof.Proof)
			assert.Equal(t, tt.index, proof.Index)
			assert.Equal(t, uint64(3), proof.TotalLeaves)
			assert.Equal(t, rootHex, proof.Root.Hex())
		})
	}
}

func TestTree_ProveSingleLeaf(t *testing.T) {
	leaf := mustDigest(t, singleLeafHex)

	tree, err := BuildTree([]Digest{leaf})
	require.NoError(t, err)

	proof, err := tree.Prove(0)
	require.NoError(t, err)
	assert.Empty(t, proof.Proof)
	assert.Equal(t, leaf, proof.Root)

	verified, err := proof.Verify()
	require.NoError(t, err)
	assert.True(t, verified)
}

// TestTree_ProveAll tests:
//
// 1. every leaf of trees of every size up to 33 proves and verifies.
// 2. the proof length matches ExpectedProofLength.
// 3. the proof does not verify a different leaf at the same index.
func TestTree_ProveAll(t *testing.T) {
	for n := 1; n <= 33; n++ {
		leaves := syntheticLeaves(n)

		tree, err := BuildTree(leaves)
		require.NoError(t, err)

		for index := uint64(0); index < uint64(n); index++ {
			proof, err := tree.Prove(index)
			require.NoError(t, err)

			expectedLength, err := ExpectedProofLength(index, uint64(n))
			require.NoError(t, err)
			assert.Len(t, proof.Proof, expectedLength, "n=%d index=%d", n, index)

			verified, err := proof.Verify()
			require.NoError(t, err)
			assert.True(t, verified, "n=%d index=%d", n, index)

			wrongLeaf := leaves[(int(index)+1)%n]
			if n > 1 {
				verified, err = VerifyProof(proof.Proof, index, wrongLeaf, proof.Root, proof.TotalLeaves)
				require.NoError(t, err)
				assert.False(t, verified, "n=%d index=%d", n, index)
			}
		}
	}
}

func TestProof_JSON(t *testing.T) {
	tree, err := BuildTree(syntheticLeaves(5))
	require.NoError(t, err)

	proof, err := tree.Prove(3)
	require.NoError(t, err)

	data, err := json.Marshal(proof)
	require.NoError(t, err)

	var fields map[string]any
	err = json.Unmarshal(data, &fields)
	require.NoError(t, err)
	assert.Contains(t, fields, "proof")
	assert.Contains(t, fields, "total_leaves")
	assert.Equal(t, proof.Root.Hex(), fields["root"])

	var decoded Proof
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, *proof, decoded)
}
