package merklicious

import (
	"bytes"
	"encoding/hex"
	"io"
	"math"
	"testing"

	"github.com/datatrails/go-datatrails-merklicious/canonical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTree(t *testing.T) {
	tests := []struct {
		name     string
		leaves   []LeafInput
		options  []CreateTreeOption
		expected string
		err      error
	}{
		{
			name:     "fixture",
			leaves:   fixtureLeaves(),
			options:  []CreateTreeOption{WithEntropy(zeroEntropy)},
			expected: rootHex,
		},
		{
			name:     "entropy read from source",
			leaves:   fixtureLeaves(),
			options:  []CreateTreeOption{WithEntropySource(bytes.NewReader(zeroEntropy))},
			expected: rootHex,
		},
		{
			name: "tampered fixture",
			leaves: []LeafInput{
				{Label: "a", Value: canonical.Int(1)},
				{Label: "b", Value: canonical.Int(99)},
				{Label: "c", Value: canonical.Int(3)},
			},
			options:  []CreateTreeOption{WithEntropy(zeroEntropy)},
			expected: rootTamperedHex,
		},
		{
			name: "five leaves",
			leaves: []LeafInput{
				{Label: "l0", Value: canonical.Int(0)},
				{Label: "l1", Value: canonical.Int(10)},
				{Label: "l2", Value: canonical.Int(20)},
				{Label: "l3", Value: canonical.Int(30)},
				{Label: "l4", Value: canonical.Int(40)},
			},
			options:  []CreateTreeOption{WithEntropy(zeroEntropy)},
			expected: root5Hex,
		},
		{
			name:     "single leaf",
			leaves:   []LeafInput{{Label: "only", Value: canonical.Null()}},
			options:  []CreateTreeOption{WithEntropy(zeroEntropy)},
			expected: singleLeafHex,
		},
		{
			name:    "no leaves",
			leaves:  nil,
			options: []CreateTreeOption{WithEntropy(zeroEntropy)},
			err:     ErrEmptyTree,
		},
		{
			name:    "empty entropy",
			leaves:  fixtureLeaves(),
			options: []CreateTreeOption{WithEntropy([]byte{})},
			err:     ErrKey,
		},
		{
			name:    "zero entropy size",
			leaves:  fixtureLeaves(),
			options: []CreateTreeOption{WithEntropySize(0)},
			err:     ErrKey,
		},
		{
			name:    "unencodable value",
			leaves:  []LeafInput{{Label: "x", Value: canonical.Float(math.Inf(1))}},
			options: []CreateTreeOption{WithEntropy(zeroEntropy)},
			err:     ErrSerialization,
		},
		{
			name:    "short entropy source",
			leaves:  fixtureLeaves(),
			options: []CreateTreeOption{WithEntropySource(bytes.NewReader([]byte{1, 2, 3}))},
			err:     io.ErrUnexpectedEOF,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			commitment, err := CreateTree(tt.leaves, tt.options...)
			assert.ErrorIs(t, err, tt.err)
			if tt.err != nil {
				return
			}

			assert.Equal(t, tt.expected, commitment.Root().Hex())
			assert.Len(t, commitment.DataBlocks, len(tt.leaves))
		})
	}
}

// TestCreateTree_LeafChanges tests:
//
// 1. reordering the leaves changes the root.
// 2. changing a leaf label changes the root.
// 3. a proof made under the original root does not verify against the changed root.
func TestCreateTree_LeafChanges(t *testing.T) {
	original, err := CreateTree(fixtureLeaves(), WithEntropy(zeroEntropy))
	require.NoError(t, err)
	staleProof, err := original.Proof("b")
	require.NoError(t, err)

	tests := []struct {
		name   string
		leaves []LeafInput
	}{
		{
			name: "reordered leaves",
			leaves: []LeafInput{
				{Label: "b", Value: canonical.Int(2)},
				{Label: "a", Value: canonical.Int(1)},
				{Label: "c", Value: canonical.Int(3)},
			},
		},
		{
			name: "changed label",
			leaves: []LeafInput{
				{Label: "A", Value: canonical.Int(1)},
				{Label: "b", Value: canonical.Int(2)},
				{Label: "c", Value: canonical.Int(3)},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changed, err := CreateTree(tt.leaves, WithEntropy(zeroEntropy))
			require.NoError(t, err)

			assert.NotEqual(t, rootHex, changed.Root().Hex())

			verified, err := VerifyProof(
				staleProof.Proof.Proof, staleProof.Index, staleProof.Leaf, changed.Root(), staleProof.TotalLeaves,
			)
			require.NoError(t, err)
			assert.False(t, verified)
		})
	}
}

// TestCreateTree_Entropy tests:
//
// 1. fresh entropy gives a different root for the same leaves.
// 2. the entropy is kept with the commitment, and recommitting under it reproduces the root.
func TestCreateTree_Entropy(t *testing.T) {
	first, err := CreateTree(fixtureLeaves())
	require.NoError(t, err)
	second, err := CreateTree(fixtureLeaves())
	require.NoError(t, err)

	assert.NotEqual(t, first.Root(), second.Root())
	assert.Len(t, first.Entropy(), DefaultEntropySize)

	again, err := CreateTree(fixtureLeaves(), WithEntropy(first.Entropy()))
	require.NoError(t, err)
	assert.Equal(t, first.Root(), again.Root())
}

func TestCommitment_Proof(t *testing.T) {
	commitment, err := CreateTree(fixtureLeaves(), WithEntropy(zeroEntropy))
	require.NoError(t, err)

	proof, err := commitment.Proof("b")
	require.NoError(t, err)

	assert.Equal(t, uint64(1), proof.Index)
	assert.Equal(t, []Digest{mustDigest(t, leaf0Hex), mustDigest(t, leaf2Hex)}, proof.Proof.Proof)
	assert.Equal(t, leaf1Hex, proof.Leaf.Hex())
	assert.Equal(t, "b", proof.Target.Label)
	assert.Equal(t, salt1Hex, hex.EncodeToString(proof.Target.Salt))

	verified, err := proof.Verify()
	require.NoError(t, err)
	assert.True(t, verified)

	_, err = commitment.Proof("missing")
	assert.ErrorIs(t, err, ErrLabelNotFound)
}

func TestCommitment_ProofDuplicateLabel(t *testing.T) {
	leaves := []LeafInput{
		{Label: "dup", Value: canonical.String("first")},
		{Label: "other", Value: canonical.Null()},
		{Label: "dup", Value: canonical.String("second")},
	}
	commitment, err := CreateTree(leaves, WithEntropy(zeroEntropy))
	require.NoError(t, err)

	proof, err := commitment.Proof("dup")
	require.NoError(t, err)

	assert.Equal(t, uint64(0), proof.Index)
	value, _ := proof.Target.Value.AsString()
	assert.Equal(t, "first", value)
}

// TestLeafProof_Verify tests:
//
// 1. changing the disclosed value fails verification.
// 2. a disclosure does not verify against the root of another commitment.
// 3. a structurally impossible disclosure is an error.
func TestLeafProof_Verify(t *testing.T) {
	commitment, err := CreateTree(fixtureLeaves(), WithEntropy(zeroEntropy))
	require.NoError(t, err)

	t.Run("tampered value", func(t *testing.T) {
		proof, err := commitment.Proof("b")
		require.NoError(t, err)

		proof.Target.Value = canonical.Int(99)

		verified, err := proof.Verify()
		require.NoError(t, err)
		assert.False(t, verified)
	})

	t.Run("tampered salt", func(t *testing.T) {
		proof, err := commitment.Proof("b")
		require.NoError(t, err)

		proof.Target.Salt = zeroEntropy

		verified, err := proof.Verify()
		require.NoError(t, err)
		assert.False(t, verified)
	})

	t.Run("other commitment", func(t *testing.T) {
		other, err := CreateTree(fixtureLeaves())
		require.NoError(t, err)

		proof, err := commitment.Proof("b")
		require.NoError(t, err)

		proof.Root = other.Root()

		verified, err := proof.Verify()
		require.NoError(t, err)
		assert.False(t, verified)
	})

	t.Run("index out of range", func(t *testing.T) {
		proof, err := commitment.Proof("b")
		require.NoError(t, err)

		proof.Index = 7

		_, err = proof.Verify()
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
	})
}
