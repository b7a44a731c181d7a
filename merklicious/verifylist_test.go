package merklicious

import (
	"testing"

	"github.com/datatrails/go-datatrails-merklicious/canonical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestVerifyDisclosures tests:
//
// 1. valid disclosures are Disclosed.
// 2. a tampered disclosure, or one for another tree, is Rejected.
// 3. a disclosure of an impossible position is Malformed.
// 4. disclosing the same leaf twice rejects the second.
func TestVerifyDisclosures(t *testing.T) {
	commitment, err := CreateTree(fixtureLeaves(), WithEntropy(zeroEntropy))
	require.NoError(t, err)
	other, err := CreateTree(fixtureLeaves())
	require.NoError(t, err)

	proofA, err := commitment.Proof("a")
	require.NoError(t, err)
	proofC, err := commitment.Proof("c")
	require.NoError(t, err)

	tampered, err := commitment.Proof("b")
	require.NoError(t, err)
	tampered.Target.Value = canonical.Int(99)

	foreign, err := other.Proof("b")
	require.NoError(t, err)

	malformed, err := commitment.Proof("b")
	require.NoError(t, err)
	malformed.Proof.Proof = malformed.Proof.Proof[:1]

	disclosures := []LeafProof{*proofA, *tampered, *foreign, *malformed, *proofC, *proofA}

	results, err := VerifyDisclosures(commitment.Root(), commitment.Tree.TotalLeaves(), disclosures)
	require.NoError(t, err)
	require.Len(t, results, len(disclosures))

	expected := []struct {
		label string
		kind  DisclosureType
		err   error
	}{
		{label: "a", kind: Disclosed},
		{label: "b", kind: Rejected, err: ErrDisclosureVerify},
		{label: "b", kind: Rejected, err: ErrDifferentTree},
		{label: "b", kind: Malformed, err: ErrProofLengthMismatch},
		{label: "c", kind: Disclosed},
		{label: "a", kind: Rejected, err: ErrDuplicateDisclosure},
	}
	for i, e := range expected {
		assert.Equal(t, e.label, results[i].Label, "result %d", i)
		assert.Equal(t, e.kind, results[i].Type, "result %d", i)
		assert.ErrorIs(t, results[i].Err, e.err, "result %d", i)
	}
}

func TestVerifyDisclosures_EmptyTree(t *testing.T) {
	_, err := VerifyDisclosures(Digest{}, 0, nil)
	assert.ErrorIs(t, err, ErrEmptyTree)
}

func TestVerifyDisclosure_MissingSalt(t *testing.T) {
	commitment, err := CreateTree(fixtureLeaves(), WithEntropy(zeroEntropy))
	require.NoError(t, err)

	proof, err := commitment.Proof("a")
	require.NoError(t, err)
	proof.Target.Salt = nil

	result := VerifyDisclosure(commitment.Root(), 3, *proof)
	assert.Equal(t, Malformed, result.Type)
	assert.ErrorIs(t, result.Err, ErrSaltRequired)
}
