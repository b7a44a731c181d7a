package integrationsupport

import (
	"context"
	"testing"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/datatrails/go-datatrails-merklicious/claims"
	"github.com/datatrails/go-datatrails-merklicious/merklicious"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEndToEnd tests:
//
// 1. a disclosed leaf of a stored tree verifies against the root of its signed claim.
// 2. the signed claim is included in the claim log.
// 3. the claim log is consistent with its earlier state.
// 4. every claim log entry verifies, with no omissions.
func TestEndToEnd(t *testing.T) {
	logger.New("NOOP")
	defer logger.OnExit()

	tc, g := NewTestContext(t, "TestEndToEnd")
	verificationKey, oldState, trees := SetupTest(t, tc, g)
	verifier := NewCoseVerifierForECPublicKey(t, &verificationKey)

	ctx := context.Background()

	for _, tree := range trees {
		label := tree.Leaves[2].Label

		proof, err := tc.Ledger.GetLeafProof(ctx, tree.ID, label)
		require.NoError(t, err)

		claim, err := claims.VerifySigned(tc.Codec, tree.Signed, verifier)
		require.NoError(t, err)
		require.Equal(t, tree.ID, claim.TreeID)

		results, err := merklicious.VerifyDisclosures(claim.Root, TestLeavesPerTree, []merklicious.LeafProof{*proof})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, merklicious.Disclosed, results[0].Type)
		assert.Equal(t, label, results[0].Label)

		inclusion, err := tc.Log.InclusionProof(tree.Entry.MMRIndex)
		require.NoError(t, err)
		included, err := tc.Log.VerifyInclusion(tree.Signed, tree.Entry.MMRIndex, inclusion)
		require.NoError(t, err)
		assert.True(t, included)
	}

	consistent, err := tc.Log.CheckStateConsistency(oldState)
	require.NoError(t, err)
	assert.True(t, consistent)

	entries := make([]claims.Entry, 0, len(trees))
	for _, tree := range trees {
		entries = append(entries, tree.Entry)
	}
	omitted, err := tc.Log.VerifyEntries(entries)
	require.NoError(t, err)
	assert.Empty(t, omitted)
}

// TestGenerator_Deterministic tests:
//
// 1. two test contexts create identical trees, as entropy and leaves are seeded.
func TestGenerator_Deterministic(t *testing.T) {
	logger.New("NOOP")
	defer logger.OnExit()

	key := TestGenerateECKey(t)

	tcA, gA := NewTestContext(t, "TestGenerator_Deterministic")
	tcB, gB := NewTestContext(t, "TestGenerator_Deterministic")

	treesA := GenerateTrees(t, tcA, gA, 3, key)
	treesB := GenerateTrees(t, tcB, gB, 3, key)

	for i := range treesA {
		assert.Equal(t, treesA[i].ID, treesB[i].ID)
		assert.Equal(t, treesA[i].Record.Root, treesB[i].Record.Root)
		assert.Equal(t, treesA[i].Leaves[0].Label, treesB[i].Leaves[0].Label)
	}

	// labels are unique within a run
	seen := map[string]bool{}
	for _, tree := range treesA {
		for _, leaf := range tree.Leaves {
			assert.False(t, seen[leaf.Label])
			seen[leaf.Label] = true
		}
	}
}
