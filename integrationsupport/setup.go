package integrationsupport

import (
	"context"
	"crypto/ecdsa"
	"testing"

	"github.com/datatrails/go-datatrails-merklicious/canonical"
	"github.com/datatrails/go-datatrails-merklicious/claims"
	"github.com/datatrails/go-datatrails-merklicious/merklicious"
	"github.com/datatrails/go-datatrails-merklicious/merklicious/ledger"
	"github.com/stretchr/testify/require"
)

const (
	// TestLeavesPerTree is the number of leaves in each generated tree.
	TestLeavesPerTree = 5
)

// TestTree is a generated tree with its published claim.
type TestTree struct {
	ID     merklicious.RecordID
	Record *merklicious.TreeRecord
	Leaves []merklicious.LeafInput
	Signed []byte
	Entry  claims.Entry
}

// GenerateTrees creates count trees in the ledger, signs a claim for each and
// appends the claims to the claim log.
func GenerateTrees(t *testing.T, testContext TestContext, testGenerator TestGenerator, count int, signingKey *ecdsa.PrivateKey) []TestTree {
	trees := make([]TestTree, 0, count)
	for range count {
		leaves := testGenerator.GenerateLeafInputs(TestLeavesPerTree)

		id, record, err := testContext.Ledger.CreateTree(context.Background(), ledger.CreateTreeInput{
			Leaves: leaves,
			Meta: map[string]canonical.Value{
				"generator": canonical.String("integrationsupport"),
			},
		})
		require.NoError(t, err)

		signed := GenerateSignedClaim(t, testContext, id, record, signingKey)
		entry, err := testContext.Log.Append(context.Background(), signed)
		require.NoError(t, err)

		trees = append(trees, TestTree{
			ID:     id,
			Record: record,
			Leaves: leaves,
			Signed: signed,
			Entry:  entry,
		})
	}
	return trees
}

// SetupTest creates some test data used to demonstrate how we verify consistency between a previous
// and current claim log state. It returns (public verification key, previous log state, all trees.)
func SetupTest(t *testing.T, testContext TestContext, testGenerator TestGenerator) (ecdsa.PublicKey, claims.LogState, []TestTree) {
	signingKey := TestGenerateECKey(t)
	verificationKey := signingKey.PublicKey

	// Generate an initial batch of trees. This is the last known log state kept by the user.
	trees := GenerateTrees(t, testContext, testGenerator, 7, signingKey)
	oldState, err := testContext.Log.State()
	require.NoError(t, err)
	require.Equal(t, uint64(11), oldState.Size)

	// Append 4 more claims to the log.
	trees = append(trees, GenerateTrees(t, testContext, testGenerator, 4, signingKey)...)
	require.Equal(t, uint64(19), testContext.Log.Size())
	require.Equal(t, uint64(11), oldState.Size)

	return verificationKey, oldState, trees
}
