package integrationsupport

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"

	"github.com/datatrails/go-datatrails-merklicious/claims"
	"github.com/datatrails/go-datatrails-merklicious/merklicious"
	"github.com/stretchr/testify/require"
)

// TestGenerateECKey generates a P-256 signing key.
func TestGenerateECKey(t *testing.T) *ecdsa.PrivateKey {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return key
}

// GenerateSignedClaim is a test helper that signs a claim for the given tree,
// using the test context codec.
func GenerateSignedClaim(
	t *testing.T, testContext TestContext,
	treeID merklicious.RecordID, tree *merklicious.TreeRecord,
	signingKey *ecdsa.PrivateKey,
) []byte {
	claim := claims.Claim{
		Name:   "test claim " + treeID.String(),
		Author: "integrationsupport",
		Root:   tree.Root,
		TreeID: treeID,
	}

	signer := NewCoseSignerForECPrivateKey(t, signingKey)

	signed, err := claims.Sign(testContext.Codec, claim, signer)
	require.NoError(t, err)
	return signed
}
