package integrationsupport

import (
	"crypto/ecdsa"
	"testing"

	dtcose "github.com/datatrails/go-datatrails-common/cose"
	"github.com/datatrails/go-datatrails-merklicious/claims"
	"github.com/datatrails/go-datatrails-merklicious/merklicious/ledger"
	"github.com/datatrails/go-datatrails-merklicious/store"
	"github.com/stretchr/testify/require"
	"github.com/veraison/go-cose"
)

const (
	// TestSeed seeds the generator of every test context, so runs are repeatable.
	TestSeed = 1698342521
)

// TestContext holds the services a test works against, all backed by one
// in memory store.
type TestContext struct {
	T      *testing.T
	Store  *store.Memory
	Ledger *ledger.Ledger
	Log    *claims.Log
	Codec  claims.Codec
}

// NewTestContext creates a test context and the generator feeding it.
//
// The ledger draws tree entropy from the generator, so the trees created in a
// test are the same from run to run.
func NewTestContext(t *testing.T, testLabelPrefix string) (TestContext, TestGenerator) {
	s := store.NewMemory()
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})

	codec, err := claims.NewCodec()
	require.NoError(t, err)

	g := NewTestGenerator(t, TestSeed, testLabelPrefix)

	tc := TestContext{
		T:      t,
		Store:  s,
		Ledger: ledger.New(s, ledger.WithEntropySource(g)),
		Log:    claims.NewLog(claims.WithStore(s)),
		Codec:  codec,
	}
	return tc, g
}

func NewCoseSignerForECPrivateKey(t *testing.T, key *ecdsa.PrivateKey) cose.Signer {
	alg, err := dtcose.CoseAlgForEC(key.PublicKey)
	require.NoError(t, err)

	signer, err := cose.NewSigner(alg, key)
	require.NoError(t, err)

	return signer
}

func NewCoseVerifierForECPublicKey(t *testing.T, key *ecdsa.PublicKey) cose.Verifier {
	alg, err := dtcose.CoseAlgForEC(*key)
	require.NoError(t, err)

	verifier, err := cose.NewVerifier(alg, key)
	require.NoError(t, err)

	return verifier
}
