package merklicious

import (
	"testing"

	"github.com/datatrails/go-datatrails-merklicious/canonical"
	"github.com/stretchr/testify/require"
)

/**
 * Known answers, all under 32 zero bytes of entropy.
 */

const (
	salt0Hex = "f375180aba92888401f1919be4a8715a62763b65c1c10e1d0858e81d4d6f9fd2"
	salt1Hex = "45642932870525261935930d25eabf7cb0212dd40d3acf965a6b6efa65a0fd26"
	salt2Hex = "da28cc56743b85a90d365460a6a0a974eaf0da3f8c3c7f4aa158ed050becd268"

	// leaves a=1, b=2, c=3
	leaf0Hex = "5b8308456f12cada8cd824828b2a6c8d9afe798b5ece4dfe148afb73a571010d"
	leaf1Hex = "6ab077d347238509d348fea036d9f1f238929ac7196eb6e755cd209bfe91eb1d"
	leaf2Hex = "61c46bd120c82dcc1ea244201db2b0971638dd7406afe6c67b322e1417a0c143"
	h01Hex   = "978839641a0fe4d86cba68fde5a800a47d534dd997753a39f7c7924427b1c3df"
	rootHex  = "d19ca1f63c5258ab8d7233e886aa1fa208f94fdac3d56c0b563804580746d16c"

	// canonical encoding of the data block of b
	blockBHex = "93a16202c42045642932870525261935930d25eabf7cb0212dd40d3acf965a6b6efa65a0fd26"

	// leaves a=1, b=99, c=3
	leaf1TamperedHex = "ae31b5fae891a9a69615034fe7997c67b6448ac5bab194a152486e889a51352e"
	rootTamperedHex  = "97b5a14c013e8534338ef221246bbfe610cd89799a185e8f9f83aa4faafcd821"

	// leaves l0=0, l1=10, l2=20, l3=30, l4=40
	root5Hex = "984c1da200a0e89a811dc229cc678c9ce0a5493256ae1807b256e93494e79ba1"

	// single leaf only=null
	singleLeafHex = "9167455b9fa3be5e8474a58471f1be7f2dbee28e39365bbd75f888f0a18fdc40"
)

var (
	zeroEntropy = make([]byte, 32)
)

func fixtureLeaves() []LeafInput {
	return []LeafInput{
		{Label: "a", Value: canonical.Int(1)},
		{Label: "b", Value: canonical.Int(2)},
		{Label: "c", Value: canonical.Int(3)},
	}
}

func mustDigest(t *testing.T, s string) Digest {
	t.Helper()

	d, err := ParseDigest(s)
	require.NoError(t, err)
	return d
}
