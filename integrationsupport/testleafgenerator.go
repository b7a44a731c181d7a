package integrationsupport

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/datatrails/go-datatrails-merklicious/canonical"
	"github.com/datatrails/go-datatrails-merklicious/merklicious"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var (
	words = []string{
		"amber", "basalt", "cedar", "delta", "ember", "fjord", "granite", "harbour",
		"indigo", "juniper", "kestrel", "lagoon", "meadow", "nimbus", "orchid", "quartz",
	}
)

// Create random values of various sorts for testing. Seeded so that from run to
// run the values are the same. Intended for white box tests that benefit from a
// large volume of synthetic data.
type TestGenerator struct {
	T           *testing.T
	labelPrefix string
	rand        *rand.Rand

	numLeavesGenerated *int
}

// NewTestGenerator creates a deterministic, but random looking, test data generator.
// Given the same seed, the series of data generated on different runs is identical.
func NewTestGenerator(t *testing.T, seed int64, labelPrefix string) TestGenerator {
	return TestGenerator{
		T:                  t,
		labelPrefix:        labelPrefix,
		rand:               rand.New(rand.NewSource(seed)),
		numLeavesGenerated: new(int),
	}
}

// Read fills p with generated bytes, making the generator an entropy source.
func (g TestGenerator) Read(p []byte) (int, error) {
	return g.rand.Read(p)
}

// NewLabel returns a unique leaf label, <prefix>/<uuid>.
func (g TestGenerator) NewLabel() string {
	id, err := uuid.NewRandomFromReader(g.rand)
	require.NoError(g.T, err)
	return fmt.Sprintf("%s/%s", g.labelPrefix, id)
}

// GenerateEntropy returns merklicious.DefaultEntropySize generated bytes.
func (g TestGenerator) GenerateEntropy() []byte {
	entropy := make([]byte, merklicious.DefaultEntropySize)
	_, err := g.Read(entropy)
	require.NoError(g.T, err)
	return entropy
}

// GenerateLeafInputs generates count leaves, each with a unique label.
func (g TestGenerator) GenerateLeafInputs(count int) []merklicious.LeafInput {
	leaves := make([]merklicious.LeafInput, 0, count)
	for range count {
		leaves = append(leaves, g.GenerateNextLeaf())
	}
	return leaves
}

// GenerateNextLeaf generates a leaf whose value is a mapping of every value kind.
func (g TestGenerator) GenerateNextLeaf() merklicious.LeafInput {
	wordCount := 3

	value := canonical.Map(
		canonical.Field{Key: "sequence", Value: canonical.Int(int64(*g.numLeavesGenerated))},
		canonical.Field{Key: "name", Value: canonical.String(g.MultiWordString(wordCount))},
		canonical.Field{Key: "score", Value: canonical.Float(g.rand.Float64())},
		canonical.Field{Key: "active", Value: canonical.Bool(g.rand.Intn(2) == 1)},
		canonical.Field{Key: "tags", Value: canonical.List(
			canonical.String(g.Word()),
			canonical.Uint(g.rand.Uint64()),
			canonical.Null(),
		)},
		canonical.Field{Key: "digest", Value: canonical.Bytes(g.GenerateBytes(8))},
	)
	*g.numLeavesGenerated++

	return merklicious.LeafInput{
		Label: g.NewLabel(),
		Value: value,
	}
}

func (g TestGenerator) GenerateBytes(n int) []byte {
	b := make([]byte, n)
	_, err := g.Read(b)
	require.NoError(g.T, err)
	return b
}

func (g TestGenerator) Word() string {
	return words[g.rand.Intn(len(words))]
}

func (g TestGenerator) MultiWordString(n int) string {
	parts := make([]string, 0, n)
	for range n {
		parts = append(parts, g.Word())
	}
	return strings.Join(parts, " ")
}
