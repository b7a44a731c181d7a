package merklicious

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

var (
	ErrLabelNotFound = errors.New("no data block with the given label")
)

// Commitment is a committed set of leaves: the salted data blocks and the
// tree over their digests.
//
// The data blocks and the entropy are secret. Only the root is published.
type Commitment struct {
	DataBlocks []LeafDataBlock
	Tree       *Tree
}

// LeafProof is a disclosure: a proof together with the data block of the
// proven leaf.
type LeafProof struct {
	Proof
	Target LeafDataBlock `json:"target"`
}

// CreateTree commits the given leaves, in order, into a tree.
//
// Unless WithEntropy is given, fresh entropy is read for the salts, so
// committing the same leaves twice gives different roots.
func CreateTree(leaves []LeafInput, options ...CreateTreeOption) (*Commitment, error) {
	if len(leaves) == 0 {
		return nil, ErrEmptyTree
	}

	createTreeOptions := ParseCreateTreeOptions(options...)

	entropy, err := entropyFromOptions(createTreeOptions)
	if err != nil {
		return nil, err
	}

	dataBlocks := make([]LeafDataBlock, 0, len(leaves))
	digests := make([]Digest, 0, len(leaves))

	for index, leaf := range leaves {
		block, err := leaf.DataBlock(entropy, uint64(index))
		if err != nil {
			return nil, err
		}

		digest, err := block.Hash()
		if err != nil {
			return nil, fmt.Errorf("CreateTree failed: leaf %d (%q): %w", index, leaf.Label, err)
		}

		dataBlocks = append(dataBlocks, block)
		digests = append(digests, digest)
	}

	tree, err := buildTree(digests, entropy)
	if err != nil {
		return nil, err
	}

	return &Commitment{
		DataBlocks: dataBlocks,
		Tree:       tree,
	}, nil
}

func entropyFromOptions(options CreateTreeOptions) ([]byte, error) {
	if options.entropySet {
		if len(options.entropy) == 0 {
			return nil, ErrKey
		}
		return bytes.Clone(options.entropy), nil
	}

	if options.entropySize <= 0 {
		return nil, ErrKey
	}

	entropy := make([]byte, options.entropySize)
	if _, err := io.ReadFull(options.entropySource, entropy); err != nil {
		return nil, fmt.Errorf("CreateTree failed: reading entropy: %w", err)
	}
	return entropy, nil
}

func (c *Commitment) Root() Digest {
	return c.Tree.Root()
}

// Entropy returns a copy of the entropy the salts were derived from.
func (c *Commitment) Entropy() []byte {
	return c.Tree.Entropy()
}

// Proof gets the disclosure of the first data block with the given label.
func (c *Commitment) Proof(label string) (*LeafProof, error) {
	for index, block := range c.DataBlocks {
		if block.Label != label {
			continue
		}

		proof, err := c.Tree.Prove(uint64(index))
		if err != nil {
			return nil, err
		}

		return &LeafProof{
			Proof:  *proof,
			Target: block,
		}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrLabelNotFound, label)
}

// Verify verifies that the target data block hashes to the proven leaf, and
// that the leaf is included under the root.
func (lp *LeafProof) Verify() (bool, error) {
	verified, err := lp.Proof.Verify()
	if err != nil || !verified {
		return verified, err
	}

	digest, err := lp.Target.Hash()
	if err != nil {
		return false, err
	}

	return digest == lp.Leaf, nil
}
