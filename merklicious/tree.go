package merklicious

import (
	"bytes"
	"errors"
)

/**
 * Binary Merkle tree over leaf digests.
 *
 * Levels are built bottom up. Adjacent nodes are paired as H(left || right).
 * A lone node at the end of an odd sized level is promoted to the next level
 * unchanged, it is not paired with itself:
 *
 *           root
 *          /    \
 *        h01     2     <- 2 promoted
 *       /   \    |
 *      0     1   2     <- leaves
 *
 * A tree of a single leaf has height 0 and its root is the leaf.
 */

var (
	ErrEmptyTree = errors.New("a tree needs at least one leaf")
)

// Tree is an immutable Merkle tree. All levels are retained so any leaf can be proven.
type Tree struct {
	// levels[0] are the leaves, levels[len(levels)-1] is the root alone.
	levels  [][]Digest
	entropy []byte
}

// BuildTree builds the tree over the given leaf digests.
func BuildTree(leaves []Digest) (*Tree, error) {
	return buildTree(leaves, nil)
}

func buildTree(leaves []Digest, entropy []byte) (*Tree, error) {
	if len(leaves) == 0 {
		return nil, ErrEmptyTree
	}

	level := make([]Digest, len(leaves))
	copy(level, leaves)

	levels := [][]Digest{level}
	for len(level) > 1 {
		next := make([]Digest, 0, (len(level)+1)/2)
		for i := 0; i+1 < len(level); i += 2 {
			next = append(next, hashPair(level[i], level[i+1]))
		}

		// promote the lone node
		if len(level)%2 == 1 {
			next = append(next, level[len(level)-1])
		}

		levels = append(levels, next)
		level = next
	}

	return &Tree{
		levels:  levels,
		entropy: bytes.Clone(entropy),
	}, nil
}

func (t *Tree) Root() Digest {
	return t.levels[len(t.levels)-1][0]
}

// Leaves returns a copy of the leaf digests, in leaf order.
func (t *Tree) Leaves() []Digest {
	leaves := make([]Digest, len(t.levels[0]))
	copy(leaves, t.levels[0])
	return leaves
}

func (t *Tree) Leaf(index uint64) (Digest, error) {
	if index >= t.TotalLeaves() {
		return Digest{}, ErrIndexOutOfRange
	}
	return t.levels[0][index], nil
}

func (t *Tree) TotalLeaves() uint64 {
	return uint64(len(t.levels[0]))
}

// Height is the number of levels above the leaves.
func (t *Tree) Height() int {
	return len(t.levels) - 1
}

// Entropy returns a copy of the entropy the leaf salts were derived from, if
// the tree was built from data blocks.
func (t *Tree) Entropy() []byte {
	return bytes.Clone(t.entropy)
}
