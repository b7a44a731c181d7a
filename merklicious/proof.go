package merklicious

import (
	"errors"
	"fmt"
)

/**
 * Proof generation for a single leaf of a Tree.
 *
 * A proof lists the sibling of the leaf's path at each level, bottom level
 * first. Where the path passes through a promoted lone node there is no
 * sibling and nothing is listed, so proofs near the end of odd sized trees
 * are shorter than the tree height.
 */

var (
	ErrIndexOutOfRange = errors.New("leaf index is out of range of the tree")
)

// Proof is a proof that Leaf is the leaf at Index of a tree of TotalLeaves
// leaves with the given Root.
type Proof struct {
	Proof       []Digest `json:"proof"`
	Index       uint64   `json:"index"`
	Leaf        Digest   `json:"leaf"`
	Root        Digest   `json:"root"`
	TotalLeaves uint64   `json:"total_leaves"`
}

// Prove gets the proof for the leaf at index.
func (t *Tree) Prove(index uint64) (*Proof, error) {
	if index >= t.TotalLeaves() {
		return nil, fmt.Errorf("%w: index %d, total leaves %d", ErrIndexOutOfRange, index, t.TotalLeaves())
	}

	siblings := []Digest{}

	position := index
	for _, level := range t.levels[:len(t.levels)-1] {
		width := uint64(len(level))

		// the lone node of an odd level is promoted, it has no sibling
		if position%2 == 0 && position == width-1 {
			position /= 2
			continue
		}

		siblings = append(siblings, level[position^1])
		position /= 2
	}

	return &Proof{
		Proof:       siblings,
		Index:       index,
		Leaf:        t.levels[0][index],
		Root:        t.Root(),
		TotalLeaves: t.TotalLeaves(),
	}, nil
}
