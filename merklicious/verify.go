package merklicious

import (
	"errors"
	"fmt"
)

var (
	ErrProofLengthMismatch = errors.New("proof length does not match the leaf position in the tree")
)

// ExpectedProofLength is the number of siblings a proof of the leaf at index
// must list, for a tree of totalLeaves leaves.
func ExpectedProofLength(index uint64, totalLeaves uint64) (int, error) {
	if err := validatePosition(index, totalLeaves); err != nil {
		return 0, err
	}

	length := 0
	for width := totalLeaves; width > 1; width = (width + 1) / 2 {
		if !(index%2 == 0 && index == width-1) {
			length++
		}
		index /= 2
	}
	return length, nil
}

// VerifyProof verifies that leaf is the leaf at index of a tree of
// totalLeaves leaves with the given root.
//
// Returns true if the proof reproduces the root, otherwise false. An error is
// returned only for inputs that can not describe any tree position.
func VerifyProof(proof []Digest, index uint64, leaf Digest, root Digest, totalLeaves uint64) (bool, error) {
	expected, err := ExpectedProofLength(index, totalLeaves)
	if err != nil {
		return false, err
	}
	if len(proof) != expected {
		return false, fmt.Errorf("%w: got %d siblings, expected %d", ErrProofLengthMismatch, len(proof), expected)
	}

	current := leaf
	position := index
	next := 0

	// walk the levels exactly as Prove does
	for width := totalLeaves; width > 1; width = (width + 1) / 2 {
		if position%2 == 0 && position == width-1 {
			position /= 2
			continue
		}

		sibling := proof[next]
		next++

		if position%2 == 0 {
			current = hashPair(current, sibling)
		} else {
			current = hashPair(sibling, current)
		}
		position /= 2
	}

	return current == root, nil
}

// Verify verifies the proof against its own root.
func (p *Proof) Verify() (bool, error) {
	return VerifyProof(p.Proof, p.Index, p.Leaf, p.Root, p.TotalLeaves)
}
