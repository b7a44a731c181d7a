package merklicious

import (
	"errors"
	"fmt"
)

// Note: proofs and disclosures usually arrive as JSON from another party. Missing fields
// unmarshal to zero values that would otherwise surface as confusing verification failures,
// so the structure is checked up front.

var (
	ErrSaltRequired  = errors.New("data block salt field is required and must be non-empty")
	ErrLabelRequired = errors.New("leaf label field is required")
)

// validatePosition checks that index can be a leaf of a tree of totalLeaves leaves.
func validatePosition(index uint64, totalLeaves uint64) error {
	if totalLeaves == 0 {
		return ErrEmptyTree
	}

	if index >= totalLeaves {
		return fmt.Errorf("%w: index %d, total leaves %d", ErrIndexOutOfRange, index, totalLeaves)
	}

	return nil
}

// Validate performs basic validation on the Proof, ensuring that it can describe a
// position in a tree.
func (p *Proof) Validate() error {
	expected, err := ExpectedProofLength(p.Index, p.TotalLeaves)
	if err != nil {
		return err
	}

	if len(p.Proof) != expected {
		return fmt.Errorf("%w: got %d siblings, expected %d", ErrProofLengthMismatch, len(p.Proof), expected)
	}

	return nil
}

// Validate performs basic validation on the LeafProof, ensuring that critical fields
// are present for verification purposes.
func (lp *LeafProof) Validate() error {
	if err := lp.Proof.Validate(); err != nil {
		return err
	}

	if len(lp.Target.Salt) == 0 {
		return ErrSaltRequired
	}

	return nil
}
