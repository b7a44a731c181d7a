package merklicious

import (
	"errors"
)

/**
 * Verifies a set of disclosures made against a single committed root.
 *
 * Terms:
 *
 * Disclosed:
 *   A data block that is proven to be a leaf of the committed tree.
 *
 * Rejected:
 *   A well formed disclosure that does not prove its data block is a leaf of
 *   the committed tree. Either the proof does not reproduce the root, the data
 *   block does not hash to the proven leaf, or the leaf was already disclosed.
 *
 * Malformed:
 *   A disclosure that can not describe any leaf of the committed tree, for
 *   example an index beyond the total number of leaves.
 */

type DisclosureType int

const (

	// Unknown disclosure has not been verified
	Unknown DisclosureType = iota

	// Disclosed data block is a leaf of the committed tree
	Disclosed

	// Rejected disclosure does not prove its data block is a leaf of the committed tree
	Rejected

	// Malformed disclosure can not describe a leaf of the committed tree
	Malformed
)

func (dt DisclosureType) String() string {
	switch dt {
	case Disclosed:
		return "disclosed"
	case Rejected:
		return "rejected"
	case Malformed:
		return "malformed"
	}
	return "unknown"
}

var (
	ErrDuplicateDisclosure = errors.New("leaf index has already been disclosed")
	ErrDifferentTree       = errors.New("disclosure is for a different tree")
	ErrDisclosureVerify    = errors.New("disclosure failed to verify against the committed root")
)

// DisclosureResult is the outcome of verifying a single disclosure.
type DisclosureResult struct {
	Index uint64
	Label string
	Type  DisclosureType

	// Err explains a Rejected or Malformed disclosure.
	Err error
}

// VerifyDisclosures verifies each disclosure against the committed root of a
// tree of totalLeaves leaves.
//
// Results are returned in the order of the given disclosures. A leaf index
// may be disclosed once, later disclosures of the same index are Rejected.
func VerifyDisclosures(root Digest, totalLeaves uint64, disclosures []LeafProof) ([]DisclosureResult, error) {
	if totalLeaves == 0 {
		return nil, ErrEmptyTree
	}

	results := make([]DisclosureResult, 0, len(disclosures))
	disclosed := map[uint64]struct{}{}

	for _, disclosure := range disclosures {
		result := VerifyDisclosure(root, totalLeaves, disclosure)

		if result.Type == Disclosed {
			if _, ok := disclosed[result.Index]; ok {
				result.Type = Rejected
				result.Err = ErrDuplicateDisclosure
			}
			disclosed[result.Index] = struct{}{}
		}

		results = append(results, result)
	}

	return results, nil
}

// VerifyDisclosure verifies a single disclosure against the committed root of
// a tree of totalLeaves leaves.
func VerifyDisclosure(root Digest, totalLeaves uint64, disclosure LeafProof) DisclosureResult {
	result := DisclosureResult{
		Index: disclosure.Index,
		Label: disclosure.Target.Label,
	}

	if err := disclosure.Validate(); err != nil {
		result.Type = Malformed
		result.Err = err
		return result
	}

	// the disclosure must be made against the committed tree, not just any tree
	if disclosure.Root != root || disclosure.TotalLeaves != totalLeaves {
		result.Type = Rejected
		result.Err = ErrDifferentTree
		return result
	}

	verified, err := disclosure.Verify()
	if err != nil {
		result.Type = Malformed
		result.Err = err
		return result
	}

	if !verified {
		result.Type = Rejected
		result.Err = ErrDisclosureVerify
		return result
	}

	result.Type = Disclosed
	return result
}
