package claims

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"slices"

	"github.com/datatrails/go-datatrails-merklelog/mmr"
)

/**
 * Verifies that a list of claim log entries is on the claim log, and that no
 * claim in the range of the list has been left out of it.
 *
 * Terms:
 *
 * Leaf Range:
 *  The leaves of the log from the lowest mmrIndex to the highest mmrIndex in
 *  the list of entries.
 *
 * Included Entry:
 *  An entry in the list, that is on the log at its mmrIndex.
 *
 * Excluded Entry:
 *  An entry in the list, that is not on the log at its mmrIndex.
 *
 * Omitted Entry:
 *  A leaf of the log, within the leaf range, with no entry in the list.
 *
 * Example of an omitted entry at leaf2:
 *
 * |-----------------------------|
 * | entry1        entry3 entry4 | entry list (lowest mmrIndex to highest)
 * |-----------------------------|
 *     ↓             ↓      ↓
 * |-----------------------------|
 * | leaf1  leaf2  leaf3  leaf4  | leaf range of the log
 * |-----------------------------|
 */

type EntryType int

const (

	// Unknown entry has not been verified
	Unknown EntryType = iota

	// Included entry is on the log
	Included

	// Excluded entry is NOT on the log
	Excluded

	// Omitted is a leaf of the log that has no entry in the list
	Omitted
)

var (
	ErrDuplicateEntryMMRIndex = errors.New("entry mmrIndex is the same as the previous entry")
	ErrEntryNotOnLeaf         = errors.New("entry does not match the claim found on the leaf node")
	ErrInclusionProofVerify   = errors.New("entry failed to verify the inclusion proof on the claim log")
)

// LeafRange gets the range of leaf indexes for a given list of entries, that
// have been sorted from lowest mmr index to highest mmr index.
//
// Returns the lower and upper bound of the leaf indexes for the leaf range.
func LeafRange(sortedEntries []Entry) (uint64, uint64) {
	lowerBoundLeafIndex := LeafIndex(sortedEntries[0].MMRIndex)
	upperBoundLeafIndex := LeafIndex(sortedEntries[len(sortedEntries)-1].MMRIndex)

	return lowerBoundLeafIndex, upperBoundLeafIndex
}

// LeafIndex gets the leaf index of the leaf at mmrIndex.
//
// A leaf is appended to a log of exactly mmrIndex nodes, which is always a
// complete mmr, so the leaves before it are the leaves of that size.
func LeafIndex(mmrIndex uint64) uint64 {
	return mmr.LeafCount(mmrIndex)
}

// VerifyEntries verifies the given entries against the range of leaves of the
// log they span.
//
// Fails at the first excluded entry. Returns the mmrIndexes of the omitted leaves.
func (l *Log) VerifyEntries(entries []Entry) ([]uint64, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b Entry) int {
		switch {
		case a.MMRIndex < b.MMRIndex:
			return -1
		case a.MMRIndex > b.MMRIndex:
			return 1
		}
		return 0
	})

	l.mu.RLock()
	defer l.mu.RUnlock()

	omittedMMRIndices := []uint64{}
	lowestLeafIndex, highestLeafIndex := LeafRange(sorted)

	entryIndex := 0
	for leafIndex := lowestLeafIndex; leafIndex <= highestLeafIndex; leafIndex++ {

		entryType, err := l.verifyEntryInList(leafIndex, sorted[entryIndex])
		if err != nil {
			return nil, err
		}

		// the entry is still the lowest mmrIndex, check it against the next leaf
		if entryType == Omitted {
			omittedMMRIndices = append(omittedMMRIndices, mmr.MMRIndex(leafIndex))
			continue
		}

		entryIndex++
	}

	// entries left over repeat an mmrIndex already verified
	if entryIndex < len(sorted) {
		return nil, ErrDuplicateEntryMMRIndex
	}

	return omittedMMRIndices, nil
}

// verifyEntryInList takes the next leaf in the leaf range and the next entry in
// the list, and verifies that the entry is in that leaf position. The caller
// holds the lock.
func (l *Log) verifyEntryInList(leafIndex uint64, entry Entry) (EntryType, error) {

	if err := l.checkLeaf(entry.MMRIndex); err != nil {
		return Excluded, err
	}

	leafMMRIndex := mmr.MMRIndex(leafIndex)

	// The entry matches the previous leaf, which an earlier entry was already verified on.
	if entry.MMRIndex < leafMMRIndex {
		return Excluded, ErrDuplicateEntryMMRIndex
	}

	// The entry matches a later leaf, so the claim on this leaf is not in the list.
	if entry.MMRIndex > leafMMRIndex {
		return Omitted, nil
	}

	leafHash, err := l.nodes.Get(leafMMRIndex)
	if err != nil {
		return Unknown, err
	}

	if !bytes.Equal(leafHash, entry.LeafHash) {
		return Excluded, ErrEntryNotOnLeaf
	}

	size := l.nodes.size()
	proof, err := mmr.InclusionProof(&l.nodes, size-1, leafMMRIndex)
	if err != nil {
		return Unknown, err
	}

	verified, err := mmr.VerifyInclusion(&l.nodes, sha256.New(), size, entry.LeafHash, leafMMRIndex, proof)
	if !verified || errors.Is(err, mmr.ErrVerifyInclusionFailed) {
		return Excluded, ErrInclusionProofVerify
	}
	if err != nil {
		return Unknown, err
	}

	return Included, nil
}
