package claims

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"sync"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/datatrails/go-datatrails-merklelog/mmr"
	"github.com/google/uuid"
)

/**
 * Log is the append only log of signed claims.
 *
 * The log is a Merkle Mountain Range. Each signed claim is a leaf, the leaf
 * hash being H( signed claim ). Nodes are numbered by mmr index:
 *
 *	    6
 *	  /   \
 *	 2     5     9
 *	/ \   / \   / \
 * 0   1 3   4 7   8 10   <- Leaf Nodes
 *
 * A claim, once appended, can be proven included in every later state of
 * the log, and any later state can be proven consistent with an earlier one.
 */

const (
	entryPrefix = "claims/"
)

var (
	ErrEmptyLog         = errors.New("the claim log has no entries")
	ErrIndexOutOfRange  = errors.New("mmr index is beyond the end of the claim log")
	ErrIntermediateNode = errors.New("mmr index references an intermediate node of the claim log")
	ErrEntryNotFound    = errors.New("no claim log entry with the given id")
)

// Entry is a signed claim appended to the log.
type Entry struct {
	// ID is the identity of the entry, claims/<uuid>
	ID string

	MMRIndex uint64

	// LeafHash is the hash of the signed claim, the leaf value at MMRIndex.
	LeafHash []byte
}

// Log is an append only Merkle Mountain Range of signed claims, safe for concurrent use.
type Log struct {
	mu      sync.RWMutex
	nodes   nodeStore
	entries map[string]Entry
	options LogOptions
}

func NewLog(options ...LogOption) *Log {
	return &Log{
		entries: map[string]Entry{},
		options: ParseLogOptions(options...),
	}
}

// LeafHash is the leaf value of a signed claim.
func LeafHash(signed []byte) []byte {
	h := sha256.Sum256(signed)
	return h[:]
}

// Append appends a signed claim to the log.
//
// The claim signature is not checked, callers append claims they have verified.
func (l *Log) Append(ctx context.Context, signed []byte) (Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := Entry{
		ID:       entryPrefix + uuid.NewString(),
		MMRIndex: l.nodes.size(),
		LeafHash: LeafHash(signed),
	}

	// a claim is in the log only if it is also stored
	size := l.nodes.size()
	if _, err := mmr.AddHashedLeaf(&l.nodes, sha256.New(), entry.LeafHash); err != nil {
		l.nodes.truncate(size)
		return Entry{}, fmt.Errorf("Append failed: %w", err)
	}

	if l.options.store != nil {
		if err := l.options.store.Create(ctx, entry.ID, signed); err != nil {
			l.nodes.truncate(size)
			return Entry{}, fmt.Errorf("Append failed: storing signed claim: %w", err)
		}
	}

	l.entries[entry.ID] = entry

	logger.Sugar.Debugf("Append: claim %s at mmr index %d, log size %d", entry.ID, entry.MMRIndex, l.nodes.size())
	return entry, nil
}

// Entry gets the entry with the given id.
func (l *Log) Entry(id string) (Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entry, ok := l.entries[id]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}
	return entry, nil
}

// Size is the number of nodes in the log, leaves and interior nodes.
func (l *Log) Size() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.nodes.size()
}

// Leaves is the number of signed claims in the log.
func (l *Log) Leaves() uint64 {
	return mmr.LeafCount(l.Size())
}

// Peaks gets the peak hashes of the log in its current state.
func (l *Log) Peaks() ([][]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	size := l.nodes.size()
	if size == 0 {
		return nil, ErrEmptyLog
	}
	return mmr.PeakHashes(&l.nodes, size-1)
}

// InclusionProof gets the proof of inclusion of the leaf at mmrIndex, in the
// log in its current state.
func (l *Log) InclusionProof(mmrIndex uint64) ([][]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if err := l.checkLeaf(mmrIndex); err != nil {
		return nil, err
	}

	return mmr.InclusionProof(&l.nodes, l.nodes.size()-1, mmrIndex)
}

// VerifyInclusion verifies the signed claim is the leaf at mmrIndex, given the
// proof of its inclusion.
//
// Returns true if the claim is included in the log, otherwise false.
func (l *Log) VerifyInclusion(signed []byte, mmrIndex uint64, proof [][]byte) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if err := l.checkLeaf(mmrIndex); err != nil {
		return false, err
	}

	verified, err := mmr.VerifyInclusion(&l.nodes, sha256.New(), l.nodes.size(), LeafHash(signed), mmrIndex, proof)
	if errors.Is(err, mmr.ErrVerifyInclusionFailed) {
		return false, nil
	}
	return verified, err
}

// checkLeaf checks mmrIndex is a leaf of the log. The caller holds the lock.
func (l *Log) checkLeaf(mmrIndex uint64) error {
	if mmrIndex >= l.nodes.size() {
		return fmt.Errorf("%w: mmr index %d, size %d", ErrIndexOutOfRange, mmrIndex, l.nodes.size())
	}

	// all leaf nodes are at height 0
	if mmr.IndexHeight(mmrIndex) != 0 {
		return fmt.Errorf("%w: mmr index %d", ErrIntermediateNode, mmrIndex)
	}

	return nil
}
