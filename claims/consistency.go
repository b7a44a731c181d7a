package claims

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/datatrails/go-datatrails-merklelog/mmr"
)

var (
	ErrPeaksRequired = errors.New("the peaks of the earlier log state need to be set")
)

// LogState is a snapshot of the log: its size and the peaks at that size.
type LogState struct {
	Size  uint64
	Peaks [][]byte
}

// State gets the current state of the log.
func (l *Log) State() (LogState, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	size := l.nodes.size()
	if size == 0 {
		return LogState{}, ErrEmptyLog
	}

	peaks, err := mmr.PeakHashes(&l.nodes, size-1)
	if err != nil {
		return LogState{}, err
	}
	return LogState{Size: size, Peaks: peaks}, nil
}

// CheckConsistency verifies that the log in its current state is an append of
// the earlier state, fromSize nodes with the peaks fromPeaks. It is assumed the
// earlier state is a trusted copy kept by the caller.
//
// Returns true if every node of the earlier state is in the current state, at
// the same position.
func (l *Log) CheckConsistency(fromSize uint64, fromPeaks [][]byte) (bool, error) {
	if len(fromPeaks) == 0 {
		return false, ErrPeaksRequired
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	size := l.nodes.size()
	if fromSize > size {
		return false, fmt.Errorf("%w: earlier size %d, current size %d", ErrIndexOutOfRange, fromSize, size)
	}

	// In order to verify the proof we verify that the inclusion proofs of each of
	// the peaks from the earlier state matches a peak in the current state.
	// All nodes of the earlier state have proofs that pass through its peaks, so
	// checking the peaks is enough.
	verified, _, err := mmr.CheckConsistency(&l.nodes, sha256.New(), fromSize, size, fromPeaks)
	if errors.Is(err, mmr.ErrVerifyInclusionFailed) {
		return false, nil
	}
	return verified, err
}

// CheckStateConsistency verifies the log in its current state is consistent with the earlier state.
func (l *Log) CheckStateConsistency(from LogState) (bool, error) {
	return l.CheckConsistency(from.Size, from.Peaks)
}
