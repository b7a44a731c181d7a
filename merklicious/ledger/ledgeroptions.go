package ledger

import (
	"crypto/rand"
	"io"
	"time"
)

/**
 * Options for a Ledger.
 */

const (
	DefaultContextTimeout = 30 * time.Second
)

type LedgerOptions struct {

	// entropySource is read for the entropy of new trees.
	entropySource io.Reader

	// contextTimeout bounds every store operation.
	contextTimeout time.Duration
}

type LedgerOption func(*LedgerOptions)

// WithEntropySource sets the reader the entropy of new trees is read from, crypto/rand by default.
func WithEntropySource(source io.Reader) LedgerOption {
	return func(lo *LedgerOptions) { lo.entropySource = source }
}

// WithContextTimeout bounds every store operation of the ledger.
func WithContextTimeout(timeout time.Duration) LedgerOption {
	return func(lo *LedgerOptions) { lo.contextTimeout = timeout }
}

// ParseLedgerOptions parses the given options into a LedgerOptions struct
func ParseLedgerOptions(options ...LedgerOption) LedgerOptions {
	ledgerOptions := LedgerOptions{
		entropySource:  rand.Reader,
		contextTimeout: DefaultContextTimeout,
	}

	for _, option := range options {
		option(&ledgerOptions)
	}

	return ledgerOptions
}
