package merklicious

import (
	"crypto/rand"
	"io"
)

/**
 * Options for creating a tree commitment.
 */

const (
	// DefaultEntropySize is the size in bytes of generated entropy.
	DefaultEntropySize = 32
)

type CreateTreeOptions struct {

	// entropy is caller supplied entropy, used instead of generated entropy.
	entropy    []byte
	entropySet bool

	// entropySize is the number of bytes of entropy to generate.
	entropySize int

	// entropySource is read for generated entropy.
	entropySource io.Reader
}

type CreateTreeOption func(*CreateTreeOptions)

// WithEntropy commits the tree under the given entropy instead of fresh
// random entropy. The same leaves and entropy always give the same root.
func WithEntropy(entropy []byte) CreateTreeOption {
	return func(cto *CreateTreeOptions) {
		cto.entropy = entropy
		cto.entropySet = true
	}
}

// WithEntropySize sets the number of bytes of entropy generated.
func WithEntropySize(size int) CreateTreeOption {
	return func(cto *CreateTreeOptions) { cto.entropySize = size }
}

// WithEntropySource sets the reader generated entropy is read from, crypto/rand by default.
func WithEntropySource(source io.Reader) CreateTreeOption {
	return func(cto *CreateTreeOptions) { cto.entropySource = source }
}

// ParseCreateTreeOptions parses the given options into a CreateTreeOptions struct
func ParseCreateTreeOptions(options ...CreateTreeOption) CreateTreeOptions {
	createTreeOptions := CreateTreeOptions{
		entropySize:   DefaultEntropySize,
		entropySource: rand.Reader,
	}

	for _, option := range options {
		option(&createTreeOptions)
	}

	return createTreeOptions
}
