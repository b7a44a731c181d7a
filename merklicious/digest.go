package merklicious

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

const (
	// DigestSize is the size in bytes of every leaf, node and root digest.
	DigestSize = sha256.Size
)

var (
	ErrInvalidDigest = errors.New("digest must be 32 bytes, hex encoded")
)

// Digest is a SHA-256 digest of a leaf, an interior node or a root.
//
// In text form (and JSON) a digest is lower case hex.
type Digest [DigestSize]byte

// DigestFromBytes copies a 32 byte slice into a Digest.
func DigestFromBytes(b []byte) (Digest, error) {
	var d Digest
	if len(b) != DigestSize {
		return d, fmt.Errorf("%w: got %d bytes", ErrInvalidDigest, len(b))
	}
	copy(d[:], b)
	return d, nil
}

// ParseDigest parses the hex form of a digest.
func ParseDigest(s string) (Digest, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Digest{}, fmt.Errorf("%w: %v", ErrInvalidDigest, err)
	}
	return DigestFromBytes(b)
}

func (d Digest) Hex() string {
	return hex.EncodeToString(d[:])
}

func (d Digest) String() string {
	return d.Hex()
}

// Bytes returns a copy of the digest as a slice.
func (d Digest) Bytes() []byte {
	b := make([]byte, DigestSize)
	copy(b, d[:])
	return b
}

func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.Hex()), nil
}

func (d *Digest) UnmarshalText(text []byte) error {
	parsed, err := ParseDigest(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// hashPair is the interior node hash, SHA-256(left || right).
func hashPair(left, right Digest) Digest {
	hasher := sha256.New()
	hasher.Write(left[:])
	hasher.Write(right[:])

	var d Digest
	hasher.Sum(d[:0])
	return d
}
