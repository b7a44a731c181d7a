// Package claims publishes tree roots. A claim names a committed root, is
// signed as a COSE Sign1 message, and is appended to an append only claim log.
package claims

import (
	"errors"
	"fmt"

	"github.com/datatrails/go-datatrails-merklicious/merklicious"
	"github.com/fxamacker/cbor/v2"
)

var (
	ErrInvalidClaim = errors.New("claim is not valid")
)

// Claim is a statement by Author that Root is the root of the tree TreeID.
type Claim struct {
	Name   string               `cbor:"name"`
	Author string               `cbor:"author"`
	Root   merklicious.Digest   `cbor:"root"`
	TreeID merklicious.RecordID `cbor:"tree_id"`
	Meta   map[string]string    `cbor:"meta,omitempty"`
}

// Validate performs basic validation on the Claim, ensuring that critical fields
// are present.
func (c *Claim) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidClaim)
	}
	if c.Author == "" {
		return fmt.Errorf("%w: author is required", ErrInvalidClaim)
	}
	if c.Root == (merklicious.Digest{}) {
		return fmt.Errorf("%w: root is required", ErrInvalidClaim)
	}
	return nil
}

// Codec encodes claims as deterministic CBOR, so a claim has exactly one encoding.
type Codec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

func NewCodec() (Codec, error) {
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return Codec{}, err
	}
	dec, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		return Codec{}, err
	}
	return Codec{enc: enc, dec: dec}, nil
}

func (c Codec) EncodeClaim(claim Claim) ([]byte, error) {
	if err := claim.Validate(); err != nil {
		return nil, err
	}
	return c.enc.Marshal(claim)
}

func (c Codec) DecodeClaim(data []byte) (*Claim, error) {
	claim := &Claim{}
	if err := c.dec.Unmarshal(data, claim); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidClaim, err)
	}
	if err := claim.Validate(); err != nil {
		return nil, err
	}
	return claim, nil
}
