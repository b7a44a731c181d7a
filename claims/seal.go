package claims

import (
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/veraison/go-cose"
)

/**
 * claim signing (seal) utilities.
 */

var (
	ErrInvalidSignature = errors.New("signed claim failed to verify")
)

// Sign encodes the claim and signs it as a COSE Sign1 message.
func Sign(codec Codec, claim Claim, signer cose.Signer) ([]byte, error) {
	payload, err := codec.EncodeClaim(claim)
	if err != nil {
		return nil, err
	}

	headers := cose.Headers{
		Protected: cose.ProtectedHeader{
			cose.HeaderLabelAlgorithm:   signer.Algorithm(),
			cose.HeaderLabelContentType: "application/cbor",
		},
	}

	signed, err := cose.Sign1(rand.Reader, signer, headers, payload, nil)
	if err != nil {
		return nil, fmt.Errorf("Sign failed: unable to sign claim: %w", err)
	}
	return signed, nil
}

// VerifySigned verifies the signature of a signed claim, and returns the claim.
func VerifySigned(codec Codec, signed []byte, verifier cose.Verifier) (*Claim, error) {
	var message cose.Sign1Message
	if err := message.UnmarshalCBOR(signed); err != nil {
		return nil, fmt.Errorf("%w: malformed message: %v", ErrInvalidSignature, err)
	}

	if err := message.Verify(nil, verifier); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	return codec.DecodeClaim(message.Payload)
}
