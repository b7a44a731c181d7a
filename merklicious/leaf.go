package merklicious

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/datatrails/go-datatrails-merklicious/canonical"
)

/**
 * A leaf commits to a single labeled value.
 *
 * The leaf digest is:
 *
 * H( canonical([ Label, Value, Salt ]) )
 *
 * Where:
 *   * Label - the name the value is disclosed under
 *   * Value - the structured value, see package canonical
 *   * Salt  - HMAC-SHA256(entropy, little endian uint64 leaf index)
 *
 * The salt hides the value of an undisclosed leaf: without the entropy a
 * sibling digest in a proof can not be dictionary checked against guesses.
 */

const (
	SaltSize = sha256.Size

	dataBlockFields = 3
)

var (
	ErrKey           = errors.New("entropy must be non-empty")
	ErrSerialization = canonical.ErrSerialization
)

// LeafInput is a labeled value to be committed.
type LeafInput struct {
	Label string          `json:"label"`
	Value canonical.Value `json:"value"`
}

// LeafDataBlock is a committed leaf: the labeled value and its salt.
//
// Disclosing a leaf means handing over its data block.
type LeafDataBlock struct {
	Label string
	Value canonical.Value
	Salt  []byte
}

// DeriveSalt derives the salt of the leaf at index from the tree entropy.
func DeriveSalt(entropy []byte, index uint64) ([]byte, error) {
	if len(entropy) == 0 {
		return nil, ErrKey
	}

	msg := make([]byte, 8)
	binary.LittleEndian.PutUint64(msg, index)

	mac := hmac.New(sha256.New, entropy)
	mac.Write(msg)

	return mac.Sum(nil), nil
}

// BuildDataBlock salts the labeled value as the leaf at index.
func BuildDataBlock(label string, value canonical.Value, entropy []byte, index uint64) (LeafDataBlock, error) {
	salt, err := DeriveSalt(entropy, index)
	if err != nil {
		return LeafDataBlock{}, err
	}

	return LeafDataBlock{
		Label: label,
		Value: value,
		Salt:  salt,
	}, nil
}

// DataBlock salts the leaf input as the leaf at index.
func (li LeafInput) DataBlock(entropy []byte, index uint64) (LeafDataBlock, error) {
	return BuildDataBlock(li.Label, li.Value, entropy, index)
}

// HashLeaf gets the leaf digest of a data block
//
// HashLeaf is:
//   - H( canonical([ Label, Value, Salt ]) )
func HashLeaf(block LeafDataBlock) (Digest, error) {
	encoded, err := block.Encode()
	if err != nil {
		return Digest{}, err
	}

	return sha256.Sum256(encoded), nil
}

// HashDataBlock is HashLeaf, under the name the operations facade uses.
func HashDataBlock(block LeafDataBlock) (Digest, error) {
	return HashLeaf(block)
}

func (b LeafDataBlock) Hash() (Digest, error) {
	return HashLeaf(b)
}

// Encode returns the canonical encoding of the data block.
func (b LeafDataBlock) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeDataBlock(canonical.NewEncoder(&buf), b); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeDataBlock decodes a canonically encoded data block.
func DecodeDataBlock(data []byte) (LeafDataBlock, error) {
	r := bytes.NewReader(data)
	block, err := decodeDataBlock(canonical.NewDecoder(r))
	if err != nil {
		return LeafDataBlock{}, err
	}
	if r.Len() != 0 {
		return LeafDataBlock{}, fmt.Errorf("%w: %d trailing bytes after data block", ErrSerialization, r.Len())
	}

	// only the canonical form hashes to the committed leaf
	reencoded, err := block.Encode()
	if err != nil {
		return LeafDataBlock{}, err
	}
	if !bytes.Equal(reencoded, data) {
		return LeafDataBlock{}, fmt.Errorf("%w: data block is not canonically encoded", ErrSerialization)
	}

	return block, nil
}

func encodeDataBlock(enc *canonical.Encoder, b LeafDataBlock) error {
	if err := enc.EncodeArrayLen(dataBlockFields); err != nil {
		return err
	}
	if err := enc.EncodeString(b.Label); err != nil {
		return err
	}
	if err := enc.EncodeValue(b.Value); err != nil {
		return err
	}
	return enc.EncodeBytes(b.Salt)
}

func decodeDataBlock(dec *canonical.Decoder) (LeafDataBlock, error) {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return LeafDataBlock{}, err
	}
	if n != dataBlockFields {
		return LeafDataBlock{}, fmt.Errorf("%w: data block has %d fields, expected %d", ErrSerialization, n, dataBlockFields)
	}

	label, err := dec.DecodeString()
	if err != nil {
		return LeafDataBlock{}, err
	}
	value, err := dec.DecodeValue()
	if err != nil {
		return LeafDataBlock{}, err
	}
	salt, err := dec.DecodeBytes()
	if err != nil {
		return LeafDataBlock{}, err
	}

	return LeafDataBlock{Label: label, Value: value, Salt: salt}, nil
}

// dataBlockJSON is the JSON form of a data block.
//
// The JSON view of a value is lossy (bytes, whole floats), so the canonical
// encoding travels along in Block and is authoritative when present.
type dataBlockJSON struct {
	Label string          `json:"label"`
	Value canonical.Value `json:"value"`
	Salt  string          `json:"salt"`
	Block string          `json:"block,omitempty"`
}

func (b LeafDataBlock) MarshalJSON() ([]byte, error) {
	encoded, err := b.Encode()
	if err != nil {
		return nil, err
	}

	return json.Marshal(dataBlockJSON{
		Label: b.Label,
		Value: b.Value,
		Salt:  hex.EncodeToString(b.Salt),
		Block: hex.EncodeToString(encoded),
	})
}

func (b *LeafDataBlock) UnmarshalJSON(data []byte) error {
	var raw dataBlockJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	salt, err := hex.DecodeString(raw.Salt)
	if err != nil {
		return fmt.Errorf("%w: salt: %v", ErrSerialization, err)
	}

	if raw.Block == "" {
		*b = LeafDataBlock{Label: raw.Label, Value: raw.Value, Salt: salt}
		return nil
	}

	encoded, err := hex.DecodeString(raw.Block)
	if err != nil {
		return fmt.Errorf("%w: block: %v", ErrSerialization, err)
	}
	block, err := DecodeDataBlock(encoded)
	if err != nil {
		return err
	}
	if block.Label != raw.Label || !bytes.Equal(block.Salt, salt) {
		return fmt.Errorf("%w: block does not match label and salt", ErrSerialization)
	}

	*b = block
	return nil
}
