package merklicious

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"

	"github.com/datatrails/go-datatrails-merklicious/canonical"
)

/**
 * Records are the persisted form of a commitment.
 *
 * A commitment is persisted as two records:
 *
 *   DataBlocksRecord - the salted data blocks, in leaf order
 *   TreeRecord       - the leaf digests, the entropy and the root, referencing
 *                      its DataBlocksRecord by id
 *
 * Both records are encoded with the canonical encoding, as an array of their
 * fields in declaration order. Metadata is encoded as a map with its keys
 * sorted. A record id is the SHA-256 of the record encoding, so records are
 * content addressed and immutable.
 */

const (
	dataBlocksRecordFields = 2
	treeRecordFields       = 5
)

var (
	ErrRootMismatch   = errors.New("rebuilt tree root does not match the recorded root")
	ErrInvalidRecord  = errors.New("record is not valid")
	ErrInvalidEntropy = errors.New("recorded entropy does not derive the recorded salts")
)

// Metadata is implemented by records that carry caller supplied metadata.
type Metadata interface {
	Metadata() map[string]canonical.Value
}

// RecordID is the content address of a record.
type RecordID [sha256.Size]byte

func ParseRecordID(s string) (RecordID, error) {
	var id RecordID
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("%w: id: %v", ErrInvalidRecord, err)
	}
	if len(b) != len(id) {
		return id, fmt.Errorf("%w: id must be %d bytes", ErrInvalidRecord, len(id))
	}
	copy(id[:], b)
	return id, nil
}

func (id RecordID) String() string {
	return hex.EncodeToString(id[:])
}

func (id RecordID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *RecordID) UnmarshalText(text []byte) error {
	parsed, err := ParseRecordID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// DataBlocksRecord holds the salted data blocks of a commitment.
type DataBlocksRecord struct {
	Blocks []LeafDataBlock
	Meta   map[string]canonical.Value
}

// TreeRecord holds the tree of a commitment.
type TreeRecord struct {
	// DataBlocks is the id of the DataBlocksRecord the leaves were hashed from.
	DataBlocks RecordID
	Leaves     []Digest
	Entropy    []byte
	Root       Digest
	Meta       map[string]canonical.Value
}

// NewDataBlocksRecord creates the data blocks record of a commitment.
func NewDataBlocksRecord(commitment *Commitment, meta map[string]canonical.Value) *DataBlocksRecord {
	blocks := make([]LeafDataBlock, len(commitment.DataBlocks))
	copy(blocks, commitment.DataBlocks)

	return &DataBlocksRecord{
		Blocks: blocks,
		Meta:   meta,
	}
}

// NewTreeRecord creates the tree record of a commitment, referencing its data
// blocks record.
func NewTreeRecord(commitment *Commitment, dataBlocks RecordID, meta map[string]canonical.Value) *TreeRecord {
	return &TreeRecord{
		DataBlocks: dataBlocks,
		Leaves:     commitment.Tree.Leaves(),
		Entropy:    commitment.Tree.Entropy(),
		Root:       commitment.Tree.Root(),
		Meta:       meta,
	}
}

func (r *DataBlocksRecord) Metadata() map[string]canonical.Value {
	return copyMeta(r.Meta)
}

func (r *TreeRecord) Metadata() map[string]canonical.Value {
	return copyMeta(r.Meta)
}

// ID is the content address of the record.
func (r *DataBlocksRecord) ID() (RecordID, error) {
	encoded, err := EncodeDataBlocksRecord(r)
	if err != nil {
		return RecordID{}, err
	}
	return sha256.Sum256(encoded), nil
}

// ID is the content address of the record.
func (r *TreeRecord) ID() (RecordID, error) {
	encoded, err := EncodeTreeRecord(r)
	if err != nil {
		return RecordID{}, err
	}
	return sha256.Sum256(encoded), nil
}

// Tree rebuilds the tree from the recorded leaves, and checks it reproduces
// the recorded root.
func (r *TreeRecord) Tree() (*Tree, error) {
	tree, err := buildTree(r.Leaves, r.Entropy)
	if err != nil {
		return nil, err
	}

	if tree.Root() != r.Root {
		return nil, fmt.Errorf("%w: rebuilt %s, recorded %s", ErrRootMismatch, tree.Root(), r.Root)
	}

	return tree, nil
}

// Commitment reassembles the commitment from the tree record and its data
// blocks record.
//
// Every data block must hash to the recorded leaf at its position, and the
// salts must derive from the recorded entropy.
func (r *TreeRecord) Commitment(dataBlocks *DataBlocksRecord) (*Commitment, error) {
	tree, err := r.Tree()
	if err != nil {
		return nil, err
	}

	if uint64(len(dataBlocks.Blocks)) != tree.TotalLeaves() {
		return nil, fmt.Errorf("%w: %d data blocks for %d leaves", ErrInvalidRecord, len(dataBlocks.Blocks), tree.TotalLeaves())
	}

	for index, block := range dataBlocks.Blocks {
		salt, err := DeriveSalt(r.Entropy, uint64(index))
		if err != nil {
			return nil, err
		}
		if !bytes.Equal(salt, block.Salt) {
			return nil, fmt.Errorf("%w: leaf %d", ErrInvalidEntropy, index)
		}

		digest, err := block.Hash()
		if err != nil {
			return nil, err
		}
		if digest != tree.levels[0][index] {
			return nil, fmt.Errorf("%w: data block %d does not hash to its leaf", ErrInvalidRecord, index)
		}
	}

	blocks := make([]LeafDataBlock, len(dataBlocks.Blocks))
	copy(blocks, dataBlocks.Blocks)

	return &Commitment{
		DataBlocks: blocks,
		Tree:       tree,
	}, nil
}

// EncodeDataBlocksRecord encodes the record as [ [ blocks... ], meta ].
func EncodeDataBlocksRecord(r *DataBlocksRecord) ([]byte, error) {
	var buf bytes.Buffer
	enc := canonical.NewEncoder(&buf)

	if err := enc.EncodeArrayLen(dataBlocksRecordFields); err != nil {
		return nil, err
	}
	if err := enc.EncodeArrayLen(len(r.Blocks)); err != nil {
		return nil, err
	}
	for _, block := range r.Blocks {
		if err := encodeDataBlock(enc, block); err != nil {
			return nil, err
		}
	}
	if err := encodeMeta(enc, r.Meta); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// DecodeDataBlocksRecord decodes a canonically encoded DataBlocksRecord.
func DecodeDataBlocksRecord(data []byte) (*DataBlocksRecord, error) {
	r := bytes.NewReader(data)
	dec := canonical.NewDecoder(r)

	if err := expectFields(dec, dataBlocksRecordFields); err != nil {
		return nil, err
	}

	n, err := dec.DecodeArrayLen()
	if err != nil {
		return nil, err
	}
	blocks := make([]LeafDataBlock, 0, min(n, 1024))
	for range n {
		block, err := decodeDataBlock(dec)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}

	meta, err := decodeMeta(dec)
	if err != nil {
		return nil, err
	}

	record := &DataBlocksRecord{Blocks: blocks, Meta: meta}
	if err := checkCanonical(r, data, func() ([]byte, error) { return EncodeDataBlocksRecord(record) }); err != nil {
		return nil, err
	}

	return record, nil
}

// EncodeTreeRecord encodes the record as [ data blocks id, [ leaves... ], entropy, root, meta ].
func EncodeTreeRecord(r *TreeRecord) ([]byte, error) {
	var buf bytes.Buffer
	enc := canonical.NewEncoder(&buf)

	if err := enc.EncodeArrayLen(treeRecordFields); err != nil {
		return nil, err
	}
	if err := enc.EncodeBytes(r.DataBlocks[:]); err != nil {
		return nil, err
	}
	if err := enc.EncodeArrayLen(len(r.Leaves)); err != nil {
		return nil, err
	}
	for _, leaf := range r.Leaves {
		if err := enc.EncodeBytes(leaf[:]); err != nil {
			return nil, err
		}
	}
	if err := enc.EncodeBytes(r.Entropy); err != nil {
		return nil, err
	}
	if err := enc.EncodeBytes(r.Root[:]); err != nil {
		return nil, err
	}
	if err := encodeMeta(enc, r.Meta); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// DecodeTreeRecord decodes a canonically encoded TreeRecord.
func DecodeTreeRecord(data []byte) (*TreeRecord, error) {
	r := bytes.NewReader(data)
	dec := canonical.NewDecoder(r)

	if err := expectFields(dec, treeRecordFields); err != nil {
		return nil, err
	}

	record := &TreeRecord{}

	dataBlocks, err := decodeDigest(dec)
	if err != nil {
		return nil, err
	}
	record.DataBlocks = RecordID(dataBlocks)

	n, err := dec.DecodeArrayLen()
	if err != nil {
		return nil, err
	}
	record.Leaves = make([]Digest, 0, min(n, 1024))
	for range n {
		leaf, err := decodeDigest(dec)
		if err != nil {
			return nil, err
		}
		record.Leaves = append(record.Leaves, leaf)
	}

	if record.Entropy, err = dec.DecodeBytes(); err != nil {
		return nil, err
	}
	if record.Root, err = decodeDigest(dec); err != nil {
		return nil, err
	}
	if record.Meta, err = decodeMeta(dec); err != nil {
		return nil, err
	}

	if err := checkCanonical(r, data, func() ([]byte, error) { return EncodeTreeRecord(record) }); err != nil {
		return nil, err
	}

	return record, nil
}

func expectFields(dec *canonical.Decoder, fields int) error {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return err
	}
	if n != fields {
		return fmt.Errorf("%w: record has %d fields, expected %d", ErrSerialization, n, fields)
	}
	return nil
}

func decodeDigest(dec *canonical.Decoder) (Digest, error) {
	b, err := dec.DecodeBytes()
	if err != nil {
		return Digest{}, err
	}
	d, err := DigestFromBytes(b)
	if err != nil {
		return Digest{}, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return d, nil
}

// checkCanonical rejects trailing bytes, and input that is not the canonical
// encoding of the decoded record.
func checkCanonical(r *bytes.Reader, data []byte, encode func() ([]byte, error)) error {
	if r.Len() != 0 {
		return fmt.Errorf("%w: %d trailing bytes after record", ErrSerialization, r.Len())
	}

	reencoded, err := encode()
	if err != nil {
		return err
	}
	if !bytes.Equal(reencoded, data) {
		return fmt.Errorf("%w: record is not canonically encoded", ErrSerialization)
	}
	return nil
}

// encodeMeta encodes metadata as a map, keys sorted.
func encodeMeta(enc *canonical.Encoder, meta map[string]canonical.Value) error {
	keys := make([]string, 0, len(meta))
	for key := range meta {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fields := make([]canonical.Field, 0, len(keys))
	for _, key := range keys {
		fields = append(fields, canonical.Field{Key: key, Value: meta[key]})
	}

	return enc.EncodeValue(canonical.Map(fields...))
}

func decodeMeta(dec *canonical.Decoder) (map[string]canonical.Value, error) {
	v, err := dec.DecodeValue()
	if err != nil {
		return nil, err
	}

	fields, ok := v.AsMap()
	if !ok {
		return nil, fmt.Errorf("%w: metadata must be a map, got %s", ErrSerialization, v.Kind())
	}

	meta := make(map[string]canonical.Value, len(fields))
	for _, f := range fields {
		meta[f.Key] = f.Value
	}
	return meta, nil
}

func copyMeta(meta map[string]canonical.Value) map[string]canonical.Value {
	out := make(map[string]canonical.Value, len(meta))
	for key, value := range meta {
		out[key] = value
	}
	return out
}
