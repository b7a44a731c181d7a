package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/datatrails/go-datatrails-merklicious/canonical"
	"github.com/datatrails/go-datatrails-merklicious/merklicious"
	"github.com/datatrails/go-datatrails-merklicious/store"
)

/**
 * Ledger persists commitments and serves disclosures from them.
 *
 * A tree is persisted as two records, each stored under its content address:
 *
 *   datablocks/<id> - the salted data blocks
 *   trees/<id>      - the tree, referencing its data blocks record
 *
 * The tree id is the handle callers keep. Records are never updated, so a
 * stored tree always proves against the root it was created with.
 */

const (
	treesPrefix      = "trees/"
	dataBlocksPrefix = "datablocks/"
)

var (
	ErrRecordCorrupt = errors.New("stored record does not match its id")
)

// CreateTreeInput is the input for a new tree.
type CreateTreeInput struct {
	Leaves []merklicious.LeafInput

	// Meta is stored with both records of the tree.
	Meta map[string]canonical.Value
}

// Ledger stores trees in a store.Store.
type Ledger struct {
	store   store.Store
	options LedgerOptions
}

func New(s store.Store, options ...LedgerOption) *Ledger {
	return &Ledger{
		store:   s,
		options: ParseLedgerOptions(options...),
	}
}

// CreateTree commits the input leaves and stores the commitment.
//
// The given options override the ledger's entropy source, for example
// merklicious.WithEntropy to commit under known entropy.
func (l *Ledger) CreateTree(
	ctx context.Context, input CreateTreeInput, options ...merklicious.CreateTreeOption,
) (merklicious.RecordID, *merklicious.TreeRecord, error) {

	createOptions := append(
		[]merklicious.CreateTreeOption{merklicious.WithEntropySource(l.options.entropySource)},
		options...,
	)

	commitment, err := merklicious.CreateTree(input.Leaves, createOptions...)
	if err != nil {
		return merklicious.RecordID{}, nil, err
	}

	dataBlocks := merklicious.NewDataBlocksRecord(commitment, input.Meta)
	encodedDataBlocks, err := merklicious.EncodeDataBlocksRecord(dataBlocks)
	if err != nil {
		return merklicious.RecordID{}, nil, err
	}
	dataBlocksID, err := dataBlocks.ID()
	if err != nil {
		return merklicious.RecordID{}, nil, err
	}

	tree := merklicious.NewTreeRecord(commitment, dataBlocksID, input.Meta)
	encodedTree, err := merklicious.EncodeTreeRecord(tree)
	if err != nil {
		return merklicious.RecordID{}, nil, err
	}
	treeID, err := tree.ID()
	if err != nil {
		return merklicious.RecordID{}, nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, l.options.contextTimeout)
	defer cancel()

	// the data blocks go first, so a stored tree never references missing data blocks
	if err := l.store.Create(ctx, dataBlocksPrefix+dataBlocksID.String(), encodedDataBlocks); err != nil {
		return merklicious.RecordID{}, nil, fmt.Errorf("CreateTree failed: storing data blocks: %w", err)
	}
	if err := l.store.Create(ctx, treesPrefix+treeID.String(), encodedTree); err != nil {
		return merklicious.RecordID{}, nil, fmt.Errorf("CreateTree failed: storing tree: %w", err)
	}

	logger.Sugar.Infof("CreateTree: tree %s, %d leaves, root %s", treeID, len(tree.Leaves), tree.Root)

	return treeID, tree, nil
}

// GetTree gets the tree record stored under id.
func (l *Ledger) GetTree(ctx context.Context, id merklicious.RecordID) (*merklicious.TreeRecord, error) {
	encoded, err := l.get(ctx, treesPrefix+id.String())
	if err != nil {
		return nil, err
	}

	tree, err := merklicious.DecodeTreeRecord(encoded)
	if err != nil {
		return nil, fmt.Errorf("GetTree failed: %s: %w", id, err)
	}
	if err := checkID(tree, id); err != nil {
		return nil, err
	}

	logger.Sugar.Debugf("GetTree: tree %s, root %s", id, tree.Root)
	return tree, nil
}

// GetDataBlocks gets the data blocks record stored under id.
func (l *Ledger) GetDataBlocks(ctx context.Context, id merklicious.RecordID) (*merklicious.DataBlocksRecord, error) {
	encoded, err := l.get(ctx, dataBlocksPrefix+id.String())
	if err != nil {
		return nil, err
	}

	dataBlocks, err := merklicious.DecodeDataBlocksRecord(encoded)
	if err != nil {
		return nil, fmt.Errorf("GetDataBlocks failed: %s: %w", id, err)
	}
	if err := checkID(dataBlocks, id); err != nil {
		return nil, err
	}

	logger.Sugar.Debugf("GetDataBlocks: data blocks %s, %d blocks", id, len(dataBlocks.Blocks))
	return dataBlocks, nil
}

// GetLeafProof gets the disclosure of the first leaf with the given label, of
// the tree stored under treeID.
//
// The tree is rebuilt from the stored records. It is an error, wrapping
// merklicious.ErrRootMismatch, if the rebuilt root is not the stored root.
func (l *Ledger) GetLeafProof(ctx context.Context, treeID merklicious.RecordID, label string) (*merklicious.LeafProof, error) {
	tree, err := l.GetTree(ctx, treeID)
	if err != nil {
		return nil, err
	}

	dataBlocks, err := l.GetDataBlocks(ctx, tree.DataBlocks)
	if err != nil {
		return nil, err
	}

	commitment, err := tree.Commitment(dataBlocks)
	if err != nil {
		return nil, fmt.Errorf("GetLeafProof failed: tree %s: %w", treeID, err)
	}

	proof, err := commitment.Proof(label)
	if err != nil {
		return nil, err
	}

	logger.Sugar.Debugf("GetLeafProof: tree %s, label %q, index %d", treeID, label, proof.Index)
	return proof, nil
}

// HashDataBlock gets the leaf digest of a data block.
func (l *Ledger) HashDataBlock(block merklicious.LeafDataBlock) (merklicious.Digest, error) {
	return merklicious.HashDataBlock(block)
}

// VerifyLeafProof verifies a disclosure against its own root.
func (l *Ledger) VerifyLeafProof(proof *merklicious.LeafProof) (bool, error) {
	verified, err := proof.Verify()
	if err != nil {
		return false, err
	}

	logger.Sugar.Debugf("VerifyLeafProof: label %q, index %d, root %s, verified %v",
		proof.Target.Label, proof.Index, proof.Root, verified)
	return verified, nil
}

func (l *Ledger) get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, l.options.contextTimeout)
	defer cancel()

	return l.store.Get(ctx, key)
}

type identified interface {
	ID() (merklicious.RecordID, error)
}

// checkID checks a record loaded from the store is the record its key addresses.
func checkID(record identified, id merklicious.RecordID) error {
	actual, err := record.ID()
	if err != nil {
		return err
	}
	if actual != id {
		return fmt.Errorf("%w: stored under %s, content address %s", ErrRecordCorrupt, id, actual)
	}
	return nil
}
