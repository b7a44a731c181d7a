package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// LevelDB is a durable Store on leveldb. Writes are synchronous.
type LevelDB struct {
	// mu makes the existence check and the write of Create atomic.
	mu sync.Mutex
	db *leveldb.DB
}

// OpenLevelDB opens, or creates, the leveldb database at path.
func OpenLevelDB(path string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("OpenLevelDB failed: %s: %w", path, err)
	}

	logger.Sugar.Debugf("OpenLevelDB: opened %s", path)
	return WrapLevelDB(db), nil
}

// WrapLevelDB uses an open leveldb.DB as a Store.
func WrapLevelDB(db *leveldb.DB) *LevelDB {
	return &LevelDB{db: db}
}

func (l *LevelDB) Create(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	existing, err := l.db.Get([]byte(key), nil)
	found := err == nil
	if err != nil && !errors.Is(err, leveldb.ErrNotFound) {
		return err
	}

	write, err := checkCreate(existing, found, value)
	if err != nil {
		return fmt.Errorf("%w: %s", err, key)
	}
	if !write {
		return nil
	}

	return l.db.Put([]byte(key), value, &opt.WriteOptions{Sync: true})
}

func (l *LevelDB) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	value, err := l.db.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (l *LevelDB) Close() error {
	return l.db.Close()
}
