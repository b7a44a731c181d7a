package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stores returns a fresh instance of every Store implementation.
func stores(t *testing.T) map[string]Store {
	t.Helper()

	levelDB, err := OpenLevelDB(filepath.Join(t.TempDir(), "db"))
	require.NoError(t, err)
	t.Cleanup(func() { levelDB.Close() })

	return map[string]Store{
		"memory":  NewMemory(),
		"leveldb": levelDB,
	}
}

// TestStore_Create tests:
//
// 1. a created value can be read back.
// 2. creating the same value again is a no-op.
// 3. creating a different value under the same key fails, and the original value is kept.
func TestStore_Create(t *testing.T) {
	logger.New("NOOP")
	defer logger.OnExit()

	ctx := context.Background()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			err := s.Create(ctx, "trees/1", []byte("first"))
			require.NoError(t, err)

			err = s.Create(ctx, "trees/1", []byte("first"))
			assert.NoError(t, err)

			err = s.Create(ctx, "trees/1", []byte("second"))
			assert.ErrorIs(t, err, ErrExists)

			value, err := s.Get(ctx, "trees/1")
			require.NoError(t, err)
			assert.Equal(t, []byte("first"), value)
		})
	}
}

func TestStore_Errors(t *testing.T) {
	logger.New("NOOP")
	defer logger.OnExit()

	ctx := context.Background()
	cancelled, cancel := context.WithCancel(ctx)
	cancel()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			err = s.Create(ctx, "", []byte("x"))
			assert.ErrorIs(t, err, ErrEmptyKey)

			err = s.Create(cancelled, "k", []byte("x"))
			assert.ErrorIs(t, err, context.Canceled)

			_, err = s.Get(cancelled, "k")
			assert.ErrorIs(t, err, context.Canceled)
		})
	}
}

func TestMemory_Isolation(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	value := []byte("abc")
	require.NoError(t, m.Create(ctx, "k", value))
	value[0] = 'x'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)

	got[1] = 'x'
	again, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

// TestMemory_ConcurrentCreate tests:
//
// 1. of many concurrent creates of different values under one key, exactly one wins.
func TestMemory_ConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- m.Create(ctx, "k", []byte{byte(i)})
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, m.Len())
}

func TestLevelDB_Reopen(t *testing.T) {
	logger.New("NOOP")
	defer logger.OnExit()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db")

	db, err := OpenLevelDB(path)
	require.NoError(t, err)
	require.NoError(t, db.Create(ctx, "k", []byte("v")))
	require.NoError(t, db.Close())

	db, err = OpenLevelDB(path)
	require.NoError(t, err)
	defer db.Close()

	value, err := db.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), value)
}
