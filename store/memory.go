package store

import (
	"bytes"
	"context"
	"fmt"
	"sync"
)

// Memory is a Store held in memory, safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{records: map[string][]byte{}}
}

func (m *Memory) Create(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, found := m.records[key]
	write, err := checkCreate(existing, found, value)
	if err != nil {
		return fmt.Errorf("%w: %s", err, key)
	}
	if write {
		m.records[key] = bytes.Clone(value)
	}
	return nil
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.records[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return bytes.Clone(value), nil
}

// Len is the number of records stored.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.records)
}

func (m *Memory) Close() error {
	return nil
}
