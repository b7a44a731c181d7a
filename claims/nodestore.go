package claims

import (
	"bytes"
	"fmt"
)

// nodeStore holds the nodes of the claim log MMR, in mmr index order.
type nodeStore struct {
	nodes [][]byte
}

// Append appends a node and returns the new size of the store, which is the
// mmr index of the next node.
func (s *nodeStore) Append(value []byte) (uint64, error) {
	s.nodes = append(s.nodes, bytes.Clone(value))
	return uint64(len(s.nodes)), nil
}

func (s *nodeStore) Get(i uint64) ([]byte, error) {
	if i >= uint64(len(s.nodes)) {
		return nil, fmt.Errorf("%w: mmr index %d, size %d", ErrIndexOutOfRange, i, len(s.nodes))
	}
	return s.nodes[i], nil
}

func (s *nodeStore) size() uint64 {
	return uint64(len(s.nodes))
}

// truncate drops every node from mmr index size on.
func (s *nodeStore) truncate(size uint64) {
	if size < uint64(len(s.nodes)) {
		s.nodes = s.nodes[:size]
	}
}
