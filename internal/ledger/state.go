package ledger

import (
	"bytes"
	"sort"

	"github.com/ethereum/go-ethereum/core/types"
)

// State is a stack of write layers over a committed base layer. Every
// transaction and nested call pushes a layer so a failure can be discarded
// without touching the layers below.
type State struct {
	stack []*stateLayer
}

type stateLayer struct {
	data    map[string][]byte
	deleted map[string]struct{}
	logs    []*types.Log
}

func newStateLayer() *stateLayer {
	return &stateLayer{
		data:    map[string][]byte{},
		deleted: map[string]struct{}{},
	}
}

func NewState() *State {
	return &State{stack: []*stateLayer{newStateLayer()}}
}

func (s *State) top() *stateLayer {
	return s.stack[len(s.stack)-1]
}

// Get walks the layers from the top and returns nil for absent or deleted keys.
func (s *State) Get(key string) []byte {
	for i := len(s.stack) - 1; i >= 0; i-- {
		layer := s.stack[i]
		if _, deleted := layer.deleted[key]; deleted {
			return nil
		}
		if value, ok := layer.data[key]; ok {
			return value
		}
	}
	return nil
}

// Set stores a copy of value. An empty value deletes the key.
func (s *State) Set(key string, value []byte) {
	if len(value) == 0 {
		s.Delete(key)
		return
	}
	layer := s.top()
	layer.data[key] = bytes.Clone(value)
	delete(layer.deleted, key)
}

func (s *State) Delete(key string) {
	layer := s.top()
	delete(layer.data, key)
	if len(s.stack) > 1 {
		layer.deleted[key] = struct{}{}
	}
}

func (s *State) AddLog(log *types.Log) {
	layer := s.top()
	layer.logs = append(layer.logs, log)
}

// Snapshot pushes a new layer and returns its handle for Revert or Commit.
func (s *State) Snapshot() int {
	s.stack = append(s.stack, newStateLayer())
	return len(s.stack)
}

// Revert drops the layer returned by Snapshot and everything above it.
func (s *State) Revert(sn int) {
	if sn < 2 || sn > len(s.stack) {
		return
	}
	s.stack = s.stack[:sn-1]
}

// Commit folds the layer returned by Snapshot, and everything above it, into
// the layer below.
func (s *State) Commit(sn int) {
	if sn < 2 {
		return
	}
	for len(s.stack) >= sn {
		top := s.stack[len(s.stack)-1]
		s.stack = s.stack[:len(s.stack)-1]
		below := s.top()
		base := len(s.stack) == 1
		for key := range top.deleted {
			delete(below.data, key)
			if !base {
				below.deleted[key] = struct{}{}
			}
		}
		for key, value := range top.data {
			below.data[key] = value
			delete(below.deleted, key)
		}
		below.logs = append(below.logs, top.logs...)
	}
}

// Depth reports the number of open snapshots.
func (s *State) Depth() int {
	return len(s.stack) - 1
}

// drainLogs returns and clears the logs committed to the base layer.
func (s *State) drainLogs() []*types.Log {
	base := s.stack[0]
	logs := base.logs
	base.logs = nil
	return logs
}

// Entries returns the committed base layer sorted by key.
func (s *State) Entries() []Entry {
	base := s.stack[0]
	out := make([]Entry, 0, len(base.data))
	for key, value := range base.data {
		out = append(out, Entry{Key: []byte(key), Value: bytes.Clone(value)})
	}
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i].Key, out[j].Key) < 0 })
	return out
}

// Entry is one committed key/value pair.
type Entry struct {
	Key   []byte
	Value []byte
}
