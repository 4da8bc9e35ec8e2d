package docstore

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps documents in process memory. It suits tests and single
// instance development; state is lost on restart and not shared between
// processes.
type MemoryStore struct {
	mu       sync.RWMutex
	docs     map[string][]byte
	children map[string]map[string]struct{}
	closed   bool
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:     make(map[string][]byte),
		children: make(map[string]map[string]struct{}),
	}
}

// Get implements Store
func (s *MemoryStore) Get(ctx context.Context, path string) ([]byte, error) {
	if err := ValidatePath(path); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	data, ok := s.docs[path]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(data), nil
}

// Set implements Store
func (s *MemoryStore) Set(ctx context.Context, path string, value any) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	data, err := encode(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.put(path, data)
	return nil
}

// Update implements Store
func (s *MemoryStore) Update(ctx context.Context, path string, fields map[string]any) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	current, ok := s.docs[path]
	if !ok {
		return ErrNotFound
	}
	next, err := merge(current, fields)
	if err != nil {
		return err
	}
	s.put(path, next)
	return nil
}

// Remove implements Store
func (s *MemoryStore) Remove(ctx context.Context, path string) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.del(path)
	return nil
}

// Push implements Store
func (s *MemoryStore) Push(ctx context.Context, parent string, value any) (string, error) {
	id := NewID()
	if err := s.Set(ctx, Join(parent, id), value); err != nil {
		return "", err
	}
	return id, nil
}

// Children implements Store
func (s *MemoryStore) Children(ctx context.Context, parent string) ([]Document, error) {
	return s.Query(ctx, parent, Query{})
}

// Query implements Store
func (s *MemoryStore) Query(ctx context.Context, parent string, q Query) ([]Document, error) {
	if err := ValidatePath(parent); err != nil {
		return nil, err
	}
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, ErrClosed
	}
	keys := make([]string, 0, len(s.children[parent]))
	for k := range s.children[parent] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	docs := make([]Document, 0, len(keys))
	for _, k := range keys {
		p := Join(parent, k)
		docs = append(docs, Document{Key: k, Path: p, Data: clone(s.docs[p])})
	}
	s.mu.RUnlock()
	return applyQuery(docs, q)
}

// Transaction implements Store. The function runs under the store lock, so
// a memory transaction never needs to retry.
func (s *MemoryStore) Transaction(ctx context.Context, path string, fn TxFunc) (TxResult, error) {
	if err := ValidatePath(path); err != nil {
		return TxResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return TxResult{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return TxResult{}, ErrClosed
	}

	current, ok := s.docs[path]
	if !ok {
		current = nil
	}
	next, aborted, err := runTx(fn, clone(current))
	if err != nil {
		return TxResult{}, err
	}
	if aborted {
		return TxResult{Snapshot: clone(current)}, nil
	}
	if next == nil {
		s.del(path)
		return TxResult{Committed: true}, nil
	}
	s.put(path, clone(next))
	return TxResult{Committed: true, Snapshot: clone(next)}, nil
}

// Ping implements Store
func (s *MemoryStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Close implements Store
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *MemoryStore) put(path string, data []byte) {
	s.docs[path] = data
	parent, key := Split(path)
	set, ok := s.children[parent]
	if !ok {
		set = make(map[string]struct{})
		s.children[parent] = set
	}
	set[key] = struct{}{}
}

func (s *MemoryStore) del(path string) {
	delete(s.docs, path)
	parent, key := Split(path)
	if set, ok := s.children[parent]; ok {
		delete(set, key)
		if len(set) == 0 {
			delete(s.children, parent)
		}
	}
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
