package store

import (
	"context"
	"sync"

	"github.com/viant/toolgate/service/dao"
	"github.com/viant/toolgate/service/dao/criteria"
)

// MemoryStore is a generic in-memory implementation of dao.Service.
// It keeps entities of type *T mapped by a comparable key K.
// The key is obtained from the supplied keySelector function.
//
// This helper lets concrete services embed the store and avoid rewriting
// identical Save/Load/Delete/List logic for every record type. An optional
// status selector enables status-filtered listing, used by the scheduler to
// pick up queued tasks.
//
// Load and List hand out copies, never the stored record, so a caller
// mutating a loaded record cannot interleave with concurrent readers;
// changes only take effect through Save.
type MemoryStore[K comparable, T any] struct {
	mu             sync.RWMutex
	records        map[K]*T
	keySelector    func(*T) K
	statusSelector func(*T) string
	cloner         func(*T) *T
}

// NewMemoryStore creates a new MemoryStore.
// keySelector extracts the entity key (usually the ID field) from a value.
func NewMemoryStore[K comparable, T any](keySelector func(*T) K) *MemoryStore[K, T] {
	return &MemoryStore[K, T]{
		records:     make(map[K]*T),
		keySelector: keySelector,
	}
}

// NewMemoryStoreWithStatus creates a MemoryStore whose List honours the
// "Status" parameter using the supplied status selector.
func NewMemoryStoreWithStatus[K comparable, T any](keySelector func(*T) K, statusSelector func(*T) string) *MemoryStore[K, T] {
	ret := NewMemoryStore[K, T](keySelector)
	ret.statusSelector = statusSelector
	return ret
}

// WithCloner supplies a deep copy used when handing records out. Without it
// Load and List return a shallow value copy, which is enough for record types
// whose reference fields are written once at creation.
func (s *MemoryStore[K, T]) WithCloner(cloner func(*T) *T) *MemoryStore[K, T] {
	s.cloner = cloner
	return s
}

func (s *MemoryStore[K, T]) clone(v *T) *T {
	if v == nil {
		return nil
	}
	if s.cloner != nil {
		return s.cloner(v)
	}
	clone := *v
	return &clone
}

// Save stores or overwrites a record.
func (s *MemoryStore[K, T]) Save(_ context.Context, v *T) error {
	if v == nil {
		return dao.ErrNilEntity
	}
	key := s.keySelector(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = s.clone(v)
	return nil
}

// Create stores a record only when its key is still free, returning
// dao.ErrAlreadyExists otherwise. The check and the insert happen under one
// lock so duplicate submissions cannot race past each other.
func (s *MemoryStore[K, T]) Create(_ context.Context, v *T) error {
	if v == nil {
		return dao.ErrNilEntity
	}
	key := s.keySelector(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.records[key]; taken {
		return dao.ErrAlreadyExists
	}
	s.records[key] = s.clone(v)
	return nil
}

// Load returns a copy of the record by key, or (nil, nil) when absent.
func (s *MemoryStore[K, T]) Load(_ context.Context, key K) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.records[key]
	if !ok {
		return nil, nil
	}
	return s.clone(v), nil
}

// Delete removes a record.
func (s *MemoryStore[K, T]) Delete(_ context.Context, key K) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}

// List returns copies of stored records, filtered by the "Status" parameter
// when a status selector is configured.
func (s *MemoryStore[K, T]) List(_ context.Context, parameters ...*dao.Parameter) ([]*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*T, 0, len(s.records))
	for _, v := range s.records {
		if s.statusSelector != nil && !criteria.FilterByStatus(s.statusSelector(v), parameters) {
			continue
		}
		out = append(out, s.clone(v))
	}
	return out, nil
}
