package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	portsrepo "github.com/SscSPs/coop_backoffice/internal/core/ports/repositories"
)

type document struct {
	seq  int64
	data []byte
}

// Store is an in-process LedgerStore. Documents are JSON-encoded on Put so callers
// never share memory with what is stored.
type Store struct {
	mu          sync.RWMutex
	seq         int64
	collections map[string]map[string]document
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{collections: make(map[string]map[string]document)}
}

var _ portsrepo.LedgerStore = (*Store)(nil)

// Get returns copies of every document in a collection in insertion order.
func (s *Store) Get(ctx context.Context, collection string) ([]json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := s.collections[collection]
	ordered := make([]document, 0, len(docs))
	for _, d := range docs {
		ordered = append(ordered, d)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].seq < ordered[j].seq })

	items := make([]json.RawMessage, len(ordered))
	for i, d := range ordered {
		items[i] = append(json.RawMessage(nil), d.data...)
	}
	return items, nil
}

// Put stores item under id, keeping the original insertion position on update.
func (s *Store) Put(ctx context.Context, collection string, id string, item any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", collection, id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	docs, ok := s.collections[collection]
	if !ok {
		docs = make(map[string]document)
		s.collections[collection] = docs
	}
	existing, found := docs[id]
	if found {
		docs[id] = document{seq: existing.seq, data: data}
		return nil
	}
	s.seq++
	docs[id] = document{seq: s.seq, data: data}
	return nil
}

// Delete removes a document. Unknown ids are ignored.
func (s *Store) Delete(ctx context.Context, collection string, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections[collection], id)
	return nil
}

// Len returns the number of documents in a collection.
func (s *Store) Len(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[collection])
}
