package memory

import (
	"context"
	"encoding/json"
	"sync"

	portsrepo "github.com/SscSPs/coop_backoffice/internal/core/ports/repositories"
)

// FaultHook decides whether an operation fails. A nil return lets the call through.
type FaultHook func(op, collection, id string) error

// FaultyStore wraps a LedgerStore and injects failures. It is used to exercise
// retry and rollback behaviour against realistic storage.
type FaultyStore struct {
	inner portsrepo.LedgerStore

	mu   sync.Mutex
	hook FaultHook
}

// NewFaultyStore wraps inner with no faults configured.
func NewFaultyStore(inner portsrepo.LedgerStore) *FaultyStore {
	return &FaultyStore{inner: inner}
}

var _ portsrepo.LedgerStore = (*FaultyStore)(nil)

// SetHook installs (or clears, with nil) the fault hook.
func (s *FaultyStore) SetHook(hook FaultHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hook = hook
}

func (s *FaultyStore) check(op, collection, id string) error {
	s.mu.Lock()
	hook := s.hook
	s.mu.Unlock()
	if hook == nil {
		return nil
	}
	return hook(op, collection, id)
}

func (s *FaultyStore) Get(ctx context.Context, collection string) ([]json.RawMessage, error) {
	if err := s.check("get", collection, ""); err != nil {
		return nil, err
	}
	return s.inner.Get(ctx, collection)
}

func (s *FaultyStore) Put(ctx context.Context, collection string, id string, item any) error {
	if err := s.check("put", collection, id); err != nil {
		return err
	}
	return s.inner.Put(ctx, collection, id, item)
}

func (s *FaultyStore) Delete(ctx context.Context, collection string, id string) error {
	if err := s.check("delete", collection, id); err != nil {
		return err
	}
	return s.inner.Delete(ctx, collection, id)
}
