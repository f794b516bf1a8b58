package repositories

import (
	"context"
	"encoding/json"
)

// Collection names used in the ledger store.
const (
	CollectionTransactions = "transactions"
	CollectionJournals     = "journals"
	CollectionMembers      = "members"
	CollectionAuditLog     = "auditLog"
	CollectionBatches      = "batches"
)

// LedgerStore is the keyed document store every ledger component persists through.
// Items are stored as JSON documents; Put replaces any existing document with the same id.
// Delete of an unknown id is not an error.
type LedgerStore interface {
	Get(ctx context.Context, collection string) ([]json.RawMessage, error)
	Put(ctx context.Context, collection string, id string, item any) error
	Delete(ctx context.Context, collection string, id string) error
}
