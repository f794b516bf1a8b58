package pgsql

import (
	"context"
	"encoding/json"
	"fmt"

	portsrepo "github.com/SscSPs/coop_backoffice/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DocumentStore implements LedgerStore on a single jsonb table keyed by (collection, id).
type DocumentStore struct {
	BaseRepository
}

// NewDocumentStore creates a new PostgreSQL-backed ledger store.
func NewDocumentStore(pool *pgxpool.Pool) *DocumentStore {
	return &DocumentStore{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerStore = (*DocumentStore)(nil)

// Get returns every document in a collection in insertion order.
func (s *DocumentStore) Get(ctx context.Context, collection string) ([]json.RawMessage, error) {
	query := `
		SELECT data
		FROM ledger_documents
		WHERE collection = $1
		ORDER BY seq ASC;
	`
	rows, err := s.Pool.Query(ctx, query, collection)
	if err != nil {
		return nil, s.wrapError(fmt.Sprintf("failed to read collection %s", collection), err)
	}
	defer rows.Close()

	items := make([]json.RawMessage, 0)
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, s.wrapError(fmt.Sprintf("failed to scan document in %s", collection), err)
		}
		items = append(items, json.RawMessage(data))
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrapError(fmt.Sprintf("failed to iterate collection %s", collection), err)
	}
	return items, nil
}

// Put upserts a document. The original insertion position is kept on update.
func (s *DocumentStore) Put(ctx context.Context, collection string, id string, item any) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", collection, id, err)
	}
	query := `
		INSERT INTO ledger_documents (collection, id, data, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (collection, id)
		DO UPDATE SET data = EXCLUDED.data, updated_at = NOW();
	`
	if _, err := s.Pool.Exec(ctx, query, collection, id, data); err != nil {
		return s.wrapError(fmt.Sprintf("failed to write %s/%s", collection, id), err)
	}
	return nil
}

// Delete removes a document. Deleting a missing document is not an error.
func (s *DocumentStore) Delete(ctx context.Context, collection string, id string) error {
	query := `DELETE FROM ledger_documents WHERE collection = $1 AND id = $2;`
	if _, err := s.Pool.Exec(ctx, query, collection, id); err != nil {
		return s.wrapError(fmt.Sprintf("failed to delete %s/%s", collection, id), err)
	}
	return nil
}
