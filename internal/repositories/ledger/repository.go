package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/SscSPs/coop_backoffice/internal/apperrors"
	"github.com/SscSPs/coop_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/coop_backoffice/internal/core/ports/repositories"
)

// Repository is the typed view of a LedgerStore used by the services.
type Repository struct {
	store portsrepo.LedgerStore
}

// NewRepository creates a new ledger repository over store.
func NewRepository(store portsrepo.LedgerStore) *Repository {
	return &Repository{store: store}
}

var _ portsrepo.LedgerRepositoryFacade = (*Repository)(nil)

func load[T any](ctx context.Context, store portsrepo.LedgerStore, collection string) ([]T, error) {
	raw, err := store.Get(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", collection, err)
	}
	items := make([]T, 0, len(raw))
	for _, r := range raw {
		var item T
		if err := json.Unmarshal(r, &item); err != nil {
			return nil, fmt.Errorf("failed to decode %s document: %w", collection, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func find[T any](ctx context.Context, store portsrepo.LedgerStore, collection, id string, idOf func(T) string) (*T, error) {
	items, err := load[T](ctx, store, collection)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if idOf(items[i]) == id {
			return &items[i], nil
		}
	}
	return nil, fmt.Errorf("%s %s: %w", collection, id, apperrors.ErrNotFound)
}

func (r *Repository) put(ctx context.Context, collection, id string, item any) error {
	if id == "" {
		return fmt.Errorf("%w: %s document without id", apperrors.ErrValidation, collection)
	}
	if err := r.store.Put(ctx, collection, id, item); err != nil {
		return fmt.Errorf("failed to save %s/%s: %w", collection, id, err)
	}
	return nil
}

func (r *Repository) delete(ctx context.Context, collection, id string) error {
	if err := r.store.Delete(ctx, collection, id); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// --- transactions ---

func (r *Repository) FindTransactionByID(ctx context.Context, id string) (*domain.Transaction, error) {
	return find(ctx, r.store, portsrepo.CollectionTransactions, id, func(t domain.Transaction) string { return t.ID })
}

func (r *Repository) ListTransactions(ctx context.Context, filter portsrepo.TransactionFilter) ([]domain.Transaction, error) {
	all, err := load[domain.Transaction](ctx, r.store, portsrepo.CollectionTransactions)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Transaction, 0, len(all))
	for _, t := range all {
		if filter.MemberID != "" && t.MemberID != filter.MemberID {
			continue
		}
		if filter.BatchID != "" && (t.BatchID == nil || *t.BatchID != filter.BatchID) {
			continue
		}
		if filter.Mode != "" && t.Mode != filter.Mode {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].AuditTrail.CreatedAt, out[j].AuditTrail.CreatedAt
		if a.Equal(b) {
			return out[i].ID < out[j].ID
		}
		return a.Before(b)
	})
	return out, nil
}

func (r *Repository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	return r.put(ctx, portsrepo.CollectionTransactions, txn.ID, txn)
}

func (r *Repository) DeleteTransaction(ctx context.Context, id string) error {
	return r.delete(ctx, portsrepo.CollectionTransactions, id)
}

// --- journals ---

func (r *Repository) FindJournalByID(ctx context.Context, id string) (*domain.JournalEntry, error) {
	return find(ctx, r.store, portsrepo.CollectionJournals, id, func(j domain.JournalEntry) string { return j.ID })
}

func (r *Repository) ListJournals(ctx context.Context) ([]domain.JournalEntry, error) {
	return load[domain.JournalEntry](ctx, r.store, portsrepo.CollectionJournals)
}

func (r *Repository) SaveJournal(ctx context.Context, entry domain.JournalEntry) error {
	return r.put(ctx, portsrepo.CollectionJournals, entry.ID, entry)
}

func (r *Repository) DeleteJournal(ctx context.Context, id string) error {
	return r.delete(ctx, portsrepo.CollectionJournals, id)
}

// --- members ---

func (r *Repository) FindMemberByID(ctx context.Context, id string) (*domain.Member, error) {
	return find(ctx, r.store, portsrepo.CollectionMembers, id, func(m domain.Member) string { return m.ID })
}

func (r *Repository) FindMemberByNumber(ctx context.Context, number string) (*domain.Member, error) {
	return find(ctx, r.store, portsrepo.CollectionMembers, number, func(m domain.Member) string { return m.Number })
}

func (r *Repository) ListMembers(ctx context.Context) ([]domain.Member, error) {
	return load[domain.Member](ctx, r.store, portsrepo.CollectionMembers)
}

func (r *Repository) SaveMember(ctx context.Context, member domain.Member) error {
	return r.put(ctx, portsrepo.CollectionMembers, member.ID, member)
}

// --- audit ---

func (r *Repository) AppendAudit(ctx context.Context, record domain.AuditRecord) error {
	return r.put(ctx, portsrepo.CollectionAuditLog, record.ID, record)
}

func (r *Repository) ListAudit(ctx context.Context) ([]domain.AuditRecord, error) {
	records, err := load[domain.AuditRecord](ctx, r.store, portsrepo.CollectionAuditLog)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool { return records[i].Timestamp.Before(records[j].Timestamp) })
	return records, nil
}

// --- batches ---

func (r *Repository) SaveBatch(ctx context.Context, batch domain.Batch) error {
	return r.put(ctx, portsrepo.CollectionBatches, batch.ID, batch)
}

func (r *Repository) FindBatchByID(ctx context.Context, id string) (*domain.Batch, error) {
	return find(ctx, r.store, portsrepo.CollectionBatches, id, func(b domain.Batch) string { return b.ID })
}
