package repositories

import (
	"context"

	"github.com/SscSPs/coop_backoffice/internal/core/domain"
)

// TransactionFilter narrows ListTransactions results. Zero values match everything.
type TransactionFilter struct {
	MemberID string
	BatchID  string
	Mode     domain.TransactionMode
	Status   domain.TransactionStatus
}

// TransactionReader defines read operations for payment transactions.
type TransactionReader interface {
	// FindTransactionByID returns apperrors.ErrNotFound when the id is unknown.
	FindTransactionByID(ctx context.Context, id string) (*domain.Transaction, error)
	// ListTransactions returns matching transactions ordered by creation time, then id.
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]domain.Transaction, error)
}

// TransactionWriter defines write operations for payment transactions.
type TransactionWriter interface {
	SaveTransaction(ctx context.Context, txn domain.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error
}

// JournalReader defines read operations for journal entries.
type JournalReader interface {
	FindJournalByID(ctx context.Context, id string) (*domain.JournalEntry, error)
	ListJournals(ctx context.Context) ([]domain.JournalEntry, error)
}

// JournalWriter defines write operations for journal entries.
type JournalWriter interface {
	SaveJournal(ctx context.Context, entry domain.JournalEntry) error
	DeleteJournal(ctx context.Context, id string) error
}

// MemberRepository defines access to cooperative members.
type MemberRepository interface {
	FindMemberByID(ctx context.Context, id string) (*domain.Member, error)
	// FindMemberByNumber looks a member up by nomor_anggota.
	FindMemberByNumber(ctx context.Context, number string) (*domain.Member, error)
	ListMembers(ctx context.Context) ([]domain.Member, error)
	SaveMember(ctx context.Context, member domain.Member) error
}

// AuditWriter appends audit records.
type AuditWriter interface {
	AppendAudit(ctx context.Context, record domain.AuditRecord) error
}

// AuditReader lists audit records ordered by timestamp.
type AuditReader interface {
	ListAudit(ctx context.Context) ([]domain.AuditRecord, error)
}

// BatchRepository persists import batches.
type BatchRepository interface {
	SaveBatch(ctx context.Context, batch domain.Batch) error
	FindBatchByID(ctx context.Context, id string) (*domain.Batch, error)
}

// LedgerRepositoryFacade combines all ledger repository interfaces.
// This is a facade for clients that need access to all operations.
type LedgerRepositoryFacade interface {
	TransactionReader
	TransactionWriter
	JournalReader
	JournalWriter
	MemberRepository
	AuditWriter
	AuditReader
	BatchRepository
}
