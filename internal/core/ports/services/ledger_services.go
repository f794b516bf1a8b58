package services

import (
	"context"
	"time"

	"github.com/SscSPs/coop_backoffice/internal/core/domain"
	"github.com/SscSPs/coop_backoffice/internal/dto"
)

// PostingRequest describes a payment to post, independent of the entry path.
type PostingRequest struct {
	MemberID    string
	PaymentType domain.PaymentType
	Amount      int64
	Description string
	Mode        domain.TransactionMode
	BatchID     *string
	RowNumber   int
	UserID      string
	Date        time.Time
}

// PostingResult holds the posted transaction and its journal entry.
type PostingResult struct {
	Transaction domain.Transaction
	Journal     domain.JournalEntry
}

// PaymentPoster posts a payment: transaction, balanced journal and balance update.
type PaymentPoster interface {
	PostPayment(ctx context.Context, req PostingRequest) (*PostingResult, error)
}

// RollbackSvc undoes a transaction and every side effect it produced.
type RollbackSvc interface {
	// PerformRollback returns Success=false without an error when there is nothing to undo.
	PerformRollback(ctx context.Context, transactionID string, opts domain.RollbackOptions) (*domain.RollbackResult, error)
}

// ErrorHandlerSvc classifies failures from either entry path and drives rollback.
type ErrorHandlerSvc interface {
	Classify(err error) domain.ErrorClass
	HandleError(ctx context.Context, err error, ectx domain.ErrorContext) domain.HandledError
}

// ConsistencySvc checks and repairs ledger invariants.
type ConsistencySvc interface {
	ValidateSaldo(ctx context.Context) (domain.ConsistencyResult, error)
	ValidateJournalIntegrity(ctx context.Context) (domain.ConsistencyResult, error)
	ValidateCrossMode(ctx context.Context) (domain.ConsistencyResult, error)
	ValidateAll(ctx context.Context) (domain.ConsistencyResult, error)
	AttemptDataRepair(ctx context.Context, result domain.ConsistencyResult) (*domain.RepairResult, error)
}

// AuditSvc records audit entries.
type AuditSvc interface {
	Record(ctx context.Context, action string, data map[string]any) error
}

// ManualPaymentSvc is the one-at-a-time entry path used by cashiers.
type ManualPaymentSvc interface {
	RecordPayment(ctx context.Context, req dto.ManualPaymentRequest, userID string) (*domain.Transaction, error)
	CancelPayment(ctx context.Context, transactionID string, reason string, userID string) (*domain.RollbackResult, error)
	ListPayments(ctx context.Context, params dto.ListPaymentsParams) (*dto.ListPaymentsResponse, error)
}

// MemberLoadResult reports what RegisterMembers did. Created holds member ids, Skipped member numbers.
type MemberLoadResult struct {
	Created []string `json:"created"`
	Skipped []string `json:"skipped"`
}

// MemberRegistrySvc seeds the member register from an external file.
type MemberRegistrySvc interface {
	RegisterMembers(ctx context.Context, members []domain.Member) (*MemberLoadResult, error)
}
