package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/coop_backoffice/internal/apperrors"
	"github.com/SscSPs/coop_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/coop_backoffice/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/coop_backoffice/internal/core/ports/services"
)

// PostingService posts payments for both entry paths. Every write after the first is undone
// on failure, so a payment is either fully posted or cancelled.
type PostingService struct {
	BaseService
	repo             portsrepo.LedgerRepositoryFacade
	factory          *TransactionFactory
	rollback         *RollbackService
	audit            portssvc.AuditSvc
	locks            *memberLocks
	allowOverpayment bool
}

// PostingOption is a functional option for configuring the posting service
type PostingOption func(*PostingService)

// WithPostingAudit adds the audit service dependency.
func WithPostingAudit(audit portssvc.AuditSvc) PostingOption {
	return func(s *PostingService) {
		s.audit = audit
	}
}

// WithOverpayment allows payments larger than the outstanding balance.
func WithOverpayment(allow bool) PostingOption {
	return func(s *PostingService) {
		s.allowOverpayment = allow
	}
}

// NewPostingService creates a new posting service. It shares the rollback service's member locks.
func NewPostingService(repo portsrepo.LedgerRepositoryFacade, factory *TransactionFactory, rollback *RollbackService, options ...PostingOption) *PostingService {
	svc := &PostingService{repo: repo, factory: factory, rollback: rollback}
	if rollback != nil {
		svc.locks = rollback.locks
	} else {
		svc.locks = newMemberLocks()
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.PaymentPoster = (*PostingService)(nil)

// PostPayment creates the transaction, posts its journal and applies the balance delta.
// Failures are returned as *PostingError once a transaction exists.
func (s *PostingService) PostPayment(ctx context.Context, req portssvc.PostingRequest) (*portssvc.PostingResult, error) {
	if s.repo == nil || s.factory == nil || s.rollback == nil {
		return nil, apperrors.NewComponentUnavailableError(missing(map[string]bool{
			"ledger repository":   s.repo == nil,
			"transaction factory": s.factory == nil,
			"rollback service":    s.rollback == nil,
		})...)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	release := s.locks.Lock(req.MemberID)
	defer release()

	logger := s.GetLogger(ctx).With(slog.String("member_id", req.MemberID), slog.String("mode", string(req.Mode)))
	userID := actingUser(ctx, req.UserID)

	member, err := s.repo.FindMemberByID(ctx, req.MemberID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: member %s not found", apperrors.ErrValidation, req.MemberID)
		}
		return nil, fmt.Errorf("failed to load member %s: %w", req.MemberID, err)
	}
	if !member.CanTransact() {
		return nil, fmt.Errorf("%w: member %s is not eligible to transact", apperrors.ErrValidation, member.Number)
	}

	txn, err := s.factory.NewTransaction(req, *member, userID, s.Now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveTransaction(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}

	fail := func(cause error) (*portssvc.PostingResult, error) {
		_, rbErr := s.rollback.rollbackHeld(ctx, txn, domain.RollbackOptions{
			Reason:      cause.Error(),
			FinalStatus: domain.StatusGagal,
			UserID:      userID,
		})
		if rbErr != nil {
			s.LogError(ctx, rbErr, "Rollback after failed posting did not complete", slog.String("transaction_id", txn.ID))
		}
		return nil, &PostingError{TransactionID: txn.ID, Err: cause}
	}

	entry, err := s.factory.NewJournal(txn, req.Date, userID, s.Now())
	if err != nil {
		return fail(fmt.Errorf("%w: %w", apperrors.ErrPostingFailed, err))
	}
	if err := s.repo.SaveJournal(ctx, entry); err != nil {
		return fail(fmt.Errorf("%w: %w", apperrors.ErrPostingFailed, err))
	}
	txn.JournalID = &entry.ID
	if err := s.repo.SaveTransaction(ctx, txn); err != nil {
		return fail(fmt.Errorf("%w: failed to link journal: %w", apperrors.ErrPostingFailed, err))
	}

	current := member.Balance(txn.PaymentType)
	if txn.Amount > current && !s.allowOverpayment {
		recomputed, err := s.recomputeBalance(ctx, member, txn.PaymentType, userID)
		if err != nil {
			return fail(err)
		}
		current = recomputed
		if txn.Amount > current {
			return fail(fmt.Errorf("%w: amount %d exceeds outstanding %s balance %d",
				apperrors.ErrInsufficientBalance, txn.Amount, txn.PaymentType, current))
		}
	}

	txn.BalanceBefore = current
	txn.BalanceAfter = current + txn.BalanceDelta()
	member.SetBalance(txn.PaymentType, txn.BalanceAfter)
	member.AuditFields.Touch(userID, s.Now())
	if err := s.repo.SaveMember(ctx, *member); err != nil {
		return fail(fmt.Errorf("failed to update member balance: %w", err))
	}
	txn.BalanceApplied = true

	txn.Status = domain.StatusSelesai
	txn.AuditTrail.Touch(userID, s.Now())
	if err := s.repo.SaveTransaction(ctx, txn); err != nil {
		return fail(fmt.Errorf("failed to complete transaction: %w", err))
	}

	s.recordAudit(ctx, "transaction.posted", map[string]any{
		"transactionId": txn.ID,
		"journalId":     entry.ID,
		"memberId":      txn.MemberID,
		"paymentType":   txn.PaymentType,
		"amount":        txn.Amount,
		"mode":          txn.Mode,
		"rowNumber":     txn.RowNumber,
	})
	logger.Debug("Payment posted", slog.String("transaction_id", txn.ID), slog.Int64("amount", txn.Amount))
	return &portssvc.PostingResult{Transaction: txn, Journal: entry}, nil
}

// recomputeBalance rebuilds the member's balance for t from its history and stores it when it
// differs from the recorded value.
func (s *PostingService) recomputeBalance(ctx context.Context, member *domain.Member, t domain.PaymentType, userID string) (int64, error) {
	txns, err := s.repo.ListTransactions(ctx, portsrepo.TransactionFilter{MemberID: member.ID})
	if err != nil {
		return 0, fmt.Errorf("failed to load history for member %s: %w", member.ID, err)
	}
	expected := computeBalance(*member, t, txns)
	recorded := member.Balance(t)
	if expected == recorded {
		return recorded, nil
	}

	s.GetLogger(ctx).Warn("Recorded balance differs from history, recomputing",
		slog.String("member_id", member.ID),
		slog.String("payment_type", string(t)),
		slog.Int64("recorded", recorded),
		slog.Int64("expected", expected))
	member.SetBalance(t, expected)
	member.AuditFields.Touch(userID, s.Now())
	if err := s.repo.SaveMember(ctx, *member); err != nil {
		return 0, fmt.Errorf("failed to store recomputed balance: %w", err)
	}
	s.recordAudit(ctx, "balance.recomputed", map[string]any{
		"memberId":    member.ID,
		"paymentType": t,
		"recorded":    recorded,
		"expected":    expected,
	})
	return expected, nil
}

func (s *PostingService) recordAudit(ctx context.Context, action string, data map[string]any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, action, data); err != nil {
		s.LogError(ctx, err, "Failed to write audit record", slog.String("action", action))
	}
}
