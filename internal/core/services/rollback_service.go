package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/SscSPs/coop_backoffice/internal/apperrors"
	"github.com/SscSPs/coop_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/coop_backoffice/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/coop_backoffice/internal/core/ports/services"
)

// RollbackService undoes transactions for both the manual and import paths.
type RollbackService struct {
	BaseService
	repo    portsrepo.LedgerRepositoryFacade
	factory *TransactionFactory
	audit   portssvc.AuditSvc
	locks   *memberLocks
}

// RollbackOption is a functional option for configuring the rollback service
type RollbackOption func(*RollbackService)

// WithRollbackAudit adds the audit service dependency.
func WithRollbackAudit(audit portssvc.AuditSvc) RollbackOption {
	return func(s *RollbackService) {
		s.audit = audit
	}
}

// NewRollbackService creates a new rollback service.
func NewRollbackService(repo portsrepo.LedgerRepositoryFacade, factory *TransactionFactory, locks *memberLocks, options ...RollbackOption) *RollbackService {
	if locks == nil {
		locks = newMemberLocks()
	}
	svc := &RollbackService{repo: repo, factory: factory, locks: locks}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.RollbackSvc = (*RollbackService)(nil)

// PerformRollback loads the transaction and undoes it under the member's lock.
func (s *RollbackService) PerformRollback(ctx context.Context, transactionID string, opts domain.RollbackOptions) (*domain.RollbackResult, error) {
	if s.repo == nil || s.factory == nil {
		return nil, apperrors.NewComponentUnavailableError(missing(map[string]bool{"ledger repository": s.repo == nil, "transaction factory": s.factory == nil})...)
	}
	txn, err := s.repo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return &domain.RollbackResult{Success: false, Message: "nothing to roll back", TransactionID: transactionID}, nil
		}
		return nil, fmt.Errorf("failed to load transaction %s: %w", transactionID, err)
	}

	release := s.locks.Lock(txn.MemberID)
	defer release()
	// reload under the lock so a concurrent posting of the same member is not lost
	txn, err = s.repo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload transaction %s: %w", transactionID, err)
	}
	return s.rollbackHeld(ctx, *txn, opts)
}

// rollbackHeld undoes txn. The caller must hold the member lock. txn is the caller's
// authoritative copy, which may be ahead of what is stored.
func (s *RollbackService) rollbackHeld(ctx context.Context, txn domain.Transaction, opts domain.RollbackOptions) (*domain.RollbackResult, error) {
	logger := s.GetLogger(ctx).With(slog.String("transaction_id", txn.ID))
	userID := actingUser(ctx, opts.UserID)
	final := opts.FinalStatus
	if final == "" {
		final = domain.StatusDibatalkan
	}
	result := &domain.RollbackResult{TransactionID: txn.ID}

	if !opts.Hard && txn.JournalID == nil && !txn.BalanceApplied &&
		(txn.Status == domain.StatusDibatalkan || txn.Status == domain.StatusGagal) {
		result.Message = "nothing to roll back: transaction already " + string(txn.Status)
		return result, nil
	}

	// 1. take the transaction out of the posted set first so no check counts it
	wasStatus := txn.Status
	txn.Status = final
	txn.StatusReason = opts.Reason
	txn.AuditTrail.Touch(userID, s.Now())
	if err := s.repo.SaveTransaction(ctx, txn); err != nil {
		return result, fmt.Errorf("rollback: failed to mark transaction: %w", err)
	}

	// 2. journal
	if txn.JournalID != nil {
		journalID := *txn.JournalID
		entry, err := s.repo.FindJournalByID(ctx, journalID)
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			logger.Warn("Journal referenced by transaction is missing, detaching", slog.String("journal_id", journalID))
		case err != nil:
			return result, fmt.Errorf("rollback: failed to load journal %s: %w", journalID, err)
		case !entry.Reported:
			if err := s.repo.DeleteJournal(ctx, journalID); err != nil {
				return result, fmt.Errorf("rollback: failed to delete journal %s: %w", journalID, err)
			}
			result.JournalDeleted = true
		case entry.Status != domain.Reversed:
			reversal, err := s.factory.NewReversal(*entry, opts.Reason, userID, s.Now())
			if err != nil {
				return result, fmt.Errorf("rollback: failed to build reversal: %w", err)
			}
			if err := s.repo.SaveJournal(ctx, reversal); err != nil {
				return result, fmt.Errorf("rollback: failed to post reversal: %w", err)
			}
			entry.Status = domain.Reversed
			entry.ReversedBy = &reversal.ID
			entry.AuditTrail.Touch(userID, s.Now())
			if err := s.repo.SaveJournal(ctx, *entry); err != nil {
				return result, fmt.Errorf("rollback: failed to mark journal reversed: %w", err)
			}
			result.JournalReversed = true
			result.ReversalJournalID = reversal.ID
		}
		txn.JournalID = nil
		if err := s.repo.SaveTransaction(ctx, txn); err != nil {
			return result, fmt.Errorf("rollback: failed to detach journal: %w", err)
		}
	}

	// 3. balance
	if txn.BalanceApplied {
		member, err := s.repo.FindMemberByID(ctx, txn.MemberID)
		if err != nil {
			return result, fmt.Errorf("rollback: failed to load member %s: %w", txn.MemberID, err)
		}
		member.SetBalance(txn.PaymentType, member.Balance(txn.PaymentType)-txn.BalanceDelta())
		member.AuditFields.Touch(userID, s.Now())
		if err := s.repo.SaveMember(ctx, *member); err != nil {
			return result, fmt.Errorf("rollback: failed to revert balance: %w", err)
		}
		txn.BalanceApplied = false
		if err := s.repo.SaveTransaction(ctx, txn); err != nil {
			return result, fmt.Errorf("rollback: failed to record balance revert: %w", err)
		}
		result.BalanceReverted = true
	}

	// 4. hard rollback removes the record entirely
	if opts.Hard {
		if err := s.repo.DeleteTransaction(ctx, txn.ID); err != nil {
			return result, fmt.Errorf("rollback: failed to delete transaction: %w", err)
		}
	}

	result.Success = true
	result.Message = fmt.Sprintf("transaction %s rolled back", txn.ID)
	s.recordAudit(ctx, "transaction.rollback", map[string]any{
		"transactionId":   txn.ID,
		"memberId":        txn.MemberID,
		"mode":            txn.Mode,
		"previousStatus":  wasStatus,
		"finalStatus":     final,
		"hard":            opts.Hard,
		"reason":          opts.Reason,
		"journalDeleted":  result.JournalDeleted,
		"journalReversed": result.JournalReversed,
		"balanceReverted": result.BalanceReverted,
	})
	logger.Info("Transaction rolled back", slog.String("final_status", string(final)), slog.Bool("hard", opts.Hard))
	return result, nil
}

func (s *RollbackService) recordAudit(ctx context.Context, action string, data map[string]any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, action, data); err != nil {
		s.LogError(ctx, err, "Failed to write audit record", slog.String("action", action))
	}
}

// missing returns the names flagged true, in sorted order.
func missing(flags map[string]bool) []string {
	var names []string
	for name, isMissing := range flags {
		if isMissing {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
