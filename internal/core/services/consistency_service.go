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
	"github.com/SscSPs/coop_backoffice/internal/utils/accounting"
)

// ConsistencyService checks balances and journals against the transaction history.
type ConsistencyService struct {
	BaseService
	repo    portsrepo.LedgerRepositoryFacade
	factory *TransactionFactory
	audit   portssvc.AuditSvc
	locks   *memberLocks
}

// ConsistencyOption is a functional option for configuring the consistency service
type ConsistencyOption func(*ConsistencyService)

// WithConsistencyAudit adds the audit service dependency. Repairs are refused without it.
func WithConsistencyAudit(audit portssvc.AuditSvc) ConsistencyOption {
	return func(s *ConsistencyService) {
		s.audit = audit
	}
}

func withConsistencyLocks(locks *memberLocks) ConsistencyOption {
	return func(s *ConsistencyService) {
		s.locks = locks
	}
}

// NewConsistencyService creates a new consistency service.
func NewConsistencyService(repo portsrepo.LedgerRepositoryFacade, factory *TransactionFactory, options ...ConsistencyOption) *ConsistencyService {
	svc := &ConsistencyService{repo: repo, factory: factory}
	for _, option := range options {
		option(svc)
	}
	if svc.locks == nil {
		svc.locks = newMemberLocks()
	}
	return svc
}

var _ portssvc.ConsistencySvc = (*ConsistencyService)(nil)

func (s *ConsistencyService) ready() error {
	if s.repo == nil {
		return apperrors.NewComponentUnavailableError("ledger repository")
	}
	return nil
}

// ValidateSaldo compares every member balance with opening balance plus posted history.
func (s *ConsistencyService) ValidateSaldo(ctx context.Context) (domain.ConsistencyResult, error) {
	if err := s.ready(); err != nil {
		return domain.ConsistencyResult{}, err
	}
	members, err := s.repo.ListMembers(ctx)
	if err != nil {
		return domain.ConsistencyResult{}, fmt.Errorf("failed to list members: %w", err)
	}
	txns, err := s.repo.ListTransactions(ctx, portsrepo.TransactionFilter{})
	if err != nil {
		return domain.ConsistencyResult{}, fmt.Errorf("failed to list transactions: %w", err)
	}

	var issues []domain.ConsistencyIssue
	for _, m := range members {
		for _, t := range []domain.PaymentType{domain.Hutang, domain.Piutang} {
			expected := computeBalance(m, t, txns)
			if actual := m.Balance(t); actual != expected {
				issues = append(issues, domain.ConsistencyIssue{
					Code:        domain.IssueSaldoMismatch,
					Message:     fmt.Sprintf("member %s %s balance is %d, history gives %d", m.Number, t, actual, expected),
					MemberID:    m.ID,
					PaymentType: t,
					Expected:    expected,
					Actual:      actual,
				})
			}
		}
	}
	return domain.NewConsistencyResult(issues), nil
}

// ValidateJournalIntegrity checks line shapes and the debit/credit balance of every entry.
func (s *ConsistencyService) ValidateJournalIntegrity(ctx context.Context) (domain.ConsistencyResult, error) {
	if err := s.ready(); err != nil {
		return domain.ConsistencyResult{}, err
	}
	journals, err := s.repo.ListJournals(ctx)
	if err != nil {
		return domain.ConsistencyResult{}, fmt.Errorf("failed to list journals: %w", err)
	}

	var issues []domain.ConsistencyIssue
	for _, j := range journals {
		if len(j.Lines) == 0 {
			issues = append(issues, domain.ConsistencyIssue{
				Code:          domain.IssueEmptyJournal,
				Message:       fmt.Sprintf("journal %s has no lines", j.ID),
				JournalID:     j.ID,
				TransactionID: j.TransactionID,
			})
			continue
		}
		for i, l := range j.Lines {
			if l.Account == "" || !l.HasSingleSide() {
				issues = append(issues, domain.ConsistencyIssue{
					Code:          domain.IssueInvalidLine,
					Message:       fmt.Sprintf("journal %s line %d must name an account and set exactly one side", j.ID, i),
					JournalID:     j.ID,
					TransactionID: j.TransactionID,
				})
			}
		}
		debit, credit := accounting.SumLines(j.Lines)
		if !debit.Equal(credit) {
			issues = append(issues, domain.ConsistencyIssue{
				Code:          domain.IssueJournalUnbalanced,
				Message:       fmt.Sprintf("journal %s debits %s and credits %s", j.ID, debit.String(), credit.String()),
				JournalID:     j.ID,
				TransactionID: j.TransactionID,
				Expected:      debit.IntPart(),
				Actual:        credit.IntPart(),
			})
		}
	}
	return domain.NewConsistencyResult(issues), nil
}

// ValidateCrossMode checks that transactions from both entry paths are backed by matching
// journals and that no live journal lacks a posted transaction.
func (s *ConsistencyService) ValidateCrossMode(ctx context.Context) (domain.ConsistencyResult, error) {
	if err := s.ready(); err != nil {
		return domain.ConsistencyResult{}, err
	}
	txns, err := s.repo.ListTransactions(ctx, portsrepo.TransactionFilter{})
	if err != nil {
		return domain.ConsistencyResult{}, fmt.Errorf("failed to list transactions: %w", err)
	}
	journals, err := s.repo.ListJournals(ctx)
	if err != nil {
		return domain.ConsistencyResult{}, fmt.Errorf("failed to list journals: %w", err)
	}

	byJournal := make(map[string]domain.JournalEntry, len(journals))
	for _, j := range journals {
		byJournal[j.ID] = j
	}
	byTxn := make(map[string]domain.Transaction, len(txns))
	for _, t := range txns {
		byTxn[t.ID] = t
	}

	var issues []domain.ConsistencyIssue
	for _, t := range txns {
		if !t.IsPosted() {
			continue
		}
		if t.JournalID == nil {
			issues = append(issues, missingJournal(t, "has no journal"))
			continue
		}
		j, ok := byJournal[*t.JournalID]
		if !ok {
			issues = append(issues, missingJournal(t, "references absent journal "+*t.JournalID))
			continue
		}
		debit, _ := j.Totals()
		if j.TransactionID != t.ID || debit != t.Amount || j.Mode != t.Mode {
			issues = append(issues, domain.ConsistencyIssue{
				Code:          domain.IssueAmountMismatch,
				Message:       fmt.Sprintf("%s transaction %s of %d is backed by journal %s debiting %d", t.Mode, t.ID, t.Amount, j.ID, debit),
				MemberID:      t.MemberID,
				PaymentType:   t.PaymentType,
				TransactionID: t.ID,
				JournalID:     j.ID,
				Expected:      t.Amount,
				Actual:        debit,
			})
		}
	}

	for _, j := range journals {
		// reversal pairs net to zero and stay as history
		if j.Status != domain.Posted || j.ReversalOf != nil {
			continue
		}
		t, ok := byTxn[j.TransactionID]
		if ok && t.IsPosted() && t.JournalID != nil && *t.JournalID == j.ID {
			continue
		}
		issues = append(issues, domain.ConsistencyIssue{
			Code:          domain.IssueOrphanJournal,
			Message:       fmt.Sprintf("journal %s is not backed by a posted transaction", j.ID),
			JournalID:     j.ID,
			TransactionID: j.TransactionID,
		})
	}
	return domain.NewConsistencyResult(issues), nil
}

func missingJournal(t domain.Transaction, what string) domain.ConsistencyIssue {
	return domain.ConsistencyIssue{
		Code:          domain.IssueMissingJournal,
		Message:       fmt.Sprintf("%s transaction %s %s", t.Mode, t.ID, what),
		MemberID:      t.MemberID,
		PaymentType:   t.PaymentType,
		TransactionID: t.ID,
		Expected:      t.Amount,
	}
}

// ValidateAll runs every check and merges the results.
func (s *ConsistencyService) ValidateAll(ctx context.Context) (domain.ConsistencyResult, error) {
	saldo, err := s.ValidateSaldo(ctx)
	if err != nil {
		return domain.ConsistencyResult{}, err
	}
	integrity, err := s.ValidateJournalIntegrity(ctx)
	if err != nil {
		return domain.ConsistencyResult{}, err
	}
	cross, err := s.ValidateCrossMode(ctx)
	if err != nil {
		return domain.ConsistencyResult{}, err
	}
	return domain.Merge(saldo, integrity, cross), nil
}

// AttemptDataRepair fixes the issues that can be derived from audited history and leaves the
// rest for manual review. Every repair writes an audit record.
func (s *ConsistencyService) AttemptDataRepair(ctx context.Context, result domain.ConsistencyResult) (*domain.RepairResult, error) {
	if s.repo == nil || s.factory == nil || s.audit == nil {
		return nil, apperrors.NewComponentUnavailableError(missing(map[string]bool{
			"ledger repository":   s.repo == nil,
			"transaction factory": s.factory == nil,
			"audit service":       s.audit == nil,
		})...)
	}

	out := &domain.RepairResult{Repaired: []domain.ConsistencyIssue{}, Unrepaired: []domain.ConsistencyIssue{}}
	for _, issue := range result.Errors {
		var (
			repaired bool
			err      error
		)
		switch issue.Code {
		case domain.IssueSaldoMismatch:
			repaired, err = s.repairSaldo(ctx, issue)
		case domain.IssueJournalUnbalanced:
			repaired, err = s.repairUnbalanced(ctx, issue)
		case domain.IssueMissingJournal:
			repaired, err = s.repairMissingJournal(ctx, issue)
		}
		if err != nil {
			if apperrors.IsSystemic(err) {
				return out, err
			}
			s.LogError(ctx, err, "Repair failed", slog.String("code", issue.Code))
		}
		if repaired {
			out.Repaired = append(out.Repaired, issue)
		} else {
			out.Unrepaired = append(out.Unrepaired, issue)
		}
	}
	s.LogInfo(ctx, "Data repair finished", slog.Int("repaired", len(out.Repaired)), slog.Int("unrepaired", len(out.Unrepaired)))
	return out, nil
}

func (s *ConsistencyService) repairSaldo(ctx context.Context, issue domain.ConsistencyIssue) (bool, error) {
	if issue.MemberID == "" || !issue.PaymentType.Valid() {
		return false, nil
	}
	release := s.locks.Lock(issue.MemberID)
	defer release()

	member, err := s.repo.FindMemberByID(ctx, issue.MemberID)
	if err != nil {
		return false, err
	}
	txns, err := s.repo.ListTransactions(ctx, portsrepo.TransactionFilter{MemberID: issue.MemberID})
	if err != nil {
		return false, err
	}
	before := member.Balance(issue.PaymentType)
	expected := computeBalance(*member, issue.PaymentType, txns)
	member.SetBalance(issue.PaymentType, expected)
	member.AuditFields.Touch(actingUser(ctx, ""), s.Now())
	if err := s.repo.SaveMember(ctx, *member); err != nil {
		return false, err
	}
	return true, s.audit.Record(ctx, "repair.saldo", map[string]any{
		"memberId":    member.ID,
		"paymentType": issue.PaymentType,
		"before":      before,
		"after":       expected,
	})
}

// repairUnbalanced appends the missing balancing line when one side of the entry still equals
// the amount of the transaction it backs.
func (s *ConsistencyService) repairUnbalanced(ctx context.Context, issue domain.ConsistencyIssue) (bool, error) {
	if issue.JournalID == "" {
		return false, nil
	}
	entry, err := s.repo.FindJournalByID(ctx, issue.JournalID)
	if err != nil {
		return false, err
	}
	if entry.TransactionID == "" || entry.ReversalOf != nil {
		return false, nil
	}
	txn, err := s.repo.FindTransactionByID(ctx, entry.TransactionID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	debit, credit := entry.Totals()
	var line domain.JournalLine
	switch {
	case debit == txn.Amount && credit < debit:
		account, name := s.factory.creditAccount(txn.PaymentType)
		line = domain.JournalLine{Account: account, AccountName: name, Credit: debit - credit}
	case credit == txn.Amount && debit < credit:
		line = domain.JournalLine{Account: s.factory.accounts.Kas, AccountName: "Kas", Debit: credit - debit}
	default:
		return false, nil
	}
	lines := append(append([]domain.JournalLine{}, entry.Lines...), line)
	if err := accounting.ValidateJournalBalance(lines); err != nil {
		return false, nil
	}
	entry.Lines = lines
	entry.AuditTrail.Touch(actingUser(ctx, ""), s.Now())
	if err := s.repo.SaveJournal(ctx, *entry); err != nil {
		return false, err
	}
	return true, s.audit.Record(ctx, "repair.journal_balanced", map[string]any{
		"journalId":     entry.ID,
		"transactionId": txn.ID,
		"addedLine":     line,
		"note":          "balancing line appended from transaction amount",
	})
}

func (s *ConsistencyService) repairMissingJournal(ctx context.Context, issue domain.ConsistencyIssue) (bool, error) {
	if issue.TransactionID == "" {
		return false, nil
	}
	txn, err := s.repo.FindTransactionByID(ctx, issue.TransactionID)
	if err != nil {
		return false, err
	}
	release := s.locks.Lock(txn.MemberID)
	defer release()

	if !txn.IsPosted() {
		return false, nil
	}
	if txn.JournalID != nil {
		if _, err := s.repo.FindJournalByID(ctx, *txn.JournalID); err == nil {
			return false, nil
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return false, err
		}
	}

	userID := actingUser(ctx, "")
	entry, err := s.factory.NewJournal(*txn, txn.CreatedAt(), userID, s.Now())
	if err != nil {
		return false, err
	}
	if err := s.repo.SaveJournal(ctx, entry); err != nil {
		return false, err
	}
	txn.JournalID = &entry.ID
	txn.AuditTrail.Touch(userID, s.Now())
	if err := s.repo.SaveTransaction(ctx, *txn); err != nil {
		return false, err
	}
	return true, s.audit.Record(ctx, "repair.journal_recreated", map[string]any{
		"journalId":     entry.ID,
		"transactionId": txn.ID,
		"amount":        txn.Amount,
	})
}
