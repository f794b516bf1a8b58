package services

import (
	"fmt"
	"time"

	"github.com/SscSPs/coop_backoffice/internal/apperrors"
	"github.com/SscSPs/coop_backoffice/internal/core/domain"
	portssvc "github.com/SscSPs/coop_backoffice/internal/core/ports/services"
	"github.com/SscSPs/coop_backoffice/internal/platform/config"
	"github.com/SscSPs/coop_backoffice/internal/utils/accounting"
	"github.com/google/uuid"
)

// TransactionFactory builds transactions and their journal entries in the same shape for both entry paths.
type TransactionFactory struct {
	accounts config.AccountConfig
}

// NewTransactionFactory creates a factory posting to the given chart of accounts.
func NewTransactionFactory(accounts config.AccountConfig) *TransactionFactory {
	return &TransactionFactory{accounts: accounts}
}

// NewTransaction creates a pending transaction for member from req.
func (f *TransactionFactory) NewTransaction(req portssvc.PostingRequest, member domain.Member, userID string, now time.Time) (domain.Transaction, error) {
	if !req.PaymentType.Valid() {
		return domain.Transaction{}, fmt.Errorf("%w: unknown payment type %q", apperrors.ErrValidation, req.PaymentType)
	}
	if req.Amount <= 0 {
		return domain.Transaction{}, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}
	if req.Mode == domain.ModeImport && (req.BatchID == nil || *req.BatchID == "") {
		return domain.Transaction{}, fmt.Errorf("%w: imported transaction requires a batch id", apperrors.ErrValidation)
	}
	if req.Mode == domain.ModeManual && req.BatchID != nil {
		return domain.Transaction{}, fmt.Errorf("%w: manual transaction cannot carry a batch id", apperrors.ErrValidation)
	}

	before := member.Balance(req.PaymentType)
	return domain.Transaction{
		ID:            uuid.NewString(),
		MemberID:      member.ID,
		MemberName:    member.Name,
		MemberNIK:     member.NIK,
		PaymentType:   req.PaymentType,
		Amount:        req.Amount,
		BalanceBefore: before,
		BalanceAfter:  before - req.Amount,
		Description:   req.Description,
		Mode:          req.Mode,
		BatchID:       req.BatchID,
		RowNumber:     req.RowNumber,
		Status:        domain.StatusPending,
		AuditTrail:    domain.NewAuditFields(userID, now),
	}, nil
}

// NewJournal builds the balanced journal entry for txn and checks it.
func (f *TransactionFactory) NewJournal(txn domain.Transaction, date time.Time, userID string, now time.Time) (domain.JournalEntry, error) {
	credit, creditName := f.creditAccount(txn.PaymentType)
	if date.IsZero() {
		date = now
	}

	entry := domain.JournalEntry{
		ID:          uuid.NewString(),
		Date:        date,
		Description: f.describe(txn),
		Lines: []domain.JournalLine{
			{Account: f.accounts.Kas, AccountName: "Kas", Debit: txn.Amount},
			{Account: credit, AccountName: creditName, Credit: txn.Amount},
		},
		TransactionID: txn.ID,
		Mode:          txn.Mode,
		Status:        domain.Posted,
		AuditTrail:    domain.NewAuditFields(userID, now),
	}
	if err := accounting.ValidateJournalBalance(entry.Lines); err != nil {
		return domain.JournalEntry{}, err
	}
	return entry, nil
}

// NewReversal builds the equal-and-opposite entry for original.
func (f *TransactionFactory) NewReversal(original domain.JournalEntry, reason string, userID string, now time.Time) (domain.JournalEntry, error) {
	originalID := original.ID
	entry := domain.JournalEntry{
		ID:            uuid.NewString(),
		Date:          now,
		Description:   fmt.Sprintf("Pembatalan: %s (%s)", original.Description, reason),
		Lines:         accounting.ReverseLines(original.Lines),
		TransactionID: original.TransactionID,
		Mode:          original.Mode,
		Status:        domain.Posted,
		ReversalOf:    &originalID,
		AuditTrail:    domain.NewAuditFields(userID, now),
	}
	if err := accounting.ValidateJournalBalance(entry.Lines); err != nil {
		return domain.JournalEntry{}, err
	}
	return entry, nil
}

func (f *TransactionFactory) describe(txn domain.Transaction) string {
	kind := "Pembayaran hutang"
	if txn.PaymentType == domain.Piutang {
		kind = "Pembayaran piutang"
	}
	desc := fmt.Sprintf("%s %s (%s)", kind, txn.MemberName, txn.Mode)
	if txn.Description != "" {
		desc += " - " + txn.Description
	}
	return desc
}

// creditAccount returns the member receivable account settled by payment type t.
func (f *TransactionFactory) creditAccount(t domain.PaymentType) (string, string) {
	if t == domain.Piutang {
		return f.accounts.PiutangAnggota, "Piutang Usaha Anggota"
	}
	return f.accounts.HutangAnggota, "Piutang Pinjaman Anggota"
}
