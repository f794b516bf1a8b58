package services

import (
	"errors"
	"testing"

	"github.com/SscSPs/coop_backoffice/internal/apperrors"
	"github.com/SscSPs/coop_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/coop_backoffice/internal/core/ports/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RollbackServiceTestSuite struct {
	suite.Suite
	f *ledgerFixture
}

func (s *RollbackServiceTestSuite) SetupTest() {
	s.f = newLedgerFixture(s.T())
	s.f.seedMember(s.T(), "m1", "A-001", "Budi Santoso", 1_000_000, 500_000)
}

func TestRollbackServiceSuite(t *testing.T) {
	suite.Run(t, new(RollbackServiceTestSuite))
}

func (s *RollbackServiceTestSuite) post(t domain.PaymentType, amount int64) domain.Transaction {
	res, err := s.f.poster.PostPayment(testCtx(), manualRequest("m1", t, amount))
	s.Require().NoError(err)
	return res.Transaction
}

func (s *RollbackServiceTestSuite) TestUnknownTransactionHasNothingToRollBack() {
	res, err := s.f.rollback.PerformRollback(testCtx(), "missing", domain.RollbackOptions{Reason: "test"})
	s.Require().NoError(err)
	s.False(res.Success)
	s.Contains(res.Message, "nothing to roll back")
}

func (s *RollbackServiceTestSuite) TestRollbackUndoesEverySideEffect() {
	txn := s.post(domain.Hutang, 300_000)
	s.Equal(int64(700_000), s.f.member(s.T(), "m1").SaldoHutang)

	res, err := s.f.rollback.PerformRollback(testCtx(), txn.ID, domain.RollbackOptions{Reason: "salah input"})
	s.Require().NoError(err)
	s.True(res.Success)
	s.True(res.JournalDeleted)
	s.False(res.JournalReversed)
	s.True(res.BalanceReverted)

	stored, err := s.f.repo.FindTransactionByID(testCtx(), txn.ID)
	s.Require().NoError(err)
	s.Equal(domain.StatusDibatalkan, stored.Status)
	s.Equal("salah input", stored.StatusReason)
	s.Nil(stored.JournalID)
	s.False(stored.BalanceApplied)

	s.Empty(s.f.journals(s.T()))
	s.Equal(int64(1_000_000), s.f.member(s.T(), "m1").SaldoHutang)
	s.Contains(s.f.auditActions(s.T()), "transaction.rollback")
	s.f.requireConsistent(s.T())
}

func (s *RollbackServiceTestSuite) TestReportedJournalIsReversed() {
	txn := s.post(domain.Piutang, 200_000)
	entry, err := s.f.repo.FindJournalByID(testCtx(), *txn.JournalID)
	s.Require().NoError(err)
	entry.Reported = true
	s.Require().NoError(s.f.repo.SaveJournal(testCtx(), *entry))

	res, err := s.f.rollback.PerformRollback(testCtx(), txn.ID, domain.RollbackOptions{Reason: "dobel"})
	s.Require().NoError(err)
	s.True(res.JournalReversed)
	s.False(res.JournalDeleted)
	s.NotEmpty(res.ReversalJournalID)

	original, err := s.f.repo.FindJournalByID(testCtx(), entry.ID)
	s.Require().NoError(err)
	s.Equal(domain.Reversed, original.Status)
	s.Require().NotNil(original.ReversedBy)
	s.Equal(res.ReversalJournalID, *original.ReversedBy)

	reversal, err := s.f.repo.FindJournalByID(testCtx(), res.ReversalJournalID)
	s.Require().NoError(err)
	s.Require().NotNil(reversal.ReversalOf)
	s.Equal(entry.ID, *reversal.ReversalOf)
	s.True(reversal.IsBalanced())
	for i, l := range reversal.Lines {
		s.Equal(entry.Lines[i].Debit, l.Credit)
		s.Equal(entry.Lines[i].Credit, l.Debit)
	}

	s.Equal(int64(500_000), s.f.member(s.T(), "m1").SaldoPiutang)
	s.f.requireConsistent(s.T())
}

func (s *RollbackServiceTestSuite) TestHardRollbackDeletesTransaction() {
	txn := s.post(domain.Hutang, 100_000)

	res, err := s.f.rollback.PerformRollback(testCtx(), txn.ID, domain.RollbackOptions{Reason: "uji", Hard: true})
	s.Require().NoError(err)
	s.True(res.Success)

	_, err = s.f.repo.FindTransactionByID(testCtx(), txn.ID)
	s.ErrorIs(err, apperrors.ErrNotFound)
	s.Equal(int64(1_000_000), s.f.member(s.T(), "m1").SaldoHutang)
	s.f.requireConsistent(s.T())
}

func (s *RollbackServiceTestSuite) TestSecondRollbackIsNoop() {
	txn := s.post(domain.Hutang, 100_000)
	_, err := s.f.rollback.PerformRollback(testCtx(), txn.ID, domain.RollbackOptions{Reason: "pertama"})
	s.Require().NoError(err)

	res, err := s.f.rollback.PerformRollback(testCtx(), txn.ID, domain.RollbackOptions{Reason: "kedua"})
	s.Require().NoError(err)
	s.False(res.Success)
	s.Equal(int64(1_000_000), s.f.member(s.T(), "m1").SaldoHutang, "balance reverted only once")
}

func (s *RollbackServiceTestSuite) TestBalanceRevertFailureSurfacesError() {
	txn := s.post(domain.Hutang, 100_000)
	s.f.store.SetHook(func(op, collection, id string) error {
		if op == "put" && collection == portsrepo.CollectionMembers {
			return apperrors.ErrStoreUnavailable
		}
		return nil
	})

	_, err := s.f.rollback.PerformRollback(testCtx(), txn.ID, domain.RollbackOptions{Reason: "uji"})
	s.Require().Error(err)
	s.True(errors.Is(err, apperrors.ErrStoreUnavailable))

	// the transaction no longer counts as posted, so the saldo check flags the drift for repair
	s.f.store.SetHook(nil)
	saldo, err := s.f.consistency.ValidateSaldo(testCtx())
	s.Require().NoError(err)
	s.Require().Len(saldo.Errors, 1)
	s.Equal(domain.IssueSaldoMismatch, saldo.Errors[0].Code)
}

func TestRollback_MissingCollaborators(t *testing.T) {
	_, err := NewRollbackService(nil, nil, nil).PerformRollback(testCtx(), "x", domain.RollbackOptions{})
	var cu *apperrors.ComponentUnavailableError
	require.ErrorAs(t, err, &cu)
	assert.Len(t, cu.Components, 2)
}
