package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/coop_backoffice/internal/apperrors"
	"github.com/SscSPs/coop_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/coop_backoffice/internal/core/ports/repositories"
	"github.com/SscSPs/coop_backoffice/internal/repositories/database/memory"
	"github.com/SscSPs/coop_backoffice/internal/repositories/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type LedgerRepositoryTestSuite struct {
	suite.Suite
	ctx  context.Context
	repo *ledger.Repository
}

func (s *LedgerRepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.repo = ledger.NewRepository(memory.NewStore())
}

func TestLedgerRepositorySuite(t *testing.T) {
	suite.Run(t, new(LedgerRepositoryTestSuite))
}

func (s *LedgerRepositoryTestSuite) TestTransactionsRoundTripAndFilter() {
	base := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	batchID := "batch-1"
	txns := []domain.Transaction{
		{ID: "t2", MemberID: "m1", Mode: domain.ModeManual, Status: domain.StatusSelesai, AuditTrail: domain.AuditFields{CreatedAt: base.Add(time.Minute)}},
		{ID: "t1", MemberID: "m1", Mode: domain.ModeImport, BatchID: &batchID, Status: domain.StatusSelesai, AuditTrail: domain.AuditFields{CreatedAt: base}},
		{ID: "t3", MemberID: "m2", Mode: domain.ModeImport, BatchID: &batchID, Status: domain.StatusGagal, AuditTrail: domain.AuditFields{CreatedAt: base}},
	}
	for _, txn := range txns {
		s.Require().NoError(s.repo.SaveTransaction(s.ctx, txn))
	}

	all, err := s.repo.ListTransactions(s.ctx, portsrepo.TransactionFilter{})
	s.Require().NoError(err)
	s.Equal([]string{"t1", "t3", "t2"}, ids(all), "ordered by creation time then id")

	byBatch, err := s.repo.ListTransactions(s.ctx, portsrepo.TransactionFilter{BatchID: batchID, Status: domain.StatusSelesai})
	s.Require().NoError(err)
	s.Equal([]string{"t1"}, ids(byBatch))

	manual, err := s.repo.ListTransactions(s.ctx, portsrepo.TransactionFilter{Mode: domain.ModeManual})
	s.Require().NoError(err)
	s.Equal([]string{"t2"}, ids(manual))

	found, err := s.repo.FindTransactionByID(s.ctx, "t3")
	s.Require().NoError(err)
	s.Equal("m2", found.MemberID)

	s.Require().NoError(s.repo.DeleteTransaction(s.ctx, "t3"))
	_, err = s.repo.FindTransactionByID(s.ctx, "t3")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *LedgerRepositoryTestSuite) TestMembersByNumber() {
	s.Require().NoError(s.repo.SaveMember(s.ctx, domain.Member{ID: "m1", Number: "A-001", Name: "Siti"}))

	m, err := s.repo.FindMemberByNumber(s.ctx, "A-001")
	s.Require().NoError(err)
	s.Equal("m1", m.ID)

	_, err = s.repo.FindMemberByNumber(s.ctx, "A-999")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *LedgerRepositoryTestSuite) TestJournalsBatchesAudit() {
	s.Require().NoError(s.repo.SaveJournal(s.ctx, domain.JournalEntry{ID: "j1", Lines: []domain.JournalLine{{Account: "1-1000", Debit: 5}, {Account: "1-1200", Credit: 5}}}))
	j, err := s.repo.FindJournalByID(s.ctx, "j1")
	s.Require().NoError(err)
	s.True(j.IsBalanced())

	s.Require().NoError(s.repo.SaveBatch(s.ctx, domain.Batch{ID: "b1", TotalRows: 3}))
	b, err := s.repo.FindBatchByID(s.ctx, "b1")
	s.Require().NoError(err)
	s.Equal(3, b.TotalRows)

	now := time.Now()
	s.Require().NoError(s.repo.AppendAudit(s.ctx, domain.AuditRecord{ID: "a2", Timestamp: now.Add(time.Second), Action: "second"}))
	s.Require().NoError(s.repo.AppendAudit(s.ctx, domain.AuditRecord{ID: "a1", Timestamp: now, Action: "first"}))
	records, err := s.repo.ListAudit(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Equal("first", records[0].Action)
}

func (s *LedgerRepositoryTestSuite) TestRejectsEmptyID() {
	err := s.repo.SaveTransaction(s.ctx, domain.Transaction{})
	s.ErrorIs(err, apperrors.ErrValidation)
}

func TestRepository_PropagatesStoreErrors(t *testing.T) {
	faulty := memory.NewFaultyStore(memory.NewStore())
	faulty.SetHook(func(op, collection, id string) error { return apperrors.ErrStoreUnavailable })
	repo := ledger.NewRepository(faulty)

	_, err := repo.ListJournals(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
}

func ids(txns []domain.Transaction) []string {
	out := make([]string, len(txns))
	for i, t := range txns {
		out[i] = t.ID
	}
	return out
}
