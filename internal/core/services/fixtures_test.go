package services

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/coop_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/coop_backoffice/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/coop_backoffice/internal/core/ports/services"
	"github.com/SscSPs/coop_backoffice/internal/middleware"
	"github.com/SscSPs/coop_backoffice/internal/platform/config"
	"github.com/SscSPs/coop_backoffice/internal/repositories/database/memory"
	"github.com/SscSPs/coop_backoffice/internal/repositories/ledger"
	"github.com/stretchr/testify/require"
)

var testAccounts = config.AccountConfig{Kas: "1-1000", HutangAnggota: "1-1200", PiutangAnggota: "1-1300"}

// ledgerFixture wires the real services over an in-memory store that can inject faults.
type ledgerFixture struct {
	store       *memory.FaultyStore
	repo        *ledger.Repository
	factory     *TransactionFactory
	locks       *memberLocks
	audit       *auditService
	rollback    *RollbackService
	poster      *PostingService
	consistency *ConsistencyService
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	store := memory.NewFaultyStore(memory.NewStore())
	repo := ledger.NewRepository(store)
	factory := NewTransactionFactory(testAccounts)
	locks := newMemberLocks()
	audit := NewAuditService(repo).(*auditService)
	rollback := NewRollbackService(repo, factory, locks, WithRollbackAudit(audit))
	return &ledgerFixture{
		store:       store,
		repo:        repo,
		factory:     factory,
		locks:       locks,
		audit:       audit,
		rollback:    rollback,
		poster:      NewPostingService(repo, factory, rollback, WithPostingAudit(audit)),
		consistency: NewConsistencyService(repo, factory, WithConsistencyAudit(audit), withConsistencyLocks(locks)),
	}
}

func testCtx() context.Context {
	return middleware.WithUserID(context.Background(), "kasir-1")
}

func (f *ledgerFixture) seedMember(t *testing.T, id, number, name string, hutang, piutang int64) domain.Member {
	t.Helper()
	m := domain.Member{
		ID:             id,
		Number:         number,
		Name:           name,
		NIK:            "3201" + number,
		Status:         domain.MemberAktif,
		OpeningHutang:  hutang,
		OpeningPiutang: piutang,
		SaldoHutang:    hutang,
		SaldoPiutang:   piutang,
		AuditFields:    domain.NewAuditFields("seed", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
	}
	require.NoError(t, f.repo.SaveMember(context.Background(), m))
	return m
}

func (f *ledgerFixture) member(t *testing.T, id string) domain.Member {
	t.Helper()
	m, err := f.repo.FindMemberByID(context.Background(), id)
	require.NoError(t, err)
	return *m
}

func (f *ledgerFixture) transactions(t *testing.T) []domain.Transaction {
	t.Helper()
	txns, err := f.repo.ListTransactions(context.Background(), portsrepo.TransactionFilter{})
	require.NoError(t, err)
	return txns
}

func (f *ledgerFixture) journals(t *testing.T) []domain.JournalEntry {
	t.Helper()
	journals, err := f.repo.ListJournals(context.Background())
	require.NoError(t, err)
	return journals
}

func (f *ledgerFixture) auditActions(t *testing.T) []string {
	t.Helper()
	records, err := f.repo.ListAudit(context.Background())
	require.NoError(t, err)
	actions := make([]string, len(records))
	for i, r := range records {
		actions[i] = r.Action
	}
	return actions
}

func (f *ledgerFixture) requireConsistent(t *testing.T) {
	t.Helper()
	result, err := f.consistency.ValidateAll(context.Background())
	require.NoError(t, err)
	require.True(t, result.Valid, "ledger issues: %+v", result.Errors)
}

func manualRequest(memberID string, t domain.PaymentType, amount int64) portssvc.PostingRequest {
	return portssvc.PostingRequest{MemberID: memberID, PaymentType: t, Amount: amount, Mode: domain.ModeManual}
}
