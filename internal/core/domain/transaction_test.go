package domain_test

import (
	"testing"

	"github.com/SscSPs/coop_backoffice/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestPaymentType_Valid(t *testing.T) {
	tests := []struct {
		name string
		in   domain.PaymentType
		want bool
	}{
		{name: "hutang", in: domain.Hutang, want: true},
		{name: "piutang", in: domain.Piutang, want: true},
		{name: "uppercase is not normalized here", in: "HUTANG", want: false},
		{name: "empty", in: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Valid())
		})
	}
}

func TestTransaction_BalanceDelta(t *testing.T) {
	txn := domain.Transaction{Amount: 500000, PaymentType: domain.Hutang}
	assert.Equal(t, int64(-500000), txn.BalanceDelta())
	assert.False(t, txn.IsPosted())

	txn.Status = domain.StatusSelesai
	assert.True(t, txn.IsPosted())
}

func TestJournalEntry_Totals(t *testing.T) {
	entry := domain.JournalEntry{Lines: []domain.JournalLine{
		{Account: "1-1000", Debit: 300000},
		{Account: "1-1200", Credit: 300000},
	}}
	debit, credit := entry.Totals()
	assert.Equal(t, int64(300000), debit)
	assert.Equal(t, int64(300000), credit)
	assert.True(t, entry.IsBalanced())

	entry.Lines = entry.Lines[:1]
	assert.False(t, entry.IsBalanced())
}

func TestJournalLine_HasSingleSide(t *testing.T) {
	assert.True(t, domain.JournalLine{Debit: 1}.HasSingleSide())
	assert.True(t, domain.JournalLine{Credit: 1}.HasSingleSide())
	assert.False(t, domain.JournalLine{Debit: 1, Credit: 1}.HasSingleSide())
	assert.False(t, domain.JournalLine{}.HasSingleSide())
	assert.False(t, domain.JournalLine{Debit: -5}.HasSingleSide())
}

func TestMember_Balance(t *testing.T) {
	m := domain.Member{Status: domain.MemberAktif, SaldoHutang: 100, SaldoPiutang: 200, OpeningHutang: 1000}
	assert.Equal(t, int64(100), m.Balance(domain.Hutang))
	assert.Equal(t, int64(200), m.Balance(domain.Piutang))
	assert.Equal(t, int64(1000), m.Opening(domain.Hutang))

	m.SetBalance(domain.Piutang, 50)
	assert.Equal(t, int64(50), m.SaldoPiutang)
	assert.True(t, m.CanTransact())

	m.Ineligible = true
	assert.False(t, m.CanTransact())
	m.Ineligible = false
	m.Status = domain.MemberKeluar
	assert.False(t, m.CanTransact())
}
