package domain

// MemberStatus is the membership state of a cooperative member.
type MemberStatus string

const (
	MemberAktif    MemberStatus = "aktif"
	MemberNonaktif MemberStatus = "nonaktif"
	MemberKeluar   MemberStatus = "keluar" // departed
)

// Member is a cooperative member together with their running hutang/piutang balances.
type Member struct {
	ID             string       `json:"id"`
	Number         string       `json:"number"` // nomor_anggota
	Name           string       `json:"name"`
	NIK            string       `json:"nik"`
	Status         MemberStatus `json:"status"`
	Ineligible     bool         `json:"ineligible,omitempty"`
	OpeningHutang  int64        `json:"openingHutang"`
	OpeningPiutang int64        `json:"openingPiutang"`
	SaldoHutang    int64        `json:"saldoHutang"`
	SaldoPiutang   int64        `json:"saldoPiutang"`
	AuditFields
}

// CanTransact reports whether the member may receive new payments.
func (m Member) CanTransact() bool {
	return m.Status == MemberAktif && !m.Ineligible
}

// Balance returns the current balance for the given payment type.
func (m Member) Balance(t PaymentType) int64 {
	if t == Piutang {
		return m.SaldoPiutang
	}
	return m.SaldoHutang
}

// Opening returns the opening balance for the given payment type.
func (m Member) Opening(t PaymentType) int64 {
	if t == Piutang {
		return m.OpeningPiutang
	}
	return m.OpeningHutang
}

// SetBalance overwrites the current balance for the given payment type.
func (m *Member) SetBalance(t PaymentType, v int64) {
	if t == Piutang {
		m.SaldoPiutang = v
		return
	}
	m.SaldoHutang = v
}
