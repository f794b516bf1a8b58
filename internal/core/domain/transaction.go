package domain

import "time"

// PaymentType is the kind of member balance a payment settles.
type PaymentType string

const (
	// Hutang is a member repaying money owed to the cooperative.
	Hutang PaymentType = "hutang"
	// Piutang is the cooperative settling money owed to the member.
	Piutang PaymentType = "piutang"
)

// Valid reports whether t is a known payment type.
func (t PaymentType) Valid() bool {
	return t == Hutang || t == Piutang
}

// TransactionMode records which entry path created a transaction.
type TransactionMode string

const (
	ModeManual TransactionMode = "manual"
	ModeImport TransactionMode = "import"
)

// TransactionStatus is the lifecycle state of a payment transaction.
type TransactionStatus string

const (
	StatusPending    TransactionStatus = "pending"
	StatusSelesai    TransactionStatus = "selesai"    // posted
	StatusGagal      TransactionStatus = "gagal"      // failed
	StatusDibatalkan TransactionStatus = "dibatalkan" // cancelled / rolled back
)

// Transaction is a single member payment, identical in shape for manual and imported entries.
type Transaction struct {
	ID             string            `json:"id"`
	MemberID       string            `json:"memberId"`
	MemberName     string            `json:"memberName"`
	MemberNIK      string            `json:"memberNik"`
	PaymentType    PaymentType       `json:"paymentType"`
	Amount         int64             `json:"amount"`
	BalanceBefore  int64             `json:"balanceBefore"`
	BalanceAfter   int64             `json:"balanceAfter"`
	BalanceApplied bool              `json:"balanceApplied"`
	Description    string            `json:"description,omitempty"`
	Mode           TransactionMode   `json:"mode"`
	BatchID        *string           `json:"batchId,omitempty"`   // set only for imports
	RowNumber      int               `json:"rowNumber,omitempty"` // source file row for imports
	JournalID      *string           `json:"journalId,omitempty"`
	Status         TransactionStatus `json:"status"`
	StatusReason   string            `json:"statusReason,omitempty"`
	AuditTrail     AuditFields       `json:"auditTrail"`
}

// IsPosted reports whether the transaction has been fully posted.
func (t Transaction) IsPosted() bool {
	return t.Status == StatusSelesai
}

// BalanceDelta is the signed change this transaction applies to the member balance of its type.
// Payments reduce the outstanding amount.
func (t Transaction) BalanceDelta() int64 {
	return -t.Amount
}

// CreatedAt returns the creation time from the audit trail.
func (t Transaction) CreatedAt() time.Time {
	return t.AuditTrail.CreatedAt
}
