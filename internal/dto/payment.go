package dto

import (
	"time"

	"github.com/SscSPs/coop_backoffice/internal/core/domain"
)

// ManualPaymentRequest is the cashier's single-payment input. Fields mirror the import template columns.
type ManualPaymentRequest struct {
	MemberNumber string `json:"nomorAnggota" binding:"required"`
	MemberName   string `json:"namaAnggota" binding:"required"`
	PaymentType  string `json:"jenisPembayaran" binding:"required,oneof=hutang piutang"`
	Amount       string `json:"jumlahPembayaran" binding:"required"`
	Description  string `json:"keterangan"`
}

// ToImportRow maps the request onto an import row so both entry paths share validation.
func (r ManualPaymentRequest) ToImportRow() domain.ImportRow {
	return domain.ImportRow{
		RowNumber: 1,
		Fields: map[string]string{
			domain.ColNomorAnggota:     r.MemberNumber,
			domain.ColNamaAnggota:      r.MemberName,
			domain.ColJenisPembayaran:  r.PaymentType,
			domain.ColJumlahPembayaran: r.Amount,
			domain.ColKeterangan:       r.Description,
		},
	}
}

// CancelPaymentRequest carries the reason a posted payment is cancelled.
type CancelPaymentRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// PaymentResponse defines the data returned for a payment transaction.
type PaymentResponse struct {
	ID            string    `json:"id"`
	MemberID      string    `json:"memberId"`
	MemberName    string    `json:"memberName"`
	PaymentType   string    `json:"paymentType"`
	Amount        int64     `json:"amount"`
	BalanceBefore int64     `json:"balanceBefore"`
	BalanceAfter  int64     `json:"balanceAfter"`
	Mode          string    `json:"mode"`
	BatchID       *string   `json:"batchId,omitempty"`
	JournalID     *string   `json:"journalId,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
}

// ToPaymentResponse converts a domain.Transaction to PaymentResponse DTO.
func ToPaymentResponse(txn *domain.Transaction) PaymentResponse {
	return PaymentResponse{
		ID:            txn.ID,
		MemberID:      txn.MemberID,
		MemberName:    txn.MemberName,
		PaymentType:   string(txn.PaymentType),
		Amount:        txn.Amount,
		BalanceBefore: txn.BalanceBefore,
		BalanceAfter:  txn.BalanceAfter,
		Mode:          string(txn.Mode),
		BatchID:       txn.BatchID,
		JournalID:     txn.JournalID,
		Status:        string(txn.Status),
		CreatedAt:     txn.AuditTrail.CreatedAt,
		CreatedBy:     txn.AuditTrail.CreatedBy,
	}
}

// ToPaymentResponses converts a slice of domain.Transaction to []PaymentResponse.
func ToPaymentResponses(txns []domain.Transaction) []PaymentResponse {
	responses := make([]PaymentResponse, len(txns))
	for i, txn := range txns {
		responses[i] = ToPaymentResponse(&txn)
	}
	return responses
}

// ListPaymentsParams defines the query parameters for listing payments.
type ListPaymentsParams struct {
	MemberID  string  `form:"memberId"`
	Mode      string  `form:"mode" binding:"omitempty,oneof=manual import"`
	Status    string  `form:"status" binding:"omitempty,oneof=pending selesai gagal dibatalkan"`
	Limit     int     `form:"limit" binding:"omitempty,min=1,max=100"`
	NextToken *string `form:"nextToken"`
}

// ListPaymentsResponse wraps a page of payments.
type ListPaymentsResponse struct {
	Payments  []PaymentResponse `json:"payments"`
	NextToken *string           `json:"nextToken,omitempty"`
}
