package services

import (
	"testing"

	"github.com/SscSPs/coop_backoffice/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestPreviewService_GeneratePreview(t *testing.T) {
	rows := []domain.ValidatedRow{
		{Result: domain.ValidationResult{RowNumber: 1, IsValid: true}, PaymentType: domain.Hutang, Amount: 1_500_000},
		{Result: domain.ValidationResult{RowNumber: 2, IsValid: true, Warnings: []domain.FieldIssue{{Code: domain.CodeHighValueAmount}}}, PaymentType: domain.Piutang, Amount: 250_000},
		{Result: domain.ValidationResult{RowNumber: 3, Errors: []domain.FieldIssue{
			{Field: domain.ColJumlahPembayaran, Code: domain.CodeNegativeValueNotAllowed, Message: "amount cannot be negative"},
		}}},
	}

	p := NewPreviewService().GeneratePreview(rows)
	assert.Equal(t, 3, p.TotalRows)
	assert.Equal(t, 2, p.ValidRows)
	assert.Equal(t, 1, p.InvalidRows)
	assert.Equal(t, 1, p.WarningRows)
	assert.Equal(t, int64(1_750_000), p.TotalAmount)
	assert.Equal(t, "Rp 1.750.000", p.TotalFormatted)
	assert.Equal(t, domain.PaymentTypeSummary{Count: 1, Total: 1_500_000, TotalFormatted: "Rp 1.500.000"}, p.ByPaymentType[domain.Hutang])
	assert.Equal(t, 1, p.ByPaymentType[domain.Piutang].Count)
	assert.Equal(t, map[string]int{domain.CodeNegativeValueNotAllowed: 1}, p.ErrorsByCode)
	assert.Equal(t, []domain.RowIssue{{RowNumber: 3, Field: domain.ColJumlahPembayaran, Code: domain.CodeNegativeValueNotAllowed, Message: "amount cannot be negative"}}, p.SampleErrors)
}

func TestPreviewService_EmptyInput(t *testing.T) {
	p := NewPreviewService().GeneratePreview(nil)
	assert.Zero(t, p.TotalRows)
	assert.Equal(t, "Rp 0", p.TotalFormatted)
	assert.Len(t, p.ByPaymentType, 2)
	assert.Empty(t, p.SampleErrors)
}
