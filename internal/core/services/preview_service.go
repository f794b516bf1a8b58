package services

import (
	"github.com/SscSPs/coop_backoffice/internal/core/domain"
	portssvc "github.com/SscSPs/coop_backoffice/internal/core/ports/services"
	"github.com/SscSPs/coop_backoffice/internal/utils"
)

// maxSampleErrors caps the per-row issues echoed in a preview.
const maxSampleErrors = 20

type previewService struct{}

// NewPreviewService creates a preview generator. GeneratePreview is a pure function of its input.
func NewPreviewService() portssvc.PreviewGenerator {
	return &previewService{}
}

func (s *previewService) GeneratePreview(rows []domain.ValidatedRow) domain.Preview {
	p := domain.Preview{
		TotalRows:     len(rows),
		ByPaymentType: map[domain.PaymentType]domain.PaymentTypeSummary{},
		ErrorsByCode:  map[string]int{},
		SampleErrors:  []domain.RowIssue{},
	}
	for _, t := range []domain.PaymentType{domain.Hutang, domain.Piutang} {
		p.ByPaymentType[t] = domain.PaymentTypeSummary{TotalFormatted: utils.FormatRupiah(0)}
	}

	for _, r := range rows {
		if len(r.Result.Warnings) > 0 {
			p.WarningRows++
		}
		if !r.Result.IsValid {
			p.InvalidRows++
			for _, e := range r.Result.Errors {
				p.ErrorsByCode[e.Code]++
				if len(p.SampleErrors) < maxSampleErrors {
					p.SampleErrors = append(p.SampleErrors, domain.RowIssue{
						RowNumber: r.Result.RowNumber, Field: e.Field, Code: e.Code, Message: e.Message,
					})
				}
			}
			continue
		}
		p.ValidRows++
		p.TotalAmount += r.Amount
		sum := p.ByPaymentType[r.PaymentType]
		sum.Count++
		sum.Total += r.Amount
		sum.TotalFormatted = utils.FormatRupiah(sum.Total)
		p.ByPaymentType[r.PaymentType] = sum
	}
	p.TotalFormatted = utils.FormatRupiah(p.TotalAmount)
	return p
}
