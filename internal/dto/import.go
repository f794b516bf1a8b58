package dto

import "github.com/SscSPs/coop_backoffice/internal/core/domain"

// CreateSessionResponse is returned when a new import session is opened.
type CreateSessionResponse struct {
	SessionID string               `json:"sessionId"`
	State     domain.WorkflowState `json:"state"`
}

// UploadResponse is returned after a file is parsed.
type UploadResponse struct {
	FileName  string `json:"fileName"`
	TotalRows int    `json:"totalRows"`
}

// ValidateResponse lists per-row validation results.
type ValidateResponse struct {
	TotalRows   int                       `json:"totalRows"`
	ValidRows   int                       `json:"validRows"`
	InvalidRows int                       `json:"invalidRows"`
	Results     []domain.ValidationResult `json:"results"`
}

// NewValidateResponse builds a ValidateResponse from validated rows.
func NewValidateResponse(rows []domain.ValidatedRow) ValidateResponse {
	resp := ValidateResponse{TotalRows: len(rows), Results: make([]domain.ValidationResult, len(rows))}
	for i, r := range rows {
		resp.Results[i] = r.Result
		if r.Result.IsValid {
			resp.ValidRows++
		} else {
			resp.InvalidRows++
		}
	}
	return resp
}

// ProcessAcceptedResponse is returned when background processing starts.
type ProcessAcceptedResponse struct {
	SessionID string               `json:"sessionId"`
	State     domain.WorkflowState `json:"state"`
}
