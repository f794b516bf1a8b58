package services

import (
	"context"
	"time"

	"github.com/SscSPs/coop_backoffice/internal/core/domain"
)

// RowParser turns an uploaded spreadsheet into raw rows.
// Implementations return *apperrors.ParseError for unreadable files.
type RowParser interface {
	Parse(ctx context.Context, file domain.UploadedFile) ([]domain.ImportRow, error)
}

// RowValidator validates import rows. Results depend only on the row and the member registry.
// The error return is reserved for systemic failures such as an unreachable store.
type RowValidator interface {
	Validate(ctx context.Context, row domain.ImportRow) (domain.ValidatedRow, error)
	ValidateAll(ctx context.Context, rows []domain.ImportRow) ([]domain.ValidatedRow, error)
}

// PreviewGenerator summarizes validated rows.
type PreviewGenerator interface {
	GeneratePreview(rows []domain.ValidatedRow) domain.Preview
}

// ApplyFunc posts one validated row. A returned error that is systemic fails the whole chunk.
type ApplyFunc func(ctx context.Context, row domain.ValidatedRow) (domain.RowResult, error)

// BatchOptions configures a batch run.
type BatchOptions struct {
	ChunkSize   int
	Concurrency int
	MaxAttempts int
	RetryDelay  time.Duration
	ChunkDelay  time.Duration
	OnProgress  func(domain.Progress)
}

// BatchOutcome is the combined result of a batch run, with row results in input order.
type BatchOutcome struct {
	Batch   domain.Batch
	Results []domain.RowResult
}

// BatchProcessorSvc runs rows through an ApplyFunc in chunks.
type BatchProcessorSvc interface {
	Process(ctx context.Context, batch domain.Batch, rows []domain.ValidatedRow, apply ApplyFunc, opts BatchOptions) (*BatchOutcome, error)
}

// WorkflowSvc drives a single import session.
type WorkflowSvc interface {
	UploadFile(ctx context.Context, file domain.UploadedFile) ([]domain.ImportRow, error)
	ValidateData(ctx context.Context, rows []domain.ImportRow) ([]domain.ValidatedRow, error)
	GeneratePreview(ctx context.Context, validated []domain.ValidatedRow) (*domain.Preview, error)
	// ProcessBatch posts the valid rows. A nil slice processes the rows from the last ValidateData call.
	ProcessBatch(ctx context.Context, rows []domain.ValidatedRow) (*domain.ImportReport, error)
	// StartBatch enters processing before it returns; the returned function runs the batch.
	StartBatch(ctx context.Context, rows []domain.ValidatedRow) (func() (*domain.ImportReport, error), error)
	CancelProcessing(ctx context.Context) domain.CancelResult
	Reset(ctx context.Context)
	GetState() domain.WorkflowSnapshot
}

// ImportSession is a workflow bound to a session id.
type ImportSession struct {
	ID        string
	CreatedBy string
	CreatedAt time.Time
	Workflow  WorkflowSvc
}

// SessionRegistrySvc tracks in-flight import sessions.
type SessionRegistrySvc interface {
	Create(ctx context.Context, userID string) (*ImportSession, error)
	Get(id string) (*ImportSession, bool)
	Remove(id string)
}

// TemplateSvc produces downloadable import templates.
type TemplateSvc interface {
	GenerateTemplate() (domain.TemplateFile, error)
	GenerateXLSXTemplate() (domain.TemplateFile, error)
}
