package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/SscSPs/coop_backoffice/internal/apperrors"
	"github.com/SscSPs/coop_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/coop_backoffice/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/coop_backoffice/internal/core/ports/services"
	"github.com/SscSPs/coop_backoffice/internal/middleware"
	"github.com/google/uuid"
)

// WorkflowService is the state machine for one import session. Collaborators are optional at
// construction; operations that need a missing one fail with ComponentUnavailableError.
type WorkflowService struct {
	BaseService
	sessionID string
	userID    string

	parser         portssvc.RowParser
	validator      portssvc.RowValidator
	preview        portssvc.PreviewGenerator
	processor      portssvc.BatchProcessorSvc
	batches        portsrepo.BatchRepository
	poster         portssvc.PaymentPoster
	errorHandler   portssvc.ErrorHandlerSvc
	consistency    portssvc.ConsistencySvc
	audit          portssvc.AuditSvc
	batchOpts      portssvc.BatchOptions
	postBatchCheck bool
	onProgress     func(domain.Progress)

	mu         sync.Mutex
	state      domain.WorkflowState
	generation uint64
	fileName   string
	rows       []domain.ImportRow
	validated  []domain.ValidatedRow
	lastView   *domain.Preview
	batch      *domain.Batch
	progress   *domain.Progress
	report     *domain.ImportReport
	lastErr    string
	processing bool
	cancel     context.CancelFunc
	cancelled  atomic.Bool
}

// WorkflowOption is a functional option for configuring the workflow
type WorkflowOption func(*WorkflowService)

// WithSession binds the workflow to an import session and the user who opened it.
func WithSession(sessionID, userID string) WorkflowOption {
	return func(s *WorkflowService) {
		s.sessionID = sessionID
		s.userID = userID
	}
}

// WithParser adds the row parser dependency.
func WithParser(parser portssvc.RowParser) WorkflowOption {
	return func(s *WorkflowService) {
		s.parser = parser
	}
}

// WithValidator adds the validation engine dependency.
func WithValidator(validator portssvc.RowValidator) WorkflowOption {
	return func(s *WorkflowService) {
		s.validator = validator
	}
}

// WithPreview adds the preview generator dependency.
func WithPreview(preview portssvc.PreviewGenerator) WorkflowOption {
	return func(s *WorkflowService) {
		s.preview = preview
	}
}

// WithBatchProcessor adds the batch processor dependency.
func WithBatchProcessor(processor portssvc.BatchProcessorSvc) WorkflowOption {
	return func(s *WorkflowService) {
		s.processor = processor
	}
}

// WithBatchRecords stores the final batch record when a cancel overrides the processor's outcome.
func WithBatchRecords(batches portsrepo.BatchRepository) WorkflowOption {
	return func(s *WorkflowService) {
		s.batches = batches
	}
}

// WithPoster adds the payment poster dependency.
func WithPoster(poster portssvc.PaymentPoster) WorkflowOption {
	return func(s *WorkflowService) {
		s.poster = poster
	}
}

// WithErrorHandler adds the error handler dependency.
func WithErrorHandler(handler portssvc.ErrorHandlerSvc) WorkflowOption {
	return func(s *WorkflowService) {
		s.errorHandler = handler
	}
}

// WithConsistency adds the consistency validator used for the post-batch check.
func WithConsistency(consistency portssvc.ConsistencySvc, postBatchCheck bool) WorkflowOption {
	return func(s *WorkflowService) {
		s.consistency = consistency
		s.postBatchCheck = postBatchCheck
	}
}

// WithAudit adds the audit service dependency.
func WithAudit(audit portssvc.AuditSvc) WorkflowOption {
	return func(s *WorkflowService) {
		s.audit = audit
	}
}

// WithBatchOptions sets chunking, concurrency and retry settings.
func WithBatchOptions(opts portssvc.BatchOptions) WorkflowOption {
	return func(s *WorkflowService) {
		s.batchOpts = opts
	}
}

// WithProgressCallback registers a callback invoked after each chunk.
func WithProgressCallback(fn func(domain.Progress)) WorkflowOption {
	return func(s *WorkflowService) {
		s.onProgress = fn
	}
}

// NewWorkflowService creates an idle workflow.
func NewWorkflowService(options ...WorkflowOption) *WorkflowService {
	svc := &WorkflowService{state: domain.StateIdle}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.WorkflowSvc = (*WorkflowService)(nil)

// scope adds the session and user to ctx for logging and audit records.
func (s *WorkflowService) scope(ctx context.Context) context.Context {
	if s.sessionID != "" && middleware.GetSessionIDFromCtx(ctx) == "" {
		ctx = middleware.WithSessionID(ctx, s.sessionID)
	}
	if _, ok := middleware.GetUserIDFromCtx(ctx); !ok && s.userID != "" {
		ctx = middleware.WithUserID(ctx, s.userID)
	}
	if s.sessionID != "" {
		ctx = middleware.WithLogger(ctx, middleware.GetLoggerFromCtx(ctx).With(slog.String("session_id", s.sessionID)))
	}
	return ctx
}

// transitionLocked moves to next and records it. The caller must hold s.mu.
func (s *WorkflowService) transitionLocked(ctx context.Context, next domain.WorkflowState, data map[string]any) error {
	if !s.state.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidTransition, s.state, next)
	}
	prev := s.state
	s.state = next
	if data == nil {
		data = map[string]any{}
	}
	data["from"] = prev
	data["to"] = next
	s.recordAudit(ctx, "workflow."+string(next), data)
	s.LogDebug(ctx, "Workflow transition", slog.String("from", string(prev)), slog.String("to", string(next)))
	return nil
}

func (s *WorkflowService) recordAudit(ctx context.Context, action string, data map[string]any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, action, data); err != nil {
		s.LogError(ctx, err, "Failed to write audit record", slog.String("action", action))
	}
}

// staleLocked reports whether a reset or cancel happened since gen was taken.
func (s *WorkflowService) staleLocked(gen uint64) bool {
	return s.generation != gen
}

var errWorkflowInterrupted = fmt.Errorf("%w: workflow was reset or cancelled", apperrors.ErrConflict)

// UploadFile parses the file. On a parse error the workflow stays in uploading so the caller can
// retry with a corrected file; on success it moves to validating.
func (s *WorkflowService) UploadFile(ctx context.Context, file domain.UploadedFile) ([]domain.ImportRow, error) {
	if s.parser == nil {
		return nil, apperrors.NewComponentUnavailableError("row parser")
	}
	ctx = s.scope(ctx)

	s.mu.Lock()
	if err := s.transitionLocked(ctx, domain.StateUploading, map[string]any{"fileName": file.Name}); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	gen := s.generation
	s.fileName = file.Name
	s.mu.Unlock()

	rows, err := s.parser.Parse(ctx, file)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.staleLocked(gen) {
		return nil, errWorkflowInterrupted
	}
	if err != nil {
		s.lastErr = err.Error()
		s.LogError(ctx, err, "Failed to parse uploaded file", slog.String("file", file.Name))
		return nil, err
	}
	s.rows = rows
	s.validated = nil
	s.lastView = nil
	s.lastErr = ""
	if err := s.transitionLocked(ctx, domain.StateValidating, map[string]any{"fileName": file.Name, "rows": len(rows)}); err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "File uploaded", slog.String("file", file.Name), slog.Int("rows", len(rows)))
	return rows, nil
}

// ValidateData validates rows, or the uploaded rows when rows is nil, and moves to previewing.
// A systemic failure moves the workflow to failed.
func (s *WorkflowService) ValidateData(ctx context.Context, rows []domain.ImportRow) ([]domain.ValidatedRow, error) {
	if s.validator == nil || s.preview == nil {
		return nil, apperrors.NewComponentUnavailableError(missing(map[string]bool{
			"validation engine": s.validator == nil,
			"preview generator": s.preview == nil,
		})...)
	}
	ctx = s.scope(ctx)

	s.mu.Lock()
	if s.state != domain.StateValidating {
		if err := s.transitionLocked(ctx, domain.StateValidating, nil); err != nil {
			s.mu.Unlock()
			return nil, err
		}
	}
	if rows == nil {
		rows = s.rows
	} else {
		s.rows = rows
	}
	gen := s.generation
	s.mu.Unlock()

	validated, err := s.validator.ValidateAll(ctx, rows)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.staleLocked(gen) {
		return nil, errWorkflowInterrupted
	}
	if err != nil {
		s.lastErr = err.Error()
		s.LogError(ctx, err, "Validation failed")
		if tErr := s.transitionLocked(ctx, domain.StateFailed, map[string]any{"error": err.Error()}); tErr != nil {
			return nil, errors.Join(err, tErr)
		}
		return nil, err
	}

	view := s.preview.GeneratePreview(validated)
	s.validated = validated
	s.lastView = &view
	s.lastErr = ""
	if err := s.transitionLocked(ctx, domain.StatePreviewing, map[string]any{
		"totalRows":   view.TotalRows,
		"validRows":   view.ValidRows,
		"invalidRows": view.InvalidRows,
	}); err != nil {
		return nil, err
	}
	return validated, nil
}

// GeneratePreview summarizes validated, or the last validated rows when nil. It does not change state.
func (s *WorkflowService) GeneratePreview(ctx context.Context, validated []domain.ValidatedRow) (*domain.Preview, error) {
	if s.preview == nil {
		return nil, apperrors.NewComponentUnavailableError("preview generator")
	}
	if validated == nil {
		s.mu.Lock()
		if s.lastView != nil {
			view := *s.lastView
			s.mu.Unlock()
			return &view, nil
		}
		validated = s.validated
		s.mu.Unlock()
	}
	view := s.preview.GeneratePreview(validated)
	return &view, nil
}

// ProcessBatch posts the valid rows through the batch processor and builds the final report.
// It blocks until the batch finishes; CancelProcessing may be called from another goroutine.
func (s *WorkflowService) ProcessBatch(ctx context.Context, rows []domain.ValidatedRow) (*domain.ImportReport, error) {
	run, err := s.StartBatch(ctx, rows)
	if err != nil {
		return nil, err
	}
	return run()
}

// StartBatch moves the workflow to processing and returns the function that runs the batch.
// The state change is visible to GetState once StartBatch returns, so a caller can run the
// batch in the background and answer immediately. The returned function must be called.
func (s *WorkflowService) StartBatch(ctx context.Context, rows []domain.ValidatedRow) (func() (*domain.ImportReport, error), error) {
	if s.processor == nil || s.poster == nil {
		return nil, apperrors.NewComponentUnavailableError(missing(map[string]bool{
			"batch processor": s.processor == nil,
			"payment poster":  s.poster == nil,
		})...)
	}
	ctx = s.scope(ctx)

	s.mu.Lock()
	if s.processing {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: a batch is already processing", apperrors.ErrConflict)
	}
	if rows == nil {
		rows = s.validated
	}
	if err := s.transitionLocked(ctx, domain.StateProcessing, map[string]any{"rows": len(rows)}); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	userID := actingUser(ctx, s.userID)
	batch := domain.Batch{
		ID:         uuid.NewString(),
		SessionID:  s.sessionID,
		Status:     domain.BatchPending,
		StartedAt:  s.Now(),
		AuditTrail: domain.NewAuditFields(userID, s.Now()),
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.cancelled.Store(false)
	s.processing = true
	s.batch = &batch
	s.progress = nil
	s.report = nil
	gen := s.generation
	s.mu.Unlock()

	return func() (*domain.ImportReport, error) {
		defer cancel()
		return s.runBatch(ctx, runCtx, batch, rows, gen)
	}, nil
}

func (s *WorkflowService) runBatch(ctx, runCtx context.Context, batch domain.Batch, rows []domain.ValidatedRow, gen uint64) (*domain.ImportReport, error) {
	valid := make([]domain.ValidatedRow, 0, len(rows))
	for _, r := range rows {
		if r.Result.IsValid {
			valid = append(valid, r)
		}
	}

	opts := s.batchOpts
	opts.OnProgress = func(p domain.Progress) {
		s.mu.Lock()
		if !s.staleLocked(gen) {
			s.progress = &p
			if s.batch != nil {
				s.batch.ProcessedCount = p.ProcessedCount
			}
		}
		s.mu.Unlock()
		if s.onProgress != nil {
			s.onProgress(p)
		}
	}

	outcome, runErr := s.processor.Process(runCtx, batch, valid, s.applyFunc(batch.ID), opts)

	s.mu.Lock()
	if s.staleLocked(gen) {
		s.mu.Unlock()
		return nil, errWorkflowInterrupted
	}
	s.processing = false
	s.cancel = nil
	if outcome != nil {
		b := outcome.Batch
		s.batch = &b
	}
	wasCancelled := s.cancelled.Load()
	switch {
	case wasCancelled:
		// the processor may have finished its last chunk before noticing the cancel
		if s.batch.Status != domain.BatchCancelled {
			s.batch.Status = domain.BatchCancelled
			s.saveBatchLocked(ctx)
		}
	case runErr != nil:
		s.lastErr = runErr.Error()
		if err := s.transitionLocked(ctx, domain.StateFailed, map[string]any{"batchId": batch.ID, "error": runErr.Error()}); err != nil {
			s.LogError(ctx, err, "Failed to mark workflow failed")
		}
	default:
		if err := s.transitionLocked(ctx, domain.StateCompleted, map[string]any{"batchId": batch.ID}); err != nil {
			s.LogError(ctx, err, "Failed to mark workflow completed")
		}
	}
	completed := s.state == domain.StateCompleted
	var results []domain.RowResult
	if outcome != nil {
		results = outcome.Results
	}
	report := buildReport(batch.ID, rows, results, completed)
	s.report = &report
	s.mu.Unlock()

	if completed && s.postBatchCheck && s.consistency != nil {
		check, err := s.consistency.ValidateAll(ctx)
		if err != nil {
			s.LogError(ctx, err, "Post-batch consistency check failed")
		} else {
			s.mu.Lock()
			report.Consistency = &domain.ConsistencySummary{Valid: check.Valid, IssueCount: len(check.Errors)}
			if !s.staleLocked(gen) {
				s.report = &report
			}
			s.mu.Unlock()
			if !check.Valid {
				s.GetLogger(ctx).Warn("Ledger inconsistent after batch", slog.Int("issues", len(check.Errors)))
			}
		}
	}

	s.LogInfo(ctx, "Batch processed",
		slog.String("batch_id", batch.ID),
		slog.Int("posted", report.PostedRows),
		slog.Int("failed", report.FailedRows),
		slog.Int("not_processed", report.NotProcessedRows))
	if runErr != nil && !wasCancelled {
		return &report, runErr
	}
	return &report, nil
}

func (s *WorkflowService) saveBatchLocked(ctx context.Context) {
	if s.batches == nil || s.batch == nil {
		return
	}
	if err := s.batches.SaveBatch(context.WithoutCancel(ctx), *s.batch); err != nil {
		s.LogError(ctx, err, "Failed to persist batch state", slog.String("batch_id", s.batch.ID))
	}
}

// applyFunc posts one imported row. Row-level failures go through the error handler and are
// reported in the result; systemic failures are returned so the chunk is retried.
func (s *WorkflowService) applyFunc(batchID string) portssvc.ApplyFunc {
	return func(ctx context.Context, row domain.ValidatedRow) (domain.RowResult, error) {
		res, err := s.poster.PostPayment(ctx, portssvc.PostingRequest{
			MemberID:    row.MemberID,
			PaymentType: row.PaymentType,
			Amount:      row.Amount,
			Description: row.Row.Get(domain.ColKeterangan),
			Mode:        domain.ModeImport,
			BatchID:     &batchID,
			RowNumber:   row.Row.RowNumber,
		})
		if err == nil {
			return domain.RowResult{
				Outcome:       domain.RowPosted,
				TransactionID: res.Transaction.ID,
				JournalID:     res.Journal.ID,
			}, nil
		}

		result := domain.RowResult{Outcome: domain.RowFailed, Error: err.Error()}
		var pe *PostingError
		if errors.As(err, &pe) {
			result.TransactionID = pe.TransactionID
		}
		if apperrors.IsSystemic(err) {
			return result, err
		}
		if s.errorHandler != nil {
			handled := s.errorHandler.HandleError(ctx, err, domain.ErrorContext{
				Operation:     "import.post",
				TransactionID: result.TransactionID,
				Mode:          domain.ModeImport,
				BatchID:       batchID,
				RowNumber:     row.Row.RowNumber,
			})
			result.ErrorClass = string(handled.Classification)
		}
		return result, nil
	}
}

func buildReport(batchID string, rows []domain.ValidatedRow, results []domain.RowResult, completed bool) domain.ImportReport {
	report := domain.ImportReport{
		BatchID:   batchID,
		TotalRows: len(rows),
		Errors:    []domain.RowIssue{},
		Warnings:  []domain.RowIssue{},
	}
	for _, r := range rows {
		if r.Result.IsValid {
			report.ValidRows++
		}
		for _, e := range r.Result.Errors {
			report.Errors = append(report.Errors, domain.RowIssue{RowNumber: r.Row.RowNumber, Field: e.Field, Code: e.Code, Message: e.Message})
		}
		for _, w := range r.Result.Warnings {
			report.Warnings = append(report.Warnings, domain.RowIssue{RowNumber: r.Row.RowNumber, Field: w.Field, Code: w.Code, Message: w.Message})
		}
	}
	for _, res := range results {
		switch res.Outcome {
		case domain.RowPosted:
			report.PostedRows++
		case domain.RowFailed:
			report.FailedRows++
			report.Errors = append(report.Errors, domain.RowIssue{RowNumber: res.RowNumber, Code: domain.IssuePostingFailed, Message: res.Error})
		case domain.RowRolledBack:
			report.FailedRows++
			report.Errors = append(report.Errors, domain.RowIssue{RowNumber: res.RowNumber, Code: domain.IssueRolledBack, Message: "posted row was rolled back after its chunk failed"})
		case domain.RowNotProcessed:
			report.NotProcessedRows++
		}
	}
	report.Success = completed && report.FailedRows == 0 && report.NotProcessedRows == 0
	return report
}

// CancelProcessing cancels the in-flight operation. Running chunks finish; no new chunk starts.
func (s *WorkflowService) CancelProcessing(ctx context.Context) domain.CancelResult {
	ctx = s.scope(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.Transient() {
		return domain.CancelResult{Success: false, Message: "No processing in progress"}
	}
	s.cancelled.Store(true)
	if s.cancel != nil {
		s.cancel()
	}
	data := map[string]any{}
	if s.batch != nil {
		if !s.batch.Terminal() {
			s.batch.Status = domain.BatchCancelled
		}
		data["batchId"] = s.batch.ID
	}
	if s.state != domain.StateProcessing {
		// nothing is left to finish, so later results of the interrupted step are discarded
		s.generation++
	}
	if err := s.transitionLocked(ctx, domain.StateCancelled, data); err != nil {
		return domain.CancelResult{Success: false, Message: err.Error()}
	}
	s.LogInfo(ctx, "Import cancelled")
	return domain.CancelResult{Success: true, Message: "Processing cancelled"}
}

// Reset returns the workflow to idle from any state and clears all session data.
func (s *WorkflowService) Reset(ctx context.Context) {
	ctx = s.scope(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	s.cancel = nil
	s.processing = false
	s.cancelled.Store(false)
	s.fileName = ""
	s.rows = nil
	s.validated = nil
	s.lastView = nil
	s.batch = nil
	s.progress = nil
	s.report = nil
	s.lastErr = ""
	if err := s.transitionLocked(ctx, domain.StateIdle, nil); err != nil {
		s.LogError(ctx, err, "Failed to reset workflow")
	}
}

// GetState returns a snapshot of the workflow. It has no side effects.
func (s *WorkflowService) GetState() domain.WorkflowSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := domain.WorkflowSnapshot{
		SessionID:    s.sessionID,
		State:        s.state,
		FileName:     s.fileName,
		TotalRows:    len(s.rows),
		IsProcessing: s.processing,
		IsCancelled:  s.cancelled.Load() || s.state == domain.StateCancelled,
		LastError:    s.lastErr,
	}
	if s.lastView != nil {
		snap.TotalRows = s.lastView.TotalRows
		snap.ValidRows = s.lastView.ValidRows
		snap.InvalidRows = s.lastView.InvalidRows
	}
	if s.batch != nil {
		b := *s.batch
		b.Chunks = append([]domain.Chunk(nil), s.batch.Chunks...)
		snap.CurrentBatch = &b
	}
	if s.progress != nil {
		p := *s.progress
		snap.Progress = &p
	}
	if s.report != nil {
		r := *s.report
		snap.Report = &r
	}
	return snap
}
