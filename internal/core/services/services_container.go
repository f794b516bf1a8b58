package services

import (
	"github.com/SscSPs/coop_backoffice/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/coop_backoffice/internal/core/ports/services"
	"github.com/SscSPs/coop_backoffice/internal/platform/config"
	"github.com/SscSPs/coop_backoffice/internal/utils"
)

// NewServiceContainer wires every service against one ledger repository. Both entry paths share
// the same validator, poster, rollback service and member locks.
func NewServiceContainer(cfg *config.Config, repo repositories.LedgerRepositoryFacade, parser portssvc.RowParser, posthog *utils.PosthogClientWrapper) *portssvc.ServiceContainer {
	factory := NewTransactionFactory(cfg.Account)
	locks := newMemberLocks()

	audit := NewAuditService(repo, WithEventSink(posthog))
	rollback := NewRollbackService(repo, factory, locks, WithRollbackAudit(audit))
	poster := NewPostingService(repo, factory, rollback,
		WithPostingAudit(audit),
		WithOverpayment(cfg.Import.AllowOverpayment))
	errorHandler := NewErrorHandler(rollback)
	consistency := NewConsistencyService(repo, factory,
		WithConsistencyAudit(audit),
		withConsistencyLocks(locks))
	validator := NewValidationService(repo, cfg.Import.HighValueThreshold)
	preview := NewPreviewService()
	batch := NewBatchProcessor(rollback, WithBatchStore(repo))

	batchOpts := portssvc.BatchOptions{
		ChunkSize:   cfg.Import.ChunkSize,
		Concurrency: cfg.Import.Concurrency,
		MaxAttempts: cfg.Import.MaxAttempts,
		RetryDelay:  cfg.Import.RetryDelay,
		ChunkDelay:  cfg.Import.ChunkDelay,
	}
	sessions := NewSessionRegistry(func(sessionID, userID string) portssvc.WorkflowSvc {
		return NewWorkflowService(
			WithSession(sessionID, userID),
			WithParser(parser),
			WithValidator(validator),
			WithPreview(preview),
			WithBatchProcessor(batch),
			WithBatchRecords(repo),
			WithPoster(poster),
			WithErrorHandler(errorHandler),
			WithConsistency(consistency, cfg.Import.PostBatchCheck),
			WithAudit(audit),
			WithBatchOptions(batchOpts),
		)
	}, cfg.Import.SessionTTL)

	return &portssvc.ServiceContainer{
		Validator:     validator,
		Preview:       preview,
		Poster:        poster,
		Rollback:      rollback,
		ErrorHandler:  errorHandler,
		Consistency:   consistency,
		Audit:         audit,
		Batch:         batch,
		ManualPayment: NewManualPaymentService(repo, validator, poster, rollback, errorHandler),
		Template:      NewTemplateService(),
		Sessions:      sessions,
		Members:       NewMemberService(repo, audit),
		BatchOptions:  batchOpts,
	}
}
