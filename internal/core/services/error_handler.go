package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/coop_backoffice/internal/apperrors"
	"github.com/SscSPs/coop_backoffice/internal/core/domain"
	portssvc "github.com/SscSPs/coop_backoffice/internal/core/ports/services"
)

type errorHandler struct {
	BaseService
	rollback portssvc.RollbackSvc
}

// NewErrorHandler creates the error handler shared by the manual and import paths.
// rollback may be nil, in which case errors are classified but nothing is undone.
func NewErrorHandler(rollback portssvc.RollbackSvc) portssvc.ErrorHandlerSvc {
	return &errorHandler{rollback: rollback}
}

// Classify assigns err to one of the error classes. Systemic causes win over the wrapping
// posting error so a store outage is never reported as a bad row.
func (h *errorHandler) Classify(err error) domain.ErrorClass {
	var parseErr *apperrors.ParseError
	switch {
	case err == nil:
		return domain.ErrorClassSystem
	case apperrors.IsSystemic(err):
		return domain.ErrorClassSystem
	case errors.Is(err, apperrors.ErrValidation), errors.As(err, &parseErr):
		return domain.ErrorClassValidation
	case errors.Is(err, apperrors.ErrInsufficientBalance), errors.Is(err, apperrors.ErrBalanceInconsistent):
		return domain.ErrorClassBalance
	case errors.Is(err, apperrors.ErrJournalUnbalanced), errors.Is(err, apperrors.ErrPostingFailed):
		return domain.ErrorClassJournal
	}
	return domain.ErrorClassSystem
}

// HandleError never panics. For journal and balance failures of a known transaction it
// drives the rollback and reports its outcome.
func (h *errorHandler) HandleError(ctx context.Context, err error, ectx domain.ErrorContext) (handled domain.HandledError) {
	defer func() {
		if r := recover(); r != nil {
			h.GetLogger(ctx).Error("Recovered panic while handling error", slog.Any("panic", r), slog.String("operation", ectx.Operation))
			handled = domain.HandledError{
				Success:        false,
				Message:        "unexpected failure while handling error",
				Classification: domain.ErrorClassSystem,
			}
		}
	}()

	class := h.Classify(err)
	message := "unknown error"
	if err != nil {
		message = err.Error()
	}
	handled = domain.HandledError{Success: false, Message: message, Classification: class}

	if ectx.TransactionID == "" {
		var pe *PostingError
		if errors.As(err, &pe) {
			ectx.TransactionID = pe.TransactionID
		}
	}

	logger := h.GetLogger(ctx).With(
		slog.String("operation", ectx.Operation),
		slog.String("classification", string(class)),
		slog.String("mode", string(ectx.Mode)),
	)
	if ectx.RowNumber > 0 {
		logger = logger.With(slog.Int("row", ectx.RowNumber))
	}
	if class == domain.ErrorClassSystem {
		logger.Error("Operation failed", slog.String("error", message))
	} else {
		logger.Warn("Operation failed", slog.String("error", message))
	}

	if ectx.TransactionID == "" || h.rollback == nil {
		return handled
	}
	if class != domain.ErrorClassJournal && class != domain.ErrorClassBalance {
		return handled
	}

	result, rbErr := h.rollback.PerformRollback(ctx, ectx.TransactionID, domain.RollbackOptions{
		Reason:      fmt.Sprintf("%s: %s", ectx.Operation, message),
		FinalStatus: domain.StatusGagal,
	})
	if rbErr != nil {
		logger.Error("Rollback failed", slog.String("transaction_id", ectx.TransactionID), slog.String("error", rbErr.Error()))
		handled.Rollback = &domain.RollbackResult{Success: false, Message: rbErr.Error(), TransactionID: ectx.TransactionID}
		return handled
	}
	handled.Rollback = result
	return handled
}
