package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/coop_backoffice/internal/apperrors"
	"github.com/SscSPs/coop_backoffice/internal/core/services"
	"github.com/gin-gonic/gin"
)

// respondError maps a service error onto an HTTP status and writes it.
// Systemic failures are logged at error level and hidden behind fallback.
func respondError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	var (
		rowErr   *services.RowValidationError
		parseErr *apperrors.ParseError
		appErr   *apperrors.AppError
		unavail  *apperrors.ComponentUnavailableError
	)
	switch {
	case errors.As(err, &rowErr):
		logger.Warn("Row failed validation", slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "issues": rowErr.Result.Errors, "warnings": rowErr.Result.Warnings})
	case errors.As(err, &parseErr):
		logger.Warn("Uploaded file could not be parsed", slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": parseErr.Error(), "row": parseErr.Row})
	case errors.As(err, &appErr):
		logger.Warn("Request failed", slog.Int("code", appErr.Code), slog.String("error", err.Error()))
		c.JSON(appErr.Code, gin.H{"error": appErr.Message})
	case errors.As(err, &unavail):
		logger.Error("Required component not wired", slog.String("error", err.Error()))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrInsufficientBalance), errors.Is(err, apperrors.ErrBalanceInconsistent):
		logger.Warn("Balance check failed", slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Resource not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrInvalidTransition), errors.Is(err, apperrors.ErrDuplicate):
		logger.Warn("Conflicting request", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrStoreUnavailable):
		logger.Error("Ledger store unavailable", slog.String("error", err.Error()))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": fallback})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
