package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/coop_backoffice/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct {
	now func() time.Time
}

// Now returns the current time in UTC, or the injected clock's time.
func (s *BaseService) Now() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now().UTC()
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// actingUser returns the user id on ctx, falling back to fallback and then "system".
func actingUser(ctx context.Context, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if userID, ok := middleware.GetUserIDFromCtx(ctx); ok {
		return userID
	}
	return "system"
}
