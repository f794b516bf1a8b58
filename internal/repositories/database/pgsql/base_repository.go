package pgsql

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/SscSPs/coop_backoffice/internal/apperrors"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// wrapError converts a pgx error into an AppError. Anything that is not a permanent
// SQL error is marked as ErrStoreUnavailable.
func (r *BaseRepository) wrapError(msg string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && !isTransientSQLState(pgErr.Code) {
		return apperrors.NewAppError(http.StatusInternalServerError, msg, err)
	}
	return apperrors.NewAppError(http.StatusServiceUnavailable, msg, fmt.Errorf("%w: %w", apperrors.ErrStoreUnavailable, err))
}

// isTransientSQLState reports SQLSTATE classes worth retrying: connection exceptions (08),
// insufficient resources (53), operator intervention (57) and serialization failures (40001).
func isTransientSQLState(code string) bool {
	if len(code) < 2 {
		return false
	}
	switch code[:2] {
	case "08", "53", "57":
		return true
	}
	return code == "40001" || code == "40P01"
}
