package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates the resource is in a state that does not allow the operation.
var ErrConflict = errors.New("conflict")

// ErrInternal indicates an unexpected failure inside the application.
var ErrInternal = errors.New("internal error")

// ErrInsufficientBalance is returned when a payment exceeds the member's outstanding balance.
var ErrInsufficientBalance = errors.New("insufficient outstanding balance")

// ErrBalanceInconsistent is returned when a stored balance does not match its history.
var ErrBalanceInconsistent = errors.New("balance inconsistent with transaction history")

// ErrJournalUnbalanced is returned when the debit and credit totals of a journal differ.
var ErrJournalUnbalanced = errors.New("journal entry is unbalanced")

// ErrPostingFailed wraps failures while writing a journal entry for a transaction.
var ErrPostingFailed = errors.New("journal posting failed")

// ErrStoreUnavailable marks a systemic storage failure. Batch chunks that hit it are retried.
var ErrStoreUnavailable = errors.New("ledger store unavailable")

// ErrInvalidTransition is returned when the import workflow is asked to move to a state it cannot reach.
var ErrInvalidTransition = errors.New("invalid workflow transition")

// AppError carries an application error code (usually an HTTP status) with the underlying cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// ParseError is returned by row parsers when the uploaded file cannot be read.
// Row is 0 when the failure is not tied to a specific row.
type ParseError struct {
	Row    int
	Reason string
}

func (e *ParseError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("parse error at row %d: %s", e.Row, e.Reason)
	}
	return "parse error: " + e.Reason
}

// ComponentUnavailableError is returned when an operation needs a collaborator that was not wired.
type ComponentUnavailableError struct {
	Components []string
}

// NewComponentUnavailableError creates a ComponentUnavailableError naming the missing components.
func NewComponentUnavailableError(components ...string) *ComponentUnavailableError {
	return &ComponentUnavailableError{Components: components}
}

func (e *ComponentUnavailableError) Error() string {
	return "component unavailable: " + strings.Join(e.Components, ", ")
}

// IsSystemic reports whether err is a systemic failure (as opposed to a row-level data problem).
func IsSystemic(err error) bool {
	if err == nil {
		return false
	}
	var cu *ComponentUnavailableError
	if errors.As(err, &cu) {
		return true
	}
	return errors.Is(err, ErrStoreUnavailable) || errors.Is(err, ErrInternal)
}
