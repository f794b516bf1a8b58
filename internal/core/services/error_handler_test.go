package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/SscSPs/coop_backoffice/internal/apperrors"
	"github.com/SscSPs/coop_backoffice/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestErrorHandler_Classify(t *testing.T) {
	h := NewErrorHandler(nil)
	tests := []struct {
		name string
		err  error
		want domain.ErrorClass
	}{
		{"validation", fmt.Errorf("%w: bad row", apperrors.ErrValidation), domain.ErrorClassValidation},
		{"parse", &apperrors.ParseError{Row: 3, Reason: "bad quote"}, domain.ErrorClassValidation},
		{"row validation", &RowValidationError{}, domain.ErrorClassValidation},
		{"insufficient balance", fmt.Errorf("x: %w", apperrors.ErrInsufficientBalance), domain.ErrorClassBalance},
		{"inconsistent balance", apperrors.ErrBalanceInconsistent, domain.ErrorClassBalance},
		{"unbalanced journal", apperrors.ErrJournalUnbalanced, domain.ErrorClassJournal},
		{"posting failed", &PostingError{TransactionID: "t1", Err: fmt.Errorf("%w: disk", apperrors.ErrPostingFailed)}, domain.ErrorClassJournal},
		{"store outage inside posting failure", fmt.Errorf("%w: %w", apperrors.ErrPostingFailed, apperrors.ErrStoreUnavailable), domain.ErrorClassSystem},
		{"component missing", apperrors.NewComponentUnavailableError("batch processor"), domain.ErrorClassSystem},
		{"unknown", errors.New("boom"), domain.ErrorClassSystem},
		{"nil", nil, domain.ErrorClassSystem},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, h.Classify(tt.err))
		})
	}
}

func TestErrorHandler_RollsBackJournalFailures(t *testing.T) {
	rb := new(mockRollbackSvc)
	rb.On("PerformRollback", mock.Anything, "t1", mock.MatchedBy(func(o domain.RollbackOptions) bool {
		return o.FinalStatus == domain.StatusGagal
	})).Return(&domain.RollbackResult{Success: true, TransactionID: "t1", JournalDeleted: true}, nil).Once()

	h := NewErrorHandler(rb)
	err := &PostingError{TransactionID: "t1", Err: fmt.Errorf("%w: disk", apperrors.ErrPostingFailed)}
	handled := h.HandleError(testCtx(), err, domain.ErrorContext{Operation: "manual.post", Mode: domain.ModeManual})

	assert.False(t, handled.Success)
	assert.Equal(t, domain.ErrorClassJournal, handled.Classification)
	if assert.NotNil(t, handled.Rollback) {
		assert.True(t, handled.Rollback.JournalDeleted)
	}
	rb.AssertExpectations(t)
}

func TestErrorHandler_NoRollbackForValidation(t *testing.T) {
	rb := new(mockRollbackSvc)
	h := NewErrorHandler(rb)

	handled := h.HandleError(testCtx(), apperrors.ErrValidation, domain.ErrorContext{Operation: "import.post", TransactionID: "t1"})
	assert.Equal(t, domain.ErrorClassValidation, handled.Classification)
	assert.Nil(t, handled.Rollback)
	rb.AssertNotCalled(t, "PerformRollback", mock.Anything, mock.Anything, mock.Anything)
}

func TestErrorHandler_ReportsFailedRollback(t *testing.T) {
	rb := new(mockRollbackSvc)
	rb.On("PerformRollback", mock.Anything, "t1", mock.Anything).Return(nil, apperrors.ErrStoreUnavailable)

	handled := NewErrorHandler(rb).HandleError(testCtx(), apperrors.ErrInsufficientBalance, domain.ErrorContext{TransactionID: "t1"})
	assert.Equal(t, domain.ErrorClassBalance, handled.Classification)
	if assert.NotNil(t, handled.Rollback) {
		assert.False(t, handled.Rollback.Success)
	}
}

func TestErrorHandler_NeverPanics(t *testing.T) {
	rb := new(mockRollbackSvc)
	rb.On("PerformRollback", mock.Anything, "t1", mock.Anything).Run(func(mock.Arguments) {
		panic("rollback exploded")
	})

	h := NewErrorHandler(rb)
	assert.NotPanics(t, func() {
		handled := h.HandleError(testCtx(), apperrors.ErrJournalUnbalanced, domain.ErrorContext{TransactionID: "t1"})
		assert.False(t, handled.Success)
		assert.Equal(t, domain.ErrorClassSystem, handled.Classification)
	})
}
