package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/coop_backoffice/internal/apperrors"
	"github.com/SscSPs/coop_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/coop_backoffice/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/coop_backoffice/internal/core/ports/services"
	"github.com/SscSPs/coop_backoffice/internal/dto"
	"github.com/SscSPs/coop_backoffice/internal/utils/pagination"
)

const defaultPaymentPageSize = 20

// RowValidationError is returned when a row fails validation. It matches apperrors.ErrValidation.
type RowValidationError struct {
	Result domain.ValidationResult
}

func (e *RowValidationError) Error() string {
	msgs := make([]string, 0, len(e.Result.Errors))
	for _, issue := range e.Result.Errors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", issue.Code, issue.Message))
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *RowValidationError) Unwrap() error {
	return apperrors.ErrValidation
}

type manualPaymentService struct {
	BaseService
	txns         portsrepo.TransactionReader
	validator    portssvc.RowValidator
	poster       portssvc.PaymentPoster
	rollback     portssvc.RollbackSvc
	errorHandler portssvc.ErrorHandlerSvc
}

// NewManualPaymentService creates the cashier entry path. It shares validation, posting and
// rollback with the import path.
func NewManualPaymentService(
	txns portsrepo.TransactionReader,
	validator portssvc.RowValidator,
	poster portssvc.PaymentPoster,
	rollback portssvc.RollbackSvc,
	errorHandler portssvc.ErrorHandlerSvc,
) portssvc.ManualPaymentSvc {
	return &manualPaymentService{
		txns:         txns,
		validator:    validator,
		poster:       poster,
		rollback:     rollback,
		errorHandler: errorHandler,
	}
}

func (s *manualPaymentService) RecordPayment(ctx context.Context, req dto.ManualPaymentRequest, userID string) (*domain.Transaction, error) {
	if s.validator == nil || s.poster == nil {
		return nil, apperrors.NewComponentUnavailableError(missing(map[string]bool{
			"validation engine": s.validator == nil,
			"payment poster":    s.poster == nil,
		})...)
	}

	validated, err := s.validator.Validate(ctx, req.ToImportRow())
	if err != nil {
		return nil, err
	}
	if !validated.Result.IsValid {
		return nil, &RowValidationError{Result: validated.Result}
	}

	res, err := s.poster.PostPayment(ctx, portssvc.PostingRequest{
		MemberID:    validated.MemberID,
		PaymentType: validated.PaymentType,
		Amount:      validated.Amount,
		Description: req.Description,
		Mode:        domain.ModeManual,
		UserID:      userID,
	})
	if err != nil {
		if s.errorHandler != nil {
			s.errorHandler.HandleError(ctx, err, domain.ErrorContext{Operation: "manual.post", Mode: domain.ModeManual})
		}
		return nil, err
	}
	s.LogInfo(ctx, "Manual payment recorded",
		slog.String("transaction_id", res.Transaction.ID),
		slog.String("member_id", res.Transaction.MemberID))
	return &res.Transaction, nil
}

func (s *manualPaymentService) CancelPayment(ctx context.Context, transactionID string, reason string, userID string) (*domain.RollbackResult, error) {
	if s.txns == nil || s.rollback == nil {
		return nil, apperrors.NewComponentUnavailableError(missing(map[string]bool{
			"transaction repository": s.txns == nil,
			"rollback service":       s.rollback == nil,
		})...)
	}
	txn, err := s.txns.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.Status != domain.StatusSelesai {
		return nil, fmt.Errorf("%w: transaction %s is %s, only posted payments can be cancelled", apperrors.ErrConflict, txn.ID, txn.Status)
	}

	result, err := s.rollback.PerformRollback(ctx, transactionID, domain.RollbackOptions{
		Reason:      reason,
		FinalStatus: domain.StatusDibatalkan,
		UserID:      userID,
	})
	if err != nil {
		return nil, err
	}
	if !result.Success {
		return result, fmt.Errorf("%w: %s", apperrors.ErrConflict, result.Message)
	}
	return result, nil
}

func (s *manualPaymentService) ListPayments(ctx context.Context, params dto.ListPaymentsParams) (*dto.ListPaymentsResponse, error) {
	if s.txns == nil {
		return nil, apperrors.NewComponentUnavailableError("transaction repository")
	}
	limit := params.Limit
	if limit <= 0 {
		limit = defaultPaymentPageSize
	}

	txns, err := s.txns.ListTransactions(ctx, portsrepo.TransactionFilter{
		MemberID: params.MemberID,
		Mode:     domain.TransactionMode(params.Mode),
		Status:   domain.TransactionStatus(params.Status),
	})
	if err != nil {
		return nil, err
	}

	if params.NextToken != nil && *params.NextToken != "" {
		cursorAt, cursorID, err := pagination.DecodeToken(*params.NextToken)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
		}
		start := len(txns)
		for i, t := range txns {
			if pagination.After(t.CreatedAt(), t.ID, cursorAt, cursorID) {
				start = i
				break
			}
		}
		txns = txns[start:]
	}

	var next *string
	if len(txns) > limit {
		txns = txns[:limit]
		last := txns[limit-1]
		token := pagination.EncodeToken(last.CreatedAt(), last.ID)
		next = &token
	}
	return &dto.ListPaymentsResponse{Payments: dto.ToPaymentResponses(txns), NextToken: next}, nil
}

