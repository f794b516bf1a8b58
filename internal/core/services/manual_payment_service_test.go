package services

import (
	"testing"
	"time"

	"github.com/SscSPs/coop_backoffice/internal/apperrors"
	"github.com/SscSPs/coop_backoffice/internal/core/domain"
	portssvc "github.com/SscSPs/coop_backoffice/internal/core/ports/services"
	"github.com/SscSPs/coop_backoffice/internal/dto"
	"github.com/stretchr/testify/suite"
)

type ManualPaymentServiceTestSuite struct {
	suite.Suite
	f   *ledgerFixture
	svc portssvc.ManualPaymentSvc
}

func (s *ManualPaymentServiceTestSuite) SetupTest() {
	s.f = newLedgerFixture(s.T())
	s.f.seedMember(s.T(), "m1", "A-001", "Budi Santoso", 1_000_000, 300_000)
	s.svc = NewManualPaymentService(
		s.f.repo,
		NewValidationService(s.f.repo, 10_000_000),
		s.f.poster,
		s.f.rollback,
		NewErrorHandler(s.f.rollback),
	)
}

func TestManualPaymentServiceSuite(t *testing.T) {
	suite.Run(t, new(ManualPaymentServiceTestSuite))
}

func paymentRequest(paymentType, amount string) dto.ManualPaymentRequest {
	return dto.ManualPaymentRequest{
		MemberNumber: "A-001",
		MemberName:   "Budi Santoso",
		PaymentType:  paymentType,
		Amount:       amount,
		Description:  "setoran kasir",
	}
}

func (s *ManualPaymentServiceTestSuite) TestRecordPayment() {
	txn, err := s.svc.RecordPayment(testCtx(), paymentRequest("hutang", "100.000"), "kasir-1")
	s.Require().NoError(err)
	s.Equal(domain.ModeManual, txn.Mode)
	s.Nil(txn.BatchID)
	s.Equal(domain.StatusSelesai, txn.Status)
	s.Equal(int64(100_000), txn.Amount)
	s.Equal("setoran kasir", txn.Description)
	s.Equal(int64(900_000), s.f.member(s.T(), "m1").SaldoHutang)
	s.f.requireConsistent(s.T())
}

func (s *ManualPaymentServiceTestSuite) TestRecordPaymentRejectsInvalidRow() {
	_, err := s.svc.RecordPayment(testCtx(), paymentRequest("hutang", "-100"), "kasir-1")
	s.Require().ErrorIs(err, apperrors.ErrValidation)
	var ve *RowValidationError
	s.Require().ErrorAs(err, &ve)
	s.Len(ve.Result.Errors, 1)
	s.Equal(domain.CodeNegativeValueNotAllowed, ve.Result.Errors[0].Code)
	s.Empty(s.f.transactions(s.T()))
}

func (s *ManualPaymentServiceTestSuite) TestRecordPaymentBalanceFailureIsCleanedUp() {
	_, err := s.svc.RecordPayment(testCtx(), paymentRequest("piutang", "500000"), "kasir-1")
	s.Require().ErrorIs(err, apperrors.ErrInsufficientBalance)

	txns := s.f.transactions(s.T())
	s.Require().Len(txns, 1)
	s.Equal(domain.StatusGagal, txns[0].Status)
	s.Empty(s.f.journals(s.T()))
	s.Equal(int64(300_000), s.f.member(s.T(), "m1").SaldoPiutang)
	s.f.requireConsistent(s.T())
}

func (s *ManualPaymentServiceTestSuite) TestCancelPayment() {
	txn, err := s.svc.RecordPayment(testCtx(), paymentRequest("piutang", "50000"), "kasir-1")
	s.Require().NoError(err)

	res, err := s.svc.CancelPayment(testCtx(), txn.ID, "salah anggota", "supervisor")
	s.Require().NoError(err)
	s.True(res.Success)
	s.Equal(int64(300_000), s.f.member(s.T(), "m1").SaldoPiutang)

	_, err = s.svc.CancelPayment(testCtx(), txn.ID, "lagi", "supervisor")
	s.ErrorIs(err, apperrors.ErrConflict)

	_, err = s.svc.CancelPayment(testCtx(), "missing", "x", "supervisor")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *ManualPaymentServiceTestSuite) TestListPaymentsPaginates() {
	base := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	for i, id := range []string{"t1", "t2", "t3"} {
		s.Require().NoError(s.f.repo.SaveTransaction(testCtx(), domain.Transaction{
			ID:          id,
			MemberID:    "m1",
			PaymentType: domain.Hutang,
			Amount:      1000,
			Mode:        domain.ModeManual,
			Status:      domain.StatusSelesai,
			AuditTrail:  domain.AuditFields{CreatedAt: base.Add(time.Duration(i) * time.Minute)},
		}))
	}

	page, err := s.svc.ListPayments(testCtx(), dto.ListPaymentsParams{Limit: 2})
	s.Require().NoError(err)
	s.Require().Len(page.Payments, 2)
	s.Equal("t1", page.Payments[0].ID)
	s.Require().NotNil(page.NextToken)

	next, err := s.svc.ListPayments(testCtx(), dto.ListPaymentsParams{Limit: 2, NextToken: page.NextToken})
	s.Require().NoError(err)
	s.Require().Len(next.Payments, 1)
	s.Equal("t3", next.Payments[0].ID)
	s.Nil(next.NextToken)

	bad := "not-a-token"
	_, err = s.svc.ListPayments(testCtx(), dto.ListPaymentsParams{NextToken: &bad})
	s.ErrorIs(err, apperrors.ErrValidation)
}
