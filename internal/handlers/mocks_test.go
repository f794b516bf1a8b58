package handlers_test

import (
	"context"

	"github.com/SscSPs/coop_backoffice/internal/core/domain"
	portssvc "github.com/SscSPs/coop_backoffice/internal/core/ports/services"
	"github.com/SscSPs/coop_backoffice/internal/dto"
	"github.com/stretchr/testify/mock"
)

// --- Mock SessionRegistry ---
type MockSessionRegistry struct {
	mock.Mock
}

func (m *MockSessionRegistry) Create(ctx context.Context, userID string) (*portssvc.ImportSession, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portssvc.ImportSession), args.Error(1)
}

func (m *MockSessionRegistry) Get(id string) (*portssvc.ImportSession, bool) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*portssvc.ImportSession), args.Bool(1)
}

func (m *MockSessionRegistry) Remove(id string) {
	m.Called(id)
}

var _ portssvc.SessionRegistrySvc = (*MockSessionRegistry)(nil)

// --- Mock Workflow ---
type MockWorkflow struct {
	mock.Mock
}

func (m *MockWorkflow) UploadFile(ctx context.Context, file domain.UploadedFile) ([]domain.ImportRow, error) {
	args := m.Called(ctx, file)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ImportRow), args.Error(1)
}

func (m *MockWorkflow) ValidateData(ctx context.Context, rows []domain.ImportRow) ([]domain.ValidatedRow, error) {
	args := m.Called(ctx, rows)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ValidatedRow), args.Error(1)
}

func (m *MockWorkflow) GeneratePreview(ctx context.Context, validated []domain.ValidatedRow) (*domain.Preview, error) {
	args := m.Called(ctx, validated)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Preview), args.Error(1)
}

func (m *MockWorkflow) ProcessBatch(ctx context.Context, rows []domain.ValidatedRow) (*domain.ImportReport, error) {
	args := m.Called(ctx, rows)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ImportReport), args.Error(1)
}

func (m *MockWorkflow) StartBatch(ctx context.Context, rows []domain.ValidatedRow) (func() (*domain.ImportReport, error), error) {
	args := m.Called(ctx, rows)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func() (*domain.ImportReport, error)), args.Error(1)
}

func (m *MockWorkflow) CancelProcessing(ctx context.Context) domain.CancelResult {
	args := m.Called(ctx)
	return args.Get(0).(domain.CancelResult)
}

func (m *MockWorkflow) Reset(ctx context.Context) {
	m.Called(ctx)
}

func (m *MockWorkflow) GetState() domain.WorkflowSnapshot {
	args := m.Called()
	return args.Get(0).(domain.WorkflowSnapshot)
}

var _ portssvc.WorkflowSvc = (*MockWorkflow)(nil)

// --- Mock TemplateService ---
type MockTemplateService struct {
	mock.Mock
}

func (m *MockTemplateService) GenerateTemplate() (domain.TemplateFile, error) {
	args := m.Called()
	return args.Get(0).(domain.TemplateFile), args.Error(1)
}

func (m *MockTemplateService) GenerateXLSXTemplate() (domain.TemplateFile, error) {
	args := m.Called()
	return args.Get(0).(domain.TemplateFile), args.Error(1)
}

var _ portssvc.TemplateSvc = (*MockTemplateService)(nil)

// --- Mock ManualPaymentService ---
type MockManualPaymentService struct {
	mock.Mock
}

func (m *MockManualPaymentService) RecordPayment(ctx context.Context, req dto.ManualPaymentRequest, userID string) (*domain.Transaction, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockManualPaymentService) CancelPayment(ctx context.Context, transactionID string, reason string, userID string) (*domain.RollbackResult, error) {
	args := m.Called(ctx, transactionID, reason, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RollbackResult), args.Error(1)
}

func (m *MockManualPaymentService) ListPayments(ctx context.Context, params dto.ListPaymentsParams) (*dto.ListPaymentsResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListPaymentsResponse), args.Error(1)
}

var _ portssvc.ManualPaymentSvc = (*MockManualPaymentService)(nil)

// --- Mock ConsistencyService ---
type MockConsistencyService struct {
	mock.Mock
}

func (m *MockConsistencyService) result(args mock.Arguments) (domain.ConsistencyResult, error) {
	return args.Get(0).(domain.ConsistencyResult), args.Error(1)
}

func (m *MockConsistencyService) ValidateSaldo(ctx context.Context) (domain.ConsistencyResult, error) {
	return m.result(m.Called(ctx))
}

func (m *MockConsistencyService) ValidateJournalIntegrity(ctx context.Context) (domain.ConsistencyResult, error) {
	return m.result(m.Called(ctx))
}

func (m *MockConsistencyService) ValidateCrossMode(ctx context.Context) (domain.ConsistencyResult, error) {
	return m.result(m.Called(ctx))
}

func (m *MockConsistencyService) ValidateAll(ctx context.Context) (domain.ConsistencyResult, error) {
	return m.result(m.Called(ctx))
}

func (m *MockConsistencyService) AttemptDataRepair(ctx context.Context, result domain.ConsistencyResult) (*domain.RepairResult, error) {
	args := m.Called(ctx, result)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RepairResult), args.Error(1)
}

var _ portssvc.ConsistencySvc = (*MockConsistencyService)(nil)
