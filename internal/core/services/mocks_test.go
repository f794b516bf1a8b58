package services

import (
	"context"

	"github.com/SscSPs/coop_backoffice/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

type mockRollbackSvc struct {
	mock.Mock
}

func (m *mockRollbackSvc) PerformRollback(ctx context.Context, transactionID string, opts domain.RollbackOptions) (*domain.RollbackResult, error) {
	args := m.Called(ctx, transactionID, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RollbackResult), args.Error(1)
}
