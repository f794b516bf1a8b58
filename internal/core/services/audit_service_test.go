package services

import (
	"context"
	"testing"

	"github.com/SscSPs/coop_backoffice/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockEventSink struct {
	mock.Mock
}

func (m *mockEventSink) Enqueue(distinctID string, event string, properties map[string]any) {
	m.Called(distinctID, event, properties)
}

func TestAuditService_RecordsUserAndSession(t *testing.T) {
	f := newLedgerFixture(t)
	sink := new(mockEventSink)
	sink.On("Enqueue", "kasir-1", "audit.workflow.processing", mock.MatchedBy(func(p map[string]any) bool {
		return p["session_id"] == "sess-9" && p["rows"] == 3
	})).Once()

	svc := NewAuditService(f.repo).(*auditService)
	svc.sink = sink
	ctx := middleware.WithSessionID(testCtx(), "sess-9")
	require.NoError(t, svc.Record(ctx, "workflow.processing", map[string]any{"rows": 3}))

	records, err := f.repo.ListAudit(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "workflow.processing", records[0].Action)
	assert.Equal(t, "kasir-1", records[0].User)
	assert.Equal(t, "sess-9", records[0].SessionID)
	assert.NotEmpty(t, records[0].ID)
	assert.False(t, records[0].Timestamp.IsZero())
	sink.AssertExpectations(t)
}

func TestAuditService_DefaultsToSystemUser(t *testing.T) {
	f := newLedgerFixture(t)
	require.NoError(t, NewAuditService(f.repo, WithEventSink(nil)).Record(context.Background(), "repair.saldo", nil))

	records, err := f.repo.ListAudit(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "system", records[0].User)
}
