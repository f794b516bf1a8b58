package services

import (
	"testing"
	"time"

	portssvc "github.com/SscSPs/coop_backoffice/internal/core/ports/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRegistry_CreateGetRemove(t *testing.T) {
	reg := NewSessionRegistry(func(sessionID, userID string) portssvc.WorkflowSvc {
		return NewWorkflowService(WithSession(sessionID, userID))
	}, time.Hour)

	s1, err := reg.Create(testCtx(), "kasir-1")
	require.NoError(t, err)
	s2, err := reg.Create(testCtx(), "kasir-1")
	require.NoError(t, err)
	assert.NotEqual(t, s1.ID, s2.ID)
	assert.Equal(t, s1.ID, s1.Workflow.GetState().SessionID)

	got, ok := reg.Get(s1.ID)
	require.True(t, ok)
	assert.Same(t, s1, got)

	reg.Remove(s1.ID)
	_, ok = reg.Get(s1.ID)
	assert.False(t, ok)
}

func TestSessionRegistry_ExpiresIdleSessions(t *testing.T) {
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	reg := NewSessionRegistry(func(sessionID, userID string) portssvc.WorkflowSvc {
		return NewWorkflowService(WithSession(sessionID, userID))
	}, time.Hour).(*sessionRegistry)
	reg.now = func() time.Time { return now }

	old, err := reg.Create(testCtx(), "kasir-1")
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	fresh, err := reg.Create(testCtx(), "kasir-1")
	require.NoError(t, err)

	_, ok := reg.Get(old.ID)
	assert.False(t, ok)
	_, ok = reg.Get(fresh.ID)
	assert.True(t, ok)
}

func TestSessionRegistry_LookupKeepsSessionAlive(t *testing.T) {
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	reg := NewSessionRegistry(func(sessionID, userID string) portssvc.WorkflowSvc {
		return NewWorkflowService(WithSession(sessionID, userID))
	}, time.Hour).(*sessionRegistry)
	reg.now = func() time.Time { return now }

	busy, err := reg.Create(testCtx(), "kasir-1")
	require.NoError(t, err)
	idle, err := reg.Create(testCtx(), "kasir-2")
	require.NoError(t, err)

	now = now.Add(50 * time.Minute)
	_, ok := reg.Get(busy.ID)
	require.True(t, ok)

	// older than ttl since creation, but looked up 40 minutes ago
	now = now.Add(40 * time.Minute)
	_, err = reg.Create(testCtx(), "kasir-3")
	require.NoError(t, err)

	_, ok = reg.Get(busy.ID)
	assert.True(t, ok)
	_, ok = reg.Get(idle.ID)
	assert.False(t, ok)
}
