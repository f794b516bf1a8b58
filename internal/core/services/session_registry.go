package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	portssvc "github.com/SscSPs/coop_backoffice/internal/core/ports/services"
	"github.com/google/uuid"
)

// WorkflowFactory builds the workflow of a new session.
type WorkflowFactory func(sessionID, userID string) portssvc.WorkflowSvc

type sessionRegistry struct {
	BaseService
	mu       sync.Mutex
	sessions map[string]*portssvc.ImportSession
	lastSeen map[string]time.Time
	factory  WorkflowFactory
	ttl      time.Duration
}

// NewSessionRegistry creates a registry. A session is active when it is created or looked up;
// sessions idle longer than ttl are dropped on the next Create unless they are processing.
// ttl <= 0 disables expiry.
func NewSessionRegistry(factory WorkflowFactory, ttl time.Duration) portssvc.SessionRegistrySvc {
	return &sessionRegistry{
		sessions: make(map[string]*portssvc.ImportSession),
		lastSeen: make(map[string]time.Time),
		factory:  factory,
		ttl:      ttl,
	}
}

func (r *sessionRegistry) Create(ctx context.Context, userID string) (*portssvc.ImportSession, error) {
	id := uuid.NewString()
	session := &portssvc.ImportSession{
		ID:        id,
		CreatedBy: userID,
		CreatedAt: r.Now(),
		Workflow:  r.factory(id, userID),
	}

	r.mu.Lock()
	r.pruneLocked(ctx)
	r.sessions[id] = session
	r.lastSeen[id] = session.CreatedAt
	r.mu.Unlock()

	r.LogInfo(ctx, "Import session created", slog.String("session_id", id))
	return session, nil
}

func (r *sessionRegistry) Get(id string) (*portssvc.ImportSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if ok {
		r.lastSeen[id] = r.Now()
	}
	return s, ok
}

func (r *sessionRegistry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	delete(r.lastSeen, id)
}

func (r *sessionRegistry) pruneLocked(ctx context.Context) {
	if r.ttl <= 0 {
		return
	}
	cutoff := r.Now().Add(-r.ttl)
	for id, s := range r.sessions {
		if r.lastSeen[id].Before(cutoff) && !s.Workflow.GetState().IsProcessing {
			delete(r.sessions, id)
			delete(r.lastSeen, id)
			r.LogDebug(ctx, "Import session expired", slog.String("session_id", id))
		}
	}
}
