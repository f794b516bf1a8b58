package services

import (
	"context"
	"fmt"

	"github.com/SscSPs/coop_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/coop_backoffice/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/coop_backoffice/internal/core/ports/services"
	"github.com/SscSPs/coop_backoffice/internal/middleware"
	"github.com/SscSPs/coop_backoffice/internal/utils"
	"github.com/google/uuid"
)

// EventSink receives a copy of every audit record.
type EventSink interface {
	Enqueue(distinctID string, event string, properties map[string]any)
}

type auditService struct {
	BaseService
	writer portsrepo.AuditWriter
	sink   EventSink
}

// AuditOption is a functional option for configuring the audit service
type AuditOption func(*auditService)

// WithEventSink forwards audit records to PostHog when the client is configured.
func WithEventSink(client *utils.PosthogClientWrapper) AuditOption {
	return func(s *auditService) {
		if client.IsInitialized() {
			s.sink = client
		}
	}
}

// NewAuditService creates an audit service appending to the audit log.
func NewAuditService(writer portsrepo.AuditWriter, options ...AuditOption) portssvc.AuditSvc {
	svc := &auditService{writer: writer}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Record appends an audit record. The user and session are taken from ctx.
func (s *auditService) Record(ctx context.Context, action string, data map[string]any) error {
	record := domain.AuditRecord{
		ID:        uuid.NewString(),
		Timestamp: s.Now(),
		Action:    action,
		Data:      data,
		User:      actingUser(ctx, ""),
		SessionID: middleware.GetSessionIDFromCtx(ctx),
	}
	if err := s.writer.AppendAudit(ctx, record); err != nil {
		return fmt.Errorf("failed to append audit record %s: %w", action, err)
	}

	if s.sink != nil {
		props := make(map[string]any, len(data)+2)
		for k, v := range data {
			props[k] = v
		}
		props["audit_id"] = record.ID
		if record.SessionID != "" {
			props["session_id"] = record.SessionID
		}
		s.sink.Enqueue(record.User, "audit."+action, props)
	}
	return nil
}
