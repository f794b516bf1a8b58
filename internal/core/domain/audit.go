package domain

import "time"

// AuditRecord is an append-only log entry.
type AuditRecord struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Action    string         `json:"action"`
	Data      map[string]any `json:"data,omitempty"`
	User      string         `json:"user"`
	SessionID string         `json:"sessionId,omitempty"`
}
