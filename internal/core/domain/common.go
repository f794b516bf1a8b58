package domain

import "time"

// CurrentSchemaVersion is stamped on every record written through the ledger.
const CurrentSchemaVersion = 1

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // cashier / user id
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
	Version       int       `json:"version"`
}

// Touch updates the last-updated fields.
func (a *AuditFields) Touch(userID string, at time.Time) {
	a.LastUpdatedAt = at
	a.LastUpdatedBy = userID
}

// NewAuditFields returns audit fields for a record created by userID at the given time.
func NewAuditFields(userID string, at time.Time) AuditFields {
	return AuditFields{
		CreatedAt:     at,
		CreatedBy:     userID,
		LastUpdatedAt: at,
		LastUpdatedBy: userID,
		Version:       CurrentSchemaVersion,
	}
}
