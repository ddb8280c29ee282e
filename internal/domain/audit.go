package domain

import (
	"encoding/json"
	"time"
)

// AuditLog records a change made to an item or its schedule.
type AuditLog struct {
	ID           string
	UserID       string // Preparer who made the change
	Action       AuditAction
	ResourceType string // item, schedule
	ResourceID   string
	RequestID    string
	BeforeState  JSON
	AfterState   JSON
	Note         string
	CreatedAt    time.Time
}

// JSON is a type alias for JSON data
type JSON map[string]any

// AuditAction represents different types of auditable actions
type AuditAction string

const (
	AuditActionItemCreate       AuditAction = "item.create"
	AuditActionItemCancel       AuditAction = "item.cancel"
	AuditActionItemDelete       AuditAction = "item.delete"
	AuditActionItemRecognise    AuditAction = "item.recognise"
	AuditActionScheduleOverride AuditAction = "schedule.override"
)

// Audit resource types
const (
	AuditResourceItem     = "item"
	AuditResourceSchedule = "schedule"
)

// MarshalState converts a domain object to JSON for audit logging
func MarshalState(v any) JSON {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return JSON{"error": "failed to marshal state"}
	}

	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return JSON{"error": "failed to unmarshal state"}
	}

	return result
}

// AuditFilter defines filters for querying audit logs
type AuditFilter struct {
	Action       AuditAction
	ResourceType string
	ResourceID   string
	StartDate    *time.Time
	EndDate      *time.Time
	Limit        int
	Offset       int
}
