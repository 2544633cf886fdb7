package domain

import (
	"encoding/json"
	"time"
)

// AuditLog represents an audit trail entry for administrative actions
type AuditLog struct {
	ID           string
	UserID       string // Who performed the action
	Action       string // settings.update, commission.reconcile
	ResourceType string
	ResourceID   string
	RequestID    string
	BeforeState  JSON
	AfterState   JSON
	Status       string // success, failure, error
	ErrorMessage string
	CreatedAt    time.Time
}

// JSON is a type alias for JSON data
type JSON map[string]any

// AuditAction represents different types of auditable actions
type AuditAction string

const (
	AuditActionSettingsUpdate      AuditAction = "settings.update"
	AuditActionCommissionReconcile AuditAction = "commission.reconcile"
)

// Audit resource types
const (
	AuditResourceSetting  = "setting"
	AuditResourceListings = "listings"
)

// AuditStatus represents the status of an audited action
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailure AuditStatus = "failure"
	AuditStatusError   AuditStatus = "error"
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
