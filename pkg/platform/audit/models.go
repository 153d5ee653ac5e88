package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose so sinks can
// route and retain them differently.
type EventCategory string

const (
	// CategoryCompliance covers account lifecycle events with regulatory weight.
	CategoryCompliance EventCategory = "compliance"
	// CategorySecurity covers failed sign-ins and sessions invalidated by the backend.
	CategorySecurity EventCategory = "security"
	// CategoryOperations covers routine navigation and session activity.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from portal logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	Action    string        `json:"action"`
	UserID    string        `json:"user_id,omitempty"`
	Email     string        `json:"email,omitempty"`
	// Subject is the path or section the action concerns.
	Subject     string `json:"subject,omitempty"`
	Reason      string `json:"reason,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
	DeviceID    string `json:"device_id,omitempty"`
	DeviceLabel string `json:"device_label,omitempty"`
	ClientIP    string `json:"client_ip,omitempty"`
}

type AuditEvent string

const (
	EventLoginSucceeded     AuditEvent = "login_succeeded"
	EventLoginFailed        AuditEvent = "login_failed"
	EventRegistered         AuditEvent = "registered"
	EventRegisterFailed     AuditEvent = "register_failed"
	EventLoggedOut          AuditEvent = "logged_out"
	EventSessionRevalidated AuditEvent = "session_revalidated"
	EventRevalidationFailed AuditEvent = "session_revalidation_failed"
	EventGateRedirected     AuditEvent = "gate_redirected"
	EventGuardRedirected    AuditEvent = "guard_redirected"

	EventLandVerificationRequested AuditEvent = "land_verification_requested"
	EventRegistrationSubmitted     AuditEvent = "professional_registration_submitted"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventRegistered:                CategoryCompliance,
	EventLandVerificationRequested: CategoryCompliance,
	EventRegistrationSubmitted:     CategoryCompliance,

	EventLoginFailed:        CategorySecurity,
	EventRegisterFailed:     CategorySecurity,
	EventRevalidationFailed: CategorySecurity,

	EventLoginSucceeded:     CategoryOperations,
	EventLoggedOut:          CategoryOperations,
	EventSessionRevalidated: CategoryOperations,
	EventGateRedirected:     CategoryOperations,
	EventGuardRedirected:    CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Emitter is what portal services depend on.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}
