package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose.
type EventCategory string

const (
	// CategoryCompliance covers account lifecycle and admin changes.
	CategoryCompliance EventCategory = "compliance"
	// CategorySecurity covers failed logins, denied check-ins and throttling.
	CategorySecurity EventCategory = "security"
	// CategoryOperations covers routine activity such as session issuance.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. It is
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        string        `json:"id"`
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	UserID    string        `json:"userId,omitempty"`
	Subject   string        `json:"subject,omitempty"`
	Action    string        `json:"action"`
	Decision  string        `json:"decision,omitempty"`
	Reason    string        `json:"reason,omitempty"`
	Email     string        `json:"email,omitempty"`
	IP        string        `json:"ip,omitempty"`
	Device    string        `json:"device,omitempty"`
	RequestID string        `json:"requestId,omitempty"`
	// ActorID is who performed the action when different from UserID, e.g.
	// the admin scanning a QR code or editing a user.
	ActorID string `json:"actorId,omitempty"`
}

type AuditEvent string

const (
	// Auth
	EventLoginSucceeded AuditEvent = "login_succeeded"
	EventAuthFailed     AuditEvent = "auth_failed"
	EventSessionIssued  AuditEvent = "session_issued"
	EventUserRegistered AuditEvent = "user_registered"
	EventAdminBootstrap AuditEvent = "admin_bootstrapped"

	// Admin
	EventUserCreated    AuditEvent = "user_created"
	EventUserUpdated    AuditEvent = "user_updated"
	EventUserDeleted    AuditEvent = "user_deleted"
	EventCatalogChanged AuditEvent = "catalog_changed"

	// Check-in
	EventCheckinGranted AuditEvent = "checkin_granted"
	EventCheckinDenied  AuditEvent = "checkin_denied"

	// Access control
	EventContentDenied     AuditEvent = "content_denied"
	EventRateLimitExceeded AuditEvent = "rate_limit_exceeded"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventUserRegistered: CategoryCompliance,
	EventAdminBootstrap: CategoryCompliance,
	EventUserCreated:    CategoryCompliance,
	EventUserUpdated:    CategoryCompliance,
	EventUserDeleted:    CategoryCompliance,
	EventCatalogChanged: CategoryCompliance,

	EventAuthFailed:        CategorySecurity,
	EventCheckinDenied:     CategorySecurity,
	EventContentDenied:     CategorySecurity,
	EventRateLimitExceeded: CategorySecurity,

	EventLoginSucceeded: CategoryOperations,
	EventSessionIssued:  CategoryOperations,
	EventCheckinGranted: CategoryOperations,
}

// Category returns the EventCategory for this audit event. Unknown events
// default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Sink receives every emitted event.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Store is a Sink that can also be queried. ListByUser is oldest first,
// ListRecent newest first.
type Store interface {
	Sink
	ListByUser(ctx context.Context, userID string) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
