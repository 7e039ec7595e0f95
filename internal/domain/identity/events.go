package identity

import "github.com/albazaar/storefront/internal/domain/shared"

// Event types
const (
	EventTypeLoginCompleted     = "login.completed"
	EventTypeSessionInvalidated = "session.invalidated"

	aggregateTypeSession = "session"
)

// LoginCompletedEvent is published when a session finishes the login flow
type LoginCompletedEvent struct {
	shared.BaseDomainEvent
	Phone          string `json:"phone"`
	AddressCapture bool   `json:"address_capture"`
}

// NewLoginCompletedEvent creates a LoginCompletedEvent
func NewLoginCompletedEvent(sessionID, phone string, addressCapture bool) *LoginCompletedEvent {
	return &LoginCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLoginCompleted, aggregateTypeSession, sessionID),
		Phone:           phone,
		AddressCapture:  addressCapture,
	}
}

// SessionInvalidatedEvent is published on logout and when the backend
// rejects the session credential
type SessionInvalidatedEvent struct {
	shared.BaseDomainEvent
	Reason string `json:"reason"`
}

// Invalidation reasons
const (
	InvalidationReasonLogout       = "logout"
	InvalidationReasonUnauthorized = "unauthorized"
)

// NewSessionInvalidatedEvent creates a SessionInvalidatedEvent
func NewSessionInvalidatedEvent(sessionID, reason string) *SessionInvalidatedEvent {
	return &SessionInvalidatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSessionInvalidated, aggregateTypeSession, sessionID),
		Reason:          reason,
	}
}
