package events

import (
	"time"

	"github.com/spec-kit/clinic-pos/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventStaffLoggedIn   EventType = "staff_logged_in"
	EventStaffLoggedOut  EventType = "staff_logged_out"
	EventPasswordChanged EventType = "staff_password_changed"
	EventLoginFailed     EventType = "staff_login_failed"
)

// Event represents an authentication event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UID       string      `json:"uid,omitempty"`
	Role      domain.Role `json:"role,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// LoggedInPayload payload.
type LoggedInPayload struct {
	Landing string `json:"landing"`
}

// LoginFailedPayload payload.
type LoginFailedPayload struct {
	Email  string `json:"email"`
	Reason string `json:"reason"`
}
