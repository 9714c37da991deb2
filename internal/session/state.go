// Package session models the current authentication state of a dashboard
// session and notifies subscribers when it changes.
package session

import "github.com/spec-kit/clinic-pos/internal/domain"

// Status is the tri-state of a session.
type Status int

const (
	StatusLoading Status = iota
	StatusAnonymous
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusAnonymous:
		return "anonymous"
	case StatusAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

// State is a snapshot of the session. Principal is set only when Status is
// StatusAuthenticated.
type State struct {
	Status    Status
	Principal *domain.Principal
}

// Loading returns the transient state used while authentication is being checked.
func Loading() State { return State{Status: StatusLoading} }

// Anonymous returns the signed-out state.
func Anonymous() State { return State{Status: StatusAnonymous} }

// Authenticated returns the signed-in state for p.
func Authenticated(p domain.Principal) State {
	return State{Status: StatusAuthenticated, Principal: &p}
}

// IsLoading reports whether a decision must be deferred.
func (s State) IsLoading() bool { return s.Status == StatusLoading }

// UID returns the principal id, or "" when not authenticated.
func (s State) UID() string {
	if s.Status != StatusAuthenticated || s.Principal == nil {
		return ""
	}
	return s.Principal.UID
}

// Provider supplies the current session state and change notifications.
type Provider interface {
	State() State
	Subscribe(fn func(State)) (unsubscribe func())
}
