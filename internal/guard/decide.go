// Package guard enforces authentication and authorization before a
// protected view is rendered.
package guard

import (
	"github.com/spec-kit/clinic-pos/internal/access"
	"github.com/spec-kit/clinic-pos/internal/session"
)

// Outcome is the result of evaluating a guard.
type Outcome int

const (
	OutcomeLoading Outcome = iota
	OutcomeUnauthenticated
	OutcomeUnauthorized
	OutcomeAuthorized
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLoading:
		return "loading"
	case OutcomeUnauthenticated:
		return "unauthenticated"
	case OutcomeUnauthorized:
		return "unauthorized"
	case OutcomeAuthorized:
		return "authorized"
	}
	return "unknown"
}

// Decide evaluates the guard rules in order: loading, missing principal,
// policy denial, allow.
func Decide(state session.State, path string, policy access.Checker) Outcome {
	switch {
	case state.IsLoading():
		return OutcomeLoading
	case state.Status != session.StatusAuthenticated || state.Principal == nil:
		return OutcomeUnauthenticated
	case policy == nil || !policy.HasAccess(path, state.Principal.Role):
		return OutcomeUnauthorized
	default:
		return OutcomeAuthorized
	}
}
