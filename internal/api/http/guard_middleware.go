package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/clinic-pos/internal/access"
	"github.com/spec-kit/clinic-pos/internal/api/http/handlers"
	"github.com/spec-kit/clinic-pos/internal/auth"
	"github.com/spec-kit/clinic-pos/internal/guard"
	"github.com/spec-kit/clinic-pos/internal/observability"
	"github.com/spec-kit/clinic-pos/internal/session"
)

// requestSession exposes one request's session state as a provider. It
// never changes, so subscriptions are no-ops.
type requestSession struct {
	state session.State
}

func (s requestSession) State() session.State { return s.state }

func (s requestSession) Subscribe(func(session.State)) func() { return func() {} }

// requestRouter navigates by answering with a redirect.
type requestRouter struct {
	c *fiber.Ctx
}

func (r requestRouter) CurrentPath() string { return r.c.Path() }

func (r requestRouter) NavigateTo(route string) {
	_ = r.c.Redirect(route, fiber.StatusFound)
}

// GuardMiddleware protects the routes behind it with the route guard.
// Anonymous callers are redirected to the login route, callers whose role
// the policy denies get the 403 unauthorized page.
// It must run after auth.SessionMiddleware.
func GuardMiddleware(policy access.Checker, metrics *observability.Metrics) fiber.Handler {
	next := guard.ViewFunc[*fiber.Ctx, error](func(c *fiber.Ctx) error { return c.Next() })
	denied := guard.ViewFunc[*fiber.Ctx, error](handlers.Unauthorized)
	observe := func(outcome guard.Outcome, _ string) {
		metrics.RecordGuardOutcome(outcome.String())
	}

	return func(c *fiber.Ctx) error {
		g := guard.Wrap[*fiber.Ctx, error](next, guard.Options[*fiber.Ctx, error]{
			Session:      requestSession{state: auth.StateFromContext(c)},
			Policy:       policy,
			Router:       requestRouter{c: c},
			Unauthorized: denied,
			Observer:     observe,
		})
		return g.Render(c)
	}
}
