package guard

import (
	"sync"

	"github.com/spec-kit/clinic-pos/internal/access"
	"github.com/spec-kit/clinic-pos/internal/session"
)

// View renders props into an output.
type View[P, O any] interface {
	Render(props P) O
}

// ViewFunc adapts a function to View.
type ViewFunc[P, O any] func(props P) O

// Render calls f(props).
func (f ViewFunc[P, O]) Render(props P) O { return f(props) }

// Router performs navigation. NavigateTo is fire-and-forget.
type Router interface {
	CurrentPath() string
	NavigateTo(route string)
}

// Observer is notified of every evaluation.
type Observer func(outcome Outcome, path string)

// Options configures a Guard.
type Options[P, O any] struct {
	Session session.Provider
	Policy  access.Checker
	Router  Router

	// Unauthorized renders the access-denied page. A nil view yields the zero output.
	Unauthorized View[P, O]

	// LoginRoute defaults to access.LoginRoute.
	LoginRoute string
	Observer   Observer
}

// Guard wraps a view with access control. It is itself a View.
type Guard[P, O any] struct {
	view View[P, O]
	opts Options[P, O]

	mu        sync.Mutex
	last      Outcome
	evaluated bool
	navigated bool
}

// Wrap decorates view with the guard configured by opts.
func Wrap[P, O any](view View[P, O], opts Options[P, O]) *Guard[P, O] {
	if opts.LoginRoute == "" {
		opts.LoginRoute = access.LoginRoute
	}
	return &Guard[P, O]{view: view, opts: opts}
}

// Render evaluates the guard and renders the resulting view.
func (g *Guard[P, O]) Render(props P) O {
	out, _ := g.Evaluate(props)
	return out
}

// Evaluate renders like Render and also reports the outcome. Loading and
// unauthenticated evaluations return the zero output. Navigation to the
// login route happens once per entry into the unauthenticated state.
func (g *Guard[P, O]) Evaluate(props P) (O, Outcome) {
	var zero O

	state := session.Anonymous()
	if g.opts.Session != nil {
		state = g.opts.Session.State()
	}
	path := ""
	if g.opts.Router != nil {
		path = g.opts.Router.CurrentPath()
	}
	outcome := Decide(state, path, g.opts.Policy)

	g.mu.Lock()
	shouldNavigate := outcome == OutcomeUnauthenticated && !g.navigated
	if outcome == OutcomeUnauthenticated {
		g.navigated = true
	} else {
		g.navigated = false
	}
	g.last = outcome
	g.evaluated = true
	g.mu.Unlock()

	if g.opts.Observer != nil {
		g.opts.Observer(outcome, path)
	}

	switch outcome {
	case OutcomeUnauthenticated:
		if shouldNavigate && g.opts.Router != nil {
			g.opts.Router.NavigateTo(g.opts.LoginRoute)
		}
		return zero, outcome
	case OutcomeUnauthorized:
		if g.opts.Unauthorized == nil {
			return zero, outcome
		}
		return g.opts.Unauthorized.Render(props), outcome
	case OutcomeAuthorized:
		return g.view.Render(props), outcome
	default:
		return zero, outcome
	}
}

// Outcome returns the most recent evaluation result. ok is false before the
// first evaluation.
func (g *Guard[P, O]) Outcome() (outcome Outcome, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last, g.evaluated
}
