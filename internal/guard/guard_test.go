package guard

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/clinic-pos/internal/access"
	"github.com/spec-kit/clinic-pos/internal/domain"
	"github.com/spec-kit/clinic-pos/internal/session"
)

type fakeRouter struct {
	mu   sync.Mutex
	path string
	navs []string
}

func (r *fakeRouter) CurrentPath() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.path
}

func (r *fakeRouter) NavigateTo(route string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.navs = append(r.navs, route)
}

func (r *fakeRouter) navigations() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.navs...)
}

type pageProps struct {
	Title string
}

type countingView struct {
	mu    sync.Mutex
	calls int
	out   string
}

func (v *countingView) Render(p pageProps) string {
	v.mu.Lock()
	v.calls++
	v.mu.Unlock()
	return v.out + ":" + p.Title
}

func newFixture(path string) (*session.Store, *fakeRouter, *countingView, *countingView, *Guard[pageProps, string]) {
	store := session.NewStore()
	router := &fakeRouter{path: path}
	page := &countingView{out: "page"}
	denied := &countingView{out: "unauthorized"}
	g := Wrap[pageProps, string](page, Options[pageProps, string]{
		Session:      store,
		Policy:       access.DefaultPolicy(),
		Router:       router,
		Unauthorized: denied,
	})
	return store, router, page, denied, g
}

func TestGuard_LoadingRendersNothing(t *testing.T) {
	_, router, page, denied, g := newFixture("/dashboard/pos")

	for i := 0; i < 3; i++ {
		out, outcome := g.Evaluate(pageProps{Title: "POS"})
		assert.Equal(t, "", out)
		assert.Equal(t, OutcomeLoading, outcome)
	}
	assert.Empty(t, router.navigations())
	assert.Zero(t, page.calls)
	assert.Zero(t, denied.calls)
}

func TestGuard_AnonymousNavigatesOnce(t *testing.T) {
	store, router, page, denied, g := newFixture("/dashboard/pos")
	store.SignOut()

	for i := 0; i < 5; i++ {
		assert.Equal(t, "", g.Render(pageProps{}))
	}
	assert.Equal(t, []string{"/"}, router.navigations())
	assert.Zero(t, page.calls)
	assert.Zero(t, denied.calls)

	outcome, ok := g.Outcome()
	require.True(t, ok)
	assert.Equal(t, OutcomeUnauthenticated, outcome)
}

func TestGuard_ConcurrentAnonymousNavigatesOnce(t *testing.T) {
	store, router, _, _, g := newFixture("/dashboard/pos")
	store.SignOut()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.Render(pageProps{})
		}()
	}
	wg.Wait()
	assert.Len(t, router.navigations(), 1)
}

func TestGuard_ReloadingResetsNavigation(t *testing.T) {
	store, router, _, _, g := newFixture("/dashboard/pos")
	store.SignOut()
	g.Render(pageProps{})

	store.BeginRefresh()
	g.Render(pageProps{})
	store.SignOut()
	g.Render(pageProps{})
	g.Render(pageProps{})

	assert.Equal(t, []string{"/", "/"}, router.navigations())
}

func TestGuard_DoctorOnPOSIsUnauthorized(t *testing.T) {
	store, router, page, denied, g := newFixture("/dashboard/pos")
	store.SignIn(domain.Principal{UID: "u1", Role: domain.RoleDoctor})

	out, outcome := g.Evaluate(pageProps{Title: "POS"})
	assert.Equal(t, OutcomeUnauthorized, outcome)
	assert.Equal(t, "unauthorized:POS", out)
	assert.Zero(t, page.calls)
	assert.Equal(t, 1, denied.calls)
	assert.Empty(t, router.navigations())
}

func TestGuard_AuthorizedPassesPropsThrough(t *testing.T) {
	store, router, page, denied, g := newFixture("/dashboard/pos/checkout")
	store.SignIn(domain.Principal{UID: "u2", Role: domain.RoleCashier})

	out, outcome := g.Evaluate(pageProps{Title: "Checkout"})
	assert.Equal(t, OutcomeAuthorized, outcome)
	assert.Equal(t, "page:Checkout", out)
	assert.Equal(t, 1, page.calls)
	assert.Zero(t, denied.calls)
	assert.Empty(t, router.navigations())
}

func TestGuard_PathChangeReevaluates(t *testing.T) {
	store, router, _, _, g := newFixture("/dashboard/my-sessions")
	store.SignIn(domain.Principal{UID: "u1", Role: domain.RoleDoctor})

	_, outcome := g.Evaluate(pageProps{})
	assert.Equal(t, OutcomeAuthorized, outcome)

	router.mu.Lock()
	router.path = "/dashboard/salaries"
	router.mu.Unlock()

	_, outcome = g.Evaluate(pageProps{})
	assert.Equal(t, OutcomeUnauthorized, outcome)
}

func TestGuard_NilUnauthorizedViewAndObserver(t *testing.T) {
	store := session.NewStore()
	store.SignIn(domain.Principal{UID: "u1", Role: domain.RolePharmacy})
	var observed []Outcome

	g := Wrap[pageProps, string](ViewFunc[pageProps, string](func(p pageProps) string { return p.Title }), Options[pageProps, string]{
		Session:  store,
		Policy:   access.DefaultPolicy(),
		Router:   &fakeRouter{path: "/dashboard/staff"},
		Observer: func(o Outcome, _ string) { observed = append(observed, o) },
	})

	assert.Equal(t, "", g.Render(pageProps{Title: "Staff"}))
	assert.Equal(t, []Outcome{OutcomeUnauthorized}, observed)
}

func TestGuard_CustomLoginRoute(t *testing.T) {
	store := session.NewStore()
	store.SignOut()
	router := &fakeRouter{path: "/dashboard"}
	g := Wrap[pageProps, string](&countingView{}, Options[pageProps, string]{
		Session:    store,
		Policy:     access.DefaultPolicy(),
		Router:     router,
		LoginRoute: "/login",
	})
	g.Render(pageProps{})
	assert.Equal(t, []string{"/login"}, router.navigations())
}

func TestGuard_NestedGuardsComposeAsViews(t *testing.T) {
	store, router, page, _, inner := newFixture("/dashboard/reports")
	store.SignIn(domain.Principal{UID: "a", Role: domain.RoleAdmin})

	var outer View[pageProps, string] = Wrap[pageProps, string](inner, Options[pageProps, string]{
		Session: store,
		Policy:  access.DefaultPolicy(),
		Router:  router,
	})
	assert.Equal(t, "page:Reports", outer.Render(pageProps{Title: "Reports"}))
	assert.Equal(t, 1, page.calls)
}

func TestOutcomeBeforeEvaluation(t *testing.T) {
	_, _, _, _, g := newFixture("/dashboard")
	_, ok := g.Outcome()
	assert.False(t, ok)
}
