package landing

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/clinic-pos/internal/session"
)

// Navigator performs fire-and-forget navigation.
type Navigator interface {
	NavigateTo(route string)
}

// Redirector routes a principal to its landing page once per login. It
// listens to a session provider and runs one lookup whenever a new
// principal becomes authenticated. A refresh through the loading state
// keeps the current login. Results belonging to a principal that has since
// signed out or been replaced are dropped.
type Redirector struct {
	resolver *Resolver
	nav      Navigator
	logger   *zap.Logger

	mu         sync.Mutex
	generation uint64
	activeUID  string
	wg         sync.WaitGroup

	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
}

// NewRedirector binds a resolver to provider and nav. Call Close to detach.
func NewRedirector(provider session.Provider, resolver *Resolver, nav Navigator, logger *zap.Logger) *Redirector {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	r := &Redirector{
		resolver: resolver,
		nav:      nav,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
	r.unsubscribe = provider.Subscribe(r.onState)
	r.onState(provider.State())
	return r
}

func (r *Redirector) onState(state session.State) {
	if state.IsLoading() {
		return
	}
	uid := state.UID()

	r.mu.Lock()
	if uid == "" {
		if r.activeUID != "" {
			r.generation++
			r.activeUID = ""
		}
		r.mu.Unlock()
		return
	}
	if uid == r.activeUID {
		// Same login; the lookup already ran or is running.
		r.mu.Unlock()
		return
	}
	r.generation++
	gen := r.generation
	r.activeUID = uid
	r.wg.Add(1)
	r.mu.Unlock()

	go r.resolve(gen, uid)
}

func (r *Redirector) resolve(gen uint64, uid string) {
	defer r.wg.Done()

	route := r.resolver.ResolveLanding(r.ctx, uid)

	r.mu.Lock()
	current := r.generation == gen && r.activeUID == uid
	r.mu.Unlock()
	if !current {
		r.logger.Debug("discarding stale landing result", zap.String("uid", uid), zap.String("route", route))
		return
	}
	r.nav.NavigateTo(route)
}

// Wait blocks until outstanding lookups have finished.
func (r *Redirector) Wait() {
	r.wg.Wait()
}

// Close detaches from the provider, cancels in-flight lookups and waits for them.
func (r *Redirector) Close() {
	r.unsubscribe()
	r.mu.Lock()
	r.generation++
	r.activeUID = ""
	r.mu.Unlock()
	r.cancel()
	r.wg.Wait()
}
