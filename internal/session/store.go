package session

import (
	"sync"

	"github.com/spec-kit/clinic-pos/internal/domain"
)

// Store is an in-process Provider. It starts in the loading state.
type Store struct {
	// notifyMu serialises transitions with their delivery, so listeners see
	// changes in the order they were applied.
	notifyMu sync.Mutex

	mu        sync.Mutex
	state     State
	nextID    int
	listeners []listener
}

type listener struct {
	id int
	fn func(State)
}

// NewStore creates a store in the loading state.
func NewStore() *Store {
	return &Store{state: Loading()}
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn for state changes. Listeners run synchronously, in
// subscription order, outside the state lock; they may read State but must
// not change the store.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listener{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, l := range s.listeners {
				if l.id == id {
					s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// BeginRefresh moves the session back to loading, e.g. while a token is renewed.
func (s *Store) BeginRefresh() {
	s.set(Loading())
}

// SignIn records p as the active principal.
func (s *Store) SignIn(p domain.Principal) {
	s.set(Authenticated(p))
}

// SignOut clears the active principal.
func (s *Store) SignOut() {
	s.set(Anonymous())
}

func (s *Store) set(next State) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if equal(s.state, next) {
		s.mu.Unlock()
		return
	}
	s.state = next
	fns := make([]func(State), 0, len(s.listeners))
	for _, l := range s.listeners {
		fns = append(fns, l.fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(next)
	}
}

func equal(a, b State) bool {
	if a.Status != b.Status {
		return false
	}
	if a.Principal == nil || b.Principal == nil {
		return a.Principal == b.Principal
	}
	return *a.Principal == *b.Principal
}
