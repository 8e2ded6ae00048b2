// Package state holds the client's single global record and notifies
// subscribers whenever it changes.
package state

import (
	"fmt"
	"sync"

	"github.com/wolfman30/mindcare/internal/api"
	"github.com/wolfman30/mindcare/pkg/logging"
)

// State is the global client record. Me is nil until the first /auth/me
// completes.
type State struct {
	Me *api.Me
}

// Authenticated reports whether the snapshot holds a live session.
func (s State) Authenticated() bool {
	return s.Me != nil && s.Me.Authenticated
}

// Role returns the session role, or "" when unauthenticated.
func (s State) Role() api.Role {
	if !s.Authenticated() {
		return ""
	}
	return s.Me.Role
}

// Partial is a merge-patch for SetState; nil fields are left untouched.
type Partial struct {
	Me *api.Me
}

// Listener receives the state after every SetState.
type Listener func(State)

// Store is safe for concurrent use. Listeners run synchronously on the
// goroutine that called SetState, outside the store's lock.
type Store struct {
	mu        sync.RWMutex
	state     State
	listeners map[uint64]Listener
	order     []uint64
	nextID    uint64
	logger    *logging.Logger
}

// NewStore returns an empty store.
func NewStore(logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{
		listeners: make(map[uint64]Listener),
		logger:    logger,
	}
}

// State returns a snapshot of the current record.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SetState merges p into the record and notifies every listener. A listener
// that panics is logged and skipped; the rest still run.
func (s *Store) SetState(p Partial) {
	s.mu.Lock()
	if p.Me != nil {
		me := *p.Me
		s.state.Me = &me
	}
	snapshot := s.state
	listeners := make([]Listener, 0, len(s.order))
	for _, id := range s.order {
		listeners = append(listeners, s.listeners[id])
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		s.notify(fn, snapshot)
	}
}

// Subscribe registers fn and returns a function that removes it. Calling the
// returned function more than once is a no-op.
func (s *Store) Subscribe(fn Listener) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.order = append(s.order, id)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { s.unsubscribe(id) })
	}
}

func (s *Store) unsubscribe(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.listeners, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Store) notify(fn Listener, snapshot State) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("state listener panicked", "panic", fmt.Sprint(r))
		}
	}()
	fn(snapshot)
}
