package driver

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/cory-johannsen/battlecore/internal/game/battle"
)

// Registry tracks the sessions in flight.
//
// Registry is safe for concurrent use. Each Session is driven by at most one
// goroutine at a time.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	order    []uuid.UUID
}

// NewRegistry creates an empty Registry.
//
// Postcondition: Returns a non-nil Registry ready for use.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[uuid.UUID]*Session)}
}

// Start registers s.
//
// Precondition: s must be non-nil.
// Postcondition: Returns an error if a session with the same id is already registered.
func (r *Registry) Start(s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[s.ID()]; exists {
		return fmt.Errorf("driver: session %s already registered", s.ID())
	}
	r.sessions[s.ID()] = s
	r.order = append(r.order, s.ID())
	return nil
}

// Get returns the session registered under id.
func (r *Registry) Get(id uuid.UUID) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// End removes the session registered under id and closes it.
func (r *Registry) End(id uuid.UUID) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.order = slices.DeleteFunc(r.order, func(o uuid.UUID) bool { return o == id })
	r.mu.Unlock()
	if ok {
		s.Close()
	}
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Result is the outcome of one session run by RunAll.
type Result struct {
	ID      uuid.UUID
	Seed    uint64
	Outcome battle.Outcome
	Turns   int64
	Err     error
}

// RunAll runs every registered session to completion, one goroutine per
// session, and ends each one as it finishes.
//
// Precondition: deltaMs > 0 and maxTicks > 0.
// Postcondition: Returns one Result per session that was registered at call
// time, in registration order. The registry no longer holds those sessions.
func (r *Registry) RunAll(ctx context.Context, deltaMs int64, maxTicks int) []Result {
	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.order))
	for _, id := range r.order {
		sessions = append(sessions, r.sessions[id])
	}
	r.mu.RUnlock()

	results := make([]Result, len(sessions))
	var wg sync.WaitGroup
	for i, s := range sessions {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome, err := s.Run(ctx, deltaMs, maxTicks)
			results[i] = Result{
				ID:      s.ID(),
				Seed:    s.Seed(),
				Outcome: outcome,
				Turns:   s.State().Turn,
				Err:     err,
			}
			r.End(s.ID())
		}()
	}
	wg.Wait()
	return results
}
