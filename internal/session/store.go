// Package session tracks the current authentication snapshot and gates
// access to protected views.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/coursedesk/coursedesk-server/internal/logger"
	"github.com/coursedesk/coursedesk-server/internal/model"
)

// Store holds the latest session snapshot and fans changes out to observers.
//
// Start subscribes to provider change notifications before performing the
// initial fetch, so no transition is lost in the gap. The two delivery paths
// race; snapshots are merged by Seq and a stale snapshot never overwrites a
// newer one, whichever path it arrived on.
type Store struct {
	provider model.AuthProvider
	logger   *logger.Logger

	mu          sync.Mutex
	notifyMu    sync.Mutex
	current     model.Session
	observers   map[uint64]func(model.Session)
	nextID      uint64
	unsubscribe func()
	started     bool
	closed      bool
}

func NewStore(provider model.AuthProvider, logger *logger.Logger) *Store {
	return &Store{
		provider:  provider,
		logger:    logger,
		current:   model.Session{State: model.SessionPending},
		observers: make(map[uint64]func(model.Session)),
	}
}

// Start begins tracking the provider. The snapshot stays Pending until the
// initial resolution lands or a change notification beats it there.
func (s *Store) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("session store is closed")
	}
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("session store already started")
	}
	s.started = true
	s.mu.Unlock()

	// Subscribe first, fetch second.
	s.unsubscribe = s.provider.OnSessionChange(s.apply)

	snapshot, err := s.provider.CurrentSession(ctx)
	if err != nil {
		s.logger.Error("session store: initial resolution failed", "error", err.Error())
		s.apply(model.Session{State: model.SessionUnauthenticated})
		return fmt.Errorf("failed to resolve initial session: %w", err)
	}

	s.apply(snapshot)
	return nil
}

// apply merges a snapshot into the store. Snapshots older than the current
// one are dropped; equal-Seq snapshots are re-applied idempotently so the
// racing initial fetch and change notification converge on the same state.
func (s *Store) apply(snapshot model.Session) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if snapshot.Seq < s.current.Seq {
		s.logger.Debug("session store: dropping stale snapshot",
			"snapshot_seq", snapshot.Seq,
			"current_seq", s.current.Seq)
		s.mu.Unlock()
		return
	}
	s.current = snapshot

	handlers := make([]func(model.Session), 0, len(s.observers))
	for _, h := range s.observers {
		handlers = append(handlers, h)
	}

	// notifyMu is taken before mu is released so observers see transitions
	// in apply order.
	s.notifyMu.Lock()
	s.mu.Unlock()

	for _, h := range handlers {
		h(snapshot)
	}
	s.notifyMu.Unlock()
}

// Current returns the latest merged snapshot.
func (s *Store) Current() model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Subscribe registers an observer and synchronously delivers the current
// snapshot to it. The returned function removes the observer; calling it
// more than once is harmless.
func (s *Store) Subscribe(handler func(model.Session)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = handler
	current := s.current
	s.mu.Unlock()

	handler(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

// SignOut delegates to the provider. On failure the local snapshot is left
// untouched; the session is only cleared by the provider's own change
// notification after a successful revocation.
func (s *Store) SignOut(ctx context.Context) error {
	if err := s.provider.SignOut(ctx); err != nil {
		s.logger.Error("session store: sign-out failed", "error", err.Error())
		return fmt.Errorf("failed to sign out: %w", err)
	}
	return nil
}

// Close detaches from the provider and drops all observers. Snapshots
// arriving after Close are discarded.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.observers = make(map[uint64]func(model.Session))
	unsub := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}
