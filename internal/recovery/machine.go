// Package recovery drives the password-recovery flow as an explicit state
// machine, from the emailed link landing to the password being replaced.
package recovery

import (
	"context"
	"fmt"
	"sync"

	"github.com/coursedesk/coursedesk-server/internal/logger"
	"github.com/coursedesk/coursedesk-server/internal/model"
)

// State is a phase of the recovery flow.
type State string

const (
	// StateAwaitingLink means no recovery-authorized session has arrived yet.
	StateAwaitingLink State = "awaiting_link"
	// StateTokenValid means a recovery session exists; a new password may be
	// submitted.
	StateTokenValid State = "token_valid"
	// StateTokenInvalid is terminal: the link was expired or malformed and
	// the user must request a fresh one.
	StateTokenInvalid State = "token_invalid"
	// StateSubmitting means an update is in flight.
	StateSubmitting State = "submitting"
	// StateFailed means the last submission was rejected; retry is allowed.
	StateFailed State = "failed"
	// StateDone is terminal: the password was replaced.
	StateDone State = "done"
)

// Machine holds the recovery flow state. Session snapshots feed in through
// HandleSession; the user's submission goes out through Submit. All methods
// are safe for concurrent use.
type Machine struct {
	provider model.AuthProvider
	logger   *logger.Logger

	mu      sync.Mutex
	state   State
	lastErr error
}

func NewMachine(provider model.AuthProvider, logger *logger.Logger) *Machine {
	return &Machine{
		provider: provider,
		logger:   logger,
		state:    StateAwaitingLink,
	}
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Err returns the error recorded by the last failure, if any.
func (m *Machine) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// HandleSession consumes a session snapshot. A restricted session while
// awaiting the link validates the token; every other snapshot, including
// duplicates of the one already consumed, is ignored.
func (m *Machine) HandleSession(snapshot model.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateAwaitingLink {
		return
	}
	if snapshot.State != model.SessionAuthenticated || !snapshot.Restricted {
		return
	}

	m.state = StateTokenValid
	m.logger.Info("recovery: token validated")
}

// LinkFailed marks the awaited link unusable. Terminal; ignored once the
// flow moved past AwaitingLink.
func (m *Machine) LinkFailed(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateAwaitingLink {
		return
	}

	m.state = StateTokenInvalid
	m.lastErr = err
	m.logger.Info("recovery: link rejected", "error", err.Error())
}

// Submit sends the new password through the provider. Too-short passwords
// are rejected locally, without a provider call and without a transition.
// A provider rejection leaves the machine in Failed, from which Submit may
// be called again.
func (m *Machine) Submit(ctx context.Context, newPassword string) error {
	m.mu.Lock()
	if m.state != StateTokenValid && m.state != StateFailed {
		state := m.state
		m.mu.Unlock()
		return fmt.Errorf("recovery: cannot submit in state %q", state)
	}

	if len(newPassword) < model.MinPasswordLen {
		m.lastErr = model.ErrPasswordTooShort
		m.mu.Unlock()
		return model.ErrPasswordTooShort
	}

	m.state = StateSubmitting
	m.lastErr = nil
	m.mu.Unlock()

	err := m.provider.UpdatePassword(ctx, newPassword)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.state = StateFailed
		m.lastErr = err
		m.logger.Error("recovery: submission rejected", "error", err.Error())
		return fmt.Errorf("failed to update password: %w", err)
	}

	m.state = StateDone
	m.logger.Info("recovery: password replaced")
	return nil
}
