package model

import (
	"context"

	"github.com/google/uuid"
)

// SessionState is the presence flag of a session snapshot.
type SessionState string

const (
	// SessionPending means the initial resolution has not completed yet.
	SessionPending SessionState = "pending"
	// SessionAuthenticated means a valid session exists.
	SessionAuthenticated SessionState = "authenticated"
	// SessionUnauthenticated means no session exists.
	SessionUnauthenticated SessionState = "unauthenticated"
)

// Identity is the authenticated principal.
type Identity struct {
	UserID uuid.UUID
	// Label is the email or display name, used only for presentation.
	Label string
}

// Session is a snapshot of the current authentication context.
//
// Restricted marks a session established from a password-recovery token:
// valid for a password update, never for general protected access.
//
// Seq is the provider's monotonically increasing resolution number. A
// snapshot with a lower Seq is stale relative to one with a higher Seq and
// must never overwrite it.
type Session struct {
	State      SessionState
	Identity   *Identity
	Token      string
	Restricted bool
	Seq        uint64
}

// Authenticated reports whether the session grants general protected access.
func (s Session) Authenticated() bool {
	return s.State == SessionAuthenticated && !s.Restricted
}

// AuthProvider is the contract the workflow core requires from the external
// auth service. CurrentSession and the change subscription can race; both
// deliver Seq-stamped snapshots so consumers can merge them idempotently.
type AuthProvider interface {
	CurrentSession(ctx context.Context) (Session, error)
	OnSessionChange(handler func(Session)) (unsubscribe func())
	SignOut(ctx context.Context) error
	// UpdatePassword is valid only within a recovery-authorized session.
	UpdatePassword(ctx context.Context, newPassword string) error
}

// MinPasswordLen is the minimum password length enforced locally before any
// provider call.
const MinPasswordLen = 6
