package model

import "errors"

var (
	// ErrNotFound is returned by stores when no row matches.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEnrollment is returned by EnrollmentStore.Create when the
	// (user, course) uniqueness constraint rejects the insert. Callers fold
	// it into the "already enrolled" outcome rather than treating it as a fault.
	ErrDuplicateEnrollment = errors.New("enrollment already exists")
	// ErrEmailTaken is returned on sign-up with an already registered email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned on sign-in with a wrong email/password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotAuthenticated is returned when an operation requires a fully
	// authenticated, non-restricted session and none is available.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrRecoveryNotAuthorized is returned when a password update is attempted
	// outside a recovery-authorized session.
	ErrRecoveryNotAuthorized = errors.New("session is not authorized for password recovery")
	// ErrPasswordTooShort is returned before any provider call when a new
	// password fails the local length precondition.
	ErrPasswordTooShort = errors.New("password is too short")
)
