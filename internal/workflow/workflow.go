// Package workflow composes the client-side enrollment core over an
// in-process provider: the session store feeding the gate and the recovery
// machine, and the reconciler folding enrollment outcomes into per-course
// views.
package workflow

import (
	"context"

	"github.com/google/uuid"

	"github.com/coursedesk/coursedesk-server/internal/logger"
	"github.com/coursedesk/coursedesk-server/internal/model"
	"github.com/coursedesk/coursedesk-server/internal/provider/local"
	"github.com/coursedesk/coursedesk-server/internal/reconcile"
	"github.com/coursedesk/coursedesk-server/internal/recovery"
	"github.com/coursedesk/coursedesk-server/internal/service"
	"github.com/coursedesk/coursedesk-server/internal/session"
)

// Workflow wires one user's enrollment flow end to end. Operations run
// against the same services the HTTP surface uses, with no transport in
// between.
type Workflow struct {
	provider   *local.Provider
	enrollment *service.Enrollment
	store      *session.Store
	gate       *session.Gate
	recovery   *recovery.Machine
	reconciler *reconcile.Reconciler
	logger     *logger.Logger

	unsubscribe func()
}

func New(provider *local.Provider, enrollment *service.Enrollment, logger *logger.Logger) *Workflow {
	store := session.NewStore(provider, logger)
	return &Workflow{
		provider:   provider,
		enrollment: enrollment,
		store:      store,
		gate:       session.NewGate(store),
		recovery:   recovery.NewMachine(provider, logger),
		reconciler: reconcile.New(logger),
		logger:     logger,
	}
}

// Start resolves the initial session and begins feeding every session
// transition to the recovery machine.
func (w *Workflow) Start(ctx context.Context) error {
	w.unsubscribe = w.store.Subscribe(w.recovery.HandleSession)
	return w.store.Start(ctx)
}

// Session returns the latest merged snapshot.
func (w *Workflow) Session() model.Session {
	return w.store.Current()
}

// Decide delegates to the gate for the given view.
func (w *Workflow) Decide(view session.ViewKind) session.Decision {
	return w.gate.Decide(view)
}

// SignIn authenticates and seeds the reconciler with the user's persisted
// enrollments. Seeding is best-effort; a listing failure leaves the views
// empty rather than failing the sign-in.
func (w *Workflow) SignIn(ctx context.Context, email, password string) error {
	if _, err := w.provider.SignIn(ctx, email, password); err != nil {
		return err
	}

	snapshot := w.store.Current()
	if snapshot.Identity == nil {
		return nil
	}
	enrollments, err := w.enrollment.ListForUser(ctx, snapshot.Identity.UserID)
	if err != nil {
		w.logger.Warn("workflow: could not preload enrollments", "error", err.Error())
		return nil
	}
	w.reconciler.Seed(enrollments)
	return nil
}

// SignOut delegates to the store. Reconciled views survive a sign-out; they
// describe memberships, which outlive the session.
func (w *Workflow) SignOut(ctx context.Context) error {
	return w.store.SignOut(ctx)
}

// Enroll runs the gate, performs the enrollment and folds the outcome into
// the reconciled view for the course. The returned view reflects the attempt
// either way; the error is non-nil only for a failed outcome.
func (w *Workflow) Enroll(ctx context.Context, courseID uuid.UUID) (reconcile.CourseView, error) {
	if w.gate.Decide(session.ViewProtected) != session.DecisionAllow {
		return w.reconciler.View(courseID), model.ErrNotAuthenticated
	}

	identity := w.store.Current().Identity
	result := w.enrollment.Enroll(ctx, identity.UserID, courseID)
	w.reconciler.Apply(courseID, result)
	return w.reconciler.View(courseID), result.Err
}

// View returns the reconciled state for a course.
func (w *Workflow) View(courseID uuid.UUID) reconcile.CourseView {
	return w.reconciler.View(courseID)
}

// BeginRecovery consumes an emailed recovery link. The restricted session it
// establishes reaches the machine through the store subscription; a rejected
// link marks the machine's flow invalid.
func (w *Workflow) BeginRecovery(ctx context.Context, recoveryToken string) error {
	if _, err := w.provider.ConsumeRecoveryLink(ctx, recoveryToken); err != nil {
		w.recovery.LinkFailed(err)
		return err
	}
	return nil
}

// RecoveryState exposes the machine's current phase.
func (w *Workflow) RecoveryState() recovery.State {
	return w.recovery.State()
}

// SubmitNewPassword runs the gate for the password-update view and submits
// the new password through the machine.
func (w *Workflow) SubmitNewPassword(ctx context.Context, newPassword string) error {
	if w.gate.Decide(session.ViewPasswordUpdate) != session.DecisionAllow {
		return model.ErrRecoveryNotAuthorized
	}
	return w.recovery.Submit(ctx, newPassword)
}

// Close detaches from the provider and stops accepting enrollment results.
func (w *Workflow) Close() {
	if w.unsubscribe != nil {
		w.unsubscribe()
	}
	w.reconciler.Close()
	w.store.Close()
}
