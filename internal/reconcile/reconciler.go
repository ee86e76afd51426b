// Package reconcile folds enrollment outcomes into a local per-course view
// so the presentation layer never has to interpret raw results itself.
package reconcile

import (
	"sync"

	"github.com/google/uuid"

	"github.com/coursedesk/coursedesk-server/internal/logger"
	"github.com/coursedesk/coursedesk-server/internal/model"
)

// CourseView is the reconciled state of one course for the current user.
//
// Enrolled is only ever set from a confirmed outcome, so it cannot report
// membership that does not exist. CountStale flags that the course's
// enrolled counter may lag behind reality; it is informational, not a
// failure. LastErr is set only for failed attempts and means the operation
// may be retried.
type CourseView struct {
	Enrolled   bool
	CountStale bool
	LastErr    error
}

// Reconciler accumulates enrollment outcomes. Safe for concurrent use.
type Reconciler struct {
	logger *logger.Logger

	mu     sync.Mutex
	closed bool
	views  map[uuid.UUID]CourseView
}

func New(logger *logger.Logger) *Reconciler {
	return &Reconciler{
		logger: logger,
		views:  make(map[uuid.UUID]CourseView),
	}
}

// Seed preloads membership from persisted enrollments, typically the result
// of listing the user's enrollments at startup.
func (r *Reconciler) Seed(enrollments []model.Enrollment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	for _, e := range enrollments {
		view := r.views[e.CourseID]
		view.Enrolled = true
		view.LastErr = nil
		r.views[e.CourseID] = view
	}
}

// Apply folds one enrollment result into the view for courseID.
//
// An already-enrolled outcome counts as success: the membership it reports
// is real, only the attempt was redundant. A failed outcome never marks
// membership and records the error for retry. Results arriving after Close
// are dropped.
func (r *Reconciler) Apply(courseID uuid.UUID, result model.EnrollResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		r.logger.Debug("reconciler: dropping late result", "course_id", courseID)
		return
	}

	view := r.views[courseID]
	switch result.Outcome {
	case model.OutcomeEnrolled:
		view.Enrolled = true
		view.CountStale = result.CounterUpdateFailed
		view.LastErr = nil
	case model.OutcomeAlreadyEnrolled:
		view.Enrolled = true
		view.LastErr = nil
	case model.OutcomeFailed:
		view.LastErr = result.Err
	default:
		r.logger.Error("reconciler: unknown outcome", "outcome", string(result.Outcome))
		return
	}
	r.views[courseID] = view
}

// View returns the reconciled state for a course. Unknown courses yield the
// zero view.
func (r *Reconciler) View(courseID uuid.UUID) CourseView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.views[courseID]
}

// IsEnrolled reports confirmed membership only.
func (r *Reconciler) IsEnrolled(courseID uuid.UUID) bool {
	return r.View(courseID).Enrolled
}

// Retryable reports whether the last attempt for the course failed in a way
// worth retrying.
func (r *Reconciler) Retryable(courseID uuid.UUID) bool {
	return r.View(courseID).LastErr != nil
}

// Close stops accepting results. Views remain readable.
func (r *Reconciler) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
}
