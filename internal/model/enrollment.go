package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EnrollmentStore defines persistence operations for enrollments.
//
// Create must surface a (user_id, course_id) uniqueness violation as
// ErrDuplicateEnrollment: the constraint at the data layer is the sole
// arbiter of duplicates, clients never pre-check-then-insert.
type EnrollmentStore interface {
	Create(ctx context.Context, enrollment Enrollment) (Enrollment, error)
	GetByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (Enrollment, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]Enrollment, error)
	UpdateProgress(ctx context.Context, userID, courseID uuid.UUID, progress int) (Enrollment, error)
}

// Enrollment links one user to one course they registered for.
// At most one row exists per (user, course) pair.
type Enrollment struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	CourseID  uuid.UUID
	Progress  int
	Completed bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EnrollOutcome classifies the result of an enroll attempt.
type EnrollOutcome string

const (
	// OutcomeEnrolled means a new enrollment row was created.
	OutcomeEnrolled EnrollOutcome = "enrolled"
	// OutcomeAlreadyEnrolled means the row already existed; not a fault.
	OutcomeAlreadyEnrolled EnrollOutcome = "already_enrolled"
	// OutcomeFailed means the insert failed for a reason other than the
	// uniqueness constraint.
	OutcomeFailed EnrollOutcome = "failed"
)

// EnrollResult is the full result of an enroll attempt.
//
// CounterUpdateFailed is set when the enrollment row was created but the
// follow-up enrolled_count increment failed; the enrollment itself stands.
type EnrollResult struct {
	Outcome             EnrollOutcome
	Enrollment          Enrollment
	CounterUpdateFailed bool
	Err                 error
}
