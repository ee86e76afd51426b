package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/coursedesk/coursedesk-server/internal/logger"
	"github.com/coursedesk/coursedesk-server/internal/model"
)

// Enrollment performs the enroll-in-course operation and related reads.
type Enrollment struct {
	enrollmentStore model.EnrollmentStore
	courseStore     model.CourseStore
	logger          *logger.Logger
}

func NewEnrollment(
	enrollmentStore model.EnrollmentStore,
	courseStore model.CourseStore,
	logger *logger.Logger,
) *Enrollment {
	return &Enrollment{
		enrollmentStore: enrollmentStore,
		courseStore:     courseStore,
		logger:          logger,
	}
}

// Enroll registers userID in courseID.
//
// The insert is attempted unconditionally; the data layer's uniqueness
// constraint decides duplicates, so two racing attempts for the same pair
// produce exactly one row, one OutcomeEnrolled and one OutcomeAlreadyEnrolled.
//
// After a successful insert the course's enrolled_count is bumped with a
// read-then-write. That counter is a denormalized read optimization, not the
// source of truth, and the update is best-effort: when it fails the
// enrollment stands and the result carries CounterUpdateFailed. A stricter
// alternative is to drop the column and COUNT(*) the enrollments table at
// read time, trading a query per read for no drift at all.
func (s *Enrollment) Enroll(ctx context.Context, userID, courseID uuid.UUID) model.EnrollResult {
	if userID == uuid.Nil {
		return model.EnrollResult{Outcome: model.OutcomeFailed, Err: model.ErrNotAuthenticated}
	}

	s.logger.Debug("Enrollment service: enrolling",
		"user_id", userID,
		"course_id", courseID)

	now := time.Now()
	enrollment, err := s.enrollmentStore.Create(ctx, model.Enrollment{
		ID:        uuid.New(),
		UserID:    userID,
		CourseID:  courseID,
		Progress:  0,
		Completed: false,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if errors.Is(err, model.ErrDuplicateEnrollment) {
		s.logger.Info("Enrollment service: already enrolled",
			"user_id", userID,
			"course_id", courseID)
		return model.EnrollResult{Outcome: model.OutcomeAlreadyEnrolled}
	}
	if err != nil {
		s.logger.Error("Enrollment service: insert failed",
			"user_id", userID,
			"course_id", courseID,
			"error", err.Error())
		return model.EnrollResult{Outcome: model.OutcomeFailed, Err: err}
	}

	result := model.EnrollResult{Outcome: model.OutcomeEnrolled, Enrollment: enrollment}

	if err := s.bumpEnrolledCount(ctx, courseID); err != nil {
		// The enrollment row is committed; only the counter lags.
		s.logger.Warn("Enrollment service: counter update failed",
			"course_id", courseID,
			"error", err.Error())
		result.CounterUpdateFailed = true
	}

	s.logger.Info("Enrollment service: enrolled",
		"user_id", userID,
		"course_id", courseID,
		"counter_degraded", result.CounterUpdateFailed)

	return result
}

// bumpEnrolledCount is a non-transactional read-increment-write. Concurrent
// bumps may lose an increment; that bounded inaccuracy is accepted.
func (s *Enrollment) bumpEnrolledCount(ctx context.Context, courseID uuid.UUID) error {
	count, err := s.courseStore.ReadEnrolledCount(ctx, courseID)
	if err != nil {
		return fmt.Errorf("failed to read enrolled count: %w", err)
	}
	if err := s.courseStore.WriteEnrolledCount(ctx, courseID, count+1); err != nil {
		return fmt.Errorf("failed to write enrolled count: %w", err)
	}
	return nil
}

// IsEnrolled reports whether a (user, course) enrollment row exists.
func (s *Enrollment) IsEnrolled(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	_, err := s.enrollmentStore.GetByUserAndCourse(ctx, userID, courseID)
	if errors.Is(err, model.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get enrollment: %w", err)
	}
	return true, nil
}

// ListForUser returns all enrollments for a user, newest first.
func (s *Enrollment) ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Enrollment, error) {
	enrollments, err := s.enrollmentStore.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	return enrollments, nil
}

// UpdateProgress sets the user's progress in a course, clamped to 0-100.
// Completion is derived at the data layer when progress reaches 100.
func (s *Enrollment) UpdateProgress(ctx context.Context, userID, courseID uuid.UUID, progress int) (model.Enrollment, error) {
	if userID == uuid.Nil {
		return model.Enrollment{}, model.ErrNotAuthenticated
	}

	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}

	enrollment, err := s.enrollmentStore.UpdateProgress(ctx, userID, courseID, progress)
	if err != nil {
		return model.Enrollment{}, fmt.Errorf("failed to update progress: %w", err)
	}

	return enrollment, nil
}
