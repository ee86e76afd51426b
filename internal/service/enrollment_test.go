package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/coursedesk/coursedesk-server/internal/mocks"
	"github.com/coursedesk/coursedesk-server/internal/model"
	"github.com/coursedesk/coursedesk-server/internal/service"
	"github.com/coursedesk/coursedesk-server/internal/testutil"
)

func newEnrollmentService(t *testing.T) (*service.Enrollment, *mocks.EnrollmentStore, *mocks.CourseStore) {
	t.Helper()
	enrollments := new(mocks.EnrollmentStore)
	courses := new(mocks.CourseStore)
	svc := service.NewEnrollment(enrollments, courses, testutil.MakeNoopLogger())
	return svc, enrollments, courses
}

func TestEnrollment_Enroll(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	courseID := uuid.New()

	t.Run("nil user is rejected without touching the store", func(t *testing.T) {
		svc, enrollments, courses := newEnrollmentService(t)

		result := svc.Enroll(ctx, uuid.Nil, courseID)

		assert.Equal(t, model.OutcomeFailed, result.Outcome)
		assert.ErrorIs(t, result.Err, model.ErrNotAuthenticated)
		enrollments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		courses.AssertNotCalled(t, "WriteEnrolledCount", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("successful enrollment bumps the counter", func(t *testing.T) {
		svc, enrollments, courses := newEnrollmentService(t)

		enrollments.On("Create", ctx, mock.MatchedBy(func(e model.Enrollment) bool {
			return e.UserID == userID && e.CourseID == courseID && e.Progress == 0 && !e.Completed
		})).Return(model.Enrollment{ID: uuid.New(), UserID: userID, CourseID: courseID}, nil)
		courses.On("ReadEnrolledCount", ctx, courseID).Return(41, nil)
		courses.On("WriteEnrolledCount", ctx, courseID, 42).Return(nil)

		result := svc.Enroll(ctx, userID, courseID)

		assert.Equal(t, model.OutcomeEnrolled, result.Outcome)
		assert.False(t, result.CounterUpdateFailed)
		assert.NoError(t, result.Err)
		assert.Equal(t, userID, result.Enrollment.UserID)
		enrollments.AssertExpectations(t)
		courses.AssertExpectations(t)
	})

	t.Run("duplicate insert maps to already enrolled", func(t *testing.T) {
		svc, enrollments, courses := newEnrollmentService(t)

		enrollments.On("Create", ctx, mock.Anything).
			Return(model.Enrollment{}, model.ErrDuplicateEnrollment)

		result := svc.Enroll(ctx, userID, courseID)

		assert.Equal(t, model.OutcomeAlreadyEnrolled, result.Outcome)
		assert.NoError(t, result.Err)
		courses.AssertNotCalled(t, "ReadEnrolledCount", mock.Anything, mock.Anything)
	})

	t.Run("insert failure is surfaced", func(t *testing.T) {
		svc, enrollments, _ := newEnrollmentService(t)

		storeErr := errors.New("connection reset")
		enrollments.On("Create", ctx, mock.Anything).Return(model.Enrollment{}, storeErr)

		result := svc.Enroll(ctx, userID, courseID)

		assert.Equal(t, model.OutcomeFailed, result.Outcome)
		assert.ErrorIs(t, result.Err, storeErr)
	})

	t.Run("counter read failure degrades without failing the enrollment", func(t *testing.T) {
		svc, enrollments, courses := newEnrollmentService(t)

		enrollments.On("Create", ctx, mock.Anything).
			Return(model.Enrollment{ID: uuid.New(), UserID: userID, CourseID: courseID}, nil)
		courses.On("ReadEnrolledCount", ctx, courseID).Return(0, errors.New("timeout"))

		result := svc.Enroll(ctx, userID, courseID)

		assert.Equal(t, model.OutcomeEnrolled, result.Outcome)
		assert.True(t, result.CounterUpdateFailed)
		assert.NoError(t, result.Err)
		courses.AssertNotCalled(t, "WriteEnrolledCount", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("counter write failure degrades without failing the enrollment", func(t *testing.T) {
		svc, enrollments, courses := newEnrollmentService(t)

		enrollments.On("Create", ctx, mock.Anything).
			Return(model.Enrollment{ID: uuid.New(), UserID: userID, CourseID: courseID}, nil)
		courses.On("ReadEnrolledCount", ctx, courseID).Return(10, nil)
		courses.On("WriteEnrolledCount", ctx, courseID, 11).Return(errors.New("timeout"))

		result := svc.Enroll(ctx, userID, courseID)

		assert.Equal(t, model.OutcomeEnrolled, result.Outcome)
		assert.True(t, result.CounterUpdateFailed)
	})
}

func TestEnrollment_IsEnrolled(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	courseID := uuid.New()

	t.Run("existing row", func(t *testing.T) {
		svc, enrollments, _ := newEnrollmentService(t)

		enrollments.On("GetByUserAndCourse", ctx, userID, courseID).
			Return(model.Enrollment{UserID: userID, CourseID: courseID}, nil)

		enrolled, err := svc.IsEnrolled(ctx, userID, courseID)
		require.NoError(t, err)
		assert.True(t, enrolled)
	})

	t.Run("missing row is not an error", func(t *testing.T) {
		svc, enrollments, _ := newEnrollmentService(t)

		enrollments.On("GetByUserAndCourse", ctx, userID, courseID).
			Return(model.Enrollment{}, model.ErrNotFound)

		enrolled, err := svc.IsEnrolled(ctx, userID, courseID)
		require.NoError(t, err)
		assert.False(t, enrolled)
	})

	t.Run("store failure is surfaced", func(t *testing.T) {
		svc, enrollments, _ := newEnrollmentService(t)

		enrollments.On("GetByUserAndCourse", ctx, userID, courseID).
			Return(model.Enrollment{}, errors.New("timeout"))

		_, err := svc.IsEnrolled(ctx, userID, courseID)
		require.Error(t, err)
	})
}

func TestEnrollment_UpdateProgress(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	courseID := uuid.New()

	t.Run("nil user is rejected", func(t *testing.T) {
		svc, enrollments, _ := newEnrollmentService(t)

		_, err := svc.UpdateProgress(ctx, uuid.Nil, courseID, 50)
		require.ErrorIs(t, err, model.ErrNotAuthenticated)
		enrollments.AssertNotCalled(t, "UpdateProgress", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("progress is clamped to bounds", func(t *testing.T) {
		tests := []struct {
			name  string
			given int
			want  int
		}{
			{name: "negative", given: -5, want: 0},
			{name: "in range", given: 73, want: 73},
			{name: "over 100", given: 250, want: 100},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				svc, enrollments, _ := newEnrollmentService(t)

				enrollments.On("UpdateProgress", ctx, userID, courseID, tt.want).
					Return(model.Enrollment{Progress: tt.want, Completed: tt.want == 100}, nil)

				enrollment, err := svc.UpdateProgress(ctx, userID, courseID, tt.given)
				require.NoError(t, err)
				assert.Equal(t, tt.want, enrollment.Progress)
				enrollments.AssertExpectations(t)
			})
		}
	})

	t.Run("unknown enrollment is surfaced", func(t *testing.T) {
		svc, enrollments, _ := newEnrollmentService(t)

		enrollments.On("UpdateProgress", ctx, userID, courseID, 10).
			Return(model.Enrollment{}, model.ErrNotFound)

		_, err := svc.UpdateProgress(ctx, userID, courseID, 10)
		require.ErrorIs(t, err, model.ErrNotFound)
	})
}

func TestEnrollment_ListForUser(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	svc, enrollments, _ := newEnrollmentService(t)

	want := []model.Enrollment{{UserID: userID}, {UserID: userID}}
	enrollments.On("GetByUserID", ctx, userID).Return(want, nil)

	got, err := svc.ListForUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
