package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/coursedesk/coursedesk-server/internal/model"
)

// EnrollmentStore is a mock for model.EnrollmentStore.
type EnrollmentStore struct {
	mock.Mock
}

var _ model.EnrollmentStore = (*EnrollmentStore)(nil)

func (m *EnrollmentStore) Create(ctx context.Context, enrollment model.Enrollment) (model.Enrollment, error) {
	args := m.Called(ctx, enrollment)
	return args.Get(0).(model.Enrollment), args.Error(1)
}

func (m *EnrollmentStore) GetByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (model.Enrollment, error) {
	args := m.Called(ctx, userID, courseID)
	return args.Get(0).(model.Enrollment), args.Error(1)
}

func (m *EnrollmentStore) GetByUserID(ctx context.Context, userID uuid.UUID) ([]model.Enrollment, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Enrollment), args.Error(1)
}

func (m *EnrollmentStore) UpdateProgress(ctx context.Context, userID, courseID uuid.UUID, progress int) (model.Enrollment, error) {
	args := m.Called(ctx, userID, courseID, progress)
	return args.Get(0).(model.Enrollment), args.Error(1)
}
