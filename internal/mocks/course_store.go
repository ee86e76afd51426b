package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/coursedesk/coursedesk-server/internal/model"
)

// CourseStore is a mock for model.CourseStore.
type CourseStore struct {
	mock.Mock
}

var _ model.CourseStore = (*CourseStore)(nil)

func (m *CourseStore) GetByID(ctx context.Context, id uuid.UUID) (model.Course, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Course), args.Error(1)
}

func (m *CourseStore) List(ctx context.Context) ([]model.Course, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Course), args.Error(1)
}

func (m *CourseStore) ListModules(ctx context.Context, courseID uuid.UUID) ([]model.CourseModule, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CourseModule), args.Error(1)
}

func (m *CourseStore) ReadEnrolledCount(ctx context.Context, id uuid.UUID) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *CourseStore) WriteEnrolledCount(ctx context.Context, id uuid.UUID, count int) error {
	args := m.Called(ctx, id, count)
	return args.Error(0)
}
