package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CourseStore defines persistence operations for the course catalog.
//
// ReadEnrolledCount and WriteEnrolledCount expose the denormalized counter as
// two independent operations on purpose: the counter is maintained with a
// best-effort read-then-write sequence, not a transaction, and is allowed to
// lag behind the enrollments table.
type CourseStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (Course, error)
	List(ctx context.Context) ([]Course, error)
	ListModules(ctx context.Context, courseID uuid.UUID) ([]CourseModule, error)
	ReadEnrolledCount(ctx context.Context, id uuid.UUID) (int, error)
	WriteEnrolledCount(ctx context.Context, id uuid.UUID, count int) error
}

// Course is a catalog entity.
type Course struct {
	ID            uuid.UUID
	Title         string
	Description   string
	ImageURL      string
	Instructor    string
	Duration      string
	Level         string
	Category      string
	Price         int64
	Rating        float64
	EnrolledCount int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CourseModule is one unit of a course curriculum.
type CourseModule struct {
	ID          uuid.UUID
	CourseID    uuid.UUID
	Title       string
	Description string
	OrderNumber int
	Duration    string
	IsPreview   bool
}
