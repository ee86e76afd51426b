package service

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/coursedesk/coursedesk-server/internal/logger"
	"github.com/coursedesk/coursedesk-server/internal/model"
)

// Catalog serves course reads and course cover assets.
type Catalog struct {
	courseStore model.CourseStore
	assets      model.AssetStorage
	logger      *logger.Logger
}

func NewCatalog(courseStore model.CourseStore, assets model.AssetStorage, logger *logger.Logger) *Catalog {
	return &Catalog{
		courseStore: courseStore,
		assets:      assets,
		logger:      logger,
	}
}

func (s *Catalog) GetCourse(ctx context.Context, id uuid.UUID) (model.Course, error) {
	course, err := s.courseStore.GetByID(ctx, id)
	if err != nil {
		return model.Course{}, fmt.Errorf("failed to get course: %w", err)
	}
	return course, nil
}

func (s *Catalog) ListCourses(ctx context.Context) ([]model.Course, error) {
	courses, err := s.courseStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

func (s *Catalog) ListModules(ctx context.Context, courseID uuid.UUID) ([]model.CourseModule, error) {
	modules, err := s.courseStore.ListModules(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}
	return modules, nil
}

func coverKey(courseID uuid.UUID) string {
	return fmt.Sprintf("courses/%s/cover", courseID)
}

// CourseCover streams the stored cover image for a course.
// Returns model.ErrNotFound when no cover was uploaded.
func (s *Catalog) CourseCover(ctx context.Context, courseID uuid.UUID) (io.ReadCloser, error) {
	if _, err := s.courseStore.GetByID(ctx, courseID); err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	key := coverKey(courseID)
	exists, err := s.assets.Exists(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to check cover asset: %w", err)
	}
	if !exists {
		return nil, model.ErrNotFound
	}

	reader, err := s.assets.Download(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to download cover asset: %w", err)
	}

	return reader, nil
}

// UploadCourseCover stores a cover image for a course.
func (s *Catalog) UploadCourseCover(ctx context.Context, courseID uuid.UUID, reader io.Reader) error {
	if _, err := s.courseStore.GetByID(ctx, courseID); err != nil {
		return fmt.Errorf("failed to get course: %w", err)
	}

	if err := s.assets.Upload(ctx, coverKey(courseID), reader); err != nil {
		return fmt.Errorf("failed to upload cover asset: %w", err)
	}

	s.logger.Info("Catalog service: cover uploaded", "course_id", courseID)

	return nil
}
