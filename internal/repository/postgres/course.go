package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/coursedesk/coursedesk-server/internal/model"
)

var _ model.CourseStore = (*CourseRepository)(nil)

type CourseRepository struct {
	db *Connection
}

func NewCourseRepository(db *Connection) *CourseRepository {
	return &CourseRepository{
		db: db,
	}
}

func (r *CourseRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Course, error) {
	var course model.Course
	query := `SELECT id, title, description, image_url, instructor, duration, level, category,
					 price, rating, enrolled_count, created_at, updated_at
			  FROM courses WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&course.ID, &course.Title, &course.Description, &course.ImageURL,
		&course.Instructor, &course.Duration, &course.Level, &course.Category,
		&course.Price, &course.Rating, &course.EnrolledCount, &course.CreatedAt, &course.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Course{}, model.ErrNotFound
		}
		return model.Course{}, fmt.Errorf("failed to get course by id: %w", err)
	}

	return course, nil
}

func (r *CourseRepository) List(ctx context.Context) ([]model.Course, error) {
	query := `SELECT id, title, description, image_url, instructor, duration, level, category,
					 price, rating, enrolled_count, created_at, updated_at
			  FROM courses
			  ORDER BY rating DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	defer rows.Close()

	var courses []model.Course
	for rows.Next() {
		var course model.Course
		err := rows.Scan(
			&course.ID, &course.Title, &course.Description, &course.ImageURL,
			&course.Instructor, &course.Duration, &course.Level, &course.Category,
			&course.Price, &course.Rating, &course.EnrolledCount, &course.CreatedAt, &course.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return courses, nil
}

func (r *CourseRepository) ListModules(ctx context.Context, courseID uuid.UUID) ([]model.CourseModule, error) {
	query := `SELECT id, course_id, title, description, order_number, duration, is_preview
			  FROM course_modules WHERE course_id = $1
			  ORDER BY order_number ASC`

	rows, err := r.db.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list course modules: %w", err)
	}
	defer rows.Close()

	var modules []model.CourseModule
	for rows.Next() {
		var module model.CourseModule
		err := rows.Scan(
			&module.ID, &module.CourseID, &module.Title, &module.Description,
			&module.OrderNumber, &module.Duration, &module.IsPreview,
		)
		if err != nil {
			return nil, err
		}
		modules = append(modules, module)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return modules, nil
}

func (r *CourseRepository) ReadEnrolledCount(ctx context.Context, id uuid.UUID) (int, error) {
	var count int
	query := `SELECT enrolled_count FROM courses WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, model.ErrNotFound
		}
		return 0, fmt.Errorf("failed to read enrolled count: %w", err)
	}

	return count, nil
}

func (r *CourseRepository) WriteEnrolledCount(ctx context.Context, id uuid.UUID, count int) error {
	query := `UPDATE courses SET enrolled_count = $2, updated_at = NOW() WHERE id = $1`

	cmd, err := r.db.Exec(ctx, query, id, count)
	if err != nil {
		return fmt.Errorf("failed to write enrolled count: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}
