package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/coursedesk/coursedesk-server/internal/model"
)

// Postgres error code for unique_violation.
const uniqueViolationCode = "23505"

var _ model.EnrollmentStore = (*EnrollmentRepository)(nil)

type EnrollmentRepository struct {
	db *Connection
}

func NewEnrollmentRepository(db *Connection) *EnrollmentRepository {
	return &EnrollmentRepository{
		db: db,
	}
}

// Create inserts an enrollment row. The user_enrollments_user_course_key
// constraint is the sole arbiter of duplicates: a unique violation comes back
// as model.ErrDuplicateEnrollment and no pre-check is performed here.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment model.Enrollment) (model.Enrollment, error) {
	query := `INSERT INTO user_enrollments (id, user_id, course_id, progress, completed)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id, user_id, course_id, progress, completed, created_at, updated_at`

	var saved model.Enrollment
	err := r.db.QueryRow(ctx, query,
		enrollment.ID, enrollment.UserID, enrollment.CourseID,
		enrollment.Progress, enrollment.Completed,
	).Scan(
		&saved.ID, &saved.UserID, &saved.CourseID,
		&saved.Progress, &saved.Completed, &saved.CreatedAt, &saved.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return model.Enrollment{}, model.ErrDuplicateEnrollment
		}
		return model.Enrollment{}, fmt.Errorf("failed to create enrollment: %w", err)
	}

	return saved, nil
}

func (r *EnrollmentRepository) GetByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (model.Enrollment, error) {
	var enrollment model.Enrollment
	query := `SELECT id, user_id, course_id, progress, completed, created_at, updated_at
			  FROM user_enrollments WHERE user_id = $1 AND course_id = $2`

	err := r.db.QueryRow(ctx, query, userID, courseID).Scan(
		&enrollment.ID, &enrollment.UserID, &enrollment.CourseID,
		&enrollment.Progress, &enrollment.Completed, &enrollment.CreatedAt, &enrollment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Enrollment{}, model.ErrNotFound
		}
		return model.Enrollment{}, fmt.Errorf("failed to get enrollment: %w", err)
	}

	return enrollment, nil
}

func (r *EnrollmentRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]model.Enrollment, error) {
	query := `SELECT id, user_id, course_id, progress, completed, created_at, updated_at
			  FROM user_enrollments WHERE user_id = $1
			  ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get enrollments by user id: %w", err)
	}
	defer rows.Close()

	var enrollments []model.Enrollment
	for rows.Next() {
		var enrollment model.Enrollment
		err := rows.Scan(
			&enrollment.ID, &enrollment.UserID, &enrollment.CourseID,
			&enrollment.Progress, &enrollment.Completed, &enrollment.CreatedAt, &enrollment.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		enrollments = append(enrollments, enrollment)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return enrollments, nil
}

func (r *EnrollmentRepository) UpdateProgress(ctx context.Context, userID, courseID uuid.UUID, progress int) (model.Enrollment, error) {
	query := `UPDATE user_enrollments
			  SET progress = $3, completed = $3 >= 100, updated_at = NOW()
			  WHERE user_id = $1 AND course_id = $2
			  RETURNING id, user_id, course_id, progress, completed, created_at, updated_at`

	var enrollment model.Enrollment
	err := r.db.QueryRow(ctx, query, userID, courseID, progress).Scan(
		&enrollment.ID, &enrollment.UserID, &enrollment.CourseID,
		&enrollment.Progress, &enrollment.Completed, &enrollment.CreatedAt, &enrollment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Enrollment{}, model.ErrNotFound
		}
		return model.Enrollment{}, fmt.Errorf("failed to update progress: %w", err)
	}

	return enrollment, nil
}
