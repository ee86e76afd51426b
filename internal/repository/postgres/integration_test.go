//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/coursedesk/coursedesk-server/internal/model"
	"github.com/coursedesk/coursedesk-server/internal/repository/postgres"
)

func startPostgres(t *testing.T) *postgres.Connection {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("coursedesk"),
		tcpostgres.WithUsername("coursedesk"),
		tcpostgres.WithPassword("coursedesk"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// NewConnection runs the embedded migrations.
	db, err := postgres.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func createUser(t *testing.T, db *postgres.Connection, email string) model.User {
	t.Helper()
	now := time.Now()
	user, err := postgres.NewUserRepository(db).Create(context.Background(), model.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         "Test User",
		PasswordHash: []byte("$2a$04$fakehashfortests"),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	require.NoError(t, err)
	return user
}

func createCourse(t *testing.T, db *postgres.Connection) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := db.Exec(context.Background(),
		`INSERT INTO courses (id, title, description, instructor, duration, level, category, price, rating, enrolled_count)
		 VALUES ($1, 'Go Fundamentals', 'desc', 'Rob', '6h', 'beginner', 'programming', 4900, 4.8, 0)`,
		id,
	)
	require.NoError(t, err)
	return id
}

func TestEnrollmentRepository_Integration(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()
	repo := postgres.NewEnrollmentRepository(db)

	t.Run("duplicate insert maps to ErrDuplicateEnrollment", func(t *testing.T) {
		user := createUser(t, db, "dup@test.dev")
		courseID := createCourse(t, db)

		first, err := repo.Create(ctx, model.Enrollment{ID: uuid.New(), UserID: user.ID, CourseID: courseID})
		require.NoError(t, err)
		assert.Equal(t, 0, first.Progress)
		assert.False(t, first.Completed)

		_, err = repo.Create(ctx, model.Enrollment{ID: uuid.New(), UserID: user.ID, CourseID: courseID})
		require.ErrorIs(t, err, model.ErrDuplicateEnrollment)

		// Exactly one row survives.
		enrollments, err := repo.GetByUserID(ctx, user.ID)
		require.NoError(t, err)
		assert.Len(t, enrollments, 1)
	})

	t.Run("racing inserts produce exactly one row", func(t *testing.T) {
		user := createUser(t, db, "race@test.dev")
		courseID := createCourse(t, db)

		const attempts = 8
		var wg sync.WaitGroup
		var mu sync.Mutex
		var created, duplicate int

		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.Create(ctx, model.Enrollment{ID: uuid.New(), UserID: user.ID, CourseID: courseID})
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					created++
				case errors.Is(err, model.ErrDuplicateEnrollment):
					duplicate++
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, created)
		assert.Equal(t, attempts-1, duplicate)

		enrollments, err := repo.GetByUserID(ctx, user.ID)
		require.NoError(t, err)
		assert.Len(t, enrollments, 1)
	})

	t.Run("update progress derives completion", func(t *testing.T) {
		user := createUser(t, db, "progress@test.dev")
		courseID := createCourse(t, db)

		_, err := repo.Create(ctx, model.Enrollment{ID: uuid.New(), UserID: user.ID, CourseID: courseID})
		require.NoError(t, err)

		updated, err := repo.UpdateProgress(ctx, user.ID, courseID, 40)
		require.NoError(t, err)
		assert.Equal(t, 40, updated.Progress)
		assert.False(t, updated.Completed)

		updated, err = repo.UpdateProgress(ctx, user.ID, courseID, 100)
		require.NoError(t, err)
		assert.True(t, updated.Completed)
	})

	t.Run("update progress for missing enrollment", func(t *testing.T) {
		user := createUser(t, db, "missing@test.dev")
		_, err := repo.UpdateProgress(ctx, user.ID, uuid.New(), 10)
		require.ErrorIs(t, err, model.ErrNotFound)
	})
}

func TestCourseRepository_Integration(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()
	repo := postgres.NewCourseRepository(db)

	courseID := createCourse(t, db)

	t.Run("enrolled count read-then-write", func(t *testing.T) {
		count, err := repo.ReadEnrolledCount(ctx, courseID)
		require.NoError(t, err)
		assert.Equal(t, 0, count)

		require.NoError(t, repo.WriteEnrolledCount(ctx, courseID, count+1))

		count, err = repo.ReadEnrolledCount(ctx, courseID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("get by id", func(t *testing.T) {
		course, err := repo.GetByID(ctx, courseID)
		require.NoError(t, err)
		assert.Equal(t, "Go Fundamentals", course.Title)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := repo.GetByID(ctx, uuid.New())
		require.ErrorIs(t, err, model.ErrNotFound)
	})
}

func TestUserRepository_Integration(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()
	repo := postgres.NewUserRepository(db)

	t.Run("duplicate email maps to ErrEmailTaken", func(t *testing.T) {
		createUser(t, db, "taken@test.dev")
		now := time.Now()
		_, err := repo.Create(ctx, model.User{
			ID: uuid.New(), Email: "taken@test.dev", Name: "Other",
			PasswordHash: []byte("x"), CreatedAt: now, UpdatedAt: now,
		})
		require.ErrorIs(t, err, model.ErrEmailTaken)
	})

	t.Run("update password", func(t *testing.T) {
		user := createUser(t, db, "pw@test.dev")

		require.NoError(t, repo.UpdatePassword(ctx, user.ID, []byte("new-hash")))

		loaded, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, []byte("new-hash"), loaded.PasswordHash)
	})

	t.Run("update password for unknown user", func(t *testing.T) {
		require.ErrorIs(t, repo.UpdatePassword(ctx, uuid.New(), []byte("x")), model.ErrNotFound)
	})
}
