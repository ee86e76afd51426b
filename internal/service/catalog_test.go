package service_test

import (
	"context"
	"io"
	"strings"
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

func newCatalogService(t *testing.T) (*service.Catalog, *mocks.CourseStore, *mocks.AssetStorage) {
	t.Helper()
	courses := new(mocks.CourseStore)
	assets := new(mocks.AssetStorage)
	svc := service.NewCatalog(courses, assets, testutil.MakeNoopLogger())
	return svc, courses, assets
}

func TestCatalog_GetCourse(t *testing.T) {
	ctx := context.Background()
	courseID := uuid.New()

	t.Run("found", func(t *testing.T) {
		svc, courses, _ := newCatalogService(t)

		courses.On("GetByID", ctx, courseID).
			Return(model.Course{ID: courseID, Title: "Go Fundamentals"}, nil)

		course, err := svc.GetCourse(ctx, courseID)
		require.NoError(t, err)
		assert.Equal(t, "Go Fundamentals", course.Title)
	})

	t.Run("not found", func(t *testing.T) {
		svc, courses, _ := newCatalogService(t)

		courses.On("GetByID", ctx, courseID).Return(model.Course{}, model.ErrNotFound)

		_, err := svc.GetCourse(ctx, courseID)
		require.ErrorIs(t, err, model.ErrNotFound)
	})
}

func TestCatalog_ListModules(t *testing.T) {
	ctx := context.Background()
	courseID := uuid.New()

	svc, courses, _ := newCatalogService(t)

	want := []model.CourseModule{
		{CourseID: courseID, OrderNumber: 1, Title: "Intro"},
		{CourseID: courseID, OrderNumber: 2, Title: "Types"},
	}
	courses.On("ListModules", ctx, courseID).Return(want, nil)

	got, err := svc.ListModules(ctx, courseID)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestCatalog_CourseCover(t *testing.T) {
	ctx := context.Background()
	courseID := uuid.New()
	key := "courses/" + courseID.String() + "/cover"

	t.Run("streams existing cover", func(t *testing.T) {
		svc, courses, assets := newCatalogService(t)

		courses.On("GetByID", ctx, courseID).Return(model.Course{ID: courseID}, nil)
		assets.On("Exists", ctx, key).Return(true, nil)
		assets.On("Download", ctx, key).
			Return(io.NopCloser(strings.NewReader("png-bytes")), nil)

		reader, err := svc.CourseCover(ctx, courseID)
		require.NoError(t, err)
		defer reader.Close()

		data, err := io.ReadAll(reader)
		require.NoError(t, err)
		assert.Equal(t, "png-bytes", string(data))
	})

	t.Run("missing cover yields not found", func(t *testing.T) {
		svc, courses, assets := newCatalogService(t)

		courses.On("GetByID", ctx, courseID).Return(model.Course{ID: courseID}, nil)
		assets.On("Exists", ctx, key).Return(false, nil)

		_, err := svc.CourseCover(ctx, courseID)
		require.ErrorIs(t, err, model.ErrNotFound)
		assets.AssertNotCalled(t, "Download", mock.Anything, mock.Anything)
	})

	t.Run("unknown course yields not found without storage call", func(t *testing.T) {
		svc, courses, assets := newCatalogService(t)

		courses.On("GetByID", ctx, courseID).Return(model.Course{}, model.ErrNotFound)

		_, err := svc.CourseCover(ctx, courseID)
		require.ErrorIs(t, err, model.ErrNotFound)
		assets.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything)
	})
}

func TestCatalog_UploadCourseCover(t *testing.T) {
	ctx := context.Background()
	courseID := uuid.New()
	key := "courses/" + courseID.String() + "/cover"

	svc, courses, assets := newCatalogService(t)

	body := strings.NewReader("png-bytes")
	courses.On("GetByID", ctx, courseID).Return(model.Course{ID: courseID}, nil)
	assets.On("Upload", ctx, key, body).Return(nil)

	require.NoError(t, svc.UploadCourseCover(ctx, courseID, body))
	assets.AssertExpectations(t)
}
