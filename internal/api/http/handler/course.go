package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/coursedesk/coursedesk-server/internal/logger"
	"github.com/coursedesk/coursedesk-server/internal/model"
	"github.com/coursedesk/coursedesk-server/internal/service"
)

// Course exposes the catalog endpoints.
type Course struct {
	catalog *service.Catalog
	logger  *logger.Logger
}

func NewCourse(catalog *service.Catalog, logger *logger.Logger) *Course {
	return &Course{catalog: catalog, logger: logger}
}

type courseResponse struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	ImageURL      string    `json:"image_url"`
	Instructor    string    `json:"instructor"`
	Duration      string    `json:"duration"`
	Level         string    `json:"level"`
	Category      string    `json:"category"`
	Price         int64     `json:"price"`
	Rating        float64   `json:"rating"`
	EnrolledCount int       `json:"enrolled_count"`
	CreatedAt     time.Time `json:"created_at"`
}

type courseModuleResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	OrderNumber int       `json:"order_number"`
	Duration    string    `json:"duration"`
	IsPreview   bool      `json:"is_preview"`
}

func toCourseResponse(c model.Course) courseResponse {
	return courseResponse{
		ID:            c.ID,
		Title:         c.Title,
		Description:   c.Description,
		ImageURL:      c.ImageURL,
		Instructor:    c.Instructor,
		Duration:      c.Duration,
		Level:         c.Level,
		Category:      c.Category,
		Price:         c.Price,
		Rating:        c.Rating,
		EnrolledCount: c.EnrolledCount,
		CreatedAt:     c.CreatedAt,
	}
}

func courseIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "courseID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed course id"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *Course) List(w http.ResponseWriter, r *http.Request) {
	courses, err := h.catalog.ListCourses(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]courseResponse, 0, len(courses))
	for _, c := range courses {
		out = append(out, toCourseResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Course) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := courseIDParam(w, r)
	if !ok {
		return
	}

	course, err := h.catalog.GetCourse(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCourseResponse(course))
}

func (h *Course) Modules(w http.ResponseWriter, r *http.Request) {
	id, ok := courseIDParam(w, r)
	if !ok {
		return
	}

	modules, err := h.catalog.ListModules(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]courseModuleResponse, 0, len(modules))
	for _, m := range modules {
		out = append(out, courseModuleResponse{
			ID:          m.ID,
			Title:       m.Title,
			Description: m.Description,
			OrderNumber: m.OrderNumber,
			Duration:    m.Duration,
			IsPreview:   m.IsPreview,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// Cover streams the stored cover image.
func (h *Course) Cover(w http.ResponseWriter, r *http.Request) {
	id, ok := courseIDParam(w, r)
	if !ok {
		return
	}

	reader, err := h.catalog.CourseCover(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Error("course handler: cover stream interrupted", "error", err.Error())
	}
}

// UploadCover stores the request body as the course cover.
func (h *Course) UploadCover(w http.ResponseWriter, r *http.Request) {
	id, ok := courseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.catalog.UploadCourseCover(r.Context(), id, r.Body); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
