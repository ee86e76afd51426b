package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/coursedesk/coursedesk-server/internal/api/http/middleware"
	"github.com/coursedesk/coursedesk-server/internal/logger"
	"github.com/coursedesk/coursedesk-server/internal/model"
	"github.com/coursedesk/coursedesk-server/internal/service"
)

// Enrollment exposes the enrollment endpoints.
type Enrollment struct {
	enrollment *service.Enrollment
	logger     *logger.Logger
}

func NewEnrollment(enrollment *service.Enrollment, logger *logger.Logger) *Enrollment {
	return &Enrollment{enrollment: enrollment, logger: logger}
}

type enrollmentResponse struct {
	ID        uuid.UUID `json:"id"`
	CourseID  uuid.UUID `json:"course_id"`
	Progress  int       `json:"progress"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

type enrollResponse struct {
	Outcome    string              `json:"outcome"`
	Enrollment *enrollmentResponse `json:"enrollment,omitempty"`
	CountStale bool                `json:"count_stale,omitempty"`
}

type progressRequest struct {
	Progress int `json:"progress"`
}

func toEnrollmentResponse(e model.Enrollment) enrollmentResponse {
	return enrollmentResponse{
		ID:        e.ID,
		CourseID:  e.CourseID,
		Progress:  e.Progress,
		Completed: e.Completed,
		CreatedAt: e.CreatedAt,
	}
}

// Enroll registers the authenticated user in the course. A repeated request
// answers 200 with outcome "already_enrolled"; only genuine failures error.
func (h *Enrollment) Enroll(w http.ResponseWriter, r *http.Request) {
	courseID, ok := courseIDParam(w, r)
	if !ok {
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrNotAuthenticated)
		return
	}

	result := h.enrollment.Enroll(r.Context(), userID, courseID)
	switch result.Outcome {
	case model.OutcomeEnrolled:
		enrollment := toEnrollmentResponse(result.Enrollment)
		writeJSON(w, http.StatusCreated, enrollResponse{
			Outcome:    string(result.Outcome),
			Enrollment: &enrollment,
			CountStale: result.CounterUpdateFailed,
		})
	case model.OutcomeAlreadyEnrolled:
		writeJSON(w, http.StatusOK, enrollResponse{Outcome: string(result.Outcome)})
	default:
		writeError(w, result.Err)
	}
}

func (h *Enrollment) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrNotAuthenticated)
		return
	}

	enrollments, err := h.enrollment.ListForUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]enrollmentResponse, 0, len(enrollments))
	for _, e := range enrollments {
		out = append(out, toEnrollmentResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Enrollment) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	courseID, ok := courseIDParam(w, r)
	if !ok {
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrNotAuthenticated)
		return
	}

	var req progressRequest
	if !decodeBody(w, r, &req) {
		return
	}

	enrollment, err := h.enrollment.UpdateProgress(r.Context(), userID, courseID, req.Progress)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toEnrollmentResponse(enrollment))
}
