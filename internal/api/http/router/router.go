// Package router assembles the public API routes.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/coursedesk/coursedesk-server/internal/api/http/handler"
	"github.com/coursedesk/coursedesk-server/internal/api/http/middleware"
	"github.com/coursedesk/coursedesk-server/internal/logger"
	"github.com/coursedesk/coursedesk-server/internal/service"
)

// New builds the API router. Catalog reads are public; enrollment, progress
// and cover upload require a valid access token.
func New(
	auth *service.Auth,
	catalog *service.Catalog,
	enrollment *service.Enrollment,
	logger *logger.Logger,
) http.Handler {
	authHandler := handler.NewAuth(auth, logger)
	courseHandler := handler.NewCourse(catalog, logger)
	enrollmentHandler := handler.NewEnrollment(enrollment, logger)

	authenticate := middleware.Authenticate(auth.TokenService(), logger)

	r := chi.NewRouter()
	r.Use(middleware.Logging(logger))

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.SignUp)
			r.Post("/signin", authHandler.SignIn)
			r.Post("/signout", authHandler.SignOut)
			r.Post("/refresh", authHandler.Refresh)
			r.Post("/recover", authHandler.Recover)
			r.Post("/password", authHandler.UpdatePassword)
		})

		r.Route("/courses", func(r chi.Router) {
			r.Get("/", courseHandler.List)
			r.Get("/{courseID}", courseHandler.Get)
			r.Get("/{courseID}/modules", courseHandler.Modules)
			r.Get("/{courseID}/image", courseHandler.Cover)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Post("/{courseID}/image", courseHandler.UploadCover)
				r.Post("/{courseID}/enroll", enrollmentHandler.Enroll)
				r.Put("/{courseID}/progress", enrollmentHandler.UpdateProgress)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/enrollments", enrollmentHandler.ListMine)
		})
	})

	return r
}
