package api

import (
	"net/http"

	"github.com/codegen-studio/engine/internal/api/handlers"
	mw "github.com/codegen-studio/engine/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
)

type Dependencies struct {
	HMACSecret      []byte
	RateLimitRPS    float64
	RateLimitBurst  int
	AuthHandler     *handlers.AuthHandler
	ProjectsHandler *handlers.ProjectsHandler
	FilesHandler    *handlers.FilesHandler
	PipelineHandler *handlers.PipelineHandler
	HealthHandler   *handlers.HealthHandler
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.Recovery)
	r.Use(mw.Logging)
	r.Use(mw.CORS)

	// Health endpoints
	hh := dep.HealthHandler
	if hh == nil {
		hh = handlers.NewHealthHandler(nil)
	}
	r.Get("/healthz", hh.Liveness)
	r.Get("/readyz", hh.Readiness)

	r.Route("/api", func(api chi.Router) {
		if dep.RateLimitRPS > 0 {
			api.Use(mw.RateLimit(dep.RateLimitRPS, dep.RateLimitBurst))
		}
		api.Use(chimid.Compress(5))

		api.Route("/auth", func(ar chi.Router) {
			ar.Post("/register", dep.AuthHandler.Register)
			ar.Post("/login", dep.AuthHandler.Login)
		})

		// Studio routes serve anonymous callers; a token attributes ownership.
		api.Group(func(studio chi.Router) {
			studio.Use(mw.OptionalAuth(dep.HMACSecret))

			studio.Route("/projects", func(pr chi.Router) {
				pr.Get("/", dep.ProjectsHandler.List)
				pr.Post("/", dep.ProjectsHandler.Create)
				pr.Get("/{id}", dep.ProjectsHandler.Get)
				pr.Get("/{id}/files", dep.ProjectsHandler.Files)
				pr.Get("/{id}/progress", dep.ProjectsHandler.Progress)
				pr.Get("/{id}/download", dep.ProjectsHandler.Download)
			})
			studio.Get("/files/{id}/download", dep.FilesHandler.Download)
		})

		// Pipeline callbacks
		api.Route("/pipeline/projects/{id}", func(pl chi.Router) {
			pl.Use(mw.PipelineAuth(dep.HMACSecret))
			pl.Put("/status", dep.PipelineHandler.Status)
			pl.Put("/progress", dep.PipelineHandler.Progress)
			pl.Post("/files", dep.PipelineHandler.AddFile)
			pl.Put("/plan", dep.PipelineHandler.Plan)
		})
	})

	return r
}
