package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"fileconsole/internal/config"
	"fileconsole/internal/server/middleware"
)

// NewRouter wires the files API surface: everything under /api/files is
// bearer-authenticated, hard delete additionally requires the admin role.
func NewRouter(cfg *config.Config, filesHandler *FilesHandler) http.Handler {
	r := chi.NewRouter()
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTSecret)
	rateLimit := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(rateLimit.Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/files", func(files chi.Router) {
		files.Use(authMiddleware.RequireAuth)

		files.Get("/", filesHandler.List)
		files.Post("/", filesHandler.Upload)
		files.Get("/{id}", filesHandler.Get)
		files.Get("/{id}/download", filesHandler.Download)
		files.Get("/{id}/preview", filesHandler.Preview)
		files.Delete("/{id}", filesHandler.SoftDelete)
		files.With(authMiddleware.RequireAdmin).Delete("/{id}/hard", filesHandler.HardDelete)
	})

	return r
}
