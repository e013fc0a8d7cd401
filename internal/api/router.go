package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"datadash/internal/loader"
)

// Handler serves the JSON API under /api
type Handler struct {
	remote         *loader.RemoteLoader
	uploads        *loader.UploadLoader
	maxUploadBytes int64
	router         *chi.Mux
}

// NewHandler creates the API handler and its routes
func NewHandler(remote *loader.RemoteLoader, uploads *loader.UploadLoader, maxUploadBytes int64) *Handler {
	h := &Handler{
		remote:         remote,
		uploads:        uploads,
		maxUploadBytes: maxUploadBytes,
		router:         chi.NewRouter(),
	}
	h.setupMiddleware()
	h.setupRoutes()
	return h
}

func (h *Handler) setupMiddleware() {
	h.router.Use(middleware.Logger)
	h.router.Use(middleware.Recoverer)
}

func (h *Handler) setupRoutes() {
	h.router.Route("/api", func(r chi.Router) {
		r.Get("/health", h.handleHealth)
		r.Get("/url", h.handleURL)
		r.Post("/remote", h.handleRemote)
		r.Post("/upload", h.handleUpload)
		r.Post("/chart", h.handleChart)
	})
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}
