package handlers

import (
	_ "embed"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

//go:embed openapi.yaml
var openAPIDoc []byte

type RouterOptions struct {
	// CORSOrigins defaults to every origin.
	CORSOrigins []string
	// RateLimiter is optional; nil disables rate limiting.
	RateLimiter *RateLimiter
}

// NewRouter mounts the JSON API under /api together with /health and /openapi.yaml.
func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.RequestLogger)
	r.Use(h.WithRecover)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
	if rl := opts.RateLimiter; rl != nil {
		rl.onLimit = func(w http.ResponseWriter, r *http.Request) {
			h.writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		}
		r.Use(rl.Middleware)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(openAPIDoc)
	})

	r.Route("/api/posts", func(r chi.Router) {
		r.Get("/", h.ListPosts)
		r.Post("/", h.CreatePost)

		r.Route("/{postId}", func(r chi.Router) {
			r.Get("/", h.GetPost)
			r.Patch("/", h.UpdatePost)
			r.Delete("/", h.DeletePost)

			r.Get("/comments", h.ListComments)
			r.Post("/comments", h.CreateComment)
			r.Get("/comments/{commentId}", h.GetComment)
			r.Patch("/comments/{commentId}", h.UpdateComment)
			r.Delete("/comments/{commentId}", h.DeleteComment)

			r.Get("/likes", h.ListLikes)
			r.Post("/likes", h.Like)
			r.Delete("/likes", h.Unlike)
		})
	})

	return r
}
