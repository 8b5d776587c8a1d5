package webhook

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const Path = "/webhook"

// RegisterRoutes mounts the health endpoint and, when h can accept updates,
// the webhook endpoint. metrics may be nil.
func RegisterRoutes(r chi.Router, h *Handler, metrics http.Handler) {
	r.Get("/", h.HandleHealth)
	if h.processor != nil {
		r.Post(Path, h.HandleWebhook)
	}
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}
}

func NewRouter(h *Handler, metrics http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	RegisterRoutes(r, h, metrics)
	return r
}
