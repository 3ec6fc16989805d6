package wizard

import "github.com/go-chi/chi/v5"

// Register mounts the flow endpoints on a per-session router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/flow", h.Resolve)
	r.Post("/flow/{action}", h.Action)
}
