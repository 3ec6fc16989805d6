package booking

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts the session endpoints. sessionScope is applied to every
// /{id} route and resolves the session's bearer token; giftCardLimit guards
// the gift card lookup. extra registers further per-session routes.
func (h *Handler) Routes(sessionScope, giftCardLimit func(http.Handler) http.Handler, extra ...func(chi.Router)) chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)

	r.Route("/{id}", func(r chi.Router) {
		r.Use(sessionScope)

		r.Get("/", h.Get)
		r.Delete("/", h.Delete)
		r.Post("/restart", h.Restart)
		r.Put("/rooms", h.SetRooms)
		r.Put("/rooms/{index}/game", h.SetGame)
		r.Put("/rooms/{index}/players", h.SetPlayers)
		r.Put("/datetime", h.SetDateTime)
		r.Patch("/customer", h.SetCustomer)
		r.Put("/payment-method", h.SetPaymentMethod)
		r.With(giftCardLimit).Post("/gift-card", h.ApplyGiftCard)
		r.Delete("/gift-card", h.RemoveGiftCard)
		r.Post("/promotion/refresh", h.RefreshPromotion)
		r.Put("/token", h.SetToken)
		r.Get("/ws", h.WebSocket)

		for _, register := range extra {
			register(r)
		}
	})

	return r
}
