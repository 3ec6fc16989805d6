package catalog

import (
	"github.com/go-chi/chi/v5"

	"github.com/vrroom/booking-bff/internal/middleware"
)

// Routes registers the catalog reads on an /api/v1 router.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/config", h.Config)
	r.Get("/time-slots", h.TimeSlots)
	r.Get("/games", h.ListGames)
	r.Get("/games/{code}", h.GetGame)
	r.Get("/availability", h.Availability)
	r.With(middleware.Auth).Get("/bookings/mine", h.MyBookings)
}
