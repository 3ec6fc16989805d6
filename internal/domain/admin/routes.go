package admin

import (
	"github.com/go-chi/chi/v5"

	"github.com/vrroom/booking-bff/internal/middleware"
)

// Routes returns admin router
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Auth)
	r.Use(RequireAdmin(h.verifier))

	// Pricing configuration
	r.Route("/config", func(r chi.Router) {
		r.Get("/", h.GetConfig)
		r.Post("/reload", h.ReloadConfig)
		r.Put("/pricing", h.UpdatePricing)
	})

	// Holidays
	r.Route("/holidays", func(r chi.Router) {
		r.Get("/", h.ListHolidays)
		r.Post("/", h.CreateHoliday)
		r.Delete("/{id}", h.DeleteHoliday)
	})

	// Gift cards
	r.Get("/gift-cards/{code}", h.PeekGiftCard)

	// Reports
	r.Route("/reports", func(r chi.Router) {
		r.Get("/bookings", h.BookingsReport)
	})

	return r
}
