package catalog

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vrroom/booking-bff/internal/pkg/backend"
	"github.com/vrroom/booking-bff/internal/pkg/logger"
	"github.com/vrroom/booking-bff/internal/pkg/response"
	"github.com/vrroom/booking-bff/internal/pkg/validator"
)

// MyBookingsLister lists the bookings of the caller's token.
type MyBookingsLister interface {
	ListMyBookings(ctx context.Context) ([]backend.Booking, error)
}

// Handler handles catalog HTTP requests.
type Handler struct {
	service *Service
	mine    MyBookingsLister
}

// NewHandler creates a catalog handler. mine may be nil.
func NewHandler(service *Service, mine MyBookingsLister) *Handler {
	return &Handler{service: service, mine: mine}
}

// Service returns the underlying catalog service.
func (h *Handler) Service() *Service {
	return h.service
}

// Config handles GET /config
func (h *Handler) Config(w http.ResponseWriter, r *http.Request) {
	response.OK(w, NewConfigResponse(h.service.Config()))
}

// ListGames handles GET /games
func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.service.ActiveGames(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, games)
}

// GetGame handles GET /games/{code}
func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	game, err := h.service.GameByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, game)
}

// Availability handles GET /availability?start=&end=&gameId=
func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	q := AvailabilityQuery{
		Start:  r.URL.Query().Get("start"),
		End:    r.URL.Query().Get("end"),
		GameID: r.URL.Query().Get("gameId"),
	}
	if errs := validator.Validate(q); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	days, err := h.service.Availability(r.Context(), q.Start, q.End, q.GameID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, days)
}

// TimeSlots handles GET /time-slots
func (h *Handler) TimeSlots(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.service.TimeSlots())
}

// MyBookings handles GET /bookings/mine
func (h *Handler) MyBookings(w http.ResponseWriter, r *http.Request) {
	if h.mine == nil {
		response.Error(w, http.StatusServiceUnavailable, "BACKEND_UNAVAILABLE", "Booking history is unavailable")
		return
	}
	bookings, err := h.mine.ListMyBookings(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if bookings == nil {
		bookings = []backend.Booking{}
	}
	response.OK(w, bookings)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var httpErr *backend.HTTPError
	switch {
	case errors.Is(err, ErrInvalidDate), errors.Is(err, ErrInvalidRange), errors.Is(err, ErrRangeTooLong):
		response.BadRequest(w, err.Error())
	case errors.Is(err, backend.ErrGameNotFound):
		response.NotFound(w, "Game not found")
	case errors.Is(err, backend.ErrUnauthorized):
		response.Unauthorized(w, "Authentication required")
	case errors.As(err, &httpErr) && httpErr.Status == http.StatusNotFound:
		response.NotFound(w, httpErr.Message)
	default:
		logger.LogError(r.Context(), err, "Catalog request failed", "path", r.URL.Path)
		response.BackendUnavailable(w, "Booking backend is unavailable")
	}
}
