package admin

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vrroom/booking-bff/internal/pkg/backend"
	"github.com/vrroom/booking-bff/internal/pkg/jwt"
	"github.com/vrroom/booking-bff/internal/pkg/logger"
	"github.com/vrroom/booking-bff/internal/pkg/response"
	"github.com/vrroom/booking-bff/internal/pkg/validator"
)

// Handler handles admin HTTP requests
type Handler struct {
	service  *Service
	verifier *jwt.Verifier
}

// NewHandler creates admin handler. A nil verifier closes every admin route.
func NewHandler(service *Service, verifier *jwt.Verifier) *Handler {
	return &Handler{service: service, verifier: verifier}
}

// --- Configuration ---

// GetConfig handles GET /admin/config
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.service.Config())
}

// ReloadConfig handles POST /admin/config/reload
func (h *Handler) ReloadConfig(w http.ResponseWriter, r *http.Request) {
	result := h.service.ReloadConfig(r.Context())
	logger.LogInfo(r.Context(), "Pricing config reload requested",
		"admin", GetAdminEmail(r.Context()),
		"reloaded", result.Reloaded,
	)
	response.OK(w, result)
}

// UpdatePricing handles PUT /admin/config/pricing
func (h *Handler) UpdatePricing(w http.ResponseWriter, r *http.Request) {
	var req PricingRequest
	if !validator.DecodeAndValidate(w, r, &req) {
		return
	}

	change, err := h.service.UpdatePricing(r.Context(), req.Tiers)
	if err != nil {
		writeBackendError(w, r, err, "Pricing update failed")
		return
	}
	logger.LogInfo(r.Context(), "Pricing tiers updated", "tiers", len(req.Tiers))
	response.OK(w, change)
}

// --- Holidays ---

// ListHolidays handles GET /admin/holidays
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	holidays, err := h.service.Holidays(r.Context())
	if err != nil {
		writeBackendError(w, r, err, "Holiday list failed")
		return
	}
	response.OK(w, holidays)
}

// CreateHoliday handles POST /admin/holidays
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req HolidayRequest
	if !validator.DecodeAndValidate(w, r, &req) {
		return
	}

	change, err := h.service.AddHoliday(r.Context(), req)
	if err != nil {
		writeBackendError(w, r, err, "Holiday create failed")
		return
	}
	logger.LogInfo(r.Context(), "Holiday added", "date", req.Date)
	response.Created(w, change)
}

// DeleteHoliday handles DELETE /admin/holidays/{id}
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	result, err := h.service.DeleteHoliday(r.Context(), id)
	if err != nil {
		writeBackendError(w, r, err, "Holiday delete failed")
		return
	}
	logger.LogInfo(r.Context(), "Holiday deleted", "holiday_id", id)
	response.OK(w, result)
}

// --- Gift cards ---

// PeekGiftCard handles GET /admin/gift-cards/{code}
func (h *Handler) PeekGiftCard(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(chi.URLParam(r, "code"))
	if code == "" {
		response.BadRequest(w, "Gift card code is required")
		return
	}

	peek, err := h.service.PeekGiftCard(r.Context(), code)
	if err != nil {
		writeBackendError(w, r, err, "Gift card lookup failed")
		return
	}
	response.OK(w, peek)
}

// writeBackendError maps admin and backend errors onto the response envelope.
func writeBackendError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	httpErr, isHTTP := backend.AsHTTPError(err)
	switch {
	case errors.Is(err, ErrInvalidRange), errors.Is(err, ErrInvalidDate), errors.Is(err, ErrOverlappingTiers):
		response.BadRequest(w, err.Error())
	case errors.Is(err, backend.ErrUnauthorized):
		response.Unauthorized(w, "Authentication required")
	case isHTTP && httpErr.Status == http.StatusForbidden:
		response.Forbidden(w, "Permission denied")
	case isHTTP && httpErr.Status == http.StatusNotFound:
		response.NotFound(w, "Not found")
	case isHTTP && httpErr.IsClientError():
		message := httpErr.Message
		if message == "" {
			message = "Request rejected by the booking backend"
		}
		response.BadRequest(w, message)
	default:
		logger.LogError(r.Context(), err, msg)
		response.BackendUnavailable(w, "Booking backend is unavailable")
	}
}
