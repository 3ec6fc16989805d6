package admin

import "github.com/vrroom/booking-bff/internal/pkg/backend"

// ReportQuery holds GET /reports/bookings parameters.
type ReportQuery struct {
	From   string `json:"from" validate:"omitempty,iso_date"`
	To     string `json:"to" validate:"omitempty,iso_date"`
	Status string `json:"status" validate:"omitempty,oneof=PENDING CONFIRMED CANCELLED COMPLETED REFUNDED"`
}

// ReloadResponse reports the result of a config reload.
type ReloadResponse struct {
	Reloaded bool   `json:"reloaded"`
	Degraded bool   `json:"degraded"`
	Error    string `json:"error,omitempty"`
}

// PricingRequest is the body of PUT /config/pricing.
type PricingRequest struct {
	Tiers []backend.PricingTier `json:"tiers" validate:"required,min=1,dive"`
}

// PricingChange is the updated tier set and the reload that followed it.
type PricingChange struct {
	Pricing *backend.PricingConfig `json:"pricing"`
	Reload  ReloadResponse         `json:"reload"`
}

// HolidayRequest is the body of POST /holidays.
type HolidayRequest struct {
	Name string `json:"name" validate:"required,max=100"`
	Date string `json:"date" validate:"required,iso_date"`
}

// HolidayChange is the created holiday and the reload that followed it.
type HolidayChange struct {
	Holiday *backend.Holiday `json:"holiday"`
	Reload  ReloadResponse   `json:"reload"`
}
