package catalog

import (
	"sort"
	"time"

	"github.com/vrroom/booking-bff/internal/domain/pricing"
)

// ConfigResponse is the pricing configuration as served to the client.
type ConfigResponse struct {
	pricing.Config
	Holidays  []string  `json:"holidays"`
	TimeSlots []string  `json:"timeSlots"`
	Degraded  bool      `json:"degraded"`
	LoadedAt  time.Time `json:"loadedAt,omitempty"`
	LastError string    `json:"lastError,omitempty"`
}

// NewConfigResponse renders the provider's current state.
func NewConfigResponse(p *ConfigProvider) ConfigResponse {
	cfg := p.Current()
	holidays := cfg.HolidayList()
	sort.Strings(holidays)
	resp := ConfigResponse{
		Config:    cfg,
		Holidays:  holidays,
		TimeSlots: pricing.TimeSlots(cfg),
		Degraded:  p.Degraded(),
		LoadedAt:  p.LoadedAt(),
	}
	if err := p.LastError(); err != nil {
		resp.LastError = err.Error()
	}
	return resp
}

// AvailabilityQuery holds GET /availability parameters.
type AvailabilityQuery struct {
	Start  string `json:"start" validate:"required,iso_date"`
	End    string `json:"end" validate:"required,iso_date"`
	GameID string `json:"gameId"`
}
