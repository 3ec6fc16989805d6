package admin

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/vrroom/booking-bff/internal/domain/catalog"
	"github.com/vrroom/booking-bff/internal/domain/pricing"
	"github.com/vrroom/booking-bff/internal/pkg/backend"
)

// BookingLister lists stored bookings.
type BookingLister interface {
	ListBookings(ctx context.Context, filter backend.BookingFilter) ([]backend.Booking, error)
}

// ConfigEditor edits the pricing configuration and looks up gift cards on
// the backend.
type ConfigEditor interface {
	GetPricing(ctx context.Context) (*backend.PricingConfig, error)
	UpdatePricing(ctx context.Context, id string, cfg backend.PricingConfig) (*backend.PricingConfig, error)
	ListHolidays(ctx context.Context) ([]backend.Holiday, error)
	CreateHoliday(ctx context.Context, h backend.Holiday) (*backend.Holiday, error)
	DeleteHoliday(ctx context.Context, id string) error
	PeekGiftCard(ctx context.Context, code string) (*backend.GiftCardPeek, error)
}

// Service handles admin business logic
type Service struct {
	config   *catalog.ConfigProvider
	bookings BookingLister
	editor   ConfigEditor
}

// NewService creates admin service
func NewService(config *catalog.ConfigProvider, bookings BookingLister, editor ConfigEditor) *Service {
	return &Service{config: config, bookings: bookings, editor: editor}
}

// --- Configuration ---

// Config returns the pricing configuration in effect.
func (s *Service) Config() catalog.ConfigResponse {
	return catalog.NewConfigResponse(s.config)
}

// ReloadConfig fetches the pricing configuration again. A failed reload
// keeps the configuration that was in effect.
func (s *Service) ReloadConfig(ctx context.Context) ReloadResponse {
	if err := s.config.Load(ctx); err != nil {
		return ReloadResponse{Degraded: s.config.Degraded(), Error: err.Error()}
	}
	return ReloadResponse{Reloaded: true, Degraded: s.config.Degraded()}
}

// UpdatePricing replaces the active tier set and reloads the configuration.
func (s *Service) UpdatePricing(ctx context.Context, tiers []backend.PricingTier) (*PricingChange, error) {
	sorted := append([]backend.PricingTier(nil), tiers...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinPlayers < sorted[j].MinPlayers })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].MinPlayers <= sorted[i-1].MaxPlayers {
			return nil, ErrOverlappingTiers
		}
	}

	current, err := s.editor.GetPricing(ctx)
	if err != nil {
		return nil, err
	}
	updated, err := s.editor.UpdatePricing(ctx, current.ID, backend.PricingConfig{ID: current.ID, Tiers: sorted, Active: true})
	if err != nil {
		return nil, err
	}
	log.Info().Str("pricing_id", current.ID).Int("tiers", len(sorted)).Msg("Pricing tiers updated")
	return &PricingChange{Pricing: updated, Reload: s.ReloadConfig(ctx)}, nil
}

// --- Holidays ---

// Holidays lists configured holidays by date.
func (s *Service) Holidays(ctx context.Context) ([]backend.Holiday, error) {
	holidays, err := s.editor.ListHolidays(ctx)
	if err != nil {
		return nil, err
	}
	if holidays == nil {
		holidays = []backend.Holiday{}
	}
	sort.Slice(holidays, func(i, j int) bool { return holidays[i].Date < holidays[j].Date })
	return holidays, nil
}

// AddHoliday creates an active holiday and reloads the configuration.
func (s *Service) AddHoliday(ctx context.Context, req HolidayRequest) (*HolidayChange, error) {
	created, err := s.editor.CreateHoliday(ctx, backend.Holiday{Name: req.Name, Date: req.Date, Active: true})
	if err != nil {
		return nil, err
	}
	return &HolidayChange{Holiday: created, Reload: s.ReloadConfig(ctx)}, nil
}

// DeleteHoliday removes a holiday and reloads the configuration.
func (s *Service) DeleteHoliday(ctx context.Context, id string) (ReloadResponse, error) {
	if err := s.editor.DeleteHoliday(ctx, id); err != nil {
		return ReloadResponse{}, err
	}
	return s.ReloadConfig(ctx), nil
}

// --- Gift cards ---

// PeekGiftCard looks up a gift card balance without redeeming it.
func (s *Service) PeekGiftCard(ctx context.Context, code string) (*backend.GiftCardPeek, error) {
	return s.editor.PeekGiftCard(ctx, code)
}

// --- Reports ---

// BookingsReport lists bookings in [from, to] and summarises them.
func (s *Service) BookingsReport(ctx context.Context, q ReportQuery) (*BookingReport, error) {
	if q.From != "" && q.To != "" {
		from, okFrom := pricing.ParseDate(q.From)
		to, okTo := pricing.ParseDate(q.To)
		if !okFrom || !okTo {
			return nil, ErrInvalidDate
		}
		if to.Before(from) {
			return nil, ErrInvalidRange
		}
	}

	bookings, err := s.bookings.ListBookings(ctx, backend.BookingFilter{From: q.From, To: q.To, Status: q.Status})
	if err != nil {
		return nil, err
	}
	if bookings == nil {
		bookings = []backend.Booking{}
	}

	report := &BookingReport{
		From:     q.From,
		To:       q.To,
		Status:   q.Status,
		Summary:  newSummary(),
		Bookings: bookings,
	}
	for _, b := range bookings {
		report.Summary.Add(b, pricing.Round(b.TotalPrice))
	}

	log.Debug().
		Str("from", q.From).
		Str("to", q.To).
		Int("count", report.Summary.Count).
		Int64("revenue", report.Summary.Revenue).
		Msg("Bookings report built")
	return report, nil
}
