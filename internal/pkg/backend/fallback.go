package backend

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
)

// Fallback reads from the primary reader and answers from the secondary one
// when the primary is unreachable: not configured, a transport failure, or a
// 5xx answer. Backend rejections (4xx) and config reads are never substituted.
type Fallback struct {
	primary   Reader
	secondary Reader
}

// NewFallback combines a primary reader with a secondary one.
func NewFallback(primary, secondary Reader) *Fallback {
	return &Fallback{primary: primary, secondary: secondary}
}

func (f *Fallback) GetConfig(ctx context.Context) (map[string]interface{}, error) {
	return f.primary.GetConfig(ctx)
}

func (f *Fallback) GetActiveGames(ctx context.Context) ([]Game, error) {
	games, err := f.primary.GetActiveGames(ctx)
	if err == nil || !f.substitute("games", err) {
		return games, err
	}
	return f.secondary.GetActiveGames(ctx)
}

func (f *Fallback) GetGameByCode(ctx context.Context, code string) (*Game, error) {
	game, err := f.primary.GetGameByCode(ctx, code)
	if err == nil || !f.substitute("game", err) {
		return game, err
	}
	return f.secondary.GetGameByCode(ctx, code)
}

func (f *Fallback) GetAvailability(ctx context.Context, start, end, gameID string) ([]DaySchedule, error) {
	days, err := f.primary.GetAvailability(ctx, start, end, gameID)
	if err == nil || !f.substitute("availability", err) {
		return days, err
	}
	return f.secondary.GetAvailability(ctx, start, end, gameID)
}

func (f *Fallback) ListBookings(ctx context.Context, filter BookingFilter) ([]Booking, error) {
	bookings, err := f.primary.ListBookings(ctx, filter)
	if err == nil || !f.substitute("bookings", err) {
		return bookings, err
	}
	return f.secondary.ListBookings(ctx, filter)
}

func (f *Fallback) substitute(op string, err error) bool {
	if f.secondary == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrGameNotFound) {
		return false
	}
	if httpErr, ok := AsHTTPError(err); ok && httpErr.Status < 500 {
		return false
	}
	log.Warn().Err(err).Str("op", op).Msg("backend read failed, serving mock data")
	return true
}
