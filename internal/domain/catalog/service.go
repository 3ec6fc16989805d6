package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/vrroom/booking-bff/internal/domain/pricing"
	"github.com/vrroom/booking-bff/internal/pkg/backend"
)

// MaxAvailabilityDays bounds an availability query.
const MaxAvailabilityDays = 62

const gamesCacheTTL = 5 * time.Minute

var (
	ErrInvalidRange = errors.New("end date must not be before start date")
	ErrRangeTooLong = fmt.Errorf("date range must not exceed %d days", MaxAvailabilityDays)
	ErrInvalidDate  = errors.New("dates must be YYYY-MM-DD")
)

// Service serves reference data: games, availability and the pricing config.
type Service struct {
	reader backend.Reader
	config *ConfigProvider

	mu        sync.RWMutex
	games     []backend.Game
	fetchedAt time.Time
	now       func() time.Time
}

// NewService creates the catalog service over a backend reader.
func NewService(reader backend.Reader, config *ConfigProvider) *Service {
	return &Service{reader: reader, config: config, now: time.Now}
}

// Config returns the configuration provider.
func (s *Service) Config() *ConfigProvider {
	return s.config
}

// Warmup loads the pricing config and the active games in parallel. Failures
// are logged; the service keeps working in degraded mode.
func (s *Service) Warmup(ctx context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Load logs its own failure and leaves the degraded default in place.
		_ = s.config.Load(gctx)
		return nil
	})
	g.Go(func() error {
		if _, err := s.refreshGames(gctx); err != nil {
			log.Warn().Err(err).Msg("Active games unavailable at startup")
		}
		return nil
	})
	_ = g.Wait()
}

// ActiveGames lists bookable games, served from a short-lived cache.
func (s *Service) ActiveGames(ctx context.Context) ([]backend.Game, error) {
	s.mu.RLock()
	games, fresh := s.games, s.games != nil && s.now().Sub(s.fetchedAt) < gamesCacheTTL
	s.mu.RUnlock()
	if fresh {
		return games, nil
	}
	return s.refreshGames(ctx)
}

func (s *Service) refreshGames(ctx context.Context) ([]backend.Game, error) {
	games, err := s.reader.GetActiveGames(ctx)
	if err != nil {
		return nil, err
	}
	if games == nil {
		games = []backend.Game{}
	}
	s.mu.Lock()
	s.games = games
	s.fetchedAt = s.now()
	s.mu.Unlock()
	return games, nil
}

// GameByCode fetches one game by its public code.
func (s *Service) GameByCode(ctx context.Context, code string) (*backend.Game, error) {
	return s.reader.GetGameByCode(ctx, code)
}

// GameByID resolves a game id against the active games, then the backend.
func (s *Service) GameByID(ctx context.Context, id string) (*backend.Game, error) {
	games, err := s.ActiveGames(ctx)
	if err == nil {
		for _, g := range games {
			if g.ID == id {
				game := g
				return &game, nil
			}
		}
	}
	return s.reader.GetGameByCode(ctx, id)
}

// Availability returns per-day slot availability for [start, end].
func (s *Service) Availability(ctx context.Context, start, end, gameID string) ([]backend.DaySchedule, error) {
	from, ok := pricing.ParseDate(start)
	if !ok {
		return nil, ErrInvalidDate
	}
	to, ok := pricing.ParseDate(end)
	if !ok {
		return nil, ErrInvalidDate
	}
	if to.Before(from) {
		return nil, ErrInvalidRange
	}
	if int(to.Sub(from).Hours()/24)+1 > MaxAvailabilityDays {
		return nil, ErrRangeTooLong
	}
	days, err := s.reader.GetAvailability(ctx, start, end, gameID)
	if err != nil {
		return nil, err
	}
	if days == nil {
		days = []backend.DaySchedule{}
	}
	return days, nil
}

// TimeSlots lists the slot start times of a business day.
func (s *Service) TimeSlots() []string {
	return pricing.TimeSlots(s.config.Current())
}
