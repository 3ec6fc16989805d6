package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vrroom/booking-bff/internal/domain/pricing"
	"github.com/vrroom/booking-bff/internal/pkg/backend"
)

// ConfigSource provides the current pricing configuration.
type ConfigSource interface {
	Current() pricing.Config
}

// GameLookup resolves a game id to reference data.
type GameLookup interface {
	GameByID(ctx context.Context, id string) (*backend.Game, error)
}

// GiftCardPeeker performs the read-only gift card balance lookup.
type GiftCardPeeker interface {
	PeekGiftCard(ctx context.Context, code string) (*backend.GiftCardPeek, error)
}

// PricePreviewer asks the backend for the applicable promotion.
type PricePreviewer interface {
	PreviewPrice(ctx context.Context, gameID, date string, players int) (*backend.PricePreview, error)
}

// Publisher fans out session snapshots to live subscribers.
type Publisher interface {
	Publish(ctx context.Context, sessionID string, payload []byte)
}

// CreateOptions are the initial attributes of a new session.
type CreateOptions struct {
	Lang     string
	Embedded bool
}

// Service implements the booking session use cases. Every change goes
// through the repository so concurrent requests on one session serialise.
type Service struct {
	repo      Repository
	config    ConfigSource
	games     GameLookup
	giftCards GiftCardPeeker
	previews  PricePreviewer
	publisher Publisher
	lang      string
	now       func() time.Time
}

// NewService creates the booking service. previews and publisher may be nil.
// defaultLang is the language of sessions created without one.
func NewService(repo Repository, config ConfigSource, games GameLookup, giftCards GiftCardPeeker, previews PricePreviewer, publisher Publisher, defaultLang string) *Service {
	return &Service{
		repo:      repo,
		config:    config,
		games:     games,
		giftCards: giftCards,
		previews:  previews,
		publisher: publisher,
		lang:      defaultLang,
		now:       time.Now,
	}
}

// Config returns the pricing configuration totals are derived from.
func (s *Service) Config() pricing.Config {
	return s.config.Current()
}

// Create starts a new session.
func (s *Service) Create(ctx context.Context, opts CreateOptions) (*Session, error) {
	session := NewSession(uuid.NewString(), s.now())
	session.SetLang(s.lang)
	session.SetLang(opts.Lang)
	session.Embedded = opts.Embedded
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, err
	}
	log.Debug().Str("session_id", session.ID).Bool("embedded", session.Embedded).Msg("Booking session created")
	return session, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Mutate applies fn under the session's update lock. fn must only use the
// session's mutators. Sessions with a submission in flight are read-only.
func (s *Service) Mutate(ctx context.Context, id string, fn func(*Session) error) (*Session, error) {
	updated, err := s.repo.Update(ctx, id, func(session *Session) error {
		if session.Submitting {
			return ErrSubmissionInProgress
		}
		return fn(session)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, updated)
	return updated, nil
}

func (s *Service) SetRooms(ctx context.Context, id string, n int) (*Session, error) {
	return s.Mutate(ctx, id, func(session *Session) error {
		return session.SetRooms(n)
	})
}

// SetGameForRoom assigns a game by id; an empty id unassigns the room.
func (s *Service) SetGameForRoom(ctx context.Context, id string, room int, gameID string) (*Session, error) {
	game, err := s.ResolveGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return s.Mutate(ctx, id, func(session *Session) error {
		return session.SetGameForRoom(room, game)
	})
}

func (s *Service) SetPlayersForRoom(ctx context.Context, id string, room, count int) (*Session, error) {
	return s.Mutate(ctx, id, func(session *Session) error {
		return session.SetPlayersForRoom(room, count)
	})
}

func (s *Service) SetDateTime(ctx context.Context, id, date, clock string) (*Session, error) {
	return s.Mutate(ctx, id, func(session *Session) error {
		return session.SetDateTime(date, clock)
	})
}

func (s *Service) SetCustomerInfo(ctx context.Context, id string, patch CustomerPatch) (*Session, error) {
	return s.Mutate(ctx, id, func(session *Session) error {
		session.SetCustomerInfo(patch)
		return nil
	})
}

func (s *Service) SetPaymentMethod(ctx context.Context, id string, m PaymentMethod) (*Session, error) {
	return s.Mutate(ctx, id, func(session *Session) error {
		return session.SetPaymentMethod(m)
	})
}

func (s *Service) ClearPlayers(ctx context.Context, id string) (*Session, error) {
	return s.Mutate(ctx, id, func(session *Session) error {
		session.ClearPlayers()
		return nil
	})
}

// Restart resets the session. Results of requests started before the
// restart are discarded when they arrive.
func (s *Service) Restart(ctx context.Context, id string) (*Session, error) {
	updated, err := s.repo.Update(ctx, id, func(session *Session) error {
		session.Reset()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, updated)
	return updated, nil
}

// ResolveGame looks a game up by id. An empty id resolves to no game.
func (s *Service) ResolveGame(ctx context.Context, gameID string) (*Game, error) {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return nil, nil
	}
	g, err := s.games.GameByID(ctx, gameID)
	if err != nil {
		if errors.Is(err, backend.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		if httpErr, ok := backend.AsHTTPError(err); ok && httpErr.Status == 404 {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	if g == nil {
		return nil, ErrGameNotFound
	}
	return GameFromBackend(*g), nil
}

// ApplyGiftCard peeks the code and applies its balance. A zero balance or a
// rejection by the backend leaves the session untouched; a failed lookup
// clears any applied gift card.
func (s *Service) ApplyGiftCard(ctx context.Context, id, code string) (*Session, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrGiftCardCodeRequired
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Submitting {
		return nil, ErrSubmissionInProgress
	}
	generation := current.Generation

	peek, err := s.giftCards.PeekGiftCard(ctx, code)
	if err != nil {
		if httpErr, ok := backend.AsHTTPError(err); ok && httpErr.IsClientError() && httpErr.Status != 401 {
			if msg := backend.MessageOf(err); msg != "" {
				return nil, fmt.Errorf("%w: %s", ErrGiftCardNotUsable, msg)
			}
			return nil, ErrGiftCardNotUsable
		}
		if errors.Is(err, backend.ErrUnauthorized) {
			return nil, err
		}
		log.Warn().Err(err).Str("session_id", id).Msg("Gift card lookup failed")
		_, clearErr := s.Mutate(ctx, id, func(session *Session) error {
			if session.Generation != generation {
				return ErrStaleResult
			}
			session.ClearGiftCard()
			return nil
		})
		if clearErr != nil && !errors.Is(clearErr, ErrStaleResult) {
			log.Warn().Err(clearErr).Str("session_id", id).Msg("Failed to clear gift card")
		}
		return nil, fmt.Errorf("%w: %v", ErrGiftCardLookupFailed, err)
	}

	amount := pricing.Round(peek.Amount)
	if amount <= 0 {
		return nil, ErrGiftCardNotUsable
	}

	return s.Mutate(ctx, id, func(session *Session) error {
		if session.Generation != generation {
			return ErrStaleResult
		}
		return session.SetGiftCard(code, amount)
	})
}

func (s *Service) RemoveGiftCard(ctx context.Context, id string) (*Session, error) {
	return s.Mutate(ctx, id, func(session *Session) error {
		session.ClearGiftCard()
		return nil
	})
}

// RefreshPromotion asks the backend for the promotion that applies to the
// first priced room. Without a priced room, or when the lookup fails, the
// promotion is cleared.
func (s *Service) RefreshPromotion(ctx context.Context, id string) (*Session, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	generation := current.Generation

	room := -1
	for i, r := range current.Games {
		if r.Valid() {
			room = i
			break
		}
	}

	var name string
	var fraction float64
	if room >= 0 && current.Date != "" && s.previews != nil {
		r := current.Games[room]
		preview, err := s.previews.PreviewPrice(ctx, r.Game.ID, current.Date, r.PlayerCount)
		if err != nil {
			log.Warn().Err(err).Str("session_id", id).Msg("Price preview failed, clearing promotion")
		} else {
			name, fraction = promotionOf(preview)
		}
	}

	return s.Mutate(ctx, id, func(session *Session) error {
		if session.Generation != generation {
			return ErrStaleResult
		}
		session.SetPromotion(name, fraction)
		return nil
	})
}

func promotionOf(p *backend.PricePreview) (string, float64) {
	if p == nil {
		return "", 0
	}
	if p.DiscountFraction > 0 {
		return p.PromotionName, p.DiscountFraction
	}
	if p.BasePrice > 0 && p.FinalPrice >= 0 && p.FinalPrice < p.BasePrice {
		return p.PromotionName, 1 - p.FinalPrice/p.BasePrice
	}
	return "", 0
}

// BeginSubmit marks the session as submitting and returns its snapshot.
func (s *Service) BeginSubmit(ctx context.Context, id string) (*Session, error) {
	return s.repo.Update(ctx, id, func(session *Session) error {
		if session.Submitting {
			return ErrSubmissionInProgress
		}
		session.Submitting = true
		return nil
	})
}

// CompleteSubmit resets the session after a successful submission.
func (s *Service) CompleteSubmit(ctx context.Context, id string) (*Session, error) {
	updated, err := s.repo.Update(ctx, id, func(session *Session) error {
		session.Reset()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, updated)
	return updated, nil
}

// AbortSubmit clears the submitting flag and keeps the session for a retry.
func (s *Service) AbortSubmit(ctx context.Context, id string) (*Session, error) {
	return s.repo.Update(ctx, id, func(session *Session) error {
		session.Submitting = false
		return nil
	})
}

// Snapshot is a session together with its derived totals.
func (s *Service) Snapshot(session *Session) *SessionResponse {
	return NewSessionResponse(session, s.config.Current())
}

func (s *Service) publish(ctx context.Context, session *Session) {
	if s.publisher == nil || session == nil {
		return
	}
	payload, err := json.Marshal(SessionEvent{Type: EventSessionUpdated, Session: s.Snapshot(session)})
	if err != nil {
		log.Error().Err(err).Str("session_id", session.ID).Msg("Failed to encode session event")
		return
	}
	s.publisher.Publish(ctx, session.ID, payload)
}
