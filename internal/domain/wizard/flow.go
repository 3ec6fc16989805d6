package wizard

import (
	"context"
	"errors"
	"net/url"

	"github.com/rs/zerolog/log"

	"github.com/vrroom/booking-bff/internal/domain/booking"
	"github.com/vrroom/booking-bff/internal/domain/pricing"
	"github.com/vrroom/booking-bff/internal/domain/submission"
)

var (
	ErrStepIncomplete    = errors.New("current step is incomplete")
	ErrInvalidTransition = errors.New("action is not available at the current step")
)

// Sessions is the session store as seen by the flow.
type Sessions interface {
	Get(ctx context.Context, id string) (*booking.Session, error)
	Mutate(ctx context.Context, id string, fn func(*booking.Session) error) (*booking.Session, error)
	ResolveGame(ctx context.Context, gameID string) (*booking.Game, error)
	RefreshPromotion(ctx context.Context, id string) (*booking.Session, error)
	Config() pricing.Config
}

// Submitter hands a finished session to the backend.
type Submitter interface {
	Submit(ctx context.Context, sessionID string) (*submission.Outcome, error)
}

// Flow drives a session through calendar, game, players and payment.
type Flow struct {
	sessions  Sessions
	submitter Submitter
}

// NewFlow creates the booking flow.
func NewFlow(sessions Sessions, submitter Submitter) *Flow {
	return &Flow{sessions: sessions, submitter: submitter}
}

// Resolve loads a deep link into the session. The link is authoritative for
// the flow's own fields; customer, payment and discounts are kept. An unknown
// game counts as absent.
func (f *Flow) Resolve(ctx context.Context, id string, q url.Values) (*booking.Session, error) {
	state := ParseQuery(q)

	var game *booking.Game
	if state.GameID != "" {
		g, err := f.sessions.ResolveGame(ctx, state.GameID)
		switch {
		case errors.Is(err, booking.ErrGameNotFound):
			log.Debug().Str("session_id", id).Str("game_id", state.GameID).Msg("Deep link names an unknown game")
		case err != nil:
			return nil, err
		default:
			game = g
		}
	}

	return f.sessions.Mutate(ctx, id, func(s *booking.Session) error {
		if state.HasSlot() {
			if err := s.SetDateTime(state.Date, state.Time); err != nil {
				return err
			}
		} else {
			s.ClearSlot()
		}
		if err := s.SetRooms(state.RoomCount()); err != nil {
			return err
		}
		s.SetGameForAllRooms(game)
		s.ClearPlayers()
		for i, n := range state.Players {
			if i >= s.Rooms {
				break
			}
			if err := s.SetPlayersForRoom(i, n); err != nil {
				return err
			}
		}
		s.SetLang(state.Lang)
		return s.SetStep(capStep(state.Step, furthest(s)))
	})
}

// SelectSlot picks a date, time and room count. With a game already chosen
// the flow moves on to players, otherwise to game selection.
func (f *Flow) SelectSlot(ctx context.Context, id, date, clock string, rooms int) (*booking.Session, error) {
	if date == "" || clock == "" {
		return nil, ErrStepIncomplete
	}
	return f.sessions.Mutate(ctx, id, func(s *booking.Session) error {
		if s.Step.Order() > booking.StepGame.Order() {
			return ErrInvalidTransition
		}
		if err := s.SetDateTime(date, clock); err != nil {
			return err
		}
		if rooms > 0 {
			if err := s.SetRooms(rooms); err != nil {
				return err
			}
		}
		if s.AllRoomsHaveGames() {
			return s.SetStep(booking.StepPlayers)
		}
		return s.SetStep(booking.StepGame)
	})
}

// ChooseGame assigns a game to every room and keeps the chosen slot.
func (f *Flow) ChooseGame(ctx context.Context, id, gameID string) (*booking.Session, error) {
	game, err := f.sessions.ResolveGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, ErrStepIncomplete
	}
	return f.sessions.Mutate(ctx, id, func(s *booking.Session) error {
		if s.Step == booking.StepPayment {
			return ErrInvalidTransition
		}
		s.SetGameForAllRooms(game)
		if s.Date != "" && s.Time != "" {
			return s.SetStep(booking.StepPlayers)
		}
		return s.SetStep(booking.StepCalendar)
	})
}

// Continue advances one step when the current one is complete. At payment
// it only checks that the booking can be submitted.
func (f *Flow) Continue(ctx context.Context, id string) (*booking.Session, error) {
	cfg := f.sessions.Config()
	updated, err := f.sessions.Mutate(ctx, id, func(s *booking.Session) error {
		switch s.Step {
		case booking.StepCalendar:
			if s.Date == "" || s.Time == "" {
				return ErrStepIncomplete
			}
			if s.AllRoomsHaveGames() {
				return s.SetStep(booking.StepPlayers)
			}
			return s.SetStep(booking.StepGame)
		case booking.StepGame:
			if !s.AllRoomsHaveGames() {
				return ErrStepIncomplete
			}
			return s.SetStep(booking.StepPlayers)
		case booking.StepPlayers:
			if !s.AllRoomsHavePlayers() {
				return ErrStepIncomplete
			}
			return s.SetStep(booking.StepPayment)
		case booking.StepPayment:
			if !s.Customer.Valid() || !s.AllRoomsPriced(cfg) {
				return ErrStepIncomplete
			}
			return nil
		}
		return ErrInvalidTransition
	})
	if err != nil || updated.Step != booking.StepPayment {
		return updated, err
	}

	refreshed, err := f.sessions.RefreshPromotion(ctx, id)
	if err != nil {
		log.Warn().Err(err).Str("session_id", id).Msg("Promotion refresh after continue failed")
		return updated, nil
	}
	return refreshed, nil
}

// Back returns to the previous step. Leaving players for the calendar drops
// the slot, rooms and players; the chosen game stays.
func (f *Flow) Back(ctx context.Context, id string) (*booking.Session, error) {
	return f.sessions.Mutate(ctx, id, func(s *booking.Session) error {
		switch s.Step {
		case booking.StepPayment:
			return s.SetStep(booking.StepPlayers)
		case booking.StepPlayers:
			s.ClearSlot()
			s.ClearPlayers()
			if err := s.SetRooms(1); err != nil {
				return err
			}
			return s.SetStep(booking.StepCalendar)
		case booking.StepGame:
			s.ClearSlot()
			return s.SetStep(booking.StepCalendar)
		}
		return ErrInvalidTransition
	})
}

// ClearGame unassigns the game together with the player counts that
// depended on it.
func (f *Flow) ClearGame(ctx context.Context, id string) (*booking.Session, error) {
	return f.sessions.Mutate(ctx, id, func(s *booking.Session) error {
		s.SetGameForAllRooms(nil)
		s.ClearPlayers()
		if s.Date != "" && s.Time != "" {
			return s.SetStep(booking.StepGame)
		}
		return s.SetStep(booking.StepCalendar)
	})
}

// Submit sends the session to the backend from the payment step.
func (f *Flow) Submit(ctx context.Context, id string) (*submission.Outcome, error) {
	s, err := f.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Step != booking.StepPayment {
		return nil, ErrInvalidTransition
	}
	return f.submitter.Submit(ctx, id)
}

// furthest is the last step the session's contents support.
func furthest(s *booking.Session) booking.Step {
	switch {
	case s.Date == "" || s.Time == "":
		return booking.StepCalendar
	case !s.AllRoomsHaveGames():
		return booking.StepGame
	case !s.AllRoomsHavePlayers():
		return booking.StepPlayers
	}
	return booking.StepPayment
}
