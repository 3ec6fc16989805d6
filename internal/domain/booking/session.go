package booking

import (
	"strings"
	"time"

	"github.com/vrroom/booking-bff/internal/domain/pricing"
)

// NewSession creates a zeroed session with one empty room.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		Rooms:     1,
		Games:     []RoomSelection{{}},
		Step:      StepCalendar,
		Lang:      "en",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy. Game references are shared; games are read-only.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Games = append([]RoomSelection(nil), s.Games...)
	if s.Promotion != nil {
		p := *s.Promotion
		c.Promotion = &p
	}
	if s.GiftCard != nil {
		g := *s.GiftCard
		c.GiftCard = &g
	}
	return &c
}

// SetRooms resizes the room list to n. Existing rooms keep their selection;
// new rooms get room 0's game, or none, and no players.
func (s *Session) SetRooms(n int) error {
	if n < 1 {
		return ErrInvalidRoomCount
	}
	var first *Game
	if len(s.Games) > 0 {
		first = s.Games[0].Game
	}
	next := make([]RoomSelection, n)
	for i := range next {
		if i < len(s.Games) {
			next[i] = s.Games[i]
			continue
		}
		next[i] = RoomSelection{Game: first}
	}
	s.Rooms = n
	s.Games = next
	return nil
}

// SetGameForRoom replaces room i's game and keeps its player count.
// A nil game unassigns the room.
func (s *Session) SetGameForRoom(i int, game *Game) error {
	if i < 0 || i >= len(s.Games) {
		return ErrRoomIndexOutOfRange
	}
	s.Games[i].Game = game
	return nil
}

// SetGameForAllRooms assigns the same game to every room.
func (s *Session) SetGameForAllRooms(game *Game) {
	for i := range s.Games {
		s.Games[i].Game = game
	}
}

// SetPlayersForRoom sets room i's player count. Bounds against the game are
// not enforced here; out-of-bounds rooms simply do not count toward totals.
func (s *Session) SetPlayersForRoom(i, count int) error {
	if i < 0 || i >= len(s.Games) {
		return ErrRoomIndexOutOfRange
	}
	if count < 0 {
		return ErrInvalidPlayerCount
	}
	s.Games[i].PlayerCount = count
	return nil
}

// ClearPlayers zeroes every room's player count.
func (s *Session) ClearPlayers() {
	for i := range s.Games {
		s.Games[i].PlayerCount = 0
	}
}

// SetDateTime sets both the date and the time. Two empty values clear the slot.
func (s *Session) SetDateTime(date, clock string) error {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if date == "" && clock == "" {
		s.Date, s.Time = "", ""
		return nil
	}
	if _, ok := pricing.ParseDate(date); !ok {
		return ErrInvalidDate
	}
	if _, err := time.Parse(pricing.TimeLayout, clock); err != nil {
		return ErrInvalidTime
	}
	s.Date, s.Time = date, clock
	return nil
}

// ClearSlot clears the date and time.
func (s *Session) ClearSlot() {
	s.Date, s.Time = "", ""
}

// SetCustomerInfo merges a partial customer update.
func (s *Session) SetCustomerInfo(p CustomerPatch) {
	if p.FirstName != nil {
		s.Customer.FirstName = strings.TrimSpace(*p.FirstName)
	}
	if p.LastName != nil {
		s.Customer.LastName = strings.TrimSpace(*p.LastName)
	}
	if p.Email != nil {
		s.Customer.Email = strings.TrimSpace(*p.Email)
	}
	if p.Phone != nil {
		s.Customer.Phone = strings.TrimSpace(*p.Phone)
	}
}

// SetPaymentMethod sets or, with PaymentUnset, clears the payment method.
func (s *Session) SetPaymentMethod(m PaymentMethod) error {
	if m != PaymentUnset && !m.Valid() {
		return ErrInvalidPaymentMethod
	}
	s.PaymentMethod = m
	return nil
}

// SetPromotion applies a promotion. A non-positive fraction clears it.
func (s *Session) SetPromotion(name string, fraction float64) {
	if !(fraction > 0) {
		s.ClearPromotion()
		return
	}
	if fraction > 1 {
		fraction = 1
	}
	s.Promotion = &Promotion{Name: name, DiscountFraction: fraction}
}

func (s *Session) ClearPromotion() {
	s.Promotion = nil
}

// SetGiftCard applies a gift card with a positive remaining amount.
func (s *Session) SetGiftCard(code string, amount int64) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return ErrGiftCardCodeRequired
	}
	if amount <= 0 {
		return ErrGiftCardNotUsable
	}
	s.GiftCard = &GiftCard{Code: code, RemainingAmount: amount}
	return nil
}

func (s *Session) ClearGiftCard() {
	s.GiftCard = nil
}

// SetStep records the current wizard step.
func (s *Session) SetStep(step Step) error {
	if !step.Valid() {
		return ErrInvalidStep
	}
	s.Step = step
	return nil
}

// SetLang sets the display language. Empty values are ignored.
func (s *Session) SetLang(lang string) {
	if lang = strings.TrimSpace(lang); lang != "" {
		s.Lang = lang
	}
}

// Reset returns the session to its initial state. Identity, language and
// embedding survive; the generation is bumped so late results can be detected.
func (s *Session) Reset() {
	fresh := NewSession(s.ID, s.CreatedAt)
	fresh.Lang = s.Lang
	fresh.Embedded = s.Embedded
	fresh.Generation = s.Generation + 1
	fresh.Version = s.Version
	fresh.UpdatedAt = s.UpdatedAt
	*s = *fresh
}
