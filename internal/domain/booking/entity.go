package booking

import (
	"time"

	"github.com/vrroom/booking-bff/internal/pkg/backend"
)

// Step is a wizard step.
type Step string

const (
	StepCalendar Step = "calendar"
	StepGame     Step = "game"
	StepPlayers  Step = "players"
	StepPayment  Step = "payment"
)

// Order returns the position of the step in the wizard, or -1 if unknown.
func (s Step) Order() int {
	switch s {
	case StepCalendar:
		return 0
	case StepGame:
		return 1
	case StepPlayers:
		return 2
	case StepPayment:
		return 3
	}
	return -1
}

// Valid reports whether s is a known step.
func (s Step) Valid() bool {
	return s.Order() >= 0
}

// PaymentMethod is how the customer pays. The zero value means unset.
type PaymentMethod string

const (
	PaymentUnset  PaymentMethod = ""
	PaymentOnline PaymentMethod = "ONLINE"
	PaymentCash   PaymentMethod = "CASH"
)

// Valid reports whether m is a selectable payment method.
func (m PaymentMethod) Valid() bool {
	return m == PaymentOnline || m == PaymentCash
}

// Game is read-only reference data for a bookable game.
type Game struct {
	ID               string   `json:"id"`
	Code             string   `json:"code,omitempty"`
	Name             string   `json:"name"`
	Description      string   `json:"description,omitempty"`
	ShortDescription string   `json:"shortDescription,omitempty"`
	ImageURL         string   `json:"imageUrl,omitempty"`
	MinPlayers       int      `json:"minPlayers"`
	MaxPlayers       int      `json:"maxPlayers"`
	DurationMinutes  int      `json:"durationMinutes"`
	Difficulty       string   `json:"difficulty,omitempty"`
	Active           bool     `json:"active"`
	Tags             []string `json:"tags,omitempty"`
}

// GameFromBackend converts a backend game.
func GameFromBackend(g backend.Game) *Game {
	return &Game{
		ID:               g.ID,
		Code:             g.Code,
		Name:             g.Name,
		Description:      g.Description,
		ShortDescription: g.ShortDescription,
		ImageURL:         g.ImageURL,
		MinPlayers:       g.MinPlayers,
		MaxPlayers:       g.MaxPlayers,
		DurationMinutes:  g.Duration,
		Difficulty:       g.Difficulty,
		Active:           g.Active,
		Tags:             g.Tags,
	}
}

// Allows reports whether n players fit the game's bounds. A zero MaxPlayers
// means unbounded.
func (g *Game) Allows(n int) bool {
	if g == nil || n <= 0 {
		return false
	}
	if g.MinPlayers > 0 && n < g.MinPlayers {
		return false
	}
	if g.MaxPlayers > 0 && n > g.MaxPlayers {
		return false
	}
	return true
}

// RoomSelection is the game and player count of one room.
type RoomSelection struct {
	Game        *Game `json:"game"`
	PlayerCount int   `json:"playerCount"`
}

// Valid reports whether the room counts toward totals.
func (r RoomSelection) Valid() bool {
	return r.Game != nil && r.Game.Allows(r.PlayerCount)
}

// Customer is the contact data of the person booking.
type Customer struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// Valid reports whether all four fields are present.
func (c Customer) Valid() bool {
	return c.FirstName != "" && c.LastName != "" && c.Email != "" && c.Phone != ""
}

// Missing lists the empty customer fields.
func (c Customer) Missing() []string {
	var out []string
	if c.FirstName == "" {
		out = append(out, "customerFirstName")
	}
	if c.LastName == "" {
		out = append(out, "customerLastName")
	}
	if c.Email == "" {
		out = append(out, "customerEmail")
	}
	if c.Phone == "" {
		out = append(out, "customerPhone")
	}
	return out
}

// CustomerPatch is a partial customer update; nil fields are left unchanged.
type CustomerPatch struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

// Promotion is a percentage discount applied to the base total.
type Promotion struct {
	Name             string  `json:"name"`
	DiscountFraction float64 `json:"discountFraction"`
}

// GiftCard is a gift card whose balance was confirmed by a peek.
type GiftCard struct {
	Code            string `json:"code"`
	RemainingAmount int64  `json:"remainingAmount"`
}

// Session is an in-progress booking. Fields change only through the
// mutators in session.go.
type Session struct {
	ID            string          `json:"id"`
	Date          string          `json:"date"`
	Time          string          `json:"time"`
	Rooms         int             `json:"rooms"`
	Games         []RoomSelection `json:"games"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	Customer      Customer        `json:"customer"`
	Promotion     *Promotion      `json:"promotion,omitempty"`
	GiftCard      *GiftCard       `json:"giftCard,omitempty"`
	Step          Step            `json:"step"`
	Lang          string          `json:"lang"`
	Embedded      bool            `json:"embedded"`
	Submitting    bool            `json:"submitting"`
	Generation    int64           `json:"generation"`
	Version       int64           `json:"version"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}
