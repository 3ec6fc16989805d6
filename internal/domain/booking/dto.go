package booking

import "github.com/vrroom/booking-bff/internal/domain/pricing"

// CreateSessionRequest for POST /sessions
type CreateSessionRequest struct {
	Lang     string `json:"lang"`
	Embedded bool   `json:"embedded"`
}

// SetRoomsRequest for PUT /sessions/{id}/rooms
type SetRoomsRequest struct {
	Rooms int `json:"rooms" validate:"required,gte=1"`
}

// SetGameRequest for PUT /sessions/{id}/rooms/{index}/game.
// An empty game id unassigns the room.
type SetGameRequest struct {
	GameID string `json:"gameId"`
}

// SetPlayersRequest for PUT /sessions/{id}/rooms/{index}/players
type SetPlayersRequest struct {
	PlayerCount *int `json:"playerCount" validate:"required,gte=0"`
}

// SetDateTimeRequest for PUT /sessions/{id}/datetime. Both empty clears the slot.
type SetDateTimeRequest struct {
	Date string `json:"date" validate:"required_with=Time,omitempty,iso_date"`
	Time string `json:"time" validate:"required_with=Date,omitempty,hhmm"`
}

// SetPaymentMethodRequest for PUT /sessions/{id}/payment-method
type SetPaymentMethodRequest struct {
	PaymentMethod string `json:"paymentMethod" validate:"omitempty,payment_method"`
}

// ApplyGiftCardRequest for POST /sessions/{id}/gift-card
type ApplyGiftCardRequest struct {
	Code string `json:"code" validate:"required,max=64"`
}

// SetTokenRequest for PUT /sessions/{id}/token
type SetTokenRequest struct {
	Token string `json:"token"`
}

// SessionResponse is a session snapshot with its derived totals.
type SessionResponse struct {
	*Session
	Totals Totals `json:"totals"`
}

// NewSessionResponse derives totals for a snapshot.
func NewSessionResponse(s *Session, cfg pricing.Config) *SessionResponse {
	return &SessionResponse{Session: s, Totals: s.Totals(cfg)}
}

// EventType of a live session event.
type EventType string

const (
	EventSessionUpdated EventType = "session_updated"
)

// SessionEvent is pushed to live subscribers of a session.
type SessionEvent struct {
	Type    EventType        `json:"type"`
	Session *SessionResponse `json:"session"`
}
