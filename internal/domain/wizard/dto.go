package wizard

import (
	"github.com/vrroom/booking-bff/internal/domain/booking"
	"github.com/vrroom/booking-bff/internal/domain/submission"
)

// SelectSlotRequest is the body of POST /flow/select-slot.
type SelectSlotRequest struct {
	Date  string `json:"date" validate:"required,iso_date"`
	Time  string `json:"time" validate:"required,hhmm"`
	Rooms int    `json:"rooms" validate:"omitempty,gte=1"`
}

// ChooseGameRequest is the body of POST /flow/choose-game.
type ChooseGameRequest struct {
	GameID string `json:"gameId" validate:"required"`
}

// FlowResponse is the flow position after an action, with the query string
// the client should mirror into its URL.
type FlowResponse struct {
	Step    booking.Step             `json:"step"`
	Query   string                   `json:"query"`
	Session *booking.SessionResponse `json:"session"`
	Outcome *submission.Outcome      `json:"outcome,omitempty"`
}
