package admin

import "github.com/vrroom/booking-bff/internal/pkg/backend"

// Booking statuses that do not count toward revenue.
var nonRevenueStatuses = map[string]struct{}{
	"CANCELLED": {},
	"REFUNDED":  {},
}

// BookingSummary aggregates a list of bookings.
type BookingSummary struct {
	Count           int            `json:"count"`
	Revenue         int64          `json:"revenue"`
	Players         int            `json:"players"`
	Rooms           int            `json:"rooms"`
	ByStatus        map[string]int `json:"byStatus"`
	ByPaymentMethod map[string]int `json:"byPaymentMethod"`
}

// Add folds one booking into the summary.
func (s *BookingSummary) Add(b backend.Booking, revenue int64) {
	s.Count++
	s.Rooms += b.NumberOfRooms
	for _, g := range b.BookingGames {
		s.Players += g.PlayerCount
	}
	s.ByStatus[statusKey(b.Status)]++
	s.ByPaymentMethod[statusKey(b.PaymentMethod)]++
	if _, excluded := nonRevenueStatuses[b.Status]; !excluded {
		s.Revenue += revenue
	}
}

// BookingReport is the bookings of a date range with their summary.
type BookingReport struct {
	From     string            `json:"from,omitempty"`
	To       string            `json:"to,omitempty"`
	Status   string            `json:"status,omitempty"`
	Summary  BookingSummary    `json:"summary"`
	Bookings []backend.Booking `json:"bookings"`
}

func newSummary() BookingSummary {
	return BookingSummary{ByStatus: map[string]int{}, ByPaymentMethod: map[string]int{}}
}

func statusKey(s string) string {
	if s == "" {
		return "UNKNOWN"
	}
	return s
}
