package submission

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vrroom/booking-bff/internal/domain/booking"
	"github.com/vrroom/booking-bff/internal/domain/pricing"
	"github.com/vrroom/booking-bff/internal/pkg/backend"
	"github.com/vrroom/booking-bff/internal/pkg/validator"
)

// ValidationError lists the fields that keep a session from being submitted.
// It is detected locally; nothing is sent to the backend.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "booking is incomplete: missing " + strings.Join(e.Missing, ", ")
}

// BuildRequest turns a session into a booking request. Room prices are the
// derived room totals at the time of the call.
func BuildRequest(s *booking.Session, cfg pricing.Config) (backend.CreateBookingRequest, error) {
	var missing []string
	if s.Date == "" {
		missing = append(missing, "bookingDate")
	}
	if s.Time == "" {
		missing = append(missing, "bookingTime")
	}
	if s.Rooms < 1 {
		missing = append(missing, "numberOfRooms")
	}
	if !s.PaymentMethod.Valid() {
		missing = append(missing, "paymentMethod")
	}
	if len(missing) > 0 {
		return backend.CreateBookingRequest{}, &ValidationError{Missing: missing}
	}

	missing = append(missing, s.Customer.Missing()...)
	for i, room := range s.Games {
		switch {
		case room.Game == nil:
			missing = append(missing, fmt.Sprintf("games[%d].gameId", i))
		case !room.Valid():
			missing = append(missing, fmt.Sprintf("games[%d].playerCount", i))
		case s.RoomTotal(cfg, i) <= 0:
			missing = append(missing, fmt.Sprintf("games[%d].price", i))
		}
	}
	if len(missing) > 0 {
		return backend.CreateBookingRequest{}, &ValidationError{Missing: missing}
	}

	req := backend.CreateBookingRequest{
		BookingDate:       s.Date,
		BookingTime:       s.Time,
		NumberOfRooms:     s.Rooms,
		TotalPrice:        s.TotalInclVat(cfg),
		PaymentMethod:     string(s.PaymentMethod),
		CustomerFirstName: s.Customer.FirstName,
		CustomerLastName:  s.Customer.LastName,
		CustomerEmail:     s.Customer.Email,
		CustomerPhone:     s.Customer.Phone,
		Games:             make([]backend.BookingGameRequest, 0, len(s.Games)),
	}
	for i, room := range s.Games {
		req.Games = append(req.Games, backend.BookingGameRequest{
			GameID:      room.Game.ID,
			RoomNumber:  i + 1,
			PlayerCount: room.PlayerCount,
			Price:       s.RoomTotal(cfg, i),
		})
	}
	if s.GiftCard != nil {
		req.DiscountCode = s.GiftCard.Code
	}

	if errs := validator.Validate(req); errs != nil {
		fields := make([]string, 0, len(errs))
		for field := range errs {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		return backend.CreateBookingRequest{}, &ValidationError{Missing: fields}
	}
	return req, nil
}
