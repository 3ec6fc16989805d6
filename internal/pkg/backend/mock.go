package backend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrMockNoConfig is returned by Mock.GetConfig. Pricing config is never
// substituted with sample data; callers fall back to their own defaults.
var ErrMockNoConfig = errors.New("backend: mock dataset has no pricing config")

// ErrGameNotFound is returned when a game code is unknown.
var ErrGameNotFound = errors.New("backend: game not found")

const (
	mockOpeningHour = 12
	mockClosingHour = 22
	mockMaxSpots    = 2
)

// Mock serves a small fixed dataset. It is used as the secondary reader when
// the backend cannot be reached and mock fallback is enabled.
type Mock struct {
	games    []Game
	bookings []Booking
	now      func() time.Time
}

// NewMock creates the sample dataset.
func NewMock() *Mock {
	return newMock(time.Now)
}

func newMock(now func() time.Time) *Mock {
	today := now().Format("2006-01-02")
	return &Mock{
		now: now,
		games: []Game{
			{
				ID:               "1",
				Code:             "alien-lab",
				Name:             "Alien Laboratory Escape",
				ShortDescription: "Escape from an alien research lab using futuristic technology and teamwork.",
				Duration:         60,
				MinPlayers:       2,
				MaxPlayers:       6,
				Difficulty:       "MEDIUM",
				Active:           true,
				Tags:             []string{"Sci-Fi", "Puzzle", "Adventure"},
			},
			{
				ID:               "2",
				Code:             "haunted-manor",
				Name:             "Haunted Manor Mystery",
				ShortDescription: "Explore a haunted Victorian mansion and uncover its dark secrets.",
				Duration:         60,
				MinPlayers:       2,
				MaxPlayers:       5,
				Difficulty:       "HARD",
				Active:           true,
				Tags:             []string{"Horror", "Mystery", "Paranormal"},
			},
			{
				ID:               "3",
				Code:             "underwater-treasure",
				Name:             "Underwater Treasure Hunt",
				ShortDescription: "Dive into an underwater adventure to find the lost city of Atlantis.",
				Duration:         45,
				MinPlayers:       2,
				MaxPlayers:       4,
				Difficulty:       "EASY",
				Active:           true,
				Tags:             []string{"Adventure", "Exploration", "Treasure"},
			},
		},
		bookings: []Booking{
			{
				ID:                 "B001",
				BookingDate:        today,
				BookingTime:        "14:00",
				NumberOfRooms:      1,
				TotalPrice:         3600,
				Status:             "CONFIRMED",
				PaymentMethod:      "ONLINE",
				CustomerFirstName:  "John",
				CustomerLastName:   "Doe",
				CustomerEmail:      "john.doe@example.com",
				CustomerPhone:      "+389 70 123 456",
				ConfirmationNumber: "VR-2024-001",
				BookingGames: []BookingGame{
					{ID: "BG001", GameID: "1", GameName: "Alien Laboratory Escape", RoomNumber: 1, PlayerCount: 4, Price: 3600},
				},
			},
			{
				ID:                 "B002",
				BookingDate:        today,
				BookingTime:        "16:00",
				NumberOfRooms:      1,
				TotalPrice:         3100,
				Status:             "CONFIRMED",
				PaymentMethod:      "CASH",
				CustomerFirstName:  "Sarah",
				CustomerLastName:   "Smith",
				CustomerEmail:      "sarah.smith@example.com",
				CustomerPhone:      "+389 71 234 567",
				ConfirmationNumber: "VR-2024-002",
				BookingGames: []BookingGame{
					{ID: "BG002", GameID: "2", GameName: "Haunted Manor Mystery", RoomNumber: 1, PlayerCount: 3, Price: 3100},
				},
			},
		},
	}
}

func (m *Mock) GetConfig(ctx context.Context) (map[string]interface{}, error) {
	return nil, ErrMockNoConfig
}

func (m *Mock) GetActiveGames(ctx context.Context) ([]Game, error) {
	out := make([]Game, 0, len(m.games))
	for _, g := range m.games {
		if g.Active {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *Mock) GetGameByCode(ctx context.Context, code string) (*Game, error) {
	for _, g := range m.games {
		if g.Code == code || g.ID == code {
			game := g
			return &game, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrGameNotFound, code)
}

// GetAvailability derives a deterministic schedule: every slot of the day is
// available except those taken by the sample bookings.
func (m *Mock) GetAvailability(ctx context.Context, start, end, gameID string) ([]DaySchedule, error) {
	from, err := time.Parse("2006-01-02", start)
	if err != nil {
		return nil, fmt.Errorf("invalid start date: %w", err)
	}
	to, err := time.Parse("2006-01-02", end)
	if err != nil {
		return nil, fmt.Errorf("invalid end date: %w", err)
	}

	taken := make(map[string]int)
	for _, b := range m.bookings {
		if gameID != "" && !bookingHasGame(b, gameID) {
			continue
		}
		taken[b.BookingDate+" "+b.BookingTime] += b.NumberOfRooms
	}

	var out []DaySchedule
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		day := DaySchedule{
			Date:    d.Format("2006-01-02"),
			DayName: d.Weekday().String(),
		}
		for h := mockOpeningHour; h < mockClosingHour; h++ {
			slot := fmt.Sprintf("%02d:00", h)
			used := taken[day.Date+" "+slot]
			free := mockMaxSpots - used
			if free < 0 {
				free = 0
			}
			status := SlotAvailable
			if free == 0 {
				status = SlotBooked
			}
			day.Slots = append(day.Slots, TimeSlotAvailability{
				Time:           slot,
				Status:         status,
				AvailableSpots: free,
				MaxSpots:       mockMaxSpots,
			})
		}
		out = append(out, day)
	}
	return out, nil
}

func (m *Mock) ListBookings(ctx context.Context, filter BookingFilter) ([]Booking, error) {
	out := make([]Booking, 0, len(m.bookings))
	for _, b := range m.bookings {
		if filter.From != "" && b.BookingDate < filter.From {
			continue
		}
		if filter.To != "" && b.BookingDate > filter.To {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].BookingDate != out[j].BookingDate {
			return out[i].BookingDate < out[j].BookingDate
		}
		return out[i].BookingTime < out[j].BookingTime
	})
	return out, nil
}

func bookingHasGame(b Booking, gameID string) bool {
	for _, g := range b.BookingGames {
		if g.GameID == gameID {
			return true
		}
	}
	return false
}
