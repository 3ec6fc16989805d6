package backend

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type failingReader struct {
	err   error
	calls int
}

func (f *failingReader) GetConfig(ctx context.Context) (map[string]interface{}, error) {
	f.calls++
	return nil, f.err
}

func (f *failingReader) GetActiveGames(ctx context.Context) ([]Game, error) {
	f.calls++
	return nil, f.err
}

func (f *failingReader) GetGameByCode(ctx context.Context, code string) (*Game, error) {
	f.calls++
	return nil, f.err
}

func (f *failingReader) GetAvailability(ctx context.Context, start, end, gameID string) ([]DaySchedule, error) {
	f.calls++
	return nil, f.err
}

func (f *failingReader) ListBookings(ctx context.Context, filter BookingFilter) ([]Booking, error) {
	f.calls++
	return nil, f.err
}

func fixedNow() time.Time {
	return time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)
}

func TestFallbackServesMockOnNetworkFailure(t *testing.T) {
	primary := &failingReader{err: fmt.Errorf("backend games network error: %w", errors.New("refused"))}
	reader := NewFallback(primary, newMock(fixedNow))

	games, err := reader.GetActiveGames(context.Background())
	if err != nil {
		t.Fatalf("expected mock data, got %v", err)
	}
	if len(games) != 3 {
		t.Fatalf("expected 3 mock games, got %d", len(games))
	}
	if primary.calls != 1 {
		t.Fatalf("expected primary to be tried once, got %d", primary.calls)
	}
}

func TestFallbackKeepsUnauthorized(t *testing.T) {
	primary := &failingReader{err: &HTTPError{Status: 401}}
	reader := NewFallback(primary, newMock(fixedNow))

	_, err := reader.ListBookings(context.Background(), BookingFilter{})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestFallbackSubstitutionPolicy(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		substitute bool
	}{
		{"not configured", fmt.Errorf("backend games config error: %w", ErrNotConfigured), true},
		{"timeout", fmt.Errorf("backend games timeout: %w", context.DeadlineExceeded), true},
		{"server error", &HTTPError{Status: 503}, true},
		{"bad gateway", &HTTPError{Status: 502}, true},
		{"not found", &HTTPError{Status: 404, Message: "No such game"}, false},
		{"bad request", &HTTPError{Status: 400, Message: "Invalid date range"}, false},
		{"forbidden", &HTTPError{Status: 403}, false},
		{"unknown game", ErrGameNotFound, false},
		{"cancelled", context.Canceled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			primary := &failingReader{err: tt.err}
			reader := NewFallback(primary, newMock(fixedNow))

			_, err := reader.GetAvailability(context.Background(), "2025-11-03", "2025-11-03", "")

			if tt.substitute && err != nil {
				t.Fatalf("expected mock data, got %v", err)
			}
			if !tt.substitute && !errors.Is(err, tt.err) {
				t.Fatalf("expected %v to pass through, got %v", tt.err, err)
			}
		})
	}
}

func TestFallbackKeepsGameLookupRejection(t *testing.T) {
	primary := &failingReader{err: &HTTPError{Status: 404}}
	reader := NewFallback(primary, newMock(fixedNow))

	if _, err := reader.GetGameByCode(context.Background(), "alien-lab"); err == nil {
		t.Fatal("expected 404 to pass through instead of a mock game")
	}
}

func TestFallbackNeverSubstitutesConfig(t *testing.T) {
	primary := &failingReader{err: errors.New("down")}
	reader := NewFallback(primary, newMock(fixedNow))

	if _, err := reader.GetConfig(context.Background()); err == nil {
		t.Fatal("expected config error to pass through")
	}
}

func TestFallbackWithoutSecondary(t *testing.T) {
	primary := &failingReader{err: errors.New("down")}
	reader := NewFallback(primary, nil)

	if _, err := reader.GetActiveGames(context.Background()); err == nil {
		t.Fatal("expected error without secondary")
	}
}

func TestMockAvailabilityMarksBookedSlots(t *testing.T) {
	mock := newMock(fixedNow)

	days, err := mock.GetAvailability(context.Background(), "2025-11-03", "2025-11-04", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(days))
	}
	if len(days[0].Slots) != 10 {
		t.Fatalf("expected 10 slots, got %d", len(days[0].Slots))
	}
	for _, slot := range days[0].Slots {
		if slot.Time == "14:00" && slot.AvailableSpots != 1 {
			t.Fatalf("expected one spot left at 14:00, got %d", slot.AvailableSpots)
		}
	}
}

func TestMockGameByCode(t *testing.T) {
	mock := newMock(fixedNow)

	game, err := mock.GetGameByCode(context.Background(), "haunted-manor")
	if err != nil || game.ID != "2" {
		t.Fatalf("expected haunted manor, got %+v %v", game, err)
	}
	if _, err := mock.GetGameByCode(context.Background(), "nope"); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
}
