package wizard

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vrroom/booking-bff/internal/domain/booking"
)

func mustQuery(t *testing.T, raw string) url.Values {
	t.Helper()
	q, err := url.ParseQuery(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return q
}

func TestParseQuery_MalformedPlayersTreatedAsAbsent(t *testing.T) {
	withBad := ParseQuery(mustQuery(t, "date=2025-11-03&time=14:00&gameId=1&players=abc&step=payment"))
	without := ParseQuery(mustQuery(t, "date=2025-11-03&time=14:00&gameId=1&step=payment"))

	assert.Equal(t, without, withBad)
	assert.Nil(t, withBad.Players)
	assert.Equal(t, booking.StepPlayers, withBad.Step)
}

func TestParseQuery_StepCappedByParsedValues(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  booking.Step
	}{
		{"empty", "", booking.StepCalendar},
		{"bad date", "date=03.11.2025&time=14:00&gameId=1&step=players", booking.StepCalendar},
		{"bad time", "date=2025-11-03&time=2pm&step=game", booking.StepCalendar},
		{"slot only", "date=2025-11-03&time=14:00&step=payment", booking.StepGame},
		{"no step requested", "date=2025-11-03&time=14:00&gameId=1&players=3", booking.StepPlayers},
		{"earlier step kept", "date=2025-11-03&time=14:00&gameId=1&step=calendar", booking.StepCalendar},
		{"payment", "date=2025-11-03&time=14:00&gameId=1&players=3&step=payment", booking.StepPayment},
		{"legacy payment name", "date=2025-11-03&time=14:00&gameId=1&players=3&step=booking", booking.StepPayment},
		{"room without players", "date=2025-11-03&time=14:00&gameId=1&rooms=2&players=3&step=payment", booking.StepPlayers},
		{"every room has players", "date=2025-11-03&time=14:00&gameId=1&rooms=2&players=3,2&step=payment", booking.StepPayment},
		{"zero players", "date=2025-11-03&time=14:00&gameId=1&players=0&step=payment", booking.StepPlayers},
		{"unknown step", "date=2025-11-03&time=14:00&gameId=1&step=checkout", booking.StepPlayers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseQuery(mustQuery(t, tt.query)).Step)
		})
	}
}

func TestParseQuery_BadRoomsIgnored(t *testing.T) {
	s := ParseQuery(mustQuery(t, "rooms=-2"))

	assert.Zero(t, s.Rooms)
	assert.Equal(t, 1, s.RoomCount())
}

func TestParseQuery_Lang(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"lang=mk", "mk"},
		{"lang=mk-MK", "mk"},
		{"locale=en-US", "en"},
		{"lang=mk&locale=en", "mk"},
		{"lang=fr", ""},
		{"lang=%%%", ""},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			q, _ := url.ParseQuery(tt.query)
			assert.Equal(t, tt.want, ParseQuery(q).Lang)
		})
	}
}

func TestState_QueryKeepsUnrelatedParameters(t *testing.T) {
	in := mustQuery(t, "date=2025-11-03&time=14:00&gameId=1&players=3,2&rooms=2&lang=mk&utm_source=ig&ref=a&ref=b")

	out := ParseQuery(in).Query()

	assert.Equal(t, "ig", out.Get("utm_source"))
	assert.Equal(t, []string{"a", "b"}, out["ref"])
	assert.Equal(t, "3,2", out.Get(ParamPlayers))
	assert.Equal(t, "2", out.Get(ParamRooms))
	assert.Equal(t, "players", out.Get(ParamStep))
}

func TestStateFromSession_CalendarOwnsOnlyTheSlot(t *testing.T) {
	s := booking.NewSession("s1", testNow)
	s.Lang = "mk"
	_ = s.SetGameForRoom(0, &booking.Game{ID: "1", MinPlayers: 2, MaxPlayers: 6})
	_ = s.SetPlayersForRoom(0, 3)

	q := StateFromSession(s, mustQuery(t, "utm_source=ig&step=players&players=3")).Query()

	assert.Equal(t, url.Values{"gameId": {"1"}, "lang": {"mk"}, "utm_source": {"ig"}}, q)
}
