package wizard

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vrroom/booking-bff/internal/domain/booking"
	"github.com/vrroom/booking-bff/internal/domain/pricing"
	"github.com/vrroom/booking-bff/internal/domain/submission"
	"github.com/vrroom/booking-bff/internal/pkg/backend"
)

var testNow = time.Date(2025, 11, 1, 9, 0, 0, 0, time.UTC)

type staticConfig struct{ cfg pricing.Config }

func (c staticConfig) Current() pricing.Config { return c.cfg }

type fakeGames map[string]backend.Game

func (f fakeGames) GameByID(ctx context.Context, id string) (*backend.Game, error) {
	g, ok := f[id]
	if !ok {
		return nil, backend.ErrGameNotFound
	}
	return &g, nil
}

type fakeSubmitter struct {
	calls int
}

func (f *fakeSubmitter) Submit(ctx context.Context, sessionID string) (*submission.Outcome, error) {
	f.calls++
	return &submission.Outcome{Status: submission.StatusSuccess, Redirect: "/my-bookings"}, nil
}

type flowFixture struct {
	sessions  *booking.Service
	submitter *fakeSubmitter
	flow      *Flow
}

func newFlowFixture() *flowFixture {
	cfg := pricing.DefaultConfig()
	cfg.Tiers = []pricing.Tier{{MinPlayers: 2, MaxPlayers: 6, PricePerPlayer: 1000}}
	games := fakeGames{
		"1": {ID: "1", Code: "alien-lab", Name: "Alien Laboratory Escape", MinPlayers: 2, MaxPlayers: 6, Active: true},
	}
	f := &flowFixture{
		sessions:  booking.NewService(booking.NewMemoryRepository(0), staticConfig{cfg}, games, nil, nil, nil, "en"),
		submitter: &fakeSubmitter{},
	}
	f.flow = NewFlow(f.sessions, f.submitter)
	return f
}

func (f *flowFixture) newSession(t *testing.T) string {
	t.Helper()
	s, err := f.sessions.Create(context.Background(), booking.CreateOptions{})
	require.NoError(t, err)
	return s.ID
}

func TestFlow_ResolveMalformedPlayersMatchesAbsent(t *testing.T) {
	f := newFlowFixture()
	ctx := context.Background()
	bad := mustQuery(t, "date=2025-11-03&time=14:00&gameId=1&players=abc&step=payment")
	good := mustQuery(t, "date=2025-11-03&time=14:00&gameId=1&step=payment")

	a, err := f.flow.Resolve(ctx, f.newSession(t), bad)
	require.NoError(t, err)
	b, err := f.flow.Resolve(ctx, f.newSession(t), good)
	require.NoError(t, err)

	assert.Equal(t, booking.StepPlayers, a.Step)
	assert.Equal(t, b.Step, a.Step)
	assert.Equal(t, b.Games, a.Games)
	assert.Equal(t, StateFromSession(b, good).Query(), StateFromSession(a, bad).Query())
}

func TestFlow_ResolveUnknownGameCountsAsAbsent(t *testing.T) {
	f := newFlowFixture()

	s, err := f.flow.Resolve(context.Background(), f.newSession(t), mustQuery(t, "date=2025-11-03&time=14:00&gameId=404&players=3&step=payment"))

	require.NoError(t, err)
	assert.Equal(t, booking.StepGame, s.Step)
	assert.Nil(t, s.Games[0].Game)
}

func TestFlow_BackFromPlayersClearsLaterParameters(t *testing.T) {
	f := newFlowFixture()
	ctx := context.Background()
	link := mustQuery(t, "date=2025-11-03&time=14:00&rooms=1&gameId=1&players=3&lang=mk&utm_source=ig&step=players")
	id := f.newSession(t)
	s, err := f.flow.Resolve(ctx, id, link)
	require.NoError(t, err)
	require.Equal(t, booking.StepPlayers, s.Step)

	s, err = f.flow.Back(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, booking.StepCalendar, s.Step)
	assert.Empty(t, s.Date)
	assert.Zero(t, s.Games[0].PlayerCount)
	assert.Equal(t, url.Values{"gameId": {"1"}, "lang": {"mk"}, "utm_source": {"ig"}}, StateFromSession(s, link).Query())
}

func TestFlow_SlotThenGameThenPlayers(t *testing.T) {
	f := newFlowFixture()
	ctx := context.Background()
	id := f.newSession(t)

	s, err := f.flow.SelectSlot(ctx, id, "2025-11-03", "14:00", 2)
	require.NoError(t, err)
	assert.Equal(t, booking.StepGame, s.Step)

	s, err = f.flow.ChooseGame(ctx, id, "1")
	require.NoError(t, err)
	assert.Equal(t, booking.StepPlayers, s.Step)
	assert.Equal(t, "2025-11-03", s.Date, "slot is carried forward")
	assert.True(t, s.AllRoomsHaveGames())

	_, err = f.flow.Continue(ctx, id)
	assert.ErrorIs(t, err, ErrStepIncomplete)

	_, err = f.sessions.SetPlayersForRoom(ctx, id, 0, 3)
	require.NoError(t, err)
	_, err = f.flow.Continue(ctx, id)
	assert.ErrorIs(t, err, ErrStepIncomplete, "second room still has no players")

	_, err = f.sessions.SetPlayersForRoom(ctx, id, 1, 2)
	require.NoError(t, err)
	s, err = f.flow.Continue(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, booking.StepPayment, s.Step)

	_, err = f.flow.Continue(ctx, id)
	assert.ErrorIs(t, err, ErrStepIncomplete, "customer details are missing")

	s, err = f.flow.Back(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, booking.StepPlayers, s.Step)
	assert.Equal(t, 2, s.Games[1].PlayerCount)
}

func TestFlow_PreselectedGameSkipsGamePick(t *testing.T) {
	f := newFlowFixture()
	ctx := context.Background()
	id := f.newSession(t)
	s, err := f.flow.Resolve(ctx, id, mustQuery(t, "gameId=1"))
	require.NoError(t, err)
	require.Equal(t, booking.StepCalendar, s.Step)

	s, err = f.flow.SelectSlot(ctx, id, "2025-11-03", "16:00", 0)

	require.NoError(t, err)
	assert.Equal(t, booking.StepPlayers, s.Step)
}

func TestFlow_ClearGame(t *testing.T) {
	f := newFlowFixture()
	ctx := context.Background()
	id := f.newSession(t)
	_, err := f.flow.Resolve(ctx, id, mustQuery(t, "date=2025-11-03&time=14:00&gameId=1&players=3&step=players"))
	require.NoError(t, err)

	s, err := f.flow.ClearGame(ctx, id)

	require.NoError(t, err)
	assert.Equal(t, booking.StepGame, s.Step)
	assert.Nil(t, s.Games[0].Game)
	assert.Zero(t, s.Games[0].PlayerCount)
	assert.Equal(t, "2025-11-03", s.Date)
}

func TestFlow_SubmitOnlyFromPayment(t *testing.T) {
	f := newFlowFixture()
	ctx := context.Background()
	id := f.newSession(t)

	_, err := f.flow.Submit(ctx, id)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Zero(t, f.submitter.calls)

	_, err = f.flow.Resolve(ctx, id, mustQuery(t, "date=2025-11-03&time=14:00&gameId=1&players=3&step=payment"))
	require.NoError(t, err)
	out, err := f.flow.Submit(ctx, id)

	require.NoError(t, err)
	assert.Equal(t, submission.StatusSuccess, out.Status)
	assert.Equal(t, 1, f.submitter.calls)
}
