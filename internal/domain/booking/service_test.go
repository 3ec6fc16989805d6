package booking

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vrroom/booking-bff/internal/domain/pricing"
	"github.com/vrroom/booking-bff/internal/pkg/backend"
)

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

type fakePeeker struct {
	peek  func(ctx context.Context, code string) (*backend.GiftCardPeek, error)
	calls int
}

func (f *fakePeeker) PeekGiftCard(ctx context.Context, code string) (*backend.GiftCardPeek, error) {
	f.calls++
	return f.peek(ctx, code)
}

type fakePreviewer struct {
	preview *backend.PricePreview
	err     error
	calls   int
}

func (f *fakePreviewer) PreviewPrice(ctx context.Context, gameID, date string, players int) (*backend.PricePreview, error) {
	f.calls++
	return f.preview, f.err
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []SessionEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, sessionID string, payload []byte) {
	var ev SessionEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return
	}
	p.mu.Lock()
	p.events = append(p.events, ev)
	p.mu.Unlock()
}

type serviceFixture struct {
	svc       *Service
	peeker    *fakePeeker
	previewer *fakePreviewer
	publisher *recordingPublisher
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		peeker:    &fakePeeker{peek: func(ctx context.Context, code string) (*backend.GiftCardPeek, error) { return nil, errors.New("unset") }},
		previewer: &fakePreviewer{},
		publisher: &recordingPublisher{},
	}
	games := fakeGames{
		"1": {ID: "1", Name: "Alien Laboratory Escape", MinPlayers: 2, MaxPlayers: 6, Active: true},
	}
	f.svc = NewService(NewMemoryRepository(0), staticConfig{singleTierConfig(18)}, games, f.peeker, f.previewer, f.publisher, "en")
	return f
}

func (f *serviceFixture) pricedSession(t *testing.T) *Session {
	t.Helper()
	ctx := context.Background()
	s, err := f.svc.Create(ctx, CreateOptions{})
	require.NoError(t, err)
	_, err = f.svc.SetDateTime(ctx, s.ID, "2025-11-03", "14:00")
	require.NoError(t, err)
	_, err = f.svc.SetGameForRoom(ctx, s.ID, 0, "1")
	require.NoError(t, err)
	s, err = f.svc.SetPlayersForRoom(ctx, s.ID, 0, 3)
	require.NoError(t, err)
	return s
}

func TestService_MutationsPublishSnapshots(t *testing.T) {
	f := newServiceFixture()
	s := f.pricedSession(t)

	snap := f.svc.Snapshot(s)
	assert.Equal(t, int64(3000), snap.Totals.TotalInclVat)
	assert.Equal(t, int64(458), snap.Totals.VATPortion)

	require.Len(t, f.publisher.events, 3)
	last := f.publisher.events[2]
	assert.Equal(t, EventSessionUpdated, last.Type)
	assert.Equal(t, int64(2542), last.Session.Totals.NetPortion)
}

func TestService_CreateUsesDefaultLang(t *testing.T) {
	svc := NewService(NewMemoryRepository(0), staticConfig{singleTierConfig(18)}, fakeGames{}, nil, nil, nil, "mk")

	s, err := svc.Create(context.Background(), CreateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "mk", s.Lang)

	s, err = svc.Create(context.Background(), CreateOptions{Lang: "sq"})
	require.NoError(t, err)
	assert.Equal(t, "sq", s.Lang)
}

func TestService_SetGameForRoomUnknownGame(t *testing.T) {
	f := newServiceFixture()
	s, err := f.svc.Create(context.Background(), CreateOptions{})
	require.NoError(t, err)

	_, err = f.svc.SetGameForRoom(context.Background(), s.ID, 0, "404")
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestService_GetMissingSession(t *testing.T) {
	f := newServiceFixture()

	_, err := f.svc.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestService_GiftCardZeroAmountDoesNotMutate(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	s := f.pricedSession(t)
	_, err := f.svc.Mutate(ctx, s.ID, func(session *Session) error {
		return session.SetGiftCard("OLD", 300)
	})
	require.NoError(t, err)
	before, err := f.svc.Get(ctx, s.ID)
	require.NoError(t, err)

	f.peeker.peek = func(ctx context.Context, code string) (*backend.GiftCardPeek, error) {
		return &backend.GiftCardPeek{Code: code, Amount: 0, Status: "REDEEMED"}, nil
	}
	_, err = f.svc.ApplyGiftCard(ctx, s.ID, "GC-EMPTY")

	assert.ErrorIs(t, err, ErrGiftCardNotUsable)
	assert.False(t, errors.Is(err, ErrGiftCardLookupFailed))
	after, err := f.svc.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, &GiftCard{Code: "OLD", RemainingAmount: 300}, after.GiftCard)
	assert.Equal(t, before.Version, after.Version)
}

func TestService_GiftCardBackendRejectionDoesNotMutate(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	s := f.pricedSession(t)

	f.peeker.peek = func(ctx context.Context, code string) (*backend.GiftCardPeek, error) {
		return nil, &backend.HTTPError{Status: 404, Message: "Gift card not found"}
	}
	_, err := f.svc.ApplyGiftCard(ctx, s.ID, "NOPE")

	assert.ErrorIs(t, err, ErrGiftCardNotUsable)
	assert.Contains(t, err.Error(), "Gift card not found")
	after, err := f.svc.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Nil(t, after.GiftCard)
}

func TestService_GiftCardLookupFailureClearsGiftCard(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	s := f.pricedSession(t)
	_, err := f.svc.Mutate(ctx, s.ID, func(session *Session) error {
		return session.SetGiftCard("OLD", 300)
	})
	require.NoError(t, err)

	f.peeker.peek = func(ctx context.Context, code string) (*backend.GiftCardPeek, error) {
		return nil, errors.New("backend gift card peek network error: connection refused")
	}
	_, err = f.svc.ApplyGiftCard(ctx, s.ID, "GC-1")

	assert.ErrorIs(t, err, ErrGiftCardLookupFailed)
	assert.False(t, errors.Is(err, ErrGiftCardNotUsable))
	after, err := f.svc.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Nil(t, after.GiftCard)
}

func TestService_GiftCardApplied(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	s := f.pricedSession(t)

	f.peeker.peek = func(ctx context.Context, code string) (*backend.GiftCardPeek, error) {
		return &backend.GiftCardPeek{Code: code, Amount: 1000.4, Status: "ACTIVE"}, nil
	}
	updated, err := f.svc.ApplyGiftCard(ctx, s.ID, " GC-1 ")

	require.NoError(t, err)
	assert.Equal(t, &GiftCard{Code: "GC-1", RemainingAmount: 1000}, updated.GiftCard)
	assert.Equal(t, int64(2000), f.svc.Snapshot(updated).Totals.TotalInclVat)
}

func TestService_LateGiftCardResultAfterRestartIsDropped(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	s := f.pricedSession(t)

	f.peeker.peek = func(ctx context.Context, code string) (*backend.GiftCardPeek, error) {
		// The user restarts the flow while the lookup is in flight.
		_, err := f.svc.Restart(ctx, s.ID)
		require.NoError(t, err)
		return &backend.GiftCardPeek{Code: code, Amount: 500}, nil
	}
	_, err := f.svc.ApplyGiftCard(ctx, s.ID, "GC-1")

	assert.ErrorIs(t, err, ErrStaleResult)
	after, err := f.svc.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Nil(t, after.GiftCard)
	assert.Equal(t, int64(1), after.Generation)
	assert.Empty(t, after.Date)
}

func TestService_GiftCardEmptyCodeMakesNoCall(t *testing.T) {
	f := newServiceFixture()
	s := f.pricedSession(t)

	_, err := f.svc.ApplyGiftCard(context.Background(), s.ID, "  ")

	assert.ErrorIs(t, err, ErrGiftCardCodeRequired)
	assert.Zero(t, f.peeker.calls)
}

func TestService_RefreshPromotion(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	s := f.pricedSession(t)

	f.previewer.preview = &backend.PricePreview{BasePrice: 3000, FinalPrice: 2400, PromotionName: "Weekday"}
	updated, err := f.svc.RefreshPromotion(ctx, s.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.Promotion)
	assert.Equal(t, "Weekday", updated.Promotion.Name)
	assert.InDelta(t, 0.2, updated.Promotion.DiscountFraction, 1e-9)
	assert.Equal(t, int64(2400), f.svc.Snapshot(updated).Totals.TotalInclVat)

	f.previewer.preview, f.previewer.err = nil, errors.New("timeout")
	updated, err = f.svc.RefreshPromotion(ctx, s.ID)
	require.NoError(t, err)
	assert.Nil(t, updated.Promotion)
}

func TestService_RefreshPromotionWithoutPricedRoomSkipsBackend(t *testing.T) {
	f := newServiceFixture()
	s, err := f.svc.Create(context.Background(), CreateOptions{})
	require.NoError(t, err)

	updated, err := f.svc.RefreshPromotion(context.Background(), s.ID)

	require.NoError(t, err)
	assert.Nil(t, updated.Promotion)
	assert.Zero(t, f.previewer.calls)
}

func TestService_SubmitGuard(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	s := f.pricedSession(t)

	_, err := f.svc.BeginSubmit(ctx, s.ID)
	require.NoError(t, err)

	_, err = f.svc.BeginSubmit(ctx, s.ID)
	assert.ErrorIs(t, err, ErrSubmissionInProgress)
	_, err = f.svc.SetRooms(ctx, s.ID, 2)
	assert.ErrorIs(t, err, ErrSubmissionInProgress)

	aborted, err := f.svc.AbortSubmit(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, aborted.Submitting)
	assert.Equal(t, "2025-11-03", aborted.Date, "failed submission keeps the session")

	_, err = f.svc.BeginSubmit(ctx, s.ID)
	require.NoError(t, err)
	done, err := f.svc.CompleteSubmit(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, done.Submitting)
	assert.Empty(t, done.Date)
	assert.Equal(t, int64(1), done.Generation)
}

func TestService_ConcurrentMutationsSerialise(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	s, err := f.svc.Create(ctx, CreateOptions{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, _ = f.svc.SetRooms(ctx, s.ID, n)
		}(i)
	}
	wg.Wait()

	final, err := f.svc.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(20), final.Version)
	assert.Len(t, final.Games, final.Rooms)
}
