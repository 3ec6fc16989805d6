package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alienLab = &Game{ID: "1", Name: "Alien Laboratory Escape", MinPlayers: 2, MaxPlayers: 6}
	manor    = &Game{ID: "2", Name: "Haunted Manor Mystery", MinPlayers: 2, MaxPlayers: 5}
)

func newTestSession() *Session {
	return NewSession("s1", time.Date(2025, 11, 1, 9, 0, 0, 0, time.UTC))
}

func TestNewSession(t *testing.T) {
	s := newTestSession()

	assert.Equal(t, 1, s.Rooms)
	assert.Len(t, s.Games, 1)
	assert.Equal(t, StepCalendar, s.Step)
	assert.Equal(t, PaymentUnset, s.PaymentMethod)
	assert.Nil(t, s.Games[0].Game)
}

func TestSetRooms_GrowPreservesPrefix(t *testing.T) {
	s := newTestSession()
	require.NoError(t, s.SetRooms(2))
	require.NoError(t, s.SetGameForRoom(0, alienLab))
	require.NoError(t, s.SetPlayersForRoom(0, 4))
	require.NoError(t, s.SetGameForRoom(1, manor))
	require.NoError(t, s.SetPlayersForRoom(1, 3))

	require.NoError(t, s.SetRooms(4))

	require.Len(t, s.Games, 4)
	assert.Equal(t, 4, s.Rooms)
	assert.Equal(t, RoomSelection{Game: alienLab, PlayerCount: 4}, s.Games[0])
	assert.Equal(t, RoomSelection{Game: manor, PlayerCount: 3}, s.Games[1])
	assert.Equal(t, RoomSelection{Game: alienLab, PlayerCount: 0}, s.Games[2])
	assert.Equal(t, RoomSelection{Game: alienLab, PlayerCount: 0}, s.Games[3])
}

func TestSetRooms_GrowWithoutGame(t *testing.T) {
	s := newTestSession()

	require.NoError(t, s.SetRooms(3))

	for _, r := range s.Games {
		assert.Nil(t, r.Game)
		assert.Zero(t, r.PlayerCount)
	}
}

func TestSetRooms_ShrinkKeepsSurvivors(t *testing.T) {
	s := newTestSession()
	require.NoError(t, s.SetRooms(3))
	require.NoError(t, s.SetGameForRoom(1, manor))
	require.NoError(t, s.SetPlayersForRoom(1, 5))

	require.NoError(t, s.SetRooms(2))

	require.Len(t, s.Games, 2)
	assert.Equal(t, RoomSelection{Game: manor, PlayerCount: 5}, s.Games[1])
}

func TestSetRooms_RejectsBelowOne(t *testing.T) {
	s := newTestSession()

	assert.ErrorIs(t, s.SetRooms(0), ErrInvalidRoomCount)
	assert.ErrorIs(t, s.SetRooms(-2), ErrInvalidRoomCount)
	assert.Len(t, s.Games, 1)
}

func TestSetGameForRoom_KeepsPlayerCount(t *testing.T) {
	s := newTestSession()
	require.NoError(t, s.SetGameForRoom(0, alienLab))
	require.NoError(t, s.SetPlayersForRoom(0, 6))

	require.NoError(t, s.SetGameForRoom(0, manor))

	assert.Equal(t, manor, s.Games[0].Game)
	assert.Equal(t, 6, s.Games[0].PlayerCount)
	assert.False(t, s.Games[0].Valid(), "6 players exceed the manor's bounds")
}

func TestRoomIndexOutOfRange(t *testing.T) {
	s := newTestSession()

	assert.ErrorIs(t, s.SetGameForRoom(1, alienLab), ErrRoomIndexOutOfRange)
	assert.ErrorIs(t, s.SetPlayersForRoom(-1, 2), ErrRoomIndexOutOfRange)
	assert.ErrorIs(t, s.SetPlayersForRoom(0, -1), ErrInvalidPlayerCount)
	assert.Len(t, s.Games, 1)
}

func TestSetDateTime(t *testing.T) {
	s := newTestSession()

	require.NoError(t, s.SetDateTime("2025-11-01", "14:00"))
	assert.Equal(t, "2025-11-01", s.Date)
	assert.Equal(t, "14:00", s.Time)

	assert.ErrorIs(t, s.SetDateTime("01/11/2025", "14:00"), ErrInvalidDate)
	assert.ErrorIs(t, s.SetDateTime("2025-11-01", "2pm"), ErrInvalidTime)
	assert.Equal(t, "2025-11-01", s.Date, "failed update leaves the slot untouched")

	require.NoError(t, s.SetDateTime("", ""))
	assert.Empty(t, s.Date)
	assert.Empty(t, s.Time)
}

func TestSetCustomerInfo_Merges(t *testing.T) {
	s := newTestSession()
	first, email := "Ana", " ana@example.com "

	s.SetCustomerInfo(CustomerPatch{FirstName: &first})
	s.SetCustomerInfo(CustomerPatch{Email: &email})

	assert.Equal(t, "Ana", s.Customer.FirstName)
	assert.Equal(t, "ana@example.com", s.Customer.Email)
	assert.False(t, s.Customer.Valid())
	assert.ElementsMatch(t, []string{"customerLastName", "customerPhone"}, s.Customer.Missing())
}

func TestSetPaymentMethod(t *testing.T) {
	s := newTestSession()

	require.NoError(t, s.SetPaymentMethod(PaymentCash))
	assert.Equal(t, PaymentCash, s.PaymentMethod)
	assert.ErrorIs(t, s.SetPaymentMethod("CARD"), ErrInvalidPaymentMethod)
	require.NoError(t, s.SetPaymentMethod(PaymentUnset))
	assert.Equal(t, PaymentUnset, s.PaymentMethod)
}

func TestSetGiftCard_RejectsNonPositive(t *testing.T) {
	s := newTestSession()

	assert.ErrorIs(t, s.SetGiftCard("GC-1", 0), ErrGiftCardNotUsable)
	assert.ErrorIs(t, s.SetGiftCard(" ", 100), ErrGiftCardCodeRequired)
	assert.Nil(t, s.GiftCard)

	require.NoError(t, s.SetGiftCard("GC-1", 500))
	assert.Equal(t, &GiftCard{Code: "GC-1", RemainingAmount: 500}, s.GiftCard)
}

func TestReset_KeepsIdentityAndBumpsGeneration(t *testing.T) {
	s := newTestSession()
	s.Lang = "mk"
	s.Embedded = true
	require.NoError(t, s.SetRooms(2))
	require.NoError(t, s.SetDateTime("2025-11-01", "14:00"))
	require.NoError(t, s.SetGiftCard("GC-1", 500))
	s.SetPromotion("Autumn", 0.2)

	s.Reset()

	assert.Equal(t, "s1", s.ID)
	assert.Equal(t, "mk", s.Lang)
	assert.True(t, s.Embedded)
	assert.Equal(t, int64(1), s.Generation)
	assert.Equal(t, 1, s.Rooms)
	assert.Len(t, s.Games, 1)
	assert.Empty(t, s.Date)
	assert.Nil(t, s.GiftCard)
	assert.Nil(t, s.Promotion)
	assert.Equal(t, StepCalendar, s.Step)
}

func TestClone_IsDeep(t *testing.T) {
	s := newTestSession()
	require.NoError(t, s.SetGiftCard("GC-1", 500))

	c := s.Clone()
	require.NoError(t, c.SetPlayersForRoom(0, 3))
	c.GiftCard.RemainingAmount = 1

	assert.Zero(t, s.Games[0].PlayerCount)
	assert.Equal(t, int64(500), s.GiftCard.RemainingAmount)
}
