package booking

import "errors"

var (
	ErrSessionNotFound      = errors.New("booking session not found")
	ErrSessionBusy          = errors.New("booking session is being modified concurrently")
	ErrInvalidRoomCount     = errors.New("room count must be at least 1")
	ErrRoomIndexOutOfRange  = errors.New("room index out of range")
	ErrInvalidPlayerCount   = errors.New("player count must not be negative")
	ErrInvalidDate          = errors.New("date must be YYYY-MM-DD")
	ErrInvalidTime          = errors.New("time must be HH:mm")
	ErrInvalidPaymentMethod = errors.New("payment method must be ONLINE or CASH")
	ErrInvalidStep          = errors.New("unknown wizard step")
	ErrGameNotFound         = errors.New("game not found")
	ErrGiftCardCodeRequired = errors.New("gift card code is required")
	ErrGiftCardNotUsable    = errors.New("gift card is not usable")
	ErrGiftCardLookupFailed = errors.New("gift card lookup failed")
	ErrStaleResult          = errors.New("session was restarted while the request was in flight")
	ErrSubmissionInProgress = errors.New("booking submission already in progress")
)
