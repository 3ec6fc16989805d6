package admin

import "errors"

var (
	ErrInvalidRange = errors.New("to must not be before from")
	ErrInvalidDate  = errors.New("dates must be YYYY-MM-DD")

	ErrOverlappingTiers = errors.New("pricing tiers must not overlap")
)
