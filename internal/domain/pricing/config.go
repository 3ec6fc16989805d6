package pricing

import "time"

// DateLayout is the ISO calendar date format used for booking dates and holidays.
const DateLayout = "2006-01-02"

// TimeLayout is the slot start time format ("HH:mm").
const TimeLayout = "15:04"

const (
	defaultMaxConcurrentBookings = 2
	defaultOpeningTime           = "12:00"
	defaultClosingTime           = "22:00"
	defaultSlotDurationMinutes   = 60
)

// Tier is a player-count range with a VAT-inclusive price per person.
type Tier struct {
	MinPlayers     int     `json:"minPlayers"`
	MaxPlayers     int     `json:"maxPlayers"`
	PricePerPlayer float64 `json:"pricePerPlayer"`
}

// Contains reports whether n players fall inside the tier.
func (t Tier) Contains(n int) bool {
	return n >= t.MinPlayers && n <= t.MaxPlayers
}

// Config is the pricing configuration loaded from the backend.
// It is treated as read-only once loaded.
type Config struct {
	Tiers                 []Tier              `json:"tiers"`
	WeekendMultiplier     float64             `json:"weekendMultiplier"`
	HolidayMultiplier     float64             `json:"holidayMultiplier"`
	Holidays              map[string]struct{} `json:"-"`
	TaxPercentage         float64             `json:"taxPercentage"`
	MaxConcurrentBookings int                 `json:"maxConcurrentBookings"`
	OpeningTime           string              `json:"openingTime"`
	ClosingTime           string              `json:"closingTime"`
	SlotDurationMinutes   int                 `json:"slotDurationMinutes"`
}

// DefaultConfig returns the degraded configuration used when the backend config
// cannot be loaded. Nothing is priced under it.
func DefaultConfig() Config {
	return Config{
		Tiers:                 []Tier{},
		WeekendMultiplier:     1,
		HolidayMultiplier:     1,
		Holidays:              map[string]struct{}{},
		TaxPercentage:         0,
		MaxConcurrentBookings: defaultMaxConcurrentBookings,
		OpeningTime:           defaultOpeningTime,
		ClosingTime:           defaultClosingTime,
		SlotDurationMinutes:   defaultSlotDurationMinutes,
	}
}

// IsHoliday reports whether the calendar date of d is a configured holiday.
func (c Config) IsHoliday(d time.Time) bool {
	if len(c.Holidays) == 0 {
		return false
	}
	_, ok := c.Holidays[d.Format(DateLayout)]
	return ok
}

// HolidayList returns the configured holidays in no particular order.
func (c Config) HolidayList() []string {
	out := make([]string, 0, len(c.Holidays))
	for d := range c.Holidays {
		out = append(out, d)
	}
	return out
}

// FindTier returns the tier covering n players.
func (c Config) FindTier(n int) (Tier, bool) {
	for _, t := range c.Tiers {
		if t.Contains(n) {
			return t, true
		}
	}
	return Tier{}, false
}
