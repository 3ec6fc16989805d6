package pricing

import (
	"math"
	"time"
)

// Round rounds half away from zero to whole currency units.
func Round(x float64) int64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	if x < 0 {
		return -int64(math.Floor(-x + 0.5))
	}
	return int64(math.Floor(x + 0.5))
}

// ParseDate parses an ISO booking date. Empty or malformed input yields ok=false.
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// IsWeekend reports whether d is a Saturday or Sunday.
func IsWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// PricePerPerson returns the VAT-inclusive price per person for n players on
// the given ISO date. Weekend and holiday multipliers compound. A player count
// outside every tier is unpriced and yields 0.
func PricePerPerson(cfg Config, n int, date string) int64 {
	if n <= 0 {
		return 0
	}
	tier, ok := cfg.FindTier(n)
	if !ok {
		return 0
	}

	gross := tier.PricePerPlayer
	if d, ok := ParseDate(date); ok {
		if IsWeekend(d) {
			gross *= multiplierOrOne(cfg.WeekendMultiplier)
		}
		if cfg.IsHoliday(d) {
			gross *= multiplierOrOne(cfg.HolidayMultiplier)
		}
	}
	return Round(gross)
}

// RoomTotal returns count × PricePerPerson(count).
func RoomTotal(cfg Config, count int, date string) int64 {
	if count <= 0 {
		return 0
	}
	return int64(count) * PricePerPerson(cfg, count, date)
}

// SplitVAT splits a VAT-inclusive total. net is derived from the VAT portion so
// that net+vat == total exactly.
func SplitVAT(total int64, taxPercentage float64) (net, vat int64) {
	if total <= 0 || taxPercentage <= 0 {
		return total, 0
	}
	vat = Round(float64(total) * taxPercentage / (100 + taxPercentage))
	return total - vat, vat
}

// ApplyPromotion applies a fractional discount (0.2 = 20% off) to a base total.
func ApplyPromotion(base int64, discountFraction float64) int64 {
	if base <= 0 {
		return 0
	}
	d := clampFraction(discountFraction)
	if d == 0 {
		return base
	}
	return Round(float64(base) * (1 - d))
}

// ApplyGiftCard subtracts the gift card's remaining amount, floored at zero.
func ApplyGiftCard(amount, remaining int64) int64 {
	if remaining <= 0 {
		return amount
	}
	if amount-remaining > 0 {
		return amount - remaining
	}
	return 0
}

func multiplierOrOne(m float64) float64 {
	if m <= 0 || math.IsNaN(m) || math.IsInf(m, 0) {
		return 1
	}
	return m
}

func clampFraction(f float64) float64 {
	if math.IsNaN(f) || f <= 0 {
		return 0
	}
	if f >= 1 {
		return 1
	}
	return f
}
