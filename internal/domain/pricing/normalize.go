package pricing

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// NormalizeConfig converts a loosely typed config payload (as decoded from the
// backend JSON) into a Config. Numbers may arrive as strings, fields may be
// missing, and out-of-range values fall back to the degraded defaults.
func NormalizeConfig(raw map[string]interface{}) Config {
	cfg := DefaultConfig()
	if raw == nil {
		return cfg
	}

	pricingRaw := toMap(raw["pricingConfig"])

	cfg.Tiers = normalizeTiers(firstPresent(pricingRaw["tiers"], raw["tiers"]))
	cfg.WeekendMultiplier = normalizeMultiplier(firstPresent(raw["weekendMultiplier"], pricingRaw["weekendMultiplier"]))
	cfg.HolidayMultiplier = normalizeMultiplier(firstPresent(raw["holidayMultiplier"], pricingRaw["holidayMultiplier"]))
	cfg.Holidays = normalizeHolidays(raw["holidays"])

	if tax, err := cast.ToFloat64E(raw["taxPercentage"]); err == nil && finite(tax) && tax >= 0 && tax < 100 {
		cfg.TaxPercentage = tax
	}
	if maxConc, err := cast.ToIntE(raw["maxConcurrentBookings"]); err == nil && maxConc > 0 {
		cfg.MaxConcurrentBookings = maxConc
	}
	if open, ok := normalizeClock(raw["openingTime"]); ok {
		cfg.OpeningTime = open
	}
	if closing, ok := normalizeClock(raw["closingTime"]); ok {
		cfg.ClosingTime = closing
	}
	if slot, err := cast.ToIntE(raw["slotDurationMinutes"]); err == nil && slot > 0 {
		cfg.SlotDurationMinutes = slot
	}

	return cfg
}

func normalizeTiers(v interface{}) []Tier {
	items, err := cast.ToSliceE(v)
	if err != nil {
		return []Tier{}
	}

	tiers := make([]Tier, 0, len(items))
	for _, item := range items {
		m := toMap(item)
		if m == nil {
			continue
		}
		minP, errMin := cast.ToIntE(m["minPlayers"])
		maxP, errMax := cast.ToIntE(m["maxPlayers"])
		price, errPrice := cast.ToFloat64E(m["pricePerPlayer"])
		if errMin != nil || errMax != nil || m["minPlayers"] == nil || m["maxPlayers"] == nil {
			continue
		}
		if minP <= 0 || maxP < minP {
			continue
		}
		if errPrice != nil || !finite(price) || price < 0 {
			price = 0
		}
		tiers = append(tiers, Tier{MinPlayers: minP, MaxPlayers: maxP, PricePerPlayer: price})
	}

	sort.SliceStable(tiers, func(i, j int) bool { return tiers[i].MinPlayers < tiers[j].MinPlayers })
	return tiers
}

func normalizeHolidays(v interface{}) map[string]struct{} {
	out := map[string]struct{}{}
	items, err := cast.ToSliceE(v)
	if err != nil {
		return out
	}
	for _, item := range items {
		var date string
		switch h := item.(type) {
		case string:
			date = h
		default:
			m := toMap(item)
			if m == nil {
				continue
			}
			if active, present := m["active"]; present && active != nil && !cast.ToBool(active) {
				continue
			}
			date = cast.ToString(m["date"])
		}
		// Accept full timestamps and keep the calendar date only.
		if len(date) > len(DateLayout) {
			date = date[:len(DateLayout)]
		}
		if _, ok := ParseDate(date); ok {
			out[date] = struct{}{}
		}
	}
	return out
}

func normalizeMultiplier(v interface{}) float64 {
	if v == nil {
		return 1
	}
	m, err := cast.ToFloat64E(v)
	if err != nil || !finite(m) || m < 1 {
		return 1
	}
	return m
}

// normalizeClock accepts "HH:mm" and "HH:mm:ss".
func normalizeClock(v interface{}) (string, bool) {
	s := strings.TrimSpace(cast.ToString(v))
	if s == "" {
		return "", false
	}
	if len(s) > len(TimeLayout) {
		s = s[:len(TimeLayout)]
	}
	if _, err := time.Parse(TimeLayout, s); err != nil {
		return "", false
	}
	return s, true
}

func toMap(v interface{}) map[string]interface{} {
	if v == nil {
		return nil
	}
	m, err := cast.ToStringMapE(v)
	if err != nil {
		return nil
	}
	return m
}

func firstPresent(values ...interface{}) interface{} {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
