package pricing

import "time"

// TimeSlots lists slot start times from opening (inclusive) to closing
// (exclusive), stepping by the slot duration.
func TimeSlots(cfg Config) []string {
	open, err := time.Parse(TimeLayout, cfg.OpeningTime)
	if err != nil {
		open, _ = time.Parse(TimeLayout, defaultOpeningTime)
	}
	closing, err := time.Parse(TimeLayout, cfg.ClosingTime)
	if err != nil {
		closing, _ = time.Parse(TimeLayout, defaultClosingTime)
	}
	step := cfg.SlotDurationMinutes
	if step <= 0 {
		step = defaultSlotDurationMinutes
	}

	var out []string
	for t := open; t.Before(closing); t = t.Add(time.Duration(step) * time.Minute) {
		out = append(out, t.Format(TimeLayout))
	}
	return out
}
