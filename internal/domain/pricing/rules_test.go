package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func tierConfig(tiers ...Tier) Config {
	cfg := DefaultConfig()
	cfg.Tiers = tiers
	return cfg
}

func TestPricePerPerson_MultipliersCompound(t *testing.T) {
	cfg := tierConfig(Tier{MinPlayers: 1, MaxPlayers: 6, PricePerPlayer: 1000})
	cfg.WeekendMultiplier = 1.2
	cfg.HolidayMultiplier = 1.1
	// 2025-11-01 is a Saturday.
	cfg.Holidays = map[string]struct{}{"2025-11-01": {}}

	assert.Equal(t, int64(1320), PricePerPerson(cfg, 3, "2025-11-01"))
}

func TestPricePerPerson_WeekendOnly(t *testing.T) {
	cfg := tierConfig(Tier{MinPlayers: 1, MaxPlayers: 6, PricePerPlayer: 1000})
	cfg.WeekendMultiplier = 1.2
	cfg.HolidayMultiplier = 1.1

	assert.Equal(t, int64(1200), PricePerPerson(cfg, 2, "2025-11-02"), "sunday")
	assert.Equal(t, int64(1000), PricePerPerson(cfg, 2, "2025-11-03"), "monday")
}

func TestPricePerPerson_HolidayOnWeekday(t *testing.T) {
	cfg := tierConfig(Tier{MinPlayers: 1, MaxPlayers: 6, PricePerPlayer: 1000})
	cfg.HolidayMultiplier = 1.5
	cfg.Holidays = map[string]struct{}{"2025-11-05": {}}

	assert.Equal(t, int64(1500), PricePerPerson(cfg, 2, "2025-11-05"))
}

func TestPricePerPerson_NoDateNoMultipliers(t *testing.T) {
	cfg := tierConfig(Tier{MinPlayers: 1, MaxPlayers: 6, PricePerPlayer: 999.5})
	cfg.WeekendMultiplier = 2

	assert.Equal(t, int64(1000), PricePerPerson(cfg, 2, ""))
	assert.Equal(t, int64(1000), PricePerPerson(cfg, 2, "not-a-date"))
}

func TestPricePerPerson_NoTierMatch(t *testing.T) {
	cfg := tierConfig(Tier{MinPlayers: 2, MaxPlayers: 4, PricePerPlayer: 1000})

	assert.Zero(t, PricePerPerson(cfg, 5, "2025-11-03"))
	assert.Zero(t, PricePerPerson(cfg, 1, "2025-11-03"))
	assert.Zero(t, PricePerPerson(cfg, 0, "2025-11-03"))
	assert.Zero(t, RoomTotal(cfg, 5, "2025-11-03"))
}

func TestPricePerPerson_PicksMatchingTier(t *testing.T) {
	cfg := tierConfig(
		Tier{MinPlayers: 1, MaxPlayers: 2, PricePerPlayer: 1200},
		Tier{MinPlayers: 3, MaxPlayers: 4, PricePerPlayer: 1000},
		Tier{MinPlayers: 5, MaxPlayers: 6, PricePerPlayer: 900},
	)

	assert.Equal(t, int64(1200), PricePerPerson(cfg, 2, ""))
	assert.Equal(t, int64(1000), PricePerPerson(cfg, 3, ""))
	assert.Equal(t, int64(900), PricePerPerson(cfg, 6, ""))
	assert.Equal(t, int64(5400), RoomTotal(cfg, 6, ""))
}

func TestSplitVAT_ReconstructsTotal(t *testing.T) {
	totals := []int64{0, 1, 7, 99, 458, 3000, 12345, 999999}
	rates := []float64{0, 5, 10, 18, 18.5, 25, 33.3, 99.9}

	for _, total := range totals {
		for _, rate := range rates {
			net, vat := SplitVAT(total, rate)
			assert.Equal(t, total, net+vat, "total=%d rate=%v", total, rate)
			assert.GreaterOrEqual(t, vat, int64(0))
		}
	}
}

func TestSplitVAT_Example(t *testing.T) {
	net, vat := SplitVAT(3000, 18)
	assert.Equal(t, int64(458), vat)
	assert.Equal(t, int64(2542), net)
}

func TestApplyPromotion(t *testing.T) {
	assert.Equal(t, int64(1500), ApplyPromotion(3000, 0.5))
	assert.Equal(t, int64(3000), ApplyPromotion(3000, 0))
	assert.Equal(t, int64(3000), ApplyPromotion(3000, -0.3))
	assert.Equal(t, int64(0), ApplyPromotion(3000, 1.5))
	assert.Equal(t, int64(2333), ApplyPromotion(3333, 0.3), "rounded to whole units")
	assert.Equal(t, int64(0), ApplyPromotion(0, 0.2))
}

func TestApplyGiftCard_FloorsAtZero(t *testing.T) {
	assert.Equal(t, int64(1000), ApplyGiftCard(3000, 2000))
	assert.Equal(t, int64(0), ApplyGiftCard(3000, 5000))
	assert.Equal(t, int64(3000), ApplyGiftCard(3000, 0))
	assert.Equal(t, int64(3000), ApplyGiftCard(3000, -10))
}

func TestRound(t *testing.T) {
	assert.Equal(t, int64(3), Round(2.5))
	assert.Equal(t, int64(2), Round(2.49))
	assert.Equal(t, int64(-3), Round(-2.5))
	assert.Equal(t, int64(1320), Round(1000*1.2*1.1))
}

func TestTimeSlots(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OpeningTime = "12:00"
	cfg.ClosingTime = "15:00"
	cfg.SlotDurationMinutes = 90

	assert.Equal(t, []string{"12:00", "13:30"}, TimeSlots(cfg))

	def := TimeSlots(DefaultConfig())
	assert.Len(t, def, 10)
	assert.Equal(t, "12:00", def[0])
	assert.Equal(t, "21:00", def[len(def)-1])
}
