package booking

import (
	"math"

	"github.com/vrroom/booking-bff/internal/domain/pricing"
)

// RoomPrice is the derived price of one room.
type RoomPrice struct {
	RoomNumber     int   `json:"roomNumber"`
	Valid          bool  `json:"valid"`
	PricePerPerson int64 `json:"pricePerPerson"`
	Total          int64 `json:"total"`
}

// Totals are the derived quantities of a session. They are computed on
// every read and never stored.
type Totals struct {
	Rooms             []RoomPrice `json:"rooms"`
	BaseTotal         int64       `json:"baseTotal"`
	PromoTotal        int64       `json:"promoTotal"`
	PromoPercent      int         `json:"promoPercent"`
	GiftCardApplied   int64       `json:"giftCardApplied"`
	TotalInclVat      int64       `json:"totalInclVat"`
	VATPortion        int64       `json:"vatPortion"`
	NetPortion        int64       `json:"netPortion"`
	TotalPlayers      int         `json:"totalPlayers"`
	AllRoomsHaveGames bool        `json:"allRoomsHaveGames"`
	AllRoomsPriced    bool        `json:"allRoomsPriced"`
	CustomerValid     bool        `json:"customerValid"`
}

// PricePerPerson is the per-person price of room i. Rooms without a game or
// with a count outside the game's bounds are unpriced.
func (s *Session) PricePerPerson(cfg pricing.Config, i int) int64 {
	if i < 0 || i >= len(s.Games) || !s.Games[i].Valid() {
		return 0
	}
	return pricing.PricePerPerson(cfg, s.Games[i].PlayerCount, s.Date)
}

// RoomTotal is the VAT-inclusive total of room i before promotion and gift card.
func (s *Session) RoomTotal(cfg pricing.Config, i int) int64 {
	if i < 0 || i >= len(s.Games) || !s.Games[i].Valid() {
		return 0
	}
	return pricing.RoomTotal(cfg, s.Games[i].PlayerCount, s.Date)
}

// BaseTotal sums every room total.
func (s *Session) BaseTotal(cfg pricing.Config) int64 {
	var sum int64
	for i := range s.Games {
		sum += s.RoomTotal(cfg, i)
	}
	return sum
}

// PromoTotal is the base total after the promotion.
func (s *Session) PromoTotal(cfg pricing.Config) int64 {
	base := s.BaseTotal(cfg)
	if s.Promotion == nil {
		return base
	}
	return pricing.ApplyPromotion(base, s.Promotion.DiscountFraction)
}

// TotalInclVat is the payable total after promotion and gift card.
func (s *Session) TotalInclVat(cfg pricing.Config) int64 {
	total := s.PromoTotal(cfg)
	if s.GiftCard == nil {
		return total
	}
	return pricing.ApplyGiftCard(total, s.GiftCard.RemainingAmount)
}

// TotalPlayers sums the player counts of all rooms.
func (s *Session) TotalPlayers() int {
	n := 0
	for _, r := range s.Games {
		n += r.PlayerCount
	}
	return n
}

// AllRoomsHaveGames reports whether every room has a game assigned.
func (s *Session) AllRoomsHaveGames() bool {
	if len(s.Games) == 0 {
		return false
	}
	for _, r := range s.Games {
		if r.Game == nil {
			return false
		}
	}
	return true
}

// AllRoomsHavePlayers reports whether every room has a valid nonzero count.
func (s *Session) AllRoomsHavePlayers() bool {
	if len(s.Games) == 0 {
		return false
	}
	for _, r := range s.Games {
		if !r.Valid() {
			return false
		}
	}
	return true
}

// AllRoomsPriced reports whether every room is valid and has a price.
func (s *Session) AllRoomsPriced(cfg pricing.Config) bool {
	if !s.AllRoomsHavePlayers() {
		return false
	}
	for i := range s.Games {
		if s.RoomTotal(cfg, i) <= 0 {
			return false
		}
	}
	return true
}

// PromoPercent is the promotion discount as a whole percentage.
func (s *Session) PromoPercent() int {
	if s.Promotion == nil || s.Promotion.DiscountFraction <= 0 {
		return 0
	}
	return int(math.Round(s.Promotion.DiscountFraction * 100))
}

// Totals computes every derived value against cfg.
func (s *Session) Totals(cfg pricing.Config) Totals {
	t := Totals{
		Rooms:             make([]RoomPrice, len(s.Games)),
		TotalPlayers:      s.TotalPlayers(),
		AllRoomsHaveGames: s.AllRoomsHaveGames(),
		AllRoomsPriced:    s.AllRoomsPriced(cfg),
		CustomerValid:     s.Customer.Valid(),
		PromoPercent:      s.PromoPercent(),
	}
	for i := range s.Games {
		t.Rooms[i] = RoomPrice{
			RoomNumber:     i + 1,
			Valid:          s.Games[i].Valid(),
			PricePerPerson: s.PricePerPerson(cfg, i),
			Total:          s.RoomTotal(cfg, i),
		}
		t.BaseTotal += t.Rooms[i].Total
	}
	t.PromoTotal = t.BaseTotal
	if s.Promotion != nil {
		t.PromoTotal = pricing.ApplyPromotion(t.BaseTotal, s.Promotion.DiscountFraction)
	}
	t.TotalInclVat = t.PromoTotal
	if s.GiftCard != nil {
		t.TotalInclVat = pricing.ApplyGiftCard(t.PromoTotal, s.GiftCard.RemainingAmount)
	}
	t.GiftCardApplied = t.PromoTotal - t.TotalInclVat
	t.NetPortion, t.VATPortion = pricing.SplitVAT(t.TotalInclVat, cfg.TaxPercentage)
	return t
}

// VATPortion is the VAT contained in the payable total.
func (s *Session) VATPortion(cfg pricing.Config) int64 {
	_, vat := pricing.SplitVAT(s.TotalInclVat(cfg), cfg.TaxPercentage)
	return vat
}

// NetPortion is the payable total minus VAT.
func (s *Session) NetPortion(cfg pricing.Config) int64 {
	net, _ := pricing.SplitVAT(s.TotalInclVat(cfg), cfg.TaxPercentage)
	return net
}
