package backend

// Game is a bookable game as returned by the backend.
type Game struct {
	ID               string   `json:"id"`
	Code             string   `json:"code"`
	Name             string   `json:"name"`
	Description      string   `json:"description,omitempty"`
	ShortDescription string   `json:"shortDescription,omitempty"`
	ImageURL         string   `json:"imageUrl,omitempty"`
	Duration         int      `json:"duration"`
	MinPlayers       int      `json:"minPlayers"`
	MaxPlayers       int      `json:"maxPlayers"`
	Difficulty       string   `json:"difficulty,omitempty"`
	Active           bool     `json:"active"`
	Tags             []string `json:"tags,omitempty"`
}

// TimeSlotAvailability is the availability of one slot on one day.
type TimeSlotAvailability struct {
	Time           string `json:"time"`
	Status         string `json:"status"`
	AvailableSpots int    `json:"availableSpots"`
	MaxSpots       int    `json:"maxSpots"`
}

// DaySchedule lists slot availability for one calendar day.
type DaySchedule struct {
	Date    string                 `json:"dateString"`
	DayName string                 `json:"dayName"`
	Slots   []TimeSlotAvailability `json:"slots"`
}

// Slot statuses reported by the availability endpoint.
const (
	SlotAvailable   = "available"
	SlotBooked      = "booked"
	SlotUnavailable = "unavailable"
)

// GiftCardPeek is the read-only balance lookup of a gift card.
type GiftCardPeek struct {
	Code   string  `json:"code"`
	Amount float64 `json:"amount"`
	Status string  `json:"status"`
}

// PricingTier is one editable tier of the backend pricing configuration.
type PricingTier struct {
	ID             string  `json:"id,omitempty"`
	MinPlayers     int     `json:"minPlayers" validate:"gte=1"`
	MaxPlayers     int     `json:"maxPlayers" validate:"gtefield=MinPlayers"`
	PricePerPlayer float64 `json:"pricePerPlayer" validate:"gt=0"`
}

// PricingConfig is the backend's active tier set.
type PricingConfig struct {
	ID     string        `json:"id,omitempty"`
	Tiers  []PricingTier `json:"tiers"`
	Active bool          `json:"active"`
}

// Holiday is a date priced with the holiday multiplier.
type Holiday struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name" validate:"required,max=100"`
	Date   string `json:"date" validate:"required,iso_date"`
	Active bool   `json:"active"`
}

// PricePreview is the backend's price preview for one game, date and player count.
type PricePreview struct {
	BasePrice        float64 `json:"basePrice"`
	FinalPrice       float64 `json:"finalPrice"`
	DiscountAmount   float64 `json:"discountAmount"`
	DiscountFraction float64 `json:"discountFraction"`
	PromotionName    string  `json:"promotionName,omitempty"`
}

// BookingGameRequest is one room line of a booking request.
type BookingGameRequest struct {
	GameID      string `json:"gameId" validate:"required"`
	RoomNumber  int    `json:"roomNumber" validate:"gte=1"`
	PlayerCount int    `json:"playerCount" validate:"gte=1"`
	Price       int64  `json:"price" validate:"gt=0"`
}

// CreateBookingRequest is the payload of POST /bookings.
type CreateBookingRequest struct {
	BookingDate       string               `json:"bookingDate" validate:"required,iso_date"`
	BookingTime       string               `json:"bookingTime" validate:"required,hhmm"`
	NumberOfRooms     int                  `json:"numberOfRooms" validate:"required,gte=1"`
	TotalPrice        int64                `json:"totalPrice"`
	PaymentMethod     string               `json:"paymentMethod" validate:"required,payment_method"`
	CustomerFirstName string               `json:"customerFirstName" validate:"required"`
	CustomerLastName  string               `json:"customerLastName" validate:"required"`
	CustomerEmail     string               `json:"customerEmail" validate:"required"`
	CustomerPhone     string               `json:"customerPhone" validate:"required"`
	Games             []BookingGameRequest `json:"games" validate:"required,min=1,dive"`
	DiscountCode      string               `json:"discountCode,omitempty"`
}

// BookingGame is one room line of a stored booking.
type BookingGame struct {
	ID          string  `json:"id"`
	GameID      string  `json:"gameId"`
	GameName    string  `json:"gameName"`
	RoomNumber  int     `json:"roomNumber"`
	PlayerCount int     `json:"playerCount"`
	Price       float64 `json:"price"`
}

// Booking is a booking as stored by the backend.
type Booking struct {
	ID                 string        `json:"id"`
	UserID             string        `json:"userId,omitempty"`
	BookingDate        string        `json:"bookingDate"`
	BookingTime        string        `json:"bookingTime"`
	NumberOfRooms      int           `json:"numberOfRooms"`
	TotalPrice         float64       `json:"totalPrice"`
	Status             string        `json:"status"`
	PaymentMethod      string        `json:"paymentMethod"`
	CustomerFirstName  string        `json:"customerFirstName,omitempty"`
	CustomerLastName   string        `json:"customerLastName,omitempty"`
	CustomerEmail      string        `json:"customerEmail,omitempty"`
	CustomerPhone      string        `json:"customerPhone,omitempty"`
	ConfirmationNumber string        `json:"confirmationNumber,omitempty"`
	BookingGames       []BookingGame `json:"bookingGames,omitempty"`
	CreatedAt          string        `json:"createdAt,omitempty"`
}

// CreateBookingResponse is the result of POST /bookings. A non-empty
// PaymentURL means the caller must redirect to an external payment page.
type CreateBookingResponse struct {
	Booking    Booking `json:"booking"`
	PaymentURL string  `json:"paymentUrl,omitempty"`
}

// BookingFilter narrows admin booking listings.
type BookingFilter struct {
	From   string
	To     string
	Status string
}
