package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// maxErrorBody bounds how much of an error body is kept.
const maxErrorBody = 4096

// Reader is the read side of the backend. The real client, the mock dataset
// and the fallback combination all implement it.
type Reader interface {
	GetConfig(ctx context.Context) (map[string]interface{}, error)
	GetActiveGames(ctx context.Context) ([]Game, error)
	GetGameByCode(ctx context.Context, code string) (*Game, error)
	GetAvailability(ctx context.Context, start, end, gameID string) ([]DaySchedule, error)
	ListBookings(ctx context.Context, filter BookingFilter) ([]Booking, error)
}

// Client represents the booking backend HTTP client.
type Client struct {
	baseURL string
	ua      string
	http    *http.Client
}

// NewClient creates a new backend client. The timeout applies uniformly to
// every call; there are no retries.
func NewClient(baseURL string, timeout time.Duration, ua string) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		ua:      ua,
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// GetConfig fetches the raw system/pricing config. The payload is returned
// loosely typed; callers normalise it.
func (c *Client) GetConfig(ctx context.Context) (map[string]interface{}, error) {
	var out map[string]interface{}
	if err := c.do(ctx, "config", http.MethodGet, "/config", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetActiveGames lists bookable games.
func (c *Client) GetActiveGames(ctx context.Context) ([]Game, error) {
	var out []Game
	if err := c.do(ctx, "games", http.MethodGet, "/games/active", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetGameByCode fetches a single game by its public code.
func (c *Client) GetGameByCode(ctx context.Context, code string) (*Game, error) {
	var out Game
	if err := c.do(ctx, "game", http.MethodGet, "/games/"+url.PathEscape(code), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetAvailability fetches per-day, per-slot availability for [start, end].
func (c *Client) GetAvailability(ctx context.Context, start, end, gameID string) ([]DaySchedule, error) {
	q := url.Values{}
	q.Set("startDate", start)
	q.Set("endDate", end)
	if gameID != "" {
		q.Set("gameId", gameID)
	}
	var out []DaySchedule
	if err := c.do(ctx, "availability", http.MethodGet, "/bookings/availability", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PeekGiftCard looks up a gift card balance without holding it.
func (c *Client) PeekGiftCard(ctx context.Context, code string) (*GiftCardPeek, error) {
	q := url.Values{}
	q.Set("code", code)
	var out GiftCardPeek
	if err := c.do(ctx, "gift card peek", http.MethodGet, "/gift-cards/peek", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PreviewPrice asks the backend for the best promotion on a game and date.
func (c *Client) PreviewPrice(ctx context.Context, gameID, date string, players int) (*PricePreview, error) {
	q := url.Values{}
	q.Set("gameId", gameID)
	q.Set("date", date)
	q.Set("players", strconv.Itoa(players))
	var out PricePreview
	if err := c.do(ctx, "price preview", http.MethodGet, "/pricing/preview", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateBooking submits a booking.
func (c *Client) CreateBooking(ctx context.Context, req CreateBookingRequest) (*CreateBookingResponse, error) {
	var out CreateBookingResponse
	if err := c.do(ctx, "create booking", http.MethodPost, "/bookings", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListBookings lists bookings (admin).
func (c *Client) ListBookings(ctx context.Context, filter BookingFilter) ([]Booking, error) {
	q := url.Values{}
	if filter.From != "" {
		q.Set("from", filter.From)
	}
	if filter.To != "" {
		q.Set("to", filter.To)
	}
	if filter.Status != "" {
		q.Set("status", filter.Status)
	}
	var out []Booking
	if err := c.do(ctx, "bookings", http.MethodGet, "/bookings", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListMyBookings lists the bookings of the token's owner.
func (c *Client) ListMyBookings(ctx context.Context) ([]Booking, error) {
	var out []Booking
	if err := c.do(ctx, "my bookings", http.MethodGet, "/bookings/my-bookings", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetPricing fetches the active pricing tier set.
func (c *Client) GetPricing(ctx context.Context) (*PricingConfig, error) {
	var out PricingConfig
	if err := c.do(ctx, "pricing", http.MethodGet, "/config/pricing", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePricing replaces the tiers of pricing config id.
func (c *Client) UpdatePricing(ctx context.Context, id string, cfg PricingConfig) (*PricingConfig, error) {
	var out PricingConfig
	if err := c.do(ctx, "update pricing", http.MethodPut, "/config/pricing/"+url.PathEscape(id), nil, cfg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListHolidays lists every configured holiday, active or not.
func (c *Client) ListHolidays(ctx context.Context) ([]Holiday, error) {
	var out []Holiday
	if err := c.do(ctx, "holidays", http.MethodGet, "/config/holidays", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateHoliday adds a holiday.
func (c *Client) CreateHoliday(ctx context.Context, h Holiday) (*Holiday, error) {
	var out Holiday
	if err := c.do(ctx, "create holiday", http.MethodPost, "/config/holidays", nil, h, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteHoliday removes holiday id.
func (c *Client) DeleteHoliday(ctx context.Context, id string) error {
	return c.do(ctx, "delete holiday", http.MethodDelete, "/config/holidays/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out interface{}) error {
	if c == nil || c.http == nil {
		return fmt.Errorf("backend %s request error: client is nil", op)
	}
	if strings.TrimSpace(c.baseURL) == "" {
		return fmt.Errorf("backend %s config error: %w", op, ErrNotConfigured)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("backend %s request error: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("backend %s request error: %w", op, err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := TokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.ua != "" {
		req.Header.Set("User-Agent", c.ua)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return classifyRequestError(ctx, op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newHTTPError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("backend %s malformed response: %w", op, err)
	}
	return nil
}

func newHTTPError(resp *http.Response) *HTTPError {
	httpErr := &HTTPError{Status: resp.StatusCode}

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if readErr != nil {
		httpErr.Body = fmt.Sprintf("<failed to read body: %v>", readErr)
		return httpErr
	}
	httpErr.Body = string(raw)

	// The backend answers either {"error": "..."} or {"code": "...", "message": "..."}.
	var payload struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
		Code    string          `json:"code"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		httpErr.Code = payload.Code
		httpErr.Message = payload.Message
		if len(payload.Error) > 0 {
			var s string
			if err := json.Unmarshal(payload.Error, &s); err == nil && s != "" {
				httpErr.Message = s
			} else {
				var nested struct {
					Code    string `json:"code"`
					Message string `json:"message"`
				}
				if err := json.Unmarshal(payload.Error, &nested); err == nil {
					if nested.Message != "" {
						httpErr.Message = nested.Message
					}
					if nested.Code != "" {
						httpErr.Code = nested.Code
					}
				}
			}
		}
	}
	return httpErr
}

type tokenKey struct{}

// WithToken returns a context carrying the bearer token attached to backend calls.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the bearer token set by WithToken.
func TokenFromContext(ctx context.Context) string {
	if token, ok := ctx.Value(tokenKey{}).(string); ok {
		return token
	}
	return ""
}
