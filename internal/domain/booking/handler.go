package booking

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/vrroom/booking-bff/internal/pkg/backend"
	"github.com/vrroom/booking-bff/internal/pkg/logger"
	"github.com/vrroom/booking-bff/internal/pkg/response"
	"github.com/vrroom/booking-bff/internal/pkg/tokenstore"
	"github.com/vrroom/booking-bff/internal/pkg/validator"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

// Handler handles booking session HTTP requests.
type Handler struct {
	service  *Service
	hub      *Hub
	tokens   tokenstore.Store
	upgrader websocket.Upgrader
}

// NewHandler creates a booking session handler.
func NewHandler(service *Service, hub *Hub, tokens tokenstore.Store, allowedOrigins []string) *Handler {
	return &Handler{
		service: service,
		hub:     hub,
		tokens:  tokens,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")

				// Allow all in development
				if len(allowedOrigins) == 0 {
					return true
				}

				for _, allowed := range allowedOrigins {
					if allowed == "*" || origin == allowed {
						return true
					}
				}

				log.Warn().Str("origin", origin).Msg("WebSocket origin rejected")
				return false
			},
		},
	}
}

// Create handles POST /sessions
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid JSON body")
			return
		}
	}

	session, err := h.service.Create(r.Context(), CreateOptions{Lang: req.Lang, Embedded: req.Embedded})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.Created(w, h.service.Snapshot(session))
}

// Get handles GET /sessions/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.OK(w, h.service.Snapshot(session))
}

// Delete handles DELETE /sessions/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		WriteError(w, r, err)
		return
	}
	if err := h.tokens.Invalidate(r.Context(), id); err != nil {
		logger.LogWarn(r.Context(), "Failed to drop session token", "session_id", id, "error", err.Error())
	}
	response.NoContent(w)
}

// Restart handles POST /sessions/{id}/restart
func (h *Handler) Restart(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Restart(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, session, err)
}

// SetRooms handles PUT /sessions/{id}/rooms
func (h *Handler) SetRooms(w http.ResponseWriter, r *http.Request) {
	var req SetRoomsRequest
	if !validator.DecodeAndValidate(w, r, &req) {
		return
	}
	session, err := h.service.SetRooms(r.Context(), chi.URLParam(r, "id"), req.Rooms)
	h.respond(w, r, session, err)
}

// SetGame handles PUT /sessions/{id}/rooms/{index}/game
func (h *Handler) SetGame(w http.ResponseWriter, r *http.Request) {
	index, ok := roomIndex(w, r)
	if !ok {
		return
	}
	var req SetGameRequest
	if !validator.DecodeAndValidate(w, r, &req) {
		return
	}
	session, err := h.service.SetGameForRoom(r.Context(), chi.URLParam(r, "id"), index, req.GameID)
	h.respond(w, r, session, err)
}

// SetPlayers handles PUT /sessions/{id}/rooms/{index}/players
func (h *Handler) SetPlayers(w http.ResponseWriter, r *http.Request) {
	index, ok := roomIndex(w, r)
	if !ok {
		return
	}
	var req SetPlayersRequest
	if !validator.DecodeAndValidate(w, r, &req) {
		return
	}
	session, err := h.service.SetPlayersForRoom(r.Context(), chi.URLParam(r, "id"), index, *req.PlayerCount)
	h.respond(w, r, session, err)
}

// SetDateTime handles PUT /sessions/{id}/datetime
func (h *Handler) SetDateTime(w http.ResponseWriter, r *http.Request) {
	var req SetDateTimeRequest
	if !validator.DecodeAndValidate(w, r, &req) {
		return
	}
	session, err := h.service.SetDateTime(r.Context(), chi.URLParam(r, "id"), req.Date, req.Time)
	h.respond(w, r, session, err)
}

// SetCustomer handles PATCH /sessions/{id}/customer
func (h *Handler) SetCustomer(w http.ResponseWriter, r *http.Request) {
	var req CustomerPatch
	if !validator.DecodeAndValidate(w, r, &req) {
		return
	}
	session, err := h.service.SetCustomerInfo(r.Context(), chi.URLParam(r, "id"), req)
	h.respond(w, r, session, err)
}

// SetPaymentMethod handles PUT /sessions/{id}/payment-method
func (h *Handler) SetPaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req SetPaymentMethodRequest
	if !validator.DecodeAndValidate(w, r, &req) {
		return
	}
	session, err := h.service.SetPaymentMethod(r.Context(), chi.URLParam(r, "id"), PaymentMethod(req.PaymentMethod))
	h.respond(w, r, session, err)
}

// ApplyGiftCard handles POST /sessions/{id}/gift-card
func (h *Handler) ApplyGiftCard(w http.ResponseWriter, r *http.Request) {
	var req ApplyGiftCardRequest
	if !validator.DecodeAndValidate(w, r, &req) {
		return
	}
	session, err := h.service.ApplyGiftCard(r.Context(), chi.URLParam(r, "id"), req.Code)
	h.respond(w, r, session, err)
}

// RemoveGiftCard handles DELETE /sessions/{id}/gift-card
func (h *Handler) RemoveGiftCard(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.RemoveGiftCard(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, session, err)
}

// RefreshPromotion handles POST /sessions/{id}/promotion/refresh
func (h *Handler) RefreshPromotion(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.RefreshPromotion(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, session, err)
}

// SetToken handles PUT /sessions/{id}/token. An empty token logs the session out.
func (h *Handler) SetToken(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.service.Get(r.Context(), id); err != nil {
		WriteError(w, r, err)
		return
	}
	var req SetTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if err := h.tokens.Set(r.Context(), id, strings.TrimSpace(req.Token)); err != nil {
		WriteError(w, r, err)
		return
	}
	response.NoContent(w)
}

// WebSocket handles GET /sessions/{id}/ws
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	session, err := h.service.Get(r.Context(), id)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	sub := &Subscriber{
		SessionID: id,
		Conn:      conn,
		Send:      make(chan []byte, 16),
	}
	h.hub.Register(sub)
	logger.LogDebug(r.Context(), "WebSocket subscribed", "session_id", id, "subscribers", h.hub.Subscribers(id))

	// Initial snapshot
	if payload, err := json.Marshal(SessionEvent{Type: EventSessionUpdated, Session: h.service.Snapshot(session)}); err == nil {
		sub.Send <- payload
	}

	go h.wsReader(sub)
	go h.wsWriter(sub)
}

// wsReader only drains control frames; clients mutate through the HTTP API.
func (h *Handler) wsReader(sub *Subscriber) {
	defer func() {
		h.hub.Unregister(sub)
		sub.Conn.Close()
	}()

	sub.Conn.SetReadLimit(maxMessageSize)
	sub.Conn.SetReadDeadline(time.Now().Add(pongWait))
	sub.Conn.SetPongHandler(func(string) error {
		sub.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := sub.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("session_id", sub.SessionID).Msg("WebSocket read error")
			}
			return
		}
	}
}

func (h *Handler) wsWriter(sub *Subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		sub.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-sub.Send:
			sub.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				sub.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := sub.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			sub.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sub.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, session *Session, err error) {
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.OK(w, h.service.Snapshot(session))
}

func roomIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		response.BadRequest(w, "Room index must be an integer")
		return 0, false
	}
	return index, true
}

// WriteError maps booking and backend errors onto the response envelope.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		response.NotFound(w, "Booking session not found")
	case errors.Is(err, ErrGameNotFound):
		response.NotFound(w, "Game not found")
	case errors.Is(err, ErrInvalidRoomCount),
		errors.Is(err, ErrRoomIndexOutOfRange),
		errors.Is(err, ErrInvalidPlayerCount),
		errors.Is(err, ErrInvalidDate),
		errors.Is(err, ErrInvalidTime),
		errors.Is(err, ErrInvalidPaymentMethod),
		errors.Is(err, ErrInvalidStep),
		errors.Is(err, ErrGiftCardCodeRequired):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrGiftCardNotUsable):
		response.Error(w, http.StatusUnprocessableEntity, "GIFT_CARD_NOT_USABLE", err.Error())
	case errors.Is(err, ErrGiftCardLookupFailed):
		response.Error(w, http.StatusBadGateway, "GIFT_CARD_LOOKUP_FAILED", "Gift card could not be checked, please try again")
	case errors.Is(err, ErrStaleResult):
		response.Conflict(w, err.Error())
	case errors.Is(err, ErrSubmissionInProgress), errors.Is(err, ErrSessionBusy):
		response.Conflict(w, err.Error())
	case errors.Is(err, backend.ErrUnauthorized):
		response.Unauthorized(w, "Authentication required")
	default:
		logger.LogError(r.Context(), err, "Booking request failed", "path", r.URL.Path)
		response.InternalError(w)
	}
}
