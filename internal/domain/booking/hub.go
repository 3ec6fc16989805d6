package booking

import (
	"context"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const sessionChannelPrefix = "booking:events:"

// Subscriber is one live connection watching a session.
type Subscriber struct {
	SessionID string
	Conn      *websocket.Conn
	Send      chan []byte
}

// Hub fans session snapshots out to websocket subscribers. With Redis, events
// travel through Pub/Sub so every instance reaches its own subscribers.
type Hub struct {
	subscribers map[string]map[*Subscriber]struct{}
	mu          sync.RWMutex

	redis  *redis.Client
	pubsub *redis.PubSub

	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub creates a hub. redisClient may be nil.
func NewHub(redisClient *redis.Client) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		subscribers: make(map[string]map[*Subscriber]struct{}),
		redis:       redisClient,
		ctx:         ctx,
		cancel:      cancel,
	}
	if redisClient != nil {
		h.pubsub = redisClient.PSubscribe(ctx, sessionChannelPrefix+"*")
	}
	return h
}

// Run delivers Pub/Sub events until Stop is called (call in goroutine).
func (h *Hub) Run() {
	if h.pubsub == nil {
		<-h.ctx.Done()
		return
	}
	ch := h.pubsub.Channel()
	for {
		select {
		case <-h.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			sessionID := strings.TrimPrefix(msg.Channel, sessionChannelPrefix)
			h.deliver(sessionID, []byte(msg.Payload))
		}
	}
}

// Stop shuts the hub down and closes every subscriber.
func (h *Hub) Stop() {
	h.cancel()
	if h.pubsub != nil {
		_ = h.pubsub.Close()
	}
	h.mu.Lock()
	for id, subs := range h.subscribers {
		for sub := range subs {
			close(sub.Send)
		}
		delete(h.subscribers, id)
	}
	h.mu.Unlock()
}

// Register adds a subscriber.
func (h *Hub) Register(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subscribers[sub.SessionID] == nil {
		h.subscribers[sub.SessionID] = make(map[*Subscriber]struct{})
	}
	h.subscribers[sub.SessionID][sub] = struct{}{}
	log.Debug().Str("session_id", sub.SessionID).Msg("Session subscriber connected")
}

// Unregister removes a subscriber and closes its send channel.
func (h *Hub) Unregister(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.subscribers[sub.SessionID]
	if !ok {
		return
	}
	if _, exists := subs[sub]; exists {
		delete(subs, sub)
		close(sub.Send)
	}
	if len(subs) == 0 {
		delete(h.subscribers, sub.SessionID)
	}
	log.Debug().Str("session_id", sub.SessionID).Msg("Session subscriber disconnected")
}

// Subscribers returns the number of local subscribers of a session.
func (h *Hub) Subscribers(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[sessionID])
}

// Publish sends a payload to every subscriber of the session.
func (h *Hub) Publish(ctx context.Context, sessionID string, payload []byte) {
	if h.redis != nil {
		err := h.redis.Publish(ctx, sessionChannelPrefix+sessionID, payload).Err()
		if err == nil {
			return
		}
		log.Warn().Err(err).Str("session_id", sessionID).Msg("Redis publish failed, delivering locally")
	}
	h.deliver(sessionID, payload)
}

// deliver never blocks; a subscriber with a full buffer misses the event.
func (h *Hub) deliver(sessionID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subscribers[sessionID] {
		select {
		case sub.Send <- payload:
		default:
			log.Warn().Str("session_id", sessionID).Msg("Subscriber buffer full, event dropped")
		}
	}
}
