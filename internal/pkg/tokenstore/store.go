package tokenstore

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vrroom/booking-bff/internal/pkg/jwt"
)

// ErrNoToken is returned when no usable token is stored for a session.
var ErrNoToken = errors.New("tokenstore: no token")

const keyPrefix = "token:"

// Store keeps the bearer token of a booking session.
type Store interface {
	Get(ctx context.Context, sessionID string) (string, error)
	Set(ctx context.Context, sessionID, token string) error
	Invalidate(ctx context.Context, sessionID string) error
}

// New returns a Redis store when client is non-nil and an in-memory store otherwise.
func New(client *redis.Client, ttl time.Duration) Store {
	if client == nil {
		return NewMemoryStore()
	}
	return NewRedisStore(client, ttl)
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]string
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]string), now: time.Now}
}

func (s *MemoryStore) Get(ctx context.Context, sessionID string) (string, error) {
	s.mu.RLock()
	token, ok := s.tokens[sessionID]
	s.mu.RUnlock()
	if !ok {
		return "", ErrNoToken
	}
	if err := jwt.CheckExpiry(token, s.now()); err != nil {
		_ = s.Invalidate(ctx, sessionID)
		return "", ErrNoToken
	}
	return token, nil
}

func (s *MemoryStore) Set(ctx context.Context, sessionID, token string) error {
	if token == "" {
		return s.Invalidate(ctx, sessionID)
	}
	s.mu.Lock()
	s.tokens[sessionID] = token
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Invalidate(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.tokens, sessionID)
	s.mu.Unlock()
	return nil
}

// RedisStore keeps tokens in Redis. Keys expire with the token's exp claim
// when present, otherwise after the configured TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, now: time.Now}
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (string, error) {
	token, err := s.client.Get(ctx, keyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", err
	}
	if err := jwt.CheckExpiry(token, s.now()); err != nil {
		_ = s.Invalidate(ctx, sessionID)
		return "", ErrNoToken
	}
	return token, nil
}

func (s *RedisStore) Set(ctx context.Context, sessionID, token string) error {
	if token == "" {
		return s.Invalidate(ctx, sessionID)
	}
	ttl := s.ttl
	if exp, ok := jwt.ExpiresAt(token); ok {
		until := exp.Sub(s.now())
		if until <= 0 {
			return s.Invalidate(ctx, sessionID)
		}
		if ttl <= 0 || until < ttl {
			ttl = until
		}
	}
	return s.client.Set(ctx, keyPrefix+sessionID, token, ttl).Err()
}

func (s *RedisStore) Invalidate(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, keyPrefix+sessionID).Err()
}
