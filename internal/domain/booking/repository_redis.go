package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "booking:session:"
	maxUpdateRetries = 5
)

// RedisRepository stores sessions as JSON values with a sliding TTL. Updates
// use optimistic WATCH/MULTI transactions.
type RedisRepository struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisRepository creates a Redis-backed repository.
func NewRedisRepository(client *redis.Client, ttl time.Duration) *RedisRepository {
	return &RedisRepository{client: client, ttl: ttl, now: time.Now}
}

// NewRepository picks Redis when a client is configured and memory otherwise.
func NewRepository(client *redis.Client, ttl time.Duration) Repository {
	if client == nil {
		return NewMemoryRepository(ttl)
	}
	return NewRedisRepository(client, ttl)
}

func (r *RedisRepository) Create(ctx context.Context, s *Session) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	ok, err := r.client.SetNX(ctx, sessionKeyPrefix+s.ID, payload, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	if !ok {
		return fmt.Errorf("session %s already exists", s.ID)
	}
	return nil
}

func (r *RedisRepository) Get(ctx context.Context, id string) (*Session, error) {
	raw, err := r.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return decodeSession(raw)
}

func (r *RedisRepository) Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error) {
	key := sessionKeyPrefix + id
	var updated *Session

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrSessionNotFound
		}
		if err != nil {
			return err
		}
		s, err := decodeSession(raw)
		if err != nil {
			return err
		}
		if err := fn(s); err != nil {
			return err
		}
		s.Version++
		s.UpdatedAt = r.now()
		payload, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("encode session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, r.ttl)
			return nil
		})
		if err == nil {
			updated = s
		}
		return err
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, ErrSessionBusy
}

func (r *RedisRepository) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, sessionKeyPrefix+id).Err()
}

func decodeSession(raw []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if len(s.Games) != s.Rooms {
		// Repair a stored session whose room list drifted.
		rooms := s.Rooms
		if rooms < 1 {
			rooms = 1
		}
		_ = s.SetRooms(rooms)
	}
	return &s, nil
}
