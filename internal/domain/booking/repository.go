package booking

import (
	"context"
	"sync"
	"time"
)

// Repository stores booking sessions. Update runs fn on a copy of the stored
// session and persists it only when fn succeeds; updates of one session are
// serialised.
type Repository interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// MemoryRepository keeps sessions in process memory. Sessions idle for longer
// than the TTL are treated as gone.
type MemoryRepository struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryRepository creates an in-memory repository. A zero ttl disables expiry.
func NewMemoryRepository(ttl time.Duration) *MemoryRepository {
	return &MemoryRepository{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (r *MemoryRepository) Create(ctx context.Context, s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s.Clone()
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.load(id)
	if err != nil {
		return nil, err
	}
	return s.Clone(), nil
}

func (r *MemoryRepository) Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, err := r.load(id)
	if err != nil {
		return nil, err
	}
	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	next.Version++
	next.UpdatedAt = r.now()
	r.sessions[id] = next
	return next.Clone(), nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

// Purge drops expired sessions and returns how many were removed.
func (r *MemoryRepository) Purge() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, s := range r.sessions {
		if r.expired(s) {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

// load must be called with mu held.
func (r *MemoryRepository) load(id string) (*Session, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if r.expired(s) {
		delete(r.sessions, id)
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (r *MemoryRepository) expired(s *Session) bool {
	return r.ttl > 0 && r.now().Sub(s.UpdatedAt) > r.ttl
}
