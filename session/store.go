package session

import (
	"context"
	"errors"
	"time"
)

// ErrCacheUnavailable wraps failures of the underlying cache backend.
var ErrCacheUnavailable = errors.New("session cache unavailable")

// Cache is the key-value backend behind a [Store]. Get returns (nil, nil) for an
// absent key. A zero ttl in Set means no expiry.
type Cache interface {
	Get(ctx context.Context, key string) (*Session, error)
	Set(ctx context.Context, key string, s *Session, ttl time.Duration) error
	Drop(ctx context.Context, key string) error
}

// StoreConfig controls key layout and expiry.
type StoreConfig struct {
	// Segment namespaces every key.
	Segment string
	// TTL applied on every save.
	TTL time.Duration
	// SessionCookie disables expiry; lifetime follows the transport cookie.
	SessionCookie bool
}

// Store is the typed session adapter used by the Engine.
type Store struct {
	cache   Cache
	segment string
	ttl     time.Duration
}

// NewStore creates a [Store] over cache.
func NewStore(cache Cache, cfg StoreConfig) *Store {
	ttl := cfg.TTL
	if cfg.SessionCookie {
		ttl = 0
	}
	return &Store{
		cache:   cache,
		segment: cfg.Segment,
		ttl:     ttl,
	}
}

// TTL returns the expiry applied to saves, zero meaning none.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Load returns the session stored under internalID, or nil when absent.
func (s *Store) Load(ctx context.Context, internalID string) (*Session, error) {
	return s.cache.Get(ctx, s.key(internalID))
}

// Save validates sess and stores it under internalID.
func (s *Store) Save(ctx context.Context, internalID string, sess *Session) error {
	if err := sess.Validate(); err != nil {
		return err
	}
	return s.cache.Set(ctx, s.key(internalID), sess, s.ttl)
}

// Remove deletes the session under internalID. Removing an absent key is not an error.
func (s *Store) Remove(ctx context.Context, internalID string) error {
	return s.cache.Drop(ctx, s.key(internalID))
}

func (s *Store) key(internalID string) string {
	if s.segment == "" {
		return internalID
	}
	return s.segment + ":" + internalID
}
