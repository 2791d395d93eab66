package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned when a token has no live session,
// either because it expired or was deleted by logout.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore is the server-side session repository. Tokens are opaque
// and map to the owning user's id.
type SessionStore interface {
	// Create opens a session for the user and returns its token.
	Create(ctx context.Context, userID int64) (string, error)
	// Lookup resolves a token to a user id and renews the session's idle
	// TTL. Returns ErrSessionNotFound for unknown or expired tokens.
	Lookup(ctx context.Context, token string) (int64, error)
	// Delete ends the session. Deleting an unknown token is not an error.
	Delete(ctx context.Context, token string) error
}

const sessionKeyPrefix = "session:"

// RedisSessionStore implements SessionStore on Redis with a sliding TTL.
type RedisSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisSessionStore creates a session store with the given idle TTL.
func NewRedisSessionStore(rdb *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb, ttl: ttl}
}

// Create opens a session keyed by a fresh random token.
func (s *RedisSessionStore) Create(ctx context.Context, userID int64) (string, error) {
	token := uuid.NewString()

	err := s.rdb.Set(ctx, sessionKeyPrefix+token, strconv.FormatInt(userID, 10), s.ttl).Err()
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	return token, nil
}

// Lookup resolves the token and slides the TTL forward.
func (s *RedisSessionStore) Lookup(ctx context.Context, token string) (int64, error) {
	value, err := s.rdb.Get(ctx, sessionKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrSessionNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up session: %w", err)
	}

	userID, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt session value %q: %w", value, err)
	}

	// Sliding expiry. Best effort: a failed renewal only shortens the
	// session, it never extends it.
	_ = s.rdb.Expire(ctx, sessionKeyPrefix+token, s.ttl).Err()

	return userID, nil
}

// Delete ends the session.
func (s *RedisSessionStore) Delete(ctx context.Context, token string) error {
	if err := s.rdb.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Ensure RedisSessionStore implements SessionStore at compile time.
var _ SessionStore = (*RedisSessionStore)(nil)
