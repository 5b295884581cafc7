package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionRegistry records issued admin sessions in Redis so that they can be
// revoked before their cookie lapses.
// Key format:
//
//	session:<session_id>        -> user id, expires with the session
//	session:user:<user_id>      -> set of that user's session ids
type SessionRegistry struct {
	client *redis.Client
}

// NewSessionRegistry creates a SessionRegistry wrapping the given Redis client.
func NewSessionRegistry(client *redis.Client) *SessionRegistry {
	return &SessionRegistry{client: client}
}

// Register marks sessionID as honoured for ttl.
func (s *SessionRegistry) Register(ctx context.Context, sessionID, userID string, ttl time.Duration) error {
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKey(sessionID), userID, ttl)
	pipe.SAdd(ctx, userKey(userID), sessionID)
	pipe.Expire(ctx, userKey(userID), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("register session: %w", err)
	}
	return nil
}

// Active reports whether sessionID is registered and not revoked.
func (s *SessionRegistry) Active(ctx context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, nil
	}
	n, err := s.client.Exists(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("session lookup: %w", err)
	}
	return n > 0, nil
}

// Revoke drops a single session.
func (s *SessionRegistry) Revoke(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	userID, err := s.client.Get(ctx, sessionKey(sessionID)).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, sessionKey(sessionID))
	if userID != "" {
		pipe.SRem(ctx, userKey(userID), sessionID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// RevokeUser drops every session issued to userID.
func (s *SessionRegistry) RevokeUser(ctx context.Context, userID string) error {
	ids, err := s.client.SMembers(ctx, userKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("revoke user sessions: %w", err)
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, sessionKey(id))
	}
	keys = append(keys, userKey(userID))
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("revoke user sessions: %w", err)
	}
	return nil
}

func sessionKey(id string) string {
	return "session:" + id
}

func userKey(userID string) string {
	return "session:user:" + userID
}
