package ports

import (
	"context"
	"time"
)

// SessionRegistry tracks which issued admin sessions are still honoured.
// It lets back-office changes revoke cached sessions before they lapse.
type SessionRegistry interface {
	Register(ctx context.Context, sessionID, userID string, ttl time.Duration) error
	Active(ctx context.Context, sessionID string) (bool, error)
	Revoke(ctx context.Context, sessionID string) error
	RevokeUser(ctx context.Context, userID string) error
}
