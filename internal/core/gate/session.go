package gate

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/artshoppe/storefront/internal/core/domain"
)

const (
	SessionCookieName = "admin_session"
	DefaultSessionTTL = 15 * time.Minute

	minKeyLen = 16
)

var (
	ErrKeyTooShort      = errors.New("session signing key too short; need >=16 bytes")
	ErrEmptySession     = errors.New("empty session")
	ErrSessionExpired   = errors.New("session expired")
	ErrSessionMalformed = errors.New("session malformed")
)

// sessionClaims is the signed payload of the admin_session cookie.
// expiresAt is epoch milliseconds and is checked by Decode, not by the jwt
// validator, so the embedded registered exp stays unset.
type sessionClaims struct {
	UserID          string      `json:"userId"`
	AdminID         string      `json:"adminId"`
	Role            domain.Role `json:"role"`
	ExpiresAtMillis int64       `json:"expiresAt"`
	jwt.RegisteredClaims
}

// SessionCodec seals and opens admin session cache entries.
type SessionCodec struct {
	key  []byte
	skew time.Duration
	now  func() time.Time
}

// NewSessionCodec builds a codec signing with HS256. skew widens the
// freshness check to tolerate clock drift between instances.
func NewSessionCodec(key []byte, skew time.Duration, now func() time.Time) (*SessionCodec, error) {
	if len(key) < minKeyLen {
		return nil, ErrKeyTooShort
	}
	if now == nil {
		now = time.Now
	}
	if skew < 0 {
		skew = 0
	}
	return &SessionCodec{key: key, skew: skew, now: now}, nil
}

// Encode signs entry into a cookie value.
func (c *SessionCodec) Encode(entry domain.SessionEntry) (string, error) {
	if entry.UserID == "" || entry.AdminID == "" || !entry.Role.Valid() || entry.ExpiresAt.IsZero() {
		return "", ErrSessionMalformed
	}
	claims := sessionClaims{
		UserID:          entry.UserID,
		AdminID:         entry.AdminID,
		Role:            entry.Role,
		ExpiresAtMillis: entry.ExpiresAt.UnixMilli(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       entry.ID,
			IssuedAt: jwt.NewNumericDate(c.now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
}

// Decode opens a cookie value. Any failure, including a stale entry, is
// reported as an error; callers treat every error as a cache miss.
func (c *SessionCodec) Decode(raw string) (domain.SessionEntry, error) {
	if raw == "" {
		return domain.SessionEntry{}, ErrEmptySession
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(c.now),
	)
	var claims sessionClaims
	tok, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return c.key, nil
	})
	if err != nil || !tok.Valid {
		return domain.SessionEntry{}, fmt.Errorf("%w: %v", ErrSessionMalformed, err)
	}

	if claims.UserID == "" || claims.AdminID == "" || !claims.Role.Valid() {
		return domain.SessionEntry{}, ErrSessionMalformed
	}
	if claims.ExpiresAtMillis <= 0 {
		return domain.SessionEntry{}, fmt.Errorf("%w: expiresAt missing", ErrSessionMalformed)
	}

	entry := domain.SessionEntry{
		ID:        claims.ID,
		UserID:    claims.UserID,
		AdminID:   claims.AdminID,
		Role:      claims.Role,
		ExpiresAt: time.UnixMilli(claims.ExpiresAtMillis),
	}
	if !entry.Fresh(c.now().Add(-c.skew)) {
		return domain.SessionEntry{}, ErrSessionExpired
	}
	return entry, nil
}
