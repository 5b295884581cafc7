package gate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/artshoppe/storefront/internal/core/domain"
	"github.com/artshoppe/storefront/internal/core/ports"
)

// Authorizer decides whether a protected request carries an authorized
// admin session, preferring the cached entry over the external
// collaborators.
type Authorizer struct {
	identity ports.IdentityProvider
	admins   ports.AdminRepository
	codec    *SessionCodec
	registry ports.SessionRegistry
	ttl      time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

// AuthorizerConfig wires the Authorizer's collaborators. Registry is
// optional; Identity, Admins and Codec are required for a cache miss to
// ever succeed.
type AuthorizerConfig struct {
	Identity ports.IdentityProvider
	Admins   ports.AdminRepository
	Codec    *SessionCodec
	Registry ports.SessionRegistry
	TTL      time.Duration
	Now      func() time.Time
	Log      zerolog.Logger
}

func NewAuthorizer(cfg AuthorizerConfig) *Authorizer {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultSessionTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Authorizer{
		identity: cfg.Identity,
		admins:   cfg.Admins,
		codec:    cfg.Codec,
		registry: cfg.Registry,
		ttl:      cfg.TTL,
		now:      cfg.Now,
		log:      cfg.Log,
	}
}

// TTL is the lifetime given to freshly written session entries.
func (a *Authorizer) TTL() time.Duration {
	return a.ttl
}

// Authorize runs the cache-or-revalidate flow for a protected request.
// It never returns an error: collaborator failures become Errored outcomes.
func (a *Authorizer) Authorize(ctx context.Context, r *http.Request) Outcome {
	if entry, ok := a.cached(ctx, r); ok {
		return authorized(entry, true, "")
	}
	return a.revalidate(ctx, r)
}

func (a *Authorizer) cached(ctx context.Context, r *http.Request) (domain.SessionEntry, bool) {
	if a.codec == nil {
		return domain.SessionEntry{}, false
	}
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return domain.SessionEntry{}, false
	}
	entry, err := a.codec.Decode(c.Value)
	if err != nil {
		a.log.Debug().Err(err).Msg("session cache miss")
		return domain.SessionEntry{}, false
	}
	if a.registry == nil {
		return entry, true
	}
	active, err := a.registry.Active(ctx, entry.ID)
	if err != nil {
		a.log.Warn().Err(err).Str("session_id", entry.ID).Msg("session registry unavailable, revalidating")
		return domain.SessionEntry{}, false
	}
	return entry, active
}

func (a *Authorizer) revalidate(ctx context.Context, r *http.Request) Outcome {
	if a.identity == nil || a.admins == nil || a.codec == nil {
		return errored(ReasonMisconfigured, domain.ErrGateMisconfigured)
	}

	user, err := a.identity.CurrentUser(ctx, r)
	if err != nil {
		return errored(ReasonIdentityError, fmt.Errorf("identity: %w", err))
	}
	if user == nil || user.ID == "" {
		return unauthorized(ReasonUnauthenticated)
	}

	rec, err := a.admins.FindByUserID(ctx, user.ID)
	switch {
	case errors.Is(err, domain.ErrAdminNotFound):
		return unauthorized(ReasonNotAdmin)
	case err != nil:
		return errored(ReasonLookupError, fmt.Errorf("admin lookup: %w", err))
	case rec == nil || !rec.Role.Valid():
		return unauthorized(ReasonNotAdmin)
	case !rec.IsActive:
		return unauthorized(ReasonInactive)
	}

	entry := domain.SessionEntry{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		AdminID:   rec.ID,
		Role:      rec.Role,
		ExpiresAt: a.now().Add(a.ttl),
	}
	token, err := a.codec.Encode(entry)
	if err != nil {
		// Identity is established; only the cache write is lost.
		a.log.Error().Err(err).Str("user_id", user.ID).Msg("session encode failed")
		return authorized(entry, false, "")
	}
	if a.registry != nil {
		if err := a.registry.Register(ctx, entry.ID, entry.UserID, a.ttl); err != nil {
			a.log.Warn().Err(err).Str("user_id", user.ID).Msg("session register failed")
		}
	}
	return authorized(entry, false, token)
}
