// Package identity resolves the current user of a request for the gate.
//
// TokenProvider trusts access tokens minted by this service's own login
// flow; HostedProvider delegates both sign-in and token lookup to an
// external auth service. Both read the access_token cookie and both report
// "no user" rather than an error when the token is absent, expired or
// rejected.
package identity

import (
	"context"
	"errors"
	"net/http"

	"github.com/artshoppe/storefront/internal/core/domain"
	"github.com/artshoppe/storefront/internal/core/ports"
)

// AccessCookieName carries the identity token issued at login.
const AccessCookieName = "access_token"

// AccessTokenParser verifies an access token and returns its user id.
type AccessTokenParser interface {
	ParseAccessToken(token string) (string, error)
}

// TokenProvider verifies locally issued access tokens and confirms the user
// still exists.
type TokenProvider struct {
	tokens AccessTokenParser
	users  ports.AuthRepository
}

func NewTokenProvider(tokens AccessTokenParser, users ports.AuthRepository) *TokenProvider {
	return &TokenProvider{tokens: tokens, users: users}
}

func (p *TokenProvider) CurrentUser(ctx context.Context, r *http.Request) (*domain.User, error) {
	raw := accessToken(r)
	if raw == "" {
		return nil, nil
	}
	userID, err := p.tokens.ParseAccessToken(raw)
	if err != nil {
		return nil, nil
	}
	user, err := p.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func accessToken(r *http.Request) string {
	c, err := r.Cookie(AccessCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
