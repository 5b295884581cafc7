package ports

import (
	"context"

	"github.com/artshoppe/storefront/internal/core/domain"
)

// Authenticator exchanges credentials for an access token the configured
// IdentityProvider will later accept.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}

// AuthService is the local Authenticator: it signs its own access tokens.
type AuthService interface {
	Authenticator
	ParseAccessToken(token string) (userID string, err error)
}
