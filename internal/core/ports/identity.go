package ports

import (
	"context"
	"net/http"

	"github.com/artshoppe/storefront/internal/core/domain"
)

// IdentityProvider resolves the current user from request cookies.
// A nil user with a nil error means the request carries no identity.
type IdentityProvider interface {
	CurrentUser(ctx context.Context, r *http.Request) (*domain.User, error)
}
