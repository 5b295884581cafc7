package ports

import (
	"context"

	"github.com/artshoppe/storefront/internal/core/domain"
)

// AdminUpdate carries the mutable fields of an admin record. Nil fields are
// left untouched.
type AdminUpdate struct {
	Role     *domain.Role
	IsActive *bool
}

// AdminRepository is the admin-records collaborator. FindByUserID returns
// domain.ErrAdminNotFound when the user has no admin record.
type AdminRepository interface {
	FindByUserID(ctx context.Context, userID string) (*domain.AdminRecord, error)
	FindByID(ctx context.Context, id string) (*domain.AdminRecord, error)
	List(ctx context.Context) ([]*domain.AdminRecord, error)
	Create(ctx context.Context, rec *domain.AdminRecord) (*domain.AdminRecord, error)
	Update(ctx context.Context, id string, upd AdminUpdate) (*domain.AdminRecord, error)
	Count(ctx context.Context) (int64, error)
}
