package ports

import (
	"context"

	"github.com/artshoppe/storefront/internal/core/domain"
)

// CreateAdminInput carries everything needed to provision an administrator.
// A non-empty UserID links an account that already exists in the identity
// provider; Password is then ignored.
type CreateAdminInput struct {
	UserID      string
	Email       string
	Password    string
	DisplayName string
	Role        domain.Role
	ActorID     string
}

// UpdateAdminInput changes role and/or active flag of an administrator.
type UpdateAdminInput struct {
	ID       string
	Role     *domain.Role
	IsActive *bool
	ActorID  string
}

// AdminService defines back-office operations on administrators.
type AdminService interface {
	List(ctx context.Context) ([]*domain.AdminRecord, error)
	Create(ctx context.Context, in CreateAdminInput) (*domain.AdminRecord, error)
	Update(ctx context.Context, in UpdateAdminInput) (*domain.AdminRecord, error)
	Bootstrap(ctx context.Context, email, password string) (bool, error)
}
