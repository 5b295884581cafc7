package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/artshoppe/storefront/internal/core/domain"
	"github.com/artshoppe/storefront/internal/core/ports"
)

const minPasswordLen = 8

// AdminServiceConfig wires the admin service. Registry, Audit and External
// may be nil. When External is set, accounts live in that identity provider
// and bootstrap links the provider's user instead of creating a local one.
type AdminServiceConfig struct {
	Admins   ports.AdminRepository
	Users    ports.AuthRepository
	Registry ports.SessionRegistry
	Audit    ports.AuditSink
	External ports.Authenticator
	Log      zerolog.Logger
}

type adminService struct {
	admins   ports.AdminRepository
	users    ports.AuthRepository
	registry ports.SessionRegistry
	audit    ports.AuditSink
	external ports.Authenticator
	log      zerolog.Logger
}

func NewAdminService(cfg AdminServiceConfig) ports.AdminService {
	return &adminService{
		admins:   cfg.Admins,
		users:    cfg.Users,
		registry: cfg.Registry,
		audit:    cfg.Audit,
		external: cfg.External,
		log:      cfg.Log,
	}
}

func (s *adminService) List(ctx context.Context) ([]*domain.AdminRecord, error) {
	return s.admins.List(ctx)
}

// Create provisions an admin record, creating the local user account first
// unless in.UserID names an existing identity.
func (s *adminService) Create(ctx context.Context, in ports.CreateAdminInput) (*domain.AdminRecord, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	userID := strings.TrimSpace(in.UserID)
	if email == "" || (userID == "" && len(in.Password) < minPasswordLen) {
		return nil, domain.ErrInvalidCredentials
	}
	if !in.Role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	if userID == "" {
		user, err := s.createUser(ctx, email, in.DisplayName, in.Password)
		if err != nil {
			return nil, fmt.Errorf("create admin: %w", err)
		}
		userID = user.ID
	}

	rec, err := s.admins.Create(ctx, &domain.AdminRecord{
		UserID:   userID,
		Email:    email,
		Role:     in.Role,
		IsActive: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}

	s.record(domain.AuditEvent{
		Kind:    domain.AuditAdminCreated,
		UserID:  rec.UserID,
		ActorID: in.ActorID,
		Reason:  string(rec.Role),
	})
	return rec, nil
}

// Update changes role or active flag and revokes the target's cached
// sessions so the change applies on their next request.
func (s *adminService) Update(ctx context.Context, in ports.UpdateAdminInput) (*domain.AdminRecord, error) {
	if in.Role != nil && !in.Role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	current, err := s.admins.FindByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	demotesSelf := (in.IsActive != nil && !*in.IsActive) || (in.Role != nil && *in.Role != domain.RoleSuperAdmin)
	if current.UserID == in.ActorID && demotesSelf {
		return nil, domain.ErrForbidden
	}

	rec, err := s.admins.Update(ctx, in.ID, ports.AdminUpdate{Role: in.Role, IsActive: in.IsActive})
	if err != nil {
		return nil, err
	}

	if s.registry != nil {
		if err := s.registry.RevokeUser(ctx, rec.UserID); err != nil {
			s.log.Warn().Err(err).Str("user_id", rec.UserID).Msg("failed to revoke sessions after admin update")
		}
	}

	s.record(domain.AuditEvent{
		Kind:    domain.AuditAdminUpdated,
		UserID:  rec.UserID,
		ActorID: in.ActorID,
		Reason:  fmt.Sprintf("role=%s active=%t", rec.Role, rec.IsActive),
	})
	return rec, nil
}

// Bootstrap creates the first super admin when no admin exists yet. It
// reports whether an account was created.
func (s *adminService) Bootstrap(ctx context.Context, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}
	n, err := s.admins.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("bootstrap: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	in := ports.CreateAdminInput{
		Email:    email,
		Password: password,
		Role:     domain.RoleSuperAdmin,
		ActorID:  "bootstrap",
	}
	if s.external != nil {
		_, user, err := s.external.Login(ctx, email, password)
		if err != nil {
			return false, fmt.Errorf("bootstrap: sign in to identity provider: %w", err)
		}
		in.UserID = user.ID
	}

	_, err = s.Create(ctx, in)
	if errors.Is(err, domain.ErrUserExists) {
		return false, fmt.Errorf("bootstrap: user %s exists without an admin record", email)
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *adminService) createUser(ctx context.Context, email, name, password string) (*domain.User, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash: %w", err)
	}
	now := time.Now().UTC()
	return s.users.Create(ctx, &domain.User{
		Email:        email,
		DisplayName:  name,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func (s *adminService) record(e domain.AuditEvent) {
	if s.audit != nil {
		s.audit.Record(e)
	}
}
