package handler

import (
	"context"

	"github.com/artshoppe/storefront/internal/core/domain"
)

type stubUsers struct {
	byID map[string]*domain.User
}

func newStubUsers(users ...*domain.User) *stubUsers {
	s := &stubUsers{byID: make(map[string]*domain.User, len(users))}
	for _, u := range users {
		s.byID[u.ID] = u
	}
	return s
}

func (s *stubUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range s.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *stubUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := s.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (s *stubUsers) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	s.byID[u.ID] = u
	return u, nil
}
