package service

import (
	"context"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// UserService exposes the read-only directory.
type UserService struct {
	users repository.UserRepository
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) List(ctx context.Context) []domain.User {
	return s.users.List(ctx)
}

// Get maps an unknown id to NOT_FOUND.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	user := s.users.GetByID(ctx, id)
	if user == nil {
		return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
	}
	return user, nil
}
