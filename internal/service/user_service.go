package service

import (
	"context"

	"github.com/vedran77/linkup/internal/domain"
	"github.com/vedran77/linkup/internal/repository"
)

type UserService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// Stats returns accepted connections, pending incoming requests and hashtag count.
func (s *UserService) Stats(ctx context.Context, userID int64) (*domain.UserStats, error) {
	return s.users.Stats(ctx, userID)
}

// Deactivate hides the account. Users are never hard-deleted.
func (s *UserService) Deactivate(ctx context.Context, userID int64) error {
	return s.users.Deactivate(ctx, userID)
}
