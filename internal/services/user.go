package services

import (
	"context"

	"github.com/techcabinet/apiserver/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByStudentID(ctx context.Context, studentID string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	SetPassword(ctx context.Context, id int, passwordHash string) error
}

// UserService encapsulates user use-cases.
type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) GetByStudentID(ctx context.Context, studentID string) (types.User, error) {
	return s.repo.GetByStudentID(ctx, studentID)
}

func (s *UserService) Create(ctx context.Context, user types.User) (types.User, error) {
	return s.repo.Create(ctx, user)
}

func (s *UserService) SetPassword(ctx context.Context, id int, passwordHash string) error {
	return s.repo.SetPassword(ctx, id, passwordHash)
}
