package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dauren-Zh/tourney-engine/models"
	"github.com/Dauren-Zh/tourney-engine/repositories"
)

var (
	ErrUserNameRequired = errors.New("display name is required")
	ErrUserNameConflict = errors.New("display name already taken")
)

type CreateUserInput struct {
	DisplayName string `json:"display_name"`
	Rating      *int   `json:"rating"`
}

// UserService maintains the player directory. Ratings here are the live
// values; tournaments copy them into seed ratings at registration time and
// never read them again.
type UserService interface {
	CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error)
	GetUserByID(ctx context.Context, id int) (*models.User, error)
	UpdateRating(ctx context.Context, id int, rating *int) error
}

type userService struct {
	userRepo repositories.UserRepository
	db       repositories.SQLExecutor
}

func NewUserService(userRepo repositories.UserRepository, db repositories.SQLExecutor) UserService {
	return &userService{
		userRepo: userRepo,
		db:       db,
	}
}

func (s *userService) CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error) {
	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		return nil, ErrUserNameRequired
	}

	user := &models.User{
		DisplayName: displayName,
		Rating:      input.Rating,
	}
	if err := s.userRepo.Create(ctx, s.db, user); err != nil {
		if errors.Is(err, repositories.ErrUserNameConflict) {
			return nil, ErrUserNameConflict
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *userService) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by id %d: %w", id, err)
	}
	return user, nil
}

func (s *userService) UpdateRating(ctx context.Context, id int, rating *int) error {
	if err := s.userRepo.UpdateRating(ctx, s.db, id, rating); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update rating for user %d: %w", id, err)
	}
	return nil
}
