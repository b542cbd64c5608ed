package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lovetrack-backend/internal/models"
	"lovetrack-backend/internal/repository"

	"github.com/google/uuid"
)

// UserService handles user-related business logic
type UserService struct {
	userRepo UserRepository
	now      func() time.Time
}

// NewUserService creates a new user service
func NewUserService(userRepo UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
		now:      time.Now,
	}
}

// RegisterOrFetch returns the user registered under authID, creating it on
// first use. An existing user is returned unchanged, so notificationToken
// only applies to new users.
func (s *UserService) RegisterOrFetch(ctx context.Context, authID string, notificationToken *string) (*models.User, error) {
	existing, err := s.userRepo.GetByAuthID(ctx, authID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	user := &models.User{
		ID:                uuid.New().String(),
		AuthID:            authID,
		CreatedAt:         s.now().UTC().Truncate(time.Microsecond),
		NotificationToken: notificationToken,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration for the same auth ID
		if errors.Is(err, repository.ErrDuplicate) {
			return s.GetByAuthID(ctx, authID)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetByAuthID retrieves a user by auth ID
func (s *UserService) GetByAuthID(ctx context.Context, authID string) (*models.User, error) {
	user, err := s.userRepo.GetByAuthID(ctx, authID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// SetNotificationToken stores the push token for a user
func (s *UserService) SetNotificationToken(ctx context.Context, authID, token string) error {
	if err := s.userRepo.UpdateNotificationToken(ctx, authID, token); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to set notification token: %w", err)
	}
	return nil
}
