package services

import (
	"context"
	"time"

	"lovetrack-backend/internal/models"
)

// UserRepository is the user storage used by the services
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByAuthID(ctx context.Context, authID string) (*models.User, error)
	ListByIDs(ctx context.Context, ids []string) ([]*models.User, error)
	SetCoupleID(ctx context.Context, userID, coupleID string) error
	UpdateNotificationToken(ctx context.Context, authID, token string) error
}

// CoupleRepository is the couple storage used by the services
type CoupleRepository interface {
	Create(ctx context.Context, couple *models.Couple) error
	GetByID(ctx context.Context, id string) (*models.Couple, error)
	GetByPairingCode(ctx context.Context, code string) (*models.Couple, error)
	AddMemberWithCode(ctx context.Context, coupleID, code, userID string, now time.Time) error
}

// EventRepository is the event storage used by the services
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id string) (*models.Event, error)
	ListByCoupleID(ctx context.Context, coupleID string) ([]*models.Event, error)
	Update(ctx context.Context, id string, update models.EventUpdate, now time.Time) (*models.Event, error)
	Delete(ctx context.Context, id string) error
	ListDueReminders(ctx context.Context, from, to time.Time) ([]*models.Event, error)
	MarkReminderSent(ctx context.Context, id string) error
}
