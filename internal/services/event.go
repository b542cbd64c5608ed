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

// EventService handles event-related business logic
type EventService struct {
	eventRepo EventRepository
	now       func() time.Time
}

// NewEventService creates a new event service
func NewEventService(eventRepo EventRepository) *EventService {
	return &EventService{
		eventRepo: eventRepo,
		now:       time.Now,
	}
}

// CreateEvent creates a new event for a couple. The couple reference is not
// checked against stored couples.
func (s *EventService) CreateEvent(ctx context.Context, input models.EventCreate) (*models.Event, error) {
	// Postgres keeps microseconds
	now := s.now().UTC().Truncate(time.Microsecond)
	event := &models.Event{
		ID:           uuid.New().String(),
		CoupleID:     input.CoupleID,
		Title:        input.Title,
		Description:  input.Description,
		Date:         input.Date,
		Location:     input.Location,
		ReminderTime: input.ReminderTime,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	return event, nil
}

// ListEvents returns every event of a couple. Order is unspecified.
func (s *EventService) ListEvents(ctx context.Context, coupleID string) ([]*models.Event, error) {
	events, err := s.eventRepo.ListByCoupleID(ctx, coupleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	if events == nil {
		events = []*models.Event{}
	}
	return events, nil
}

// GetEvent retrieves an event by ID
func (s *EventService) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// UpdateEvent applies a partial update and refreshes updated_at
func (s *EventService) UpdateEvent(ctx context.Context, eventID string, update models.EventUpdate) (*models.Event, error) {
	event, err := s.eventRepo.Update(ctx, eventID, update, s.now().UTC().Truncate(time.Microsecond))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return event, nil
}

// DeleteEvent removes an event
func (s *EventService) DeleteEvent(ctx context.Context, eventID string) error {
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}
