// Package reminders pushes notifications for upcoming events.
package reminders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lovetrack-backend/internal/metrics"
	"lovetrack-backend/internal/models"
	"lovetrack-backend/internal/push"
	"lovetrack-backend/internal/repository"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	lockKey = "lovetrack:reminders:lock"
	lockTTL = 5 * time.Minute
)

type EventStore interface {
	ListDueReminders(ctx context.Context, from, to time.Time) ([]*models.Event, error)
	MarkReminderSent(ctx context.Context, id string) error
}

type CoupleStore interface {
	GetByID(ctx context.Context, id string) (*models.Couple, error)
}

type UserStore interface {
	ListByIDs(ctx context.Context, ids []string) ([]*models.User, error)
}

// Dispatcher periodically sends reminders for events whose reminder time
// falls inside the upcoming window
type Dispatcher struct {
	events   EventStore
	couples  CoupleStore
	users    UserStore
	sender   push.Sender
	locker   Locker
	schedule string
	window   time.Duration
	now      func() time.Time
	logger   zerolog.Logger
}

// NewDispatcher creates a dispatcher. locker may be nil for single-replica
// deployments.
func NewDispatcher(
	events EventStore,
	couples CoupleStore,
	users UserStore,
	sender push.Sender,
	locker Locker,
	schedule string,
	window time.Duration,
) (*Dispatcher, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", schedule, err)
	}
	if window <= 0 {
		return nil, fmt.Errorf("reminder window must be positive, got %s", window)
	}

	return &Dispatcher{
		events:   events,
		couples:  couples,
		users:    users,
		sender:   sender,
		locker:   locker,
		schedule: schedule,
		window:   window,
		now:      time.Now,
		logger:   log.With().Str("component", "reminders").Logger(),
	}, nil
}

// Start runs the dispatcher on its schedule until ctx is cancelled
func (d *Dispatcher) Start(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(d.schedule, func() {
		if _, err := d.RunOnce(ctx); err != nil {
			d.logger.Error().Err(err).Msg("Reminder run failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule reminders: %w", err)
	}

	d.logger.Info().Str("schedule", d.schedule).Dur("window", d.window).Msg("Reminder dispatcher started")
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	d.logger.Info().Msg("Reminder dispatcher stopped")
	return nil
}

// RunOnce sends every due reminder and returns how many events were handled
func (d *Dispatcher) RunOnce(ctx context.Context) (int, error) {
	start := time.Now()
	defer func() {
		metrics.ReminderRunDuration.Observe(time.Since(start).Seconds())
	}()

	if d.locker != nil {
		unlock, ok, err := d.locker.TryLock(ctx, lockKey, lockTTL)
		if err != nil {
			return 0, err
		}
		if !ok {
			d.logger.Debug().Msg("Reminder run skipped, lock held elsewhere")
			return 0, nil
		}
		defer unlock()
	}

	now := d.now().UTC()
	due, err := d.events.ListDueReminders(ctx, now, now.Add(d.window))
	if err != nil {
		return 0, fmt.Errorf("failed to list due reminders: %w", err)
	}

	handled := 0
	for _, event := range due {
		if ctx.Err() != nil {
			return handled, ctx.Err()
		}
		done, err := d.remind(ctx, event)
		if err != nil {
			d.logger.Error().Err(err).Str("event_id", event.ID).Msg("Failed to send reminder")
			continue
		}
		if done {
			handled++
		}
	}

	if handled > 0 {
		d.logger.Info().Int("events", handled).Msg("Reminders sent")
	}
	return handled, nil
}

// remind notifies every member of the event's couple. It reports whether
// the reminder was marked as sent.
func (d *Dispatcher) remind(ctx context.Context, event *models.Event) (bool, error) {
	couple, err := d.couples.GetByID(ctx, event.CoupleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			d.logger.Warn().Str("event_id", event.ID).Str("couple_id", event.CoupleID).Msg("Couple not found for event")
			return false, nil
		}
		return false, fmt.Errorf("failed to get couple: %w", err)
	}

	members, err := d.users.ListByIDs(ctx, couple.Members)
	if err != nil {
		return false, fmt.Errorf("failed to list couple members: %w", err)
	}

	var tokens []string
	for _, m := range members {
		if m.NotificationToken != nil && *m.NotificationToken != "" {
			tokens = append(tokens, *m.NotificationToken)
		}
	}

	if len(tokens) == 0 {
		d.logger.Debug().Str("couple_id", couple.ID).Msg("No notification tokens for couple")
		metrics.RemindersSentTotal.WithLabelValues("no_recipients").Inc()
		return true, d.events.MarkReminderSent(ctx, event.ID)
	}

	n := buildNotification(event)
	sent := 0
	for _, tok := range tokens {
		n.Token = tok
		if err := d.sender.Send(ctx, n); err != nil {
			metrics.RemindersSentTotal.WithLabelValues("failed").Inc()
			d.logger.Warn().Err(err).Str("event_id", event.ID).Msg("Push delivery failed")
			continue
		}
		metrics.RemindersSentTotal.WithLabelValues("sent").Inc()
		sent++
	}

	if sent == 0 {
		return false, fmt.Errorf("no notification delivered for event %s", event.ID)
	}
	return true, d.events.MarkReminderSent(ctx, event.ID)
}

func buildNotification(event *models.Event) push.Notification {
	title := event.Title
	if title == "" {
		title = "Event Reminder"
	}
	return push.Notification{
		Title: title,
		Body:  fmt.Sprintf("Your event %q is coming up at %s.", title, event.Date.Format("15:04")),
		Data: map[string]string{
			"event_id":  event.ID,
			"couple_id": event.CoupleID,
			"url":       "/calendar/" + event.ID,
		},
	}
}
