package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lovetrack-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EventRepository handles database operations for events
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `id, couple_id, title, description, date, location,
	reminder_time, reminder_sent, created_at, updated_at`

var eventUpdateColumns = map[models.EventField]string{
	models.EventFieldTitle:        "title",
	models.EventFieldDescription:  "description",
	models.EventFieldDate:         "date",
	models.EventFieldLocation:     "location",
	models.EventFieldReminderTime: "reminder_time",
}

func scanEvent(row pgx.Row) (*models.Event, error) {
	var event models.Event
	err := row.Scan(
		&event.ID, &event.CoupleID, &event.Title, &event.Description, &event.Date,
		&event.Location, &event.ReminderTime, &event.ReminderSent,
		&event.CreatedAt, &event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func collectEvents(rows pgx.Rows) ([]*models.Event, error) {
	defer rows.Close()

	events := []*models.Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return events, nil
}

// Create creates a new event
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query,
		event.ID, event.CoupleID, event.Title, event.Description, event.Date,
		event.Location, event.ReminderTime, event.ReminderSent,
		event.CreatedAt, event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

// GetByID retrieves an event by ID
func (r *EventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	event, err := scanEvent(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// ListByCoupleID retrieves all events of a couple in storage order
func (r *EventRepository) ListByCoupleID(ctx context.Context, coupleID string) ([]*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE couple_id = $1`
	rows, err := r.db.Query(ctx, query, coupleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return collectEvents(rows)
}

// Update applies the supplied fields and refreshes updated_at. updated_at
// always moves forward, even when now is not after the stored value.
func (r *EventRepository) Update(ctx context.Context, id string, update models.EventUpdate, now time.Time) (*models.Event, error) {
	args := []any{id}
	var set []string

	for _, field := range update.Fields() {
		column, ok := eventUpdateColumns[field]
		if !ok {
			return nil, fmt.Errorf("unknown event field %q", field)
		}
		args = append(args, update[field])
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
		if field == models.EventFieldReminderTime {
			set = append(set, "reminder_sent = FALSE")
		}
	}

	args = append(args, now)
	set = append(set, fmt.Sprintf(
		"updated_at = GREATEST($%d, updated_at + INTERVAL '1 microsecond')", len(args)))

	query := `UPDATE events SET ` + strings.Join(set, ", ") +
		` WHERE id = $1 RETURNING ` + eventColumns

	event, err := scanEvent(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return event, nil
}

// Delete deletes an event by ID
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListDueReminders retrieves unsent reminders scheduled within [from, to]
func (r *EventRepository) ListDueReminders(ctx context.Context, from, to time.Time) ([]*models.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE reminder_sent = FALSE
		  AND reminder_time >= $1
		  AND reminder_time <= $2
		ORDER BY reminder_time
	`
	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list due reminders: %w", err)
	}
	return collectEvents(rows)
}

// MarkReminderSent flags the event's reminder as delivered
func (r *EventRepository) MarkReminderSent(ctx context.Context, id string) error {
	query := `UPDATE events SET reminder_sent = TRUE WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark reminder sent: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
