package repository

import (
	"context"
	"errors"
	"fmt"

	"lovetrack-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, auth_id, couple_id, created_at, notification_token`

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.AuthID, &user.CoupleID, &user.CreatedAt, &user.NotificationToken)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create creates a new user. ErrDuplicate is returned when the auth ID is taken.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, auth_id, couple_id, created_at, notification_token)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.AuthID, user.CoupleID, user.CreatedAt, user.NotificationToken,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByAuthID retrieves a user by auth ID
func (r *UserRepository) GetByAuthID(ctx context.Context, authID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE auth_id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, authID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by auth id: %w", err)
	}
	return user, nil
}

// ListByIDs retrieves the users with the given IDs, skipping unknown ones
func (r *UserRepository) ListByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1)`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

// SetCoupleID links a user to a couple
func (r *UserRepository) SetCoupleID(ctx context.Context, userID, coupleID string) error {
	query := `UPDATE users SET couple_id = $1 WHERE id = $2`
	result, err := r.db.Exec(ctx, query, coupleID, userID)
	if err != nil {
		return fmt.Errorf("failed to set couple id: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateNotificationToken updates the notification token for a user
func (r *UserRepository) UpdateNotificationToken(ctx context.Context, authID, token string) error {
	query := `UPDATE users SET notification_token = $1 WHERE auth_id = $2`
	result, err := r.db.Exec(ctx, query, token, authID)
	if err != nil {
		return fmt.Errorf("failed to update notification token: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
