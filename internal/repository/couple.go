package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lovetrack-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CoupleRepository handles database operations for couples
type CoupleRepository struct {
	db *pgxpool.Pool
}

// NewCoupleRepository creates a new couple repository
func NewCoupleRepository(db *pgxpool.Pool) *CoupleRepository {
	return &CoupleRepository{db: db}
}

const coupleColumns = `id, created_at, created_by, members, start_date, pairing_code, pairing_expires`

func scanCouple(row pgx.Row) (*models.Couple, error) {
	var couple models.Couple
	err := row.Scan(
		&couple.ID, &couple.CreatedAt, &couple.CreatedBy, &couple.Members,
		&couple.StartDate, &couple.PairingCode, &couple.PairingExpires,
	)
	if err != nil {
		return nil, err
	}
	return &couple, nil
}

// Create creates a new couple
func (r *CoupleRepository) Create(ctx context.Context, couple *models.Couple) error {
	query := `
		INSERT INTO couples (id, created_at, created_by, members, start_date, pairing_code, pairing_expires)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		couple.ID, couple.CreatedAt, couple.CreatedBy, couple.Members,
		couple.StartDate, couple.PairingCode, couple.PairingExpires,
	)
	if err != nil {
		return fmt.Errorf("failed to create couple: %w", err)
	}
	return nil
}

// GetByID retrieves a couple by ID
func (r *CoupleRepository) GetByID(ctx context.Context, id string) (*models.Couple, error) {
	query := `SELECT ` + coupleColumns + ` FROM couples WHERE id = $1`
	couple, err := scanCouple(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get couple: %w", err)
	}
	return couple, nil
}

// GetByPairingCode retrieves the most recently created couple holding code
func (r *CoupleRepository) GetByPairingCode(ctx context.Context, code string) (*models.Couple, error) {
	query := `
		SELECT ` + coupleColumns + `
		FROM couples
		WHERE pairing_code = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	couple, err := scanCouple(r.db.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get couple by pairing code: %w", err)
	}
	return couple, nil
}

// AddMemberWithCode appends userID to the couple's members and clears the
// pairing code in one statement. The update only applies while the couple
// still holds code, the code has not expired at now, and userID is not yet a
// member; otherwise ErrNotFound is returned.
func (r *CoupleRepository) AddMemberWithCode(ctx context.Context, coupleID, code, userID string, now time.Time) error {
	query := `
		UPDATE couples
		SET members = array_append(members, $3::text),
		    pairing_code = NULL,
		    pairing_expires = NULL
		WHERE id = $1
		  AND pairing_code = $2
		  AND pairing_expires >= $4
		  AND NOT ($3::text = ANY(members))
	`
	result, err := r.db.Exec(ctx, query, coupleID, code, userID, now)
	if err != nil {
		return fmt.Errorf("failed to add couple member: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
