package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"lovetrack-backend/internal/metrics"
	"lovetrack-backend/internal/models"
	"lovetrack-backend/internal/repository"

	"github.com/google/uuid"
)

const (
	pairingCodeMin = 100000
	pairingCodeMax = 999999
	pairingCodeTTL = 24 * time.Hour
)

// CoupleService handles couple creation and pairing
type CoupleService struct {
	coupleRepo CoupleRepository
	userRepo   UserRepository
	now        func() time.Time
	newCode    func() (string, error)
}

// NewCoupleService creates a new couple service
func NewCoupleService(coupleRepo CoupleRepository, userRepo UserRepository) *CoupleService {
	return &CoupleService{
		coupleRepo: coupleRepo,
		userRepo:   userRepo,
		now:        time.Now,
		newCode:    generatePairingCode,
	}
}

// JoinResult describes the outcome of a join
type JoinResult struct {
	CoupleID string
	UserID   string
	// Joined is false when the user was already a member
	Joined bool
}

// generatePairingCode returns a uniformly random code in [100000, 999999]
func generatePairingCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(pairingCodeMax-pairingCodeMin+1))
	if err != nil {
		return "", fmt.Errorf("failed to read random number: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+pairingCodeMin), nil
}

// CreateCouple creates a couple owned by the user registered under
// creatorAuthID and opens it for joining for 24 hours.
func (s *CoupleService) CreateCouple(ctx context.Context, creatorAuthID string, startDate time.Time) (*models.Couple, error) {
	creator, err := s.userRepo.GetByAuthID(ctx, creatorAuthID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get creator: %w", err)
	}

	code, err := s.newCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate pairing code: %w", err)
	}

	now := s.now().UTC().Truncate(time.Microsecond)
	expires := now.Add(pairingCodeTTL)

	couple := &models.Couple{
		ID:             uuid.New().String(),
		CreatedAt:      now,
		CreatedBy:      creator.ID,
		Members:        []string{creator.ID},
		StartDate:      startDate,
		PairingCode:    &code,
		PairingExpires: &expires,
	}

	if err := s.coupleRepo.Create(ctx, couple); err != nil {
		return nil, fmt.Errorf("failed to create couple: %w", err)
	}

	if err := s.userRepo.SetCoupleID(ctx, creator.ID, couple.ID); err != nil {
		return nil, fmt.Errorf("failed to link creator to couple: %w", err)
	}

	return couple, nil
}

// JoinCouple adds the user registered under authID to the couple holding
// code. The code is consumed by the first successful join.
func (s *CoupleService) JoinCouple(ctx context.Context, authID, code string) (*JoinResult, error) {
	// One instant for every check in this call
	now := s.now().UTC()

	result, err := s.join(ctx, authID, code, now)
	if err != nil {
		metrics.PairingAttemptsTotal.WithLabelValues(pairingOutcome(err)).Inc()
		return nil, err
	}
	if result.Joined {
		metrics.PairingAttemptsTotal.WithLabelValues("joined").Inc()
	} else {
		metrics.PairingAttemptsTotal.WithLabelValues("already_member").Inc()
	}
	return result, nil
}

func (s *CoupleService) join(ctx context.Context, authID, code string, now time.Time) (*JoinResult, error) {
	user, err := s.userRepo.GetByAuthID(ctx, authID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get joining user: %w", err)
	}

	couple, err := s.coupleRepo.GetByPairingCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPairingCodeNotFound
		}
		return nil, fmt.Errorf("failed to find couple by code: %w", err)
	}

	if couple.PairingExpires != nil && couple.PairingExpires.Before(now) {
		return nil, ErrPairingCodeExpired
	}

	if couple.HasMember(user.ID) {
		return &JoinResult{CoupleID: couple.ID, UserID: user.ID}, nil
	}

	if err := s.coupleRepo.AddMemberWithCode(ctx, couple.ID, code, user.ID, now); err != nil {
		// Another join consumed the code between the lookup and the update
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPairingCodeNotFound
		}
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	if err := s.userRepo.SetCoupleID(ctx, user.ID, couple.ID); err != nil {
		return nil, fmt.Errorf("failed to link user to couple: %w", err)
	}

	return &JoinResult{CoupleID: couple.ID, UserID: user.ID, Joined: true}, nil
}

// GetCouple retrieves a couple by ID
func (s *CoupleService) GetCouple(ctx context.Context, coupleID string) (*models.Couple, error) {
	couple, err := s.coupleRepo.GetByID(ctx, coupleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCoupleNotFound
		}
		return nil, fmt.Errorf("failed to get couple: %w", err)
	}
	return couple, nil
}

func pairingOutcome(err error) string {
	switch {
	case errors.Is(err, ErrPairingCodeNotFound):
		return "not_found"
	case errors.Is(err, ErrPairingCodeExpired):
		return "expired"
	case errors.Is(err, ErrUserNotFound):
		return "unknown_user"
	default:
		return "error"
	}
}
