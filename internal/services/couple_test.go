package services

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sixDigits = regexp.MustCompile(`^[0-9]{6}$`)

func TestGeneratePairingCode(t *testing.T) {
	t.Parallel()

	for i := 0; i < 1000; i++ {
		code, err := generatePairingCode()
		require.NoError(t, err)
		require.Regexp(t, sixDigits, code)
		assert.NotEqual(t, '0', rune(code[0]), "code is at least 100000")
	}
}

func TestCoupleService_CreateCouple(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	creator := env.register(t, "auth-a")
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	couple, err := env.couples.CreateCouple(ctx, "auth-a", start)
	require.NoError(t, err)

	assert.Equal(t, creator.ID, couple.CreatedBy)
	assert.Equal(t, []string{creator.ID}, couple.Members)
	assert.Equal(t, start, couple.StartDate)
	require.NotNil(t, couple.PairingCode)
	require.NotNil(t, couple.PairingExpires)
	assert.Regexp(t, sixDigits, *couple.PairingCode)
	assert.Equal(t, couple.CreatedAt.Add(24*time.Hour), *couple.PairingExpires)

	user, err := env.users.GetByAuthID(ctx, "auth-a")
	require.NoError(t, err)
	require.NotNil(t, user.CoupleID)
	assert.Equal(t, couple.ID, *user.CoupleID)

	stored, err := env.couples.GetCouple(ctx, couple.ID)
	require.NoError(t, err)
	assert.Equal(t, couple.ID, stored.ID)
}

func TestCoupleService_CreateCouple_UnknownCreator(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.couples.CreateCouple(context.Background(), "ghost", time.Now())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCoupleService_JoinCouple(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "auth-a")
	partner := env.register(t, "auth-b")

	couple, err := env.couples.CreateCouple(ctx, "auth-a", time.Now())
	require.NoError(t, err)

	result, err := env.couples.JoinCouple(ctx, "auth-b", *couple.PairingCode)
	require.NoError(t, err)
	assert.True(t, result.Joined)
	assert.Equal(t, couple.ID, result.CoupleID)
	assert.Equal(t, partner.ID, result.UserID)

	joined, err := env.couples.GetCouple(ctx, couple.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{couple.CreatedBy, partner.ID}, joined.Members)
	assert.Nil(t, joined.PairingCode)
	assert.Nil(t, joined.PairingExpires)

	user, err := env.users.GetByAuthID(ctx, "auth-b")
	require.NoError(t, err)
	require.NotNil(t, user.CoupleID)
	assert.Equal(t, couple.ID, *user.CoupleID)

	// The code was consumed
	_, err = env.couples.JoinCouple(ctx, "auth-b", *couple.PairingCode)
	assert.ErrorIs(t, err, ErrPairingCodeNotFound)
}

func TestCoupleService_JoinCouple_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "auth-a")
	env.register(t, "auth-b")

	couple, err := env.couples.CreateCouple(ctx, "auth-a", time.Now())
	require.NoError(t, err)

	t.Run("unknown code", func(t *testing.T) {
		_, err := env.couples.JoinCouple(ctx, "auth-b", "000000")
		assert.ErrorIs(t, err, ErrPairingCodeNotFound)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := env.couples.JoinCouple(ctx, "ghost", *couple.PairingCode)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("creator joining own code is a no-op", func(t *testing.T) {
		result, err := env.couples.JoinCouple(ctx, "auth-a", *couple.PairingCode)
		require.NoError(t, err)
		assert.False(t, result.Joined)

		c, err := env.couples.GetCouple(ctx, couple.ID)
		require.NoError(t, err)
		assert.Len(t, c.Members, 1)
		assert.NotNil(t, c.PairingCode, "code stays open")
	})
}

func TestCoupleService_JoinCouple_Expired(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "auth-a")
	env.register(t, "auth-b")

	couple, err := env.couples.CreateCouple(ctx, "auth-a", time.Now())
	require.NoError(t, err)

	env.clock.Advance(24*time.Hour + time.Second)

	_, err = env.couples.JoinCouple(ctx, "auth-b", *couple.PairingCode)
	assert.ErrorIs(t, err, ErrPairingCodeExpired)

	c, err := env.couples.GetCouple(ctx, couple.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{couple.CreatedBy}, c.Members)
}

func TestCoupleService_JoinCouple_AtExpiryInstant(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "auth-a")
	env.register(t, "auth-b")

	couple, err := env.couples.CreateCouple(ctx, "auth-a", time.Now())
	require.NoError(t, err)

	env.clock.Advance(24 * time.Hour)

	result, err := env.couples.JoinCouple(ctx, "auth-b", *couple.PairingCode)
	require.NoError(t, err)
	assert.True(t, result.Joined)
}

func TestCoupleService_JoinCouple_ConcurrentSameUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "auth-a")
	partner := env.register(t, "auth-b")

	couple, err := env.couples.CreateCouple(ctx, "auth-a", time.Now())
	require.NoError(t, err)
	code := *couple.PairingCode

	const callers = 2
	errs := make([]error, callers)
	results := make([]*JoinResult, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = env.couples.JoinCouple(ctx, "auth-b", code)
		}(i)
	}
	wg.Wait()

	joined, notFound := 0, 0
	for i := range errs {
		switch {
		case errs[i] == nil && results[i].Joined:
			joined++
		case errs[i] != nil:
			assert.ErrorIs(t, errs[i], ErrPairingCodeNotFound)
			notFound++
		}
	}
	assert.Equal(t, 1, joined)
	assert.Equal(t, 1, notFound)

	c, err := env.couples.GetCouple(ctx, couple.ID)
	require.NoError(t, err)
	count := 0
	for _, m := range c.Members {
		if m == partner.ID {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Nil(t, c.PairingCode)
}

func TestCoupleService_GetCouple_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.couples.GetCouple(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrCoupleNotFound)
}
