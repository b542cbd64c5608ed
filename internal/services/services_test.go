package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"lovetrack-backend/internal/models"
	"lovetrack-backend/internal/repository/memstore"

	"github.com/stretchr/testify/require"
)

type fixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type testEnv struct {
	store   *memstore.Store
	clock   *fixedClock
	users   *UserService
	couples *CoupleService
	events  *EventService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memstore.New()
	clock := &fixedClock{t: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}

	users := NewUserService(store.Users())
	users.now = clock.Now
	couples := NewCoupleService(store.Couples(), store.Users())
	couples.now = clock.Now
	events := NewEventService(store.Events())
	events.now = clock.Now

	return &testEnv{store: store, clock: clock, users: users, couples: couples, events: events}
}

func (e *testEnv) register(t *testing.T, authID string) *models.User {
	t.Helper()
	user, err := e.users.RegisterOrFetch(context.Background(), authID, nil)
	require.NoError(t, err)
	return user
}
