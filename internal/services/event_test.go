package services

import (
	"context"
	"testing"
	"time"

	"lovetrack-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventService_CRUD(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	desc := "dinner"

	event, err := env.events.CreateEvent(ctx, models.EventCreate{
		CoupleID:    "c1",
		Title:       "Anniversary",
		Description: &desc,
		Date:        time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, event.CreatedAt, event.UpdatedAt)

	got, err := env.events.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, event, got)

	listed, err := env.events.ListEvents(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, event.ID, listed[0].ID)

	require.NoError(t, env.events.DeleteEvent(ctx, event.ID))

	listed, err = env.events.ListEvents(ctx, "c1")
	require.NoError(t, err)
	assert.NotNil(t, listed)
	assert.Empty(t, listed)

	_, err = env.events.GetEvent(ctx, event.ID)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestEventService_UpdateEvent_TitleOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	desc := "dinner"
	loc := "home"
	reminder := time.Date(2024, 1, 31, 18, 0, 0, 0, time.UTC)

	event, err := env.events.CreateEvent(ctx, models.EventCreate{
		CoupleID:     "c1",
		Title:        "Anniversary",
		Description:  &desc,
		Date:         time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Location:     &loc,
		ReminderTime: &reminder,
	})
	require.NoError(t, err)

	env.clock.Advance(time.Minute)

	updated, err := env.events.UpdateEvent(ctx, event.ID, models.EventUpdate{models.EventFieldTitle: "X"})
	require.NoError(t, err)

	assert.Equal(t, "X", updated.Title)
	assert.Equal(t, event.CoupleID, updated.CoupleID)
	assert.Equal(t, event.Description, updated.Description)
	assert.Equal(t, event.Date, updated.Date)
	assert.Equal(t, event.Location, updated.Location)
	assert.Equal(t, event.ReminderTime, updated.ReminderTime)
	assert.Equal(t, event.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(event.UpdatedAt))
}

func TestEventService_UpdateEvent_StrictlyIncreasesWithoutClockAdvance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	event, err := env.events.CreateEvent(ctx, models.EventCreate{
		CoupleID: "c1", Title: "A", Date: time.Now(),
	})
	require.NoError(t, err)

	first, err := env.events.UpdateEvent(ctx, event.ID, models.EventUpdate{models.EventFieldTitle: "B"})
	require.NoError(t, err)
	second, err := env.events.UpdateEvent(ctx, event.ID, models.EventUpdate{models.EventFieldTitle: "C"})
	require.NoError(t, err)

	assert.True(t, first.UpdatedAt.After(event.UpdatedAt))
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
}

func TestEventService_NotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.events.UpdateEvent(ctx, "missing", models.EventUpdate{models.EventFieldTitle: "X"})
	assert.ErrorIs(t, err, ErrEventNotFound)

	assert.ErrorIs(t, env.events.DeleteEvent(ctx, "missing"), ErrEventNotFound)
}

func TestEventService_DeleteTwice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	event, err := env.events.CreateEvent(ctx, models.EventCreate{CoupleID: "c1", Title: "A", Date: time.Now()})
	require.NoError(t, err)

	require.NoError(t, env.events.DeleteEvent(ctx, event.ID))
	assert.ErrorIs(t, env.events.DeleteEvent(ctx, event.ID), ErrEventNotFound)
}

func TestTimestampsKeepMicrosecondPrecision(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.clock.t = time.Date(2024, 1, 1, 9, 0, 0, 123456789, time.UTC)

	user := env.register(t, "auth-a")
	couple, err := env.couples.CreateCouple(ctx, "auth-a", time.Now())
	require.NoError(t, err)
	event, err := env.events.CreateEvent(ctx, models.EventCreate{CoupleID: couple.ID, Title: "A", Date: time.Now()})
	require.NoError(t, err)

	want := time.Date(2024, 1, 1, 9, 0, 0, 123456000, time.UTC)
	assert.Equal(t, want, user.CreatedAt)
	assert.Equal(t, want, couple.CreatedAt)
	assert.Equal(t, want.Add(24*time.Hour), *couple.PairingExpires)
	assert.Equal(t, want, event.CreatedAt)
	assert.Equal(t, want, event.UpdatedAt)

	env.clock.Advance(time.Second)
	updated, err := env.events.UpdateEvent(ctx, event.ID, models.EventUpdate{models.EventFieldTitle: "B"})
	require.NoError(t, err)
	assert.Equal(t, want.Add(time.Second), updated.UpdatedAt)
}
