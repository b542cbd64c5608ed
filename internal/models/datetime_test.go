package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateTime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   string
		want    time.Time
		wantErr bool
	}{
		{name: "rfc3339 utc", value: "2024-02-01T19:00:00Z", want: time.Date(2024, 2, 1, 19, 0, 0, 0, time.UTC)},
		{name: "rfc3339 offset", value: "2024-02-01T19:00:00+02:00", want: time.Date(2024, 2, 1, 17, 0, 0, 0, time.UTC)},
		{name: "zoneless with fraction", value: "2024-10-23T10:11:12.123456", want: time.Date(2024, 10, 23, 10, 11, 12, 123456000, time.UTC)},
		{name: "zoneless", value: "2024-10-23T10:11:12", want: time.Date(2024, 10, 23, 10, 11, 12, 0, time.UTC)},
		{name: "date only", value: "2024-02-01", want: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		{name: "empty", value: "", wantErr: true},
		{name: "words", value: "tomorrow", wantErr: true},
		{name: "day first", value: "01/02/2024", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseDateTime(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestEventCreate_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	t.Run("date only and zoneless reminder", func(t *testing.T) {
		var e EventCreate
		err := json.Unmarshal([]byte(`{
			"couple_id": "c1",
			"title": "Anniversary",
			"description": "dinner",
			"date": "2024-02-01",
			"reminder_time": "2024-01-31T18:00:00.5"
		}`), &e)
		require.NoError(t, err)

		assert.Equal(t, "c1", e.CoupleID)
		assert.Equal(t, "Anniversary", e.Title)
		require.NotNil(t, e.Description)
		assert.Equal(t, "dinner", *e.Description)
		assert.True(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC).Equal(e.Date))
		require.NotNil(t, e.ReminderTime)
		assert.True(t, time.Date(2024, 1, 31, 18, 0, 0, 500000000, time.UTC).Equal(*e.ReminderTime))
	})

	t.Run("missing and null dates stay zero", func(t *testing.T) {
		var e EventCreate
		require.NoError(t, json.Unmarshal([]byte(`{"title":"A","reminder_time":null}`), &e))
		assert.True(t, e.Date.IsZero())
		assert.Nil(t, e.ReminderTime)
	})

	t.Run("invalid date", func(t *testing.T) {
		var e EventCreate
		assert.Error(t, json.Unmarshal([]byte(`{"title":"A","date":"soon"}`), &e))
		assert.Error(t, json.Unmarshal([]byte(`{"title":"A","date":20240201}`), &e))
	})
}

func TestParseEventUpdate_DateForms(t *testing.T) {
	t.Parallel()

	update, err := ParseEventUpdate([]byte(`{"date":"2024-03-01","reminder_time":"2024-02-29T09:30:00"}`))
	require.NoError(t, err)

	date, ok := update[EventFieldDate].(time.Time)
	require.True(t, ok)
	assert.True(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).Equal(date))

	reminder, ok := update[EventFieldReminderTime].(*time.Time)
	require.True(t, ok)
	require.NotNil(t, reminder)
	assert.True(t, time.Date(2024, 2, 29, 9, 30, 0, 0, time.UTC).Equal(*reminder))

	update, err = ParseEventUpdate([]byte(`{"reminder_time":null}`))
	require.NoError(t, err)
	cleared, ok := update[EventFieldReminderTime].(*time.Time)
	require.True(t, ok)
	assert.Nil(t, cleared)
}
