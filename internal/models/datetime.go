package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Layouts tried in order. Values without a zone are read as UTC.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	time.DateOnly,
}

// ParseDateTime accepts an RFC 3339 timestamp, a zoneless ISO 8601
// date-time or a plain YYYY-MM-DD date
func ParseDateTime(value string) (time.Time, error) {
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", value)
}

// DateTime is a time.Time decoded with ParseDateTime
type DateTime struct {
	time.Time
}

// UnmarshalJSON decodes a JSON string. null leaves the value unchanged.
func (d *DateTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), nullJSON) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	t, err := ParseDateTime(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// UnmarshalJSON decodes the event's dates with ParseDateTime
func (e *EventCreate) UnmarshalJSON(data []byte) error {
	type alias EventCreate
	aux := struct {
		*alias
		Date         DateTime  `json:"date"`
		ReminderTime *DateTime `json:"reminder_time"`
	}{alias: (*alias)(e)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	e.Date = aux.Date.Time
	e.ReminderTime = nil
	if aux.ReminderTime != nil {
		t := aux.ReminderTime.Time
		e.ReminderTime = &t
	}
	return nil
}
