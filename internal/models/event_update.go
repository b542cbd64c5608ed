package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"
)

// EventField names an event field that can be changed by an update
type EventField string

const (
	EventFieldTitle        EventField = "title"
	EventFieldDescription  EventField = "description"
	EventFieldDate         EventField = "date"
	EventFieldLocation     EventField = "location"
	EventFieldReminderTime EventField = "reminder_time"
)

// ErrInvalidEventUpdate is returned for malformed partial update bodies
var ErrInvalidEventUpdate = errors.New("invalid event update")

// EventUpdate maps every supplied field to its new value. Fields that were
// not supplied are absent from the map.
//
// Value types: string for title, time.Time for date, *string for
// description and location, *time.Time for reminder_time. A nil pointer
// clears the field.
type EventUpdate map[EventField]any

var nullJSON = []byte("null")

// ParseEventUpdate decodes a JSON object into an EventUpdate, keeping only
// the keys present in the body.
func ParseEventUpdate(data []byte) (EventUpdate, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEventUpdate, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: body must be a JSON object", ErrInvalidEventUpdate)
	}

	update := make(EventUpdate, len(raw))
	for key, value := range raw {
		field := EventField(key)
		isNull := bytes.Equal(bytes.TrimSpace(value), nullJSON)

		switch field {
		case EventFieldTitle:
			if isNull {
				return nil, fmt.Errorf("%w: title cannot be null", ErrInvalidEventUpdate)
			}
			var title string
			if err := json.Unmarshal(value, &title); err != nil {
				return nil, fmt.Errorf("%w: title: %v", ErrInvalidEventUpdate, err)
			}
			if title == "" {
				return nil, fmt.Errorf("%w: title cannot be empty", ErrInvalidEventUpdate)
			}
			update[field] = title
		case EventFieldDate:
			if isNull {
				return nil, fmt.Errorf("%w: date cannot be null", ErrInvalidEventUpdate)
			}
			var date DateTime
			if err := json.Unmarshal(value, &date); err != nil {
				return nil, fmt.Errorf("%w: date: %v", ErrInvalidEventUpdate, err)
			}
			update[field] = date.Time
		case EventFieldDescription, EventFieldLocation:
			var s *string
			if err := json.Unmarshal(value, &s); err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalidEventUpdate, key, err)
			}
			update[field] = s
		case EventFieldReminderTime:
			var t *DateTime
			if err := json.Unmarshal(value, &t); err != nil {
				return nil, fmt.Errorf("%w: reminder_time: %v", ErrInvalidEventUpdate, err)
			}
			if t == nil {
				update[field] = (*time.Time)(nil)
			} else {
				update[field] = &t.Time
			}
		default:
			return nil, fmt.Errorf("%w: unknown field %q", ErrInvalidEventUpdate, key)
		}
	}

	return update, nil
}

// Fields returns the supplied field names in a stable order
func (u EventUpdate) Fields() []EventField {
	fields := make([]EventField, 0, len(u))
	for f := range u {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return fields
}

// Apply writes the supplied fields onto e. Changing reminder_time re-arms
// the reminder.
func (u EventUpdate) Apply(e *Event) {
	for field, value := range u {
		switch field {
		case EventFieldTitle:
			e.Title = value.(string)
		case EventFieldDate:
			e.Date = value.(time.Time)
		case EventFieldDescription:
			e.Description = copyString(value.(*string))
		case EventFieldLocation:
			e.Location = copyString(value.(*string))
		case EventFieldReminderTime:
			e.ReminderTime = copyTime(value.(*time.Time))
			e.ReminderSent = false
		}
	}
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
