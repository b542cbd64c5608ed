package models

import "time"

// User represents a registered user, keyed by the identity provider's auth ID
type User struct {
	ID                string    `json:"id"`
	AuthID            string    `json:"auth_id"`
	CoupleID          *string   `json:"couple_id"`
	CreatedAt         time.Time `json:"created_at"`
	NotificationToken *string   `json:"notification_token"`
}

// Couple represents a relationship unit shared by its members
type Couple struct {
	ID             string     `json:"id"`
	CreatedAt      time.Time  `json:"created_at"`
	CreatedBy      string     `json:"created_by"`
	Members        []string   `json:"members"`
	StartDate      time.Time  `json:"start_date"`
	PairingCode    *string    `json:"pairing_code"`
	PairingExpires *time.Time `json:"pairing_expires"`
}

// HasMember reports whether userID belongs to the couple
func (c *Couple) HasMember(userID string) bool {
	for _, m := range c.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// Event represents a dated item owned by a couple
type Event struct {
	ID           string     `json:"id"`
	CoupleID     string     `json:"couple_id"`
	Title        string     `json:"title"`
	Description  *string    `json:"description"`
	Date         time.Time  `json:"date"`
	Location     *string    `json:"location"`
	ReminderTime *time.Time `json:"reminder_time"`
	ReminderSent bool       `json:"reminder_sent"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// EventCreate holds the fields accepted when creating an event
type EventCreate struct {
	CoupleID     string     `json:"couple_id" validate:"required"`
	Title        string     `json:"title" validate:"required"`
	Description  *string    `json:"description"`
	Date         time.Time  `json:"date" validate:"required"`
	Location     *string    `json:"location"`
	ReminderTime *time.Time `json:"reminder_time"`
}
