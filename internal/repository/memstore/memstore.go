// Package memstore provides in-memory repositories with the same semantics
// as the Postgres ones. Every returned record is a copy.
package memstore

import (
	"context"
	"sync"
	"time"

	"lovetrack-backend/internal/models"
	"lovetrack-backend/internal/repository"
)

// Store bundles the three in-memory repositories
type Store struct {
	users   *UserRepository
	couples *CoupleRepository
	events  *EventRepository
}

// New creates an empty store
func New() *Store {
	return &Store{
		users:   &UserRepository{byID: map[string]*models.User{}, byAuthID: map[string]string{}},
		couples: &CoupleRepository{byID: map[string]*models.Couple{}},
		events:  &EventRepository{byID: map[string]*models.Event{}},
	}
}

// Users returns the user repository
func (s *Store) Users() *UserRepository { return s.users }

// Couples returns the couple repository
func (s *Store) Couples() *CoupleRepository { return s.couples }

// Events returns the event repository
func (s *Store) Events() *EventRepository { return s.events }

// Ping always succeeds
func (s *Store) Ping(context.Context) error { return nil }

// UserRepository keeps users in memory
type UserRepository struct {
	mu       sync.RWMutex
	byID     map[string]*models.User
	byAuthID map[string]string
}

func copyUser(u *models.User) *models.User {
	c := *u
	c.CoupleID = copyString(u.CoupleID)
	c.NotificationToken = copyString(u.NotificationToken)
	return &c
}

func (r *UserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byAuthID[user.AuthID]; exists {
		return repository.ErrDuplicate
	}
	r.byID[user.ID] = copyUser(user)
	r.byAuthID[user.AuthID] = user.ID
	return nil
}

func (r *UserRepository) GetByAuthID(_ context.Context, authID string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byAuthID[authID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyUser(r.byID[id]), nil
}

func (r *UserRepository) ListByIDs(_ context.Context, ids []string) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var users []*models.User
	for _, id := range ids {
		if u, ok := r.byID[id]; ok {
			users = append(users, copyUser(u))
		}
	}
	return users, nil
}

func (r *UserRepository) SetCoupleID(_ context.Context, userID, coupleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.CoupleID = &coupleID
	return nil
}

func (r *UserRepository) UpdateNotificationToken(_ context.Context, authID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byAuthID[authID]
	if !ok {
		return repository.ErrNotFound
	}
	r.byID[id].NotificationToken = &token
	return nil
}

// CoupleRepository keeps couples in memory
type CoupleRepository struct {
	mu   sync.RWMutex
	byID map[string]*models.Couple
}

func copyCouple(c *models.Couple) *models.Couple {
	cp := *c
	cp.Members = append([]string(nil), c.Members...)
	cp.PairingCode = copyString(c.PairingCode)
	cp.PairingExpires = copyTime(c.PairingExpires)
	return &cp
}

func (r *CoupleRepository) Create(_ context.Context, couple *models.Couple) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID[couple.ID] = copyCouple(couple)
	return nil
}

func (r *CoupleRepository) GetByID(_ context.Context, id string) (*models.Couple, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyCouple(c), nil
}

func (r *CoupleRepository) GetByPairingCode(_ context.Context, code string) (*models.Couple, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var found *models.Couple
	for _, c := range r.byID {
		if c.PairingCode == nil || *c.PairingCode != code {
			continue
		}
		if found == nil || c.CreatedAt.After(found.CreatedAt) {
			found = c
		}
	}
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return copyCouple(found), nil
}

func (r *CoupleRepository) AddMemberWithCode(_ context.Context, coupleID, code, userID string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[coupleID]
	if !ok || c.PairingCode == nil || *c.PairingCode != code {
		return repository.ErrNotFound
	}
	if c.PairingExpires == nil || c.PairingExpires.Before(now) || c.HasMember(userID) {
		return repository.ErrNotFound
	}

	c.Members = append(c.Members, userID)
	c.PairingCode = nil
	c.PairingExpires = nil
	return nil
}

// EventRepository keeps events in memory in insertion order
type EventRepository struct {
	mu    sync.RWMutex
	byID  map[string]*models.Event
	order []string
}

func copyEvent(e *models.Event) *models.Event {
	c := *e
	c.Description = copyString(e.Description)
	c.Location = copyString(e.Location)
	c.ReminderTime = copyTime(e.ReminderTime)
	return &c
}

func (r *EventRepository) Create(_ context.Context, event *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID[event.ID] = copyEvent(event)
	r.order = append(r.order, event.ID)
	return nil
}

func (r *EventRepository) GetByID(_ context.Context, id string) (*models.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyEvent(e), nil
}

func (r *EventRepository) ListByCoupleID(_ context.Context, coupleID string) ([]*models.Event, error) {
	return r.filter(func(e *models.Event) bool { return e.CoupleID == coupleID }), nil
}

func (r *EventRepository) Update(_ context.Context, id string, update models.EventUpdate, now time.Time) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	update.Apply(e)
	if now.After(e.UpdatedAt) {
		e.UpdatedAt = now
	} else {
		e.UpdatedAt = e.UpdatedAt.Add(time.Microsecond)
	}
	return copyEvent(e), nil
}

func (r *EventRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.byID, id)
	for i, eid := range r.order {
		if eid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *EventRepository) ListDueReminders(_ context.Context, from, to time.Time) ([]*models.Event, error) {
	return r.filter(func(e *models.Event) bool {
		return !e.ReminderSent && e.ReminderTime != nil &&
			!e.ReminderTime.Before(from) && !e.ReminderTime.After(to)
	}), nil
}

func (r *EventRepository) MarkReminderSent(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	e.ReminderSent = true
	return nil
}

func (r *EventRepository) filter(keep func(*models.Event) bool) []*models.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := []*models.Event{}
	for _, id := range r.order {
		if e := r.byID[id]; keep(e) {
			events = append(events, copyEvent(e))
		}
	}
	return events
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
