// Package push delivers notifications to users' devices.
package push

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"
)

// Notification is a single alert addressed to one device token
type Notification struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

// Sender delivers notifications
type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// APNsSender sends notifications through Apple Push Notification service
// using token-based authentication
type APNsSender struct {
	client *apns2.Client
	topic  string
}

// NewAPNsSender creates a sender from a .p8 signing key
func NewAPNsSender(keyFile, keyID, teamID, topic string, production bool) (*APNsSender, error) {
	authKey, err := token.AuthKeyFromFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs auth key: %w", err)
	}

	client := apns2.NewTokenClient(&token.Token{
		AuthKey: authKey,
		KeyID:   keyID,
		TeamID:  teamID,
	})
	if production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return &APNsSender{client: client, topic: topic}, nil
}

// Send pushes one alert notification
func (s *APNsSender) Send(ctx context.Context, n Notification) error {
	p := payload.NewPayload().
		AlertTitle(n.Title).
		AlertBody(n.Body).
		Sound("default")
	for k, v := range n.Data {
		p = p.Custom(k, v)
	}

	res, err := s.client.PushWithContext(ctx, &apns2.Notification{
		DeviceToken: n.Token,
		Topic:       s.topic,
		PushType:    apns2.PushTypeAlert,
		Payload:     p,
	})
	if err != nil {
		return fmt.Errorf("failed to push notification: %w", err)
	}
	if !res.Sent() {
		return fmt.Errorf("notification rejected: %d %s", res.StatusCode, res.Reason)
	}
	return nil
}

// LogSender only logs notifications. It is used when APNs is not configured.
type LogSender struct{}

// Send logs the notification
func (LogSender) Send(_ context.Context, n Notification) error {
	log.Info().
		Str("title", n.Title).
		Str("body", n.Body).
		Interface("data", n.Data).
		Msg("Push delivery disabled, notification logged")
	return nil
}
