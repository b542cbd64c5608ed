package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"lovetrack-backend/internal/metrics"
	"lovetrack-backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WebSocket message types
const (
	MsgCoupleStatus  = "couple_status"
	MsgPartnerStatus = "partner_status"
	MsgMemberJoined  = "member_joined"
	MsgEventCreated  = "event_created"
	MsgEventUpdated  = "event_updated"
	MsgEventDeleted  = "event_deleted"
	MsgPing          = "ping"
	MsgPong          = "pong"
	MsgError         = "error"
)

const writeTimeout = 10 * time.Second

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type      string      `json:"type"`
	Timestamp int64       `json:"timestamp,omitempty"`
	UserID    string      `json:"user_id,omitempty"`
	Online    *bool       `json:"online,omitempty"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

type wsClient struct {
	conn *websocket.Conn
	// gorilla connections allow one concurrent writer
	writeMu sync.Mutex
}

func (c *wsClient) write(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// WSHub manages WebSocket connections grouped by couple
type WSHub struct {
	mu      sync.RWMutex
	couples map[string]map[string]*wsClient
}

// NewWSHub creates a new WebSocket hub
func NewWSHub() *WSHub {
	return &WSHub{
		couples: make(map[string]map[string]*wsClient),
	}
}

// Register registers a connection for a couple member, replacing any
// previous connection of the same user, and tells the other members the
// user is online.
func (h *WSHub) Register(coupleID, userID string, conn *websocket.Conn) {
	h.mu.Lock()
	members, ok := h.couples[coupleID]
	if !ok {
		members = make(map[string]*wsClient)
		h.couples[coupleID] = members
	}
	if existing, exists := members[userID]; exists {
		existing.conn.Close()
		metrics.WebSocketClients.Dec()
	}
	members[userID] = &wsClient{conn: conn}
	h.mu.Unlock()

	metrics.WebSocketClients.Inc()
	log.Info().Str("couple_id", coupleID).Str("user_id", userID).Msg("WebSocket connection registered")

	h.notifyPartnerStatus(coupleID, userID, true)
}

// Unregister removes the user's connection if it is still conn
func (h *WSHub) Unregister(coupleID, userID string, conn *websocket.Conn) {
	h.mu.Lock()
	members := h.couples[coupleID]
	client, exists := members[userID]
	if !exists || client.conn != conn {
		h.mu.Unlock()
		return
	}
	delete(members, userID)
	if len(members) == 0 {
		delete(h.couples, coupleID)
	}
	h.mu.Unlock()

	client.conn.Close()
	metrics.WebSocketClients.Dec()
	log.Info().Str("couple_id", coupleID).Str("user_id", userID).Msg("WebSocket connection unregistered")

	h.notifyPartnerStatus(coupleID, userID, false)
}

// OnlineMembers returns the IDs of the couple's connected members
func (h *WSHub) OnlineMembers(coupleID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]string, 0, len(h.couples[coupleID]))
	for id := range h.couples[coupleID] {
		ids = append(ids, id)
	}
	return ids
}

// SendToUser sends a message to one couple member
func (h *WSHub) SendToUser(coupleID, userID string, message WSMessage) error {
	h.mu.RLock()
	client, exists := h.couples[coupleID][userID]
	h.mu.RUnlock()

	if !exists {
		return fmt.Errorf("user %s is not connected", userID)
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := client.write(data); err != nil {
		h.Unregister(coupleID, userID, client.conn)
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// BroadcastToCouple sends a message to every connected member except
// exceptUserID
func (h *WSHub) BroadcastToCouple(coupleID string, message WSMessage, exceptUserID string) {
	h.mu.RLock()
	recipients := make([]string, 0, len(h.couples[coupleID]))
	for id := range h.couples[coupleID] {
		if id != exceptUserID {
			recipients = append(recipients, id)
		}
	}
	h.mu.RUnlock()

	for _, userID := range recipients {
		if err := h.SendToUser(coupleID, userID, message); err != nil {
			log.Error().
				Err(err).
				Str("couple_id", coupleID).
				Str("user_id", userID).
				Str("type", message.Type).
				Msg("Failed to deliver WebSocket message")
		}
	}
}

func (h *WSHub) notifyPartnerStatus(coupleID, userID string, online bool) {
	h.BroadcastToCouple(coupleID, WSMessage{
		Type:      MsgPartnerStatus,
		Timestamp: time.Now().UnixMilli(),
		UserID:    userID,
		Online:    &online,
	}, userID)
}

// NotifyMemberJoined tells the couple that userID joined
func (h *WSHub) NotifyMemberJoined(coupleID, userID string) {
	h.BroadcastToCouple(coupleID, WSMessage{
		Type:      MsgMemberJoined,
		Timestamp: time.Now().UnixMilli(),
		UserID:    userID,
	}, userID)
}

// NotifyEventChanged tells the couple about a created or updated event
func (h *WSHub) NotifyEventChanged(msgType string, event *models.Event) {
	h.BroadcastToCouple(event.CoupleID, WSMessage{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      event,
	}, "")
}

// NotifyEventDeleted tells the couple an event was removed
func (h *WSHub) NotifyEventDeleted(coupleID, eventID string) {
	h.BroadcastToCouple(coupleID, WSMessage{
		Type:      MsgEventDeleted,
		Timestamp: time.Now().UnixMilli(),
		Data:      map[string]interface{}{"id": eventID},
	}, "")
}

// Close closes every open connection
func (h *WSHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for coupleID, members := range h.couples {
		for _, client := range members {
			client.conn.Close()
			metrics.WebSocketClients.Dec()
		}
		delete(h.couples, coupleID)
	}
}
