package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"lovetrack-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is open for every route
	},
}

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	hub           *services.WSHub
	userService   *services.UserService
	coupleService *services.CoupleService
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(
	hub *services.WSHub,
	userService *services.UserService,
	coupleService *services.CoupleService,
) *WebSocketHandler {
	return &WebSocketHandler{
		hub:           hub,
		userService:   userService,
		coupleService: coupleService,
	}
}

// HandleWebSocket handles GET /ws?auth_id=...
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	authID := r.URL.Query().Get("auth_id")
	if authID == "" {
		respondError(w, "auth_id is required", http.StatusBadRequest)
		return
	}

	user, err := h.userService.GetByAuthID(ctx, authID)
	if err != nil {
		statusCode := statusFor(err)
		respondError(w, errorMessage(err, statusCode), statusCode)
		return
	}
	if user.CoupleID == nil {
		respondError(w, "user is not in a couple", http.StatusBadRequest)
		return
	}
	coupleID := *user.CoupleID

	couple, err := h.coupleService.GetCouple(ctx, coupleID)
	if err != nil {
		statusCode := statusFor(err)
		respondError(w, errorMessage(err, statusCode), statusCode)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	h.hub.Register(coupleID, user.ID, conn)
	defer h.hub.Unregister(coupleID, user.ID, conn)

	statusMsg := services.WSMessage{
		Type:      services.MsgCoupleStatus,
		Timestamp: time.Now().UnixMilli(),
		Data: map[string]interface{}{
			"couple":         couple,
			"online_members": h.hub.OnlineMembers(coupleID),
		},
	}
	if err := h.hub.SendToUser(coupleID, user.ID, statusMsg); err != nil {
		log.Error().
			Err(err).
			Str("user_id", user.ID).
			Msg("Failed to send couple_status message")
		return
	}

	log.Info().Str("user_id", user.ID).Str("couple_id", coupleID).Msg("WebSocket connection established")

	for {
		_, messageBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error().Err(err).Str("user_id", user.ID).Msg("WebSocket error")
			}
			break
		}

		var msg services.WSMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			h.sendError(coupleID, user.ID, "Invalid message format")
			continue
		}

		switch msg.Type {
		case services.MsgPing:
			reply := services.WSMessage{Type: services.MsgPong, Timestamp: time.Now().UnixMilli()}
			if err := h.hub.SendToUser(coupleID, user.ID, reply); err != nil {
				log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to send pong")
			}
		default:
			h.sendError(coupleID, user.ID, "Unknown message type")
		}
	}
}

// sendError sends an error message to a user
func (h *WebSocketHandler) sendError(coupleID, userID, message string) {
	msg := services.WSMessage{
		Type:    services.MsgError,
		Message: message,
	}
	if err := h.hub.SendToUser(coupleID, userID, msg); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to send error message")
	}
}
