package handlers

import (
	"net/http"

	"lovetrack-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// CreateUserRequest represents the request body for registering a user
type CreateUserRequest struct {
	AuthID            string  `json:"auth_id" validate:"required"`
	NotificationToken *string `json:"notification_token"`
}

// UpdateTokenRequest represents the request body for updating a push token
type UpdateTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// CreateUser handles POST /api/users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateUserRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.userService.RegisterOrFetch(ctx, req.AuthID, req.NotificationToken)
	if err != nil {
		log.Error().Err(err).Str("auth_id", req.AuthID).Msg("Failed to register user")
		respondError(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	log.Info().
		Str("user_id", user.ID).
		Str("auth_id", user.AuthID).
		Msg("User registered")

	respondJSON(w, user, http.StatusOK)
}

// UpdateToken handles PUT /api/users/{auth_id}/token
func (h *UserHandler) UpdateToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authID := chi.URLParam(r, "auth_id")

	var req UpdateTokenRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.userService.SetNotificationToken(ctx, authID, req.Token); err != nil {
		statusCode := statusFor(err)
		if statusCode == http.StatusInternalServerError {
			log.Error().Err(err).Str("auth_id", authID).Msg("Failed to update notification token")
		}
		respondError(w, errorMessage(err, statusCode), statusCode)
		return
	}

	log.Info().Str("auth_id", authID).Msg("Notification token updated")

	respondJSON(w, SuccessResponse{Success: true}, http.StatusOK)
}
