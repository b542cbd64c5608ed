package handlers

import (
	"net/http"

	"lovetrack-backend/internal/models"
	"lovetrack-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// CoupleHandler handles couple-related HTTP requests
type CoupleHandler struct {
	coupleService *services.CoupleService
	wsHub         *services.WSHub
}

// NewCoupleHandler creates a new couple handler
func NewCoupleHandler(coupleService *services.CoupleService, wsHub *services.WSHub) *CoupleHandler {
	return &CoupleHandler{
		coupleService: coupleService,
		wsHub:         wsHub,
	}
}

// CreateCoupleRequest represents the request body for creating a couple
type CreateCoupleRequest struct {
	CreatedBy string `json:"created_by" validate:"required"`
	StartDate string `json:"start_date" validate:"required"`
}

// JoinCoupleRequest represents the request body for joining a couple
type JoinCoupleRequest struct {
	AuthID string `json:"auth_id" validate:"required"`
	Code   string `json:"code" validate:"required"`
}

// JoinCoupleResponse represents the response body of a join
type JoinCoupleResponse struct {
	Success  bool   `json:"success"`
	CoupleID string `json:"couple_id"`
}

// CreateCouple handles POST /api/couples
func (h *CoupleHandler) CreateCouple(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateCoupleRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	startDate, err := models.ParseDateTime(req.StartDate)
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	couple, err := h.coupleService.CreateCouple(ctx, req.CreatedBy, startDate)
	if err != nil {
		statusCode := statusFor(err)
		log.Error().
			Err(err).
			Str("created_by", req.CreatedBy).
			Msg("Failed to create couple")
		respondError(w, errorMessage(err, statusCode), statusCode)
		return
	}

	log.Info().
		Str("couple_id", couple.ID).
		Str("created_by", couple.CreatedBy).
		Msg("Couple created")

	respondJSON(w, couple, http.StatusOK)
}

// JoinCouple handles POST /api/couples/join
func (h *CoupleHandler) JoinCouple(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req JoinCoupleRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.coupleService.JoinCouple(ctx, req.AuthID, req.Code)
	if err != nil {
		statusCode := statusFor(err)
		log.Error().
			Err(err).
			Str("auth_id", req.AuthID).
			Msg("Failed to join couple")
		respondError(w, errorMessage(err, statusCode), statusCode)
		return
	}

	if result.Joined {
		log.Info().
			Str("couple_id", result.CoupleID).
			Str("user_id", result.UserID).
			Msg("User joined couple")

		// Partner may be listening; the join already succeeded regardless
		h.wsHub.NotifyMemberJoined(result.CoupleID, result.UserID)
	}

	respondJSON(w, JoinCoupleResponse{Success: true, CoupleID: result.CoupleID}, http.StatusOK)
}

// GetCouple handles GET /api/couples/{couple_id}
func (h *CoupleHandler) GetCouple(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	coupleID := chi.URLParam(r, "couple_id")

	couple, err := h.coupleService.GetCouple(ctx, coupleID)
	if err != nil {
		statusCode := statusFor(err)
		if statusCode == http.StatusInternalServerError {
			log.Error().Err(err).Str("couple_id", coupleID).Msg("Failed to get couple")
		}
		respondError(w, errorMessage(err, statusCode), statusCode)
		return
	}

	respondJSON(w, couple, http.StatusOK)
}
