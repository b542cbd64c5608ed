package handlers

import (
	"errors"
	"io"
	"net/http"

	"lovetrack-backend/internal/models"
	"lovetrack-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// EventHandler handles event-related HTTP requests
type EventHandler struct {
	eventService *services.EventService
	wsHub        *services.WSHub
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService *services.EventService, wsHub *services.WSHub) *EventHandler {
	return &EventHandler{
		eventService: eventService,
		wsHub:        wsHub,
	}
}

// CreateEvent handles POST /api/events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.EventCreate
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	event, err := h.eventService.CreateEvent(ctx, req)
	if err != nil {
		log.Error().Err(err).Str("couple_id", req.CoupleID).Msg("Failed to create event")
		respondError(w, "Failed to create event", http.StatusInternalServerError)
		return
	}

	log.Info().
		Str("event_id", event.ID).
		Str("couple_id", event.CoupleID).
		Msg("Event created")

	h.wsHub.NotifyEventChanged(services.MsgEventCreated, event)

	respondJSON(w, event, http.StatusOK)
}

// ListEvents handles GET /api/events?couple_id=...
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	coupleID := r.URL.Query().Get("couple_id")
	if coupleID == "" {
		respondError(w, "couple_id is required", http.StatusBadRequest)
		return
	}

	events, err := h.eventService.ListEvents(ctx, coupleID)
	if err != nil {
		log.Error().Err(err).Str("couple_id", coupleID).Msg("Failed to list events")
		respondError(w, "Failed to list events", http.StatusInternalServerError)
		return
	}

	respondJSON(w, events, http.StatusOK)
}

// GetEvent handles GET /api/events/{event_id}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	eventID := chi.URLParam(r, "event_id")

	event, err := h.eventService.GetEvent(ctx, eventID)
	if err != nil {
		h.fail(w, err, eventID, "Failed to get event")
		return
	}

	respondJSON(w, event, http.StatusOK)
}

// UpdateEvent handles PUT /api/events/{event_id}
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	eventID := chi.URLParam(r, "event_id")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	update, err := models.ParseEventUpdate(body)
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	event, err := h.eventService.UpdateEvent(ctx, eventID, update)
	if err != nil {
		h.fail(w, err, eventID, "Failed to update event")
		return
	}

	log.Info().
		Str("event_id", event.ID).
		Int("fields", len(update)).
		Msg("Event updated")

	h.wsHub.NotifyEventChanged(services.MsgEventUpdated, event)

	respondJSON(w, event, http.StatusOK)
}

// DeleteEvent handles DELETE /api/events/{event_id}
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	eventID := chi.URLParam(r, "event_id")

	// Fetch first so the couple can be notified after deletion
	event, err := h.eventService.GetEvent(ctx, eventID)
	if err != nil {
		h.fail(w, err, eventID, "Failed to get event")
		return
	}

	if err := h.eventService.DeleteEvent(ctx, eventID); err != nil {
		h.fail(w, err, eventID, "Failed to delete event")
		return
	}

	log.Info().
		Str("event_id", eventID).
		Str("couple_id", event.CoupleID).
		Msg("Event deleted")

	h.wsHub.NotifyEventDeleted(event.CoupleID, eventID)

	respondJSON(w, SuccessResponse{Success: true}, http.StatusOK)
}

func (h *EventHandler) fail(w http.ResponseWriter, err error, eventID, msg string) {
	statusCode := statusFor(err)
	if !errors.Is(err, services.ErrEventNotFound) {
		log.Error().Err(err).Str("event_id", eventID).Msg(msg)
	}
	respondError(w, errorMessage(err, statusCode), statusCode)
}
