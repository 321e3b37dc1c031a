package handlers

import (
	"net/http"

	"github.com/Dosada05/knockout-system/services"
)

type EventHandler struct {
	eventService services.EventService
}

func NewEventHandler(es services.EventService) *EventHandler {
	return &EventHandler{eventService: es}
}

// CreateEvent godoc
// @Summary Create a knockout event
// @Tags events
// @Accept json
// @Produce json
// @Param body body services.CreateEventInput true "Event name, type and min_rest in minutes"
// @Success 201 {object} map[string]interface{} "Created event"
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 409 {object} map[string]string "Event name already exists"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/events [post]
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var input services.CreateEventInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	event, err := h.eventService.CreateEvent(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusCreated, jsonResponse{"event": event})
}

// ListEvents godoc
// @Summary List events
// @Tags events
// @Produce json
// @Success 200 {object} map[string]interface{} "Events"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/events [get]
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.eventService.ListEvents(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, jsonResponse{"events": events})
}

// GetEvent godoc
// @Summary Get an event by ID
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 200 {object} map[string]interface{} "Event"
// @Failure 404 {object} map[string]string "Event not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/events/{eventID} [get]
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	event, err := h.eventService.GetEvent(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, jsonResponse{"event": event})
}
