package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/knockout-system/brackets"
	"github.com/Dosada05/knockout-system/services"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS for the REST API allows every origin, live updates follow the same policy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WebSocketHandler struct {
	hub          *brackets.Hub
	eventService services.EventService
	logger       *slog.Logger
}

func NewWebSocketHandler(hub *brackets.Hub, es services.EventService, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:          hub,
		eventService: es,
		logger:       logger,
	}
}

// ServeWs godoc
// @Summary Live updates of an event over websocket
// @Tags websocket
// @Description Subscribes the client to the room of one event.
// @Param eventID path string true "Event ID"
// @Success 101 "Switching protocols"
// @Failure 404 {object} map[string]string "Event not found"
// @Router /ws/events/{eventID} [get]
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if _, err := h.eventService.GetEvent(r.Context(), eventID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error
		h.logger.Warn("websocket upgrade failed", slog.String("event_id", eventID), slog.Any("error", err))
		return
	}

	client := &brackets.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: brackets.EventRoom(eventID),
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()

	h.logger.Info("websocket client joined", slog.String("room", client.Room))
}
