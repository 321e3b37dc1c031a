package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/knockout-system/brackets"
	"github.com/Dosada05/knockout-system/models"
	"github.com/Dosada05/knockout-system/services"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEventService struct{}

func (fakeEventService) CreateEvent(context.Context, services.CreateEventInput) (*models.Event, error) {
	return nil, services.ErrEventNameConflict
}

func (fakeEventService) ListEvents(context.Context) ([]*models.Event, error) {
	return []*models.Event{}, nil
}

func (fakeEventService) GetEvent(_ context.Context, id string) (*models.Event, error) {
	if id != "e1" {
		return nil, services.ErrEventNotFound
	}
	return &models.Event{ID: "e1", Name: "Open", Type: models.EventTypeKnockout}, nil
}

func TestWebSocketHandler_ServeWs(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := brackets.NewHub(logger)
	go hub.Run()
	defer hub.Stop()

	h := NewWebSocketHandler(hub, fakeEventService{}, logger)
	r := chi.NewRouter()
	r.Get("/ws/events/{eventID}", h.ServeWs)
	srv := httptest.NewServer(r)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/events/"

	_, resp, err := websocket.DefaultDialer.Dial(wsURL+"missing", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"e1", nil)
	require.NoError(t, err)
	defer conn.Close()

	room := brackets.EventRoom("e1")
	require.Eventually(t, func() bool { return hub.RoomSize(room) == 1 }, time.Second, 5*time.Millisecond)

	hub.BroadcastToRoom(room, brackets.WebSocketMessage{Type: brackets.MessageChampionDetermined, Payload: map[string]string{"champion_id": "p1"}, RoomID: room})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg brackets.WebSocketMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, brackets.MessageChampionDetermined, msg.Type)
	assert.Equal(t, map[string]interface{}{"champion_id": "p1"}, msg.Payload)
}
