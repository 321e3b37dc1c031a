package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Dosada05/knockout-system/services"
)

const maxCSVUploadBytes = 10 << 20

type PlayerHandler struct {
	playerService services.PlayerService
}

func NewPlayerHandler(ps services.PlayerService) *PlayerHandler {
	return &PlayerHandler{playerService: ps}
}

// CreatePlayer godoc
// @Summary Register a player
// @Tags players
// @Accept json
// @Produce json
// @Param body body services.CreatePlayerInput true "Player data with club_id and event_ids"
// @Success 201 {object} map[string]interface{} "Created player"
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 404 {object} map[string]string "Club or event not found"
// @Failure 409 {object} map[string]string "Player already registered in the event"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/players [post]
func (h *PlayerHandler) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	var input services.CreatePlayerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.CreatePlayer(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusCreated, jsonResponse{
		"message":   "Player created successfully",
		"player_id": player.ID,
		"player":    player,
	})
}

// ListPlayers godoc
// @Summary List players
// @Tags players
// @Produce json
// @Param event_id query string false "Only players registered in this event"
// @Success 200 {object} map[string]interface{} "Players"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/players [get]
func (h *PlayerHandler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := h.playerService.ListPlayers(r.Context(), r.URL.Query().Get("event_id"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, jsonResponse{"players": players})
}

// UploadCSV godoc
// @Summary Import players from a CSV roster
// @Tags players
// @Description Expects multipart/form-data with the roster in the "file" field.
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV with columns name, age, phone, club_id, event_name"
// @Success 200 {object} services.CSVImportResult "Import summary with per-row errors"
// @Failure 400 {object} map[string]string "Not a CSV file or missing columns"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/players/upload-csv [post]
func (h *PlayerHandler) UploadCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCSVUploadBytes)
	if err := r.ParseMultipartForm(maxCSVUploadBytes); err != nil {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			badRequestResponse(w, r, fmt.Errorf("file must not be larger than %d bytes", maxCSVUploadBytes))
			return
		}
		badRequestResponse(w, r, fmt.Errorf("invalid multipart form: %w", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		badRequestResponse(w, r, errors.New("missing 'file' field in form data"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		badRequestResponse(w, r, fmt.Errorf("failed to read uploaded file: %w", err))
		return
	}

	result, err := h.playerService.ImportCSV(r.Context(), header.Filename, data)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, result)
}
