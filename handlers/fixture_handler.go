package handlers

import (
	"net/http"

	"github.com/Dosada05/knockout-system/services"
)

type FixtureHandler struct {
	fixtureService services.FixtureService
}

func NewFixtureHandler(fs services.FixtureService) *FixtureHandler {
	return &FixtureHandler{fixtureService: fs}
}

type generateFixturesRequest struct {
	EventID string `json:"event_id"`
}

// GenerateFixtures godoc
// @Summary Generate round-one fixtures for an event
// @Tags fixtures
// @Accept json
// @Produce json
// @Param body body generateFixturesRequest true "Event ID"
// @Success 201 {object} map[string]interface{} "Generated matches"
// @Failure 400 {object} map[string]string "Fewer than 2 players"
// @Failure 404 {object} map[string]string "Event not found"
// @Failure 409 {object} map[string]string "Fixtures already generated"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/generate-fixtures [post]
func (h *FixtureHandler) GenerateFixtures(w http.ResponseWriter, r *http.Request) {
	var input generateFixturesRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.fixtureService.GenerateFixtures(r.Context(), input.EventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusCreated, jsonResponse{
		"message":       "Fixtures generated successfully",
		"event_id":      result.EventID,
		"total_players": result.TotalPlayers,
		"total_matches": result.TotalMatches,
		"matches":       result.Matches,
	})
}

// GetFixtures godoc
// @Summary Get fixtures grouped by round
// @Tags fixtures
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 200 {object} services.Fixtures "Fixtures"
// @Failure 404 {object} map[string]string "Event not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/fixtures/{eventID} [get]
func (h *FixtureHandler) GetFixtures(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	fixtures, err := h.fixtureService.GetFixtures(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, fixtures)
}
