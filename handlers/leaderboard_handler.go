package handlers

import (
	"net/http"

	"github.com/Dosada05/knockout-system/services"
)

type LeaderboardHandler struct {
	leaderboardService services.LeaderboardService
}

func NewLeaderboardHandler(ls services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: ls}
}

// GetLeaderboard godoc
// @Summary Get the leaderboard
// @Tags leaderboard
// @Description Serves the latest event unless event_id is given.
// @Produce json
// @Param event_id query string false "Event ID, the latest event by default"
// @Success 200 {object} models.Leaderboard "Leaderboard"
// @Failure 404 {object} map[string]string "No events"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/leaderboard [get]
func (h *LeaderboardHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	board, err := h.leaderboardService.Leaderboard(r.Context(), r.URL.Query().Get("event_id"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, board)
}
