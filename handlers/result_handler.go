package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/knockout-system/middleware"
	"github.com/Dosada05/knockout-system/services"
)

type ResultHandler struct {
	resultService services.ResultService
}

func NewResultHandler(rs services.ResultService) *ResultHandler {
	return &ResultHandler{resultService: rs}
}

// UpdateScore godoc
// @Summary Record the score of a match
// @Tags results
// @Description When the request carries an umpire token it must belong to the same match.
// @Accept json
// @Produce json
// @Param body body services.ScoreInput true "Match ID and both scores"
// @Success 200 {object} map[string]interface{} "Result and bracket progress"
// @Failure 400 {object} map[string]string "Invalid score or bye match"
// @Failure 401 {object} map[string]string "Missing or invalid umpire token"
// @Failure 403 {object} map[string]string "Token issued for another match"
// @Failure 404 {object} map[string]string "Match not found"
// @Failure 409 {object} map[string]string "Next round already exists"
// @Failure 500 {object} map[string]string "Internal server error"
// @Security BearerAuth
// @Router /api/update-score [post]
func (h *ResultHandler) UpdateScore(w http.ResponseWriter, r *http.Request) {
	var input services.ScoreInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	claims, err := middleware.UmpireFromContext(r.Context())
	switch {
	case err == nil && claims.MatchID != input.MatchID:
		mapServiceErrorToHTTP(w, r, services.ErrUmpireTokenMismatch)
		return
	case err != nil && !errors.Is(err, middleware.ErrNoUmpireClaims):
		serverErrorResponse(w, r, err)
		return
	}

	outcome, err := h.resultService.UpdateScore(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, jsonResponse{
		"message": "Score updated successfully",
		"result":  outcome,
	})
}
