package handlers

import (
	"net/http"

	"github.com/Dosada05/knockout-system/services"
)

type ClubHandler struct {
	clubService services.ClubService
}

func NewClubHandler(cs services.ClubService) *ClubHandler {
	return &ClubHandler{clubService: cs}
}

// CreateClub godoc
// @Summary Create a club
// @Tags clubs
// @Accept json
// @Produce json
// @Param body body services.CreateClubInput true "Club name"
// @Success 201 {object} map[string]interface{} "Created club"
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 409 {object} map[string]string "Club name already exists"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/clubs [post]
func (h *ClubHandler) CreateClub(w http.ResponseWriter, r *http.Request) {
	var input services.CreateClubInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	club, err := h.clubService.CreateClub(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusCreated, jsonResponse{"club": club})
}

// ListClubs godoc
// @Summary List clubs
// @Tags clubs
// @Produce json
// @Success 200 {object} map[string]interface{} "Clubs"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/clubs [get]
func (h *ClubHandler) ListClubs(w http.ResponseWriter, r *http.Request) {
	clubs, err := h.clubService.ListClubs(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, jsonResponse{"clubs": clubs})
}
