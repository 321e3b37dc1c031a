package handlers

import (
	"net/http"

	"github.com/Dosada05/knockout-system/services"
)

type MatchCodeHandler struct {
	codeService services.MatchCodeService
}

func NewMatchCodeHandler(cs services.MatchCodeService) *MatchCodeHandler {
	return &MatchCodeHandler{codeService: cs}
}

// Generate godoc
// @Summary Generate an umpire code for a match
// @Tags match-codes
// @Accept json
// @Produce json
// @Param body body services.GenerateCodeInput true "Match ID and assigned umpire"
// @Success 201 {object} map[string]interface{} "New code"
// @Success 200 {object} map[string]interface{} "Code already exists"
// @Failure 400 {object} map[string]string "Umpire is required"
// @Failure 404 {object} map[string]string "Match not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/match-code/generate [post]
func (h *MatchCodeHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var input services.GenerateCodeInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	code, err := h.codeService.Generate(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	status, message := http.StatusCreated, "Match code generated successfully"
	if code.AlreadyExists {
		status, message = http.StatusOK, "Match code already exists"
	}
	respond(w, r, status, jsonResponse{"message": message, "match_code": code})
}

// Verify godoc
// @Summary Verify an umpire code
// @Tags match-codes
// @Accept json
// @Produce json
// @Param body body services.VerifyCodeInput true "Match ID and code"
// @Success 200 {object} services.VerifiedCode "Umpire and token"
// @Failure 400 {object} map[string]string "Code expired"
// @Failure 404 {object} map[string]string "Invalid code"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/match-code/verify [post]
func (h *MatchCodeHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var input services.VerifyCodeInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	verified, err := h.codeService.Verify(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, verified)
}
