package handlers

import (
	"net/http"

	"github.com/Dosada05/knockout-system/services"
)

type ScheduleHandler struct {
	scheduleService services.ScheduleService
}

func NewScheduleHandler(ss services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: ss}
}

// ScheduleMatches godoc
// @Summary Assign courts and times to pending matches
// @Tags schedule
// @Accept json
// @Produce json
// @Param body body services.ScheduleInput true "event_id, num_courts, match_duration_minutes, start_time (RFC 3339)"
// @Success 200 {object} map[string]interface{} "Scheduled matches"
// @Failure 400 {object} map[string]string "Invalid schedule parameters"
// @Failure 404 {object} map[string]string "Event not found or no pending matches"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/schedule-matches [post]
func (h *ScheduleHandler) ScheduleMatches(w http.ResponseWriter, r *http.Request) {
	var input services.ScheduleInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.scheduleService.ScheduleMatches(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, jsonResponse{
		"message":       "Matches scheduled successfully",
		"event_id":      result.EventID,
		"total_matches": result.TotalMatches,
		"scheduled":     result.Scheduled,
	})
}

// GetCourtSchedule godoc
// @Summary Get the timetable of one court
// @Tags schedule
// @Produce json
// @Param courtID path string true "Court label, e.g. Court-1"
// @Param event_id query string false "Only matches of this event"
// @Success 200 {object} services.CourtSchedule "Court timetable"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/schedule/{courtID} [get]
func (h *ScheduleHandler) GetCourtSchedule(w http.ResponseWriter, r *http.Request) {
	courtID, err := getIDFromURL(r, "courtID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	schedule, err := h.scheduleService.GetCourtSchedule(r.Context(), courtID, r.URL.Query().Get("event_id"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, schedule)
}
