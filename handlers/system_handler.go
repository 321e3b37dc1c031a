package handlers

import (
	"net/http"

	"github.com/Dosada05/knockout-system/services"
)

const serviceName = "Knockout Tournament API"

type SystemHandler struct {
	databaseConfigured bool
	version            string
}

func NewSystemHandler(databaseConfigured bool, version string) *SystemHandler {
	return &SystemHandler{databaseConfigured: databaseConfigured, version: version}
}

// Root godoc
// @Summary Service banner
// @Tags system
// @Produce json
// @Success 200 {object} map[string]interface{} "Name, version and database state"
// @Router / [get]
func (h *SystemHandler) Root(w http.ResponseWriter, r *http.Request) {
	body := jsonResponse{
		"message":             serviceName,
		"version":             h.version,
		"database_configured": h.databaseConfigured,
	}
	if !h.databaseConfigured {
		body["notice"] = "DATABASE_URL is not set, data endpoints answer 503"
	}
	respond(w, r, http.StatusOK, body)
}

// Health godoc
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} map[string]interface{} "Healthy"
// @Router /health [get]
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	respond(w, r, http.StatusOK, jsonResponse{
		"status":              "healthy",
		"database_configured": h.databaseConfigured,
	})
}

// NotConfigured answers every data route while the server runs without a database.
func NotConfigured(w http.ResponseWriter, r *http.Request) {
	mapServiceErrorToHTTP(w, r, services.ErrStoreNotConfigured)
}
