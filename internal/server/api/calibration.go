// Package api provides HTTP API handlers for the RepCoach server.
package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ayusman/repcoach/internal/exercise"
	"github.com/ayusman/repcoach/internal/session"
	"github.com/ayusman/repcoach/internal/store"
)

// CalibrationHandler handles HTTP requests for calibration thresholds.
type CalibrationHandler struct {
	store      *store.Store
	controller *session.Controller
}

// NewCalibrationHandler creates a new CalibrationHandler. The controller
// may be nil; then edits only persist and do not apply live.
func NewCalibrationHandler(s *store.Store, c *session.Controller) *CalibrationHandler {
	return &CalibrationHandler{store: s, controller: c}
}

type thresholdsResponse struct {
	Down float64 `json:"down"`
	Up   float64 `json:"up"`
}

type profileResponse struct {
	Profile map[string]thresholdsResponse `json:"profile"`
}

type updateThresholdsRequest struct {
	Down float64 `json:"down"`
	Up   float64 `json:"up"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// ServeHTTP routes calibration requests.
// GET /api/calibration returns the full profile.
// PUT /api/calibration/{mode} replaces one mode's thresholds.
func (h *CalibrationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/calibration")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.get(w)
		return
	}

	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.update(w, r, strings.ToUpper(path))
}

func (h *CalibrationHandler) get(w http.ResponseWriter) {
	profile, err := h.store.Calibration().Load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load calibration profile")
		return
	}

	response := profileResponse{Profile: make(map[string]thresholdsResponse, len(profile))}
	for mode, th := range profile {
		response.Profile[mode.String()] = thresholdsResponse{Down: th.Down, Up: th.Up}
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *CalibrationHandler) update(w http.ResponseWriter, r *http.Request, modeName string) {
	mode, err := exercise.ParseMode(modeName)
	if err != nil {
		writeError(w, http.StatusNotFound, "Unknown exercise mode")
		return
	}

	var req updateThresholdsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Down == req.Up {
		writeError(w, http.StatusBadRequest, "Thresholds must not be equal")
		return
	}

	th := exercise.Thresholds{Down: req.Down, Up: req.Up}
	if err := h.store.Calibration().Save(mode, th); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save thresholds")
		return
	}

	if h.controller != nil {
		profile := h.controller.Profile()
		profile[mode] = th
		h.controller.SetProfile(profile)
	}

	writeJSON(w, http.StatusOK, thresholdsResponse{Down: th.Down, Up: th.Up})
}
