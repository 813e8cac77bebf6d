package api

import (
	"net/http"
	"strings"

	"github.com/ayusman/repcoach/internal/session"
)

// SessionHandler exposes the live session state and its control verbs.
type SessionHandler struct {
	controller *session.Controller
}

// NewSessionHandler creates a new SessionHandler for the given controller.
func NewSessionHandler(c *session.Controller) *SessionHandler {
	return &SessionHandler{controller: c}
}

// ServeHTTP routes session requests.
// GET  /api/session returns a snapshot.
// POST /api/session/reset zeroes the active mode's counter.
// POST /api/session/calibrate starts the calibration wizard.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/session")
	path = strings.TrimPrefix(path, "/")

	switch {
	case path == "" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, h.controller.Snapshot())

	case path == "reset" && r.Method == http.MethodPost:
		h.controller.ResetReps()
		writeJSON(w, http.StatusOK, h.controller.Snapshot())

	case path == "calibrate" && r.Method == http.MethodPost:
		h.controller.StartCalibration()
		writeJSON(w, http.StatusOK, h.controller.Snapshot())

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
