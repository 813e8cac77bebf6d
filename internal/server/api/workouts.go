package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ayusman/repcoach/internal/store"
)

// WorkoutsHandler handles HTTP requests for workout history.
type WorkoutsHandler struct {
	store *store.Store
}

// NewWorkoutsHandler creates a new WorkoutsHandler with the given store.
func NewWorkoutsHandler(s *store.Store) *WorkoutsHandler {
	return &WorkoutsHandler{store: s}
}

type workoutResponse struct {
	ID        string `json:"id"`
	Mode      string `json:"mode"`
	StartedAt string `json:"started_at"`
	EndedAt   string `json:"ended_at,omitempty"`
	RepCount  int    `json:"rep_count"`
}

type listWorkoutsResponse struct {
	Workouts []workoutResponse `json:"workouts"`
}

type repResponse struct {
	RepNumber int     `json:"rep_number"`
	DepthPct  float64 `json:"depth_pct"`
	TempoMs   int64   `json:"tempo_ms"`
	Score     float64 `json:"score"`
	Verdict   string  `json:"verdict"`
}

type listRepsResponse struct {
	Reps []repResponse `json:"reps"`
}

func toWorkoutResponse(ws *store.WorkoutSession) workoutResponse {
	resp := workoutResponse{
		ID:        ws.ID,
		Mode:      ws.Mode,
		StartedAt: ws.StartedAt.Format(time.RFC3339),
		RepCount:  ws.RepCount,
	}
	if ws.EndedAt != nil {
		resp.EndedAt = ws.EndedAt.Format(time.RFC3339)
	}
	return resp
}

// ServeHTTP routes workout requests.
// GET /api/workouts lists recent sessions.
// GET /api/workouts/{id} returns one session.
// GET /api/workouts/{id}/reps returns its scored reps.
func (h *WorkoutsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/workouts")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		h.list(w)
		return
	}

	if id, ok := strings.CutSuffix(path, "/reps"); ok {
		h.listReps(w, id)
		return
	}

	h.get(w, path)
}

func (h *WorkoutsHandler) list(w http.ResponseWriter) {
	sessions, err := h.store.Workouts().ListSessions(20)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list workouts")
		return
	}

	response := listWorkoutsResponse{Workouts: make([]workoutResponse, 0, len(sessions))}
	for _, ws := range sessions {
		response.Workouts = append(response.Workouts, toWorkoutResponse(ws))
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *WorkoutsHandler) get(w http.ResponseWriter, id string) {
	ws, err := h.store.Workouts().GetSession(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Workout not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get workout")
		return
	}

	writeJSON(w, http.StatusOK, toWorkoutResponse(ws))
}

func (h *WorkoutsHandler) listReps(w http.ResponseWriter, id string) {
	workoutReps, err := h.store.Workouts().ListReps(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list reps")
		return
	}

	response := listRepsResponse{Reps: make([]repResponse, 0, len(workoutReps))}
	for _, wr := range workoutReps {
		response.Reps = append(response.Reps, repResponse{
			RepNumber: wr.RepNumber,
			DepthPct:  wr.DepthPct,
			TempoMs:   wr.TempoMs,
			Score:     wr.Score,
			Verdict:   wr.Verdict,
		})
	}

	writeJSON(w, http.StatusOK, response)
}
