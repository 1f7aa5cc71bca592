package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayusman/tadasana/internal/app"
)

// PracticeHandler controls detection and practice sessions.
type PracticeHandler struct {
	app *app.App
}

// NewPracticeHandler creates a new PracticeHandler for a.
func NewPracticeHandler(a *app.App) *PracticeHandler {
	return &PracticeHandler{app: a}
}

// Mount registers the /practice and /detection routes on r.
func (h *PracticeHandler) Mount(r chi.Router) {
	r.Route("/practice", func(r chi.Router) {
		r.Get("/", h.status)
		r.Post("/start", h.start)
		r.Post("/stop", h.stop)
	})
	r.Get("/detection", h.detection)
	r.Put("/detection", h.setDetection)
}

type practiceStatusResponse struct {
	Active  bool              `json:"active"`
	Session *app.SessionStats `json:"session,omitempty"`
	Latest  *app.FrameResult  `json:"latest,omitempty"`
}

type detectionRequest struct {
	Enabled bool `json:"enabled"`
}

type detectionResponse struct {
	Enabled bool `json:"enabled"`
	Running bool `json:"running"`
}

// status handles GET /api/practice.
func (h *PracticeHandler) status(w http.ResponseWriter, r *http.Request) {
	var resp practiceStatusResponse
	if stats, ok := h.app.ActiveSession(); ok {
		resp.Active = true
		resp.Session = &stats
	}
	if latest, ok := h.app.Latest(); ok {
		resp.Latest = &latest
	}
	writeJSON(w, http.StatusOK, resp)
}

// start handles POST /api/practice/start.
func (h *PracticeHandler) start(w http.ResponseWriter, r *http.Request) {
	stats, err := h.app.StartSession()
	if err != nil {
		if errors.Is(err, app.ErrSessionActive) {
			writeError(w, http.StatusConflict, "Practice session already active")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to start session")
		return
	}
	writeJSON(w, http.StatusCreated, stats)
}

// stop handles POST /api/practice/stop.
func (h *PracticeHandler) stop(w http.ResponseWriter, r *http.Request) {
	stats, err := h.app.StopSession()
	if err != nil {
		if errors.Is(err, app.ErrNoActiveSession) {
			writeError(w, http.StatusConflict, "No active practice session")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to save session")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// detection handles GET /api/detection.
func (h *PracticeHandler) detection(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, detectionResponse{
		Enabled: h.app.IsEnabled(),
		Running: h.app.Running(),
	})
}

// setDetection handles PUT /api/detection.
func (h *PracticeHandler) setDetection(w http.ResponseWriter, r *http.Request) {
	var req detectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	h.app.SetEnabled(req.Enabled)
	writeJSON(w, http.StatusOK, detectionResponse{
		Enabled: h.app.IsEnabled(),
		Running: h.app.Running(),
	})
}
