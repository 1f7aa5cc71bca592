package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayusman/tadasana/internal/app"
	"github.com/ayusman/tadasana/internal/pose"
)

// TargetHandler reads and changes the pose being practised.
type TargetHandler struct {
	app *app.App
}

// NewTargetHandler creates a new TargetHandler for a.
func NewTargetHandler(a *app.App) *TargetHandler {
	return &TargetHandler{app: a}
}

// Mount registers the /target routes on r.
func (h *TargetHandler) Mount(r chi.Router) {
	r.Route("/target", func(r chi.Router) {
		r.Get("/", h.get)
		r.Put("/", h.set)
		r.Post("/next", h.next)
		r.Post("/previous", h.previous)
	})
}

type targetResponse struct {
	Target      pose.Target `json:"target"`
	DisplayName string      `json:"display_name"`
}

type setTargetRequest struct {
	Target pose.Target `json:"target"`
}

func toTargetResponse(t pose.Target) targetResponse {
	return targetResponse{Target: t, DisplayName: t.DisplayName()}
}

// get handles GET /api/target.
func (h *TargetHandler) get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toTargetResponse(h.app.Target()))
}

// set handles PUT /api/target.
func (h *TargetHandler) set(w http.ResponseWriter, r *http.Request) {
	var req setTargetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	if err := h.app.SetTarget(req.Target); err != nil {
		if errors.Is(err, pose.ErrUnknownTarget) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to save target")
		return
	}

	writeJSON(w, http.StatusOK, toTargetResponse(req.Target))
}

// next handles POST /api/target/next.
func (h *TargetHandler) next(w http.ResponseWriter, r *http.Request) {
	t, err := h.app.NextTarget()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save target")
		return
	}
	writeJSON(w, http.StatusOK, toTargetResponse(t))
}

// previous handles POST /api/target/previous.
func (h *TargetHandler) previous(w http.ResponseWriter, r *http.Request) {
	t, err := h.app.PreviousTarget()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save target")
		return
	}
	writeJSON(w, http.StatusOK, toTargetResponse(t))
}
