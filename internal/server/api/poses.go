package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayusman/tadasana/internal/detector"
	"github.com/ayusman/tadasana/internal/pose"
)

// PoseHandler lists the supported poses and scores submitted landmark frames.
type PoseHandler struct {
	scorer *pose.Scorer
}

// NewPoseHandler creates a new PoseHandler with the given scorer.
func NewPoseHandler(scorer *pose.Scorer) *PoseHandler {
	return &PoseHandler{scorer: scorer}
}

// Mount registers GET /poses and POST /score on r.
func (h *PoseHandler) Mount(r chi.Router) {
	r.Get("/poses", h.list)
	r.Post("/score", h.score)
}

type poseResponse struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

type listPosesResponse struct {
	Poses      []poseResponse  `json:"poses"`
	Thresholds pose.Thresholds `json:"thresholds"`
}

type scoreRequest struct {
	Target    *pose.Target          `json:"target"`
	Landmarks *detector.LandmarkSet `json:"landmarks"`
}

// list handles GET /api/poses.
func (h *PoseHandler) list(w http.ResponseWriter, r *http.Request) {
	targets := pose.Targets()
	response := listPosesResponse{
		Poses:      make([]poseResponse, 0, len(targets)),
		Thresholds: h.scorer.Thresholds(),
	}
	for _, t := range targets {
		response.Poses = append(response.Poses, poseResponse{
			Name:        t.String(),
			DisplayName: t.DisplayName(),
		})
	}
	writeJSON(w, http.StatusOK, response)
}

// score handles POST /api/score.
func (h *PoseHandler) score(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	if req.Target == nil {
		writeError(w, http.StatusBadRequest, "target is required")
		return
	}

	if req.Landmarks == nil {
		writeError(w, http.StatusBadRequest, "landmarks are required")
		return
	}

	result, err := h.scorer.Score(req.Landmarks, *req.Target)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}
