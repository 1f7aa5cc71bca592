package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayusman/tadasana/internal/pose"
	"github.com/ayusman/tadasana/internal/store"
)

// SessionHandler serves the practice session history.
type SessionHandler struct {
	store *store.Store
}

// NewSessionHandler creates a new SessionHandler with the given store.
func NewSessionHandler(s *store.Store) *SessionHandler {
	return &SessionHandler{store: s}
}

// Mount registers the /sessions routes on r.
func (h *SessionHandler) Mount(r chi.Router) {
	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Delete("/{id}", h.delete)
	})
}

type listSessionsResponse struct {
	Sessions []*store.Session `json:"sessions"`
}

type sessionResponse struct {
	*store.Session
	FrameScores []store.Frame `json:"frame_scores"`
}

// list handles GET /api/sessions and GET /api/sessions?target=tree.
func (h *SessionHandler) list(w http.ResponseWriter, r *http.Request) {
	var (
		sessions []*store.Session
		err      error
	)

	if name := r.URL.Query().Get("target"); name != "" {
		t, perr := pose.ParseTarget(name)
		if perr != nil {
			writeError(w, http.StatusBadRequest, perr.Error())
			return
		}
		sessions, err = h.store.Sessions().ListByTarget(t.String())
	} else {
		sessions, err = h.store.Sessions().List()
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}

	if sessions == nil {
		sessions = []*store.Session{}
	}
	writeJSON(w, http.StatusOK, listSessionsResponse{Sessions: sessions})
}

// get handles GET /api/sessions/{id}.
func (h *SessionHandler) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	session, err := h.store.Sessions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	frames, err := h.store.Frames().GetBySessionID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get session frames")
		return
	}
	if frames == nil {
		frames = []store.Frame{}
	}

	writeJSON(w, http.StatusOK, sessionResponse{Session: session, FrameScores: frames})
}

// delete handles DELETE /api/sessions/{id}.
func (h *SessionHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Sessions().Delete(chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
