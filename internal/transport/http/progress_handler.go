package http

import (
	"encoding/json"
	"net/http"

	"learning-games-service/internal/app"
	"learning-games-service/internal/logger"
)

// ProgressHandler exposes read access to learner progress plus a reset endpoint.
type ProgressHandler struct {
	service *app.GameService
	log     *logger.Logger
}

func NewProgressHandler(service *app.GameService, log *logger.Logger) *ProgressHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ProgressHandler{service: service, log: log}
}

// Register mounts the handler's routes on mux.
func (h *ProgressHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/progress", h.Progress)
	mux.HandleFunc("/progress/reset", h.Reset)
	mux.HandleFunc("/mastery", h.Mastery)
}

// Progress handles GET /progress?learnerId=.
func (h *ProgressHandler) Progress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	learnerID := r.URL.Query().Get("learnerId")
	if learnerID == "" {
		http.Error(w, "missing learnerId", http.StatusBadRequest)
		return
	}
	h.writeJSON(w, http.StatusOK, h.service.Progress(r.Context(), learnerID))
}

// Mastery handles GET /mastery?learnerId=&omiId=.
func (h *ProgressHandler) Mastery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	learnerID := r.URL.Query().Get("learnerId")
	omiID := r.URL.Query().Get("omiId")
	if learnerID == "" || omiID == "" {
		http.Error(w, "missing learnerId or omiId", http.StatusBadRequest)
		return
	}
	h.writeJSON(w, http.StatusOK, h.service.Mastery(r.Context(), learnerID, omiID))
}

// Reset handles POST /progress/reset?learnerId=.
func (h *ProgressHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	learnerID := r.URL.Query().Get("learnerId")
	if learnerID == "" {
		http.Error(w, "missing learnerId", http.StatusBadRequest)
		return
	}
	h.service.ResetProgress(r.Context(), learnerID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProgressHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Warn("write response failed", "error", err)
	}
}
