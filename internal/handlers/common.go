package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/readhacker/readhacker/internal/extraction"
	"github.com/readhacker/readhacker/internal/models"
	"github.com/readhacker/readhacker/internal/storage"
)

type Handler struct {
	sessionStore      *storage.SessionStore
	extractionService *extraction.Service
}

func New() *Handler {
	return &Handler{
		sessionStore:      storage.New(),
		extractionService: extraction.NewService(),
	}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

// Session helpers
func (h *Handler) getSessionOrError(w http.ResponseWriter, sessionID string) (*models.ExtractionSession, bool) {
	session, exists := h.sessionStore.Get(sessionID)
	if !exists {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return nil, false
	}
	return session, true
}
