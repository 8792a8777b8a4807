package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/readhacker/readhacker/internal/models"
)

func (h *Handler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		sessions := h.sessionStore.GetAll()
		sessionList := make([]*models.ExtractionSession, 0, len(sessions))
		for _, session := range sessions {
			sessionList = append(sessionList, session)
		}
		h.writeJSON(w, sessionList)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) HandleSessionDetail(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/sessions/")

	if sessionID, ok := strings.CutSuffix(path, "/download"); ok {
		h.handleDownload(w, r, sessionID)
		return
	}

	session, ok := h.getSessionOrError(w, path)
	if !ok {
		return
	}

	switch r.Method {
	case "GET":
		h.writeJSON(w, session)
	case "DELETE":
		h.sessionStore.Delete(path)
		w.WriteHeader(http.StatusNoContent)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleDownload serves the normalized record as a standalone JSON file.
func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, ok := h.getSessionOrError(w, sessionID)
	if !ok {
		return
	}
	if session.Record == nil {
		h.writeError(w, "Session has no record to download", http.StatusNotFound)
		return
	}

	data, err := json.MarshalIndent(session.Record, "", "  ")
	if err != nil {
		h.writeError(w, "Failed to encode record: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", sessionID+".json"))
	if _, err := w.Write(data); err != nil {
		h.writeError(w, "Failed to write record", http.StatusInternalServerError)
	}
}
