package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/readhacker/readhacker/internal/extraction"
	"github.com/readhacker/readhacker/internal/models"
	"github.com/readhacker/readhacker/internal/schema"
)

var validEfforts = map[string]bool{
	"":       true,
	"none":   true,
	"low":    true,
	"medium": true,
	"high":   true,
}

// HandleExtract runs the extraction pipeline for a submitted book query and
// stores the outcome as a new session.
func (h *Handler) HandleExtract(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request struct {
		BookTitle       string `json:"book_title"`
		AuthorName      string `json:"author_name"`
		SchemaVariant   string `json:"schema_variant"`
		Provider        string `json:"provider"`
		Model           string `json:"model"`
		ReasoningEffort string `json:"reasoning_effort"`
		WebSearch       bool   `json:"web_search"`
		Resolve         bool   `json:"resolve"`
		Research        bool   `json:"research"`
		CrossReference  bool   `json:"cross_reference"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if request.BookTitle == "" {
		h.writeError(w, "book_title is required", http.StatusBadRequest)
		return
	}
	if !validEfforts[request.ReasoningEffort] {
		h.writeError(w, "Invalid reasoning_effort. Must be 'none', 'low', 'medium', or 'high'", http.StatusBadRequest)
		return
	}
	if _, err := schema.Lookup(request.SchemaVariant); err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	req := extraction.Request{
		BookTitle:       request.BookTitle,
		AuthorName:      request.AuthorName,
		SchemaVariant:   request.SchemaVariant,
		Provider:        request.Provider,
		Model:           request.Model,
		ReasoningEffort: request.ReasoningEffort,
		WebSearch:       request.WebSearch,
	}

	session := h.runExtraction(r.Context(), req, request.Resolve, request.Research, request.CrossReference)
	h.sessionStore.Set(session.ID, session)

	h.writeJSON(w, session)
}

func (h *Handler) runExtraction(ctx context.Context, req extraction.Request, resolve, research, crossRef bool) *models.ExtractionSession {
	session := &models.ExtractionSession{
		ID:            uuid.NewString(),
		BookTitle:     req.BookTitle,
		AuthorName:    req.AuthorName,
		SchemaVariant: schemaVariantOrDefault(req.SchemaVariant),
		CreatedAt:     time.Now(),
	}

	start := time.Now()

	var outcome *extraction.Outcome
	var err error
	if resolve {
		var entity *extraction.ResolvedEntity
		entity, outcome, err = h.extractionService.ResolveAndExtract(ctx, req)
		if entity != nil {
			session.BookTitle = entity.CanonicalTitle
			session.AuthorName = entity.CanonicalAuthor
		}
	} else {
		outcome, err = h.extractionService.FetchMetadata(ctx, req)
	}

	if err != nil {
		slog.Error("Extraction failed", "session_id", session.ID, "error", err)
		session.Status = "fetch_error"
		session.ValidationMessage = err.Error()
		session.ElapsedSeconds = time.Since(start).Seconds()
		return session
	}

	session.Provider = outcome.Provider
	session.Model = outcome.Model
	session.Status = string(outcome.Result.Status)
	session.Record = outcome.Result.Record
	session.ValidationMessage = outcome.Result.Message
	session.RawResponse = outcome.RawResponse

	// Downstream stages are the caller's choice; they accept invalid
	// records on purpose so best-effort data can still be researched.
	if session.Record != nil {
		if research {
			notes, rerr := h.extractionService.ResearchBook(ctx, req, session.Record)
			if rerr != nil {
				slog.Error("Research stage failed", "session_id", session.ID, "error", rerr)
			} else {
				session.ResearchNotes = notes
			}
		}
		if crossRef {
			report, cerr := h.extractionService.CrossReference(ctx, req, session.Record)
			if cerr != nil {
				slog.Error("Cross-reference stage failed", "session_id", session.ID, "error", cerr)
			} else {
				session.Confidence = report
			}
		}
	}

	session.ElapsedSeconds = time.Since(start).Seconds()
	return session
}

func schemaVariantOrDefault(name string) string {
	if name == "" {
		return schema.DefaultVariant
	}
	return name
}
