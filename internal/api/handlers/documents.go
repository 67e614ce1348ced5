package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/docstack/ragqa/internal/document"
)

// DocumentService is the slice of the document registry the handlers use.
type DocumentService interface {
	Ingest(ctx context.Context, filePath, name string) (int64, error)
	List(ctx context.Context) ([]document.Selection, error)
	UpdateSelection(ctx context.Context, updates []document.Selection) error
}

type DocumentHandler struct {
	svc DocumentService
}

func NewDocumentHandler(svc DocumentService) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

type ingestRequest struct {
	FilePath *string `json:"file_path"`
	Name     *string `json:"name"`
}

func (h *DocumentHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	var filePath, name string
	if req.FilePath != nil {
		filePath = *req.FilePath
	}
	if req.Name != nil {
		name = *req.Name
	}

	if _, err := h.svc.Ingest(r.Context(), filePath, name); err != nil {
		var verr *document.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, map[string]string{verr.Field: verr.Message})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message":   "Document ingested successfully",
		"file_path": filePath,
	})
}

func (h *DocumentHandler) Selection(w http.ResponseWriter, r *http.Request) {
	docs, err := h.svc.List(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if docs == nil {
		docs = []document.Selection{}
	}
	writeJSON(w, http.StatusOK, docs)
}

type selectionEntry struct {
	ID       *int64 `json:"id"`
	Selected *bool  `json:"selected"`
}

func (h *DocumentHandler) UpdateSelection(w http.ResponseWriter, r *http.Request) {
	var entries []selectionEntry
	if err := json.NewDecoder(r.Body).Decode(&entries); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	updates := make([]document.Selection, 0, len(entries))
	for i, e := range entries {
		if e.ID == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"id": fmt.Sprintf("entry %d: this field is required", i)})
			return
		}
		if e.Selected == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"selected": fmt.Sprintf("entry %d: this field is required", i)})
			return
		}
		updates = append(updates, document.Selection{ID: *e.ID, Selected: *e.Selected})
	}

	if err := h.svc.UpdateSelection(r.Context(), updates); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, updates)
}
