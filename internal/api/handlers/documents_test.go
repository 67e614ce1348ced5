package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docstack/ragqa/internal/document"
)

type fakeDocumentService struct {
	docs      []document.Selection
	ingestErr error
	applied   []document.Selection
}

func (s *fakeDocumentService) Ingest(_ context.Context, filePath, name string) (int64, error) {
	if s.ingestErr != nil {
		return 0, s.ingestErr
	}
	return 1, nil
}

func (s *fakeDocumentService) List(context.Context) ([]document.Selection, error) {
	return s.docs, nil
}

func (s *fakeDocumentService) UpdateSelection(_ context.Context, updates []document.Selection) error {
	s.applied = updates
	return nil
}

func TestIngestCreated(t *testing.T) {
	h := NewDocumentHandler(&fakeDocumentService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents",
		strings.NewReader(`{"file_path": "/data/report.pdf", "name": "report.pdf"}`))
	w := httptest.NewRecorder()

	h.Ingest(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Document ingested successfully", body["message"])
	assert.Equal(t, "/data/report.pdf", body["file_path"])
}

func TestIngestValidationError(t *testing.T) {
	h := NewDocumentHandler(&fakeDocumentService{
		ingestErr: &document.ValidationError{Field: "file_path", Message: "this field is required"},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents",
		strings.NewReader(`{"name": "report.pdf"}`))
	w := httptest.NewRecorder()

	h.Ingest(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "this field is required", body["file_path"])
}

func TestIngestMalformedBody(t *testing.T) {
	h := NewDocumentHandler(&fakeDocumentService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", strings.NewReader(`{`))
	w := httptest.NewRecorder()

	h.Ingest(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSelectionList(t *testing.T) {
	h := NewDocumentHandler(&fakeDocumentService{
		docs: []document.Selection{
			{ID: 1, Selected: true},
			{ID: 2, Selected: false},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/selection", nil)
	w := httptest.NewRecorder()

	h.Selection(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body []document.Selection
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body, 2)
	assert.Equal(t, int64(1), body[0].ID)
	assert.True(t, body[0].Selected)
}

func TestSelectionListEmpty(t *testing.T) {
	h := NewDocumentHandler(&fakeDocumentService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/selection", nil)
	w := httptest.NewRecorder()

	h.Selection(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]\n", w.Body.String())
}

func TestUpdateSelection(t *testing.T) {
	svc := &fakeDocumentService{}
	h := NewDocumentHandler(svc)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/documents/selection",
		strings.NewReader(`[{"id": 1, "selected": true}, {"id": 2, "selected": false}]`))
	w := httptest.NewRecorder()

	h.UpdateSelection(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, svc.applied, 2)
	assert.Equal(t, document.Selection{ID: 1, Selected: true}, svc.applied[0])
	assert.Equal(t, document.Selection{ID: 2, Selected: false}, svc.applied[1])

	var body []document.Selection
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, svc.applied, body)
}

func TestUpdateSelectionMissingField(t *testing.T) {
	svc := &fakeDocumentService{}
	h := NewDocumentHandler(svc)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/documents/selection",
		strings.NewReader(`[{"id": 1}]`))
	w := httptest.NewRecorder()

	h.UpdateSelection(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, svc.applied)
}
