package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/docstack/ragqa/internal/question"
)

type QuestionService interface {
	Ask(ctx context.Context, text string) (question.Answer, error)
}

type QuestionHandler struct {
	svc QuestionService
}

func NewQuestionHandler(svc QuestionService) *QuestionHandler {
	return &QuestionHandler{svc: svc}
}

type askRequest struct {
	Question *string `json:"question"`
}

func (h *QuestionHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Question == nil || strings.TrimSpace(*req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"question": "this field is required"})
		return
	}

	ans, err := h.svc.Ask(r.Context(), *req.Question)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, ans)
}
