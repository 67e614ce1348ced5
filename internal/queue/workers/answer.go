package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/docstack/ragqa/internal/queue"
	"github.com/docstack/ragqa/internal/rag"
)

// DocumentNames resolves document ids to collection names, id-ascending.
type DocumentNames interface {
	NamesByIDs(ctx context.Context, ids []int64) ([]string, error)
}

type AnswerWorker struct {
	docs   DocumentNames
	engine *rag.Engine
}

func NewAnswerWorker(docs DocumentNames, engine *rag.Engine) *AnswerWorker {
	return &AnswerWorker{docs: docs, engine: engine}
}

func (w *AnswerWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.AnswerGeneratePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	slog.Info("answering question", "documents", len(payload.DocumentIDs))

	names, err := w.docs.NamesByIDs(ctx, payload.DocumentIDs)
	if err != nil {
		return fmt.Errorf("resolve collection names: %w", err)
	}

	answer, err := w.engine.Query(ctx, names, payload.Question)
	if err != nil {
		slog.Error("answer generation failed", "error", err)
		return fmt.Errorf("generate answer: %w", err)
	}

	// The result is what Poll hands back to the submission path.
	if _, err := t.ResultWriter().Write([]byte(answer)); err != nil {
		return fmt.Errorf("write result: %w", err)
	}

	slog.Info("question answered", "task_id", t.ResultWriter().TaskID())
	return nil
}
