package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/docstack/ragqa/internal/document"
	"github.com/docstack/ragqa/internal/index"
	"github.com/docstack/ragqa/internal/queue"
)

type IndexWorker struct {
	builder *index.Builder
}

func NewIndexWorker(builder *index.Builder) *IndexWorker {
	return &IndexWorker{builder: builder}
}

func (w *IndexWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.IndexBuildPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	slog.Info("building index", "document_id", payload.DocumentID)

	if err := w.builder.Build(ctx, payload.DocumentID); err != nil {
		slog.Error("index build failed", "document_id", payload.DocumentID, "error", err)
		if errors.Is(err, document.ErrNotFound) {
			// The row is gone; retrying cannot help.
			return fmt.Errorf("build index: %v: %w", err, asynq.SkipRetry)
		}
		return fmt.Errorf("build index for document %d: %w", payload.DocumentID, err)
	}

	slog.Info("index built", "document_id", payload.DocumentID)
	return nil
}
