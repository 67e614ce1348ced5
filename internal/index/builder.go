package index

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/docstack/ragqa/internal/models"
	"github.com/docstack/ragqa/internal/vectorstore"
	"github.com/docstack/ragqa/pkg/chunker"
	"github.com/docstack/ragqa/pkg/pdfload"
	"github.com/docstack/ragqa/pkg/tokenizer"
)

// Registry is the slice of the document registry the builder needs.
type Registry interface {
	GetByID(ctx context.Context, id int64) (*models.Document, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	MarkIndexed(ctx context.Context, id int64) error
}

// Loader converts a source file into embeddable text chunks.
type Loader interface {
	LoadAndSplit(path string, opts chunker.ChunkOptions) ([]pdfload.Chunk, error)
}

// Embedder turns text chunks into vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Builder indexes one document: load, split, embed, upsert.
type Builder struct {
	docs     Registry
	loader   Loader
	embedder Embedder
	store    vectorstore.Store
	opts     chunker.ChunkOptions
}

func NewBuilder(docs Registry, loader Loader, embedder Embedder, store vectorstore.Store, opts chunker.ChunkOptions) *Builder {
	if opts.ChunkSize == 0 {
		opts = chunker.DefaultOptions()
	}
	return &Builder{docs: docs, loader: loader, embedder: embedder, store: store, opts: opts}
}

// Build indexes the document into the vector store and marks it indexed.
// On failure the document's status records the failure but the indexed flag
// is left untouched; retry policy belongs to the job executor.
func (b *Builder) Build(ctx context.Context, documentID int64) error {
	doc, err := b.docs.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("load document %d: %w", documentID, err)
	}

	if err := b.docs.UpdateStatus(ctx, documentID, models.DocStatusIndexing); err != nil {
		return fmt.Errorf("mark document %d indexing: %w", documentID, err)
	}

	chunks, err := b.loader.LoadAndSplit(doc.FilePath, b.opts)
	if err != nil {
		b.fail(ctx, documentID)
		return fmt.Errorf("load %s: %w", doc.FilePath, err)
	}
	if len(chunks) == 0 {
		b.fail(ctx, documentID)
		return fmt.Errorf("no text content in %s", doc.FilePath)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vectors, err := b.embedder.Embed(ctx, texts)
	if err != nil {
		b.fail(ctx, documentID)
		return fmt.Errorf("embed chunks for document %d: %w", documentID, err)
	}

	records := make([]vectorstore.Chunk, len(chunks))
	for i, c := range chunks {
		records[i] = vectorstore.Chunk{
			ChunkIndex: i,
			Page:       c.Page,
			Content:    c.Content,
			Embedding:  vectors[i],
			TokenCount: tokenizer.CountTokens(c.Content),
		}
	}

	// Collections are keyed by document name: two documents sharing a name
	// share a collection. Query-time lookup relies on this.
	if err := b.store.Upsert(ctx, doc.Name, records); err != nil {
		b.fail(ctx, documentID)
		return fmt.Errorf("store embeddings for document %d: %w", documentID, err)
	}

	if err := b.docs.MarkIndexed(ctx, documentID); err != nil {
		return fmt.Errorf("mark document %d indexed: %w", documentID, err)
	}

	return nil
}

func (b *Builder) fail(ctx context.Context, documentID int64) {
	if err := b.docs.UpdateStatus(ctx, documentID, models.DocStatusFailed); err != nil {
		slog.Error("failed to record index failure", "document_id", documentID, "error", err)
	}
}
