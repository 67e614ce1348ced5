package vectorstore

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrCollectionNotFound is returned when a named collection has never been
// indexed, e.g. a document was selected before its index build finished.
var ErrCollectionNotFound = errors.New("collection not found")

type Chunk struct {
	ID         uuid.UUID
	ChunkIndex int
	Page       int
	Content    string
	Embedding  []float32
	TokenCount int
}

type SearchResult struct {
	ChunkID uuid.UUID `json:"chunk_id"`
	Content string    `json:"content"`
	Page    int       `json:"page"`
	Score   float64   `json:"score"`
}

// Store is a named-collection vector store. Collections are written by the
// index builder only and read by the retrieval engine.
type Store interface {
	Upsert(ctx context.Context, collection string, chunks []Chunk) error
	CollectionID(ctx context.Context, name string) (uuid.UUID, error)
	Search(ctx context.Context, collectionID uuid.UUID, query []float32, topK int) ([]SearchResult, error)
}
