package rag

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/docstack/ragqa/internal/vectorstore"
)

// Source retrieves the most relevant chunks for an already-embedded query.
type Source interface {
	Search(ctx context.Context, query []float32, topK int) ([]vectorstore.SearchResult, error)
}

type collectionSource struct {
	store vectorstore.Store
	id    uuid.UUID
}

func (s *collectionSource) Search(ctx context.Context, query []float32, topK int) ([]vectorstore.SearchResult, error) {
	return s.store.Search(ctx, s.id, query, topK)
}

// OpenSource binds a retrieval source to a named collection. Returns
// vectorstore.ErrCollectionNotFound (wrapped) when the collection does not
// exist, e.g. the document's index build has not completed.
func OpenSource(ctx context.Context, store vectorstore.Store, name string) (Source, error) {
	id, err := store.CollectionID(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("open retriever: %w", err)
	}
	return &collectionSource{store: store, id: id}, nil
}

// MergerRetriever fans a query out to several sources and interleaves their
// results round-robin, so every collection contributes before any single one
// dominates the context.
type MergerRetriever struct {
	sources []Source
	topK    int
}

func NewMergerRetriever(sources []Source, topK int) *MergerRetriever {
	if topK <= 0 {
		topK = 4
	}
	return &MergerRetriever{sources: sources, topK: topK}
}

func (m *MergerRetriever) Retrieve(ctx context.Context, query []float32) ([]vectorstore.SearchResult, error) {
	perSource := make([][]vectorstore.SearchResult, 0, len(m.sources))
	for _, src := range m.sources {
		results, err := src.Search(ctx, query, m.topK)
		if err != nil {
			return nil, fmt.Errorf("search source: %w", err)
		}
		perSource = append(perSource, results)
	}

	var merged []vectorstore.SearchResult
	for i := 0; ; i++ {
		found := false
		for _, rs := range perSource {
			if i < len(rs) {
				merged = append(merged, rs[i])
				found = true
			}
		}
		if !found {
			break
		}
	}
	return merged, nil
}
