package rag

import (
	"context"
	"errors"
	"fmt"

	"github.com/docstack/ragqa/internal/vectorstore"
)

// QueryEmbedder embeds a single query string.
type QueryEmbedder interface {
	EmbedSingle(ctx context.Context, text string) ([]float32, error)
}

type Options struct {
	Provider    string
	Model       string
	TopK        int
	Temperature float64
}

// Engine answers a query over a set of named collections: one retrieval
// source per collection, merged round-robin, then a single generation pass
// at a fixed temperature.
type Engine struct {
	store     vectorstore.Store
	embedder  QueryEmbedder
	generator *Generator
	topK      int
}

func NewEngine(store vectorstore.Store, embedder QueryEmbedder, generator *Generator, topK int) *Engine {
	if topK <= 0 {
		topK = 4
	}
	return &Engine{store: store, embedder: embedder, generator: generator, topK: topK}
}

func (e *Engine) Query(ctx context.Context, collections []string, query string) (string, error) {
	if len(collections) == 0 {
		return "", errors.New("no collections to query")
	}

	sources := make([]Source, 0, len(collections))
	for _, name := range collections {
		src, err := OpenSource(ctx, e.store, name)
		if err != nil {
			return "", err
		}
		sources = append(sources, src)
	}

	queryVec, err := e.embedder.EmbedSingle(ctx, query)
	if err != nil {
		return "", fmt.Errorf("embed query: %w", err)
	}

	results, err := NewMergerRetriever(sources, e.topK).Retrieve(ctx, queryVec)
	if err != nil {
		return "", fmt.Errorf("retrieve: %w", err)
	}

	answer, err := e.generator.Generate(ctx, query, results)
	if err != nil {
		return "", err
	}
	return answer, nil
}
