package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/docstack/ragqa/internal/llm"
	"github.com/docstack/ragqa/internal/vectorstore"
)

type Generator struct {
	gateway     llm.Gateway
	provider    string
	model       string
	temperature float64
}

func NewGenerator(gw llm.Gateway, provider, model string, temperature float64) *Generator {
	return &Generator{gateway: gw, provider: provider, model: model, temperature: temperature}
}

func (g *Generator) Generate(ctx context.Context, query string, results []vectorstore.SearchResult) (string, error) {
	messages := []llm.Message{
		{
			Role: "system",
			Content: `You are a helpful assistant. Answer the user's question using only the provided context.
If the context doesn't contain enough information, say so.`,
		},
		{
			Role:    "user",
			Content: fmt.Sprintf("Context:\n%s\n\nQuestion: %s", buildContext(results), query),
		},
	}

	resp, err := g.gateway.Chat(ctx, llm.ChatRequest{
		Provider:    g.provider,
		Model:       g.model,
		Messages:    messages,
		Temperature: g.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}

	return resp.Content, nil
}

func buildContext(results []vectorstore.SearchResult) string {
	var sb strings.Builder
	for i, r := range results {
		fmt.Fprintf(&sb, "[Source %d] (score: %.3f)\n%s\n\n", i+1, r.Score, r.Content)
	}
	return sb.String()
}
