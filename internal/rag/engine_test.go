package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docstack/ragqa/internal/llm"
	"github.com/docstack/ragqa/internal/vectorstore"
)

type fakeVectorStore struct {
	collections map[string]uuid.UUID
	results     map[uuid.UUID][]vectorstore.SearchResult
}

func (s *fakeVectorStore) Upsert(context.Context, string, []vectorstore.Chunk) error {
	return errors.New("not implemented")
}

func (s *fakeVectorStore) CollectionID(_ context.Context, name string) (uuid.UUID, error) {
	id, ok := s.collections[name]
	if !ok {
		return uuid.Nil, vectorstore.ErrCollectionNotFound
	}
	return id, nil
}

func (s *fakeVectorStore) Search(_ context.Context, collectionID uuid.UUID, _ []float32, topK int) ([]vectorstore.SearchResult, error) {
	rs := s.results[collectionID]
	if len(rs) > topK {
		rs = rs[:topK]
	}
	return rs, nil
}

type fakeEmbedder struct{}

func (fakeEmbedder) EmbedSingle(context.Context, string) ([]float32, error) {
	return []float32{0.1, 0.2}, nil
}

type fakeGateway struct {
	lastReq llm.ChatRequest
	content string
}

func (g *fakeGateway) Chat(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	g.lastReq = req
	return &llm.ChatResponse{Content: g.content}, nil
}

func (g *fakeGateway) Embed(context.Context, llm.EmbeddingRequest) (*llm.EmbeddingResponse, error) {
	return nil, errors.New("not implemented")
}

func (g *fakeGateway) Provider(string) (llm.Provider, error) {
	return nil, errors.New("not implemented")
}

func result(content string, score float64) vectorstore.SearchResult {
	return vectorstore.SearchResult{ChunkID: uuid.New(), Content: content, Score: score}
}

func TestMergerRetrieverInterleavesRoundRobin(t *testing.T) {
	idA, idB := uuid.New(), uuid.New()
	store := &fakeVectorStore{
		results: map[uuid.UUID][]vectorstore.SearchResult{
			idA: {result("a1", 0.9), result("a2", 0.8), result("a3", 0.7)},
			idB: {result("b1", 0.95)},
		},
	}

	merger := NewMergerRetriever([]Source{
		&collectionSource{store: store, id: idA},
		&collectionSource{store: store, id: idB},
	}, 4)

	merged, err := merger.Retrieve(context.Background(), []float32{0.1})
	require.NoError(t, err)

	contents := make([]string, len(merged))
	for i, r := range merged {
		contents[i] = r.Content
	}
	assert.Equal(t, []string{"a1", "b1", "a2", "a3"}, contents)
}

func TestOpenSourceUnknownCollection(t *testing.T) {
	store := &fakeVectorStore{collections: map[string]uuid.UUID{}}

	_, err := OpenSource(context.Background(), store, "missing.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, vectorstore.ErrCollectionNotFound)
}

func TestEngineQuery(t *testing.T) {
	id := uuid.New()
	store := &fakeVectorStore{
		collections: map[string]uuid.UUID{"report.pdf": id},
		results: map[uuid.UUID][]vectorstore.SearchResult{
			id: {result("revenue grew 10%", 0.92)},
		},
	}
	gw := &fakeGateway{content: "Revenue grew by 10% year over year."}
	gen := NewGenerator(gw, "openai", "gpt-4o-mini", 1.0)
	engine := NewEngine(store, fakeEmbedder{}, gen, 4)

	answer, err := engine.Query(context.Background(), []string{"report.pdf"}, "how did revenue change?")
	require.NoError(t, err)
	assert.Equal(t, "Revenue grew by 10% year over year.", answer)

	require.Len(t, gw.lastReq.Messages, 2)
	assert.Equal(t, "gpt-4o-mini", gw.lastReq.Model)
	assert.Equal(t, 1.0, gw.lastReq.Temperature)
	assert.Contains(t, gw.lastReq.Messages[1].Content, "revenue grew 10%")
	assert.Contains(t, gw.lastReq.Messages[1].Content, "how did revenue change?")
}

func TestEngineQueryUnindexedCollection(t *testing.T) {
	store := &fakeVectorStore{collections: map[string]uuid.UUID{}}
	gen := NewGenerator(&fakeGateway{}, "openai", "gpt-4o-mini", 1.0)
	engine := NewEngine(store, fakeEmbedder{}, gen, 4)

	_, err := engine.Query(context.Background(), []string{"pending.pdf"}, "anything")
	require.Error(t, err)
	assert.ErrorIs(t, err, vectorstore.ErrCollectionNotFound)
}

func TestEngineQueryNoCollections(t *testing.T) {
	gen := NewGenerator(&fakeGateway{}, "openai", "gpt-4o-mini", 1.0)
	engine := NewEngine(&fakeVectorStore{}, fakeEmbedder{}, gen, 4)

	_, err := engine.Query(context.Background(), nil, "anything")
	require.Error(t, err)
}
