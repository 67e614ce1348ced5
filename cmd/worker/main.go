package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/hibiken/asynq"

	"github.com/docstack/ragqa/internal/config"
	"github.com/docstack/ragqa/internal/database"
	"github.com/docstack/ragqa/internal/document"
	"github.com/docstack/ragqa/internal/embedding"
	"github.com/docstack/ragqa/internal/index"
	"github.com/docstack/ragqa/internal/llm"
	"github.com/docstack/ragqa/internal/queue"
	"github.com/docstack/ragqa/internal/queue/workers"
	"github.com/docstack/ragqa/internal/rag"
	"github.com/docstack/ragqa/internal/vectorstore"
	"github.com/docstack/ragqa/pkg/chunker"
	"github.com/docstack/ragqa/pkg/pdfload"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	gw := llm.NewGateway(cfg.LLM)
	embedder := embedding.NewService(gw, cfg.LLM.EmbeddingModel)
	store := vectorstore.NewPgVectorStore(db)

	qc := queue.NewClient(cfg.Redis, cfg.Queue)
	defer qc.Close()

	docSvc := document.NewService(db, qc)

	builder := index.NewBuilder(docSvc, pdfload.FileLoader{}, embedder, store, chunker.ChunkOptions{
		ChunkSize:    cfg.RAG.ChunkSize,
		ChunkOverlap: cfg.RAG.ChunkOverlap,
	})

	generator := rag.NewGenerator(gw, cfg.LLM.DefaultProvider, cfg.LLM.DefaultModel, cfg.RAG.Temperature)
	engine := rag.NewEngine(store, embedder, generator, cfg.RAG.TopK)

	registry := queue.NewHandlersRegistry()
	registry.Register(queue.TypeIndexBuild, workers.NewIndexWorker(builder))
	registry.Register(queue.TypeAnswerGenerate, workers.NewAnswerWorker(docSvc, engine))

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: cfg.Queue.Concurrency,
			Queues:      map[string]int{"default": 1},
		},
	)

	slog.Info("starting worker", "concurrency", cfg.Queue.Concurrency)
	if err := srv.Run(registry.Mux()); err != nil {
		slog.Error("worker stopped", "error", err)
		os.Exit(1)
	}
}
