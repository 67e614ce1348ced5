package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/docstack/ragqa/internal/api/handlers"
	"github.com/docstack/ragqa/internal/api/middleware"
	"github.com/docstack/ragqa/internal/cache"
	"github.com/docstack/ragqa/internal/config"
	"github.com/docstack/ragqa/internal/document"
	"github.com/docstack/ragqa/internal/question"
	"github.com/docstack/ragqa/internal/queue"
)

func NewRouter(cfg *config.Config, db *pgxpool.Pool, rdb *redis.Client) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	qc := queue.NewClient(cfg.Redis, cfg.Queue)
	docSvc := document.NewService(db, qc)
	questionSvc := question.NewService(
		question.NewPostgresStore(db),
		docSvc,
		qc,
		cache.NewCache(rdb),
	)

	health := handlers.NewHealthHandler(db, rdb)
	docs := handlers.NewDocumentHandler(docSvc)
	questions := handlers.NewQuestionHandler(questionSvc)

	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/documents", docs.Ingest)
		r.Get("/documents/selection", docs.Selection)
		r.Put("/documents/selection", docs.UpdateSelection)
		r.Post("/questions", questions.Ask)
	})

	return r
}
