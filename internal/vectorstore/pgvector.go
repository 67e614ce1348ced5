package vectorstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

type PgVectorStore struct {
	db *pgxpool.Pool
}

func NewPgVectorStore(db *pgxpool.Pool) *PgVectorStore {
	return &PgVectorStore{db: db}
}

// Upsert writes chunks into the named collection, creating it if absent.
// Re-indexing a document overwrites its chunks in place.
func (s *PgVectorStore) Upsert(ctx context.Context, collection string, chunks []Chunk) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var collID uuid.UUID
	err = tx.QueryRow(ctx,
		`INSERT INTO collections (id, name) VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id`,
		uuid.New(), collection,
	).Scan(&collID)
	if err != nil {
		return fmt.Errorf("ensure collection %q: %w", collection, err)
	}

	for _, c := range chunks {
		id := c.ID
		if id == uuid.Nil {
			id = uuid.New()
		}

		embedding := pgvector.NewVector(c.Embedding)

		_, err := tx.Exec(ctx,
			`INSERT INTO embeddings (id, collection_id, chunk_index, page, content, embedding, token_count)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (collection_id, chunk_index)
			 DO UPDATE SET page = $4, content = $5, embedding = $6, token_count = $7`,
			id, collID, c.ChunkIndex, c.Page, c.Content, embedding, c.TokenCount,
		)
		if err != nil {
			return fmt.Errorf("upsert chunk %d: %w", c.ChunkIndex, err)
		}
	}

	return tx.Commit(ctx)
}

func (s *PgVectorStore) CollectionID(ctx context.Context, name string) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM collections WHERE name = $1`, name).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, fmt.Errorf("%q: %w", name, ErrCollectionNotFound)
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("get collection %q: %w", name, err)
	}
	return id, nil
}

func (s *PgVectorStore) Search(ctx context.Context, collectionID uuid.UUID, query []float32, topK int) ([]SearchResult, error) {
	if topK <= 0 {
		topK = 4
	}

	embedding := pgvector.NewVector(query)

	rows, err := s.db.Query(ctx,
		`SELECT id, content, page, 1 - (embedding <=> $1) AS score
		 FROM embeddings
		 WHERE collection_id = $2
		 ORDER BY embedding <=> $1
		 LIMIT $3`,
		embedding, collectionID, topK,
	)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ChunkID, &r.Content, &r.Page, &r.Score); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
