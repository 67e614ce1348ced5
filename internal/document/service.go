package document

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docstack/ragqa/internal/models"
)

var ErrNotFound = errors.New("document not found")

// Scheduler launches the background index build for a newly ingested
// document. It is the only side channel out of this package.
type Scheduler interface {
	ScheduleIndexBuild(ctx context.Context, documentID int64) (string, error)
}

type Service struct {
	db        *pgxpool.Pool
	scheduler Scheduler
}

func NewService(db *pgxpool.Pool, scheduler Scheduler) *Service {
	return &Service{db: db, scheduler: scheduler}
}

// Selection is the wire shape for listing and toggling document selection.
type Selection struct {
	ID       int64 `json:"id"`
	Selected bool  `json:"selected"`
}

// Ingest validates and persists a new document, then schedules its index
// build. Scheduling happens strictly after the insert transaction commits so
// the worker can never observe a row that is invisible to other transactions.
func (s *Service) Ingest(ctx context.Context, filePath, name string) (int64, error) {
	if err := Validate(filePath, name); err != nil {
		return 0, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx,
		`INSERT INTO documents (name, file_path, status) VALUES ($1, $2, $3) RETURNING id`,
		name, filePath, models.DocStatusPending,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert document: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit document: %w", err)
	}

	if _, err := s.scheduler.ScheduleIndexBuild(ctx, id); err != nil {
		// The document is durable; the build can be rescheduled out of band.
		slog.Error("failed to schedule index build", "document_id", id, "error", err)
	}

	return id, nil
}

// List returns every document's selection flag in insertion order.
func (s *Service) List(ctx context.Context) ([]Selection, error) {
	rows, err := s.db.Query(ctx, `SELECT id, selected FROM documents ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var out []Selection
	for rows.Next() {
		var sel Selection
		if err := rows.Scan(&sel.ID, &sel.Selected); err != nil {
			return nil, fmt.Errorf("scan selection: %w", err)
		}
		out = append(out, sel)
	}
	return out, rows.Err()
}

// UpdateSelection applies the given flags. Unknown ids are silently skipped.
func (s *Service) UpdateSelection(ctx context.Context, updates []Selection) error {
	for _, u := range updates {
		if _, err := s.db.Exec(ctx,
			`UPDATE documents SET selected = $1 WHERE id = $2`, u.Selected, u.ID,
		); err != nil {
			return fmt.Errorf("update selection for document %d: %w", u.ID, err)
		}
	}
	return nil
}

// SelectedIDs returns selected document ids in ascending order. The ordering
// feeds the question fingerprint and must stay stable.
func (s *Service) SelectedIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.Query(ctx, `SELECT id FROM documents WHERE selected ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list selected documents: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan document id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// NamesByIDs resolves documents to their collection names, id-ascending.
func (s *Service) NamesByIDs(ctx context.Context, ids []int64) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT name FROM documents WHERE id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve document names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan document name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *Service) GetByID(ctx context.Context, id int64) (*models.Document, error) {
	var doc models.Document
	err := s.db.QueryRow(ctx,
		`SELECT id, name, file_path, status, indexed, selected, created_at
		 FROM documents WHERE id = $1`, id,
	).Scan(&doc.ID, &doc.Name, &doc.FilePath, &doc.Status, &doc.Indexed, &doc.Selected, &doc.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("document %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get document %d: %w", id, err)
	}
	return &doc, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id int64, status string) error {
	_, err := s.db.Exec(ctx, `UPDATE documents SET status = $1 WHERE id = $2`, status, id)
	return err
}

// MarkIndexed flips the indexed flag. The flag only ever goes false to true;
// failures are recorded on the status column instead.
func (s *Service) MarkIndexed(ctx context.Context, id int64) error {
	_, err := s.db.Exec(ctx,
		`UPDATE documents SET indexed = TRUE, status = $1 WHERE id = $2`,
		models.DocStatusIndexed, id,
	)
	return err
}
