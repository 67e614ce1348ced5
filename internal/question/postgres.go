package question

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docstack/ragqa/internal/models"
)

// PostgresStore backs the tracker with the questions table. The unique index
// on question_id makes get-or-create race-safe across processes.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetOrCreate(ctx context.Context, fingerprint string) (*models.Question, error) {
	_, err := s.db.Exec(ctx,
		`INSERT INTO questions (question_id, status) VALUES ($1, $2)
		 ON CONFLICT (question_id) DO NOTHING`,
		fingerprint, models.QuestionStatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}

	var q models.Question
	err = s.db.QueryRow(ctx,
		`SELECT id, question_id, status, answer_id, answer, created_at, updated_at
		 FROM questions WHERE question_id = $1`,
		fingerprint,
	).Scan(&q.ID, &q.QuestionID, &q.Status, &q.AnswerID, &q.Answer, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get question: %w", err)
	}
	return &q, nil
}

// TryClaim flips a pending question to in_progress. Exactly one of any set
// of concurrent callers sees true.
func (s *PostgresStore) TryClaim(ctx context.Context, fingerprint string) (bool, error) {
	tag, err := s.db.Exec(ctx,
		`UPDATE questions SET status = $2, updated_at = now()
		 WHERE question_id = $1 AND status = $3`,
		fingerprint, models.QuestionStatusInProgress, models.QuestionStatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("claim question: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PostgresStore) SetJobHandle(ctx context.Context, fingerprint, jobID string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE questions SET answer_id = $2, updated_at = now() WHERE question_id = $1`,
		fingerprint, jobID,
	)
	if err != nil {
		return fmt.Errorf("set job handle: %w", err)
	}
	return nil
}

// Release undoes a claim after a failed submit so a later identical
// submission can launch again.
func (s *PostgresStore) Release(ctx context.Context, fingerprint string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE questions SET status = $2, answer_id = '', updated_at = now()
		 WHERE question_id = $1 AND status = $3`,
		fingerprint, models.QuestionStatusPending, models.QuestionStatusInProgress,
	)
	if err != nil {
		return fmt.Errorf("release question: %w", err)
	}
	return nil
}

func (s *PostgresStore) Finish(ctx context.Context, fingerprint, status, answer string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE questions SET status = $2, answer = $3, updated_at = now()
		 WHERE question_id = $1`,
		fingerprint, status, answer,
	)
	if err != nil {
		return fmt.Errorf("finish question: %w", err)
	}
	return nil
}
