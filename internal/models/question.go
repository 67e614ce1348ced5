package models

import "time"

// Question statuses. A record starts pending the moment it is created and
// only moves to in_progress once a caller wins the claim.
const (
	QuestionStatusPending    = "pending"
	QuestionStatusInProgress = "in_progress"
	QuestionStatusSuccess    = "success"
	QuestionStatusFailed     = "failed"
)

// Question tracks one unique (document selection, question text) pair and the
// async job answering it. QuestionID is the fingerprint; AnswerID the job
// handle.
type Question struct {
	ID         int64     `json:"id" db:"id"`
	QuestionID string    `json:"question_id" db:"question_id"`
	Status     string    `json:"status" db:"status"`
	AnswerID   string    `json:"answer_id" db:"answer_id"`
	Answer     string    `json:"answer" db:"answer"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
