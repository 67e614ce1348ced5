package models

import "time"

// Document is a source file registered for question answering. Its vector
// collection is keyed by Name, not ID.
type Document struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	FilePath  string    `json:"file_path" db:"file_path"`
	Status    string    `json:"status" db:"status"`
	Indexed   bool      `json:"indexed" db:"indexed"`
	Selected  bool      `json:"selected" db:"selected"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

const (
	DocStatusPending  = "pending"
	DocStatusIndexing = "indexing"
	DocStatusIndexed  = "indexed"
	DocStatusFailed   = "failed"
)
