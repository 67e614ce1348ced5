package document

import "fmt"

const (
	maxFilePathLen = 1024
	maxNameLen     = 512
)

// ValidationError reports a single rejected input field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks ingest inputs before any state is mutated.
func Validate(filePath, name string) error {
	if filePath == "" {
		return &ValidationError{Field: "file_path", Message: "this field is required"}
	}
	if len(filePath) > maxFilePathLen {
		return &ValidationError{Field: "file_path", Message: fmt.Sprintf("must be at most %d characters", maxFilePathLen)}
	}
	if name == "" {
		return &ValidationError{Field: "name", Message: "this field is required"}
	}
	if len(name) > maxNameLen {
		return &ValidationError{Field: "name", Message: fmt.Sprintf("must be at most %d characters", maxNameLen)}
	}
	return nil
}
