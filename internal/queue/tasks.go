package queue

const (
	TypeIndexBuild     = "index:build"
	TypeAnswerGenerate = "answer:generate"
)

type IndexBuildPayload struct {
	DocumentID int64 `json:"document_id"`
}

type AnswerGeneratePayload struct {
	DocumentIDs []int64 `json:"document_ids"`
	Question    string  `json:"question"`
}

// JobStatus is the poll contract: Ready is false while the job is queued or
// running; once Ready, Successful discriminates the terminal state and
// Result carries the job's output when successful.
type JobStatus struct {
	Ready      bool
	Successful bool
	Result     string
}
