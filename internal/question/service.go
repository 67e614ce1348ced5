package question

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/docstack/ragqa/internal/models"
	"github.com/docstack/ragqa/internal/queue"
)

// ThinkingAnswer is returned while the underlying job has not finished.
const ThinkingAnswer = "thinking..."

const answerCacheTTL = 24 * time.Hour

// Store persists Question records. Implementations must back GetOrCreate
// with a uniqueness constraint on the fingerprint and make TryClaim a
// compare-and-set, so that concurrent identical submissions cannot launch
// two jobs.
type Store interface {
	GetOrCreate(ctx context.Context, fingerprint string) (*models.Question, error)
	TryClaim(ctx context.Context, fingerprint string) (bool, error)
	SetJobHandle(ctx context.Context, fingerprint, jobID string) error
	Release(ctx context.Context, fingerprint string) error
	Finish(ctx context.Context, fingerprint, status, answer string) error
}

// DocumentSource yields the currently selected document ids, ascending.
type DocumentSource interface {
	SelectedIDs(ctx context.Context) ([]int64, error)
}

// Executor is the async job backend: submit returns an opaque handle that
// can be polled until the job reports a terminal state.
type Executor interface {
	SubmitAnswer(ctx context.Context, documentIDs []int64, question string) (string, error)
	Poll(ctx context.Context, jobID string) (queue.JobStatus, error)
}

// AnswerCache is an optional read-through cache for completed answers.
type AnswerCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type Service struct {
	store Store
	docs  DocumentSource
	exec  Executor
	cache AnswerCache
}

func NewService(store Store, docs DocumentSource, exec Executor, cache AnswerCache) *Service {
	return &Service{store: store, docs: docs, exec: exec, cache: cache}
}

// Answer is the polling contract returned to the caller.
type Answer struct {
	Answer string `json:"answer"`
	Status string `json:"status"`
}

// Ask submits or polls the question identified by the current document
// selection plus the question text. It never blocks on job execution: a
// running job yields a "thinking..." answer and the caller polls by
// resubmitting the same question.
func (s *Service) Ask(ctx context.Context, text string) (Answer, error) {
	ids, err := s.docs.SelectedIDs(ctx)
	if err != nil {
		return Answer{}, fmt.Errorf("gather selected documents: %w", err)
	}

	fp := Fingerprint(ids, text)

	q, err := s.store.GetOrCreate(ctx, fp)
	if err != nil {
		return Answer{}, fmt.Errorf("get or create question: %w", err)
	}

	switch q.Status {
	case models.QuestionStatusInProgress:
		return s.checkProgress(ctx, q)
	case models.QuestionStatusSuccess, models.QuestionStatusFailed:
		// Terminal statuses return the stored answer. The original behavior
		// this was modeled on relaunched the job here instead, stomping the
		// cached result; see DESIGN.md.
		return s.cachedAnswer(ctx, q), nil
	default:
		return s.launch(ctx, fp, ids, text)
	}
}

func (s *Service) checkProgress(ctx context.Context, q *models.Question) (Answer, error) {
	if q.AnswerID == "" {
		// A concurrent submission claimed the record but has not recorded
		// its job handle yet.
		return Answer{Answer: ThinkingAnswer, Status: models.QuestionStatusInProgress}, nil
	}

	st, err := s.exec.Poll(ctx, q.AnswerID)
	if err != nil {
		return Answer{}, fmt.Errorf("poll job %s: %w", q.AnswerID, err)
	}

	if !st.Ready {
		return Answer{Answer: ThinkingAnswer, Status: models.QuestionStatusInProgress}, nil
	}

	if st.Successful {
		if err := s.store.Finish(ctx, q.QuestionID, models.QuestionStatusSuccess, st.Result); err != nil {
			return Answer{}, fmt.Errorf("persist answer: %w", err)
		}
		s.cacheSet(ctx, q.QuestionID, st.Result)
		return Answer{Answer: st.Result, Status: models.QuestionStatusSuccess}, nil
	}

	if err := s.store.Finish(ctx, q.QuestionID, models.QuestionStatusFailed, ""); err != nil {
		return Answer{}, fmt.Errorf("persist failure: %w", err)
	}
	return Answer{Answer: "", Status: models.QuestionStatusFailed}, nil
}

func (s *Service) launch(ctx context.Context, fp string, ids []int64, text string) (Answer, error) {
	claimed, err := s.store.TryClaim(ctx, fp)
	if err != nil {
		return Answer{}, fmt.Errorf("claim question: %w", err)
	}
	if !claimed {
		// Lost the race to a concurrent identical submission; its job is
		// the one to poll.
		return Answer{Answer: ThinkingAnswer, Status: models.QuestionStatusInProgress}, nil
	}

	jobID, err := s.exec.SubmitAnswer(ctx, ids, text)
	if err != nil {
		if rerr := s.store.Release(ctx, fp); rerr != nil {
			slog.Error("failed to release claimed question", "fingerprint", fp, "error", rerr)
		}
		return Answer{}, fmt.Errorf("submit answer job: %w", err)
	}

	if err := s.store.SetJobHandle(ctx, fp, jobID); err != nil {
		return Answer{}, fmt.Errorf("record job handle: %w", err)
	}

	return Answer{Answer: ThinkingAnswer, Status: models.QuestionStatusInProgress}, nil
}

func (s *Service) cachedAnswer(ctx context.Context, q *models.Question) Answer {
	if q.Status == models.QuestionStatusSuccess && s.cache != nil {
		var cached string
		if err := s.cache.Get(ctx, answerCacheKey(q.QuestionID), &cached); err == nil && cached != "" {
			return Answer{Answer: cached, Status: q.Status}
		}
	}
	return Answer{Answer: q.Answer, Status: q.Status}
}

func (s *Service) cacheSet(ctx context.Context, fp, answer string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, answerCacheKey(fp), answer, answerCacheTTL); err != nil {
		slog.Warn("failed to cache answer", "fingerprint", fp, "error", err)
	}
}

func answerCacheKey(fp string) string {
	return "answer:" + fp
}
