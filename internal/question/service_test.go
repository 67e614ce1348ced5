package question

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docstack/ragqa/internal/models"
	"github.com/docstack/ragqa/internal/queue"
)

type fakeStore struct {
	records   map[string]*models.Question
	claimDeny bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]*models.Question)}
}

func (s *fakeStore) GetOrCreate(_ context.Context, fp string) (*models.Question, error) {
	if q, ok := s.records[fp]; ok {
		cp := *q
		return &cp, nil
	}
	q := &models.Question{QuestionID: fp, Status: models.QuestionStatusPending}
	s.records[fp] = q
	cp := *q
	return &cp, nil
}

func (s *fakeStore) TryClaim(_ context.Context, fp string) (bool, error) {
	if s.claimDeny {
		return false, nil
	}
	q, ok := s.records[fp]
	if !ok || q.Status != models.QuestionStatusPending {
		return false, nil
	}
	q.Status = models.QuestionStatusInProgress
	return true, nil
}

func (s *fakeStore) SetJobHandle(_ context.Context, fp, jobID string) error {
	s.records[fp].AnswerID = jobID
	return nil
}

func (s *fakeStore) Release(_ context.Context, fp string) error {
	q := s.records[fp]
	q.Status = models.QuestionStatusPending
	q.AnswerID = ""
	return nil
}

func (s *fakeStore) Finish(_ context.Context, fp, status, answer string) error {
	q := s.records[fp]
	q.Status = status
	q.Answer = answer
	return nil
}

type fakeDocs struct {
	ids []int64
}

func (d *fakeDocs) SelectedIDs(context.Context) ([]int64, error) {
	return d.ids, nil
}

type fakeExecutor struct {
	submissions int
	submitErr   error
	status      queue.JobStatus
	pollErr     error
}

func (e *fakeExecutor) SubmitAnswer(context.Context, []int64, string) (string, error) {
	if e.submitErr != nil {
		return "", e.submitErr
	}
	e.submissions++
	return fmt.Sprintf("job-%d", e.submissions), nil
}

func (e *fakeExecutor) Poll(context.Context, string) (queue.JobStatus, error) {
	return e.status, e.pollErr
}

type fakeCache struct {
	values map[string]string
}

func (c *fakeCache) Get(_ context.Context, key string, dest interface{}) error {
	v, ok := c.values[key]
	if !ok {
		return errors.New("cache miss")
	}
	*(dest.(*string)) = v
	return nil
}

func (c *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if c.values == nil {
		c.values = make(map[string]string)
	}
	c.values[key] = value.(string)
	return nil
}

func newTestService(store Store, docs DocumentSource, exec Executor) *Service {
	return NewService(store, docs, exec, nil)
}

func TestAskLaunchesJobAndReturnsThinking(t *testing.T) {
	store := newFakeStore()
	exec := &fakeExecutor{}
	svc := newTestService(store, &fakeDocs{ids: []int64{1, 2}}, exec)

	ans, err := svc.Ask(context.Background(), "what changed?")
	require.NoError(t, err)
	assert.Equal(t, ThinkingAnswer, ans.Answer)
	assert.Equal(t, models.QuestionStatusInProgress, ans.Status)
	assert.Equal(t, 1, exec.submissions)

	fp := Fingerprint([]int64{1, 2}, "what changed?")
	assert.Equal(t, "job-1", store.records[fp].AnswerID)
}

func TestAskSameQuestionLaunchesOnce(t *testing.T) {
	store := newFakeStore()
	exec := &fakeExecutor{}
	svc := newTestService(store, &fakeDocs{ids: []int64{1, 2}}, exec)

	for i := 0; i < 3; i++ {
		ans, err := svc.Ask(context.Background(), "what changed?")
		require.NoError(t, err)
		assert.Equal(t, ThinkingAnswer, ans.Answer)
	}
	assert.Equal(t, 1, exec.submissions)
}

func TestAskPersistsSuccessfulAnswer(t *testing.T) {
	store := newFakeStore()
	exec := &fakeExecutor{}
	svc := newTestService(store, &fakeDocs{ids: []int64{1}}, exec)

	_, err := svc.Ask(context.Background(), "what is the answer?")
	require.NoError(t, err)

	exec.status = queue.JobStatus{Ready: true, Successful: true, Result: "42"}

	ans, err := svc.Ask(context.Background(), "what is the answer?")
	require.NoError(t, err)
	assert.Equal(t, "42", ans.Answer)
	assert.Equal(t, models.QuestionStatusSuccess, ans.Status)

	fp := Fingerprint([]int64{1}, "what is the answer?")
	assert.Equal(t, "42", store.records[fp].Answer)

	// Subsequent asks serve the stored answer without touching the executor.
	ans, err = svc.Ask(context.Background(), "what is the answer?")
	require.NoError(t, err)
	assert.Equal(t, "42", ans.Answer)
	assert.Equal(t, 1, exec.submissions)
}

func TestAskRecordsJobFailure(t *testing.T) {
	store := newFakeStore()
	exec := &fakeExecutor{}
	svc := newTestService(store, &fakeDocs{ids: []int64{1}}, exec)

	_, err := svc.Ask(context.Background(), "doomed question")
	require.NoError(t, err)

	exec.status = queue.JobStatus{Ready: true, Successful: false}

	ans, err := svc.Ask(context.Background(), "doomed question")
	require.NoError(t, err)
	assert.Equal(t, "", ans.Answer)
	assert.Equal(t, models.QuestionStatusFailed, ans.Status)
}

func TestAskTerminalStatusDoesNotRelaunch(t *testing.T) {
	store := newFakeStore()
	fp := Fingerprint([]int64{1}, "settled question")
	store.records[fp] = &models.Question{
		QuestionID: fp,
		Status:     models.QuestionStatusSuccess,
		Answer:     "done",
	}
	exec := &fakeExecutor{}
	svc := newTestService(store, &fakeDocs{ids: []int64{1}}, exec)

	ans, err := svc.Ask(context.Background(), "settled question")
	require.NoError(t, err)
	assert.Equal(t, "done", ans.Answer)
	assert.Equal(t, models.QuestionStatusSuccess, ans.Status)
	assert.Equal(t, 0, exec.submissions)
}

func TestAskLostClaimReturnsThinking(t *testing.T) {
	store := newFakeStore()
	store.claimDeny = true
	exec := &fakeExecutor{}
	svc := newTestService(store, &fakeDocs{ids: []int64{1}}, exec)

	ans, err := svc.Ask(context.Background(), "contended question")
	require.NoError(t, err)
	assert.Equal(t, ThinkingAnswer, ans.Answer)
	assert.Equal(t, 0, exec.submissions)
}

func TestAskSubmitFailureReleasesClaim(t *testing.T) {
	store := newFakeStore()
	exec := &fakeExecutor{submitErr: errors.New("broker down")}
	svc := newTestService(store, &fakeDocs{ids: []int64{1}}, exec)

	_, err := svc.Ask(context.Background(), "question")
	require.Error(t, err)

	fp := Fingerprint([]int64{1}, "question")
	assert.Equal(t, models.QuestionStatusPending, store.records[fp].Status)

	// The claim was released, so a retry can launch.
	exec.submitErr = nil
	ans, err := svc.Ask(context.Background(), "question")
	require.NoError(t, err)
	assert.Equal(t, ThinkingAnswer, ans.Answer)
	assert.Equal(t, 1, exec.submissions)
}

func TestAskSelectionChangeLaunchesNewJob(t *testing.T) {
	store := newFakeStore()
	exec := &fakeExecutor{}
	docs := &fakeDocs{ids: []int64{1, 2}}
	svc := newTestService(store, docs, exec)

	_, err := svc.Ask(context.Background(), "same question")
	require.NoError(t, err)

	docs.ids = []int64{1, 2, 3}
	_, err = svc.Ask(context.Background(), "same question")
	require.NoError(t, err)

	assert.Equal(t, 2, exec.submissions)
}

func TestAskPollNotReadyKeepsThinking(t *testing.T) {
	store := newFakeStore()
	exec := &fakeExecutor{}
	svc := newTestService(store, &fakeDocs{ids: []int64{1}}, exec)

	_, err := svc.Ask(context.Background(), "slow question")
	require.NoError(t, err)

	ans, err := svc.Ask(context.Background(), "slow question")
	require.NoError(t, err)
	assert.Equal(t, ThinkingAnswer, ans.Answer)
	assert.Equal(t, models.QuestionStatusInProgress, ans.Status)
}

func TestAskCachesSuccessfulAnswer(t *testing.T) {
	store := newFakeStore()
	exec := &fakeExecutor{}
	c := &fakeCache{}
	svc := NewService(store, &fakeDocs{ids: []int64{1}}, exec, c)

	_, err := svc.Ask(context.Background(), "cached question")
	require.NoError(t, err)

	exec.status = queue.JobStatus{Ready: true, Successful: true, Result: "cached result"}
	_, err = svc.Ask(context.Background(), "cached question")
	require.NoError(t, err)

	fp := Fingerprint([]int64{1}, "cached question")
	assert.Equal(t, "cached result", c.values["answer:"+fp])

	ans, err := svc.Ask(context.Background(), "cached question")
	require.NoError(t, err)
	assert.Equal(t, "cached result", ans.Answer)
}
