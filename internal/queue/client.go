package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/docstack/ragqa/internal/config"
)

const defaultQueue = "default"

// Client submits jobs and polls their state through the asynq inspector.
// Retry policy lives here, not in the job handlers.
type Client struct {
	client    *asynq.Client
	inspector *asynq.Inspector
	maxRetry  int
	retention time.Duration
}

func NewClient(rcfg config.RedisConfig, qcfg config.QueueConfig) *Client {
	opt := asynq.RedisClientOpt{
		Addr:     rcfg.Addr,
		Password: rcfg.Password,
		DB:       rcfg.DB,
	}
	return &Client{
		client:    asynq.NewClient(opt),
		inspector: asynq.NewInspector(opt),
		maxRetry:  qcfg.MaxRetry,
		retention: qcfg.Retention(),
	}
}

func (c *Client) Close() error {
	cerr := c.client.Close()
	if err := c.inspector.Close(); err != nil {
		return err
	}
	return cerr
}

func (c *Client) ScheduleIndexBuild(ctx context.Context, documentID int64) (string, error) {
	return c.submit(ctx, TypeIndexBuild, IndexBuildPayload{DocumentID: documentID},
		asynq.Timeout(10*time.Minute))
}

func (c *Client) SubmitAnswer(ctx context.Context, documentIDs []int64, question string) (string, error) {
	return c.submit(ctx, TypeAnswerGenerate, AnswerGeneratePayload{DocumentIDs: documentIDs, Question: question},
		asynq.Timeout(5*time.Minute))
}

func (c *Client) submit(ctx context.Context, taskType string, payload interface{}, opts ...asynq.Option) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	// Retention keeps completed tasks (and their results) visible to Poll.
	opts = append(opts,
		asynq.TaskID(uuid.NewString()),
		asynq.Queue(defaultQueue),
		asynq.MaxRetry(c.maxRetry),
		asynq.Retention(c.retention),
	)

	info, err := c.client.EnqueueContext(ctx, asynq.NewTask(taskType, data), opts...)
	if err != nil {
		return "", fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	return info.ID, nil
}

// Poll reports the state of a previously submitted job. A task that has
// fallen out of retention is reported as a failure rather than pending
// forever.
func (c *Client) Poll(ctx context.Context, jobID string) (JobStatus, error) {
	info, err := c.inspector.GetTaskInfo(defaultQueue, jobID)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskNotFound) {
			return JobStatus{Ready: true}, nil
		}
		return JobStatus{}, fmt.Errorf("inspect job %s: %w", jobID, err)
	}

	switch info.State {
	case asynq.TaskStateCompleted:
		return JobStatus{Ready: true, Successful: true, Result: string(info.Result)}, nil
	case asynq.TaskStateArchived:
		return JobStatus{Ready: true}, nil
	default:
		return JobStatus{}, nil
	}
}
