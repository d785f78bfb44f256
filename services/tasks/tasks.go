package tasks

import (
	"context"
	"encoding/json"
	"time"

	"aliadolaboral/models"

	"github.com/hibiken/asynq"
)

const (
	TypePushSend      = "push:send"
	TypePushBroadcast = "push:broadcast"
	TypeCaseAnalysis  = "case:analyze"

	// Periodic jobs enqueued by the scheduler.
	TypeInactiveChats = "sla:inactive-chats"
	TypeNightlyReview = "sla:nightly-review"
	TypeNudges        = "sla:nudges"
	TypeNewsIngest    = "news:ingest"
	TypeNewsCleanup   = "news:cleanup"
)

// Queue is the part of asynq.Client the services enqueue through.
type Queue interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

func NewPushTask(payload models.PushPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypePushSend, b)
	opts := []asynq.Option{asynq.MaxRetry(3), asynq.Timeout(30 * time.Second)}

	return task, opts, nil
}

func NewBroadcastTask(payload models.BroadcastPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	return asynq.NewTask(TypePushBroadcast, b), []asynq.Option{asynq.MaxRetry(1)}, nil
}

func NewCaseAnalysisTask(requestID string) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(models.CaseAnalysisPayload{RequestID: requestID})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeCaseAnalysis, b)
	opts := []asynq.Option{asynq.MaxRetry(2), asynq.Timeout(2 * time.Minute)}

	return task, opts, nil
}
