package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"aliadolaboral/config"
	"aliadolaboral/models"
	"aliadolaboral/services/sla"
	"aliadolaboral/services/tasks"
	"aliadolaboral/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Pusher delivers push payloads taken off the queue.
type Pusher interface {
	Deliver(ctx context.Context, p models.PushPayload) error
	DeliverBroadcast(ctx context.Context, p models.BroadcastPayload) error
}

type CaseAnalyzer interface {
	AnalyzeCase(ctx context.Context, requestID string) error
}

type SLARunner interface {
	CheckInactiveChats(ctx context.Context) (int, error)
	RunNightlyReview(ctx context.Context) (*sla.NightlyReport, error)
	RunNudges(ctx context.Context) (int, error)
}

type NewsRunner interface {
	Ingest(ctx context.Context) (*models.LegalNews, error)
	Cleanup(ctx context.Context) (int64, error)
}

// Jobs holds everything the worker dispatches to.
type Jobs struct {
	Push     Pusher
	Analyzer CaseAnalyzer
	SLA      SLARunner
	News     NewsRunner
}

// RedisOpt points asynq at the queue database.
func RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// NewMux routes every task type to its job.
func NewMux(jobs Jobs) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypePushSend, handlePush(jobs.Push))
	mux.HandleFunc(tasks.TypePushBroadcast, handleBroadcast(jobs.Push))
	mux.HandleFunc(tasks.TypeCaseAnalysis, handleCaseAnalysis(jobs.Analyzer))
	mux.HandleFunc(tasks.TypeInactiveChats, countJob("inactive_chats", jobs.SLA.CheckInactiveChats))
	mux.HandleFunc(tasks.TypeNudges, countJob("nudges", jobs.SLA.RunNudges))
	mux.HandleFunc(tasks.TypeNightlyReview, handleNightlyReview(jobs.SLA))
	mux.HandleFunc(tasks.TypeNewsIngest, handleNewsIngest(jobs.News))
	mux.HandleFunc(tasks.TypeNewsCleanup, handleNewsCleanup(jobs.News))
	return mux
}

// StartWorker runs the asynq server in the background until Shutdown is called on the result.
func StartWorker(jobs Jobs) *asynq.Server {
	logger := utils.GetLogger()
	srv := asynq.NewServer(RedisOpt(), asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			"critical": 6,
			"default":  3,
			"low":      1,
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.Error("worker: task failed", zap.String("type", task.Type()), zap.Error(err))
		}),
	})
	mux := NewMux(jobs)

	go func() {
		const maxAttempts = 5
		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Start(mux)
			if err == nil {
				logger.Info("worker: started")
				return
			}
			logger.Warn("worker: failed to start", zap.Int("attempt", attempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Error("worker: max retry attempts reached, background jobs disabled")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
	return srv
}

func handlePush(push Pusher) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.PushPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			return fmt.Errorf("invalid push payload: %v: %w", err, asynq.SkipRetry)
		}
		return push.Deliver(ctx, p)
	}
}

func handleBroadcast(push Pusher) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.BroadcastPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			return fmt.Errorf("invalid broadcast payload: %v: %w", err, asynq.SkipRetry)
		}
		return push.DeliverBroadcast(ctx, p)
	}
}

func handleCaseAnalysis(analyzer CaseAnalyzer) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.CaseAnalysisPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil || p.RequestID == "" {
			return fmt.Errorf("invalid case analysis payload: %w", asynq.SkipRetry)
		}
		err := analyzer.AnalyzeCase(ctx, p.RequestID)
		utils.RecordJobRun("case_analysis", err)
		return err
	}
}

func countJob(name string, run func(context.Context) (int, error)) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		n, err := run(ctx)
		utils.RecordJobRun(name, err)
		if err != nil {
			return err
		}
		utils.GetLogger().Info("cron: job finished", zap.String("job", name), zap.Int("affected", n))
		return nil
	}
}

func handleNightlyReview(s SLARunner) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		report, err := s.RunNightlyReview(ctx)
		utils.RecordJobRun("nightly_review", err)
		if err != nil {
			return err
		}
		utils.GetLogger().Info("cron: nightly review finished",
			zap.Int("reassigned", report.Reassigned), zap.Int("flagged", report.Flagged))
		return nil
	}
}

func handleNewsIngest(news NewsRunner) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		item, err := news.Ingest(ctx)
		utils.RecordJobRun("news_ingest", err)
		if err != nil {
			return err
		}
		if item != nil {
			utils.GetLogger().Info("cron: news published", zap.String("title", item.Title))
		}
		return nil
	}
}

func handleNewsCleanup(news NewsRunner) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		n, err := news.Cleanup(ctx)
		utils.RecordJobRun("news_cleanup", err)
		if err != nil {
			return err
		}
		utils.GetLogger().Info("cron: old news removed", zap.Int64("deleted", n))
		return nil
	}
}
