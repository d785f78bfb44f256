package cron

import (
	"time"

	"aliadolaboral/services/tasks"
	"aliadolaboral/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Timezone the daily jobs fire in.
const Timezone = "America/Mexico_City"

// Entry is one periodic job.
type Entry struct {
	Spec  string
	Type  string
	Queue string
}

// Schedule lists the periodic jobs in cron syntax.
var Schedule = []Entry{
	{Spec: "0 * * * *", Type: tasks.TypeInactiveChats, Queue: "default"},
	{Spec: "0 2 * * *", Type: tasks.TypeNightlyReview, Queue: "default"},
	{Spec: "0 */6 * * *", Type: tasks.TypeNudges, Queue: "low"},
	{Spec: "0 8 * * *", Type: tasks.TypeNewsIngest, Queue: "low"},
	{Spec: "30 8 * * *", Type: tasks.TypeNewsCleanup, Queue: "low"},
}

// NewScheduler registers Schedule on an asynq scheduler. Jobs run on the worker started by StartWorker.
func NewScheduler() (*asynq.Scheduler, error) {
	loc, err := time.LoadLocation(Timezone)
	if err != nil {
		utils.GetLogger().Warn("scheduler: timezone unavailable, using UTC", zap.Error(err))
		loc = time.UTC
	}
	scheduler := asynq.NewScheduler(RedisOpt(), &asynq.SchedulerOpts{Location: loc})
	for _, e := range Schedule {
		// Unique keeps a slow run from stacking a second copy in the queue.
		if _, err := scheduler.Register(e.Spec, asynq.NewTask(e.Type, nil),
			asynq.Queue(e.Queue), asynq.MaxRetry(1), asynq.Unique(30*time.Minute)); err != nil {
			return nil, err
		}
	}
	return scheduler, nil
}
