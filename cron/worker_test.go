package cron

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"aliadolaboral/models"
	"aliadolaboral/services/sla"
	"aliadolaboral/services/tasks"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJobs struct {
	pushed     []models.PushPayload
	broadcasts []models.BroadcastPayload
	analyzed   []string
	ran        []string
	ingestErr  error
}

func (f *fakeJobs) Deliver(_ context.Context, p models.PushPayload) error {
	f.pushed = append(f.pushed, p)
	return nil
}

func (f *fakeJobs) DeliverBroadcast(_ context.Context, p models.BroadcastPayload) error {
	f.broadcasts = append(f.broadcasts, p)
	return nil
}

func (f *fakeJobs) AnalyzeCase(_ context.Context, id string) error {
	f.analyzed = append(f.analyzed, id)
	return nil
}

func (f *fakeJobs) CheckInactiveChats(context.Context) (int, error) {
	f.ran = append(f.ran, "inactive")
	return 2, nil
}

func (f *fakeJobs) RunNightlyReview(context.Context) (*sla.NightlyReport, error) {
	f.ran = append(f.ran, "nightly")
	return &sla.NightlyReport{Reassigned: 1}, nil
}

func (f *fakeJobs) RunNudges(context.Context) (int, error) {
	f.ran = append(f.ran, "nudges")
	return 0, nil
}

func (f *fakeJobs) Ingest(context.Context) (*models.LegalNews, error) {
	f.ran = append(f.ran, "ingest")
	return nil, f.ingestErr
}

func (f *fakeJobs) Cleanup(context.Context) (int64, error) {
	f.ran = append(f.ran, "cleanup")
	return 3, nil
}

func newTestMux() (*asynq.ServeMux, *fakeJobs) {
	f := &fakeJobs{}
	return NewMux(Jobs{Push: f, Analyzer: f, SLA: f, News: f}), f
}

func TestMuxDeliversPush(t *testing.T) {
	mux, f := newTestMux()
	task, _, err := tasks.NewPushTask(models.PushPayload{UserID: "u1", Title: "Hola"})
	require.NoError(t, err)

	require.NoError(t, mux.ProcessTask(context.Background(), task))
	require.Len(t, f.pushed, 1)
	assert.Equal(t, "u1", f.pushed[0].UserID)
}

func TestMuxDeliversBroadcast(t *testing.T) {
	mux, f := newTestMux()
	task, _, err := tasks.NewBroadcastTask(models.BroadcastPayload{Role: "lawyer", Title: "Aviso"})
	require.NoError(t, err)

	require.NoError(t, mux.ProcessTask(context.Background(), task))
	require.Len(t, f.broadcasts, 1)
	assert.Equal(t, "lawyer", f.broadcasts[0].Role)
}

func TestMuxRunsCaseAnalysis(t *testing.T) {
	mux, f := newTestMux()
	task, _, err := tasks.NewCaseAnalysisTask("req-1")
	require.NoError(t, err)

	require.NoError(t, mux.ProcessTask(context.Background(), task))
	assert.Equal(t, []string{"req-1"}, f.analyzed)
}

func TestMuxSkipsRetryOnBadPayload(t *testing.T) {
	mux, _ := newTestMux()
	bad, _ := json.Marshal("not an object")

	err := mux.ProcessTask(context.Background(), asynq.NewTask(tasks.TypeCaseAnalysis, bad))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestMuxRunsScheduledJobs(t *testing.T) {
	mux, f := newTestMux()
	ctx := context.Background()
	for _, e := range Schedule {
		require.NoError(t, mux.ProcessTask(ctx, asynq.NewTask(e.Type, nil)), e.Type)
	}
	assert.ElementsMatch(t, []string{"inactive", "nightly", "nudges", "ingest", "cleanup"}, f.ran)
}

func TestMuxPropagatesJobErrors(t *testing.T) {
	mux, f := newTestMux()
	f.ingestErr = errors.New("feed down")

	err := mux.ProcessTask(context.Background(), asynq.NewTask(tasks.TypeNewsIngest, nil))
	assert.EqualError(t, err, "feed down")
}
