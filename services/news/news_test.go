package news

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"aliadolaboral/database/repository/repotest"
	"aliadolaboral/models"
	"aliadolaboral/services/notification/notificationtest"
	"aliadolaboral/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSummarizer struct {
	out   string
	err   error
	calls int
}

func (s *stubSummarizer) Complete(ctx context.Context, system, prompt string, smart bool) (string, error) {
	s.calls++
	return s.out, s.err
}

const summaryJSON = "```json\n" + `{"titulo_clickeable":"Sube el salario mínimo","resumen_trabajador":"Ganarás más","resumen_pyme":"Ajusta tu nómina","resumen_abogado":"Reforma al art. 90","pregunta_quiz":"¿Cuánto sube?"}` + "\n```"

var now = time.Date(2026, 6, 10, 9, 0, 0, 0, time.UTC)

func rss(items ...string) string {
	body := ""
	for _, it := range items {
		body += it
	}
	return `<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>Google News</title>` + body + `</channel></rss>`
}

func item(title, link string, published time.Time) string {
	return fmt.Sprintf(`<item><title>%s</title><link>%s</link><description>Fragmento de %s</description><pubDate>%s</pubDate></item>`,
		title, link, title, published.Format(time.RFC1123Z))
}

type env struct {
	svc      *DefaultNewsService
	repo     *repotest.News
	ai       *stubSummarizer
	notifier *notificationtest.Recorder
	mr       *miniredis.Miniredis
}

func newEnv(t *testing.T, feed string) *env {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, feed)
	}))
	t.Cleanup(srv.Close)
	mr := miniredis.RunT(t)
	e := &env{
		repo:     repotest.NewNews(),
		ai:       &stubSummarizer{out: summaryJSON},
		notifier: &notificationtest.Recorder{},
		mr:       mr,
	}
	e.svc = NewDefaultNewsService(e.repo, e.ai, e.notifier, nil, redis.NewClient(&redis.Options{Addr: mr.Addr()}), srv.URL)
	e.svc.Now = func() time.Time { return now }
	return e
}

func TestIngestPublishesFreshestItem(t *testing.T) {
	e := newEnv(t, rss(
		item("Nota vieja", "https://news.example/old", now.Add(-48*time.Hour)),
		item("Reforma laboral", "https://news.example/reforma", now.Add(-2*time.Hour)),
	))
	ctx := context.Background()

	n, err := e.svc.Ingest(ctx)
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, "https://news.example/reforma", n.Link)
	assert.Equal(t, "Sube el salario mínimo", n.ClickableTitle)
	assert.Equal(t, "Ajusta tu nómina", n.PymeSummary)
	assert.Contains(t, stockImages, n.ImageURL)

	require.Len(t, e.notifier.Broadcasts, 1)
	assert.Equal(t, "Sube el salario mínimo", e.notifier.Broadcasts[0].Body)
	assert.Equal(t, n.ID, e.notifier.Broadcasts[0].Data["newsId"])

	again, err := e.svc.Ingest(ctx)
	require.NoError(t, err)
	assert.Nil(t, again, "same link is not published twice")
	assert.Equal(t, 1, e.ai.calls)
}

func TestIngestWithoutFreshItems(t *testing.T) {
	e := newEnv(t, rss(item("Nota vieja", "https://news.example/old", now.Add(-30*time.Hour))))
	n, err := e.svc.Ingest(context.Background())
	require.NoError(t, err)
	assert.Nil(t, n)
	assert.Empty(t, e.notifier.Broadcasts)
}

func TestIngestFallsBackToSnippet(t *testing.T) {
	e := newEnv(t, rss(item("Paro en maquilas", "https://news.example/paro", now.Add(-time.Hour))))
	e.ai.err = errors.New("rate limited")

	n, err := e.svc.Ingest(context.Background())
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, "Paro en maquilas", n.ClickableTitle)
	assert.Contains(t, n.WorkerSummary, pendingSummary)
	assert.Contains(t, n.WorkerSummary, "Fragmento de Paro en maquilas")
	assert.Equal(t, "¿Te interesa esta noticia?", n.QuizQuestion)
}

func TestFeedByRoleAndCache(t *testing.T) {
	e := newEnv(t, rss())
	ctx := context.Background()

	items, err := e.svc.Feed(ctx, utils.RoleWorker)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "welcome-news", items[0].ID)

	_, err = e.svc.Create(ctx, models.CreateNewsRequest{OriginalText: "La Secretaría del Trabajo anunció un aumento al salario mínimo."}, nil)
	require.NoError(t, err)

	worker, err := e.svc.Feed(ctx, utils.RoleWorker)
	require.NoError(t, err)
	require.Len(t, worker, 1)
	assert.Equal(t, "Ganarás más", worker[0].Summary)
	assert.True(t, e.mr.Exists(feedCachePrefix+utils.RoleWorker))

	lawyer, err := e.svc.Feed(ctx, utils.RoleLawyer)
	require.NoError(t, err)
	assert.Equal(t, "Reforma al art. 90", lawyer[0].Summary)

	pyme, err := e.svc.Feed(ctx, utils.RolePyme)
	require.NoError(t, err)
	assert.Equal(t, "Ajusta tu nómina", pyme[0].Summary)

	other, err := e.svc.Feed(ctx, utils.RoleSupervisor)
	require.NoError(t, err)
	assert.Equal(t, utils.RoleWorker, other[0].RoleContext)

	require.NoError(t, e.svc.Delete(ctx, worker[0].ID))
	assert.False(t, e.mr.Exists(feedCachePrefix+utils.RoleWorker))
	items, err = e.svc.Feed(ctx, utils.RoleWorker)
	require.NoError(t, err)
	assert.Equal(t, "welcome-news", items[0].ID)
}

func TestCreateValidates(t *testing.T) {
	e := newEnv(t, rss())
	ctx := context.Background()

	_, err := e.svc.Create(ctx, models.CreateNewsRequest{OriginalText: "corto"}, nil)
	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusBadRequest, appErr.Status)

	n, err := e.svc.Create(ctx, models.CreateNewsRequest{Title: "Aviso", WorkerSummary: "Texto", PymeSummary: "Texto pyme"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Aviso", n.ClickableTitle)
	assert.Contains(t, n.Link, n.ID)
	assert.Zero(t, e.ai.calls)

	e.ai.out = "no es json"
	_, err = e.svc.Create(ctx, models.CreateNewsRequest{OriginalText: "Texto suficientemente largo para procesar."}, nil)
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
}

func TestCleanup(t *testing.T) {
	e := newEnv(t, rss())
	ctx := context.Background()
	require.NoError(t, e.repo.UpsertNews(ctx, &models.LegalNews{ID: "old", Link: "https://news.example/a", PublishedAt: now.AddDate(0, 0, -8)}))
	require.NoError(t, e.repo.UpsertNews(ctx, &models.LegalNews{ID: "new", Link: "https://news.example/b", PublishedAt: now.AddDate(0, 0, -1)}))

	removed, err := e.svc.Cleanup(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)
	left, _ := e.repo.ListNews(ctx, 10, 0)
	require.Len(t, left, 1)
	assert.Equal(t, "new", left[0].ID)
}
