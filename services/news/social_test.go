package news

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"aliadolaboral/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type webhookSink struct {
	mu     sync.Mutex
	bodies [][]byte
	status int
}

func newWebhookSink(t *testing.T, status int) (*webhookSink, *httptest.Server) {
	t.Helper()
	sink := &webhookSink{status: status}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		sink.mu.Lock()
		sink.bodies = append(sink.bodies, b)
		sink.mu.Unlock()
		w.WriteHeader(sink.status)
	}))
	t.Cleanup(srv.Close)
	return sink, srv
}

func (s *webhookSink) received() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte{}, s.bodies...)
}

func TestCreateSharesToSocialWebhook(t *testing.T) {
	sink, srv := newWebhookSink(t, http.StatusOK)
	e := newEnv(t, rss())
	e.svc.Social = NewWebhookPublisher(srv.URL)

	n, err := e.svc.Create(context.Background(), models.CreateNewsRequest{
		Title: "Aviso", WorkerSummary: "Texto", LawyerSummary: "Resumen técnico",
	}, nil)
	require.NoError(t, err)

	bodies := sink.received()
	require.Len(t, bodies, 1)
	body := gjson.ParseBytes(bodies[0])
	assert.Equal(t, "news.published", body.Get("event").String())
	assert.Equal(t, "Aviso", body.Get("data.title").String())
	assert.Equal(t, "Resumen técnico", body.Get("data.content").String())
	assert.Equal(t, "Legal", body.Get("data.category").String())
	assert.Equal(t, "https://aliadolaboral.com/news/"+n.ID, body.Get("data.link").String())
	assert.Equal(t, "2026-06-10T09:00:00.000Z", body.Get("data.timestamp").String())
	assert.Len(t, body.Get("data.hashtags").Array(), 4)
}

func TestIngestSharesToSocialWebhook(t *testing.T) {
	sink, srv := newWebhookSink(t, http.StatusOK)
	e := newEnv(t, rss(item("Reforma laboral", "https://news.example/reforma", now.Add(-2*time.Hour))))
	e.svc.Social = NewWebhookPublisher(srv.URL)

	n, err := e.svc.Ingest(context.Background())
	require.NoError(t, err)
	require.NotNil(t, n)

	bodies := sink.received()
	require.Len(t, bodies, 1)
	assert.Equal(t, "Sube el salario mínimo", gjson.GetBytes(bodies[0], "data.title").String())
	assert.Equal(t, "Reforma al art. 90", gjson.GetBytes(bodies[0], "data.content").String())
}

func TestSocialWebhookFailureDoesNotBlockPublishing(t *testing.T) {
	sink, srv := newWebhookSink(t, http.StatusBadGateway)
	e := newEnv(t, rss())
	e.svc.Social = NewWebhookPublisher(srv.URL)

	n, err := e.svc.Create(context.Background(), models.CreateNewsRequest{Title: "Aviso", WorkerSummary: "Texto"}, nil)
	require.NoError(t, err)
	assert.Len(t, sink.received(), 1)

	stored, err := e.repo.ExistsByLink(context.Background(), n.Link)
	require.NoError(t, err)
	assert.True(t, stored)
}

func TestWebhookPublisherSkipsWithoutURL(t *testing.T) {
	err := NewWebhookPublisher("").Publish(context.Background(), &models.LegalNews{ID: "n1"})
	assert.NoError(t, err)

	err = NewWebhookPublisher("http://127.0.0.1:1/unreachable").Publish(context.Background(), &models.LegalNews{ID: "n1"})
	assert.Error(t, err)
}
