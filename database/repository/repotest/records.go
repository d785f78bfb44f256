package repotest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"aliadolaboral/database/repository"
	"aliadolaboral/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// Records is an in-memory RecordRepository. Its slices are exported for assertions.
type Records struct {
	mu       sync.Mutex
	Alerts   []models.AdminAlert
	Activity []models.ActivityLog
	Events   []models.AnalyticsEvent
	Config   map[string]string
	payments *docStore
}

var _ repository.RecordRepository = (*Records)(nil)

func NewRecords() *Records {
	return &Records{Config: map[string]string{}, payments: newDocStore()}
}

func (r *Records) CreateAlert(ctx context.Context, alert *models.AdminAlert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}
	alert.CreatedAt = time.Now()
	r.Alerts = append(r.Alerts, *alert)
	return nil
}

func (r *Records) ListAlerts(ctx context.Context, limit int64) ([]models.AdminAlert, error) {
	r.mu.Lock()
	out := append([]models.AdminAlert(nil), r.Alerts...)
	r.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Resolved != out[j].Resolved {
			return !out[i].Resolved
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *Records) ResolveAlert(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.Alerts {
		if r.Alerts[i].ID == id {
			now := time.Now()
			r.Alerts[i].Resolved, r.Alerts[i].ResolvedAt = true, &now
			return nil
		}
	}
	return fmt.Errorf("alert %s not found", id)
}

func (r *Records) CountAlerts(ctx context.Context, filter bson.M) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.Alerts {
		doc, err := normalize(a)
		if err != nil {
			return 0, err
		}
		if Matches(doc, filter) {
			n++
		}
	}
	return n, nil
}

func (r *Records) LogActivity(ctx context.Context, entry *models.ActivityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	entry.CreatedAt = time.Now()
	r.Activity = append(r.Activity, *entry)
	return nil
}

func (r *Records) ListActivity(ctx context.Context, actions []string, limit int64) ([]models.ActivityLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ActivityLog
	for i := len(r.Activity) - 1; i >= 0; i-- {
		a := r.Activity[i]
		if len(actions) > 0 && !contains(actions, a.Action) {
			continue
		}
		out = append(out, a)
		if limit > 0 && int64(len(out)) == limit {
			break
		}
	}
	return out, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func (r *Records) CreatePayment(ctx context.Context, record *models.PaymentRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.Currency == "" {
		record.Currency = models.Currency
	}
	record.CreatedAt = time.Now()
	return r.payments.put(record.ID, record)
}

func (r *Records) ListPayments(ctx context.Context, filter bson.M, limit int64) ([]models.PaymentRecord, error) {
	out, err := findAs[models.PaymentRecord](r.payments, filter)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *Records) CountPayments(ctx context.Context, filter bson.M) (int64, error) {
	return int64(len(r.payments.find(filter))), nil
}

func (r *Records) CreateEvent(ctx context.Context, event *models.AnalyticsEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	r.Events = append(r.Events, *event)
	return nil
}

func (r *Records) CountEvents(ctx context.Context, event string, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, e := range r.Events {
		if e.Event == event && (since.IsZero() || !e.CreatedAt.Before(since)) {
			n++
		}
	}
	return n, nil
}

func (r *Records) GetConfig(ctx context.Context, keys []string) (map[string]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]string{}
	for _, k := range keys {
		if v, ok := r.Config[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (r *Records) SetConfig(ctx context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Config[key] = value
	return nil
}

// AlertsOfType returns the alerts raised with the given type.
func (r *Records) AlertsOfType(kind string) []models.AdminAlert {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.AdminAlert
	for _, a := range r.Alerts {
		if a.Type == kind {
			out = append(out, a)
		}
	}
	return out
}
