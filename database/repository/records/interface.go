package recordsRepo

import (
	"context"
	"time"

	"aliadolaboral/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// RecordRepository stores the append-mostly records of the platform:
// admin alerts, activity logs, payment ledger lines, analytics events and system config.
type RecordRepository interface {
	CreateAlert(ctx context.Context, alert *models.AdminAlert) error
	// ListAlerts returns unresolved alerts first, newest first within each group.
	ListAlerts(ctx context.Context, limit int64) ([]models.AdminAlert, error)
	ResolveAlert(ctx context.Context, id string) error
	CountAlerts(ctx context.Context, filter bson.M) (int64, error)

	LogActivity(ctx context.Context, entry *models.ActivityLog) error
	ListActivity(ctx context.Context, actions []string, limit int64) ([]models.ActivityLog, error)

	CreatePayment(ctx context.Context, record *models.PaymentRecord) error
	ListPayments(ctx context.Context, filter bson.M, limit int64) ([]models.PaymentRecord, error)
	CountPayments(ctx context.Context, filter bson.M) (int64, error)

	CreateEvent(ctx context.Context, event *models.AnalyticsEvent) error
	CountEvents(ctx context.Context, event string, since time.Time) (int64, error)

	GetConfig(ctx context.Context, keys []string) (map[string]string, error)
	SetConfig(ctx context.Context, key, value string) error
}

type mongoRecordRepo struct {
	alerts    *mongo.Collection
	activity  *mongo.Collection
	payments  *mongo.Collection
	events    *mongo.Collection
	sysConfig *mongo.Collection
}
