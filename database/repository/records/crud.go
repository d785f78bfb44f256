package recordsRepo

import (
	"context"
	"fmt"
	"time"

	"aliadolaboral/database"
	"aliadolaboral/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NewMongoRecordRepo returns a new RecordRepository instance using MongoDB.
func NewMongoRecordRepo() RecordRepository {
	repo := &mongoRecordRepo{
		alerts:    database.Collection("admin_alerts"),
		activity:  database.Collection("activity_logs"),
		payments:  database.Collection("payment_records"),
		events:    database.Collection("analytics_events"),
		sysConfig: database.Collection("system_config"),
	}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func (r *mongoRecordRepo) ensureIndexes() error {
	if err := database.EnsureIndexes(r.alerts, []mongo.IndexModel{
		{Keys: bson.D{{Key: "resolved", Value: 1}, {Key: "createdAt", Value: -1}}},
	}); err != nil {
		return err
	}
	if err := database.EnsureIndexes(r.events, []mongo.IndexModel{
		{Keys: bson.D{{Key: "event", Value: 1}, {Key: "createdAt", Value: -1}}},
	}); err != nil {
		return err
	}
	return database.EnsureIndexes(r.sysConfig, []mongo.IndexModel{
		{Keys: bson.D{{Key: "key", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
}

func (r *mongoRecordRepo) CreateAlert(ctx context.Context, alert *models.AdminAlert) error {
	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}
	alert.CreatedAt = time.Now()
	return database.InsertOne(ctx, r.alerts, alert)
}

func (r *mongoRecordRepo) ListAlerts(ctx context.Context, limit int64) ([]models.AdminAlert, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "resolved", Value: 1}, {Key: "createdAt", Value: -1}}).
		SetLimit(limit)
	return database.FindMany[models.AdminAlert](ctx, r.alerts, bson.M{}, opts)
}

func (r *mongoRecordRepo) ResolveAlert(ctx context.Context, id string) error {
	matched, err := database.UpdateOne(ctx, r.alerts, bson.M{"id": id},
		bson.M{"$set": bson.M{"resolved": true, "resolvedAt": time.Now()}})
	if err != nil {
		return err
	}
	if !matched {
		return fmt.Errorf("alert %s not found", id)
	}
	return nil
}

func (r *mongoRecordRepo) CountAlerts(ctx context.Context, filter bson.M) (int64, error) {
	return database.Count(ctx, r.alerts, filter)
}

func (r *mongoRecordRepo) LogActivity(ctx context.Context, entry *models.ActivityLog) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	entry.CreatedAt = time.Now()
	return database.InsertOne(ctx, r.activity, entry)
}

func (r *mongoRecordRepo) ListActivity(ctx context.Context, actions []string, limit int64) ([]models.ActivityLog, error) {
	filter := bson.M{}
	if len(actions) > 0 {
		filter["action"] = bson.M{"$in": actions}
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(limit)
	return database.FindMany[models.ActivityLog](ctx, r.activity, filter, opts)
}

func (r *mongoRecordRepo) CreatePayment(ctx context.Context, record *models.PaymentRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.Currency == "" {
		record.Currency = models.Currency
	}
	record.CreatedAt = time.Now()
	return database.InsertOne(ctx, r.payments, record)
}

func (r *mongoRecordRepo) ListPayments(ctx context.Context, filter bson.M, limit int64) ([]models.PaymentRecord, error) {
	if filter == nil {
		filter = bson.M{}
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return database.FindMany[models.PaymentRecord](ctx, r.payments, filter, opts)
}

func (r *mongoRecordRepo) CountPayments(ctx context.Context, filter bson.M) (int64, error) {
	return database.Count(ctx, r.payments, filter)
}

func (r *mongoRecordRepo) CreateEvent(ctx context.Context, event *models.AnalyticsEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	return database.InsertOne(ctx, r.events, event)
}

func (r *mongoRecordRepo) CountEvents(ctx context.Context, event string, since time.Time) (int64, error) {
	filter := bson.M{"event": event}
	if !since.IsZero() {
		filter["createdAt"] = bson.M{"$gte": since}
	}
	return database.Count(ctx, r.events, filter)
}

func (r *mongoRecordRepo) GetConfig(ctx context.Context, keys []string) (map[string]string, error) {
	rows, err := database.FindMany[models.SystemConfig](ctx, r.sysConfig, bson.M{"key": bson.M{"$in": keys}})
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Value
	}
	return out, nil
}

func (r *mongoRecordRepo) SetConfig(ctx context.Context, key, value string) error {
	ctx, cancel := context.WithTimeout(ctx, database.DefaultTimeout)
	defer cancel()

	_, err := r.sysConfig.UpdateOne(ctx, bson.M{"key": key},
		bson.M{"$set": bson.M{"key": key, "value": value, "updatedAt": time.Now()}},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save config %s: %w", key, err)
	}
	return nil
}
