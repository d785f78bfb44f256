package contactRepo

import (
	"context"
	"fmt"
	"time"

	"aliadolaboral/database"
	"aliadolaboral/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoContactRepo implements ContactRepository using MongoDB.
type MongoContactRepo struct {
	coll *mongo.Collection
}

func NewMongoContactRepo() ContactRepository {
	repo := &MongoContactRepo{coll: database.Collection("contact_requests")}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func (r *MongoContactRepo) ensureIndexes() error {
	return database.EnsureIndexes(r.coll, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "workerId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "lawyerProfileId", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "subStatus", Value: 1}, {Key: "lastLawyerActivityAt", Value: 1}}},
		{Keys: bson.D{{Key: "employerName", Value: 1}}},
	})
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}}

func (r *MongoContactRepo) Create(ctx context.Context, req *models.ContactRequest) error {
	now := time.Now()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = now
	}
	req.UpdatedAt = now
	if req.Documents == nil {
		req.Documents = []models.Document{}
	}
	return database.InsertOne(ctx, r.coll, req)
}

func (r *MongoContactRepo) GetByID(ctx context.Context, id string) (*models.ContactRequest, error) {
	return database.FindOne[models.ContactRequest](ctx, r.coll, bson.M{"id": id})
}

func (r *MongoContactRepo) UpdateFields(ctx context.Context, id string, fields bson.M) error {
	return database.SetByID(ctx, r.coll, id, fields)
}

func (r *MongoContactRepo) UpdateFieldsIf(ctx context.Context, id string, cond bson.M, fields bson.M) (bool, error) {
	filter := bson.M{"id": id}
	for k, v := range cond {
		filter[k] = v
	}
	set := bson.M{"updatedAt": time.Now()}
	for k, v := range fields {
		set[k] = v
	}
	return database.UpdateOne(ctx, r.coll, filter, bson.M{"$set": set})
}

func (r *MongoContactRepo) Apply(ctx context.Context, id string, update bson.M) error {
	set, _ := update["$set"].(bson.M)
	if set == nil {
		set = bson.M{}
	}
	set["updatedAt"] = time.Now()
	update["$set"] = set
	matched, err := database.UpdateOne(ctx, r.coll, bson.M{"id": id}, update)
	if err != nil {
		return err
	}
	if !matched {
		return fmt.Errorf("contact request with id %s not found", id)
	}
	return nil
}

func (r *MongoContactRepo) Delete(ctx context.Context, id string) error {
	return database.DeleteByID(ctx, r.coll, id)
}

func (r *MongoContactRepo) ListByWorker(ctx context.Context, workerID string) ([]models.ContactRequest, error) {
	return database.FindMany[models.ContactRequest](ctx, r.coll, bson.M{"workerId": workerID},
		options.Find().SetSort(newestFirst))
}

func (r *MongoContactRepo) ListByLawyerProfile(ctx context.Context, profileID, status string) ([]models.ContactRequest, error) {
	filter := bson.M{"lawyerProfileId": profileID}
	if status != "" {
		filter["status"] = status
	}
	return database.FindMany[models.ContactRequest](ctx, r.coll, filter, options.Find().SetSort(newestFirst))
}

func (r *MongoContactRepo) List(ctx context.Context, filter bson.M, limit int64) ([]models.ContactRequest, error) {
	if filter == nil {
		filter = bson.M{}
	}
	opts := options.Find().SetSort(newestFirst)
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return database.FindMany[models.ContactRequest](ctx, r.coll, filter, opts)
}

func (r *MongoContactRepo) Count(ctx context.Context, filter bson.M) (int64, error) {
	return database.Count(ctx, r.coll, filter)
}

func (r *MongoContactRepo) Sum(ctx context.Context, filter bson.M, field string) (float64, error) {
	type total struct {
		Total float64 `bson:"total"`
	}
	rows, err := database.Aggregate[total](ctx, r.coll, mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$" + field}}}},
	})
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

func (r *MongoContactRepo) FindStaleChats(ctx context.Context, cutoff time.Time) ([]models.ContactRequest, error) {
	return database.FindMany[models.ContactRequest](ctx, r.coll, bson.M{
		"status":               models.StatusAccepted,
		"subStatus":            models.SubChatActive,
		"lastLawyerActivityAt": bson.M{"$lt": cutoff},
	})
}

func (r *MongoContactRepo) FindUncontacted(ctx context.Context, cutoff time.Time) ([]models.ContactRequest, error) {
	return database.FindMany[models.ContactRequest](ctx, r.coll, bson.M{
		"status":     models.StatusAccepted,
		"crmStatus":  models.CRMNew,
		"acceptedAt": bson.M{"$lt": cutoff},
	})
}

func (r *MongoContactRepo) FindInactive(ctx context.Context, cutoff time.Time) ([]models.ContactRequest, error) {
	return database.FindMany[models.ContactRequest](ctx, r.coll, bson.M{
		"status":               models.StatusAccepted,
		"closedAt":             bson.M{"$exists": false},
		"crmStatus":            bson.M{"$nin": bson.A{models.CRMClosedWon, models.CRMClosedLost}},
		"subStatus":            bson.M{"$ne": models.SubNeedsAttention},
		"lastLawyerActivityAt": bson.M{"$lt": cutoff},
	})
}

func (r *MongoContactRepo) ListPendingPayments(ctx context.Context) ([]models.ContactRequest, error) {
	return database.FindMany[models.ContactRequest](ctx, r.coll, bson.M{
		"$or": bson.A{bson.M{"workerPaid": false}, bson.M{"lawyerPaid": false}},
		"status": bson.M{"$nin": bson.A{
			models.StatusRejected, models.StatusCanceled, models.StatusExpired,
		}},
	}, options.Find().SetSort(newestFirst))
}

func (r *MongoContactRepo) CollectiveCases(ctx context.Context, minCount int) ([]models.CollectiveCase, error) {
	return database.Aggregate[models.CollectiveCase](ctx, r.coll, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"employerName": bson.M{"$nin": bson.A{nil, ""}}}}},
		{{Key: "$group", Value: bson.M{
			"_id":            "$employerName",
			"count":          bson.M{"$sum": 1},
			"totalSeverance": bson.M{"$sum": "$estimatedSeverance"},
		}}},
		{{Key: "$match", Value: bson.M{"count": bson.M{"$gt": minCount}}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
	})
}
