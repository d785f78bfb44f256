package profileRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"aliadolaboral/database"
	"aliadolaboral/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoProfileRepo implements ProfileRepository using MongoDB.
type MongoProfileRepo struct {
	workers    *mongo.Collection
	workerSubs *mongo.Collection
	pymes      *mongo.Collection
}

func NewMongoProfileRepo() ProfileRepository {
	repo := &MongoProfileRepo{
		workers:    database.Collection("worker_profiles"),
		workerSubs: database.Collection("worker_subscriptions"),
		pymes:      database.Collection("pyme_profiles"),
	}
	unique := options.Index().SetUnique(true)
	for _, coll := range []*mongo.Collection{repo.workers, repo.workerSubs, repo.pymes} {
		if err := database.EnsureIndexes(coll, []mongo.IndexModel{
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "userId", Value: 1}}},
		}); err != nil {
			fmt.Printf("failed to create indexes: %v\n", err)
		}
	}
	return repo
}

func (r *MongoProfileRepo) GetWorkerProfile(ctx context.Context, userID string) (*models.WorkerProfile, error) {
	return database.FindOne[models.WorkerProfile](ctx, r.workers, bson.M{"userId": userID})
}

func (r *MongoProfileRepo) UpsertWorkerProfile(ctx context.Context, profile *models.WorkerProfile) error {
	ctx, cancel := context.WithTimeout(ctx, database.DefaultTimeout)
	defer cancel()

	now := time.Now()
	profile.UpdatedAt = now
	update := bson.M{
		"$set": bson.M{
			"occupation":     profile.Occupation,
			"industry":       profile.Industry,
			"state":          profile.State,
			"employerName":   profile.EmployerName,
			"monthlySalary":  profile.MonthlySalary,
			"yearsOfService": profile.YearsOfService,
			"updatedAt":      now,
		},
		"$setOnInsert": bson.M{"id": profile.ID, "userId": profile.UserID, "createdAt": now},
	}
	_, err := r.workers.UpdateOne(ctx, bson.M{"userId": profile.UserID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert worker profile: %w", err)
	}
	return nil
}

func (r *MongoProfileRepo) ListPeerSalaries(ctx context.Context, occupation, excludeUserID string) ([]float64, error) {
	filter := bson.M{
		"occupation":    occupation,
		"userId":        bson.M{"$ne": excludeUserID},
		"monthlySalary": bson.M{"$gt": 0},
	}
	peers, err := database.FindMany[models.WorkerProfile](ctx, r.workers, filter,
		options.Find().SetProjection(bson.M{"monthlySalary": 1}))
	if err != nil {
		return nil, err
	}
	salaries := make([]float64, 0, len(peers))
	for _, p := range peers {
		salaries = append(salaries, p.MonthlySalary)
	}
	return salaries, nil
}

func (r *MongoProfileRepo) CreateWorkerSubscription(ctx context.Context, sub *models.WorkerSubscription) error {
	now := time.Now()
	sub.CreatedAt, sub.UpdatedAt = now, now
	return database.InsertOne(ctx, r.workerSubs, sub)
}

func (r *MongoProfileRepo) GetWorkerSubscription(ctx context.Context, userID string) (*models.WorkerSubscription, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return database.FindOne[models.WorkerSubscription](ctx, r.workerSubs, bson.M{"userId": userID}, opts)
}

func (r *MongoProfileRepo) UpdateWorkerSubscription(ctx context.Context, id string, fields bson.M) error {
	return database.SetByID(ctx, r.workerSubs, id, fields)
}

func (r *MongoProfileRepo) CountWorkerSubscriptions(ctx context.Context, filter bson.M) (int64, error) {
	return database.Count(ctx, r.workerSubs, filter)
}

func (r *MongoProfileRepo) CreatePymeProfile(ctx context.Context, profile *models.PymeProfile) error {
	now := time.Now()
	profile.CreatedAt, profile.UpdatedAt = now, now
	if profile.Employees == nil {
		profile.Employees = []models.Employee{}
	}
	return database.InsertOne(ctx, r.pymes, profile)
}

func (r *MongoProfileRepo) GetPymeProfile(ctx context.Context, userID string) (*models.PymeProfile, error) {
	return database.FindOne[models.PymeProfile](ctx, r.pymes, bson.M{"userId": userID})
}

func (r *MongoProfileRepo) UpdatePymeProfile(ctx context.Context, id string, fields bson.M) error {
	return database.SetByID(ctx, r.pymes, id, fields)
}

func (r *MongoProfileRepo) AddEmployee(ctx context.Context, profileID string, employee models.Employee) error {
	matched, err := database.UpdateOne(ctx, r.pymes, bson.M{"id": profileID}, bson.M{
		"$push": bson.M{"employees": employee},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		return err
	}
	if !matched {
		return fmt.Errorf("pyme profile with id %s not found", profileID)
	}
	return nil
}

func (r *MongoProfileRepo) AddPymeDocument(ctx context.Context, profileID string, doc models.PymeDocument, riskDrop, riskFloor int) (*models.PymeProfile, error) {
	lowered := bson.M{"$max": bson.A{riskFloor, bson.M{"$subtract": bson.A{"$riskScore", riskDrop}}}}
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"documents": bson.M{"$concatArrays": bson.A{bson.M{"$ifNull": bson.A{"$documents", bson.A{}}}, bson.M{"$literal": bson.A{doc}}}},
			"riskScore": lowered,
			"updatedAt": time.Now(),
		}}},
	}
	ctx, cancel := context.WithTimeout(ctx, database.DefaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var out models.PymeProfile
	if err := r.pymes.FindOneAndUpdate(ctx, bson.M{"id": profileID}, pipeline, opts).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("pyme profile with id %s not found", profileID)
		}
		return nil, fmt.Errorf("failed to add pyme document: %w", err)
	}
	return &out, nil
}
