package legalcaseRepo

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

type LegalCaseRepository interface {
	Create(ctx context.Context, lc *models.LegalCase) error
	GetByID(ctx context.Context, id string) (*models.LegalCase, error)
	ListByUser(ctx context.Context, userID string) ([]models.LegalCase, error)
	AddEvent(ctx context.Context, id string, event models.CaseEvent) error
	// DeleteByUser removes every case of a user and reports how many went.
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

type MongoLegalCaseRepo struct {
	coll *mongo.Collection
}

func NewMongoLegalCaseRepo() LegalCaseRepository {
	repo := &MongoLegalCaseRepo{coll: database.Collection("legal_cases")}
	if err := database.EnsureIndexes(repo.coll, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}}},
	}); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func (r *MongoLegalCaseRepo) Create(ctx context.Context, lc *models.LegalCase) error {
	now := time.Now()
	lc.CreatedAt, lc.UpdatedAt = now, now
	if lc.History == nil {
		lc.History = []models.CaseEvent{}
	}
	return database.InsertOne(ctx, r.coll, lc)
}

func (r *MongoLegalCaseRepo) GetByID(ctx context.Context, id string) (*models.LegalCase, error) {
	return database.FindOne[models.LegalCase](ctx, r.coll, bson.M{"id": id})
}

func (r *MongoLegalCaseRepo) ListByUser(ctx context.Context, userID string) ([]models.LegalCase, error) {
	return database.FindMany[models.LegalCase](ctx, r.coll, bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func (r *MongoLegalCaseRepo) AddEvent(ctx context.Context, id string, event models.CaseEvent) error {
	matched, err := database.UpdateOne(ctx, r.coll, bson.M{"id": id}, bson.M{
		"$push": bson.M{"history": event},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		return err
	}
	if !matched {
		return fmt.Errorf("legal case %s not found", id)
	}
	return nil
}

func (r *MongoLegalCaseRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, database.DefaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteMany(ctx, bson.M{"userId": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete legal cases: %w", err)
	}
	return res.DeletedCount, nil
}
