package vaultRepo

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

// VaultRepository stores metadata of files kept in the evidence vault.
type VaultRepository interface {
	Create(ctx context.Context, file *models.VaultFile) error
	GetByID(ctx context.Context, id string) (*models.VaultFile, error)
	ListByUser(ctx context.Context, userID string) ([]models.VaultFile, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	// CountOwners returns how many distinct users keep at least one file.
	CountOwners(ctx context.Context) (int64, error)
}

type MongoVaultRepo struct {
	coll *mongo.Collection
}

func NewMongoVaultRepo() VaultRepository {
	repo := &MongoVaultRepo{coll: database.Collection("vault_files")}
	if err := database.EnsureIndexes(repo.coll, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
	}); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func (r *MongoVaultRepo) Create(ctx context.Context, file *models.VaultFile) error {
	file.CreatedAt = time.Now()
	return database.InsertOne(ctx, r.coll, file)
}

func (r *MongoVaultRepo) GetByID(ctx context.Context, id string) (*models.VaultFile, error) {
	return database.FindOne[models.VaultFile](ctx, r.coll, bson.M{"id": id})
}

func (r *MongoVaultRepo) ListByUser(ctx context.Context, userID string) ([]models.VaultFile, error) {
	return database.FindMany[models.VaultFile](ctx, r.coll, bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func (r *MongoVaultRepo) Delete(ctx context.Context, id string) error {
	return database.DeleteByID(ctx, r.coll, id)
}

func (r *MongoVaultRepo) Count(ctx context.Context) (int64, error) {
	return database.Count(ctx, r.coll, bson.M{})
}

func (r *MongoVaultRepo) CountOwners(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, database.DefaultTimeout)
	defer cancel()

	owners, err := r.coll.Distinct(ctx, "userId", bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count vault owners: %w", err)
	}
	return int64(len(owners)), nil
}
