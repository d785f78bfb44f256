package feedRepo

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

// FeedRepository stores the processed legal news feed.
type FeedRepository interface {
	UpsertNews(ctx context.Context, news *models.LegalNews) error
	GetLatest(ctx context.Context) (*models.LegalNews, error)
	ExistsByLink(ctx context.Context, link string) (bool, error)
	ListNews(ctx context.Context, limit, offset int) ([]models.LegalNews, error)
	DeleteNews(ctx context.Context, id string) error
	// DeleteOlderThan removes headlines published before cutoff and returns how many went.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type MongoFeedRepo struct {
	coll *mongo.Collection
}

func NewMongoFeedRepo() FeedRepository {
	repo := &MongoFeedRepo{coll: database.Collection("legal_news")}
	if err := database.EnsureIndexes(repo.coll, []mongo.IndexModel{
		{Keys: bson.D{{Key: "link", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		{Keys: bson.D{{Key: "publishedAt", Value: -1}}},
	}); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func (r *MongoFeedRepo) UpsertNews(ctx context.Context, news *models.LegalNews) error {
	if news.Link == "" {
		return errors.New("news item must have a link")
	}
	ctx, cancel := context.WithTimeout(ctx, database.DefaultTimeout)
	defer cancel()

	if news.CreatedAt.IsZero() {
		news.CreatedAt = time.Now()
	}
	filter := bson.M{"link": news.Link}
	update := bson.M{"$set": news}
	opts := options.Update().SetUpsert(true)

	_, err := r.coll.UpdateOne(ctx, filter, update, opts)
	return err
}

func (r *MongoFeedRepo) GetLatest(ctx context.Context) (*models.LegalNews, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "publishedAt", Value: -1}})
	return database.FindOne[models.LegalNews](ctx, r.coll, bson.M{}, opts)
}

func (r *MongoFeedRepo) ExistsByLink(ctx context.Context, link string) (bool, error) {
	n, err := database.Count(ctx, r.coll, bson.M{"link": link})
	return n > 0, err
}

func (r *MongoFeedRepo) ListNews(ctx context.Context, limit, offset int) ([]models.LegalNews, error) {
	opts := options.Find().SetLimit(int64(limit)).SetSkip(int64(offset)).SetSort(bson.D{{Key: "publishedAt", Value: -1}})
	return database.FindMany[models.LegalNews](ctx, r.coll, bson.M{}, opts)
}

func (r *MongoFeedRepo) DeleteNews(ctx context.Context, id string) error {
	return database.DeleteByID(ctx, r.coll, id)
}

func (r *MongoFeedRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, database.DefaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteMany(ctx, bson.M{"publishedAt": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, fmt.Errorf("failed to clean up news: %w", err)
	}
	return res.DeletedCount, nil
}
