package forumRepo

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

type MongoForumRepo struct {
	posts   *mongo.Collection
	answers *mongo.Collection
	votes   *mongo.Collection
}

func NewMongoForumRepo() ForumRepository {
	repo := &MongoForumRepo{
		posts:   database.Collection("forum_posts"),
		answers: database.Collection("forum_answers"),
		votes:   database.Collection("forum_votes"),
	}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func (r *MongoForumRepo) ensureIndexes() error {
	unique := options.Index().SetUnique(true)
	if err := database.EnsureIndexes(r.posts, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "topic", Value: 1}, {Key: "createdAt", Value: -1}}},
	}); err != nil {
		return err
	}
	if err := database.EnsureIndexes(r.answers, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "postId", Value: 1}}},
	}); err != nil {
		return err
	}
	// One vote per user and answer.
	return database.EnsureIndexes(r.votes, []mongo.IndexModel{
		{Keys: bson.D{{Key: "answerId", Value: 1}, {Key: "userId", Value: 1}}, Options: unique},
	})
}

func (r *MongoForumRepo) CreatePost(ctx context.Context, post *models.ForumPost) error {
	now := time.Now()
	post.CreatedAt, post.UpdatedAt = now, now
	return database.InsertOne(ctx, r.posts, post)
}

func (r *MongoForumRepo) GetPost(ctx context.Context, id string) (*models.ForumPost, error) {
	return database.FindOne[models.ForumPost](ctx, r.posts, bson.M{"id": id})
}

func (r *MongoForumRepo) ListPosts(ctx context.Context, filter bson.M, limit int64) ([]models.ForumPost, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return database.FindMany[models.ForumPost](ctx, r.posts, filter, opts)
}

func (r *MongoForumRepo) UpdatePost(ctx context.Context, id string, update bson.M) error {
	_, err := database.UpdateOne(ctx, r.posts, bson.M{"id": id}, update)
	return err
}

func (r *MongoForumRepo) DeletePost(ctx context.Context, id string) error {
	return database.DeleteByID(ctx, r.posts, id)
}

func (r *MongoForumRepo) CreateAnswer(ctx context.Context, answer *models.ForumAnswer) error {
	answer.CreatedAt = time.Now()
	return database.InsertOne(ctx, r.answers, answer)
}

func (r *MongoForumRepo) GetAnswer(ctx context.Context, id string) (*models.ForumAnswer, error) {
	return database.FindOne[models.ForumAnswer](ctx, r.answers, bson.M{"id": id})
}

func (r *MongoForumRepo) ListAnswers(ctx context.Context, postID string) ([]models.ForumAnswer, error) {
	opts := options.Find().SetSort(bson.D{{Key: "isAccepted", Value: -1}, {Key: "createdAt", Value: 1}})
	return database.FindMany[models.ForumAnswer](ctx, r.answers, bson.M{"postId": postID}, opts)
}

func (r *MongoForumRepo) IncrementAnswerScore(ctx context.Context, id string, delta int) error {
	_, err := database.UpdateOne(ctx, r.answers, bson.M{"id": id}, bson.M{"$inc": bson.M{"score": delta}})
	return err
}

func (r *MongoForumRepo) DeleteAnswer(ctx context.Context, id string) error {
	return database.DeleteByID(ctx, r.answers, id)
}

func (r *MongoForumRepo) DeleteAnswersByPost(ctx context.Context, postID string) error {
	ctx, cancel := context.WithTimeout(ctx, database.DefaultTimeout)
	defer cancel()
	if _, err := r.answers.DeleteMany(ctx, bson.M{"postId": postID}); err != nil {
		return fmt.Errorf("failed to delete answers: %w", err)
	}
	return nil
}

func (r *MongoForumRepo) GetVote(ctx context.Context, answerID, userID string) (*models.ForumVote, error) {
	return database.FindOne[models.ForumVote](ctx, r.votes, bson.M{"answerId": answerID, "userId": userID})
}

func (r *MongoForumRepo) CreateVote(ctx context.Context, vote *models.ForumVote) error {
	now := time.Now()
	vote.CreatedAt, vote.UpdatedAt = now, now
	return database.InsertOne(ctx, r.votes, vote)
}

func (r *MongoForumRepo) UpdateVoteValue(ctx context.Context, id string, value int) error {
	return database.SetByID(ctx, r.votes, id, bson.M{"value": value})
}
