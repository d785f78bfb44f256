package chatRepo

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

// ChatRepository stores chat messages of contact requests.
type ChatRepository interface {
	Create(ctx context.Context, msg *models.ChatMessage) error
	// ListByRequest returns up to limit messages, oldest first.
	ListByRequest(ctx context.Context, requestID string, limit int64) ([]models.ChatMessage, error)
	// MarkRead stamps readAt on messages not sent by readerID.
	MarkRead(ctx context.Context, requestID, readerID string) error
}

type MongoChatRepo struct {
	coll *mongo.Collection
}

func NewMongoChatRepo() ChatRepository {
	repo := &MongoChatRepo{coll: database.Collection("chat_messages")}
	if err := database.EnsureIndexes(repo.coll, []mongo.IndexModel{
		{Keys: bson.D{{Key: "requestId", Value: 1}, {Key: "createdAt", Value: 1}}},
	}); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func (r *MongoChatRepo) Create(ctx context.Context, msg *models.ChatMessage) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	return database.InsertOne(ctx, r.coll, msg)
}

func (r *MongoChatRepo) ListByRequest(ctx context.Context, requestID string, limit int64) ([]models.ChatMessage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}).SetLimit(limit)
	return database.FindMany[models.ChatMessage](ctx, r.coll, bson.M{"requestId": requestID}, opts)
}

func (r *MongoChatRepo) MarkRead(ctx context.Context, requestID, readerID string) error {
	ctx, cancel := context.WithTimeout(ctx, database.DefaultTimeout)
	defer cancel()

	_, err := r.coll.UpdateMany(ctx,
		bson.M{"requestId": requestID, "senderId": bson.M{"$ne": readerID}, "readAt": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"readAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark messages read: %w", err)
	}
	return nil
}
