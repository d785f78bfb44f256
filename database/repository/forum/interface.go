package forumRepo

import (
	"context"

	"aliadolaboral/models"

	"go.mongodb.org/mongo-driver/bson"
)

// ForumRepository stores posts, answers and votes.
type ForumRepository interface {
	CreatePost(ctx context.Context, post *models.ForumPost) error
	GetPost(ctx context.Context, id string) (*models.ForumPost, error)
	// ListPosts returns posts matching filter, newest first.
	ListPosts(ctx context.Context, filter bson.M, limit int64) ([]models.ForumPost, error)
	UpdatePost(ctx context.Context, id string, update bson.M) error
	DeletePost(ctx context.Context, id string) error

	CreateAnswer(ctx context.Context, answer *models.ForumAnswer) error
	GetAnswer(ctx context.Context, id string) (*models.ForumAnswer, error)
	// ListAnswers returns accepted answers first, then oldest first.
	ListAnswers(ctx context.Context, postID string) ([]models.ForumAnswer, error)
	IncrementAnswerScore(ctx context.Context, id string, delta int) error
	DeleteAnswer(ctx context.Context, id string) error
	DeleteAnswersByPost(ctx context.Context, postID string) error

	GetVote(ctx context.Context, answerID, userID string) (*models.ForumVote, error)
	CreateVote(ctx context.Context, vote *models.ForumVote) error
	UpdateVoteValue(ctx context.Context, id string, value int) error
}
