package forum

import (
	"context"
	"time"

	"aliadolaboral/database/repository"
	"aliadolaboral/models"
)

// ForumService runs the public Q&A where workers ask and lawyers answer.
type ForumService interface {
	CreatePost(ctx context.Context, userID string, in models.CreatePostRequest) (*models.ForumPost, error)
	// ListPosts lists visible posts; non-admins only see the last week.
	ListPosts(ctx context.Context, role, topic, filter string) ([]models.ForumPost, error)
	GetPost(ctx context.Context, role, postID string) (*models.ForumPostDetail, error)
	Answer(ctx context.Context, userID, postID string, in models.CreateAnswerRequest) (*models.ForumAnswer, error)
	Vote(ctx context.Context, userID, answerID string, value int) (*models.VoteResult, error)
	DeletePost(ctx context.Context, userID, role, postID string) error
	DeleteAnswer(ctx context.Context, userID, role, answerID string) error
	HidePost(ctx context.Context, postID string) error
}

const (
	// VisibilityWindow is how far back non-admin users can browse.
	VisibilityWindow = 7 * 24 * time.Hour
	// ReputationPerVote is the reputation a lawyer earns per net vote on an answer.
	ReputationPerVote = 0.5

	FilterUnanswered = "unanswered"
	listLimit        = 100
)

type DefaultForumService struct {
	Forum   repository.ForumRepository
	Users   repository.UserRepository
	Lawyers repository.LawyerRepository
	Now     func() time.Time
}

func NewDefaultForumService(forum repository.ForumRepository, users repository.UserRepository, lawyers repository.LawyerRepository) *DefaultForumService {
	return &DefaultForumService{Forum: forum, Users: users, Lawyers: lawyers, Now: time.Now}
}

func (s *DefaultForumService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
