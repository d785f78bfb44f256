package forum

import (
	"context"
	"fmt"
	"strings"

	"aliadolaboral/models"
	"aliadolaboral/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

const phoneForbiddenMsg = "Por seguridad y privacidad, no está permitido publicar números de teléfono en el foro."

func (s *DefaultForumService) authorName(ctx context.Context, userID string) string {
	user, err := s.Users.GetByID(ctx, userID)
	if err != nil || user == nil {
		return "Usuario"
	}
	return user.FullName
}

func (s *DefaultForumService) CreatePost(ctx context.Context, userID string, in models.CreatePostRequest) (*models.ForumPost, error) {
	title, content := strings.TrimSpace(in.Title), strings.TrimSpace(in.Content)
	if title == "" || content == "" {
		return nil, utils.BadRequest("Título y contenido son requeridos")
	}
	if ContainsPhoneNumber(title) || ContainsPhoneNumber(content) {
		return nil, utils.BadRequest(phoneForbiddenMsg)
	}
	post := &models.ForumPost{
		ID:         uuid.New().String(),
		AuthorID:   userID,
		AuthorName: s.authorName(ctx, userID),
		Title:      MaskProfanity(title),
		Content:    MaskProfanity(content),
		Topic:      in.Topic,
		CreatedAt:  s.now(),
	}
	if err := s.Forum.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return post, nil
}

func (s *DefaultForumService) ListPosts(ctx context.Context, role, topic, filter string) ([]models.ForumPost, error) {
	query := bson.M{}
	if topic != "" {
		query["topic"] = topic
	}
	if filter == FilterUnanswered {
		query["answerCount"] = 0
	}
	if role != utils.RoleAdmin {
		query["isHidden"] = false
		query["createdAt"] = bson.M{"$gte": s.now().Add(-VisibilityWindow)}
	}
	posts, err := s.Forum.ListPosts(ctx, query, listLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

func (s *DefaultForumService) GetPost(ctx context.Context, role, postID string) (*models.ForumPostDetail, error) {
	post, err := s.Forum.GetPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to load post: %w", err)
	}
	if post == nil || (post.IsHidden && role != utils.RoleAdmin) {
		return nil, utils.NotFound("Publicación no encontrada")
	}
	answers, err := s.Forum.ListAnswers(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers: %w", err)
	}
	if err := s.Forum.UpdatePost(ctx, postID, bson.M{"$inc": bson.M{"views": 1}}); err != nil {
		utils.GetLogger().Warn("failed to count post view", zap.String("postId", postID), zap.Error(err))
	}
	post.Views++
	return &models.ForumPostDetail{ForumPost: *post, Answers: answers}, nil
}

func (s *DefaultForumService) DeletePost(ctx context.Context, userID, role, postID string) error {
	post, err := s.Forum.GetPost(ctx, postID)
	if err != nil {
		return fmt.Errorf("failed to load post: %w", err)
	}
	if post == nil {
		return utils.NotFound("Publicación no encontrada")
	}
	if role != utils.RoleAdmin && post.AuthorID != userID {
		return utils.Forbidden("No puedes eliminar esta publicación")
	}
	if err := s.Forum.DeleteAnswersByPost(ctx, postID); err != nil {
		return err
	}
	return s.Forum.DeletePost(ctx, postID)
}

func (s *DefaultForumService) HidePost(ctx context.Context, postID string) error {
	post, err := s.Forum.GetPost(ctx, postID)
	if err != nil {
		return fmt.Errorf("failed to load post: %w", err)
	}
	if post == nil {
		return utils.NotFound("Publicación no encontrada")
	}
	return s.Forum.UpdatePost(ctx, postID, bson.M{"$set": bson.M{"isHidden": true, "updatedAt": s.now()}})
}
