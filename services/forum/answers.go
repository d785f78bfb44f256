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

func (s *DefaultForumService) Answer(ctx context.Context, userID, postID string, in models.CreateAnswerRequest) (*models.ForumAnswer, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, utils.BadRequest("La respuesta no puede estar vacía")
	}
	if ContainsPhoneNumber(content) {
		return nil, utils.BadRequest("Por seguridad y privacidad, no está permitido publicar números de teléfono.")
	}
	post, err := s.Forum.GetPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to load post: %w", err)
	}
	if post == nil {
		return nil, utils.NotFound("Publicación no encontrada")
	}
	if in.ParentID != "" {
		parent, err := s.Forum.GetAnswer(ctx, in.ParentID)
		if err != nil {
			return nil, fmt.Errorf("failed to load parent answer: %w", err)
		}
		if parent == nil || parent.PostID != postID {
			return nil, utils.BadRequest("Respuesta padre inválida")
		}
	}

	answer := &models.ForumAnswer{
		ID:         uuid.New().String(),
		PostID:     postID,
		ParentID:   in.ParentID,
		AuthorID:   userID,
		AuthorName: s.authorName(ctx, userID),
		Content:    MaskProfanity(content),
		CreatedAt:  s.now(),
	}
	// Answers written from a lawyer account count towards that lawyer's reputation.
	lawyer, err := s.Lawyers.GetLawyerByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve author: %w", err)
	}
	if lawyer != nil {
		answer.LawyerID = lawyer.ID
	}

	if err := s.Forum.CreateAnswer(ctx, answer); err != nil {
		return nil, fmt.Errorf("failed to create answer: %w", err)
	}
	if err := s.Forum.UpdatePost(ctx, postID, bson.M{"$inc": bson.M{"answerCount": 1}}); err != nil {
		utils.GetLogger().Warn("failed to bump answer count", zap.String("postId", postID), zap.Error(err))
	}
	return answer, nil
}

// Vote records a +1/-1 vote. Repeating the same vote is a no-op and flipping it moves the score by two.
func (s *DefaultForumService) Vote(ctx context.Context, userID, answerID string, value int) (*models.VoteResult, error) {
	if value != 1 && value != -1 {
		return nil, utils.BadRequest("El voto debe ser 1 o -1")
	}
	answer, err := s.Forum.GetAnswer(ctx, answerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answer: %w", err)
	}
	if answer == nil {
		return nil, utils.NotFound("Respuesta no encontrada")
	}
	existing, err := s.Forum.GetVote(ctx, answerID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load vote: %w", err)
	}

	var delta int
	switch {
	case existing != nil && existing.Value == value:
		return &models.VoteResult{Message: "Already voted", NewScore: answer.Score}, nil
	case existing != nil:
		delta = 2 * value
		if err := s.Forum.UpdateVoteValue(ctx, existing.ID, value); err != nil {
			return nil, fmt.Errorf("failed to update vote: %w", err)
		}
	default:
		delta = value
		vote := &models.ForumVote{ID: uuid.New().String(), AnswerID: answerID, UserID: userID, Value: value}
		if err := s.Forum.CreateVote(ctx, vote); err != nil {
			return nil, fmt.Errorf("failed to save vote: %w", err)
		}
	}
	if err := s.Forum.IncrementAnswerScore(ctx, answerID, delta); err != nil {
		return nil, fmt.Errorf("failed to update score: %w", err)
	}

	if answer.LawyerID != "" {
		s.adjustReputation(ctx, answer.LawyerID, float64(delta)*ReputationPerVote)
	}
	return &models.VoteResult{Success: true, NewScore: answer.Score + delta}, nil
}

func (s *DefaultForumService) adjustReputation(ctx context.Context, lawyerID string, points float64) {
	logger := utils.GetLogger().With(zap.String("lawyerId", lawyerID))
	profile, err := s.Lawyers.GetProfileByLawyerID(ctx, lawyerID)
	if err != nil || profile == nil {
		logger.Debug("skipped reputation update, no profile", zap.Error(err))
		return
	}
	if err := s.Lawyers.IncrementProfile(ctx, profile.ID, bson.M{"reputation": points}); err != nil {
		logger.Warn("failed to update reputation", zap.Error(err))
	}
}

func (s *DefaultForumService) DeleteAnswer(ctx context.Context, userID, role, answerID string) error {
	answer, err := s.Forum.GetAnswer(ctx, answerID)
	if err != nil {
		return fmt.Errorf("failed to load answer: %w", err)
	}
	if answer == nil {
		return utils.NotFound("Respuesta no encontrada")
	}
	if role != utils.RoleAdmin && answer.AuthorID != userID {
		return utils.Forbidden("No puedes eliminar esta respuesta")
	}
	if err := s.Forum.DeleteAnswer(ctx, answerID); err != nil {
		return err
	}
	if err := s.Forum.UpdatePost(ctx, answer.PostID, bson.M{"$inc": bson.M{"answerCount": -1}}); err != nil {
		utils.GetLogger().Warn("failed to lower answer count", zap.String("postId", answer.PostID), zap.Error(err))
	}
	return nil
}
