package supervisor

import (
	"context"
	"fmt"
	"time"

	"aliadolaboral/database/repository"
	"aliadolaboral/models"
	"aliadolaboral/services/notification"
	"aliadolaboral/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// SupervisorService runs the lawyer verification queue.
type SupervisorService interface {
	PendingLawyers(ctx context.Context) ([]models.PendingLawyer, error)
	// SetVerified approves (or suspends, when verified is false) a lawyer.
	SetVerified(ctx context.Context, actorID, lawyerID string, verified bool) (*models.Lawyer, error)
	// Reject turns the applicant back into a free worker and drops the lawyer records.
	Reject(ctx context.Context, actorID, lawyerID string) error
	Stats(ctx context.Context) (*models.SupervisorStats, error)
}

type DefaultSupervisorService struct {
	Users    repository.UserRepository
	Lawyers  repository.LawyerRepository
	Contacts repository.ContactRepository
	Records  repository.RecordRepository
	Notifier notification.NotificationService
	Now      func() time.Time
}

func NewDefaultSupervisorService(
	users repository.UserRepository,
	lawyers repository.LawyerRepository,
	contacts repository.ContactRepository,
	records repository.RecordRepository,
	notifier notification.NotificationService,
) *DefaultSupervisorService {
	return &DefaultSupervisorService{
		Users:    users,
		Lawyers:  lawyers,
		Contacts: contacts,
		Records:  records,
		Notifier: notifier,
		Now:      time.Now,
	}
}

func (s *DefaultSupervisorService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultSupervisorService) PendingLawyers(ctx context.Context) ([]models.PendingLawyer, error) {
	lawyers, err := s.Lawyers.ListLawyers(ctx, bson.M{"isVerified": false}, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending lawyers: %w", err)
	}
	ids := make([]string, 0, len(lawyers))
	for _, l := range lawyers {
		ids = append(ids, l.UserID)
	}
	users, err := s.Users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	out := make([]models.PendingLawyer, 0, len(lawyers))
	for _, l := range lawyers {
		row := models.PendingLawyer{Lawyer: l}
		if u, ok := users[l.UserID]; ok {
			row.FullName, row.Email = u.FullName, u.Email
		}
		if row.Profile, err = s.Lawyers.GetProfileByLawyerID(ctx, l.ID); err != nil {
			return nil, fmt.Errorf("failed to load profile: %w", err)
		}
		if row.Subscription, err = s.Lawyers.GetSubscriptionByLawyerID(ctx, l.ID); err != nil {
			return nil, fmt.Errorf("failed to load subscription: %w", err)
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *DefaultSupervisorService) SetVerified(ctx context.Context, actorID, lawyerID string, verified bool) (*models.Lawyer, error) {
	lawyer, err := s.Lawyers.GetLawyerByID(ctx, lawyerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lawyer: %w", err)
	}
	if lawyer == nil {
		return nil, utils.NotFound("Abogado no encontrado")
	}
	fields := bson.M{"isVerified": verified}
	if verified {
		fields["verifiedAt"] = s.now()
	}
	if err := s.Lawyers.UpdateLawyerFields(ctx, lawyerID, fields); err != nil {
		return nil, utils.Internal("No se pudo verificar al abogado", err.Error())
	}
	s.audit(ctx, actorID, models.ActionVerifyLawyer, lawyerID, fmt.Sprintf("isVerified=%t", verified))

	if verified && !lawyer.IsVerified && s.Notifier != nil {
		if err := s.Notifier.NotifyUser(ctx, lawyer.UserID, "✅ Cuenta verificada",
			"Tu cédula fue validada. Ya puedes recibir casos en Aliado Laboral.", map[string]string{"type": "lawyer_verified"}); err != nil {
			utils.GetLogger().Warn("failed to notify verified lawyer", zap.String("lawyerId", lawyerID), zap.Error(err))
		}
	}
	return s.Lawyers.GetLawyerByID(ctx, lawyerID)
}

func (s *DefaultSupervisorService) Reject(ctx context.Context, actorID, lawyerID string) error {
	lawyer, err := s.Lawyers.GetLawyerByID(ctx, lawyerID)
	if err != nil {
		return fmt.Errorf("failed to load lawyer: %w", err)
	}
	if lawyer == nil {
		return utils.NotFound("Abogado no encontrado")
	}
	if err := s.Users.UpdateFields(ctx, lawyer.UserID, bson.M{
		"role": utils.RoleWorker,
		"plan": models.PlanFree,
	}); err != nil {
		return utils.Internal("Error al rechazar abogado", err.Error())
	}
	if err := s.Lawyers.DeleteProfileByLawyerID(ctx, lawyerID); err != nil {
		return fmt.Errorf("failed to delete lawyer profile: %w", err)
	}
	if err := s.Lawyers.DeleteSubscriptionByLawyerID(ctx, lawyerID); err != nil {
		return fmt.Errorf("failed to delete lawyer subscription: %w", err)
	}
	if err := s.Lawyers.DeleteLawyer(ctx, lawyerID); err != nil {
		return fmt.Errorf("failed to delete lawyer: %w", err)
	}
	s.audit(ctx, actorID, models.ActionRejectLawyer, lawyerID, lawyer.UserID)
	return nil
}

func (s *DefaultSupervisorService) Stats(ctx context.Context) (*models.SupervisorStats, error) {
	pending, err := s.Lawyers.CountLawyers(ctx, bson.M{"isVerified": false})
	if err != nil {
		return nil, fmt.Errorf("failed to count pending lawyers: %w", err)
	}
	recent, err := s.Contacts.Count(ctx, bson.M{
		"status":                models.StatusAccepted,
		"bothPaymentsSucceeded": true,
		"acceptedAt":            bson.M{"$gte": s.now().Add(-24 * time.Hour)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count recent payments: %w", err)
	}
	return &models.SupervisorStats{PendingLawyers: pending, RecentPayments: recent}, nil
}

func (s *DefaultSupervisorService) audit(ctx context.Context, actorID, action, targetID, details string) {
	if err := s.Records.LogActivity(ctx, &models.ActivityLog{
		ID:       uuid.New().String(),
		ActorID:  actorID,
		Action:   action,
		TargetID: targetID,
		Details:  details,
	}); err != nil {
		utils.GetLogger().Error("failed to write activity log", zap.String("action", action), zap.Error(err))
	}
}
