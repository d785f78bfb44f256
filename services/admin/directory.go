package admin

import (
	"context"
	"fmt"

	"aliadolaboral/models"
	"aliadolaboral/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

const noCompanyName = "Sin Razón Social"

func (s *DefaultAdminService) ListLawyers(ctx context.Context) ([]models.AdminLawyer, error) {
	lawyers, err := s.Lawyers.ListLawyers(ctx, bson.M{}, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list lawyers: %w", err)
	}
	ids := make([]string, 0, len(lawyers))
	for _, l := range lawyers {
		ids = append(ids, l.UserID)
	}
	users, err := s.Users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load lawyer users: %w", err)
	}
	subs, err := s.Lawyers.ListSubscriptions(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	byLawyer := make(map[string]models.LawyerSubscription, len(subs))
	for _, sub := range subs {
		byLawyer[sub.LawyerID] = sub
	}

	out := make([]models.AdminLawyer, 0, len(lawyers))
	for _, l := range lawyers {
		row := models.AdminLawyer{
			ID:                 l.ID,
			UserID:             l.UserID,
			IsVerified:         l.IsVerified,
			LicenseNumber:      l.LicenseNumber,
			Status:             l.Status,
			Strikes:            l.Strikes,
			SubscriptionStatus: models.SubInactive,
			CreatedAt:          l.CreatedAt,
		}
		if u, ok := users[l.UserID]; ok {
			row.FullName, row.Email, row.Plan = u.FullName, u.Email, u.Plan
		}
		if sub, ok := byLawyer[l.ID]; ok {
			row.SubscriptionStatus = sub.Status
			row.Plan = sub.Plan
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *DefaultAdminService) ListWorkers(ctx context.Context) ([]models.AdminWorker, error) {
	users, err := s.Users.ListByRole(ctx, utils.RoleWorker, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}
	out := make([]models.AdminWorker, 0, len(users))
	for _, u := range users {
		row := models.AdminWorker{
			ID:                 u.ID,
			FullName:           u.FullName,
			Email:              u.Email,
			SubscriptionStatus: models.SubInactive,
			IsBlocked:          u.IsBlocked,
			CreatedAt:          u.CreatedAt,
		}
		sub, err := s.Profiles.GetWorkerSubscription(ctx, u.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load worker subscription: %w", err)
		}
		if sub != nil {
			row.SubscriptionStatus = sub.Status
		}
		if row.ContactRequests, err = s.Contacts.Count(ctx, bson.M{"workerId": u.ID}); err != nil {
			return nil, fmt.Errorf("failed to count worker requests: %w", err)
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *DefaultAdminService) ListPymes(ctx context.Context) ([]models.AdminPyme, error) {
	users, err := s.Users.ListByRole(ctx, utils.RolePyme, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list pymes: %w", err)
	}
	out := make([]models.AdminPyme, 0, len(users))
	for _, u := range users {
		row := models.AdminPyme{
			ID:                u.ID,
			FullName:          u.FullName,
			CompanyName:       noCompanyName,
			Email:             u.Email,
			Plan:              u.Plan,
			SubscriptionLevel: u.SubscriptionLevel,
			CreatedAt:         u.CreatedAt,
		}
		profile, err := s.Profiles.GetPymeProfile(ctx, u.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load pyme profile: %w", err)
		}
		if profile != nil {
			if profile.RazonSocial != "" {
				row.CompanyName = profile.RazonSocial
			}
			row.Industry = profile.Industry
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *DefaultAdminService) AddStrike(ctx context.Context, actorID, ip, lawyerID, reason string) (*models.StrikeResponse, error) {
	lawyer, err := s.Lawyers.GetLawyerByID(ctx, lawyerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lawyer: %w", err)
	}
	if lawyer == nil {
		return nil, utils.NotFound("Abogado no encontrado")
	}
	if reason == "" {
		reason = "manual"
	}
	res, err := s.SLA.AddStrike(ctx, lawyerID, reason)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, actorID, ip, models.ActionAddStrike, lawyerID, reason)

	status := models.LawyerActive
	if res.Suspended {
		status = models.LawyerSuspended
	}
	return &models.StrikeResponse{
		Success:      true,
		Message:      fmt.Sprintf("Strike añadido correctamente. Total: %d", res.Strikes),
		LawyerStatus: status,
	}, nil
}

func (s *DefaultAdminService) UpdateUserSubscription(ctx context.Context, actorID, userID string, in models.SubscriptionOverride) (*models.User, error) {
	if in.Plan == "" {
		return nil, utils.BadRequest("Plan requerido")
	}
	user, err := s.Subscriptions.Override(ctx, userID, in.Role, in.Plan)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, actorID, "", models.ActionPlanOverride, userID, in.Plan)
	return user, nil
}

// audit writes an activity log entry; failures are logged and swallowed.
func (s *DefaultAdminService) audit(ctx context.Context, actorID, ip, action, targetID, details string) {
	if err := s.Records.LogActivity(ctx, &models.ActivityLog{
		ID:       uuid.New().String(),
		ActorID:  actorID,
		Action:   action,
		TargetID: targetID,
		Details:  details,
		IP:       ip,
	}); err != nil {
		utils.GetLogger().Error("failed to write activity log", zap.String("action", action), zap.Error(err))
	}
}
