package subscription

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"aliadolaboral/models"
	"aliadolaboral/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

const intentSucceeded = "succeeded"

func (s *DefaultSubscriptionService) getUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, utils.NotFound("Usuario no encontrado")
	}
	return user, nil
}

func (s *DefaultSubscriptionService) Activate(ctx context.Context, userID, role, planType string) (*models.PlanIntentResult, error) {
	amount, ok := models.PlanPrices[planType]
	if !ok {
		return nil, utils.BadRequest("Tipo de plan inválido")
	}
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	customerID, err := s.Stripe.EnsureCustomer(ctx, user)
	if err != nil {
		return nil, utils.Internal("Error al crear el cliente de pago", err.Error())
	}
	intent, err := s.Stripe.CreatePlanIntent(ctx, amount, map[string]string{
		"userId":   userID,
		"planType": planType,
		"role":     role,
		"type":     models.PaymentSubscription,
	})
	if err != nil {
		return nil, utils.Internal("Error al crear el pago", err.Error())
	}
	return &models.PlanIntentResult{
		PaymentIntent:   intent.ClientSecret,
		PaymentIntentID: intent.ID,
		Customer:        customerID,
		Amount:          amount,
	}, nil
}

func (s *DefaultSubscriptionService) ConfirmPayment(ctx context.Context, userID, paymentIntentID string) (*models.SubscriptionStatus, error) {
	if paymentIntentID == "" {
		return nil, utils.BadRequest("Falta paymentIntentId")
	}
	intent, err := s.Stripe.GetPlanIntent(ctx, paymentIntentID)
	if err != nil {
		return nil, utils.Internal("Error al verificar el pago", err.Error())
	}
	if intent.Status != intentSucceeded {
		return nil, utils.BadRequest("El pago aún no se ha completado")
	}
	if owner := intent.Metadata["userId"]; owner != "" && owner != userID {
		return nil, utils.Forbidden("Este pago no pertenece a tu cuenta")
	}
	planType, role := intent.Metadata["planType"], intent.Metadata["role"]

	// A retried confirmation must not extend the plan twice.
	seen, err := s.Records.CountPayments(ctx, bson.M{"externalId": intent.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to check payment ledger: %w", err)
	}
	if seen == 0 {
		if err := s.applyPaidPlan(ctx, userID, role, planType); err != nil {
			return nil, err
		}
		if err := s.Records.CreatePayment(ctx, &models.PaymentRecord{
			UserID:     userID,
			Gateway:    models.GatewayStripe,
			Type:       models.PaymentSubscription,
			Amount:     float64(intent.Amount) / 100,
			Status:     intent.Status,
			ExternalID: intent.ID,
		}); err != nil {
			utils.GetLogger().Error("failed to record plan payment", zap.String("userId", userID), zap.Error(err))
		}
		utils.GetLogger().Info("plan activated", zap.String("userId", userID), zap.String("planType", planType))
	}
	return s.Status(ctx, userID, role)
}

// applyPaidPlan grants planType for one period starting now.
func (s *DefaultSubscriptionService) applyPaidPlan(ctx context.Context, userID, role, planType string) error {
	now := s.now()
	end := now.Add(Period)
	switch role {
	case utils.RoleWorker:
		if err := s.Users.UpdateFields(ctx, userID, bson.M{"plan": models.PlanPremium}); err != nil {
			return fmt.Errorf("failed to update user plan: %w", err)
		}
		return s.activateWorker(ctx, userID, now, end)
	case utils.RoleLawyer:
		plan, amount := models.PlanBasic, LawyerBasicFee
		if planType == PlanLawyerPro {
			plan, amount = models.PlanPro, LawyerProFee
		}
		if err := s.activateLawyer(ctx, userID, plan, amount, now, end); err != nil {
			return err
		}
		return s.Users.UpdateFields(ctx, userID, bson.M{"plan": plan})
	case utils.RolePyme:
		level := models.LevelBasic
		if planType == PlanPymePro {
			level = models.LevelPremium
		}
		return s.Users.UpdateFields(ctx, userID, bson.M{"subscriptionLevel": level})
	}
	return utils.BadRequest("Rol inválido")
}

func (s *DefaultSubscriptionService) activateWorker(ctx context.Context, userID string, start, end time.Time) error {
	sub, err := s.Profiles.GetWorkerSubscription(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load worker subscription: %w", err)
	}
	if sub == nil {
		return s.Profiles.CreateWorkerSubscription(ctx, &models.WorkerSubscription{
			ID:        uuid.New().String(),
			UserID:    userID,
			Status:    models.SubActive,
			Amount:    models.WorkerMonthlyFee,
			AutoRenew: true,
			StartDate: &start,
			EndDate:   &end,
		})
	}
	return s.Profiles.UpdateWorkerSubscription(ctx, sub.ID, bson.M{
		"status":    models.SubActive,
		"amount":    models.WorkerMonthlyFee,
		"autoRenew": true,
		"startDate": start,
		"endDate":   end,
	})
}

func (s *DefaultSubscriptionService) activateLawyer(ctx context.Context, userID, plan string, amount float64, start, end time.Time) error {
	lawyer, err := s.Lawyers.GetLawyerByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load lawyer: %w", err)
	}
	if lawyer == nil {
		return utils.NotFound("Abogado no encontrado")
	}
	sub, err := s.Lawyers.GetSubscriptionByLawyerID(ctx, lawyer.ID)
	if err != nil {
		return fmt.Errorf("failed to load lawyer subscription: %w", err)
	}
	if sub == nil {
		return s.Lawyers.CreateSubscription(ctx, &models.LawyerSubscription{
			ID:        uuid.New().String(),
			LawyerID:  lawyer.ID,
			UserID:    userID,
			Plan:      plan,
			Status:    models.SubActive,
			Amount:    amount,
			AutoRenew: true,
			StartDate: &start,
			EndDate:   &end,
		})
	}
	return s.Lawyers.UpdateSubscriptionFields(ctx, sub.ID, bson.M{
		"plan":      plan,
		"status":    models.SubActive,
		"amount":    amount,
		"autoRenew": true,
		"startDate": start,
		"endDate":   end,
	})
}

func (s *DefaultSubscriptionService) ActivateFree(ctx context.Context, userID, role, planType string) error {
	switch {
	case role == utils.RolePyme && planType == PlanPymeBasic:
		return s.Users.UpdateFields(ctx, userID, bson.M{"subscriptionLevel": models.LevelBasic})
	case role == utils.RoleWorker && planType == models.PlanFree:
		if err := s.Users.UpdateFields(ctx, userID, bson.M{"plan": models.PlanFree}); err != nil {
			return err
		}
		sub, err := s.Profiles.GetWorkerSubscription(ctx, userID)
		if err != nil || sub == nil {
			return err
		}
		return s.Profiles.UpdateWorkerSubscription(ctx, sub.ID, bson.M{"autoRenew": false})
	}
	return utils.BadRequest("Solicitud de plan gratuito inválida")
}

func (s *DefaultSubscriptionService) CancelAutoRenew(ctx context.Context, userID, role string) error {
	switch role {
	case utils.RoleWorker:
		sub, err := s.Profiles.GetWorkerSubscription(ctx, userID)
		if err != nil {
			return err
		}
		if sub == nil {
			return utils.NotFound("No se encontró suscripción")
		}
		return s.Profiles.UpdateWorkerSubscription(ctx, sub.ID, bson.M{"autoRenew": false})
	case utils.RoleLawyer:
		lawyer, err := s.Lawyers.GetLawyerByUserID(ctx, userID)
		if err != nil || lawyer == nil {
			return err
		}
		sub, err := s.Lawyers.GetSubscriptionByLawyerID(ctx, lawyer.ID)
		if err != nil {
			return err
		}
		if sub == nil {
			return utils.NotFound("No se encontró suscripción")
		}
		return s.Lawyers.UpdateSubscriptionFields(ctx, sub.ID, bson.M{"autoRenew": false})
	}
	return nil
}

func daysUntil(end *time.Time, now time.Time) int {
	if end == nil {
		return 0
	}
	days := math.Ceil(end.Sub(now).Hours() / 24)
	if days < 0 {
		return 0
	}
	return int(days)
}

func (s *DefaultSubscriptionService) Status(ctx context.Context, userID, role string) (*models.SubscriptionStatus, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if role == "" {
		role = user.Role
	}
	now := s.now()
	status := &models.SubscriptionStatus{Role: role, Plan: user.Plan, SubscriptionLevel: user.SubscriptionLevel}

	switch role {
	case utils.RoleWorker:
		sub, err := s.Profiles.GetWorkerSubscription(ctx, userID)
		if err != nil {
			return nil, err
		}
		status.Worker = sub
		status.IsActive = sub != nil && sub.Status == models.SubActive && (sub.EndDate == nil || sub.EndDate.After(now))
		status.Plan = models.PlanFree
		if status.IsActive {
			status.Plan = models.PlanPremium
		}
		if sub != nil {
			status.DaysRemaining = daysUntil(sub.EndDate, now)
			status.IsExpired = status.DaysRemaining == 0
		}
	case utils.RoleLawyer:
		lawyer, err := s.Lawyers.GetLawyerByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if lawyer == nil {
			return nil, utils.NotFound("Abogado no encontrado")
		}
		sub, err := s.Lawyers.GetSubscriptionByLawyerID(ctx, lawyer.ID)
		if err != nil {
			return nil, err
		}
		status.Lawyer = sub
		status.IsActive = sub.IsActive(now)
		status.Plan = models.PlanBasic
		if sub != nil {
			status.Plan = sub.Plan
			status.DaysRemaining = daysUntil(sub.EndDate, now)
		}
		status.IsExpired = !status.IsActive
	case utils.RolePyme:
		status.IsActive = user.SubscriptionLevel == models.LevelPremium
		status.Plan = models.PlanBasic
		if status.IsActive {
			status.Plan = models.PlanPro
		}
	default:
		return nil, utils.BadRequest("Rol inválido")
	}

	payments, err := s.Records.ListPayments(ctx, bson.M{"userId": userID, "type": models.PaymentSubscription}, 5)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	status.RecentPayments = payments
	return status, nil
}

func (s *DefaultSubscriptionService) Override(ctx context.Context, userID, role, plan string) (*models.User, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if role == "" {
		role = user.Role
	}
	plan = strings.ToLower(strings.TrimSpace(plan))
	if plan == "" {
		return nil, utils.BadRequest("Plan requerido")
	}
	paid := plan == models.PlanPro || plan == models.PlanPremium
	level := models.LevelBasic
	if paid {
		level = models.LevelPremium
	}
	if err := s.Users.UpdateFields(ctx, userID, bson.M{"plan": plan, "subscriptionLevel": level}); err != nil {
		return nil, fmt.Errorf("failed to update plan: %w", err)
	}

	now := s.now()
	end := now.Add(Period)
	switch role {
	case utils.RoleWorker:
		if paid {
			err = s.activateWorker(ctx, userID, now, end)
		} else if sub, _ := s.Profiles.GetWorkerSubscription(ctx, userID); sub != nil {
			err = s.Profiles.UpdateWorkerSubscription(ctx, sub.ID, bson.M{"status": models.SubInactive})
		}
	case utils.RoleLawyer:
		if plan == models.PlanPro {
			err = s.activateLawyer(ctx, userID, models.PlanPro, LawyerProFee, now, end)
		} else if lawyer, _ := s.Lawyers.GetLawyerByUserID(ctx, userID); lawyer != nil {
			if sub, _ := s.Lawyers.GetSubscriptionByLawyerID(ctx, lawyer.ID); sub != nil {
				err = s.Lawyers.UpdateSubscriptionFields(ctx, sub.ID, bson.M{"status": models.SubInactive, "plan": models.PlanBasic})
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update subscription: %w", err)
	}
	return s.getUser(ctx, userID)
}
