package subscription

import (
	"context"
	"fmt"

	"aliadolaboral/models"
	"aliadolaboral/services/payment"
	"aliadolaboral/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func (s *DefaultSubscriptionService) MySubscription(ctx context.Context, workerID string) (*models.WorkerSubscription, error) {
	sub, err := s.Profiles.GetWorkerSubscription(ctx, workerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	if sub != nil {
		return sub, nil
	}
	sub = &models.WorkerSubscription{
		ID:     uuid.New().String(),
		UserID: workerID,
		Status: models.SubInactive,
		Amount: models.WorkerMonthlyFee,
	}
	if err := s.Profiles.CreateWorkerSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}
	return sub, nil
}

func (s *DefaultSubscriptionService) Subscribe(ctx context.Context, workerID, provider string) (*models.WorkerSubscribeResult, error) {
	if provider == "" {
		provider = models.GatewayStripe
	}
	if provider != models.GatewayStripe && provider != models.GatewayMP {
		return nil, utils.BadRequest("Método de pago inválido")
	}
	existing, err := s.Profiles.GetWorkerSubscription(ctx, workerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	if existing != nil && existing.Status == models.SubActive {
		return nil, utils.BadRequest("Ya tienes una suscripción activa").WithExtra("subscription", existing)
	}
	user, err := s.getUser(ctx, workerID)
	if err != nil {
		return nil, err
	}

	result := &models.WorkerSubscribeResult{Message: "Suscripción activada exitosamente"}
	record := &models.PaymentRecord{
		UserID:  workerID,
		Gateway: provider,
		Type:    models.PaymentSubscription,
		Amount:  models.WorkerMonthlyFee,
		Status:  "pending",
	}
	switch provider {
	case models.GatewayStripe:
		intent, err := s.Stripe.CreatePlanIntent(ctx, models.PlanPrices[PlanWorkerPremium], map[string]string{
			"userId":   workerID,
			"planType": PlanWorkerPremium,
			"role":     utils.RoleWorker,
			"type":     models.PaymentSubscription,
		})
		if err != nil {
			return nil, utils.Internal("Error al crear suscripción", err.Error())
		}
		result.ClientSecret = intent.ClientSecret
		record.ExternalID = intent.ID
	case models.GatewayMP:
		pref, err := s.MP.CreatePreference(ctx, payment.PreferenceInput{
			ExternalReference: models.SubscriptionReferencePrefix + workerID,
			Title:             "Suscripción Mensual - Acceso Completo",
			Amount:            models.WorkerMonthlyFee,
			PayerEmail:        user.Email,
		})
		if err != nil {
			return nil, utils.Internal("Error al crear suscripción", err.Error())
		}
		result.InitPoint = pref.InitPoint
		record.ExternalID = pref.ID
	}

	now := s.now()
	end := now.AddDate(0, 1, 0)
	if err := s.activateWorker(ctx, workerID, now, end); err != nil {
		return nil, fmt.Errorf("failed to activate subscription: %w", err)
	}
	if err := s.Records.CreatePayment(ctx, record); err != nil {
		utils.GetLogger().Error("failed to record subscription payment", zap.String("userId", workerID), zap.Error(err))
	}
	if result.Subscription, err = s.Profiles.GetWorkerSubscription(ctx, workerID); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *DefaultSubscriptionService) Cancel(ctx context.Context, workerID string) (*models.WorkerSubscription, error) {
	sub, err := s.Profiles.GetWorkerSubscription(ctx, workerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	if sub == nil {
		return nil, utils.NotFound("No se encontró suscripción")
	}
	if err := s.Profiles.UpdateWorkerSubscription(ctx, sub.ID, bson.M{
		"autoRenew": false,
		"status":    models.SubCancelled,
	}); err != nil {
		return nil, fmt.Errorf("failed to cancel subscription: %w", err)
	}
	return s.Profiles.GetWorkerSubscription(ctx, workerID)
}

func (s *DefaultSubscriptionService) CheckWorkerAccess(ctx context.Context, workerID string) error {
	sub, err := s.Profiles.GetWorkerSubscription(ctx, workerID)
	if err != nil {
		return fmt.Errorf("failed to load subscription: %w", err)
	}
	if sub == nil || sub.Status != models.SubActive {
		return utils.Forbidden("Suscripción requerida").
			WithExtra("message", "Necesitas una suscripción activa para acceder a este contenido")
	}
	if sub.EndDate != nil && sub.EndDate.Before(s.now()) {
		if err := s.Profiles.UpdateWorkerSubscription(ctx, sub.ID, bson.M{"status": models.SubExpired}); err != nil {
			utils.GetLogger().Error("failed to expire subscription", zap.String("userId", workerID), zap.Error(err))
		}
		return utils.Forbidden("Suscripción expirada").
			WithExtra("message", "Tu suscripción ha expirado. Renueva para continuar.")
	}
	return nil
}
