package subscription

import (
	"context"
	"time"

	"aliadolaboral/database/repository"
	"aliadolaboral/models"
	"aliadolaboral/services/payment"
)

// SubscriptionService sells and tracks the paid plans of every role.
type SubscriptionService interface {
	// Activate opens a Stripe PaymentIntent for planType.
	Activate(ctx context.Context, userID, role, planType string) (*models.PlanIntentResult, error)
	// ConfirmPayment applies the plan paid by a succeeded PaymentIntent.
	ConfirmPayment(ctx context.Context, userID, paymentIntentID string) (*models.SubscriptionStatus, error)
	ActivateFree(ctx context.Context, userID, role, planType string) error
	CancelAutoRenew(ctx context.Context, userID, role string) error
	Status(ctx context.Context, userID, role string) (*models.SubscriptionStatus, error)
	// Override sets a user's plan without payment (admin).
	Override(ctx context.Context, userID, role, plan string) (*models.User, error)

	// Worker membership
	MySubscription(ctx context.Context, workerID string) (*models.WorkerSubscription, error)
	Subscribe(ctx context.Context, workerID, provider string) (*models.WorkerSubscribeResult, error)
	Cancel(ctx context.Context, workerID string) (*models.WorkerSubscription, error)
	// CheckWorkerAccess fails unless the worker membership is active, expiring it when past due.
	CheckWorkerAccess(ctx context.Context, workerID string) error
}

// Plan keys of models.PlanPrices.
const (
	PlanWorkerPremium = "worker_premium"
	PlanLawyerBasic   = "lawyer_basic"
	PlanLawyerPro     = "lawyer_pro"
	PlanPymePro       = "pyme_pro"
	PlanPymeBasic     = "pyme_basic"
)

// Monthly prices in MXN.
const (
	LawyerBasicFee = 99.0
	LawyerProFee   = 299.0
	PymeProFee     = 999.0
)

// Period is the length of one paid plan cycle.
const Period = 30 * 24 * time.Hour

// DefaultSubscriptionService is the production implementation.
type DefaultSubscriptionService struct {
	Users    repository.UserRepository
	Lawyers  repository.LawyerRepository
	Profiles repository.ProfileRepository
	Records  repository.RecordRepository
	Stripe   payment.StripeGateway
	MP       payment.MercadoPagoGateway
	Now      func() time.Time
}

func NewDefaultSubscriptionService(
	users repository.UserRepository,
	lawyers repository.LawyerRepository,
	profiles repository.ProfileRepository,
	records repository.RecordRepository,
	stripe payment.StripeGateway,
	mp payment.MercadoPagoGateway,
) *DefaultSubscriptionService {
	return &DefaultSubscriptionService{
		Users:    users,
		Lawyers:  lawyers,
		Profiles: profiles,
		Records:  records,
		Stripe:   stripe,
		MP:       mp,
		Now:      time.Now,
	}
}

func (s *DefaultSubscriptionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
