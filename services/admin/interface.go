package admin

import (
	"context"
	"time"

	"aliadolaboral/database/repository"
	"aliadolaboral/models"
	"aliadolaboral/services/sla"
	"aliadolaboral/services/storage"
	"aliadolaboral/services/subscription"
)

// AdminService backs the admin console: KPIs, moderation of lawyers, audit trails and runtime settings.
type AdminService interface {
	Dashboard(ctx context.Context) (*models.DashboardStats, error)
	FinancialStats(ctx context.Context) (*models.FinancialStats, error)
	FinancialHealth(ctx context.Context) (*models.FinancialHealth, error)
	ImpactKPIs(ctx context.Context) (*models.ImpactKPIs, error)
	CollectiveRadar(ctx context.Context) (*models.CollectiveRadar, error)
	VaultCompliance(ctx context.Context) (*models.VaultCompliance, error)

	ListLawyers(ctx context.Context) ([]models.AdminLawyer, error)
	ListWorkers(ctx context.Context) ([]models.AdminWorker, error)
	ListPymes(ctx context.Context) ([]models.AdminPyme, error)
	ListCases(ctx context.Context) ([]models.AdminCase, error)
	AddStrike(ctx context.Context, actorID, ip, lawyerID, reason string) (*models.StrikeResponse, error)
	UpdateUserSubscription(ctx context.Context, actorID, userID string, in models.SubscriptionOverride) (*models.User, error)

	PaymentLogs(ctx context.Context) ([]models.PaymentLog, error)
	// ExportPayments renders the payment ledger as an XLSX workbook.
	ExportPayments(ctx context.Context) ([]byte, error)
	SecurityLogs(ctx context.Context) ([]models.ActivityLog, error)
	Alerts(ctx context.Context) ([]models.AdminAlert, error)
	ResolveAlert(ctx context.Context, alertID string) error
	// PurgeCase deletes a settled request and the worker's case data.
	PurgeCase(ctx context.Context, actorID, ip, requestID string) error

	PromoConfig(ctx context.Context) (*models.PromoConfig, error)
	UpdatePromoConfig(ctx context.Context, in models.PromoConfig) error

	GetLegalSections() []models.LegalSection
	GetLegalSectionsFor(role string) []models.LegalSection
}

// Revenue assumptions used by the estimates.
const (
	WorkerSubFee       = 29.0
	LawyerSubMonthly   = 50.0
	ContactPlatformFee = 50.0
	ContactGrossFee    = 200.0
	LawyerBasicMRR     = 99.0
	LawyerProMRR       = 299.0
	PymePremiumMRR     = 999.0
	PipelineRate       = 0.06
	CollectiveRate     = 0.07
	AICostPerRequest   = 0.005
	// LowSettlementRatio flags settlements reported under this share of the estimate.
	LowSettlementRatio = 0.20
)

const (
	casesLimit    = 50
	alertsLimit   = 20
	logsLimit     = 50
	paymentsLimit = 50
	topEarners    = 10
	clusterMin    = 2
	defaultBanner = "¡Promoción Especial!"
)

// DefaultAdminService is the production implementation.
type DefaultAdminService struct {
	Users         repository.UserRepository
	Lawyers       repository.LawyerRepository
	Profiles      repository.ProfileRepository
	Contacts      repository.ContactRepository
	Records       repository.RecordRepository
	Vault         repository.VaultRepository
	Cases         repository.LegalCaseRepository
	Storage       storage.ObjectStore
	SLA           sla.SLAService
	Subscriptions subscription.SubscriptionService
	Now           func() time.Time
}

func NewDefaultAdminService(
	users repository.UserRepository,
	lawyers repository.LawyerRepository,
	profiles repository.ProfileRepository,
	contacts repository.ContactRepository,
	records repository.RecordRepository,
	vault repository.VaultRepository,
	cases repository.LegalCaseRepository,
	store storage.ObjectStore,
	slaService sla.SLAService,
	subscriptions subscription.SubscriptionService,
) *DefaultAdminService {
	return &DefaultAdminService{
		Users:         users,
		Lawyers:       lawyers,
		Profiles:      profiles,
		Contacts:      contacts,
		Records:       records,
		Vault:         vault,
		Cases:         cases,
		Storage:       store,
		SLA:           slaService,
		Subscriptions: subscriptions,
		Now:           time.Now,
	}
}

func (s *DefaultAdminService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
