package contact

import (
	"context"
	"time"

	"aliadolaboral/database/repository"
	"aliadolaboral/models"
	ai "aliadolaboral/services/intelligence"
	"aliadolaboral/services/notification"
	"aliadolaboral/services/ocr"
	"aliadolaboral/services/payment"
	"aliadolaboral/services/storage"
	"aliadolaboral/services/tasks"
)

type ContactService interface {
	// Worker side
	Create(ctx context.Context, workerID string, in models.CreateContactRequest, docs []models.UploadedFile) (*models.CreateContactResult, error)
	ListForWorker(ctx context.Context, workerID string) ([]models.ContactRequest, error)

	// Lawyer side
	Accept(ctx context.Context, lawyerUserID, requestID, paymentMethodID string) (*models.ContactRequest, error)
	Reject(ctx context.Context, lawyerUserID, requestID, reason string) (*models.ContactRequest, error)
	ListForLawyer(ctx context.Context, lawyerUserID, status string) ([]models.LawyerRequestView, error)
	ContactInfo(ctx context.Context, lawyerUserID, requestID string) (*models.ContactInfo, error)
	UpdateCRMStatus(ctx context.Context, lawyerUserID, requestID, status string) (*models.ContactRequest, error)
	Close(ctx context.Context, lawyerUserID, requestID string, settlementAmount float64, resolutionType string) (*models.SettlementResult, error)
	UploadSettlement(ctx context.Context, lawyerUserID, requestID, resolutionType string, file models.UploadedFile) (*models.SettlementResult, error)
	ReportFraud(ctx context.Context, lawyerUserID, requestID, reason string) error
	CaseFile(ctx context.Context, userID, role, requestID string) ([]byte, error)

	// Payments
	// CheckBothPaymentsSuccess unlocks the contact once both sides have paid.
	CheckBothPaymentsSuccess(ctx context.Context, requestID string) (bool, error)
	// MarkPaid records one side's payment and re-derives the unlock state.
	MarkPaid(ctx context.Context, requestID, side, gateway, externalID string) (*models.ContactRequest, error)

	// Background
	AnalyzeCase(ctx context.Context, requestID string) error
}

// Payment sides.
const (
	SideWorker = "worker"
	SideLawyer = "lawyer"
)

// DefaultContactService is the production implementation.
type DefaultContactService struct {
	Contacts repository.ContactRepository
	Users    repository.UserRepository
	Lawyers  repository.LawyerRepository
	Chats    repository.ChatRepository
	Records  repository.RecordRepository
	Stripe   payment.StripeGateway
	MP       payment.MercadoPagoGateway
	Storage  storage.ObjectStore
	OCR      ocr.Provider
	Notifier notification.NotificationService
	Queue    tasks.Queue
	AI       ai.AIService
	Now      func() time.Time
}

func NewDefaultContactService(
	contacts repository.ContactRepository,
	users repository.UserRepository,
	lawyers repository.LawyerRepository,
	chats repository.ChatRepository,
	records repository.RecordRepository,
	stripe payment.StripeGateway,
	mp payment.MercadoPagoGateway,
	store storage.ObjectStore,
	ocrProvider ocr.Provider,
	notifier notification.NotificationService,
	queue tasks.Queue,
	aiService ai.AIService,
) *DefaultContactService {
	return &DefaultContactService{
		Contacts: contacts,
		Users:    users,
		Lawyers:  lawyers,
		Chats:    chats,
		Records:  records,
		Stripe:   stripe,
		MP:       mp,
		Storage:  store,
		OCR:      ocrProvider,
		Notifier: notifier,
		Queue:    queue,
		AI:       aiService,
		Now:      time.Now,
	}
}

func (s *DefaultContactService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
