package accountant

import (
	"context"
	"fmt"

	"aliadolaboral/database/repository"
	"aliadolaboral/models"
	"aliadolaboral/services/contact"
	"aliadolaboral/utils"

	"go.uber.org/zap"
)

// AccountantService reconciles payments that arrive outside the gateways.
type AccountantService interface {
	PendingPayments(ctx context.Context) ([]models.PendingPayment, error)
	// VerifyPayment marks one side of a request as paid by bank transfer.
	VerifyPayment(ctx context.Context, actorID, requestID string, in models.ManualPaymentRequest) (*models.ContactRequest, error)
}

type DefaultAccountantService struct {
	Contacts repository.ContactRepository
	Users    repository.UserRepository
	Lawyers  repository.LawyerRepository
	Records  repository.RecordRepository
	Payments contact.ContactService
}

func NewDefaultAccountantService(
	contacts repository.ContactRepository,
	users repository.UserRepository,
	lawyers repository.LawyerRepository,
	records repository.RecordRepository,
	payments contact.ContactService,
) *DefaultAccountantService {
	return &DefaultAccountantService{
		Contacts: contacts,
		Users:    users,
		Lawyers:  lawyers,
		Records:  records,
		Payments: payments,
	}
}

func (s *DefaultAccountantService) PendingPayments(ctx context.Context) ([]models.PendingPayment, error) {
	reqs, err := s.Contacts.ListPendingPayments(ctx)
	if err != nil {
		return nil, utils.Internal("Error interno al obtener pagos pendientes", err.Error())
	}
	ids := make([]string, 0, len(reqs))
	profileUsers := map[string]string{}
	for _, r := range reqs {
		ids = append(ids, r.WorkerID)
		if r.LawyerProfileID == "" {
			continue
		}
		if _, seen := profileUsers[r.LawyerProfileID]; seen {
			continue
		}
		profile, err := s.Lawyers.GetProfileByID(ctx, r.LawyerProfileID)
		if err != nil {
			return nil, fmt.Errorf("failed to load lawyer profile: %w", err)
		}
		if profile != nil {
			profileUsers[r.LawyerProfileID] = profile.UserID
			ids = append(ids, profile.UserID)
		}
	}
	users, err := s.Users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	out := make([]models.PendingPayment, 0, len(reqs))
	for _, r := range reqs {
		row := models.PendingPayment{ContactRequest: r}
		worker := users[r.WorkerID]
		row.WorkerName, row.WorkerEmail = worker.FullName, worker.Email
		if uid, ok := profileUsers[r.LawyerProfileID]; ok {
			lawyer := users[uid]
			row.LawyerName, row.LawyerEmail = lawyer.FullName, lawyer.Email
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *DefaultAccountantService) VerifyPayment(ctx context.Context, actorID, requestID string, in models.ManualPaymentRequest) (*models.ContactRequest, error) {
	if in.Type != contact.SideWorker && in.Type != contact.SideLawyer {
		return nil, utils.BadRequest("Tipo de pago inválido (worker/lawyer)")
	}
	req, err := s.Payments.MarkPaid(ctx, requestID, in.Type, models.GatewayManual, in.Reference)
	if err != nil {
		return nil, err
	}

	logger := utils.GetLogger()
	userID := req.WorkerID
	amount := req.OpeningFeePaid
	if in.Type == contact.SideLawyer {
		amount = req.LawyerPaymentAmount
		if profile, err := s.Lawyers.GetProfileByID(ctx, req.LawyerProfileID); err == nil && profile != nil {
			userID = profile.UserID
		}
	} else if amount == 0 {
		amount = models.WorkerOpeningFee
	}
	if err := s.Records.CreatePayment(ctx, &models.PaymentRecord{
		RequestID:  requestID,
		UserID:     userID,
		Gateway:    models.GatewayManual,
		Type:       models.PaymentManual,
		Amount:     amount,
		Status:     "succeeded",
		ExternalID: in.Reference,
	}); err != nil {
		logger.Error("failed to record manual payment", zap.String("requestId", requestID), zap.Error(err))
	}
	if err := s.Records.LogActivity(ctx, &models.ActivityLog{
		ActorID:  actorID,
		Action:   models.ActionManualPayment,
		TargetID: requestID,
		Details:  fmt.Sprintf("side=%s reference=%s", in.Type, in.Reference),
	}); err != nil {
		logger.Error("failed to write activity log", zap.String("requestId", requestID), zap.Error(err))
	}
	utils.RecordPayment(models.GatewayManual, models.PaymentManual, nil)
	return req, nil
}
