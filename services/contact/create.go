package contact

import (
	"context"
	"fmt"
	"strings"
	"time"

	"aliadolaboral/models"
	"aliadolaboral/services/payment"
	"aliadolaboral/services/tasks"
	"aliadolaboral/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

const (
	// HotSeveranceThreshold and HotYearsThreshold mark a lead as hot when either is exceeded.
	HotSeveranceThreshold = 150000.0
	HotYearsThreshold     = 3.0

	requestTTL = 48 * time.Hour
)

// Classify returns the classification, hot flag and lead fee for a new request.
func Classify(severance, years float64) (string, bool, float64) {
	if severance > HotSeveranceThreshold || years > HotYearsThreshold {
		return models.ClassHot, true, models.HotLeadFee
	}
	return models.ClassNormal, false, models.NormalLeadFee
}

// UrgencyScore weighs the worker's stated urgency and the hot flag.
func UrgencyScore(urgency string, isHot bool) int {
	score := 50
	if urgency == "high" {
		score = 80
	}
	if isHot {
		score += 20
	}
	return score
}

func sanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "documento"
	}
	return strings.Join(strings.Fields(name), "_")
}

// Create opens a request for a worker and charges the opening fee.
func (s *DefaultContactService) Create(ctx context.Context, workerID string, in models.CreateContactRequest, docs []models.UploadedFile) (*models.CreateContactResult, error) {
	logger := utils.GetLogger()

	worker, err := s.Users.GetByID(ctx, workerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load worker: %w", err)
	}
	if worker == nil {
		return nil, utils.NotFound("Usuario no encontrado")
	}
	if worker.IsBlocked {
		return nil, utils.Forbidden("Acceso Denegado").
			WithExtra("message", "Tu cuenta ha sido bloqueada permanentemente.").
			WithExtra("reason", worker.BlockReason)
	}
	if in.PaymentGateway != models.GatewayStripe && in.PaymentGateway != models.GatewayMP {
		return nil, utils.BadRequest("Método de pago inválido")
	}
	profile, err := s.Lawyers.GetProfileByID(ctx, in.LawyerProfileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lawyer profile: %w", err)
	}
	if profile == nil {
		return nil, utils.NotFound("Abogado no encontrado")
	}

	now := s.now()
	classification, isHot, fee := Classify(in.EstimatedSeverance, in.YearsOfService)
	urgency := in.Urgency
	if urgency == "" {
		urgency = "normal"
	}

	req := &models.ContactRequest{
		ID:                   uuid.New().String(),
		WorkerID:             workerID,
		LawyerProfileID:      profile.ID,
		CaseType:             in.CaseType,
		Description:          in.Description,
		EmployerName:         strings.TrimSpace(in.EmployerName),
		EstimatedSeverance:   in.EstimatedSeverance,
		YearsOfService:       in.YearsOfService,
		Urgency:              urgency,
		Classification:       classification,
		IsHot:                isHot,
		UrgencyScore:         UrgencyScore(urgency, isHot),
		LawyerPaymentAmount:  fee,
		Status:               models.StatusPending,
		SubStatus:            models.SubWaitingLawyer,
		DataStatus:           models.DataMasked,
		CRMStatus:            models.CRMNew,
		ConsentTimestamp:     &now,
		ExpiresAt:            now.Add(requestTTL),
		PaymentGateway:       in.PaymentGateway,
		LastWorkerActivityAt: &now,
		Documents:            []models.Document{},
	}
	if err := s.Contacts.Create(ctx, req); err != nil {
		logger.Error("Create: failed to insert request", zap.Error(err))
		return nil, utils.Internal("Error al crear solicitud", "")
	}

	s.storeDocuments(ctx, req, docs)

	result := &models.CreateContactResult{Request: req}
	if err := s.chargeOpeningFee(ctx, worker, profile, req, in.PaymentMethodID, result); err != nil {
		logger.Error("Create: opening fee failed, removing request",
			zap.String("requestId", req.ID), zap.String("gateway", req.PaymentGateway), zap.Error(err))
		if delErr := s.Contacts.Delete(ctx, req.ID); delErr != nil {
			logger.Error("Create: failed to delete unpaid request", zap.String("requestId", req.ID), zap.Error(delErr))
		}
		if req.PaymentGateway == models.GatewayStripe {
			return nil, utils.Internal("Error al procesar pago con Stripe", "")
		}
		return nil, utils.Internal("Error al procesar pago con MercadoPago", "")
	}

	s.enqueueAnalysis(ctx, req.ID)
	return result, nil
}

// storeDocuments uploads attachments. A failed upload is logged and skipped.
func (s *DefaultContactService) storeDocuments(ctx context.Context, req *models.ContactRequest, docs []models.UploadedFile) {
	if len(docs) == 0 || s.Storage == nil {
		return
	}
	for _, doc := range docs {
		uploadedAt := s.now()
		path := fmt.Sprintf("requests/%s/doc_%d_%s", req.ID, uploadedAt.UnixMilli(), sanitizeFileName(doc.Name))
		if err := s.Storage.Upload(ctx, path, doc.ContentType, doc.Data); err != nil {
			utils.GetLogger().Error("failed to upload request document", zap.String("requestId", req.ID), zap.Error(err))
			continue
		}
		stored := models.Document{Name: doc.Name, Path: path, UploadedAt: uploadedAt}
		if err := s.Contacts.Apply(ctx, req.ID, bson.M{"$push": bson.M{"documents": stored}}); err != nil {
			utils.GetLogger().Error("failed to attach request document", zap.String("requestId", req.ID), zap.Error(err))
			continue
		}
		req.Documents = append(req.Documents, stored)
	}
}

func (s *DefaultContactService) chargeOpeningFee(ctx context.Context, worker *models.User, profile *models.LawyerProfile,
	req *models.ContactRequest, paymentMethodID string, result *models.CreateContactResult) error {
	if req.PaymentGateway == models.GatewayStripe {
		customerID, err := s.Stripe.EnsureCustomer(ctx, worker)
		if err != nil {
			return err
		}
		charge, err := s.Stripe.Charge(ctx, payment.ChargeInput{
			CustomerID:      customerID,
			PaymentMethodID: paymentMethodID,
			Amount:          models.WorkerOpeningFee,
			Description:     fmt.Sprintf("Contacto con abogado %s", profile.DisplayName),
			Metadata: map[string]string{
				"contactRequestId": req.ID,
				"userId":           worker.ID,
				"type":             models.PaymentWorkerContactFee,
			},
		})
		if err != nil {
			return err
		}
		req.WorkerPaymentID = charge.ID
		req.WorkerPaid = charge.Succeeded()
		req.OpeningFeePaid = models.WorkerOpeningFee
		if err := s.Contacts.UpdateFields(ctx, req.ID, bson.M{
			"workerPaymentId": req.WorkerPaymentID,
			"workerPaid":      req.WorkerPaid,
			"openingFeePaid":  req.OpeningFeePaid,
		}); err != nil {
			return err
		}
		s.recordPayment(ctx, &models.PaymentRecord{
			RequestID: req.ID, UserID: worker.ID, Gateway: models.GatewayStripe,
			Type: models.PaymentWorkerContactFee, Amount: models.WorkerOpeningFee, Status: charge.Status, ExternalID: charge.ID,
		})
		result.ClientSecret = charge.ClientSecret
		result.PaymentStatus = charge.Status
		return nil
	}

	pref, err := s.MP.CreatePreference(ctx, payment.PreferenceInput{
		ExternalReference: req.ID,
		Title:             fmt.Sprintf("Contactar abogado - %s", profile.DisplayName),
		Amount:            models.WorkerOpeningFee,
		PayerEmail:        worker.Email,
	})
	if err != nil {
		return err
	}
	req.MPPreferenceID = pref.ID
	if err := s.Contacts.UpdateFields(ctx, req.ID, bson.M{"mpPreferenceId": pref.ID}); err != nil {
		return err
	}
	result.MPInitPoint = pref.InitPoint
	result.MPPreferenceID = pref.ID
	result.PaymentStatus = "pending"
	return nil
}

func (s *DefaultContactService) enqueueAnalysis(ctx context.Context, requestID string) {
	if s.Queue == nil {
		return
	}
	task, opts, err := tasks.NewCaseAnalysisTask(requestID)
	if err != nil {
		utils.GetLogger().Error("failed to build analysis task", zap.String("requestId", requestID), zap.Error(err))
		return
	}
	if _, err := s.Queue.EnqueueContext(ctx, task, opts...); err != nil {
		utils.GetLogger().Error("failed to enqueue analysis", zap.String("requestId", requestID), zap.Error(err))
	}
}

func (s *DefaultContactService) ListForWorker(ctx context.Context, workerID string) ([]models.ContactRequest, error) {
	reqs, err := s.Contacts.ListByWorker(ctx, workerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return reqs, nil
}
