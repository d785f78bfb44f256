package contact

import (
	"context"
	"fmt"
	"strings"

	"aliadolaboral/models"
	"aliadolaboral/services/ocr"
	"aliadolaboral/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

type settlementInput struct {
	Amount         float64
	Date           string
	ResolutionType string
	DocPath        string
	OCRApplied     bool
}

func normalizeResolution(t string) string {
	t = strings.ToUpper(strings.TrimSpace(t))
	if t == models.ResolutionTrial {
		return models.ResolutionTrial
	}
	return models.ResolutionConciliation
}

func (s *DefaultContactService) closableRequest(ctx context.Context, lawyerUserID, requestID string) (*lawyerContext, *models.ContactRequest, error) {
	lc, err := s.loadLawyer(ctx, lawyerUserID)
	if err != nil {
		return nil, nil, err
	}
	req, err := s.ownedRequest(ctx, lc, requestID)
	if err != nil {
		return nil, nil, err
	}
	if req.Status != models.StatusAccepted && req.Status != models.StatusContactUnlocked {
		return nil, nil, utils.BadRequest("El caso no está activo")
	}
	if req.ClosedAt != nil || req.SettlementDocStatus != "" {
		return nil, nil, utils.BadRequest("Este caso ya fue cerrado")
	}
	return lc, req, nil
}

// Close records a settlement declared by the lawyer and bills the success fee.
func (s *DefaultContactService) Close(ctx context.Context, lawyerUserID, requestID string, settlementAmount float64, resolutionType string) (*models.SettlementResult, error) {
	if settlementAmount <= 0 {
		return nil, utils.BadRequest("El monto del convenio es requerido")
	}
	lc, req, err := s.closableRequest(ctx, lawyerUserID, requestID)
	if err != nil {
		return nil, err
	}
	return s.settle(ctx, lc, req, settlementInput{
		Amount:         settlementAmount,
		ResolutionType: normalizeResolution(resolutionType),
	})
}

// UploadSettlement stores the signed agreement, reads the amount from it and bills the success fee.
func (s *DefaultContactService) UploadSettlement(ctx context.Context, lawyerUserID, requestID, resolutionType string, file models.UploadedFile) (*models.SettlementResult, error) {
	if len(file.Data) == 0 {
		return nil, utils.BadRequest("El documento es requerido")
	}
	lc, req, err := s.closableRequest(ctx, lawyerUserID, requestID)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("settlements/%s/%d_%s", req.ID, s.now().UnixMilli(), sanitizeFileName(file.Name))
	if err := s.Storage.Upload(ctx, path, file.ContentType, file.Data); err != nil {
		utils.GetLogger().Error("UploadSettlement: upload failed", zap.String("requestId", req.ID), zap.Error(err))
		return nil, utils.Internal("Error procesando el convenio", "")
	}

	in := settlementInput{ResolutionType: normalizeResolution(resolutionType), DocPath: path}
	if s.OCR != nil && ocr.IsImage(file.ContentType) {
		text, err := s.OCR.ExtractText(ctx, file.ContentType, file.Data)
		if err != nil {
			utils.GetLogger().Warn("UploadSettlement: OCR failed", zap.String("requestId", req.ID), zap.Error(err))
		} else {
			in.OCRApplied = true
			in.Amount = ocr.ExtractAmount(text)
			in.Date = ocr.ExtractDate(text)
		}
	}
	return s.settle(ctx, lc, req, in)
}

func (s *DefaultContactService) settle(ctx context.Context, lc *lawyerContext, req *models.ContactRequest, in settlementInput) (*models.SettlementResult, error) {
	logger := utils.GetLogger().With(zap.String("requestId", req.ID))
	now := s.now()
	isPro := lc.Sub.IsPro(now)
	rate := ocr.CommissionRate(isPro, in.ResolutionType)
	commission := ocr.Commission(in.Amount, rate)

	result := &models.SettlementResult{
		DetectedAmount: in.Amount,
		DetectedDate:   in.Date,
		OCRApplied:     in.OCRApplied,
		CommissionRate: rate,
		Commission:     commission,
	}

	fields := bson.M{
		"crmStatus":            models.CRMClosedWon,
		"closedAt":             now,
		"resolutionType":       in.ResolutionType,
		"commissionRate":       rate,
		"lastLawyerActivityAt": now,
		"commissionStatus":     models.CommissionNotApplicable,
	}
	if in.DocPath != "" {
		fields["settlementDocPath"] = in.DocPath
		fields["settlementDocStatus"] = models.SettlementUploaded
	}
	if in.Date != "" {
		fields["settlementDate"] = in.Date
	}
	if in.Amount > 0 {
		fields["settlementAmount"] = in.Amount
		fields["commissionAmount"] = commission
		fields["commissionStatus"] = models.CommissionPending

		invoiceID, err := s.billCommission(ctx, lc, req.ID, commission)
		if err != nil {
			logger.Error("settle: commission invoice failed", zap.Error(err))
			s.raiseAlert(ctx, "commission_invoice_failed", models.SeverityMedium,
				fmt.Sprintf("No se pudo facturar la comisión de la solicitud %s", req.ID), req.ID)
		} else {
			fields["commissionInvoiceId"] = invoiceID
			result.InvoiceID = invoiceID
		}
	}
	if err := s.Contacts.UpdateFields(ctx, req.ID, fields); err != nil {
		return nil, fmt.Errorf("failed to close request: %w", err)
	}

	savings := 0.0
	if isPro && in.Amount > 0 {
		savings = ocr.ProSavings(in.Amount, in.ResolutionType)
	}
	if err := s.Lawyers.IncrementProfile(ctx, lc.Profile.ID, bson.M{
		"reputation":                10,
		"successfulCases":           1,
		"lifetimeCommissionSavings": savings,
	}); err != nil {
		logger.Error("settle: failed to update lawyer profile", zap.Error(err))
	}

	if commission > 0 {
		msg := fmt.Sprintf("⚖️ ¡Felicidades por la victoria, Colega!\n\nHemos procesado el documento de cierre. Se ha generado la factura de tu Comisión por Éxito ($%.2f MXN).", commission)
		if savings > 0 {
			total := lc.Profile.LifetimeCommissionSavings + savings
			msg += fmt.Sprintf("\n\n💎 Efecto PRO: En este caso ahorraste $%.2f.\n💰 Ahorro Acumulado: Tu suscripción PRO te ha ahorrado $%.2f MXN en total.", savings, total)
		}
		msg += "\n\nEl link de pago está en tu correo. Al liquidarlo, se liberará el expediente digital para tu cliente."
		s.postMessage(ctx, req, models.SenderSystem, models.SenderSystem, models.MessageSystem, msg)
	}
	workerName := "Usuario"
	if worker, err := s.Users.GetByID(ctx, req.WorkerID); err == nil && worker != nil && worker.FullName != "" {
		workerName = worker.FullName
	}
	s.postMessage(ctx, req, lc.User.ID, utils.RoleLawyer, models.MessageText,
		fmt.Sprintf("👋 Hola %s, tu abogado ha marcado tu caso como 'Ganado' y ha subido el Convenio/Sentencia.\n\n¡Felicidades por este gran paso!", workerName))

	updated, err := s.getRequest(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	result.Request = updated
	return result, nil
}

func (s *DefaultContactService) billCommission(ctx context.Context, lc *lawyerContext, requestID string, commission float64) (string, error) {
	customerID, err := s.Stripe.EnsureCustomer(ctx, lc.User)
	if err != nil {
		return "", err
	}
	invoiceID, err := s.Stripe.CreateCommissionInvoice(ctx, customerID, commission, requestID)
	if err != nil {
		return "", err
	}
	s.recordPayment(ctx, &models.PaymentRecord{
		RequestID: requestID, UserID: lc.User.ID, Gateway: models.GatewayStripe,
		Type: models.PaymentCommission, Amount: commission, Status: models.CommissionPending, ExternalID: invoiceID,
	})
	return invoiceID, nil
}
