package contact

import (
	"context"
	"errors"
	"fmt"

	"aliadolaboral/models"
	"aliadolaboral/services/payment"
	"aliadolaboral/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

const welcomeMessage = "¡Hola! He aceptado tu solicitud. ¿En qué puedo ayudarte?"

// inFlight matches requests no acceptance is currently charging.
var inFlight = bson.M{"$nin": []string{models.SagaCharging, models.SagaCharged}}

func (s *DefaultContactService) setSaga(ctx context.Context, requestID, step, lastError string) {
	state := models.SagaState{Step: step, LastError: lastError, UpdatedAt: s.now()}
	if err := s.Contacts.UpdateFields(ctx, requestID, bson.M{"saga": state}); err != nil {
		utils.GetLogger().Error("failed to persist saga step",
			zap.String("requestId", requestID), zap.String("step", step), zap.Error(err))
	}
}

// Accept charges the lawyer's lead fee and opens the chat. When the charge fails the
// worker's opening fee is refunded so nobody pays for a lead that never happened.
func (s *DefaultContactService) Accept(ctx context.Context, lawyerUserID, requestID, paymentMethodID string) (*models.ContactRequest, error) {
	logger := utils.GetLogger().With(zap.String("requestId", requestID), zap.String("lawyerUserId", lawyerUserID))

	lc, err := s.loadLawyer(ctx, lawyerUserID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if !lc.Sub.IsActive(now) {
		return nil, utils.Forbidden("Necesitas una suscripción activa para aceptar solicitudes")
	}

	req, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.IsHot && !lc.Sub.IsPro(now) {
		return nil, utils.Forbidden("Este caso es clasificado como HOT (Alta Prioridad).").
			WithExtra("message", "Solo abogados con Plan PRO pueden aceptar Casos Hot. Actualiza tu plan para aceptar este caso.").
			WithExtra("upgradeRequired", true)
	}
	if lc.User.StripeCustomerID != "" {
		overdue, err := s.Stripe.HasOverdueInvoices(ctx, lc.User.StripeCustomerID)
		if err != nil {
			logger.Warn("Accept: overdue invoice check failed", zap.Error(err))
		}
		if overdue {
			return nil, utils.PaymentRequired("Bloqueo por Comisiones Pendientes").
				WithExtra("message", "Tienes facturas de \"Comisión por Éxito\" vencidas. Paga tus comisiones pendientes para desbloquear el acceso a nuevos leads.").
				WithExtra("paymentRequired", true).
				WithExtra("blockReason", "overdue_commission")
		}
	}
	// Requests released back to the pool carry no profile and any eligible lawyer may take them.
	if req.LawyerProfileID != "" && req.LawyerProfileID != lc.Profile.ID {
		return nil, utils.Forbidden("No autorizado")
	}
	if req.Status != models.StatusPending {
		return nil, utils.BadRequest("Esta solicitud ya fue procesada")
	}
	if !req.WorkerPaid {
		return nil, utils.BadRequest("El trabajador aún no ha completado el pago").
			WithExtra("message", "Esperando confirmación de pago del trabajador")
	}

	// Claim the request so a concurrent accept or reject cannot run the saga twice.
	claimed, err := s.Contacts.UpdateFieldsIf(ctx, req.ID,
		bson.M{
			"status":          models.StatusPending,
			"workerPaid":      true,
			"saga.step":       inFlight,
			"lawyerProfileId": bson.M{"$in": []interface{}{nil, "", lc.Profile.ID}},
		},
		bson.M{"saga": models.SagaState{Step: models.SagaCharging, UpdatedAt: now}})
	if err != nil {
		return nil, fmt.Errorf("failed to start acceptance: %w", err)
	}
	if !claimed {
		return nil, utils.BadRequest("Esta solicitud ya fue procesada")
	}

	charge, err := s.chargeLawyer(ctx, lc, req, paymentMethodID)
	if err != nil {
		logger.Error("Accept: lawyer charge failed, compensating", zap.Error(err))
		return nil, s.compensate(ctx, req, err)
	}
	s.setSaga(ctx, req.ID, models.SagaCharged, "")

	fee := req.LawyerPaymentAmount
	if err := s.Contacts.UpdateFields(ctx, req.ID, bson.M{
		"status":               models.StatusAccepted,
		"lawyerProfileId":      lc.Profile.ID,
		"acceptedAt":           now,
		"lawyerPaid":           true,
		"lawyerPaymentId":      charge.ID,
		"leadCostPaid":         fee,
		"subStatus":            models.SubChatActive,
		"lastLawyerActivityAt": now,
		"lastMessage":          welcomeMessage,
		"lastMessageAt":        now,
		"lastMessageSenderId":  lc.User.ID,
		"unreadCountWorker":    1,
		"saga":                 models.SagaState{Step: models.SagaCompleted, UpdatedAt: now},
	}); err != nil {
		// The lawyer has been charged: leave the saga at lawyer_charged for an operator.
		logger.Error("Accept: failed to persist accepted request after charge", zap.Error(err))
		return nil, utils.Internal("Error al aceptar solicitud", "El cargo fue realizado; un administrador revisará la solicitud")
	}
	if _, err := s.syncBothPaid(ctx, req.ID, false); err != nil {
		logger.Error("Accept: failed to derive payment state", zap.Error(err))
	}

	s.recordPayment(ctx, &models.PaymentRecord{
		RequestID: req.ID, UserID: lc.User.ID, Gateway: models.GatewayStripe,
		Type: models.PaymentLawyerAcceptance, Amount: fee, Status: charge.Status, ExternalID: charge.ID,
	})
	s.postMessage(ctx, req, lc.User.ID, utils.RoleLawyer, models.MessageText, welcomeMessage)
	s.notify(ctx, req.WorkerID, "✅ Tu abogado aceptó tu caso", welcomeMessage,
		map[string]string{"type": "request_accepted", "requestId": req.ID})

	return s.getRequest(ctx, req.ID)
}

func (s *DefaultContactService) chargeLawyer(ctx context.Context, lc *lawyerContext, req *models.ContactRequest, paymentMethodID string) (*models.ChargeResult, error) {
	customerID, err := s.Stripe.EnsureCustomer(ctx, lc.User)
	if err != nil {
		return nil, err
	}
	charge, err := s.Stripe.Charge(ctx, payment.ChargeInput{
		CustomerID:      customerID,
		PaymentMethodID: paymentMethodID,
		Amount:          req.LawyerPaymentAmount,
		Description:     fmt.Sprintf("Aceptación de caso (%s) - Solicitud %s", req.Classification, req.ID),
		Metadata: map[string]string{
			"contactRequestId": req.ID,
			"lawyerId":         lc.Lawyer.ID,
			"userId":           lc.User.ID,
			"type":             models.PaymentLawyerAcceptance,
		},
	})
	if err != nil {
		return nil, err
	}
	if !charge.Succeeded() {
		return nil, fmt.Errorf("lawyer charge not successful: %s", charge.Status)
	}
	return charge, nil
}

// compensate refunds the worker after a failed lawyer charge and returns the error for the caller.
func (s *DefaultContactService) compensate(ctx context.Context, req *models.ContactRequest, cause error) error {
	logger := utils.GetLogger().With(zap.String("requestId", req.ID))
	s.setSaga(ctx, req.ID, models.SagaRefunding, cause.Error())

	if err := s.refundWorker(ctx, req); err != nil {
		logger.Error("compensate: worker refund failed", zap.Error(err))
		now := s.now()
		if uErr := s.Contacts.UpdateFields(ctx, req.ID, bson.M{
			"refundStatus": models.RefundFailed,
			"saga":         models.SagaState{Step: models.SagaRefundFailed, LastError: err.Error(), UpdatedAt: now},
		}); uErr != nil {
			logger.Error("compensate: failed to persist refund failure", zap.Error(uErr))
		}
		s.raiseAlert(ctx, models.AlertRefundFailed, models.SeverityHigh,
			fmt.Sprintf("No se pudo reembolsar al trabajador de la solicitud %s: %v", req.ID, err), req.ID)
		return utils.Internal("Error al procesar el cargo del abogado", "El reembolso al trabajador quedó pendiente de revisión")
	}

	now := s.now()
	if err := s.Contacts.UpdateFields(ctx, req.ID, bson.M{
		"status":            models.StatusCanceled,
		"workerPaid":        false,
		"refundStatus":      models.RefundProcessed,
		"refundProcessedAt": now,
		"saga":              models.SagaState{Step: models.SagaRefunded, LastError: cause.Error(), UpdatedAt: now},
	}); err != nil {
		logger.Error("compensate: failed to persist refund", zap.Error(err))
	}
	s.notify(ctx, req.WorkerID, "💸 Reembolso procesado",
		"No pudimos completar la conexión con el abogado. Te reembolsamos tu pago.",
		map[string]string{"type": "refund", "requestId": req.ID})
	return utils.Internal("Error al procesar el cargo del abogado", "Se reembolsó el pago del trabajador")
}

var errNothingToRefund = errors.New("no worker payment reference to refund")

// refundWorker returns the opening fee through the gateway the worker paid with.
func (s *DefaultContactService) refundWorker(ctx context.Context, req *models.ContactRequest) error {
	if req.WorkerPaymentID == "" {
		return errNothingToRefund
	}
	var err error
	switch req.PaymentGateway {
	case models.GatewayStripe:
		err = s.Stripe.Refund(ctx, req.WorkerPaymentID)
	case models.GatewayMP:
		err = s.MP.Refund(ctx, req.WorkerPaymentID)
	default:
		err = fmt.Errorf("gateway %q has no automatic refunds", req.PaymentGateway)
	}
	if err != nil {
		return err
	}
	s.recordPayment(ctx, &models.PaymentRecord{
		RequestID: req.ID, UserID: req.WorkerID, Gateway: req.PaymentGateway,
		Type: models.PaymentRefund, Amount: -req.OpeningFeePaid, Status: models.RefundProcessed, ExternalID: req.WorkerPaymentID,
	})
	return nil
}

// Reject declines a pending request and refunds the worker when they already paid.
func (s *DefaultContactService) Reject(ctx context.Context, lawyerUserID, requestID, reason string) (*models.ContactRequest, error) {
	lc, err := s.loadLawyer(ctx, lawyerUserID)
	if err != nil {
		return nil, err
	}
	req, err := s.ownedRequest(ctx, lc, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != models.StatusPending {
		return nil, utils.BadRequest("Esta solicitud ya fue procesada")
	}

	now := s.now()
	fields := bson.M{
		"status":          models.StatusRejected,
		"rejectedAt":      now,
		"rejectionReason": reason,
	}
	if req.WorkerPaid && req.WorkerPaymentID != "" {
		if err := s.refundWorker(ctx, req); err != nil {
			utils.GetLogger().Error("Reject: refund failed", zap.String("requestId", req.ID), zap.Error(err))
			fields["refundStatus"] = models.RefundFailed
			s.raiseAlert(ctx, models.AlertRefundFailed, models.SeverityHigh,
				fmt.Sprintf("Reembolso fallido al rechazar la solicitud %s", req.ID), req.ID)
		} else {
			fields["refundStatus"] = models.RefundProcessed
			fields["refundProcessedAt"] = now
		}
	}

	ok, err := s.Contacts.UpdateFieldsIf(ctx, req.ID, bson.M{"status": models.StatusPending, "saga.step": inFlight}, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to reject request: %w", err)
	}
	if !ok {
		return nil, utils.BadRequest("Esta solicitud ya fue procesada")
	}
	s.notify(ctx, req.WorkerID, "Solicitud rechazada",
		"El abogado no pudo tomar tu caso. Tu pago fue reembolsado, puedes elegir otro abogado.",
		map[string]string{"type": "request_rejected", "requestId": req.ID})
	return s.getRequest(ctx, req.ID)
}

// syncBothPaid sets bothPaymentsSucceeded with an update that only matches when both flags are
// stored as true. With unlock set, a pending request also moves to contact_unlocked.
func (s *DefaultContactService) syncBothPaid(ctx context.Context, requestID string, unlock bool) (bool, error) {
	cond := bson.M{"workerPaid": true, "lawyerPaid": true}
	fields := bson.M{"bothPaymentsSucceeded": true, "dataStatus": models.DataUnlocked}
	if unlock {
		matched, err := s.Contacts.UpdateFieldsIf(ctx, requestID,
			bson.M{"workerPaid": true, "lawyerPaid": true, "status": models.StatusPending},
			bson.M{"bothPaymentsSucceeded": true, "dataStatus": models.DataUnlocked, "status": models.StatusContactUnlocked})
		if err != nil || matched {
			return matched, err
		}
	}
	return s.Contacts.UpdateFieldsIf(ctx, requestID, cond, fields)
}

func (s *DefaultContactService) CheckBothPaymentsSuccess(ctx context.Context, requestID string) (bool, error) {
	req, err := s.getRequest(ctx, requestID)
	if err != nil {
		return false, err
	}
	stale := req.BothPaymentsSucceeded
	if !req.RecomputeBothPaid() {
		if stale {
			if err := s.Contacts.UpdateFields(ctx, requestID, bson.M{"bothPaymentsSucceeded": false}); err != nil {
				return false, fmt.Errorf("failed to reset payment state: %w", err)
			}
		}
		return false, nil
	}
	ok, err := s.syncBothPaid(ctx, requestID, true)
	if err != nil {
		return false, fmt.Errorf("failed to unlock contact: %w", err)
	}
	if ok {
		utils.GetLogger().Info("contact unlocked, both payments succeeded", zap.String("requestId", requestID))
	}
	return ok, nil
}

func (s *DefaultContactService) MarkPaid(ctx context.Context, requestID, side, gateway, externalID string) (*models.ContactRequest, error) {
	if _, err := s.getRequest(ctx, requestID); err != nil {
		return nil, err
	}
	fields := bson.M{}
	switch side {
	case SideWorker:
		fields["workerPaid"] = true
		if externalID != "" {
			fields["workerPaymentId"] = externalID
		}
		if gateway == models.GatewayManual {
			fields["paymentGateway"] = gateway
		}
	case SideLawyer:
		fields["lawyerPaid"] = true
		if externalID != "" {
			fields["lawyerPaymentId"] = externalID
		}
	default:
		return nil, utils.BadRequest("Tipo de pago inválido (worker/lawyer)")
	}
	if side == SideWorker {
		// A refunded or closed-out request never takes the worker fee back.
		ok, err := s.Contacts.UpdateFieldsIf(ctx, requestID, bson.M{
			"refundStatus": bson.M{"$ne": models.RefundProcessed},
			"status":       bson.M{"$nin": bson.A{models.StatusCanceled, models.StatusRejected}},
		}, fields)
		if err != nil {
			return nil, fmt.Errorf("failed to mark payment: %w", err)
		}
		if !ok {
			utils.GetLogger().Warn("ignoring worker payment on refunded or closed request",
				zap.String("requestId", requestID), zap.String("gateway", gateway), zap.String("externalId", externalID))
			return s.getRequest(ctx, requestID)
		}
	} else if err := s.Contacts.UpdateFields(ctx, requestID, fields); err != nil {
		return nil, fmt.Errorf("failed to mark payment: %w", err)
	}
	if _, err := s.CheckBothPaymentsSuccess(ctx, requestID); err != nil {
		return nil, err
	}
	return s.getRequest(ctx, requestID)
}
