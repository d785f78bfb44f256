package webhook

import (
	"context"
	"fmt"
	"time"

	"aliadolaboral/models"
	"aliadolaboral/services/contact"
	"aliadolaboral/utils"

	"github.com/tidwall/gjson"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// Stripe event types the platform reacts to.
const (
	EventIntentSucceeded     = "payment_intent.succeeded"
	EventIntentFailed        = "payment_intent.payment_failed"
	EventInvoicePaid         = "invoice.payment_succeeded"
	EventInvoiceFailed       = "invoice.payment_failed"
	EventSubscriptionDeleted = "customer.subscription.deleted"
	EventSubscriptionUpdated = "customer.subscription.updated"
)

func (s *DefaultWebhookService) HandleStripe(ctx context.Context, payload []byte, signature string) error {
	event, err := s.Stripe.ParseEvent(payload, signature)
	if err != nil {
		return utils.BadRequest("Webhook Error").WithExtra("details", err.Error())
	}
	if event.Data == nil {
		return utils.BadRequest("Webhook Error")
	}
	return s.process(ctx, "stripe", event.ID, func() error {
		return s.applyStripe(ctx, string(event.Type), event.Data.Raw)
	})
}

func (s *DefaultWebhookService) applyStripe(ctx context.Context, eventType string, raw []byte) error {
	logger := utils.GetLogger().With(zap.String("event", eventType))
	obj := gjson.ParseBytes(raw)

	switch eventType {
	case EventIntentSucceeded:
		return s.intentSucceeded(ctx, obj)
	case EventIntentFailed:
		logger.Warn("payment intent failed",
			zap.String("paymentIntent", obj.Get("id").String()),
			zap.String("requestId", obj.Get("metadata.contactRequestId").String()),
			zap.String("reason", obj.Get("last_payment_error.message").String()))
		utils.RecordPayment(models.GatewayStripe, obj.Get("metadata.type").String(), fmt.Errorf("payment failed"))
	case EventInvoicePaid:
		return s.invoicePaid(ctx, obj)
	case EventInvoiceFailed:
		if obj.Get("metadata.type").String() == models.PaymentCommission {
			return s.setCommissionStatus(ctx, obj, models.CommissionOverdue)
		}
		if subID := obj.Get("subscription").String(); subID != "" {
			return s.Lawyers.UpdateSubscriptionByStripeID(ctx, subID, bson.M{"status": models.SubPastDue})
		}
	case EventSubscriptionDeleted:
		return s.Lawyers.UpdateSubscriptionByStripeID(ctx, obj.Get("id").String(), bson.M{
			"status":    models.SubCanceled,
			"autoRenew": false,
		})
	case EventSubscriptionUpdated:
		fields := bson.M{"status": obj.Get("status").String()}
		if end := obj.Get("current_period_end").Int(); end > 0 {
			fields["endDate"] = time.Unix(end, 0)
		}
		return s.Lawyers.UpdateSubscriptionByStripeID(ctx, obj.Get("id").String(), fields)
	default:
		logger.Debug("unhandled stripe event")
	}
	return nil
}

func (s *DefaultWebhookService) intentSucceeded(ctx context.Context, pi gjson.Result) error {
	requestID := pi.Get("metadata.contactRequestId").String()
	if requestID == "" {
		return nil
	}
	var side string
	switch pi.Get("metadata.type").String() {
	case models.PaymentWorkerContactFee:
		side = contact.SideWorker
	case models.PaymentLawyerAcceptance:
		side = contact.SideLawyer
	default:
		return nil
	}
	if _, err := s.Payments.MarkPaid(ctx, requestID, side, models.GatewayStripe, pi.Get("id").String()); err != nil {
		return fmt.Errorf("failed to apply %s payment to request %s: %w", side, requestID, err)
	}
	utils.GetLogger().Info("stripe payment applied", zap.String("requestId", requestID), zap.String("side", side))
	return nil
}

func (s *DefaultWebhookService) invoicePaid(ctx context.Context, inv gjson.Result) error {
	if inv.Get("metadata.type").String() == models.PaymentCommission {
		return s.setCommissionStatus(ctx, inv, models.CommissionPaid)
	}
	subID := inv.Get("subscription").String()
	if subID == "" {
		return nil
	}
	fields := bson.M{"status": models.SubActive}
	if end := inv.Get("lines.data.0.period.end").Int(); end > 0 {
		fields["endDate"] = time.Unix(end, 0)
	}
	return s.Lawyers.UpdateSubscriptionByStripeID(ctx, subID, fields)
}

func (s *DefaultWebhookService) setCommissionStatus(ctx context.Context, inv gjson.Result, status string) error {
	requestID := inv.Get("metadata.contactRequestId").String()
	if requestID == "" {
		return nil
	}
	if err := s.Contacts.UpdateFields(ctx, requestID, bson.M{"commissionStatus": status}); err != nil {
		return fmt.Errorf("failed to set commission status: %w", err)
	}
	if status == models.CommissionPaid && s.Records != nil {
		if err := s.Records.CreatePayment(ctx, &models.PaymentRecord{
			RequestID:  requestID,
			Gateway:    models.GatewayStripe,
			Type:       models.PaymentCommission,
			Amount:     float64(inv.Get("amount_paid").Int()) / 100,
			Status:     models.CommissionPaid,
			ExternalID: inv.Get("id").String(),
		}); err != nil {
			utils.GetLogger().Error("failed to record commission payment", zap.String("requestId", requestID), zap.Error(err))
		}
	}
	return nil
}
