package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"aliadolaboral/models"
	"aliadolaboral/services/contact"
	"aliadolaboral/utils"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const mpApproved = "approved"

// VerifyMPSignature checks the x-signature header ("ts=...,v1=...") against the shared secret.
func VerifyMPSignature(secret string, header http.Header, dataID string) bool {
	var ts, v1 string
	for _, part := range strings.Split(header.Get("x-signature"), ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "ts":
			ts = kv[1]
		case "v1":
			v1 = kv[1]
		}
	}
	if ts == "" || v1 == "" {
		return false
	}
	manifest := fmt.Sprintf("id:%s;request-id:%s;ts:%s;", strings.ToLower(dataID), header.Get("x-request-id"), ts)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(manifest))
	return hmac.Equal([]byte(hex.EncodeToString(mac.Sum(nil))), []byte(v1))
}

func (s *DefaultWebhookService) HandleMercadoPago(ctx context.Context, body []byte, header http.Header, dataID string) error {
	logger := utils.GetLogger()
	payload := gjson.ParseBytes(body)
	kind := payload.Get("type").String()
	if kind == "" {
		kind = payload.Get("topic").String()
	}
	if id := payload.Get("data.id").String(); id != "" {
		dataID = id
	}
	if s.MPSecret != "" && !VerifyMPSignature(s.MPSecret, header, dataID) {
		return utils.Unauthorized("Firma inválida")
	}
	if kind != "payment" || dataID == "" {
		return nil
	}

	p, err := s.MP.GetPayment(ctx, dataID)
	if err != nil {
		logger.Error("mercadopago: failed to fetch payment", zap.String("paymentId", dataID), zap.Error(err))
		return fmt.Errorf("failed to fetch mercadopago payment: %w", err)
	}
	if p.Status != mpApproved || p.ExternalReference == "" {
		logger.Info("mercadopago: payment not approved yet", zap.String("paymentId", dataID), zap.String("status", p.Status))
		return nil
	}
	if workerID, ok := strings.CutPrefix(p.ExternalReference, models.SubscriptionReferencePrefix); ok {
		return s.process(ctx, "mercadopago", p.ID, func() error {
			utils.RecordPayment(models.GatewayMP, models.PaymentSubscription, nil)
			if s.Records == nil {
				return nil
			}
			return s.Records.CreatePayment(ctx, &models.PaymentRecord{
				UserID:     workerID,
				Gateway:    models.GatewayMP,
				Type:       models.PaymentSubscription,
				Amount:     p.Amount,
				Status:     p.Status,
				ExternalID: p.ID,
			})
		})
	}
	return s.process(ctx, "mercadopago", p.ID, func() error {
		req, err := s.Payments.MarkPaid(ctx, p.ExternalReference, contact.SideWorker, models.GatewayMP, p.ID)
		if err != nil {
			return fmt.Errorf("failed to apply mercadopago payment: %w", err)
		}
		if s.Records != nil {
			if err := s.Records.CreatePayment(ctx, &models.PaymentRecord{
				RequestID:  p.ExternalReference,
				UserID:     req.WorkerID,
				Gateway:    models.GatewayMP,
				Type:       models.PaymentWorkerContactFee,
				Amount:     p.Amount,
				Status:     p.Status,
				ExternalID: p.ID,
			}); err != nil {
				logger.Error("mercadopago: failed to record payment", zap.Error(err))
			}
		}
		utils.RecordPayment(models.GatewayMP, models.PaymentWorkerContactFee, nil)
		return nil
	})
}
