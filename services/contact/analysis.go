package contact

import (
	"context"
	"fmt"

	"aliadolaboral/models"
	"aliadolaboral/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

const (
	minLeadPrice = 150.0
	maxLeadPrice = 500.0
)

// leadPrice clamps the model's suggested price into the allowed range.
func leadPrice(suggested float64) float64 {
	switch {
	case suggested <= 0:
		return models.NormalLeadFee
	case suggested < minLeadPrice:
		return minLeadPrice
	case suggested > maxLeadPrice:
		return maxLeadPrice
	}
	return suggested
}

// AnalyzeCase runs the LLM assessment of a new request and alerts pro lawyers about valuable leads.
func (s *DefaultContactService) AnalyzeCase(ctx context.Context, requestID string) error {
	logger := utils.GetLogger().With(zap.String("requestId", requestID))
	if s.AI == nil {
		return fmt.Errorf("AI service not configured")
	}
	req, err := s.getRequest(ctx, requestID)
	if err != nil {
		return err
	}
	analysis, err := s.AI.AnalyzeCase(ctx, req)
	if err != nil {
		return fmt.Errorf("case analysis failed: %w", err)
	}

	classification := models.ClassNormal
	switch {
	case analysis.EsMaquinaria:
		classification = models.ClassMachinery
	case analysis.EsCaliente:
		classification = models.ClassHot
	}
	fields := bson.M{
		"aiSummary":      analysis.Resumen,
		"isCollective":   analysis.EsColectivo,
		"classification": classification,
		"isHot":          analysis.EsCaliente || analysis.EsMaquinaria,
		"urgencyScore":   analysis.Urgencia * 10,
	}
	// Price only changes while nobody has paid for the lead.
	if req.Status == models.StatusPending && !req.LawyerPaid {
		fields["lawyerPaymentAmount"] = leadPrice(analysis.PrecioLead)
	}
	if err := s.Contacts.UpdateFields(ctx, req.ID, fields); err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	logger.Info("case analysis complete",
		zap.String("classification", classification), zap.Bool("collective", analysis.EsColectivo))

	if analysis.EsCaliente || analysis.EsColectivo {
		s.alertProLawyers(ctx, req.ID, analysis)
	}
	return nil
}

func (s *DefaultContactService) alertProLawyers(ctx context.Context, requestID string, analysis *models.CaseAnalysis) {
	subs, err := s.Lawyers.ListSubscriptions(ctx, bson.M{"plan": models.PlanPro, "status": models.SubActive})
	if err != nil {
		utils.GetLogger().Error("failed to list pro lawyers", zap.Error(err))
		return
	}
	title := "🔥 Nuevo Caso HOT de Alto Valor"
	if analysis.EsColectivo {
		title = "🚨 ALERTA: Caso Colectivo Detectado"
	}
	body := fmt.Sprintf("%s (Valor Est: $%.0f)", analysis.Resumen, analysis.MontoEstimado)
	data := map[string]string{"requestId": requestID, "type": "HOT_LEAD"}
	for _, sub := range subs {
		lawyer, err := s.Lawyers.GetLawyerByID(ctx, sub.LawyerID)
		if err != nil || lawyer == nil || !lawyer.IsVerified || lawyer.Status == models.LawyerSuspended {
			continue
		}
		s.notify(ctx, lawyer.UserID, title, body, data)
	}
}
