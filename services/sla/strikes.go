package sla

import (
	"context"
	"fmt"

	"aliadolaboral/models"
	"aliadolaboral/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func (s *DefaultSLAService) AddStrike(ctx context.Context, lawyerID, reason string) (*StrikeResult, error) {
	lawyer, err := s.Lawyers.IncrementStrikes(ctx, lawyerID)
	if err != nil {
		return nil, fmt.Errorf("failed to add strike: %w", err)
	}
	if lawyer == nil {
		return nil, utils.NotFound("Abogado no encontrado")
	}
	utils.RecordStrike(reason)

	res := &StrikeResult{
		LawyerID:  lawyer.ID,
		Strikes:   lawyer.Strikes,
		Suspended: lawyer.Status == models.LawyerSuspended,
	}
	if lawyer.Strikes < models.MaxStrikes || res.Suspended {
		return res, nil
	}

	if err := s.Lawyers.UpdateLawyerFields(ctx, lawyer.ID, bson.M{"status": models.LawyerSuspended}); err != nil {
		return nil, fmt.Errorf("failed to suspend lawyer: %w", err)
	}
	res.Suspended = true
	utils.GetLogger().Warn("lawyer suspended after reaching strike limit",
		zap.String("lawyerId", lawyer.ID), zap.Int("strikes", lawyer.Strikes))

	alert := &models.AdminAlert{
		ID:       uuid.New().String(),
		Type:     models.AlertLawyerSuspended,
		Severity: models.SeverityHigh,
		Message: fmt.Sprintf("El abogado con ID %s fue suspendido automáticamente por acumular %d strikes de inactividad.",
			lawyer.ID, lawyer.Strikes),
		EntityID:  lawyer.UserID,
		CreatedAt: s.now(),
	}
	if err := s.Records.CreateAlert(ctx, alert); err != nil {
		utils.GetLogger().Error("failed to create suspension alert", zap.String("lawyerId", lawyer.ID), zap.Error(err))
	}
	return res, nil
}

func (s *DefaultSLAService) CheckInactiveChats(ctx context.Context) (int, error) {
	stale, err := s.Contacts.FindStaleChats(ctx, s.now().Add(-ChatResponseWindow))
	if err != nil {
		utils.RecordJobRun("inactive_chats", err)
		return 0, fmt.Errorf("failed to find stale chats: %w", err)
	}
	utils.GetLogger().Info("checking lawyer inactivity", zap.Int("candidates", len(stale)))

	penalized := 0
	for i := range stale {
		if s.penalize(ctx, &stale[i], models.RejectionTimeout) {
			penalized++
		}
	}
	utils.RecordJobRun("inactive_chats", nil)
	return penalized, nil
}

func (s *DefaultSLAService) RunNightlyReview(ctx context.Context) (*NightlyReport, error) {
	logger := utils.GetLogger().Sugar()
	now := s.now()
	report := &NightlyReport{}

	neglected, err := s.Contacts.FindUncontacted(ctx, now.Add(-FirstContactWindow))
	if err != nil {
		utils.RecordJobRun("nightly_sla", err)
		return nil, fmt.Errorf("failed to find uncontacted requests: %w", err)
	}
	for i := range neglected {
		if s.penalize(ctx, &neglected[i], models.RejectionSLA) {
			report.Reassigned++
		}
	}

	inactive, err := s.Contacts.FindInactive(ctx, now.Add(-AttentionWindow))
	if err != nil {
		utils.RecordJobRun("nightly_sla", err)
		return report, fmt.Errorf("failed to find inactive requests: %w", err)
	}
	for _, req := range inactive {
		if err := s.Contacts.UpdateFields(ctx, req.ID, bson.M{"subStatus": models.SubNeedsAttention}); err != nil {
			logger.Errorf("failed to flag request %s: %v", req.ID, err)
			continue
		}
		report.Flagged++
	}

	logger.Infof("nightly SLA review done: %d reassigned, %d flagged", report.Reassigned, report.Flagged)
	utils.RecordJobRun("nightly_sla", nil)
	return report, nil
}

// penalize releases the request back to the pool and strikes the lawyer that held it.
// It reports false when the request changed hands before it could be released.
func (s *DefaultSLAService) penalize(ctx context.Context, req *models.ContactRequest, reason string) bool {
	logger := utils.GetLogger().With(zap.String("requestId", req.ID), zap.String("reason", reason))
	if req.LawyerProfileID == "" {
		return false
	}
	profile, err := s.Lawyers.GetProfileByID(ctx, req.LawyerProfileID)
	if err != nil || profile == nil {
		logger.Warn("penalize: lawyer profile not found", zap.Error(err))
		return false
	}

	now := s.now()
	released, err := s.Contacts.UpdateFieldsIf(ctx, req.ID,
		bson.M{"status": models.StatusAccepted, "lawyerProfileId": req.LawyerProfileID},
		bson.M{
			"status":                models.StatusPending,
			"subStatus":             models.SubWaitingLawyer,
			"crmStatus":             models.CRMNew,
			"lawyerProfileId":       "",
			"lawyerPaid":            false,
			"bothPaymentsSucceeded": false,
			"dataStatus":            models.DataMasked,
			"rejectionReason":       reason,
			"lastWorkerActivityAt":  now,
			"lastLawyerActivityAt":  nil,
		})
	if err != nil {
		logger.Error("penalize: failed to release request", zap.Error(err))
		return false
	}
	if !released {
		return false
	}
	if err := s.Contacts.Apply(ctx, req.ID, bson.M{"$inc": bson.M{"rejectionCount": 1}}); err != nil {
		logger.Warn("penalize: failed to bump rejection count", zap.Error(err))
	}

	strike, err := s.AddStrike(ctx, profile.LawyerID, reason)
	if err != nil {
		logger.Error("penalize: failed to strike lawyer", zap.Error(err))
	} else {
		logger.Info("lawyer penalized", zap.String("lawyerId", strike.LawyerID),
			zap.Int("strikes", strike.Strikes), zap.Bool("suspended", strike.Suspended))
	}

	s.notify(ctx, profile.UserID, "⚠️ Strike Aplicado: Inactividad",
		"Has perdido un caso por no responder en 24h. Se te ha aplicado un reporte.",
		map[string]string{"type": "strike_alert", "lawyerId": profile.LawyerID})
	s.notify(ctx, req.WorkerID, "🔄 Reasignando Abogado",
		"Tu abogado anterior no respondió a tiempo. Estamos buscando uno nuevo con mayor disponibilidad.",
		map[string]string{"type": "reassignment", "requestId": req.ID})
	return true
}

func (s *DefaultSLAService) notify(ctx context.Context, userID, title, body string, data map[string]string) {
	if s.Notifier == nil || userID == "" {
		return
	}
	if err := s.Notifier.NotifyUser(ctx, userID, title, body, data); err != nil {
		utils.GetLogger().Warn("failed to queue push", zap.String("userId", userID), zap.Error(err))
	}
}
