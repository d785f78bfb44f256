package contact

import (
	"context"
	"fmt"
	"strings"
	"time"

	"aliadolaboral/models"
	"aliadolaboral/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// ReportFraud closes the lead as lost and blocks the worker permanently.
func (s *DefaultContactService) ReportFraud(ctx context.Context, lawyerUserID, requestID, reason string) error {
	lc, err := s.loadLawyer(ctx, lawyerUserID)
	if err != nil {
		return err
	}
	req, err := s.ownedRequest(ctx, lc, requestID)
	if err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "Fraude reportado por el abogado"
	}

	if err := s.Contacts.UpdateFields(ctx, req.ID, bson.M{
		"status":          models.StatusRejected,
		"crmStatus":       models.CRMClosedLost,
		"subStatus":       models.SubFraudReported,
		"rejectionReason": reason,
		"rejectedAt":      s.now(),
	}); err != nil {
		return fmt.Errorf("failed to flag request: %w", err)
	}
	if err := s.Users.UpdateFields(ctx, req.WorkerID, bson.M{
		"isBlocked":   true,
		"blockReason": reason,
	}); err != nil {
		return fmt.Errorf("failed to block worker: %w", err)
	}

	if s.Records != nil {
		if err := s.Records.LogActivity(ctx, &models.ActivityLog{
			ID:        uuid.New().String(),
			ActorID:   lawyerUserID,
			Action:    models.ActionBlockUser,
			TargetID:  req.WorkerID,
			Details:   reason,
			CreatedAt: time.Now(),
		}); err != nil {
			utils.GetLogger().Warn("ReportFraud: failed to log activity", zap.Error(err))
		}
	}
	s.raiseAlert(ctx, models.AlertFraudReported, models.SeverityMedium,
		fmt.Sprintf("Fraude reportado en la solicitud %s: %s", req.ID, reason), req.WorkerID)
	return nil
}
