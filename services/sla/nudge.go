package sla

import (
	"context"
	"fmt"
	"time"

	"aliadolaboral/models"
	"aliadolaboral/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

const nudgeBatch = 200

const (
	redWorkerMessage = "🔴 **Semáforo Rojo:** Tu caso requiere atención. Estamos contactando al despacho directamente.\n\n" +
		"**Mientras tanto, recuerda tus derechos:**\n" +
		"1. Tienes derecho a una copia de todo lo actuado.\n" +
		"2. La inactividad no extingue tu derecho a la liquidación.\n" +
		"3. Aliado Laboral ha penalizado la reputación del abogado por esta demora."
	yellowLawyerMessage = "⚡ **¡Lic. %s, no bajes tu ritmo!**\n\n" +
		"Tu tiempo de respuesta ha subido a 4 días. Los abogados con respuesta < 24h tienen un **40%% más de probabilidad** de recibir casos HOT.\n\n" +
		"¡Contesta ahora y recupera tu Score de Oro!"
	yellowWorkerMessage = "🟡 **Semáforo Amarillo:** Estamos esperando una actualización. " +
		"Elías (IA) ya ha enviado un recordatorio prioritario a tu abogado para que no pierda el hilo."
)

// RunNudges looks at accepted, open cases whose lawyer has been silent for NudgeAfter.
// Each silent stretch gets at most one yellow and one red nudge; the red one costs the
// lawyer a reputation point once the silence passes EscalateAfter.
func (s *DefaultSLAService) RunNudges(ctx context.Context) (int, error) {
	now := s.now()
	stale, err := s.Contacts.List(ctx, bson.M{
		"status":               models.StatusAccepted,
		"crmStatus":            bson.M{"$nin": bson.A{models.CRMClosedWon, models.CRMClosedLost}},
		"lawyerProfileId":      bson.M{"$nin": bson.A{nil, ""}},
		"lastLawyerActivityAt": bson.M{"$lt": now.Add(-NudgeAfter)},
	}, nudgeBatch)
	if err != nil {
		utils.RecordJobRun("nudges", err)
		return 0, fmt.Errorf("failed to find stale cases: %w", err)
	}

	nudged := 0
	for i := range stale {
		level := nudgeLevel(&stale[i], now)
		if level == "" {
			continue
		}
		if err := s.nudge(ctx, &stale[i], level); err != nil {
			utils.GetLogger().Warn("nudge failed", zap.String("requestId", stale[i].ID), zap.Error(err))
			continue
		}
		nudged++
	}
	utils.RecordJobRun("nudges", nil)
	return nudged, nil
}

// nudgeLevel returns the severity still owed to req, or "" when it was already sent
// for the current silent stretch.
func nudgeLevel(req *models.ContactRequest, now time.Time) string {
	if req.LastLawyerActivityAt == nil {
		return ""
	}
	level := models.SeverityYellow
	if now.Sub(*req.LastLawyerActivityAt) >= EscalateAfter {
		level = models.SeverityRed
	}
	sentThisStretch := req.LastNudgeAt != nil && req.LastNudgeAt.After(*req.LastLawyerActivityAt)
	if !sentThisStretch {
		return level
	}
	if req.NudgeLevel == models.SeverityRed || req.NudgeLevel == level {
		return ""
	}
	return level
}

func (s *DefaultSLAService) nudge(ctx context.Context, req *models.ContactRequest, level string) error {
	profile, err := s.Lawyers.GetProfileByID(ctx, req.LawyerProfileID)
	if err != nil {
		return err
	}
	if profile == nil {
		return fmt.Errorf("lawyer profile %s not found", req.LawyerProfileID)
	}

	if level == models.SeverityRed {
		s.post(ctx, req.ID, models.SeverityRed, redWorkerMessage)
		if err := s.Lawyers.IncrementProfile(ctx, profile.ID, bson.M{"reputation": -1}); err != nil {
			return fmt.Errorf("failed to lower reputation: %w", err)
		}
		s.notify(ctx, profile.UserID, "🔴 Caso en Semáforo Rojo",
			"Un caso lleva más de 7 días sin movimiento y afectó tu reputación.",
			map[string]string{"type": "nudge", "requestId": req.ID})
	} else {
		name := profile.DisplayName
		if name == "" {
			name = "Colega"
		}
		s.post(ctx, req.ID, models.SeverityYellow, fmt.Sprintf(yellowLawyerMessage, name))
		s.post(ctx, req.ID, models.SeverityYellow, yellowWorkerMessage)
		s.notify(ctx, profile.UserID, "⚡ Tienes un caso esperando",
			"Tu cliente lleva 4 días esperando una actualización.",
			map[string]string{"type": "nudge", "requestId": req.ID})
	}

	// Only the nudge bookkeeping moves; lastLawyerActivityAt keeps measuring the silence.
	return s.Contacts.UpdateFields(ctx, req.ID, bson.M{"lastNudgeAt": s.now(), "nudgeLevel": level})
}

func (s *DefaultSLAService) post(ctx context.Context, requestID, severity, content string) {
	msg := &models.ChatMessage{
		ID:         uuid.New().String(),
		RequestID:  requestID,
		SenderID:   models.SenderSystem,
		SenderRole: models.SenderSystem,
		Content:    content,
		Type:       models.MessageNudge,
		Severity:   severity,
		CreatedAt:  s.now(),
	}
	if err := s.Chats.Create(ctx, msg); err != nil {
		utils.GetLogger().Error("failed to post nudge", zap.String("requestId", requestID), zap.Error(err))
	}
}
