package contact

import (
	"context"
	"fmt"

	"aliadolaboral/models"
	"aliadolaboral/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// lawyerContext bundles the records every lawyer-side operation needs.
type lawyerContext struct {
	User    *models.User
	Lawyer  *models.Lawyer
	Profile *models.LawyerProfile
	Sub     *models.LawyerSubscription
}

func (s *DefaultContactService) loadLawyer(ctx context.Context, userID string) (*lawyerContext, error) {
	lawyer, err := s.Lawyers.GetLawyerByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lawyer: %w", err)
	}
	if lawyer == nil {
		return nil, utils.NotFound("Perfil de abogado no encontrado")
	}
	profile, err := s.Lawyers.GetProfileByLawyerID(ctx, lawyer.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lawyer profile: %w", err)
	}
	if profile == nil {
		return nil, utils.NotFound("Perfil de abogado no encontrado")
	}
	sub, err := s.Lawyers.GetSubscriptionByLawyerID(ctx, lawyer.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lawyer subscription: %w", err)
	}
	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lawyer user: %w", err)
	}
	if user == nil {
		return nil, utils.NotFound("Usuario no encontrado")
	}
	return &lawyerContext{User: user, Lawyer: lawyer, Profile: profile, Sub: sub}, nil
}

func (s *DefaultContactService) getRequest(ctx context.Context, id string) (*models.ContactRequest, error) {
	req, err := s.Contacts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load request: %w", err)
	}
	if req == nil {
		return nil, utils.NotFound("Solicitud no encontrada")
	}
	return req, nil
}

// ownedRequest loads a request and checks it is assigned to the lawyer's profile.
func (s *DefaultContactService) ownedRequest(ctx context.Context, lc *lawyerContext, id string) (*models.ContactRequest, error) {
	req, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.LawyerProfileID != lc.Profile.ID {
		return nil, utils.Forbidden("No autorizado")
	}
	return req, nil
}

// postMessage writes a chat message on the request.
func (s *DefaultContactService) postMessage(ctx context.Context, req *models.ContactRequest, senderID, senderRole, msgType, content string) {
	now := s.now()
	msg := &models.ChatMessage{
		ID:         uuid.New().String(),
		RequestID:  req.ID,
		SenderID:   senderID,
		SenderRole: senderRole,
		Content:    content,
		Type:       msgType,
		CreatedAt:  now,
	}
	if err := s.Chats.Create(ctx, msg); err != nil {
		utils.GetLogger().Error("failed to post chat message", zap.String("requestId", req.ID), zap.Error(err))
	}
}

func (s *DefaultContactService) notify(ctx context.Context, userID, title, body string, data map[string]string) {
	if s.Notifier == nil || userID == "" {
		return
	}
	if err := s.Notifier.NotifyUser(ctx, userID, title, body, data); err != nil {
		utils.GetLogger().Warn("failed to queue push", zap.String("userId", userID), zap.Error(err))
	}
}

func (s *DefaultContactService) recordPayment(ctx context.Context, rec *models.PaymentRecord) {
	utils.RecordPayment(rec.Gateway, rec.Type, nil)
	if s.Records == nil {
		return
	}
	rec.ID = uuid.New().String()
	rec.CreatedAt = s.now()
	if err := s.Records.CreatePayment(ctx, rec); err != nil {
		utils.GetLogger().Error("failed to record payment", zap.String("requestId", rec.RequestID), zap.Error(err))
	}
}

func (s *DefaultContactService) raiseAlert(ctx context.Context, alertType, severity, message, entityID string) {
	if s.Records == nil {
		return
	}
	alert := &models.AdminAlert{
		ID:        uuid.New().String(),
		Type:      alertType,
		Severity:  severity,
		Message:   message,
		EntityID:  entityID,
		CreatedAt: s.now(),
	}
	if err := s.Records.CreateAlert(ctx, alert); err != nil {
		utils.GetLogger().Error("failed to create admin alert", zap.String("type", alertType), zap.Error(err))
	}
}
