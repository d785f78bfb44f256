package chat

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"aliadolaboral/models"
	"aliadolaboral/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

const previewLength = 50

// participant is the caller's seat in a request's chat.
type participant struct {
	req      *models.ContactRequest
	profile  *models.LawyerProfile
	isWorker bool
}

func (s *DefaultChatService) join(ctx context.Context, userID, requestID, deniedMsg string) (*participant, error) {
	req, err := s.Contacts.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load request: %w", err)
	}
	if req == nil {
		return nil, utils.NotFound("Solicitud no encontrada")
	}
	p := &participant{req: req, isWorker: req.WorkerID == userID}
	if req.LawyerProfileID != "" {
		profile, err := s.Lawyers.GetProfileByID(ctx, req.LawyerProfileID)
		if err != nil {
			return nil, fmt.Errorf("failed to load lawyer profile: %w", err)
		}
		p.profile = profile
	}
	isLawyer := p.profile != nil && p.profile.UserID == userID
	if !p.isWorker && !isLawyer {
		return nil, utils.Forbidden(deniedMsg)
	}
	return p, nil
}

func (s *DefaultChatService) Send(ctx context.Context, userID, requestID, content string) (*models.SendMessageResult, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, utils.BadRequest("El mensaje no puede estar vacío")
	}
	p, err := s.join(ctx, userID, requestID, "No tienes permiso para participar en este chat")
	if err != nil {
		return nil, err
	}
	req := p.req

	var worker *models.User
	if p.isWorker {
		if worker, err = s.Users.GetByID(ctx, req.WorkerID); err != nil {
			return nil, fmt.Errorf("failed to load worker: %w", err)
		}
	}

	// Pyme messages outside the lawyer's office hours wait for the next working day.
	var info string
	queued := false
	if p.isWorker && worker != nil && worker.Role == utils.RolePyme && p.profile != nil {
		if open, ok := withinSchedule(p.profile.Schedule, s.now().In(s.Location)); ok && !open {
			queued = true
			info = fmt.Sprintf("Tu abogado responderá a partir de las %s del siguiente día hábil.", p.profile.Schedule.Start)
		}
	}

	now := s.now()
	role := utils.RoleLawyer
	if p.isWorker {
		role = utils.RoleWorker
	}
	msg := &models.ChatMessage{
		ID:         uuid.New().String(),
		RequestID:  req.ID,
		SenderID:   userID,
		SenderRole: role,
		Content:    content,
		Type:       models.MessageText,
		Queued:     queued,
		CreatedAt:  now,
	}
	if err := s.Chats.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	set := bson.M{
		"lastMessage":         content,
		"lastMessageSenderId": userID,
		"lastMessageAt":       now,
	}
	inc := bson.M{}
	if p.isWorker {
		set["subStatus"] = models.SubWaitingLawyerResponse
		set["lastWorkerActivityAt"] = now
		inc["unreadCountLawyer"] = 1
	} else {
		set["subStatus"] = models.SubWaitingWorkerResponse
		set["lastLawyerActivityAt"] = now
		inc["unreadCountWorker"] = 1
	}
	if err := s.Contacts.Apply(ctx, req.ID, bson.M{"$set": set, "$inc": inc}); err != nil {
		utils.GetLogger().Error("failed to update chat summary", zap.String("requestId", req.ID), zap.Error(err))
	}

	if !queued {
		s.pushToOtherSide(ctx, p, worker, content)
	}
	return &models.SendMessageResult{ChatMessage: msg, Info: info}, nil
}

func (s *DefaultChatService) pushToOtherSide(ctx context.Context, p *participant, worker *models.User, content string) {
	if s.Notifier == nil {
		return
	}
	var recipient, sender string
	if p.isWorker {
		if p.profile == nil {
			return
		}
		recipient = p.profile.UserID
		sender = "Usuario"
		if worker != nil && worker.FullName != "" {
			sender = worker.FullName
		}
	} else {
		recipient = p.req.WorkerID
		sender = "Abogado"
		if p.profile.DisplayName != "" {
			sender = p.profile.DisplayName
		}
	}
	body := fmt.Sprintf("%s: %s", sender, preview(content))
	if err := s.Notifier.NotifyUser(ctx, recipient, "Nuevo Mensaje", body,
		map[string]string{"type": "chat_message", "requestId": p.req.ID}); err != nil {
		utils.GetLogger().Warn("failed to queue chat push", zap.String("requestId", p.req.ID), zap.Error(err))
	}
}

func preview(content string) string {
	if utf8.RuneCountInString(content) <= previewLength {
		return content
	}
	return string([]rune(content)[:previewLength]) + "..."
}

// withinSchedule reports whether now falls inside the HH:mm window. ok is false when
// there is no usable schedule.
func withinSchedule(sched *models.WorkSchedule, now time.Time) (open, ok bool) {
	if sched == nil {
		return false, false
	}
	start, err1 := time.Parse("15:04", sched.Start)
	end, err2 := time.Parse("15:04", sched.End)
	if err1 != nil || err2 != nil {
		utils.GetLogger().Warn("invalid lawyer schedule", zap.String("start", sched.Start), zap.String("end", sched.End))
		return false, false
	}
	minute := now.Hour()*60 + now.Minute()
	from := start.Hour()*60 + start.Minute()
	to := end.Hour()*60 + end.Minute()
	return minute > from && minute < to, true
}

func (s *DefaultChatService) History(ctx context.Context, userID, requestID string) ([]models.ChatMessage, error) {
	p, err := s.join(ctx, userID, requestID, "Acceso denegado")
	if err != nil {
		return nil, err
	}
	msgs, err := s.Chats.ListByRequest(ctx, requestID, HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	s.clearUnread(ctx, p, userID)
	return msgs, nil
}

func (s *DefaultChatService) MarkRead(ctx context.Context, userID, requestID string) error {
	p, err := s.join(ctx, userID, requestID, "Acceso denegado")
	if err != nil {
		return err
	}
	s.clearUnread(ctx, p, userID)
	return nil
}

func (s *DefaultChatService) clearUnread(ctx context.Context, p *participant, userID string) {
	field, count := "unreadCountLawyer", p.req.UnreadCountLawyer
	if p.isWorker {
		field, count = "unreadCountWorker", p.req.UnreadCountWorker
	}
	if count > 0 {
		if err := s.Contacts.UpdateFields(ctx, p.req.ID, bson.M{field: 0}); err != nil {
			utils.GetLogger().Warn("failed to reset unread counter", zap.String("requestId", p.req.ID), zap.Error(err))
		}
	}
	if err := s.Chats.MarkRead(ctx, p.req.ID, userID); err != nil {
		utils.GetLogger().Warn("failed to mark messages read", zap.String("requestId", p.req.ID), zap.Error(err))
	}
}
