package chat

import (
	"context"
	"time"

	"aliadolaboral/database/repository"
	"aliadolaboral/models"
	"aliadolaboral/services/notification"
)

// ChatService carries the conversation between a worker and the lawyer of a request.
type ChatService interface {
	Send(ctx context.Context, userID, requestID, content string) (*models.SendMessageResult, error)
	// History returns the latest messages oldest first and clears the caller's unread counter.
	History(ctx context.Context, userID, requestID string) ([]models.ChatMessage, error)
	MarkRead(ctx context.Context, userID, requestID string) error
}

// HistoryLimit caps the messages returned by History.
const HistoryLimit = 100

type DefaultChatService struct {
	Contacts repository.ContactRepository
	Lawyers  repository.LawyerRepository
	Users    repository.UserRepository
	Chats    repository.ChatRepository
	Notifier notification.NotificationService
	// Location is where lawyer schedules are interpreted.
	Location *time.Location
	Now      func() time.Time
}

func NewDefaultChatService(
	contacts repository.ContactRepository,
	lawyers repository.LawyerRepository,
	users repository.UserRepository,
	chats repository.ChatRepository,
	notifier notification.NotificationService,
) *DefaultChatService {
	loc, err := time.LoadLocation("America/Mexico_City")
	if err != nil {
		loc = time.Local
	}
	return &DefaultChatService{
		Contacts: contacts,
		Lawyers:  lawyers,
		Users:    users,
		Chats:    chats,
		Notifier: notifier,
		Location: loc,
		Now:      time.Now,
	}
}

func (s *DefaultChatService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
