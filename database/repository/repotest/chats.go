package repotest

import (
	"context"
	"sync"
	"time"

	"aliadolaboral/database/repository"
	"aliadolaboral/models"
)

// Chats is an in-memory ChatRepository.
type Chats struct {
	mu       sync.Mutex
	Messages []models.ChatMessage
}

var _ repository.ChatRepository = (*Chats)(nil)

func NewChats() *Chats { return &Chats{} }

func (c *Chats) Create(ctx context.Context, msg *models.ChatMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	c.Messages = append(c.Messages, *msg)
	return nil
}

func (c *Chats) ListByRequest(ctx context.Context, requestID string, limit int64) ([]models.ChatMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []models.ChatMessage
	for _, m := range c.Messages {
		if m.RequestID == requestID {
			out = append(out, m)
			if limit > 0 && int64(len(out)) == limit {
				break
			}
		}
	}
	return out, nil
}

func (c *Chats) MarkRead(ctx context.Context, requestID, readerID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for i := range c.Messages {
		m := &c.Messages[i]
		if m.RequestID == requestID && m.SenderID != readerID && m.ReadAt == nil {
			m.ReadAt = &now
		}
	}
	return nil
}

// OfType returns the messages of a request with the given type.
func (c *Chats) OfType(requestID, msgType string) []models.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []models.ChatMessage
	for _, m := range c.Messages {
		if m.RequestID == requestID && m.Type == msgType {
			out = append(out, m)
		}
	}
	return out
}
