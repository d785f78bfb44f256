// Package notificationtest records pushes instead of sending them.
package notificationtest

import (
	"context"
	"sync"

	"aliadolaboral/models"
	"aliadolaboral/services/notification"
)

// Recorder implements NotificationService in memory.
type Recorder struct {
	mu         sync.Mutex
	Pushes     []models.PushPayload
	Broadcasts []models.BroadcastPayload
}

var _ notification.NotificationService = (*Recorder)(nil)

func (r *Recorder) NotifyUser(ctx context.Context, userID, title, body string, data map[string]string) error {
	return r.Deliver(ctx, models.PushPayload{UserID: userID, Title: title, Body: body, Data: data})
}

func (r *Recorder) Broadcast(ctx context.Context, role, title, body string, data map[string]string) error {
	return r.DeliverBroadcast(ctx, models.BroadcastPayload{Role: role, Title: title, Body: body, Data: data})
}

func (r *Recorder) Deliver(ctx context.Context, p models.PushPayload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Pushes = append(r.Pushes, p)
	return nil
}

func (r *Recorder) DeliverBroadcast(ctx context.Context, p models.BroadcastPayload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Broadcasts = append(r.Broadcasts, p)
	return nil
}

// To returns the pushes sent to userID.
func (r *Recorder) To(userID string) []models.PushPayload {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.PushPayload
	for _, p := range r.Pushes {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out
}
