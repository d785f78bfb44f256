package notification

import (
	"context"
	"fmt"
	"strings"

	"aliadolaboral/models"
	"aliadolaboral/services/tasks"
	"aliadolaboral/utils"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// NotificationService sends push notifications through Expo or FCM.
type NotificationService interface {
	// NotifyUser queues a push for one user. Users without a token are skipped.
	NotifyUser(ctx context.Context, userID, title, body string, data map[string]string) error
	// Broadcast queues a push for every user of role, or every user when role is empty.
	Broadcast(ctx context.Context, role, title, body string, data map[string]string) error
	// Deliver sends a queued push right away.
	Deliver(ctx context.Context, p models.PushPayload) error
	// DeliverBroadcast sends a queued broadcast right away.
	DeliverBroadcast(ctx context.Context, p models.BroadcastPayload) error
}

// UserLookup is the part of the user repository the notifier needs.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	ListWithPushToken(ctx context.Context, role string) ([]models.User, error)
}

// FCMSender is satisfied by *messaging.Client.
type FCMSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	Users UserLookup
	Queue tasks.Queue
	Expo  ExpoSender
	FCM   FCMSender
}

func NewDefaultNotificationService(users UserLookup, queue tasks.Queue, expo ExpoSender, fcm FCMSender) (*DefaultNotificationService, error) {
	if users == nil {
		return nil, fmt.Errorf("notification service initialization error: user repository is nil")
	}
	return &DefaultNotificationService{Users: users, Queue: queue, Expo: expo, FCM: fcm}, nil
}

func (s *DefaultNotificationService) NotifyUser(ctx context.Context, userID, title, body string, data map[string]string) error {
	payload := models.PushPayload{UserID: userID, Title: title, Body: body, Data: data}
	if s.Queue == nil {
		return s.Deliver(ctx, payload)
	}
	task, opts, err := tasks.NewPushTask(payload)
	if err != nil {
		return err
	}
	if _, err := s.Queue.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("NotifyUser: failed to enqueue push: %w", err)
	}
	return nil
}

func (s *DefaultNotificationService) Broadcast(ctx context.Context, role, title, body string, data map[string]string) error {
	payload := models.BroadcastPayload{Role: role, Title: title, Body: body, Data: data}
	if s.Queue == nil {
		return s.DeliverBroadcast(ctx, payload)
	}
	task, opts, err := tasks.NewBroadcastTask(payload)
	if err != nil {
		return err
	}
	if _, err := s.Queue.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("Broadcast: failed to enqueue: %w", err)
	}
	return nil
}

func (s *DefaultNotificationService) Deliver(ctx context.Context, p models.PushPayload) error {
	token := p.Token
	if token == "" {
		u, err := s.Users.GetByID(ctx, p.UserID)
		if err != nil {
			return fmt.Errorf("Deliver: could not find user %s: %w", p.UserID, err)
		}
		if u == nil || u.PushToken == "" {
			utils.GetLogger().Debug("push skipped, no token", zap.String("userId", p.UserID))
			return nil
		}
		token = u.PushToken
	}

	if IsExpoToken(token) {
		if s.Expo == nil {
			return nil
		}
		return s.Expo.Send(ctx, []ExpoMessage{newExpoMessage(token, p.Title, p.Body, p.Data)})
	}
	return s.sendFCM(ctx, token, p.Title, p.Body, p.Data)
}

func (s *DefaultNotificationService) DeliverBroadcast(ctx context.Context, p models.BroadcastPayload) error {
	users, err := s.Users.ListWithPushToken(ctx, p.Role)
	if err != nil {
		return fmt.Errorf("DeliverBroadcast: failed to list recipients: %w", err)
	}

	var expoMsgs []ExpoMessage
	var failed int
	for _, u := range users {
		if IsExpoToken(u.PushToken) {
			expoMsgs = append(expoMsgs, newExpoMessage(u.PushToken, p.Title, p.Body, p.Data))
			continue
		}
		if err := s.sendFCM(ctx, u.PushToken, p.Title, p.Body, p.Data); err != nil {
			failed++
		}
	}
	if s.Expo != nil {
		for _, chunk := range ChunkMessages(expoMsgs, ExpoChunkSize) {
			if err := s.Expo.Send(ctx, chunk); err != nil {
				failed += len(chunk)
				utils.GetLogger().Warn("expo chunk failed", zap.Error(err))
			}
		}
	}
	utils.GetLogger().Info("broadcast delivered",
		zap.String("role", p.Role), zap.Int("recipients", len(users)), zap.Int("failed", failed))
	return nil
}

func (s *DefaultNotificationService) sendFCM(ctx context.Context, token, title, body string, data map[string]string) error {
	if s.FCM == nil || strings.TrimSpace(token) == "" {
		return nil
	}
	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}
	if _, err := s.FCM.Send(ctx, msg); err != nil {
		return fmt.Errorf("sendFCM: failed to send FCM message: %w", err)
	}
	return nil
}
