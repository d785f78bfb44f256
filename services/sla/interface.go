package sla

import (
	"context"
	"time"

	"aliadolaboral/database/repository"
	"aliadolaboral/services/notification"
)

// SLAService enforces lawyer response times on accepted requests.
type SLAService interface {
	// CheckInactiveChats strikes lawyers silent for a day on an active chat and releases the request.
	CheckInactiveChats(ctx context.Context) (int, error)
	// RunNightlyReview strikes lawyers that never contacted an accepted worker and flags stale cases.
	RunNightlyReview(ctx context.Context) (*NightlyReport, error)
	// RunNudges posts reminders on cases without movement for several days.
	RunNudges(ctx context.Context) (int, error)
	// AddStrike applies one strike to a lawyer, suspending at the limit.
	AddStrike(ctx context.Context, lawyerID, reason string) (*StrikeResult, error)
}

// NightlyReport summarises one nightly run.
type NightlyReport struct {
	Reassigned int `json:"reassigned"`
	Flagged    int `json:"flagged"`
}

// StrikeResult is the lawyer state after a strike.
type StrikeResult struct {
	LawyerID  string `json:"lawyerId"`
	Strikes   int    `json:"strikes"`
	Suspended bool   `json:"suspended"`
}

const (
	ChatResponseWindow = 24 * time.Hour
	FirstContactWindow = 24 * time.Hour
	AttentionWindow    = 5 * 24 * time.Hour
	NudgeAfter         = 4 * 24 * time.Hour
	EscalateAfter      = 7 * 24 * time.Hour
)

// DefaultSLAService is the production implementation.
type DefaultSLAService struct {
	Contacts repository.ContactRepository
	Lawyers  repository.LawyerRepository
	Chats    repository.ChatRepository
	Records  repository.RecordRepository
	Notifier notification.NotificationService
	Now      func() time.Time
}

func NewDefaultSLAService(
	contacts repository.ContactRepository,
	lawyers repository.LawyerRepository,
	chats repository.ChatRepository,
	records repository.RecordRepository,
	notifier notification.NotificationService,
) *DefaultSLAService {
	return &DefaultSLAService{
		Contacts: contacts,
		Lawyers:  lawyers,
		Chats:    chats,
		Records:  records,
		Notifier: notifier,
		Now:      time.Now,
	}
}

func (s *DefaultSLAService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
