package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"aliadolaboral/database/repository"
	"aliadolaboral/models"
	"aliadolaboral/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// AnalyticsService records product events and summarises the conversion funnel.
type AnalyticsService interface {
	Track(ctx context.Context, userID string, in models.EventInput) error
	Dashboard(ctx context.Context) (*models.AnalyticsDashboard, error)
}

type DefaultAnalyticsService struct {
	Records  repository.RecordRepository
	Contacts repository.ContactRepository
	Now      func() time.Time
}

func NewDefaultAnalyticsService(records repository.RecordRepository, contacts repository.ContactRepository) *DefaultAnalyticsService {
	return &DefaultAnalyticsService{Records: records, Contacts: contacts, Now: time.Now}
}

func (s *DefaultAnalyticsService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultAnalyticsService) Track(ctx context.Context, userID string, in models.EventInput) error {
	name := strings.TrimSpace(in.Event)
	if name == "" {
		return utils.BadRequest("Event name is required")
	}
	at := s.now()
	if in.Timestamp != nil && !in.Timestamp.IsZero() {
		at = *in.Timestamp
	}
	if err := s.Records.CreateEvent(ctx, &models.AnalyticsEvent{
		ID:         uuid.New().String(),
		UserID:     userID,
		Event:      name,
		Properties: in.Metadata,
		CreatedAt:  at,
	}); err != nil {
		return utils.Internal("Log failed", err.Error())
	}
	return nil
}

func (s *DefaultAnalyticsService) Dashboard(ctx context.Context) (*models.AnalyticsDashboard, error) {
	d := &models.AnalyticsDashboard{}
	counts := []struct {
		event string
		dst   *int64
	}{
		{models.EventLeadLockedView, &d.Monetization.LockedViews},
		{models.EventLeadUnlockTap, &d.Monetization.UnlockAttempts},
		{models.EventSalaryComparisonView, &d.Growth.SalaryThermometerUses},
		{models.EventVaultFileUploaded, &d.Growth.VaultUploads},
	}
	for _, c := range counts {
		n, err := s.Records.CountEvents(ctx, c.event, time.Time{})
		if err != nil {
			return nil, utils.Internal("Error fetching metrics", err.Error())
		}
		*c.dst = n
	}
	rate := 0.0
	if d.Monetization.LockedViews > 0 {
		rate = float64(d.Monetization.UnlockAttempts) / float64(d.Monetization.LockedViews) * 100
	}
	d.Monetization.ConversionRate = fmt.Sprintf("%.1f%%", rate)

	leads, err := s.Contacts.Count(ctx, bson.M{"createdAt": bson.M{"$gte": s.now().Add(-24 * time.Hour)}})
	if err != nil {
		return nil, utils.Internal("Error fetching metrics", err.Error())
	}
	d.Activity.NewLeads24h = leads
	return d, nil
}
