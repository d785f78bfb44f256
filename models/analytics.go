package models

import "time"

// AnalyticsEvent is a product event emitted by the app.
type AnalyticsEvent struct {
	ID         string                 `bson:"id" json:"id"`
	UserID     string                 `bson:"userId,omitempty" json:"userId,omitempty"`
	Event      string                 `bson:"event" json:"event"`
	Properties map[string]interface{} `bson:"properties,omitempty" json:"properties,omitempty"`
	CreatedAt  time.Time              `bson:"createdAt" json:"createdAt"`
}

// Tracked funnel events.
const (
	EventLeadLockedView       = "lead_locked_view"
	EventLeadUnlockTap        = "lead_unlock_tap"
	EventSalaryComparisonView = "salary_comparison_view"
	EventVaultFileUploaded    = "vault_file_uploaded"
)

// EventInput is the body the app posts for each tracked event.
type EventInput struct {
	Event     string                 `json:"event"`
	Metadata  map[string]interface{} `json:"metadata"`
	Timestamp *time.Time             `json:"timestamp"`
}

// AnalyticsDashboard is the admin funnel summary.
type AnalyticsDashboard struct {
	Monetization struct {
		LockedViews    int64  `json:"lockedViews"`
		UnlockAttempts int64  `json:"unlockAttempts"`
		ConversionRate string `json:"conversionRate"`
	} `json:"monetization"`
	Growth struct {
		SalaryThermometerUses int64 `json:"salaryThermometerUses"`
		VaultUploads          int64 `json:"vaultUploads"`
	} `json:"growth"`
	Activity struct {
		NewLeads24h int64 `json:"newLeads24h"`
	} `json:"activity"`
}
