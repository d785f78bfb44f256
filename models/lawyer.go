package models

import "time"

// Lawyer holds the professional identity of a lawyer account.
type Lawyer struct {
	ID            string     `bson:"id" json:"id"`
	UserID        string     `bson:"userId" json:"userId"`
	LicenseNumber string     `bson:"licenseNumber" json:"licenseNumber"`
	IsVerified    bool       `bson:"isVerified" json:"isVerified"`
	VerifiedAt    *time.Time `bson:"verifiedAt,omitempty" json:"verifiedAt,omitempty"`
	Status        string     `bson:"status" json:"status"`
	Strikes       int        `bson:"strikes" json:"strikes"`
	CreatedAt     time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time  `bson:"updatedAt" json:"updatedAt"`
}

const (
	LawyerActive    = "ACTIVE"
	LawyerSuspended = "SUSPENDED"

	// MaxStrikes is the strike count at which a lawyer is suspended.
	MaxStrikes = 3
)

// WorkSchedule is the daily window in which a lawyer answers chats, as HH:mm.
type WorkSchedule struct {
	Start string `bson:"start" json:"start"`
	End   string `bson:"end" json:"end"`
}

// LawyerProfile is the public face of a lawyer in the directory.
type LawyerProfile struct {
	ID                        string        `bson:"id" json:"id"`
	LawyerID                  string        `bson:"lawyerId" json:"lawyerId"`
	UserID                    string        `bson:"userId" json:"userId"`
	DisplayName               string        `bson:"displayName" json:"displayName"`
	Bio                       string        `bson:"bio" json:"bio"`
	PhotoURL                  string        `bson:"photoUrl,omitempty" json:"photoUrl,omitempty"`
	Specialties               []string      `bson:"specialties" json:"specialties"`
	NationalScope             bool          `bson:"nationalScope" json:"nationalScope"`
	AvailableStates           []string      `bson:"availableStates" json:"availableStates"`
	CaseTypes                 []string      `bson:"caseTypes" json:"caseTypes"`
	Schedule                  *WorkSchedule `bson:"schedule,omitempty" json:"schedule,omitempty"`
	Reputation                float64       `bson:"reputation" json:"reputation"`
	SuccessfulCases           int           `bson:"successfulCases" json:"successfulCases"`
	LifetimeCommissionSavings float64       `bson:"lifetimeCommissionSavings" json:"lifetimeCommissionSavings"`
	ProfileViews              int           `bson:"profileViews" json:"profileViews"`
	CreatedAt                 time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt                 time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// LawyerSubscription is the plan a lawyer pays for to receive leads.
type LawyerSubscription struct {
	ID                   string     `bson:"id" json:"id"`
	LawyerID             string     `bson:"lawyerId" json:"lawyerId"`
	UserID               string     `bson:"userId" json:"userId"`
	Plan                 string     `bson:"plan" json:"plan"`
	Status               string     `bson:"status" json:"status"`
	Amount               float64    `bson:"amount" json:"amount"`
	AutoRenew            bool       `bson:"autoRenew" json:"autoRenew"`
	StartDate            *time.Time `bson:"startDate,omitempty" json:"startDate,omitempty"`
	EndDate              *time.Time `bson:"endDate,omitempty" json:"endDate,omitempty"`
	StripeSubscriptionID string     `bson:"stripeSubscriptionId,omitempty" json:"-"`
	CreatedAt            time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// Subscription statuses shared by lawyer and worker subscriptions.
const (
	SubActive    = "active"
	SubInactive  = "inactive"
	SubCancelled = "cancelled"
	SubCanceled  = "canceled"
	SubExpired   = "expired"
	SubPastDue   = "past_due"
)

// IsActive reports whether the subscription currently grants access.
func (s *LawyerSubscription) IsActive(now time.Time) bool {
	if s == nil || s.Status != SubActive {
		return false
	}
	return s.EndDate == nil || s.EndDate.After(now)
}

// IsPro reports whether the subscription is an active pro plan.
func (s *LawyerSubscription) IsPro(now time.Time) bool {
	return s.IsActive(now) && s.Plan == PlanPro
}

// IsTrial reports whether the subscription is an active promotional trial.
func (s *LawyerSubscription) IsTrial(now time.Time) bool {
	return s.IsActive(now) && s.Plan == PlanTrial
}

// LawyerProfileUpdate holds the fields a lawyer may edit on their profile.
type LawyerProfileUpdate struct {
	DisplayName     *string       `json:"displayName"`
	Bio             *string       `json:"bio"`
	Specialties     []string      `json:"specialties"`
	NationalScope   *bool         `json:"nationalScope"`
	AvailableStates []string      `json:"availableStates"`
	CaseTypes       []string      `json:"caseTypes"`
	Schedule        *WorkSchedule `json:"schedule"`
}

// PublicLawyer is a directory entry. It never carries contact data.
type PublicLawyer struct {
	ProfileID       string        `json:"profileId"`
	DisplayName     string        `json:"displayName"`
	Bio             string        `json:"bio"`
	PhotoURL        string        `json:"photoUrl,omitempty"`
	Specialties     []string      `json:"specialties"`
	NationalScope   bool          `json:"nationalScope"`
	AvailableStates []string      `json:"availableStates"`
	CaseTypes       []string      `json:"caseTypes"`
	Reputation      float64       `json:"reputation"`
	SuccessfulCases int           `json:"successfulCases"`
	ProfileViews    int           `json:"profileViews"`
	Plan            string        `json:"plan"`
	WonCases        []CaseSummary `json:"wonCases"`
}

// CaseSummary is an anonymised won case shown on a profile.
type CaseSummary struct {
	CaseType string    `json:"caseType"`
	ClosedAt time.Time `json:"closedAt"`
	Summary  string    `json:"summary"`
}

// LawyerMetrics is the lawyer's own performance dashboard.
type LawyerMetrics struct {
	Reputation                float64 `json:"reputation"`
	SuccessfulCases           int     `json:"successfulCases"`
	ProfileViews              int     `json:"profileViews"`
	LifetimeCommissionSavings float64 `json:"lifetimeCommissionSavings"`
	Strikes                   int     `json:"strikes"`
	TotalRequests             int64   `json:"totalRequests"`
	AcceptedRequests          int64   `json:"acceptedRequests"`
	PendingRequests           int64   `json:"pendingRequests"`
	RejectedRequests          int64   `json:"rejectedRequests"`
	RequestsThisMonth         int64   `json:"requestsThisMonth"`
}

// LawyerDirectoryFilter narrows the public lawyer directory.
type LawyerDirectoryFilter struct {
	Specialty string `form:"specialty"`
	State     string `form:"state"`
	// CaseType is "federal" or "local".
	CaseType string `form:"caseType"`
}

// LawyerAccount is the lawyer's private view of their own records.
type LawyerAccount struct {
	Lawyer       *Lawyer             `json:"lawyer"`
	Profile      *LawyerProfile      `json:"profile"`
	Subscription *LawyerSubscription `json:"subscription,omitempty"`
	FullName     string              `json:"fullName"`
	Email        string              `json:"email"`
	Phone        string              `json:"phone,omitempty"`
}

// ProfileUpdateResult reports a profile edit and whether the cédula photo verified the account.
type ProfileUpdateResult struct {
	Message      string         `json:"message"`
	Profile      *LawyerProfile `json:"profile"`
	AutoVerified bool           `json:"autoVerified"`
}
