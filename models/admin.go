package models

import "time"

// AdminAlert is an operational event that needs a human.
type AdminAlert struct {
	ID         string     `bson:"id" json:"id"`
	Type       string     `bson:"type" json:"type"`
	Severity   string     `bson:"severity" json:"severity"`
	Message    string     `bson:"message" json:"message"`
	EntityID   string     `bson:"entityId,omitempty" json:"entityId,omitempty"`
	Resolved   bool       `bson:"resolved" json:"resolved"`
	ResolvedAt *time.Time `bson:"resolvedAt,omitempty" json:"resolvedAt,omitempty"`
	CreatedAt  time.Time  `bson:"createdAt" json:"createdAt"`
}

const (
	AlertLawyerSuspended = "lawyer_suspended"
	AlertRefundFailed    = "refund_failed"
	AlertFraudReported   = "fraud_reported"
	SeverityHigh         = "high"
	SeverityMedium       = "medium"
	SeverityLow          = "low"
)

// ActivityLog is an audit entry for back-office and security relevant actions.
type ActivityLog struct {
	ID        string    `bson:"id" json:"id"`
	ActorID   string    `bson:"actorId" json:"actorId"`
	Action    string    `bson:"action" json:"action"`
	TargetID  string    `bson:"targetId,omitempty" json:"targetId,omitempty"`
	Details   string    `bson:"details,omitempty" json:"details,omitempty"`
	IP        string    `bson:"ip,omitempty" json:"ip,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// Audited actions.
const (
	ActionAddStrike     = "ADD_STRIKE"
	ActionVerifyLawyer  = "VERIFY_LAWYER"
	ActionRejectLawyer  = "REJECT_LAWYER"
	ActionPurgeData     = "PURGE_CASE_DATA"
	ActionManualPayment = "MANUAL_PAYMENT_VERIFIED"
	ActionLoginFailed   = "LOGIN_FAILED"
	ActionBlockUser     = "BLOCK_USER"
	ActionPlanOverride  = "PLAN_OVERRIDE"
)

// SystemConfig is a key/value runtime setting.
type SystemConfig struct {
	Key       string    `bson:"key" json:"key"`
	Value     string    `bson:"value" json:"value"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Known config keys.
const (
	ConfigPromoActive    = "PROMO_IS_ACTIVE"
	ConfigPromoTrialDays = "PROMO_LAWYER_TRIAL_DAYS"
	ConfigPromoBanner    = "PROMO_BANNER_TEXT"
)

// PromoConfig is the public promotion banner.
type PromoConfig struct {
	IsActive        bool   `json:"promoActive"`
	LawyerTrialDays int    `json:"trialDays"`
	BannerText      string `json:"bannerText"`
}

// DashboardStats are the admin landing KPIs.
type DashboardStats struct {
	KPIs        DashboardKPIs    `json:"kpis"`
	ActionItems DashboardActions `json:"actionItems"`
}

type DashboardKPIs struct {
	TotalIncome     float64         `json:"totalIncome"`
	IncomeBreakdown IncomeBreakdown `json:"incomeBreakdown"`
	ActiveLawyers   int64           `json:"activeLawyers"`
	ActiveWorkers   int64           `json:"activeWorkers"`
	ContactsSold    int64           `json:"contactsSold"`
	ConversionRate  float64         `json:"conversionRate"`
}

type IncomeBreakdown struct {
	Subscriptions float64 `json:"subscriptions"`
	Contacts      float64 `json:"contacts"`
	Commissions   float64 `json:"commissions"`
}

type DashboardActions struct {
	PendingLawyers     int64 `json:"pendingLawyers"`
	SuspiciousActivity int64 `json:"suspiciousActivity"`
	RecentPayments     int64 `json:"recentPayments"`
}

// FinancialStats summarise revenue by source.
type FinancialStats struct {
	TotalRevenue float64         `json:"totalRevenue"`
	Breakdown    IncomeBreakdown `json:"breakdown"`
	Period       string          `json:"period"`
}

// FinancialHealth is the MRR and pipeline view.
type FinancialHealth struct {
	MRR           float64    `json:"mrr"`
	PendingFees   float64    `json:"pendingFees"`
	PipelineValue float64    `json:"pipelineValue"`
	Efficiency    Efficiency `json:"efficiency"`
}

// Efficiency compares revenue with the estimated LLM spend.
type Efficiency struct {
	Revenue float64 `json:"revenue"`
	Cost    float64 `json:"cost"`
	// Ratio is empty when there is no cost to compare with.
	Ratio string `json:"ratio"`
}

// CollectiveCase groups requests against the same employer.
type CollectiveCase struct {
	EmployerName        string  `json:"company" bson:"_id"`
	Count               int     `json:"count" bson:"count"`
	TotalSeverance      float64 `json:"totalValue" bson:"totalSeverance"`
	PotentialCommission float64 `json:"potentialCommission" bson:"-"`
	Status              string  `json:"status" bson:"-"`
	Action              string  `json:"action" bson:"-"`
}

// CollectiveRadar lists employers with several open claims.
type CollectiveRadar struct {
	Clusters      []CollectiveCase `json:"clusters"`
	TotalClusters int              `json:"totalClusters"`
}

// ImpactKPIs are the social-impact numbers shown to partners.
type ImpactKPIs struct {
	MoneyRecovered   float64 `json:"moneyRecovered"`
	FamiliesHelped   int64   `json:"familiesHelped"`
	ConciliationRate float64 `json:"conciliationRate"`
}

// VaultCompliance flags cases whose commission evidence is missing or suspicious.
type VaultCompliance struct {
	Anomalies      []ComplianceAnomaly `json:"anomalies"`
	SuspiciousDocs []SuspiciousDoc     `json:"suspiciousDocs"`
	TopEarners     []TopEarner         `json:"topEarners"`
	VaultFiles     int64               `json:"vaultFiles"`
	VaultOwners    int64               `json:"vaultOwners"`
}

type ComplianceAnomaly struct {
	RequestID  string `json:"id"`
	LawyerName string `json:"lawyerName"`
	LawyerID   string `json:"lawyerId,omitempty"`
	Issue      string `json:"issue"`
}

type SuspiciousDoc struct {
	RequestID string  `json:"id"`
	Estimate  float64 `json:"estimate"`
	Reported  float64 `json:"reported"`
	Flag      string  `json:"flag"`
}

type TopEarner struct {
	Lawyer  string  `json:"lawyer"`
	Savings float64 `json:"savings"`
	Score   float64 `json:"score"`
}

// AdminLawyer is a row of the admin lawyer table.
type AdminLawyer struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"userId"`
	FullName           string    `json:"fullName"`
	Email              string    `json:"email"`
	IsVerified         bool      `json:"isVerified"`
	LicenseNumber      string    `json:"licenseNumber"`
	Status             string    `json:"status"`
	Strikes            int       `json:"strikes"`
	SubscriptionStatus string    `json:"subscriptionStatus"`
	Plan               string    `json:"plan"`
	CreatedAt          time.Time `json:"createdAt"`
}

// AdminWorker is a row of the admin worker table.
type AdminWorker struct {
	ID                 string    `json:"id"`
	FullName           string    `json:"fullName"`
	Email              string    `json:"email"`
	SubscriptionStatus string    `json:"subscriptionStatus"`
	ContactRequests    int64     `json:"contactRequests"`
	IsBlocked          bool      `json:"isBlocked"`
	CreatedAt          time.Time `json:"createdAt"`
}

// AdminPyme is a row of the admin pyme table.
type AdminPyme struct {
	ID                string    `json:"id"`
	FullName          string    `json:"fullName"`
	CompanyName       string    `json:"companyName"`
	Email             string    `json:"email"`
	Plan              string    `json:"plan"`
	SubscriptionLevel string    `json:"subscriptionLevel"`
	Industry          string    `json:"industry"`
	CreatedAt         time.Time `json:"createdAt"`
}

// AdminCase is a row of the admin case table.
type AdminCase struct {
	ID                    string    `json:"id"`
	WorkerName            string    `json:"workerName"`
	LawyerName            string    `json:"lawyerName"`
	Status                string    `json:"status"`
	CRMStatus             string    `json:"crmStatus"`
	CaseType              string    `json:"caseType"`
	Urgency               string    `json:"urgency"`
	BothPaymentsSucceeded bool      `json:"bothPaymentsSucceeded"`
	CreatedAt             time.Time `json:"createdAt"`
}

// StrikeRequest is the admin body for a manual strike.
type StrikeRequest struct {
	Reason string `json:"reason"`
}

// StrikeResponse reports the lawyer state after a manual strike.
type StrikeResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	LawyerStatus string `json:"lawyerStatus"`
}

// VerifyLawyerRequest toggles a lawyer's verification.
type VerifyLawyerRequest struct {
	IsVerified bool `json:"isVerified"`
}

// SupervisorStats are the verification queue numbers.
type SupervisorStats struct {
	PendingLawyers int64 `json:"pendingLawyersCount"`
	RecentPayments int64 `json:"recentPaymentsCount"`
}

// PendingLawyer joins a lawyer awaiting verification with its user, profile and plan.
type PendingLawyer struct {
	Lawyer
	FullName     string              `json:"fullName"`
	Email        string              `json:"email"`
	Profile      *LawyerProfile      `json:"profile,omitempty"`
	Subscription *LawyerSubscription `json:"subscription,omitempty"`
}

// ManualPaymentRequest marks one side of a request as paid by transfer.
type ManualPaymentRequest struct {
	Type      string `json:"type"`
	Reference string `json:"reference"`
}

// PendingPayment is a request with an unsettled side, joined with its parties.
type PendingPayment struct {
	ContactRequest
	WorkerName  string `json:"workerName"`
	WorkerEmail string `json:"workerEmail"`
	LawyerName  string `json:"lawyerName,omitempty"`
	LawyerEmail string `json:"lawyerEmail,omitempty"`
}

// SubscriptionOverride lets an admin set a user's plan directly.
type SubscriptionOverride struct {
	Plan string `json:"plan"`
	Role string `json:"role"`
}
