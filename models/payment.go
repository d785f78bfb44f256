package models

import "time"

// PaymentRecord is a ledger line for every charge, refund or invoice touching the platform.
type PaymentRecord struct {
	ID         string    `bson:"id" json:"id"`
	RequestID  string    `bson:"requestId,omitempty" json:"requestId,omitempty"`
	UserID     string    `bson:"userId" json:"userId"`
	Gateway    string    `bson:"gateway" json:"gateway"`
	Type       string    `bson:"type" json:"type"`
	Amount     float64   `bson:"amount" json:"amount"`
	Currency   string    `bson:"currency" json:"currency"`
	Status     string    `bson:"status" json:"status"`
	ExternalID string    `bson:"externalId,omitempty" json:"externalId,omitempty"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}

// Payment purposes. They double as Stripe metadata "type" values.
const (
	PaymentWorkerContactFee = "worker_contact_fee"
	PaymentLawyerAcceptance = "lawyer_case_acceptance"
	PaymentRefund           = "refund"
	PaymentCommission       = "commission"
	PaymentSubscription     = "subscription"
	PaymentManual           = "manual_transfer"
)

// Fixed fees in MXN.
const (
	WorkerOpeningFee = 50.0
	HotLeadFee       = 300.0
	NormalLeadFee    = 150.0
	Currency         = "mxn"
)

// ChargeResult is the gateway-agnostic outcome of a charge.
type ChargeResult struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	ClientSecret string `json:"clientSecret,omitempty"`
}

// Succeeded reports whether the charge settled.
func (c *ChargeResult) Succeeded() bool {
	return c != nil && (c.Status == "succeeded" || c.Status == "approved")
}

// Plan price table in cents.
var PlanPrices = map[string]int64{
	"worker_premium": 2900,
	"lawyer_basic":   9900,
	"lawyer_pro":     29900,
	"pyme_pro":       99900,
}

// ActivatePlanRequest starts a paid plan.
type ActivatePlanRequest struct {
	PlanType string `json:"planType"`
}

// ConfirmPlanRequest finalises a paid plan after the client confirmed the intent.
type ConfirmPlanRequest struct {
	PaymentIntentID string `json:"paymentIntentId"`
}

// SubscriptionStatus is the combined plan view returned to clients.
type SubscriptionStatus struct {
	Role              string              `json:"role"`
	Plan              string              `json:"plan"`
	SubscriptionLevel string              `json:"subscriptionLevel"`
	IsActive          bool                `json:"hasSubscription"`
	DaysRemaining     int                 `json:"daysRemaining"`
	IsExpired         bool                `json:"isExpired"`
	Lawyer            *LawyerSubscription `json:"lawyerSubscription,omitempty"`
	Worker            *WorkerSubscription `json:"workerSubscription,omitempty"`
	RecentPayments    []PaymentRecord     `json:"recentPayments"`
}

// PlanIntentResult is handed to the mobile SDK to confirm a plan payment.
type PlanIntentResult struct {
	PaymentIntent   string `json:"paymentIntent"`
	PaymentIntentID string `json:"paymentIntentId"`
	Customer        string `json:"customer,omitempty"`
	Amount          int64  `json:"amount"`
}

// ActivateFreeRequest switches to a free tier.
type ActivateFreeRequest struct {
	PlanType string `json:"planType"`
}

// WorkerSubscribeRequest picks the gateway for the worker membership.
type WorkerSubscribeRequest struct {
	PaymentProvider string `json:"paymentProvider"`
}

// WorkerSubscribeResult carries the activated membership and the client payment handle.
type WorkerSubscribeResult struct {
	Message      string              `json:"message"`
	Subscription *WorkerSubscription `json:"subscription"`
	ClientSecret string              `json:"clientSecret,omitempty"`
	InitPoint    string              `json:"initPoint,omitempty"`
}

// SubscriptionReferencePrefix marks MercadoPago external references that pay a worker membership.
const SubscriptionReferencePrefix = "worker_subscription:"

// PaymentLog is a ledger line joined with the payer's email for the back office.
type PaymentLog struct {
	PaymentRecord
	UserEmail string `json:"user"`
}
