package models

import "time"

// ContactRequest is a worker's paid introduction to a lawyer.
type ContactRequest struct {
	ID              string `bson:"id" json:"id"`
	WorkerID        string `bson:"workerId" json:"workerId"`
	LawyerProfileID string `bson:"lawyerProfileId,omitempty" json:"lawyerProfileId,omitempty"`

	CaseType           string  `bson:"caseType" json:"caseType"`
	Description        string  `bson:"description" json:"description"`
	EmployerName       string  `bson:"employerName,omitempty" json:"employerName,omitempty"`
	EstimatedSeverance float64 `bson:"estimatedSeverance" json:"estimatedSeverance"`
	YearsOfService     float64 `bson:"yearsOfService" json:"yearsOfService"`
	Urgency            string  `bson:"urgency" json:"urgency"`

	Classification      string  `bson:"classification" json:"classification"`
	IsHot               bool    `bson:"isHot" json:"isHot"`
	IsCollective        bool    `bson:"isCollective" json:"isCollective"`
	UrgencyScore        int     `bson:"urgencyScore" json:"urgencyScore"`
	LawyerPaymentAmount float64 `bson:"lawyerPaymentAmount" json:"lawyerPaymentAmount"`
	AISummary           string  `bson:"aiSummary,omitempty" json:"aiSummary,omitempty"`

	Status     string `bson:"status" json:"status"`
	SubStatus  string `bson:"subStatus" json:"subStatus"`
	DataStatus string `bson:"dataStatus" json:"dataStatus"`
	CRMStatus  string `bson:"crmStatus" json:"crmStatus"`

	ConsentTimestamp *time.Time `bson:"consentTimestamp,omitempty" json:"consentTimestamp,omitempty"`
	ExpiresAt        time.Time  `bson:"expiresAt" json:"expiresAt"`
	Documents        []Document `bson:"documents" json:"documents"`

	PaymentGateway        string     `bson:"paymentGateway" json:"paymentGateway"`
	WorkerPaid            bool       `bson:"workerPaid" json:"workerPaid"`
	LawyerPaid            bool       `bson:"lawyerPaid" json:"lawyerPaid"`
	BothPaymentsSucceeded bool       `bson:"bothPaymentsSucceeded" json:"bothPaymentsSucceeded"`
	OpeningFeePaid        float64    `bson:"openingFeePaid" json:"openingFeePaid"`
	LeadCostPaid          float64    `bson:"leadCostPaid" json:"leadCostPaid"`
	WorkerPaymentID       string     `bson:"workerPaymentId,omitempty" json:"-"`
	LawyerPaymentID       string     `bson:"lawyerPaymentId,omitempty" json:"-"`
	MPPreferenceID        string     `bson:"mpPreferenceId,omitempty" json:"-"`
	RefundStatus          string     `bson:"refundStatus,omitempty" json:"refundStatus,omitempty"`
	RefundProcessedAt     *time.Time `bson:"refundProcessedAt,omitempty" json:"refundProcessedAt,omitempty"`
	Saga                  *SagaState `bson:"saga,omitempty" json:"saga,omitempty"`

	AcceptedAt      *time.Time `bson:"acceptedAt,omitempty" json:"acceptedAt,omitempty"`
	RejectedAt      *time.Time `bson:"rejectedAt,omitempty" json:"rejectedAt,omitempty"`
	RejectionReason string     `bson:"rejectionReason,omitempty" json:"rejectionReason,omitempty"`
	RejectionCount  int        `bson:"rejectionCount" json:"rejectionCount"`
	ClosedAt        *time.Time `bson:"closedAt,omitempty" json:"closedAt,omitempty"`

	LastWorkerActivityAt *time.Time `bson:"lastWorkerActivityAt,omitempty" json:"lastWorkerActivityAt,omitempty"`
	LastLawyerActivityAt *time.Time `bson:"lastLawyerActivityAt,omitempty" json:"lastLawyerActivityAt,omitempty"`
	LastMessage          string     `bson:"lastMessage,omitempty" json:"lastMessage,omitempty"`
	LastMessageAt        *time.Time `bson:"lastMessageAt,omitempty" json:"lastMessageAt,omitempty"`
	LastMessageSenderID  string     `bson:"lastMessageSenderId,omitempty" json:"lastMessageSenderId,omitempty"`
	UnreadCountWorker    int        `bson:"unreadCountWorker" json:"unreadCountWorker"`
	UnreadCountLawyer    int        `bson:"unreadCountLawyer" json:"unreadCountLawyer"`
	LastNudgeAt          *time.Time `bson:"lastNudgeAt,omitempty" json:"lastNudgeAt,omitempty"`
	NudgeLevel           string     `bson:"nudgeLevel,omitempty" json:"nudgeLevel,omitempty"`

	SettlementDocPath   string     `bson:"settlementDocPath,omitempty" json:"settlementDocPath,omitempty"`
	SettlementDocStatus string     `bson:"settlementDocStatus,omitempty" json:"settlementDocStatus,omitempty"`
	SettlementAmount    float64    `bson:"settlementAmount,omitempty" json:"settlementAmount,omitempty"`
	SettlementDate      string     `bson:"settlementDate,omitempty" json:"settlementDate,omitempty"`
	ResolutionType      string     `bson:"resolutionType,omitempty" json:"resolutionType,omitempty"`
	CommissionRate      float64    `bson:"commissionRate,omitempty" json:"commissionRate,omitempty"`
	CommissionAmount    float64    `bson:"commissionAmount,omitempty" json:"commissionAmount,omitempty"`
	CommissionStatus    string     `bson:"commissionStatus,omitempty" json:"commissionStatus,omitempty"`
	CommissionInvoiceID string     `bson:"commissionInvoiceId,omitempty" json:"-"`
	PurgedAt            *time.Time `bson:"purgedAt,omitempty" json:"purgedAt,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Document is a file attached to a request.
type Document struct {
	Name       string    `bson:"name" json:"name"`
	Path       string    `bson:"path" json:"path"`
	UploadedAt time.Time `bson:"uploadedAt" json:"uploadedAt"`
}

// SagaState records how far the acceptance charge/refund sequence got.
type SagaState struct {
	Step      string    `bson:"step" json:"step"`
	LastError string    `bson:"lastError,omitempty" json:"lastError,omitempty"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Request statuses.
const (
	StatusPending         = "pending"
	StatusAccepted        = "accepted"
	StatusRejected        = "rejected"
	StatusContactUnlocked = "contact_unlocked"
	StatusExpired         = "expired"
	StatusCanceled        = "canceled"
)

// Sub statuses describing whose move it is.
const (
	SubWaitingLawyer         = "waiting_lawyer"
	SubChatActive            = "chat_active"
	SubWaitingLawyerResponse = "waiting_lawyer_response"
	SubWaitingWorkerResponse = "waiting_worker_response"
	SubNeedsAttention        = "needs_attention"
	SubFraudReported         = "fraud_reported"
)

// CRM pipeline statuses set by the lawyer.
const (
	CRMNew         = "NEW"
	CRMContacted   = "CONTACTED"
	CRMNegotiating = "NEGOTIATING"
	CRMClosedWon   = "CLOSED_WON"
	CRMClosedLost  = "CLOSED_LOST"
)

// ValidCRMStatuses lists the statuses accepted by the CRM endpoint.
var ValidCRMStatuses = map[string]bool{
	CRMNew: true, CRMContacted: true, CRMNegotiating: true, CRMClosedWon: true, CRMClosedLost: true,
}

// Classifications.
const (
	ClassNormal    = "normal"
	ClassHot       = "hot"
	ClassMachinery = "machinery_439"
)

// Payment gateways.
const (
	GatewayStripe = "stripe"
	GatewayMP     = "mercadopago"
	GatewayManual = "manual_transfer"
)

// Worker data visibility.
const (
	DataMasked   = "MASKED"
	DataUnlocked = "UNLOCKED"
	DataPurged   = "PURGED"
)

const (
	RefundProcessed = "processed"
	RefundFailed    = "failed"

	ResolutionConciliation = "CONCILIACION"
	ResolutionTrial        = "JUICIO"

	CommissionPending       = "pending"
	CommissionPaid          = "paid"
	CommissionOverdue       = "overdue"
	CommissionNotApplicable = "not_applicable"

	SettlementUploaded = "uploaded"

	RejectionTimeout = "TIMEOUT_24H_AUTO"
	RejectionSLA     = "SLA_NO_CONTACT_24H"
)

// Saga steps of the acceptance flow.
const (
	SagaCharging     = "charging_lawyer"
	SagaCharged      = "lawyer_charged"
	SagaCompleted    = "completed"
	SagaRefunding    = "refunding_worker"
	SagaRefunded     = "worker_refunded"
	SagaRefundFailed = "refund_failed"
)

// RecomputeBothPaid derives BothPaymentsSucceeded from the two payment flags.
func (r *ContactRequest) RecomputeBothPaid() bool {
	r.BothPaymentsSucceeded = r.WorkerPaid && r.LawyerPaid
	return r.BothPaymentsSucceeded
}

// IsParticipant reports whether userID is the worker or the assigned lawyer's user.
func (r *ContactRequest) IsParticipant(userID, lawyerUserID string) bool {
	return userID == r.WorkerID || (lawyerUserID != "" && userID == lawyerUserID)
}

// CreateContactRequest is the worker's input when opening a request.
type CreateContactRequest struct {
	LawyerProfileID    string  `json:"lawyerProfileId" form:"lawyerProfileId"`
	CaseType           string  `json:"caseType" form:"caseType"`
	Description        string  `json:"description" form:"description"`
	EmployerName       string  `json:"employerName" form:"employerName"`
	EstimatedSeverance float64 `json:"estimatedSeverance" form:"estimatedSeverance"`
	YearsOfService     float64 `json:"yearsOfService" form:"yearsOfService"`
	Urgency            string  `json:"urgency" form:"urgency"`
	PaymentGateway     string  `json:"paymentGateway" form:"paymentGateway"`
	PaymentMethodID    string  `json:"paymentMethodId" form:"paymentMethodId"`
	Consent            bool    `json:"consent" form:"consent"`
}

// UploadedFile is an in-memory upload handed from a handler to a service.
type UploadedFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// CreateContactResult is returned to the worker after opening a request.
type CreateContactResult struct {
	Request        *ContactRequest `json:"contactRequest"`
	ClientSecret   string          `json:"clientSecret,omitempty"`
	PaymentStatus  string          `json:"paymentStatus,omitempty"`
	MPInitPoint    string          `json:"initPoint,omitempty"`
	MPPreferenceID string          `json:"preferenceId,omitempty"`
}

// LawyerRequestView is a request as shown in the lawyer's inbox.
type LawyerRequestView struct {
	ContactRequest
	WorkerName  string  `json:"workerName"`
	WorkerEmail string  `json:"workerEmail"`
	WorkerPhone string  `json:"workerPhone"`
	IsMasked    bool    `json:"isMasked"`
	PrivacyLock bool    `json:"privacyLock,omitempty"`
	Upsell      bool    `json:"upsell,omitempty"`
	UnlockPrice float64 `json:"unlockPrice,omitempty"`
}

// ContactInfo is the unlocked worker contact data.
type ContactInfo struct {
	RequestID string `json:"requestId"`
	FullName  string `json:"fullName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// SettlementResult summarises the commission pipeline outcome.
type SettlementResult struct {
	Request        *ContactRequest `json:"contactRequest"`
	DetectedAmount float64         `json:"detectedAmount"`
	DetectedDate   string          `json:"detectedDate,omitempty"`
	OCRApplied     bool            `json:"ocrApplied"`
	CommissionRate float64         `json:"commissionRate"`
	Commission     float64         `json:"commission"`
	InvoiceID      string          `json:"invoiceId,omitempty"`
}

// AcceptContactRequest is the lawyer's card for the acceptance charge.
type AcceptContactRequest struct {
	PaymentMethodID string `json:"paymentMethodId"`
}

// ReasonRequest carries a free text reason (rejections, fraud reports).
type ReasonRequest struct {
	Reason string `json:"reason"`
}

type CRMStatusRequest struct {
	Status string `json:"status"`
}

type CloseCaseRequest struct {
	SettlementAmount float64 `json:"settlementAmount"`
	ResolutionType   string  `json:"resolutionType"`
}
