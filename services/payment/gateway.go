package payment

import (
	"context"
	"math"

	"aliadolaboral/models"

	"github.com/stripe/stripe-go/v76"
)

// ChargeInput describes a one-off charge.
type ChargeInput struct {
	CustomerID      string
	PaymentMethodID string
	Amount          float64
	Description     string
	Metadata        map[string]string
}

// PlanIntent is a retrieved subscription PaymentIntent.
type PlanIntent struct {
	ID       string
	Status   string
	Amount   int64
	Metadata map[string]string
}

// StripeGateway is the subset of Stripe the platform relies on.
type StripeGateway interface {
	// EnsureCustomer returns the user's Stripe customer, creating it when missing.
	EnsureCustomer(ctx context.Context, user *models.User) (string, error)
	Charge(ctx context.Context, in ChargeInput) (*models.ChargeResult, error)
	Refund(ctx context.Context, paymentIntentID string) error
	// HasOverdueInvoices reports open invoices past their due date.
	HasOverdueInvoices(ctx context.Context, customerID string) (bool, error)
	// CreateCommissionInvoice bills a success fee and returns the finalized invoice id.
	CreateCommissionInvoice(ctx context.Context, customerID string, amount float64, requestID string) (string, error)
	CreatePlanIntent(ctx context.Context, amountCents int64, metadata map[string]string) (*models.ChargeResult, error)
	GetPlanIntent(ctx context.Context, id string) (*PlanIntent, error)
	// ParseEvent verifies a webhook signature and decodes the event.
	ParseEvent(payload []byte, signature string) (stripe.Event, error)
}

// Preference is a MercadoPago checkout preference.
type Preference struct {
	ID        string
	InitPoint string
}

// PreferenceInput describes what the payer is charged for.
type PreferenceInput struct {
	ExternalReference string
	Title             string
	Amount            float64
	PayerEmail        string
}

// MPPayment is the relevant part of a MercadoPago payment.
type MPPayment struct {
	ID                string
	Status            string
	Amount            float64
	ExternalReference string
}

// MercadoPagoGateway wraps the MercadoPago REST API.
type MercadoPagoGateway interface {
	CreatePreference(ctx context.Context, in PreferenceInput) (*Preference, error)
	GetPayment(ctx context.Context, id string) (*MPPayment, error)
	Refund(ctx context.Context, paymentID string) error
}

// ToCents converts an MXN amount to Stripe's minor units.
func ToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
