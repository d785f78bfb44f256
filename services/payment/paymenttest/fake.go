// Package paymenttest provides scriptable payment gateways for tests.
package paymenttest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"aliadolaboral/models"
	"aliadolaboral/services/payment"

	"github.com/stripe/stripe-go/v76"
)

// Stripe is a fake StripeGateway. Set the Err/Status fields to script failures.
type Stripe struct {
	mu sync.Mutex

	ChargeStatus string
	ChargeErr    error
	RefundErr    error
	Overdue      bool
	InvoiceErr   error
	Intents      map[string]*payment.PlanIntent
	Event        stripe.Event
	EventErr     error

	Charges  []payment.ChargeInput
	Refunds  []string
	Invoices []float64
	seq      int
}

var _ payment.StripeGateway = (*Stripe)(nil)

func NewStripe() *Stripe {
	return &Stripe{ChargeStatus: "succeeded", Intents: map[string]*payment.PlanIntent{}}
}

func (s *Stripe) next(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s_%d", prefix, s.seq)
}

func (s *Stripe) EnsureCustomer(ctx context.Context, user *models.User) (string, error) {
	if user.StripeCustomerID != "" {
		return user.StripeCustomerID, nil
	}
	return "cus_" + user.ID, nil
}

func (s *Stripe) Charge(ctx context.Context, in payment.ChargeInput) (*models.ChargeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Charges = append(s.Charges, in)
	if s.ChargeErr != nil {
		return nil, s.ChargeErr
	}
	return &models.ChargeResult{ID: s.next("pi"), Status: s.ChargeStatus, ClientSecret: "secret"}, nil
}

func (s *Stripe) Refund(ctx context.Context, paymentIntentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.RefundErr != nil {
		return s.RefundErr
	}
	s.Refunds = append(s.Refunds, paymentIntentID)
	return nil
}

func (s *Stripe) HasOverdueInvoices(ctx context.Context, customerID string) (bool, error) {
	return s.Overdue, nil
}

func (s *Stripe) CreateCommissionInvoice(ctx context.Context, customerID string, amount float64, requestID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.InvoiceErr != nil {
		return "", s.InvoiceErr
	}
	s.Invoices = append(s.Invoices, amount)
	return s.next("in"), nil
}

func (s *Stripe) CreatePlanIntent(ctx context.Context, amountCents int64, metadata map[string]string) (*models.ChargeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next("pi")
	s.Intents[id] = &payment.PlanIntent{ID: id, Status: "requires_payment_method", Amount: amountCents, Metadata: metadata}
	return &models.ChargeResult{ID: id, Status: "requires_payment_method", ClientSecret: id + "_secret"}, nil
}

func (s *Stripe) GetPlanIntent(ctx context.Context, id string) (*payment.PlanIntent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	intent, ok := s.Intents[id]
	if !ok {
		return nil, errors.New("no such payment_intent")
	}
	return intent, nil
}

func (s *Stripe) ParseEvent(payload []byte, signature string) (stripe.Event, error) {
	return s.Event, s.EventErr
}

// MercadoPago is a fake MercadoPagoGateway.
type MercadoPago struct {
	mu        sync.Mutex
	Payments  map[string]*payment.MPPayment
	PrefErr   error
	RefundErr error
	Refunds   []string
}

var _ payment.MercadoPagoGateway = (*MercadoPago)(nil)

func NewMercadoPago() *MercadoPago {
	return &MercadoPago{Payments: map[string]*payment.MPPayment{}}
}

func (m *MercadoPago) CreatePreference(ctx context.Context, in payment.PreferenceInput) (*payment.Preference, error) {
	if m.PrefErr != nil {
		return nil, m.PrefErr
	}
	return &payment.Preference{ID: "pref_" + in.ExternalReference, InitPoint: "https://mp.example/checkout/" + in.ExternalReference}, nil
}

func (m *MercadoPago) GetPayment(ctx context.Context, id string) (*payment.MPPayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Payments[id]
	if !ok {
		return nil, errors.New("payment not found")
	}
	return p, nil
}

func (m *MercadoPago) Refund(ctx context.Context, paymentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RefundErr != nil {
		return m.RefundErr
	}
	m.Refunds = append(m.Refunds, paymentID)
	return nil
}
