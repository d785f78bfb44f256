package payment

import (
	"context"
	"fmt"
	"time"

	"aliadolaboral/config"
	"aliadolaboral/models"
	"aliadolaboral/utils"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/customer"
	"github.com/stripe/stripe-go/v76/invoice"
	"github.com/stripe/stripe-go/v76/invoiceitem"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/refund"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// CustomerStore persists the Stripe customer id on the user.
type CustomerStore interface {
	UpdateFields(ctx context.Context, id string, fields bson.M) error
}

// StripeService implements StripeGateway with stripe-go. stripe.Key must be set at startup.
type StripeService struct {
	Users         CustomerStore
	WebhookSecret string
}

func NewStripeService(users CustomerStore) *StripeService {
	return &StripeService{Users: users, WebhookSecret: config.AppConfig.StripeWebhookSecret}
}

func (s *StripeService) EnsureCustomer(ctx context.Context, user *models.User) (string, error) {
	if user.StripeCustomerID != "" {
		return user.StripeCustomerID, nil
	}
	params := &stripe.CustomerParams{
		Email: stripe.String(user.Email),
		Name:  stripe.String(user.FullName),
	}
	params.Context = ctx
	params.AddMetadata("userId", user.ID)
	params.AddMetadata("role", user.Role)

	cus, err := customer.New(params)
	utils.RecordPayment(models.GatewayStripe, "customer", err)
	if err != nil {
		return "", fmt.Errorf("failed to create stripe customer: %w", err)
	}
	user.StripeCustomerID = cus.ID
	if err := s.Users.UpdateFields(ctx, user.ID, bson.M{"stripeCustomerId": cus.ID}); err != nil {
		utils.GetLogger().Error("failed to persist stripe customer", zap.String("userId", user.ID), zap.Error(err))
	}
	return cus.ID, nil
}

func (s *StripeService) Charge(ctx context.Context, in ChargeInput) (*models.ChargeResult, error) {
	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(ToCents(in.Amount)),
		Currency:    stripe.String(string(stripe.CurrencyMXN)),
		Description: stripe.String(in.Description),
	}
	params.Context = ctx
	if in.CustomerID != "" {
		params.Customer = stripe.String(in.CustomerID)
	}
	pm := in.PaymentMethodID
	if pm == "" && in.CustomerID != "" {
		// Saved card charged without the customer present.
		dpm, err := s.defaultPaymentMethod(ctx, in.CustomerID)
		if err != nil {
			return nil, err
		}
		if dpm != "" {
			pm = dpm
			params.OffSession = stripe.Bool(true)
		}
	}
	if pm != "" {
		params.PaymentMethod = stripe.String(pm)
		params.Confirm = stripe.Bool(true)
	}
	params.AutomaticPaymentMethods = &stripe.PaymentIntentAutomaticPaymentMethodsParams{
		Enabled:        stripe.Bool(true),
		AllowRedirects: stripe.String("never"),
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(params)
	utils.RecordPayment(models.GatewayStripe, "charge", err)
	if err != nil {
		return nil, fmt.Errorf("stripe charge failed: %w", err)
	}
	return &models.ChargeResult{ID: pi.ID, Status: string(pi.Status), ClientSecret: pi.ClientSecret}, nil
}

func (s *StripeService) defaultPaymentMethod(ctx context.Context, customerID string) (string, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx
	cus, err := customer.Get(customerID, params)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve stripe customer: %w", err)
	}
	if cus.InvoiceSettings != nil && cus.InvoiceSettings.DefaultPaymentMethod != nil {
		return cus.InvoiceSettings.DefaultPaymentMethod.ID, nil
	}
	return "", nil
}

func (s *StripeService) Refund(ctx context.Context, paymentIntentID string) error {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentIntentID),
		Reason:        stripe.String(string(stripe.RefundReasonRequestedByCustomer)),
	}
	params.Context = ctx
	_, err := refund.New(params)
	utils.RecordPayment(models.GatewayStripe, "refund", err)
	if err != nil {
		return fmt.Errorf("stripe refund failed: %w", err)
	}
	return nil
}

func (s *StripeService) HasOverdueInvoices(ctx context.Context, customerID string) (bool, error) {
	if customerID == "" {
		return false, nil
	}
	params := &stripe.InvoiceListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String(string(stripe.InvoiceStatusOpen)),
	}
	params.Context = ctx

	now := time.Now().Unix()
	iter := invoice.List(params)
	for iter.Next() {
		inv := iter.Invoice()
		if inv.DueDate > 0 && inv.DueDate < now {
			return true, nil
		}
	}
	if err := iter.Err(); err != nil {
		return false, fmt.Errorf("failed to list invoices: %w", err)
	}
	return false, nil
}

func (s *StripeService) CreateCommissionInvoice(ctx context.Context, customerID string, amount float64, requestID string) (string, error) {
	itemParams := &stripe.InvoiceItemParams{
		Customer:    stripe.String(customerID),
		Amount:      stripe.Int64(ToCents(amount)),
		Currency:    stripe.String(string(stripe.CurrencyMXN)),
		Description: stripe.String("Comisión por Éxito"),
	}
	itemParams.Context = ctx
	itemParams.AddMetadata("contactRequestId", requestID)
	if _, err := invoiceitem.New(itemParams); err != nil {
		utils.RecordPayment(models.GatewayStripe, "invoice", err)
		return "", fmt.Errorf("failed to create invoice item: %w", err)
	}

	invParams := &stripe.InvoiceParams{
		Customer:                    stripe.String(customerID),
		AutoAdvance:                 stripe.Bool(true),
		CollectionMethod:            stripe.String(string(stripe.InvoiceCollectionMethodSendInvoice)),
		DaysUntilDue:                stripe.Int64(5),
		PendingInvoiceItemsBehavior: stripe.String("include"),
	}
	invParams.Context = ctx
	invParams.AddMetadata("type", models.PaymentCommission)
	invParams.AddMetadata("contactRequestId", requestID)
	inv, err := invoice.New(invParams)
	if err != nil {
		utils.RecordPayment(models.GatewayStripe, "invoice", err)
		return "", fmt.Errorf("failed to create invoice: %w", err)
	}

	finalizeParams := &stripe.InvoiceFinalizeInvoiceParams{}
	finalizeParams.Context = ctx
	finalized, err := invoice.FinalizeInvoice(inv.ID, finalizeParams)
	utils.RecordPayment(models.GatewayStripe, "invoice", err)
	if err != nil {
		return "", fmt.Errorf("failed to finalize invoice: %w", err)
	}
	return finalized.ID, nil
}

func (s *StripeService) CreatePlanIntent(ctx context.Context, amountCents int64, metadata map[string]string) (*models.ChargeResult, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(string(stripe.CurrencyMXN)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	pi, err := paymentintent.New(params)
	utils.RecordPayment(models.GatewayStripe, "plan_intent", err)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}
	return &models.ChargeResult{ID: pi.ID, Status: string(pi.Status), ClientSecret: pi.ClientSecret}, nil
}

func (s *StripeService) GetPlanIntent(ctx context.Context, id string) (*PlanIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := paymentintent.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve payment intent: %w", err)
	}
	return &PlanIntent{ID: pi.ID, Status: string(pi.Status), Amount: pi.Amount, Metadata: pi.Metadata}, nil
}

func (s *StripeService) ParseEvent(payload []byte, signature string) (stripe.Event, error) {
	return webhook.ConstructEventWithOptions(payload, signature, s.WebhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
}
