package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"aliadolaboral/database/repository/repotest"
	"aliadolaboral/models"
	"aliadolaboral/services/contact"
	"aliadolaboral/services/notification/notificationtest"
	"aliadolaboral/services/payment"
	"aliadolaboral/services/payment/paymenttest"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
)

type env struct {
	svc      *DefaultWebhookService
	mr       *miniredis.Miniredis
	contacts *repotest.Contacts
	lawyers  *repotest.Lawyers
	records  *repotest.Records
	stripe   *paymenttest.Stripe
	mp       *paymenttest.MercadoPago
}

func newEnv(t *testing.T) *env {
	t.Helper()
	mr := miniredis.RunT(t)
	e := &env{
		mr:       mr,
		contacts: repotest.NewContacts(),
		lawyers:  repotest.NewLawyers(),
		records:  repotest.NewRecords(),
		stripe:   paymenttest.NewStripe(),
		mp:       paymenttest.NewMercadoPago(),
	}
	users := repotest.NewUsers()
	contacts := contact.NewDefaultContactService(e.contacts, users, e.lawyers, repotest.NewChats(), e.records,
		e.stripe, e.mp, nil, nil, &notificationtest.Recorder{}, nil, nil)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	e.svc = NewDefaultWebhookService(e.contacts, e.lawyers, e.records, contacts, e.stripe, e.mp, cache, "")

	require.NoError(t, e.contacts.Create(context.Background(), &models.ContactRequest{
		ID:             "r1",
		WorkerID:       "w1",
		Status:         models.StatusPending,
		DataStatus:     models.DataMasked,
		PaymentGateway: models.GatewayStripe,
		ExpiresAt:      time.Now().Add(48 * time.Hour),
	}))
	return e
}

func (e *env) sendStripe(t *testing.T, id, kind string, object interface{}) error {
	t.Helper()
	raw, err := json.Marshal(object)
	require.NoError(t, err)
	e.stripe.Event = stripe.Event{ID: id, Type: stripe.EventType(kind), Data: &stripe.EventData{Raw: raw}}
	return e.svc.HandleStripe(context.Background(), []byte("{}"), "sig")
}

func intent(id, kind string) map[string]interface{} {
	return map[string]interface{}{
		"id":       id,
		"metadata": map[string]string{"contactRequestId": "r1", "type": kind},
	}
}

func TestStripeIntentsUnlockOnlyAfterBothSides(t *testing.T) {
	e := newEnv(t)

	require.NoError(t, e.sendStripe(t, "evt_1", EventIntentSucceeded, intent("pi_w", models.PaymentWorkerContactFee)))
	got := e.contacts.MustGet("r1")
	assert.True(t, got.WorkerPaid)
	assert.False(t, got.BothPaymentsSucceeded)
	assert.Equal(t, models.StatusPending, got.Status)

	require.NoError(t, e.sendStripe(t, "evt_2", EventIntentSucceeded, intent("pi_l", models.PaymentLawyerAcceptance)))
	got = e.contacts.MustGet("r1")
	assert.True(t, got.BothPaymentsSucceeded)
	assert.Equal(t, models.StatusContactUnlocked, got.Status)
	assert.Equal(t, models.DataUnlocked, got.DataStatus)
}

func TestStripeEventIsAppliedOnce(t *testing.T) {
	e := newEnv(t)

	require.NoError(t, e.sendStripe(t, "evt_1", EventIntentSucceeded, intent("pi_w", models.PaymentWorkerContactFee)))
	assert.True(t, e.mr.Exists("webhook:stripe:evt_1"))
	ttl := e.mr.TTL("webhook:stripe:evt_1")
	assert.Equal(t, ClaimTTL, ttl)

	// Reset the flag by hand: a replay must not set it again.
	require.NoError(t, e.contacts.UpdateFields(context.Background(), "r1", map[string]interface{}{"workerPaid": false}))
	require.NoError(t, e.sendStripe(t, "evt_1", EventIntentSucceeded, intent("pi_w", models.PaymentWorkerContactFee)))
	assert.False(t, e.contacts.MustGet("r1").WorkerPaid)
}

func TestStripeFailedApplyReleasesClaim(t *testing.T) {
	e := newEnv(t)
	obj := intent("pi_w", models.PaymentWorkerContactFee)
	obj["metadata"] = map[string]string{"contactRequestId": "missing", "type": models.PaymentWorkerContactFee}

	err := e.sendStripe(t, "evt_9", EventIntentSucceeded, obj)
	require.Error(t, err)
	assert.False(t, e.mr.Exists("webhook:stripe:evt_9"))
}

func TestStripeCommissionInvoice(t *testing.T) {
	e := newEnv(t)
	inv := map[string]interface{}{
		"id":          "in_1",
		"amount_paid": 1000000,
		"metadata":    map[string]string{"type": models.PaymentCommission, "contactRequestId": "r1"},
	}

	require.NoError(t, e.sendStripe(t, "evt_fail", EventInvoiceFailed, inv))
	assert.Equal(t, models.CommissionOverdue, e.contacts.MustGet("r1").CommissionStatus)

	require.NoError(t, e.sendStripe(t, "evt_paid", EventInvoicePaid, inv))
	assert.Equal(t, models.CommissionPaid, e.contacts.MustGet("r1").CommissionStatus)
	payments, _ := e.records.ListPayments(context.Background(), nil, 0)
	require.Len(t, payments, 1)
	assert.Equal(t, 10000.0, payments[0].Amount)
}

func TestStripeSubscriptionLifecycle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	require.NoError(t, e.lawyers.CreateSubscription(ctx, &models.LawyerSubscription{
		ID: "s1", LawyerID: "l1", Plan: models.PlanPro, Status: models.SubActive, StripeSubscriptionID: "sub_1",
	}))

	periodEnd := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, e.sendStripe(t, "evt_renew", EventInvoicePaid, map[string]interface{}{
		"id":           "in_2",
		"subscription": "sub_1",
		"lines":        map[string]interface{}{"data": []interface{}{map[string]interface{}{"period": map[string]int64{"end": periodEnd.Unix()}}}},
	}))
	sub, _ := e.lawyers.GetSubscriptionByLawyerID(ctx, "l1")
	require.NotNil(t, sub.EndDate)
	assert.True(t, sub.EndDate.Equal(periodEnd))

	require.NoError(t, e.sendStripe(t, "evt_del", EventSubscriptionDeleted, map[string]interface{}{"id": "sub_1"}))
	sub, _ = e.lawyers.GetSubscriptionByLawyerID(ctx, "l1")
	assert.Equal(t, models.SubCanceled, sub.Status)
	assert.False(t, sub.AutoRenew)
}

func TestMercadoPagoApprovedPayment(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.mp.Payments["123"] = &payment.MPPayment{ID: "123", Status: "pending", Amount: 50, ExternalReference: "r1"}
	body := []byte(`{"type":"payment","data":{"id":"123"}}`)

	require.NoError(t, e.svc.HandleMercadoPago(ctx, body, http.Header{}, ""))
	assert.False(t, e.contacts.MustGet("r1").WorkerPaid)
	assert.False(t, e.mr.Exists("webhook:mercadopago:123"))

	e.mp.Payments["123"].Status = "approved"
	require.NoError(t, e.svc.HandleMercadoPago(ctx, body, http.Header{}, ""))
	got := e.contacts.MustGet("r1")
	assert.True(t, got.WorkerPaid)
	assert.False(t, got.BothPaymentsSucceeded)

	require.NoError(t, e.svc.HandleMercadoPago(ctx, body, http.Header{}, ""))
	payments, _ := e.records.ListPayments(ctx, nil, 0)
	assert.Len(t, payments, 1)
}

func TestMercadoPagoSignature(t *testing.T) {
	secret := "s3cr3t"
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte("id:123;request-id:req-1;ts:1700000000;"))
	header := http.Header{}
	header.Set("x-request-id", "req-1")
	header.Set("x-signature", "ts=1700000000,v1="+hex.EncodeToString(mac.Sum(nil)))

	assert.True(t, VerifyMPSignature(secret, header, "123"))
	assert.False(t, VerifyMPSignature("other", header, "123"))
	assert.False(t, VerifyMPSignature(secret, http.Header{}, "123"))

	e := newEnv(t)
	e.svc.MPSecret = secret
	err := e.svc.HandleMercadoPago(context.Background(), []byte(`{"type":"payment","data":{"id":"999"}}`), header, "")
	require.Error(t, err)
}
