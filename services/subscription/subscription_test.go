package subscription

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"aliadolaboral/database/repository/repotest"
	"aliadolaboral/models"
	"aliadolaboral/services/payment"
	"aliadolaboral/services/payment/paymenttest"
	"aliadolaboral/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

type env struct {
	svc      *DefaultSubscriptionService
	users    *repotest.Users
	lawyers  *repotest.Lawyers
	profiles *repotest.Profiles
	records  *repotest.Records
	stripe   *paymenttest.Stripe
	now      time.Time
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		users:    repotest.NewUsers(),
		lawyers:  repotest.NewLawyers(),
		profiles: repotest.NewProfiles(),
		records:  repotest.NewRecords(),
		stripe:   paymenttest.NewStripe(),
		now:      time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	e.svc = NewDefaultSubscriptionService(e.users, e.lawyers, e.profiles, e.records, e.stripe, paymenttest.NewMercadoPago())
	e.svc.Now = func() time.Time { return e.now }
	return e
}

func status(t *testing.T, err error) int {
	t.Helper()
	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	return appErr.Status
}

func TestActivateRejectsUnknownPlan(t *testing.T) {
	e := newEnv(t)
	_, err := e.svc.Activate(context.Background(), "w1", utils.RoleWorker, "gold")
	assert.Equal(t, http.StatusBadRequest, status(t, err))
}

func TestActivateAndConfirmLawyerPro(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.lawyers.SeedLawyer(e.users, "l1", models.PlanBasic, true)

	res, err := e.svc.Activate(ctx, "l1", utils.RoleLawyer, PlanLawyerPro)
	require.NoError(t, err)
	assert.EqualValues(t, 29900, res.Amount)
	assert.Equal(t, "cus_l1", res.Customer)
	assert.Equal(t, PlanLawyerPro, e.stripe.Intents[res.PaymentIntentID].Metadata["planType"])

	_, err = e.svc.ConfirmPayment(ctx, "l1", res.PaymentIntentID)
	assert.Equal(t, http.StatusBadRequest, status(t, err), "intent not yet succeeded")

	e.stripe.Intents[res.PaymentIntentID].Status = "succeeded"
	st, err := e.svc.ConfirmPayment(ctx, "l1", res.PaymentIntentID)
	require.NoError(t, err)
	assert.True(t, st.IsActive)
	assert.Equal(t, models.PlanPro, st.Plan)
	assert.Equal(t, 30, st.DaysRemaining)
	require.NotNil(t, st.Lawyer)
	assert.Equal(t, LawyerProFee, st.Lawyer.Amount)
	assert.Len(t, st.RecentPayments, 1)

	// Confirming again does not add a second ledger line.
	_, err = e.svc.ConfirmPayment(ctx, "l1", res.PaymentIntentID)
	require.NoError(t, err)
	n, _ := e.records.CountPayments(ctx, bson.M{"externalId": res.PaymentIntentID})
	assert.EqualValues(t, 1, n)
}

func TestConfirmRejectsForeignIntent(t *testing.T) {
	e := newEnv(t)
	e.stripe.Intents["pi_x"] = &payment.PlanIntent{ID: "pi_x", Status: "succeeded", Metadata: map[string]string{"userId": "other", "role": "worker"}}
	_, err := e.svc.ConfirmPayment(context.Background(), "w1", "pi_x")
	assert.Equal(t, http.StatusForbidden, status(t, err))
}

func TestConfirmWorkerPremium(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	require.NoError(t, e.users.Create(ctx, &models.User{ID: "w1", Role: utils.RoleWorker, Plan: models.PlanFree}))
	e.stripe.Intents["pi_w"] = &payment.PlanIntent{ID: "pi_w", Status: "succeeded", Amount: 2900,
		Metadata: map[string]string{"userId": "w1", "role": "worker", "planType": PlanWorkerPremium}}

	st, err := e.svc.ConfirmPayment(ctx, "w1", "pi_w")
	require.NoError(t, err)
	assert.True(t, st.IsActive)
	assert.Equal(t, models.PlanPremium, st.Plan)
	assert.Equal(t, models.PlanPremium, e.users.MustGet("w1").Plan)
}

func TestActivateFree(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	require.NoError(t, e.users.Create(ctx, &models.User{ID: "p1", Role: utils.RolePyme, SubscriptionLevel: models.LevelNone}))

	require.NoError(t, e.svc.ActivateFree(ctx, "p1", utils.RolePyme, PlanPymeBasic))
	assert.Equal(t, models.LevelBasic, e.users.MustGet("p1").SubscriptionLevel)

	err := e.svc.ActivateFree(ctx, "p1", utils.RolePyme, "pyme_pro")
	assert.Equal(t, http.StatusBadRequest, status(t, err))
}

func TestWorkerSubscribeLifecycle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	require.NoError(t, e.users.Create(ctx, &models.User{ID: "w1", Email: "w1@example.com", Role: utils.RoleWorker}))

	sub, err := e.svc.MySubscription(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, models.SubInactive, sub.Status)
	assert.Equal(t, http.StatusForbidden, status(t, e.svc.CheckWorkerAccess(ctx, "w1")))

	res, err := e.svc.Subscribe(ctx, "w1", "")
	require.NoError(t, err)
	assert.NotEmpty(t, res.ClientSecret)
	assert.Equal(t, models.SubActive, res.Subscription.Status)
	assert.WithinDuration(t, e.now.AddDate(0, 1, 0), *res.Subscription.EndDate, time.Second)
	assert.NoError(t, e.svc.CheckWorkerAccess(ctx, "w1"))

	_, err = e.svc.Subscribe(ctx, "w1", models.GatewayStripe)
	assert.Equal(t, http.StatusBadRequest, status(t, err))

	e.now = e.now.AddDate(0, 2, 0)
	err = e.svc.CheckWorkerAccess(ctx, "w1")
	assert.Equal(t, http.StatusForbidden, status(t, err))
	expired, _ := e.profiles.GetWorkerSubscription(ctx, "w1")
	assert.Equal(t, models.SubExpired, expired.Status)
}

func TestWorkerSubscribeMercadoPago(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	require.NoError(t, e.users.Create(ctx, &models.User{ID: "w1", Email: "w1@example.com", Role: utils.RoleWorker}))

	res, err := e.svc.Subscribe(ctx, "w1", models.GatewayMP)
	require.NoError(t, err)
	assert.Contains(t, res.InitPoint, models.SubscriptionReferencePrefix+"w1")

	_, err = e.svc.Subscribe(ctx, "w1", "paypal")
	assert.Error(t, err)
}

func TestCancelWorkerSubscription(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.svc.Cancel(ctx, "w1")
	assert.Equal(t, http.StatusNotFound, status(t, err))

	_, err = e.svc.MySubscription(ctx, "w1")
	require.NoError(t, err)
	sub, err := e.svc.Cancel(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, models.SubCancelled, sub.Status)
	assert.False(t, sub.AutoRenew)
}

func TestOverrideLawyerPlan(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.lawyers.SeedLawyer(e.users, "l1", models.PlanBasic, true)

	user, err := e.svc.Override(ctx, "l1", "", models.PlanPro)
	require.NoError(t, err)
	assert.Equal(t, models.LevelPremium, user.SubscriptionLevel)
	sub, _ := e.lawyers.GetSubscriptionByLawyerID(ctx, "lawyer-l1")
	assert.Equal(t, models.PlanPro, sub.Plan)
	assert.True(t, sub.IsActive(e.now))

	_, err = e.svc.Override(ctx, "l1", utils.RoleLawyer, models.PlanBasic)
	require.NoError(t, err)
	sub, _ = e.lawyers.GetSubscriptionByLawyerID(ctx, "lawyer-l1")
	assert.Equal(t, models.SubInactive, sub.Status)
}
