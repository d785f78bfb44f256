package contact

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"aliadolaboral/database/repository/repotest"
	"aliadolaboral/models"
	"aliadolaboral/services/notification/notificationtest"
	"aliadolaboral/services/payment/paymenttest"
	"aliadolaboral/services/storage/storagetest"
	"aliadolaboral/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

type stubOCR struct{ text string }

func (o stubOCR) ExtractText(ctx context.Context, mimeType string, data []byte) (string, error) {
	return o.text, nil
}

type fixture struct {
	svc      *DefaultContactService
	contacts *repotest.Contacts
	users    *repotest.Users
	lawyers  *repotest.Lawyers
	chats    *repotest.Chats
	records  *repotest.Records
	stripe   *paymenttest.Stripe
	mp       *paymenttest.MercadoPago
	push     *notificationtest.Recorder
	store    *storagetest.Memory
	profile  *models.LawyerProfile
	now      time.Time
}

func newFixture(t *testing.T, plan string) *fixture {
	t.Helper()
	f := &fixture{
		contacts: repotest.NewContacts(),
		users:    repotest.NewUsers(),
		lawyers:  repotest.NewLawyers(),
		chats:    repotest.NewChats(),
		records:  repotest.NewRecords(),
		stripe:   paymenttest.NewStripe(),
		mp:       paymenttest.NewMercadoPago(),
		push:     &notificationtest.Recorder{},
		store:    storagetest.NewMemory(),
		now:      time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC),
	}
	f.profile = f.lawyers.SeedLawyer(f.users, "lic1", plan, true)
	require.NoError(t, f.users.Create(context.Background(), &models.User{
		ID: "w1", Email: "w1@example.com", FullName: "Juana Pérez", Phone: "5511112222", Role: utils.RoleWorker,
	}))
	f.svc = NewDefaultContactService(f.contacts, f.users, f.lawyers, f.chats, f.records,
		f.stripe, f.mp, f.store, stubOCR{}, f.push, nil, nil)
	f.svc.Now = func() time.Time { return f.now }
	return f
}

// paidRequest stores a pending request whose opening fee was already charged.
func (f *fixture) paidRequest(t *testing.T, id string, hot bool) *models.ContactRequest {
	t.Helper()
	fee := models.NormalLeadFee
	if hot {
		fee = models.HotLeadFee
	}
	consent := f.now
	req := &models.ContactRequest{
		ID:                  id,
		WorkerID:            "w1",
		LawyerProfileID:     f.profile.ID,
		CaseType:            "despido",
		IsHot:               hot,
		LawyerPaymentAmount: fee,
		Status:              models.StatusPending,
		SubStatus:           models.SubWaitingLawyer,
		DataStatus:          models.DataMasked,
		CRMStatus:           models.CRMNew,
		ConsentTimestamp:    &consent,
		PaymentGateway:      models.GatewayStripe,
		WorkerPaid:          true,
		WorkerPaymentID:     "pi_worker_" + id,
		OpeningFeePaid:      models.WorkerOpeningFee,
		ExpiresAt:           f.now.Add(48 * time.Hour),
	}
	require.NoError(t, f.contacts.Create(context.Background(), req))
	return req
}

func requireAppError(t *testing.T, err error, status int) *utils.AppError {
	t.Helper()
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, status, appErr.Status)
	return appErr
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		severance float64
		years     float64
		class     string
		hot       bool
		fee       float64
	}{
		{"small case", 40000, 1, models.ClassNormal, false, models.NormalLeadFee},
		{"threshold is not hot", 150000, 3, models.ClassNormal, false, models.NormalLeadFee},
		{"high severance", 150001, 0, models.ClassHot, true, models.HotLeadFee},
		{"long tenure", 0, 3.5, models.ClassHot, true, models.HotLeadFee},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			class, hot, fee := Classify(tt.severance, tt.years)
			assert.Equal(t, tt.class, class)
			assert.Equal(t, tt.hot, hot)
			assert.Equal(t, tt.fee, fee)
		})
	}
}

func TestUrgencyScore(t *testing.T) {
	assert.Equal(t, 50, UrgencyScore("normal", false))
	assert.Equal(t, 80, UrgencyScore("high", false))
	assert.Equal(t, 100, UrgencyScore("high", true))
	assert.Equal(t, 70, UrgencyScore("", true))
}

func TestCreateChargesOpeningFee(t *testing.T) {
	f := newFixture(t, models.PlanBasic)
	ctx := context.Background()

	res, err := f.svc.Create(ctx, "w1", models.CreateContactRequest{
		LawyerProfileID:    f.profile.ID,
		CaseType:           "despido",
		Description:        "Me despidieron sin liquidación",
		EstimatedSeverance: 200000,
		YearsOfService:     2,
		PaymentGateway:     models.GatewayStripe,
		PaymentMethodID:    "pm_card",
	}, []models.UploadedFile{{Name: "recibo nomina.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}})
	require.NoError(t, err)

	stored := f.contacts.MustGet(res.Request.ID)
	assert.Equal(t, models.StatusPending, stored.Status)
	assert.Equal(t, models.DataMasked, stored.DataStatus)
	assert.Equal(t, models.ClassHot, stored.Classification)
	assert.Equal(t, models.HotLeadFee, stored.LawyerPaymentAmount)
	assert.True(t, stored.WorkerPaid)
	assert.False(t, stored.BothPaymentsSucceeded)
	assert.True(t, stored.ExpiresAt.Equal(f.now.Add(48*time.Hour)))
	require.Len(t, stored.Documents, 1)
	assert.True(t, f.store.Has(stored.Documents[0].Path))

	require.Len(t, f.stripe.Charges, 1)
	assert.Equal(t, models.WorkerOpeningFee, f.stripe.Charges[0].Amount)
	assert.Equal(t, models.PaymentWorkerContactFee, f.stripe.Charges[0].Metadata["type"])
	n, _ := f.records.CountPayments(ctx, bson.M{"type": models.PaymentWorkerContactFee})
	assert.EqualValues(t, 1, n)
}

func TestCreateWithMercadoPagoReturnsCheckout(t *testing.T) {
	f := newFixture(t, models.PlanBasic)

	res, err := f.svc.Create(context.Background(), "w1", models.CreateContactRequest{
		LawyerProfileID: f.profile.ID,
		PaymentGateway:  models.GatewayMP,
	}, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, res.MPInitPoint)
	assert.Equal(t, "pending", res.PaymentStatus)
	assert.False(t, f.contacts.MustGet(res.Request.ID).WorkerPaid)
}

func TestCreateRemovesRequestWhenChargeFails(t *testing.T) {
	f := newFixture(t, models.PlanBasic)
	f.stripe.ChargeErr = errors.New("card_declined")

	_, err := f.svc.Create(context.Background(), "w1", models.CreateContactRequest{
		LawyerProfileID: f.profile.ID,
		PaymentGateway:  models.GatewayStripe,
	}, nil)
	requireAppError(t, err, http.StatusInternalServerError)

	reqs, _ := f.contacts.ListByWorker(context.Background(), "w1")
	assert.Empty(t, reqs)
}

func TestCreateRefusesBlockedWorker(t *testing.T) {
	f := newFixture(t, models.PlanBasic)
	require.NoError(t, f.users.UpdateFields(context.Background(), "w1", bson.M{"isBlocked": true, "blockReason": "fraude"}))

	_, err := f.svc.Create(context.Background(), "w1", models.CreateContactRequest{
		LawyerProfileID: f.profile.ID,
		PaymentGateway:  models.GatewayStripe,
	}, nil)
	appErr := requireAppError(t, err, http.StatusForbidden)
	assert.Equal(t, "fraude", appErr.Extra["reason"])
	assert.Empty(t, f.stripe.Charges)
}

func TestCreateRejectsUnknownGateway(t *testing.T) {
	f := newFixture(t, models.PlanBasic)
	_, err := f.svc.Create(context.Background(), "w1", models.CreateContactRequest{
		LawyerProfileID: f.profile.ID,
		PaymentGateway:  "paypal",
	}, nil)
	requireAppError(t, err, http.StatusBadRequest)
}

func TestAcceptUnlocksWhenBothSidesPaid(t *testing.T) {
	f := newFixture(t, models.PlanBasic)
	f.paidRequest(t, "r1", false)

	got, err := f.svc.Accept(context.Background(), "lic1", "r1", "pm_lawyer")
	require.NoError(t, err)

	assert.Equal(t, models.StatusAccepted, got.Status)
	assert.Equal(t, models.SubChatActive, got.SubStatus)
	assert.True(t, got.LawyerPaid)
	assert.True(t, got.BothPaymentsSucceeded)
	assert.Equal(t, models.DataUnlocked, got.DataStatus)
	require.NotNil(t, got.Saga)
	assert.Equal(t, models.SagaCompleted, got.Saga.Step)

	require.Len(t, f.stripe.Charges, 1)
	assert.Equal(t, models.NormalLeadFee, f.stripe.Charges[0].Amount)
	assert.Len(t, f.chats.OfType("r1", models.MessageText), 1)
	assert.Len(t, f.push.To("w1"), 1)
}

func TestAcceptRefundsWorkerWhenLawyerChargeFails(t *testing.T) {
	f := newFixture(t, models.PlanBasic)
	f.paidRequest(t, "r1", false)
	f.stripe.ChargeErr = errors.New("insufficient_funds")

	_, err := f.svc.Accept(context.Background(), "lic1", "r1", "pm_lawyer")
	appErr := requireAppError(t, err, http.StatusInternalServerError)
	assert.Equal(t, "Se reembolsó el pago del trabajador", appErr.Details)

	assert.Equal(t, []string{"pi_worker_r1"}, f.stripe.Refunds)
	stored := f.contacts.MustGet("r1")
	assert.Equal(t, models.StatusCanceled, stored.Status)
	assert.False(t, stored.WorkerPaid)
	assert.False(t, stored.LawyerPaid)
	assert.False(t, stored.BothPaymentsSucceeded)
	assert.Equal(t, models.RefundProcessed, stored.RefundStatus)
	assert.Equal(t, models.SagaRefunded, stored.Saga.Step)
}

func TestAcceptRaisesAlertWhenRefundFails(t *testing.T) {
	f := newFixture(t, models.PlanBasic)
	f.paidRequest(t, "r1", false)
	f.stripe.ChargeErr = errors.New("insufficient_funds")
	f.stripe.RefundErr = errors.New("stripe down")

	_, err := f.svc.Accept(context.Background(), "lic1", "r1", "pm_lawyer")
	requireAppError(t, err, http.StatusInternalServerError)

	stored := f.contacts.MustGet("r1")
	assert.Equal(t, models.StatusPending, stored.Status)
	assert.Equal(t, models.RefundFailed, stored.RefundStatus)
	assert.Equal(t, models.SagaRefundFailed, stored.Saga.Step)
	assert.False(t, stored.BothPaymentsSucceeded)
	alerts := f.records.AlertsOfType(models.AlertRefundFailed)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.SeverityHigh, alerts[0].Severity)
}

func TestAcceptGuards(t *testing.T) {
	t.Run("hot lead needs pro", func(t *testing.T) {
		f := newFixture(t, models.PlanBasic)
		f.paidRequest(t, "r1", true)
		_, err := f.svc.Accept(context.Background(), "lic1", "r1", "")
		appErr := requireAppError(t, err, http.StatusForbidden)
		assert.Equal(t, true, appErr.Extra["upgradeRequired"])
		assert.Empty(t, f.stripe.Charges)
	})
	t.Run("pro may take hot lead", func(t *testing.T) {
		f := newFixture(t, models.PlanPro)
		f.paidRequest(t, "r1", true)
		got, err := f.svc.Accept(context.Background(), "lic1", "r1", "")
		require.NoError(t, err)
		assert.Equal(t, models.HotLeadFee, got.LeadCostPaid)
	})
	t.Run("no subscription", func(t *testing.T) {
		f := newFixture(t, "")
		f.paidRequest(t, "r1", false)
		_, err := f.svc.Accept(context.Background(), "lic1", "r1", "")
		requireAppError(t, err, http.StatusForbidden)
	})
	t.Run("overdue commission", func(t *testing.T) {
		f := newFixture(t, models.PlanBasic)
		require.NoError(t, f.users.UpdateFields(context.Background(), "lic1", bson.M{"stripeCustomerId": "cus_lic1"}))
		f.stripe.Overdue = true
		f.paidRequest(t, "r1", false)
		_, err := f.svc.Accept(context.Background(), "lic1", "r1", "")
		appErr := requireAppError(t, err, http.StatusPaymentRequired)
		assert.Equal(t, "overdue_commission", appErr.Extra["blockReason"])
	})
	t.Run("worker not paid", func(t *testing.T) {
		f := newFixture(t, models.PlanBasic)
		req := f.paidRequest(t, "r1", false)
		require.NoError(t, f.contacts.UpdateFields(context.Background(), req.ID, bson.M{"workerPaid": false}))
		_, err := f.svc.Accept(context.Background(), "lic1", "r1", "")
		requireAppError(t, err, http.StatusBadRequest)
	})
	t.Run("already processed", func(t *testing.T) {
		f := newFixture(t, models.PlanBasic)
		f.paidRequest(t, "r1", false)
		_, err := f.svc.Accept(context.Background(), "lic1", "r1", "")
		require.NoError(t, err)
		_, err = f.svc.Accept(context.Background(), "lic1", "r1", "")
		requireAppError(t, err, http.StatusBadRequest)
		assert.Len(t, f.stripe.Charges, 1)
	})
}

func TestRejectRefundsWorker(t *testing.T) {
	f := newFixture(t, models.PlanBasic)
	f.paidRequest(t, "r1", false)

	got, err := f.svc.Reject(context.Background(), "lic1", "r1", "Sin disponibilidad")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, got.Status)
	assert.Equal(t, models.RefundProcessed, got.RefundStatus)
	assert.Equal(t, []string{"pi_worker_r1"}, f.stripe.Refunds)
}

func TestMarkPaidDerivesBothPaid(t *testing.T) {
	f := newFixture(t, models.PlanBasic)
	req := f.paidRequest(t, "r1", false)
	ctx := context.Background()
	require.NoError(t, f.contacts.UpdateFields(ctx, req.ID, bson.M{"workerPaid": false}))

	got, err := f.svc.MarkPaid(ctx, "r1", SideLawyer, models.GatewayStripe, "pi_lawyer")
	require.NoError(t, err)
	assert.True(t, got.LawyerPaid)
	assert.False(t, got.BothPaymentsSucceeded, "one side paid must not unlock")
	assert.Equal(t, models.StatusPending, got.Status)

	got, err = f.svc.MarkPaid(ctx, "r1", SideWorker, models.GatewayManual, "SPEI-123")
	require.NoError(t, err)
	assert.True(t, got.BothPaymentsSucceeded)
	assert.Equal(t, models.StatusContactUnlocked, got.Status)
	assert.Equal(t, models.DataUnlocked, got.DataStatus)
	assert.Equal(t, models.GatewayManual, got.PaymentGateway)

	_, err = f.svc.MarkPaid(ctx, "r1", "pyme", "", "")
	requireAppError(t, err, http.StatusBadRequest)
}

func TestMarkPaidIgnoresWorkerPaymentAfterRefund(t *testing.T) {
	f := newFixture(t, models.PlanBasic)
	req := f.paidRequest(t, "r1", false)
	ctx := context.Background()
	require.NoError(t, f.contacts.UpdateFields(ctx, req.ID, bson.M{
		"status":       models.StatusCanceled,
		"workerPaid":   false,
		"refundStatus": models.RefundProcessed,
	}))

	got, err := f.svc.MarkPaid(ctx, "r1", SideWorker, models.GatewayStripe, "pi_late")
	require.NoError(t, err)
	assert.False(t, got.WorkerPaid)
	assert.False(t, got.BothPaymentsSucceeded)
	assert.Equal(t, models.StatusCanceled, got.Status)
	assert.NotEqual(t, "pi_late", got.WorkerPaymentID)

	require.NoError(t, f.contacts.UpdateFields(ctx, req.ID, bson.M{"status": models.StatusRejected, "refundStatus": ""}))
	got, err = f.svc.MarkPaid(ctx, "r1", SideWorker, models.GatewayStripe, "pi_late")
	require.NoError(t, err)
	assert.False(t, got.WorkerPaid)
}

func TestCheckBothPaymentsSuccessIgnoresStaleFlag(t *testing.T) {
	f := newFixture(t, models.PlanBasic)
	req := f.paidRequest(t, "r1", false)
	ctx := context.Background()
	require.NoError(t, f.contacts.UpdateFields(ctx, req.ID, bson.M{"bothPaymentsSucceeded": true, "lawyerPaid": false}))

	ok, err := f.svc.CheckBothPaymentsSuccess(ctx, "r1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, f.contacts.MustGet("r1").BothPaymentsSucceeded)
}

func TestListForLawyerMasksUnpaidLeads(t *testing.T) {
	ctx := context.Background()

	t.Run("basic lawyer past trial sees masked data", func(t *testing.T) {
		f := newFixture(t, models.PlanBasic)
		for _, id := range []string{"r1", "r2", "r3", "r4"} {
			req := f.paidRequest(t, id, false)
			require.NoError(t, f.contacts.UpdateFields(ctx, req.ID, bson.M{"workerPaid": false}))
		}
		views, err := f.svc.ListForLawyer(ctx, "lic1", "")
		require.NoError(t, err)
		require.Len(t, views, 4)
		for _, v := range views {
			assert.True(t, v.IsMasked)
			assert.Equal(t, maskedName, v.WorkerName)
			assert.Equal(t, maskedValue, v.WorkerPhone)
			assert.True(t, v.Upsell)
		}
		_, err = f.svc.ContactInfo(ctx, "lic1", "r1")
		requireAppError(t, err, http.StatusForbidden)
	})

	t.Run("pro lawyer sees contact data", func(t *testing.T) {
		f := newFixture(t, models.PlanPro)
		for _, id := range []string{"r1", "r2", "r3", "r4"} {
			f.paidRequest(t, id, false)
		}
		views, err := f.svc.ListForLawyer(ctx, "lic1", models.StatusPending)
		require.NoError(t, err)
		require.NotEmpty(t, views)
		assert.False(t, views[0].IsMasked)
		assert.Equal(t, "Juana Pérez", views[0].WorkerName)
	})

	t.Run("no consent keeps privacy lock", func(t *testing.T) {
		view := maskView(models.ContactRequest{Status: models.StatusAccepted}, models.User{FullName: "X"}, true, false)
		assert.True(t, view.IsMasked)
		assert.True(t, view.PrivacyLock)
		assert.False(t, view.Upsell)
	})
}

func TestUpdateCRMStatusValidates(t *testing.T) {
	f := newFixture(t, models.PlanBasic)
	f.paidRequest(t, "r1", false)

	_, err := f.svc.UpdateCRMStatus(context.Background(), "lic1", "r1", "WHATEVER")
	requireAppError(t, err, http.StatusBadRequest)

	got, err := f.svc.UpdateCRMStatus(context.Background(), "lic1", "r1", models.CRMContacted)
	require.NoError(t, err)
	assert.Equal(t, models.CRMContacted, got.CRMStatus)
}

func TestCloseBillsCommission(t *testing.T) {
	f := newFixture(t, models.PlanBasic)
	ctx := context.Background()
	f.paidRequest(t, "r1", false)
	_, err := f.svc.Accept(ctx, "lic1", "r1", "")
	require.NoError(t, err)

	res, err := f.svc.Close(ctx, "lic1", "r1", 100000, "conciliacion")
	require.NoError(t, err)
	assert.Equal(t, 0.10, res.CommissionRate)
	assert.Equal(t, 10000.0, res.Commission)
	assert.NotEmpty(t, res.InvoiceID)
	assert.Equal(t, models.CRMClosedWon, res.Request.CRMStatus)
	assert.Equal(t, models.CommissionPending, res.Request.CommissionStatus)
	assert.Equal(t, []float64{10000}, f.stripe.Invoices)

	profile, err := f.lawyers.GetProfileByID(ctx, f.profile.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, profile.Reputation)
	assert.Equal(t, 1, profile.SuccessfulCases)
	assert.Zero(t, profile.LifetimeCommissionSavings)

	_, err = f.svc.Close(ctx, "lic1", "r1", 100000, "")
	requireAppError(t, err, http.StatusBadRequest)
}

func TestUploadSettlementReadsAmountFromImage(t *testing.T) {
	f := newFixture(t, models.PlanPro)
	f.svc.OCR = stubOCR{text: "CONVENIO firmado el 02/04/2024 por la cantidad de $80,000.00"}
	ctx := context.Background()
	f.paidRequest(t, "r1", false)
	_, err := f.svc.Accept(ctx, "lic1", "r1", "")
	require.NoError(t, err)

	res, err := f.svc.UploadSettlement(ctx, "lic1", "r1", "JUICIO",
		models.UploadedFile{Name: "convenio.jpg", ContentType: "image/jpeg", Data: []byte{0xff, 0xd8}})
	require.NoError(t, err)
	assert.True(t, res.OCRApplied)
	assert.Equal(t, 80000.0, res.DetectedAmount)
	assert.Equal(t, "02/04/2024", res.DetectedDate)
	assert.Equal(t, 0.05, res.CommissionRate)
	assert.Equal(t, 4000.0, res.Commission)
	assert.Equal(t, "uploaded", res.Request.SettlementDocStatus)

	profile, _ := f.lawyers.GetProfileByID(ctx, f.profile.ID)
	assert.Equal(t, 2400.0, profile.LifetimeCommissionSavings)
	assert.Len(t, f.chats.OfType("r1", models.MessageSystem), 1)
}

func TestReportFraudBlocksWorker(t *testing.T) {
	f := newFixture(t, models.PlanBasic)
	f.paidRequest(t, "r1", false)

	require.NoError(t, f.svc.ReportFraud(context.Background(), "lic1", "r1", "Documentos falsos"))

	worker := f.users.MustGet("w1")
	assert.True(t, worker.IsBlocked)
	assert.Equal(t, "Documentos falsos", worker.BlockReason)
	stored := f.contacts.MustGet("r1")
	assert.Equal(t, models.CRMClosedLost, stored.CRMStatus)
	assert.Equal(t, models.SubFraudReported, stored.SubStatus)
	assert.Len(t, f.records.AlertsOfType(models.AlertFraudReported), 1)
}

func TestLeadPriceClamp(t *testing.T) {
	assert.Equal(t, models.NormalLeadFee, leadPrice(0))
	assert.Equal(t, 150.0, leadPrice(90))
	assert.Equal(t, 320.0, leadPrice(320))
	assert.Equal(t, 500.0, leadPrice(900))
}
