package accountant

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"aliadolaboral/database/repository/repotest"
	"aliadolaboral/models"
	"aliadolaboral/services/contact"
	"aliadolaboral/services/payment/paymenttest"
	"aliadolaboral/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

type env struct {
	svc      *DefaultAccountantService
	users    *repotest.Users
	lawyers  *repotest.Lawyers
	contacts *repotest.Contacts
	records  *repotest.Records
	profile  *models.LawyerProfile
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		users:    repotest.NewUsers(),
		lawyers:  repotest.NewLawyers(),
		contacts: repotest.NewContacts(),
		records:  repotest.NewRecords(),
	}
	e.profile = e.lawyers.SeedLawyer(e.users, "l1", models.PlanBasic, true)
	require.NoError(t, e.users.Create(context.Background(), &models.User{ID: "w1", FullName: "Juana Pérez", Email: "juana@example.com", Role: utils.RoleWorker}))
	payments := contact.NewDefaultContactService(e.contacts, e.users, e.lawyers, repotest.NewChats(), e.records,
		paymenttest.NewStripe(), paymenttest.NewMercadoPago(), nil, nil, nil, nil, nil)
	e.svc = NewDefaultAccountantService(e.contacts, e.users, e.lawyers, e.records, payments)
	return e
}

func TestPendingPaymentsJoinsParties(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	require.NoError(t, e.contacts.Create(ctx, &models.ContactRequest{ID: "r1", WorkerID: "w1", LawyerProfileID: e.profile.ID,
		Status: models.StatusAccepted, WorkerPaid: true}))
	require.NoError(t, e.contacts.Create(ctx, &models.ContactRequest{ID: "r2", WorkerID: "w1", Status: models.StatusRejected}))
	require.NoError(t, e.contacts.Create(ctx, &models.ContactRequest{ID: "r3", WorkerID: "w1", Status: models.StatusAccepted,
		WorkerPaid: true, LawyerPaid: true, BothPaymentsSucceeded: true}))

	rows, err := e.svc.PendingPayments(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "r1", rows[0].ID)
	assert.Equal(t, "Juana Pérez", rows[0].WorkerName)
	assert.Equal(t, "Lic. l1", rows[0].LawyerName)
	assert.Equal(t, "l1@example.com", rows[0].LawyerEmail)
}

func TestVerifyPayment(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	require.NoError(t, e.contacts.Create(ctx, &models.ContactRequest{ID: "r1", WorkerID: "w1", LawyerProfileID: e.profile.ID,
		Status: models.StatusPending, LawyerPaymentAmount: models.NormalLeadFee}))

	_, err := e.svc.VerifyPayment(ctx, "acc1", "r1", models.ManualPaymentRequest{Type: "both"})
	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusBadRequest, appErr.Status)

	req, err := e.svc.VerifyPayment(ctx, "acc1", "r1", models.ManualPaymentRequest{Type: contact.SideWorker, Reference: "SPEI-001"})
	require.NoError(t, err)
	assert.True(t, req.WorkerPaid)
	assert.False(t, req.BothPaymentsSucceeded)
	assert.Equal(t, models.GatewayManual, req.PaymentGateway)

	req, err = e.svc.VerifyPayment(ctx, "acc1", "r1", models.ManualPaymentRequest{Type: contact.SideLawyer, Reference: "SPEI-002"})
	require.NoError(t, err)
	assert.True(t, req.BothPaymentsSucceeded)
	assert.Equal(t, models.StatusContactUnlocked, req.Status)

	n, _ := e.records.CountPayments(ctx, bson.M{"gateway": models.GatewayManual})
	assert.EqualValues(t, 2, n)
	lawyerLine, _ := e.records.ListPayments(ctx, bson.M{"externalId": "SPEI-002"}, 1)
	require.Len(t, lawyerLine, 1)
	assert.Equal(t, "l1", lawyerLine[0].UserID)
	assert.Equal(t, models.NormalLeadFee, lawyerLine[0].Amount)
	require.Len(t, e.records.Activity, 2)
	assert.Equal(t, models.ActionManualPayment, e.records.Activity[0].Action)
}
