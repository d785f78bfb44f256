package supervisor

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"aliadolaboral/database/repository/repotest"
	"aliadolaboral/models"
	"aliadolaboral/services/notification/notificationtest"
	"aliadolaboral/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	svc      *DefaultSupervisorService
	users    *repotest.Users
	lawyers  *repotest.Lawyers
	contacts *repotest.Contacts
	records  *repotest.Records
	push     *notificationtest.Recorder
	now      time.Time
}

func newEnv() *env {
	e := &env{
		users:    repotest.NewUsers(),
		lawyers:  repotest.NewLawyers(),
		contacts: repotest.NewContacts(),
		records:  repotest.NewRecords(),
		push:     &notificationtest.Recorder{},
		now:      time.Now().UTC(),
	}
	e.svc = NewDefaultSupervisorService(e.users, e.lawyers, e.contacts, e.records, e.push)
	e.svc.Now = func() time.Time { return e.now }
	return e
}

func notFound(t *testing.T, err error) {
	t.Helper()
	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
}

func TestPendingLawyers(t *testing.T) {
	e := newEnv()
	e.lawyers.SeedLawyer(e.users, "pending", models.PlanBasic, false)
	e.lawyers.SeedLawyer(e.users, "done", models.PlanBasic, true)

	rows, err := e.svc.PendingLawyers(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "lawyer-pending", rows[0].ID)
	assert.Equal(t, "Lic. pending", rows[0].FullName)
	require.NotNil(t, rows[0].Profile)
	require.NotNil(t, rows[0].Subscription)
	assert.Equal(t, models.PlanBasic, rows[0].Subscription.Plan)
}

func TestSetVerifiedNotifiesOnce(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	e.lawyers.SeedLawyer(e.users, "l1", models.PlanBasic, false)

	_, err := e.svc.SetVerified(ctx, "sup", "missing", true)
	notFound(t, err)

	lawyer, err := e.svc.SetVerified(ctx, "sup", "lawyer-l1", true)
	require.NoError(t, err)
	assert.True(t, lawyer.IsVerified)
	_, err = e.svc.SetVerified(ctx, "sup", "lawyer-l1", true)
	require.NoError(t, err)
	assert.Len(t, e.push.Pushes, 1)

	lawyer, err = e.svc.SetVerified(ctx, "sup", "lawyer-l1", false)
	require.NoError(t, err)
	assert.False(t, lawyer.IsVerified)
	assert.Len(t, e.records.Activity, 3)
}

func TestRejectDowngradesUser(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	e.lawyers.SeedLawyer(e.users, "l1", models.PlanBasic, false)

	notFound(t, e.svc.Reject(ctx, "sup", "missing"))
	require.NoError(t, e.svc.Reject(ctx, "sup", "lawyer-l1"))

	user := e.users.MustGet("l1")
	assert.Equal(t, utils.RoleWorker, user.Role)
	assert.Equal(t, models.PlanFree, user.Plan)
	lawyer, _ := e.lawyers.GetLawyerByID(ctx, "lawyer-l1")
	assert.Nil(t, lawyer)
	profile, _ := e.lawyers.GetProfileByLawyerID(ctx, "lawyer-l1")
	assert.Nil(t, profile)
	sub, _ := e.lawyers.GetSubscriptionByLawyerID(ctx, "lawyer-l1")
	assert.Nil(t, sub)
	assert.Equal(t, models.ActionRejectLawyer, e.records.Activity[0].Action)
}

func TestStats(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	e.lawyers.SeedLawyer(e.users, "l1", models.PlanBasic, false)
	recent := e.now.Add(-2 * time.Hour)
	old := e.now.Add(-48 * time.Hour)
	require.NoError(t, e.contacts.Create(ctx, &models.ContactRequest{ID: "r1", Status: models.StatusAccepted, BothPaymentsSucceeded: true, AcceptedAt: &recent}))
	require.NoError(t, e.contacts.Create(ctx, &models.ContactRequest{ID: "r2", Status: models.StatusAccepted, BothPaymentsSucceeded: true, AcceptedAt: &old}))

	stats, err := e.svc.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.PendingLawyers)
	assert.EqualValues(t, 1, stats.RecentPayments)
}
