package chat

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"aliadolaboral/database/repository/repotest"
	"aliadolaboral/models"
	"aliadolaboral/services/notification/notificationtest"
	"aliadolaboral/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

type fixture struct {
	svc      *DefaultChatService
	contacts *repotest.Contacts
	lawyers  *repotest.Lawyers
	users    *repotest.Users
	chats    *repotest.Chats
	push     *notificationtest.Recorder
	profile  *models.LawyerProfile
}

func newFixture(t *testing.T, workerRole string, now time.Time) *fixture {
	t.Helper()
	f := &fixture{
		contacts: repotest.NewContacts(),
		lawyers:  repotest.NewLawyers(),
		users:    repotest.NewUsers(),
		chats:    repotest.NewChats(),
		push:     &notificationtest.Recorder{},
	}
	f.profile = f.lawyers.SeedLawyer(f.users, "lic1", models.PlanPro, true)
	require.NoError(t, f.users.Create(context.Background(), &models.User{ID: "w1", FullName: "Juana Pérez", Role: workerRole}))
	require.NoError(t, f.contacts.Create(context.Background(), &models.ContactRequest{
		ID:              "r1",
		WorkerID:        "w1",
		LawyerProfileID: f.profile.ID,
		Status:          models.StatusAccepted,
		SubStatus:       models.SubChatActive,
	}))
	f.svc = NewDefaultChatService(f.contacts, f.lawyers, f.users, f.chats, f.push)
	f.svc.Location = time.UTC
	f.svc.Now = func() time.Time { return now }
	return f
}

var noon = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func TestSend_WorkerToLawyer(t *testing.T) {
	f := newFixture(t, utils.RoleWorker, noon)

	res, err := f.svc.Send(context.Background(), "w1", "r1", "  Hola licenciado  ")
	require.NoError(t, err)
	assert.Equal(t, "Hola licenciado", res.Content)
	assert.Equal(t, utils.RoleWorker, res.SenderRole)
	assert.False(t, res.Queued)
	assert.Empty(t, res.Info)

	req := f.contacts.MustGet("r1")
	assert.Equal(t, models.SubWaitingLawyerResponse, req.SubStatus)
	assert.Equal(t, 1, req.UnreadCountLawyer)
	assert.Equal(t, "Hola licenciado", req.LastMessage)
	assert.Equal(t, "w1", req.LastMessageSenderID)
	require.NotNil(t, req.LastWorkerActivityAt)

	pushes := f.push.To("lic1")
	require.Len(t, pushes, 1)
	assert.Equal(t, "Nuevo Mensaje", pushes[0].Title)
	assert.Equal(t, "Juana Pérez: Hola licenciado", pushes[0].Body)
}

func TestSend_LawyerToWorker(t *testing.T) {
	f := newFixture(t, utils.RoleWorker, noon)
	long := strings.Repeat("a", 60)

	_, err := f.svc.Send(context.Background(), "lic1", "r1", long)
	require.NoError(t, err)

	req := f.contacts.MustGet("r1")
	assert.Equal(t, models.SubWaitingWorkerResponse, req.SubStatus)
	assert.Equal(t, 1, req.UnreadCountWorker)
	require.NotNil(t, req.LastLawyerActivityAt)

	pushes := f.push.To("w1")
	require.Len(t, pushes, 1)
	assert.Equal(t, "Lic. lic1: "+strings.Repeat("a", 50)+"...", pushes[0].Body)
}

func TestSend_PymeOutsideScheduleIsQueued(t *testing.T) {
	f := newFixture(t, utils.RolePyme, time.Date(2024, 5, 10, 21, 30, 0, 0, time.UTC))
	require.NoError(t, f.lawyers.UpdateProfileFields(context.Background(), f.profile.ID,
		bson.M{"schedule": models.WorkSchedule{Start: "09:00", End: "18:00"}}))

	res, err := f.svc.Send(context.Background(), "w1", "r1", "¿Podemos revisar el contrato?")
	require.NoError(t, err)
	assert.True(t, res.Queued)
	assert.Equal(t, "Tu abogado responderá a partir de las 09:00 del siguiente día hábil.", res.Info)
	assert.Empty(t, f.push.Pushes)
	assert.Equal(t, 1, f.contacts.MustGet("r1").UnreadCountLawyer)
}

func TestSend_PymeInsideScheduleIsDelivered(t *testing.T) {
	f := newFixture(t, utils.RolePyme, noon)
	require.NoError(t, f.lawyers.UpdateProfileFields(context.Background(), f.profile.ID,
		bson.M{"schedule": models.WorkSchedule{Start: "09:00", End: "18:00"}}))

	res, err := f.svc.Send(context.Background(), "w1", "r1", "Buenas tardes")
	require.NoError(t, err)
	assert.False(t, res.Queued)
	assert.Len(t, f.push.To("lic1"), 1)
}

func TestSend_Guards(t *testing.T) {
	f := newFixture(t, utils.RoleWorker, noon)

	_, err := f.svc.Send(context.Background(), "stranger", "r1", "hola")
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusForbidden, appErr.Status)
	assert.Equal(t, "No tienes permiso para participar en este chat", appErr.Message)

	_, err = f.svc.Send(context.Background(), "w1", "missing", "hola")
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusNotFound, appErr.Status)

	_, err = f.svc.Send(context.Background(), "w1", "r1", "   ")
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
}

func TestHistory_ResetsCallerUnread(t *testing.T) {
	f := newFixture(t, utils.RoleWorker, noon)
	_, err := f.svc.Send(context.Background(), "lic1", "r1", "primero")
	require.NoError(t, err)
	_, err = f.svc.Send(context.Background(), "w1", "r1", "segundo")
	require.NoError(t, err)

	msgs, err := f.svc.History(context.Background(), "w1", "r1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "primero", msgs[0].Content)
	assert.NotNil(t, f.chats.Messages[0].ReadAt)
	assert.Nil(t, f.chats.Messages[1].ReadAt)

	req := f.contacts.MustGet("r1")
	assert.Zero(t, req.UnreadCountWorker)
	assert.Equal(t, 1, req.UnreadCountLawyer)

	require.NoError(t, f.svc.MarkRead(context.Background(), "lic1", "r1"))
	assert.Zero(t, f.contacts.MustGet("r1").UnreadCountLawyer)

	_, err = f.svc.History(context.Background(), "stranger", "r1")
	require.Error(t, err)
}

func TestWithinSchedule(t *testing.T) {
	sched := &models.WorkSchedule{Start: "09:00", End: "18:00"}
	at := func(h, m int) time.Time { return time.Date(2024, 5, 10, h, m, 0, 0, time.UTC) }

	open, ok := withinSchedule(sched, at(10, 0))
	assert.True(t, ok)
	assert.True(t, open)

	open, _ = withinSchedule(sched, at(8, 59))
	assert.False(t, open)

	open, _ = withinSchedule(sched, at(18, 0))
	assert.False(t, open)

	_, ok = withinSchedule(&models.WorkSchedule{Start: "nueve", End: "18:00"}, at(10, 0))
	assert.False(t, ok)

	_, ok = withinSchedule(nil, at(10, 0))
	assert.False(t, ok)
}
