package sla

import (
	"context"
	"testing"
	"time"

	"aliadolaboral/database/repository/repotest"
	"aliadolaboral/models"
	"aliadolaboral/services/notification/notificationtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

type fixture struct {
	svc      *DefaultSLAService
	contacts *repotest.Contacts
	lawyers  *repotest.Lawyers
	chats    *repotest.Chats
	records  *repotest.Records
	push     *notificationtest.Recorder
	profile  *models.LawyerProfile
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		contacts: repotest.NewContacts(),
		lawyers:  repotest.NewLawyers(),
		chats:    repotest.NewChats(),
		records:  repotest.NewRecords(),
		push:     &notificationtest.Recorder{},
		now:      time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC),
	}
	f.profile = f.lawyers.SeedLawyer(repotest.NewUsers(), "lic1", models.PlanBasic, true)
	f.svc = NewDefaultSLAService(f.contacts, f.lawyers, f.chats, f.records, f.push)
	f.svc.Now = func() time.Time { return f.now }
	f.contacts.SetClock(func() time.Time { return f.now })
	return f
}

func (f *fixture) accepted(t *testing.T, id string, mutate func(r *models.ContactRequest)) {
	t.Helper()
	acceptedAt := f.now.Add(-2 * time.Hour)
	activity := f.now.Add(-time.Hour)
	req := &models.ContactRequest{
		ID:                    id,
		WorkerID:              "w1",
		LawyerProfileID:       f.profile.ID,
		Status:                models.StatusAccepted,
		SubStatus:             models.SubChatActive,
		CRMStatus:             models.CRMContacted,
		DataStatus:            models.DataUnlocked,
		WorkerPaid:            true,
		LawyerPaid:            true,
		BothPaymentsSucceeded: true,
		AcceptedAt:            &acceptedAt,
		LastLawyerActivityAt:  &activity,
		CreatedAt:             f.now.Add(-time.Hour),
	}
	if mutate != nil {
		mutate(req)
	}
	require.NoError(t, f.contacts.Create(context.Background(), req))
}

func hoursAgo(now time.Time, h int) *time.Time {
	t := now.Add(-time.Duration(h) * time.Hour)
	return &t
}

func TestCheckInactiveChats_ReleasesAndStrikes(t *testing.T) {
	f := newFixture(t)
	f.accepted(t, "stale", func(r *models.ContactRequest) { r.LastLawyerActivityAt = hoursAgo(f.now, 25) })
	f.accepted(t, "fresh", nil)

	n, err := f.svc.CheckInactiveChats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	req := f.contacts.MustGet("stale")
	assert.Equal(t, models.StatusPending, req.Status)
	assert.Equal(t, models.SubWaitingLawyer, req.SubStatus)
	assert.Empty(t, req.LawyerProfileID)
	assert.Equal(t, models.RejectionTimeout, req.RejectionReason)
	assert.Equal(t, 1, req.RejectionCount)
	assert.False(t, req.BothPaymentsSucceeded)
	assert.True(t, req.WorkerPaid)
	require.NotNil(t, req.LastWorkerActivityAt)

	assert.Equal(t, models.StatusAccepted, f.contacts.MustGet("fresh").Status)

	lawyer, err := f.lawyers.GetLawyerByID(context.Background(), f.profile.LawyerID)
	require.NoError(t, err)
	assert.Equal(t, 1, lawyer.Strikes)
	assert.Equal(t, models.LawyerActive, lawyer.Status)

	require.Len(t, f.push.To("lic1"), 1)
	assert.Equal(t, "⚠️ Strike Aplicado: Inactividad", f.push.To("lic1")[0].Title)
	require.Len(t, f.push.To("w1"), 1)
	assert.Equal(t, "🔄 Reasignando Abogado", f.push.To("w1")[0].Title)

	// The released request is no longer a candidate.
	n, err = f.svc.CheckInactiveChats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestThirdStrikeSuspends(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.lawyers.UpdateLawyerFields(context.Background(), f.profile.LawyerID, bson.M{"strikes": 2}))
	f.accepted(t, "stale", func(r *models.ContactRequest) { r.LastLawyerActivityAt = hoursAgo(f.now, 30) })

	_, err := f.svc.CheckInactiveChats(context.Background())
	require.NoError(t, err)

	lawyer, err := f.lawyers.GetLawyerByID(context.Background(), f.profile.LawyerID)
	require.NoError(t, err)
	assert.Equal(t, 3, lawyer.Strikes)
	assert.Equal(t, models.LawyerSuspended, lawyer.Status)

	alerts := f.records.AlertsOfType(models.AlertLawyerSuspended)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.SeverityHigh, alerts[0].Severity)
	assert.Equal(t, "lic1", alerts[0].EntityID)
}

func TestAddStrike_AlreadySuspendedRaisesNoNewAlert(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.lawyers.UpdateLawyerFields(context.Background(), f.profile.LawyerID,
		bson.M{"strikes": 3, "status": models.LawyerSuspended}))

	res, err := f.svc.AddStrike(context.Background(), f.profile.LawyerID, "manual")
	require.NoError(t, err)
	assert.Equal(t, 4, res.Strikes)
	assert.True(t, res.Suspended)
	assert.Empty(t, f.records.AlertsOfType(models.AlertLawyerSuspended))
}

func TestAddStrike_UnknownLawyer(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.AddStrike(context.Background(), "missing", "manual")
	require.Error(t, err)
}

func TestRunNightlyReview(t *testing.T) {
	f := newFixture(t)
	f.accepted(t, "uncontacted", func(r *models.ContactRequest) {
		r.CRMStatus = models.CRMNew
		r.AcceptedAt = hoursAgo(f.now, 30)
	})
	f.accepted(t, "quiet", func(r *models.ContactRequest) {
		r.SubStatus = models.SubWaitingWorkerResponse
		r.LastLawyerActivityAt = hoursAgo(f.now, 6*24)
	})
	f.accepted(t, "won", func(r *models.ContactRequest) {
		r.CRMStatus = models.CRMClosedWon
		r.LastLawyerActivityAt = hoursAgo(f.now, 10*24)
	})

	report, err := f.svc.RunNightlyReview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Reassigned)
	assert.Equal(t, 1, report.Flagged)

	released := f.contacts.MustGet("uncontacted")
	assert.Equal(t, models.StatusPending, released.Status)
	assert.Equal(t, models.RejectionSLA, released.RejectionReason)

	assert.Equal(t, models.SubNeedsAttention, f.contacts.MustGet("quiet").SubStatus)
	assert.Equal(t, models.SubChatActive, f.contacts.MustGet("won").SubStatus)

	lawyer, err := f.lawyers.GetLawyerByID(context.Background(), f.profile.LawyerID)
	require.NoError(t, err)
	assert.Equal(t, 1, lawyer.Strikes)
}

func TestRunNudges(t *testing.T) {
	f := newFixture(t)
	quiet := func(days int) func(r *models.ContactRequest) {
		return func(r *models.ContactRequest) {
			r.LastLawyerActivityAt = hoursAgo(f.now, days*24)
		}
	}
	f.accepted(t, "yellow", quiet(5))
	f.accepted(t, "red", quiet(8))
	f.accepted(t, "recent", quiet(1))

	n, err := f.svc.RunNudges(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	yellow := f.chats.OfType("yellow", models.MessageNudge)
	require.Len(t, yellow, 2)
	assert.Contains(t, yellow[0].Content, "Lic. lic1")
	assert.Equal(t, models.SeverityYellow, yellow[1].Severity)

	red := f.chats.OfType("red", models.MessageNudge)
	require.Len(t, red, 1)
	assert.Equal(t, models.SeverityRed, red[0].Severity)
	assert.Empty(t, f.chats.OfType("recent", models.MessageNudge))

	profile, err := f.lawyers.GetProfileByID(context.Background(), f.profile.ID)
	require.NoError(t, err)
	assert.Equal(t, -1.0, profile.Reputation)
	assert.Equal(t, models.SeverityRed, f.contacts.MustGet("red").NudgeLevel)
	assert.WithinDuration(t, *hoursAgo(f.now, 8*24), *f.contacts.MustGet("red").LastLawyerActivityAt, 0)

	// Each level is sent once per silent stretch.
	f.now = f.now.Add(6 * time.Hour)
	n, err = f.svc.RunNudges(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRunNudges_EscalatesToRedAcrossScans(t *testing.T) {
	f := newFixture(t)
	f.accepted(t, "neglected", func(r *models.ContactRequest) {
		r.LastLawyerActivityAt = hoursAgo(f.now, 4*24+1)
	})
	lastActivity := *f.contacts.MustGet("neglected").LastLawyerActivityAt

	for scan := 0; scan < 32; scan++ {
		_, err := f.svc.RunNudges(context.Background())
		require.NoError(t, err)
		f.now = f.now.Add(6 * time.Hour)
	}

	msgs := f.chats.OfType("neglected", models.MessageNudge)
	require.Len(t, msgs, 3)
	assert.Equal(t, models.SeverityYellow, msgs[0].Severity)
	assert.Equal(t, models.SeverityYellow, msgs[1].Severity)
	assert.Equal(t, models.SeverityRed, msgs[2].Severity)
	assert.GreaterOrEqual(t, msgs[2].CreatedAt.Sub(lastActivity), EscalateAfter)
	assert.Less(t, msgs[2].CreatedAt.Sub(lastActivity), EscalateAfter+6*time.Hour)

	profile, err := f.lawyers.GetProfileByID(context.Background(), f.profile.ID)
	require.NoError(t, err)
	assert.Equal(t, -1.0, profile.Reputation)
}

func TestRunNudges_SkipsCasesWithLawyerChatTraffic(t *testing.T) {
	f := newFixture(t)
	f.accepted(t, "active", func(r *models.ContactRequest) {
		r.LastLawyerActivityAt = hoursAgo(f.now, 3*24)
	})
	ctx := context.Background()

	for day := 0; day < 10; day++ {
		f.now = f.now.Add(24 * time.Hour)
		// Same update the chat service applies when the lawyer writes.
		require.NoError(t, f.contacts.Apply(ctx, "active", bson.M{
			"$set": bson.M{"lastMessageAt": f.now, "lastLawyerActivityAt": f.now},
			"$inc": bson.M{"unreadCountWorker": 1},
		}))
		n, err := f.svc.RunNudges(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	}
	assert.Empty(t, f.chats.OfType("active", models.MessageNudge))
	assert.WithinDuration(t, f.now, f.contacts.MustGet("active").UpdatedAt, 0)
}

func TestRunNudges_NewSilenceAfterActivityStartsOver(t *testing.T) {
	f := newFixture(t)
	f.accepted(t, "r1", func(r *models.ContactRequest) {
		r.LastLawyerActivityAt = hoursAgo(f.now, 5*24)
	})
	ctx := context.Background()

	n, err := f.svc.RunNudges(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, f.contacts.UpdateFields(ctx, "r1", bson.M{"lastLawyerActivityAt": f.now}))
	f.now = f.now.Add(4*24*time.Hour + time.Hour)
	n, err = f.svc.RunNudges(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, f.chats.OfType("r1", models.MessageNudge), 4)
}
