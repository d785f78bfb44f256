package profile

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"aliadolaboral/database/repository/repotest"
	"aliadolaboral/models"
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

type env struct {
	svc      *DefaultProfileService
	users    *repotest.Users
	lawyers  *repotest.Lawyers
	profiles *repotest.Profiles
	contacts *repotest.Contacts
	images   *storagetest.Memory
}

func newEnv(t *testing.T, ocrText string) *env {
	t.Helper()
	e := &env{
		users:    repotest.NewUsers(),
		lawyers:  repotest.NewLawyers(),
		profiles: repotest.NewProfiles(),
		contacts: repotest.NewContacts(),
		images:   storagetest.NewMemory(),
	}
	e.svc = NewDefaultProfileService(e.users, e.lawyers, e.profiles, e.contacts, e.images, stubOCR{text: ocrText})
	e.svc.Now = func() time.Time { return time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC) }
	return e
}

func status(t *testing.T, err error) int {
	t.Helper()
	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	return appErr.Status
}

func TestListLawyersFiltersAndHidesContactData(t *testing.T) {
	e := newEnv(t, "")
	ctx := context.Background()

	p1 := e.lawyers.SeedLawyer(e.users, "l1", models.PlanPro, true)
	p2 := e.lawyers.SeedLawyer(e.users, "l2", models.PlanBasic, true)
	e.lawyers.SeedLawyer(e.users, "l3", models.PlanBasic, false) // unverified
	e.lawyers.SeedLawyer(e.users, "l4", "", true)                // no subscription

	require.NoError(t, e.lawyers.UpdateProfileFields(ctx, p1.ID, bson.M{
		"specialties": bson.A{"despido"}, "nationalScope": true, "caseTypes": bson.A{"federal"}, "profileViews": 10,
	}))
	require.NoError(t, e.lawyers.UpdateProfileFields(ctx, p2.ID, bson.M{
		"specialties": bson.A{"acoso"}, "availableStates": bson.A{"Jalisco"}, "caseTypes": bson.A{"local"}, "profileViews": 3,
	}))
	for i, id := range []string{"c1", "c2", "c3"} {
		require.NoError(t, e.contacts.Create(ctx, &models.ContactRequest{
			ID: id, LawyerProfileID: p1.ID, CaseType: "despido", CRMStatus: models.CRMClosedWon,
			AISummary: "Liquidación completa " + string(rune('A'+i)),
		}))
	}

	all, err := e.svc.ListLawyers(ctx, models.LawyerDirectoryFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, p1.ID, all[0].ProfileID, "most viewed first")
	assert.Len(t, all[0].WonCases, 2)
	assert.Empty(t, all[1].WonCases)

	byState, err := e.svc.ListLawyers(ctx, models.LawyerDirectoryFilter{State: "Jalisco"})
	require.NoError(t, err)
	assert.Len(t, byState, 2, "national scope lawyers match every state")

	byState, err = e.svc.ListLawyers(ctx, models.LawyerDirectoryFilter{State: "Sonora"})
	require.NoError(t, err)
	require.Len(t, byState, 1)
	assert.Equal(t, p1.ID, byState[0].ProfileID)

	bySpecialty, err := e.svc.ListLawyers(ctx, models.LawyerDirectoryFilter{Specialty: "acoso"})
	require.NoError(t, err)
	require.Len(t, bySpecialty, 1)
	assert.Equal(t, p2.ID, bySpecialty[0].ProfileID)

	byType, err := e.svc.ListLawyers(ctx, models.LawyerDirectoryFilter{CaseType: "FEDERAL"})
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, p1.ID, byType[0].ProfileID)
}

func TestPublicProfileCountsViews(t *testing.T) {
	e := newEnv(t, "")
	ctx := context.Background()
	p := e.lawyers.SeedLawyer(e.users, "l1", models.PlanBasic, true)

	view, err := e.svc.PublicProfile(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, view.ProfileViews)
	_, _ = e.svc.PublicProfile(ctx, p.ID)
	stored, _ := e.lawyers.GetProfileByID(ctx, p.ID)
	assert.Equal(t, 2, stored.ProfileViews)

	_, err = e.svc.PublicProfile(ctx, "missing")
	assert.Equal(t, http.StatusNotFound, status(t, err))
}

func TestPublicProfileInactiveSubscription(t *testing.T) {
	e := newEnv(t, "")
	p := e.lawyers.SeedLawyer(e.users, "l1", "", true)

	_, err := e.svc.PublicProfile(context.Background(), p.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, status(t, err))
	assert.Contains(t, err.Error(), "Este abogado no está disponible actualmente")
}

func TestUpdateLawyerProfileUploadsPhotoAndVerifiesCedula(t *testing.T) {
	e := newEnv(t, "CEDULA PROFESIONAL 12345678 SEP")
	ctx := context.Background()
	e.lawyers.SeedLawyer(e.users, "l1", models.PlanBasic, false)
	require.NoError(t, e.lawyers.UpdateLawyerFields(ctx, "lawyer-l1", bson.M{"licenseNumber": "12345678"}))

	name := "Lic. Ana Pérez"
	res, err := e.svc.UpdateLawyerProfile(ctx, "l1",
		models.LawyerProfileUpdate{DisplayName: &name, Schedule: &models.WorkSchedule{Start: "09:00", End: "18:30"}},
		&models.UploadedFile{Name: "me.jpg", ContentType: "image/jpeg", Data: []byte("jpg")},
		&models.UploadedFile{Name: "cedula.png", ContentType: "image/png", Data: []byte("png")},
	)
	require.NoError(t, err)
	assert.True(t, res.AutoVerified)
	assert.Equal(t, name, res.Profile.DisplayName)
	assert.Contains(t, res.Profile.PhotoURL, "https://cdn.example/"+photoFolder)
	assert.Equal(t, name, e.users.MustGet("l1").FullName)

	lawyer, _ := e.lawyers.GetLawyerByID(ctx, "lawyer-l1")
	assert.True(t, lawyer.IsVerified)
	assert.NotNil(t, lawyer.VerifiedAt)
}

func TestUpdateLawyerProfileCedulaMismatch(t *testing.T) {
	e := newEnv(t, "CEDULA 99999999")
	ctx := context.Background()
	e.lawyers.SeedLawyer(e.users, "l1", models.PlanBasic, false)
	require.NoError(t, e.lawyers.UpdateLawyerFields(ctx, "lawyer-l1", bson.M{"licenseNumber": "12345678"}))

	res, err := e.svc.UpdateLawyerProfile(ctx, "l1", models.LawyerProfileUpdate{}, nil,
		&models.UploadedFile{ContentType: "image/png", Data: []byte("png")})
	require.NoError(t, err)
	assert.False(t, res.AutoVerified)
	lawyer, _ := e.lawyers.GetLawyerByID(ctx, "lawyer-l1")
	assert.False(t, lawyer.IsVerified)
}

func TestUpdateLawyerProfileRejectsBadSchedule(t *testing.T) {
	e := newEnv(t, "")
	e.lawyers.SeedLawyer(e.users, "l1", models.PlanBasic, true)
	_, err := e.svc.UpdateLawyerProfile(context.Background(), "l1",
		models.LawyerProfileUpdate{Schedule: &models.WorkSchedule{Start: "9am", End: "18:00"}}, nil, nil)
	assert.Equal(t, http.StatusBadRequest, status(t, err))

	_, err = e.svc.UpdateLawyerProfile(context.Background(), "nobody", models.LawyerProfileUpdate{}, nil, nil)
	assert.Equal(t, http.StatusNotFound, status(t, err))
}

func TestMyLawyerProfileAndMetrics(t *testing.T) {
	e := newEnv(t, "")
	ctx := context.Background()
	p := e.lawyers.SeedLawyer(e.users, "l1", models.PlanPro, true)
	created := time.Date(2026, 4, 20, 0, 0, 0, 0, time.UTC)
	old := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, e.contacts.Create(ctx, &models.ContactRequest{ID: "a", LawyerProfileID: p.ID, Status: models.StatusPending, CreatedAt: created}))
	require.NoError(t, e.contacts.Create(ctx, &models.ContactRequest{ID: "b", LawyerProfileID: p.ID, Status: models.StatusAccepted, CreatedAt: old}))
	require.NoError(t, e.contacts.Create(ctx, &models.ContactRequest{ID: "c", LawyerProfileID: p.ID, Status: models.StatusRejected, CreatedAt: old}))

	acc, err := e.svc.MyLawyerProfile(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, "l1@example.com", acc.Email)
	assert.Equal(t, models.PlanPro, acc.Subscription.Plan)

	m, err := e.svc.LawyerMetrics(ctx, "l1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, m.TotalRequests)
	assert.EqualValues(t, 1, m.PendingRequests)
	assert.EqualValues(t, 1, m.AcceptedRequests)
	assert.EqualValues(t, 1, m.RejectedRequests)
	assert.EqualValues(t, 1, m.RequestsThisMonth)
}

func TestWorkerProfileUpsert(t *testing.T) {
	e := newEnv(t, "")
	ctx := context.Background()
	require.NoError(t, e.users.Create(ctx, &models.User{ID: "w1", FullName: "Juan", Role: utils.RoleWorker}))

	view, err := e.svc.WorkerProfile(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, "Juan", view.FullName)
	assert.Empty(t, view.Occupation)

	name := "Juan López"
	view, err = e.svc.UpsertWorkerProfile(ctx, "w1", models.WorkerProfileInput{FullName: &name, Occupation: "Chofer", MonthlySalary: 12000})
	require.NoError(t, err)
	assert.Equal(t, name, view.FullName)
	assert.Equal(t, "Chofer", view.Occupation)
	firstID := view.ID

	view, err = e.svc.UpsertWorkerProfile(ctx, "w1", models.WorkerProfileInput{Occupation: "Chofer", MonthlySalary: 13000})
	require.NoError(t, err)
	assert.Equal(t, firstID, view.ID)
	assert.EqualValues(t, 13000, view.MonthlySalary)

	_, err = e.svc.UpsertWorkerProfile(ctx, "w1", models.WorkerProfileInput{MonthlySalary: -1})
	assert.Equal(t, http.StatusBadRequest, status(t, err))
}

func TestSalaryBenchmark(t *testing.T) {
	e := newEnv(t, "")
	ctx := context.Background()
	seed := func(id string, salary float64) {
		require.NoError(t, e.profiles.UpsertWorkerProfile(ctx, &models.WorkerProfile{ID: "wp-" + id, UserID: id, Occupation: "Chofer", MonthlySalary: salary}))
	}
	seed("me", 8000)
	seed("p1", 10000)
	seed("p2", 10000)

	b, err := e.svc.SalaryBenchmark(ctx, "me")
	require.NoError(t, err)
	assert.True(t, b.IsEstimate)
	assert.Equal(t, "average", b.Percentile)

	seed("p3", 10000)
	b, err = e.svc.SalaryBenchmark(ctx, "me")
	require.NoError(t, err)
	assert.False(t, b.IsEstimate)
	assert.Equal(t, 3, b.SampleSize)
	assert.EqualValues(t, 10000, b.MarketAverage)
	assert.Equal(t, "low", b.Percentile)
	assert.InDelta(t, -20.0, b.Difference, 0.001)

	seed("me", 11500)
	b, err = e.svc.SalaryBenchmark(ctx, "me")
	require.NoError(t, err)
	assert.Equal(t, "high", b.Percentile)

	_, err = e.svc.SalaryBenchmark(ctx, "ghost")
	assert.Equal(t, http.StatusBadRequest, status(t, err))
}
