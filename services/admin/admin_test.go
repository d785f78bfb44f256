package admin

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"aliadolaboral/database/repository/repotest"
	"aliadolaboral/models"
	"aliadolaboral/services/notification/notificationtest"
	"aliadolaboral/services/payment/paymenttest"
	"aliadolaboral/services/sla"
	"aliadolaboral/services/storage/storagetest"
	"aliadolaboral/services/subscription"
	"aliadolaboral/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson"
)

type env struct {
	svc      *DefaultAdminService
	users    *repotest.Users
	lawyers  *repotest.Lawyers
	profiles *repotest.Profiles
	contacts *repotest.Contacts
	records  *repotest.Records
	vault    *repotest.Vault
	cases    *repotest.LegalCases
	store    *storagetest.Memory
	now      time.Time
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		users:    repotest.NewUsers(),
		lawyers:  repotest.NewLawyers(),
		profiles: repotest.NewProfiles(),
		contacts: repotest.NewContacts(),
		records:  repotest.NewRecords(),
		vault:    repotest.NewVault(),
		cases:    repotest.NewLegalCases(),
		store:    storagetest.NewMemory(),
		now:      time.Now().UTC(),
	}
	slaSvc := sla.NewDefaultSLAService(e.contacts, e.lawyers, repotest.NewChats(), e.records, &notificationtest.Recorder{})
	subs := subscription.NewDefaultSubscriptionService(e.users, e.lawyers, e.profiles, e.records,
		paymenttest.NewStripe(), paymenttest.NewMercadoPago())
	e.svc = NewDefaultAdminService(e.users, e.lawyers, e.profiles, e.contacts, e.records,
		e.vault, e.cases, e.store, slaSvc, subs)
	e.svc.Now = func() time.Time { return e.now }
	return e
}

func status(t *testing.T, err error) int {
	t.Helper()
	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	return appErr.Status
}

func (e *env) activeWorker(t *testing.T, id string) {
	t.Helper()
	require.NoError(t, e.users.Create(context.Background(), &models.User{ID: id, Email: id + "@example.com", FullName: "Trabajador " + id, Role: utils.RoleWorker}))
	require.NoError(t, e.profiles.CreateWorkerSubscription(context.Background(), &models.WorkerSubscription{
		ID: "ws-" + id, UserID: id, Status: models.SubActive, Amount: models.WorkerMonthlyFee,
	}))
}

func TestDashboard(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.activeWorker(t, "w1")
	e.activeWorker(t, "w2")
	e.lawyers.SeedLawyer(e.users, "l1", models.PlanBasic, true)
	e.lawyers.SeedLawyer(e.users, "l2", "", false)

	accepted := e.now.Add(-time.Hour)
	require.NoError(t, e.contacts.Create(ctx, &models.ContactRequest{
		ID: "r1", WorkerID: "w1", Status: models.StatusAccepted, WorkerPaid: true, LawyerPaid: true,
		BothPaymentsSucceeded: true, AcceptedAt: &accepted, CreatedAt: e.now,
		CommissionStatus: models.CommissionPaid, CommissionAmount: 500,
	}))
	require.NoError(t, e.contacts.Create(ctx, &models.ContactRequest{ID: "r2", WorkerID: "w2", Status: models.StatusPending, CreatedAt: e.now}))
	require.NoError(t, e.records.CreateAlert(ctx, &models.AdminAlert{Type: models.AlertFraudReported, Severity: models.SeverityHigh}))
	require.NoError(t, e.records.CreateAlert(ctx, &models.AdminAlert{Type: "info", Severity: models.SeverityLow}))

	stats, err := e.svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2*WorkerSubFee+LawyerSubMonthly, stats.KPIs.IncomeBreakdown.Subscriptions)
	assert.Equal(t, ContactPlatformFee, stats.KPIs.IncomeBreakdown.Contacts)
	assert.Equal(t, 500.0, stats.KPIs.IncomeBreakdown.Commissions)
	assert.Equal(t, 108.0+50+500, stats.KPIs.TotalIncome)
	assert.EqualValues(t, 1, stats.KPIs.ActiveLawyers)
	assert.EqualValues(t, 2, stats.KPIs.ActiveWorkers)
	assert.EqualValues(t, 1, stats.KPIs.ContactsSold)
	assert.Equal(t, 50.0, stats.KPIs.ConversionRate)
	assert.EqualValues(t, 1, stats.ActionItems.PendingLawyers)
	assert.EqualValues(t, 1, stats.ActionItems.SuspiciousActivity)
	assert.EqualValues(t, 1, stats.ActionItems.RecentPayments)
}

func TestFinancialStatsAndHealth(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.activeWorker(t, "w1")
	e.lawyers.SeedLawyer(e.users, "l1", models.PlanBasic, true)
	require.NoError(t, e.users.Create(ctx, &models.User{ID: "p1", Role: utils.RolePyme, SubscriptionLevel: models.LevelPremium}))

	health, err := e.svc.FinancialHealth(ctx)
	require.NoError(t, err)
	assert.Equal(t, "∞", health.Efficiency.Ratio)

	require.NoError(t, e.contacts.Create(ctx, &models.ContactRequest{ID: "r1", WorkerID: "w1", BothPaymentsSucceeded: true,
		CommissionStatus: models.CommissionPending, CommissionAmount: 300, CRMStatus: models.CRMClosedWon}))
	require.NoError(t, e.contacts.Create(ctx, &models.ContactRequest{ID: "r2", WorkerID: "w1", IsHot: true,
		EstimatedSeverance: 200000, CRMStatus: models.CRMNew}))
	require.NoError(t, e.contacts.Create(ctx, &models.ContactRequest{ID: "r3", WorkerID: "w1", IsHot: true,
		EstimatedSeverance: 900000, CRMStatus: models.CRMClosedLost}))

	health, err = e.svc.FinancialHealth(ctx)
	require.NoError(t, err)
	assert.Equal(t, WorkerSubFee+LawyerBasicMRR+PymePremiumMRR, health.MRR)
	assert.Equal(t, 300.0, health.PendingFees)
	assert.Equal(t, 12000.0, health.PipelineValue)
	assert.InDelta(t, 0.015, health.Efficiency.Cost, 1e-9)
	assert.NotEqual(t, "∞", health.Efficiency.Ratio)

	fin, err := e.svc.FinancialStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, WorkerSubFee, fin.Breakdown.Subscriptions)
	assert.Equal(t, ContactGrossFee, fin.Breakdown.Contacts)
	assert.Equal(t, "All Time (Estimated)", fin.Period)
}

func TestImpactAndCollectiveRadar(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	for _, r := range []*models.ContactRequest{
		{ID: "a", EmployerName: "Maquiladora Norte", EstimatedSeverance: 100000, CRMStatus: models.CRMClosedWon, SettlementAmount: 80000, ResolutionType: models.ResolutionConciliation},
		{ID: "b", EmployerName: "Maquiladora Norte", EstimatedSeverance: 50000, CRMStatus: models.CRMClosedWon, SettlementAmount: 40000, ResolutionType: models.ResolutionTrial},
		{ID: "c", EmployerName: "Maquiladora Norte", EstimatedSeverance: 50000},
		{ID: "d", EmployerName: "Tienda Sur", EstimatedSeverance: 10000},
	} {
		require.NoError(t, e.contacts.Create(ctx, r))
	}

	impact, err := e.svc.ImpactKPIs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 120000.0, impact.MoneyRecovered)
	assert.EqualValues(t, 2, impact.FamiliesHelped)
	assert.Equal(t, 50.0, impact.ConciliationRate)

	radar, err := e.svc.CollectiveRadar(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, radar.TotalClusters)
	c := radar.Clusters[0]
	assert.Equal(t, "Maquiladora Norte", c.EmployerName)
	assert.Equal(t, 3, c.Count)
	assert.Equal(t, 14000.0, c.PotentialCommission)
	assert.Equal(t, "DETECTED", c.Status)
}

func TestDirectoryLists(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.activeWorker(t, "w1")
	e.lawyers.SeedLawyer(e.users, "l1", models.PlanPro, true)
	require.NoError(t, e.users.Create(ctx, &models.User{ID: "p1", Role: utils.RolePyme, FullName: "Dueña"}))
	require.NoError(t, e.contacts.Create(ctx, &models.ContactRequest{ID: "r1", WorkerID: "w1", Status: models.StatusPending}))

	lawyers, err := e.svc.ListLawyers(ctx)
	require.NoError(t, err)
	require.Len(t, lawyers, 1)
	assert.Equal(t, "Lic. l1", lawyers[0].FullName)
	assert.Equal(t, models.SubActive, lawyers[0].SubscriptionStatus)
	assert.Equal(t, models.PlanPro, lawyers[0].Plan)

	workers, err := e.svc.ListWorkers(ctx)
	require.NoError(t, err)
	require.Len(t, workers, 1)
	assert.EqualValues(t, 1, workers[0].ContactRequests)
	assert.Equal(t, models.SubActive, workers[0].SubscriptionStatus)

	pymes, err := e.svc.ListPymes(ctx)
	require.NoError(t, err)
	require.Len(t, pymes, 1)
	assert.Equal(t, "Sin Razón Social", pymes[0].CompanyName)

	cases, err := e.svc.ListCases(ctx)
	require.NoError(t, err)
	require.Len(t, cases, 1)
	assert.Equal(t, "Sin Asignar", cases[0].LawyerName)
	assert.Equal(t, "Trabajador w1", cases[0].WorkerName)
}

func TestAddStrikeSuspendsAtThree(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.lawyers.SeedLawyer(e.users, "l1", models.PlanBasic, true)

	_, err := e.svc.AddStrike(ctx, "admin", "10.0.0.1", "nope", "")
	assert.Equal(t, http.StatusNotFound, status(t, err))

	var res *models.StrikeResponse
	for i := 0; i < models.MaxStrikes; i++ {
		res, err = e.svc.AddStrike(ctx, "admin", "10.0.0.1", "lawyer-l1", "No contestó al trabajador")
		require.NoError(t, err)
	}
	assert.Equal(t, "Strike añadido correctamente. Total: 3", res.Message)
	assert.Equal(t, models.LawyerSuspended, res.LawyerStatus)
	assert.Len(t, e.records.AlertsOfType(models.AlertLawyerSuspended), 1)

	logs, err := e.svc.SecurityLogs(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, models.ActionAddStrike, logs[0].Action)
	assert.Equal(t, "10.0.0.1", logs[0].IP)
}

func TestUpdateUserSubscription(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.lawyers.SeedLawyer(e.users, "l1", models.PlanBasic, true)

	_, err := e.svc.UpdateUserSubscription(ctx, "admin", "l1", models.SubscriptionOverride{})
	assert.Equal(t, http.StatusBadRequest, status(t, err))

	user, err := e.svc.UpdateUserSubscription(ctx, "admin", "l1", models.SubscriptionOverride{Plan: models.PlanPro})
	require.NoError(t, err)
	assert.Equal(t, models.PlanPro, user.Plan)
	assert.Equal(t, models.ActionPlanOverride, e.records.Activity[0].Action)
}

func TestAlerts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	require.NoError(t, e.records.CreateAlert(ctx, &models.AdminAlert{ID: "a1", Severity: models.SeverityHigh}))

	require.NoError(t, e.svc.ResolveAlert(ctx, "a1"))
	assert.Equal(t, http.StatusNotFound, status(t, e.svc.ResolveAlert(ctx, "zzz")))

	alerts, err := e.svc.Alerts(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.True(t, alerts[0].Resolved)
}

func TestPaymentLogsAndExport(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.activeWorker(t, "w1")
	require.NoError(t, e.records.CreatePayment(ctx, &models.PaymentRecord{
		UserID: "w1", Gateway: models.GatewayStripe, Type: models.PaymentWorkerContactFee, Amount: 50, Status: "succeeded",
	}))

	logs, err := e.svc.PaymentLogs(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "w1@example.com", logs[0].UserEmail)

	data, err := e.svc.ExportPayments(ctx)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Pagos")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Usuario", rows[0][2])
	assert.Equal(t, "w1@example.com", rows[1][2])
}

func TestPurgeCase(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	require.NoError(t, e.contacts.Create(ctx, &models.ContactRequest{ID: "pending", WorkerID: "w1", Status: models.StatusPending}))
	require.NoError(t, e.contacts.Create(ctx, &models.ContactRequest{
		ID: "r1", WorkerID: "w1", Status: models.StatusAccepted, WorkerPaid: true, LawyerPaid: true, BothPaymentsSucceeded: true,
		Documents:         []models.Document{{Name: "recibo.pdf", Path: "requests/r1/doc_1_recibo.pdf"}},
		SettlementDocPath: "settlements/r1/convenio.jpg",
	}))
	require.NoError(t, e.store.Upload(ctx, "requests/r1/doc_1_recibo.pdf", "application/pdf", []byte("x")))
	require.NoError(t, e.cases.Create(ctx, &models.LegalCase{ID: "c1", UserID: "w1", Title: "Despido"}))

	assert.Equal(t, http.StatusNotFound, status(t, e.svc.PurgeCase(ctx, "admin", "", "missing")))
	assert.Equal(t, http.StatusBadRequest, status(t, e.svc.PurgeCase(ctx, "admin", "", "pending")))

	require.NoError(t, e.svc.PurgeCase(ctx, "admin", "10.0.0.1", "r1"))
	gone, _ := e.contacts.GetByID(ctx, "r1")
	assert.Nil(t, gone)
	remaining, _ := e.cases.ListByUser(ctx, "w1")
	assert.Empty(t, remaining)
	assert.False(t, e.store.Has("requests/r1/doc_1_recibo.pdf"))
	assert.Contains(t, e.store.Deleted, "settlements/r1/convenio.jpg")
	require.Len(t, e.records.Activity, 1)
	assert.Equal(t, models.ActionPurgeData, e.records.Activity[0].Action)
}

func TestVaultCompliance(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	profile := e.lawyers.SeedLawyer(e.users, "l1", models.PlanPro, true)
	require.NoError(t, e.lawyers.UpdateProfileFields(ctx, profile.ID, bson.M{"lifetimeCommissionSavings": 1500.0, "reputation": 40.0}))
	require.NoError(t, e.contacts.Create(ctx, &models.ContactRequest{ID: "won", LawyerProfileID: profile.ID, CRMStatus: models.CRMClosedWon}))
	require.NoError(t, e.contacts.Create(ctx, &models.ContactRequest{ID: "low", LawyerProfileID: profile.ID, CRMStatus: models.CRMClosedWon,
		SettlementDocStatus: models.SettlementUploaded, EstimatedSeverance: 100000, SettlementAmount: 10000}))
	require.NoError(t, e.contacts.Create(ctx, &models.ContactRequest{ID: "fine", CRMStatus: models.CRMClosedWon,
		SettlementDocStatus: models.SettlementUploaded, EstimatedSeverance: 100000, SettlementAmount: 90000}))
	require.NoError(t, e.vault.Create(ctx, &models.VaultFile{ID: "v1", UserID: "w1"}))
	require.NoError(t, e.vault.Create(ctx, &models.VaultFile{ID: "v2", UserID: "w1"}))

	report, err := e.svc.VaultCompliance(ctx)
	require.NoError(t, err)
	require.Len(t, report.Anomalies, 1)
	assert.Equal(t, "won", report.Anomalies[0].RequestID)
	assert.Equal(t, "Lic. l1", report.Anomalies[0].LawyerName)
	require.Len(t, report.SuspiciousDocs, 1)
	assert.Equal(t, "low", report.SuspiciousDocs[0].RequestID)
	require.Len(t, report.TopEarners, 1)
	assert.Equal(t, 1500.0, report.TopEarners[0].Savings)
	assert.EqualValues(t, 2, report.VaultFiles)
	assert.EqualValues(t, 1, report.VaultOwners)
}

func TestPromoConfig(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	cfg, err := e.svc.PromoConfig(ctx)
	require.NoError(t, err)
	assert.False(t, cfg.IsActive)
	assert.Equal(t, "¡Promoción Especial!", cfg.BannerText)

	require.NoError(t, e.svc.UpdatePromoConfig(ctx, models.PromoConfig{IsActive: true, LawyerTrialDays: 30, BannerText: "Primer mes gratis"}))
	cfg, err = e.svc.PromoConfig(ctx)
	require.NoError(t, err)
	assert.True(t, cfg.IsActive)
	assert.Equal(t, 30, cfg.LawyerTrialDays)
	assert.Equal(t, "Primer mes gratis", cfg.BannerText)
}

func TestLegalSectionsByRole(t *testing.T) {
	e := newEnv(t)
	assert.Len(t, e.svc.GetLegalSections(), 5)

	ids := func(sections []models.LegalSection) []string {
		var out []string
		for _, s := range sections {
			out = append(out, s.ID)
		}
		return out
	}
	assert.Contains(t, ids(e.svc.GetLegalSectionsFor(utils.RoleLawyer)), "lawyer-payments")
	assert.NotContains(t, ids(e.svc.GetLegalSectionsFor(utils.RoleLawyer)), "worker-payments")
	assert.Len(t, e.svc.GetLegalSectionsFor(utils.RoleAdmin), 3)
}
