package pyme

import (
	"bytes"
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
	"github.com/xuri/excelize/v2"
)

type stubDrafter struct {
	prompt string
	smart  bool
	err    error
}

func (d *stubDrafter) Complete(ctx context.Context, system, prompt string, smart bool) (string, error) {
	d.prompt, d.smart = prompt, smart
	if d.err != nil {
		return "", d.err
	}
	return "# ACTA ADMINISTRATIVA", nil
}

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T, drafter Drafter) (*DefaultPymeService, *repotest.Profiles) {
	t.Helper()
	profiles := repotest.NewProfiles()
	require.NoError(t, profiles.CreatePymeProfile(context.Background(), &models.PymeProfile{ID: "pp1", UserID: "p1", RiskScore: 50}))
	svc := NewDefaultPymeService(profiles, drafter, storagetest.NewMemory())
	svc.Now = func() time.Time { return now }
	return svc, profiles
}

func status(t *testing.T, err error) int {
	t.Helper()
	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	return appErr.Status
}

func TestVacationDays(t *testing.T) {
	for years, want := range map[int]int{0: 12, 1: 14, 2: 16, 3: 18, 4: 20, 5: 20, 9: 20, 10: 22, 15: 24} {
		assert.Equal(t, want, VacationDays(years), "years=%d", years)
	}
}

func TestLiquidateLayoff(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := Liquidate(500, start, end, true, 0)

	assert.Equal(t, 731, r.TotalDays)
	assert.Equal(t, 2, r.YearsWorked)
	assert.Equal(t, 16, r.VacationDaysEarned)
	assert.InDelta(t, 20.55, r.Aguinaldo, 0.001)
	assert.Zero(t, r.Vacations)
	assert.InDelta(t, 5218.50, r.SeniorityPremium, 0.001, "salary capped at twice the UMA")
	assert.InDelta(t, 45000, r.Indemnity, 0.001)
	assert.InDelta(t, 50239.05, r.Total, 0.01)
}

func TestLiquidateResignation(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	r := Liquidate(300, start, end, false, 2)

	assert.Equal(t, 181, r.TotalDays)
	assert.InDelta(t, 2243.84, r.Aguinaldo, 0.001)
	assert.InDelta(t, 1185.21, r.Vacations, 0.001)
	assert.InDelta(t, 296.30, r.VacationPremium, 0.001)
	assert.InDelta(t, 1292.13, r.SeniorityPremium, 0.001)
	assert.Zero(t, r.Indemnity)
	assert.InDelta(t, 5017.47, r.Total, 0.01)
}

func TestCalculateLiquidationValidates(t *testing.T) {
	svc, _ := newService(t, nil)
	_, err := svc.CalculateLiquidation(models.LiquidationInput{DailySalary: 0, StartDate: now})
	assert.Equal(t, http.StatusBadRequest, status(t, err))

	_, err = svc.CalculateLiquidation(models.LiquidationInput{DailySalary: 300, StartDate: now, EndDate: now.AddDate(0, 0, -1)})
	assert.Equal(t, http.StatusBadRequest, status(t, err))

	r, err := svc.CalculateLiquidation(models.LiquidationInput{DailySalary: 300, StartDate: now.AddDate(-1, 0, 0)})
	require.NoError(t, err)
	assert.Equal(t, 1, r.YearsWorked, "end date defaults to today")
}

func TestProfileAndEmployees(t *testing.T) {
	svc, _ := newService(t, nil)
	ctx := context.Background()

	_, err := svc.Profile(ctx, "nobody")
	assert.Equal(t, http.StatusNotFound, status(t, err))

	rfc, name := "abc123456xy1", "Tacos El Güero SA de CV"
	p, err := svc.UpdateProfile(ctx, "p1", models.PymeProfileUpdate{RFC: &rfc, RazonSocial: &name})
	require.NoError(t, err)
	assert.Equal(t, "ABC123456XY1", p.RFC)
	assert.Equal(t, name, p.RazonSocial)

	bad := "X1"
	_, err = svc.UpdateProfile(ctx, "p1", models.PymeProfileUpdate{RFC: &bad})
	assert.Equal(t, http.StatusBadRequest, status(t, err))

	emps, err := svc.Employees(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, emps)

	_, err = svc.AddEmployee(ctx, "p1", models.EmployeeInput{Name: " "})
	assert.Equal(t, http.StatusBadRequest, status(t, err))
	_, err = svc.AddEmployee(ctx, "p1", models.EmployeeInput{Name: "Ana", ContractType: "freelance"})
	assert.Equal(t, http.StatusBadRequest, status(t, err))

	emp, err := svc.AddEmployee(ctx, "p1", models.EmployeeInput{Name: "Ana", Position: "Cocinera", DailySalary: 400})
	require.NoError(t, err)
	assert.Equal(t, models.ContractIndefinite, emp.ContractType)
	assert.True(t, emp.Active)

	emps, err = svc.Employees(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, emps, 1)
	assert.Equal(t, "Ana", emps[0].Name)
}

func TestComplianceLevels(t *testing.T) {
	svc, profiles := newService(t, nil)
	ctx := context.Background()

	c, err := svc.Compliance(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 30, c.Score)
	assert.Equal(t, "red", c.Status)
	assert.Equal(t, "Alto Riesgo de Multa", c.Label)
	assert.Len(t, c.Issues, 3)

	_, err = svc.AddEmployee(ctx, "p1", models.EmployeeInput{Name: "Luis", ContractType: models.ContractTrial, StartDate: now.AddDate(0, -2, 0)})
	require.NoError(t, err)
	rfc, name, regs := "ABC123456XY1", "Empresa", true
	_, err = svc.UpdateProfile(ctx, "p1", models.PymeProfileUpdate{RFC: &rfc, RazonSocial: &name})
	require.NoError(t, err)

	c, err = svc.Compliance(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 40, c.Score)
	assert.Contains(t, c.Issues, "Renovar 1 contratos de prueba vencidos")

	_, err = svc.UpdateProfile(ctx, "p1", models.PymeProfileUpdate{HasInternalRegulations: &regs})
	require.NoError(t, err)
	c, err = svc.Compliance(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 70, c.Score)
	assert.Equal(t, "yellow", c.Status)
	assert.Equal(t, "Riesgo Moderado", c.Label)

	_, err = svc.AddEmployee(ctx, "p2", models.EmployeeInput{Name: "x"})
	assert.Error(t, err)

	stored, _ := profiles.GetPymeProfile(ctx, "p1")
	assert.Equal(t, 30, stored.RiskScore)
}

func TestComplianceGreenWithRecentTrial(t *testing.T) {
	svc, _ := newService(t, nil)
	ctx := context.Background()
	rfc, name, regs := "ABC123456XY1", "Empresa", true
	_, err := svc.UpdateProfile(ctx, "p1", models.PymeProfileUpdate{RFC: &rfc, RazonSocial: &name, HasInternalRegulations: &regs})
	require.NoError(t, err)
	_, err = svc.AddEmployee(ctx, "p1", models.EmployeeInput{Name: "Luis", ContractType: models.ContractTrial, StartDate: now.AddDate(0, 0, -10)})
	require.NoError(t, err)

	c, err := svc.Compliance(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 100, c.Score)
	assert.Equal(t, "green", c.Status)
	assert.Equal(t, "Empresa Blindada", c.Label)
	assert.Empty(t, c.Issues)
}

func TestLiabilityAndExport(t *testing.T) {
	svc, _ := newService(t, nil)
	ctx := context.Background()
	_, err := svc.AddEmployee(ctx, "p1", models.EmployeeInput{Name: "Ana", Position: "Cocinera", DailySalary: 400, StartDate: now.AddDate(-3, 0, 0)})
	require.NoError(t, err)
	_, err = svc.AddEmployee(ctx, "p1", models.EmployeeInput{Name: "Beto", StartDate: now.AddDate(-1, 0, 0)})
	require.NoError(t, err)

	report, err := svc.Liability(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 2, report.EmployeeCount)
	assert.Equal(t, 3, report.Items[0].Years)
	assert.InDelta(t, 400*IndemnityDays, report.Items[0].Breakdown.Indemnity, 0.001)
	assert.Equal(t, MinimumDailySalary, report.Items[1].DailySalary)
	assert.InDelta(t, report.Items[0].Liability+report.Items[1].Liability, report.Total, 0.02)

	data, err := svc.ExportLiability(ctx, "p1")
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Pasivo Laboral")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Empleado", rows[0][0])
	assert.Equal(t, "Ana", rows[1][0])
	assert.Equal(t, "TOTAL", rows[3][0])
}

func TestDraftAct(t *testing.T) {
	drafter := &stubDrafter{}
	svc, _ := newService(t, drafter)
	ctx := context.Background()
	emp, err := svc.AddEmployee(ctx, "p1", models.EmployeeInput{Name: "Ana", RFC: "anar900101abc"})
	require.NoError(t, err)

	_, err = svc.DraftAct(ctx, "p1", models.ActRequest{EmployeeID: "missing", Incident: "Faltas"})
	assert.Equal(t, http.StatusNotFound, status(t, err))
	_, err = svc.DraftAct(ctx, "p1", models.ActRequest{EmployeeID: emp.ID})
	assert.Equal(t, http.StatusBadRequest, status(t, err))

	act, err := svc.DraftAct(ctx, "p1", models.ActRequest{EmployeeID: emp.ID, Incident: "Tres faltas injustificadas", Date: "2026-02-20"})
	require.NoError(t, err)
	assert.Equal(t, "# ACTA ADMINISTRATIVA", act.Content)
	assert.False(t, act.Draft)
	assert.True(t, drafter.smart)
	assert.Contains(t, drafter.prompt, "La Empresa")
	assert.Contains(t, drafter.prompt, "ANAR900101ABC")
	assert.Contains(t, drafter.prompt, "Tres faltas injustificadas")

	drafter.err = errors.New("groq down")
	_, err = svc.DraftAct(ctx, "p1", models.ActRequest{EmployeeID: emp.ID, Incident: "x"})
	assert.Equal(t, http.StatusInternalServerError, status(t, err))
}

func TestDraftActWithoutModel(t *testing.T) {
	svc, _ := newService(t, nil)
	ctx := context.Background()
	emp, err := svc.AddEmployee(ctx, "p1", models.EmployeeInput{Name: "Ana"})
	require.NoError(t, err)
	act, err := svc.DraftAct(ctx, "p1", models.ActRequest{EmployeeID: emp.ID, Incident: "Retardos"})
	require.NoError(t, err)
	assert.True(t, act.Draft)
	assert.Contains(t, act.Content, "Ana")
}
