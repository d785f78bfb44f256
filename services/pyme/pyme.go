package pyme

import (
	"context"
	"fmt"
	"strings"

	"aliadolaboral/models"
	"aliadolaboral/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

const (
	trialGraceDays = 30

	scoreIdentity    = 20
	scoreEmployees   = 20
	scoreRegulations = 30
	scoreContracts   = 30
)

func (s *DefaultPymeService) Profile(ctx context.Context, userID string) (*models.PymeProfile, error) {
	p, err := s.Profiles.GetPymeProfile(ctx, userID)
	if err != nil {
		return nil, utils.Internal("Error interno del servidor", err.Error())
	}
	if p == nil {
		return nil, utils.NotFound("Perfil Pyme no encontrado")
	}
	return p, nil
}

func (s *DefaultPymeService) UpdateProfile(ctx context.Context, userID string, in models.PymeProfileUpdate) (*models.PymeProfile, error) {
	p, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	fields := bson.M{}
	if in.RFC != nil {
		rfc := strings.ToUpper(strings.TrimSpace(*in.RFC))
		if rfc != "" && (len(rfc) < 12 || len(rfc) > 13) {
			return nil, utils.BadRequest("RFC inválido")
		}
		fields["rfc"] = rfc
	}
	if in.RazonSocial != nil {
		fields["razonSocial"] = strings.TrimSpace(*in.RazonSocial)
	}
	if in.Industry != nil {
		fields["industry"] = *in.Industry
	}
	if in.State != nil {
		fields["state"] = *in.State
	}
	if in.HasInternalRegulations != nil {
		fields["hasInternalRegulations"] = *in.HasInternalRegulations
	}
	if len(fields) == 0 {
		return p, nil
	}
	if err := s.Profiles.UpdatePymeProfile(ctx, p.ID, fields); err != nil {
		return nil, utils.Internal("Error al actualizar perfil", err.Error())
	}
	return s.Profile(ctx, userID)
}

func (s *DefaultPymeService) Employees(ctx context.Context, userID string) ([]models.Employee, error) {
	p, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p.Employees == nil {
		return []models.Employee{}, nil
	}
	return p.Employees, nil
}

func (s *DefaultPymeService) AddEmployee(ctx context.Context, userID string, in models.EmployeeInput) (*models.Employee, error) {
	p, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, utils.BadRequest("Nombre del empleado requerido")
	}
	if in.DailySalary < 0 {
		return nil, utils.BadRequest("Salario diario inválido")
	}
	contract := in.ContractType
	if contract == "" {
		contract = models.ContractIndefinite
	}
	if contract != models.ContractIndefinite && contract != models.ContractTrial {
		return nil, utils.BadRequest("Tipo de contrato inválido")
	}
	start := in.StartDate
	if start.IsZero() {
		start = s.now()
	}
	emp := models.Employee{
		ID:           uuid.New().String(),
		Name:         name,
		Position:     in.Position,
		DailySalary:  in.DailySalary,
		StartDate:    start,
		ContractType: contract,
		RFC:          strings.ToUpper(in.RFC),
		Active:       true,
	}
	if err := s.Profiles.AddEmployee(ctx, p.ID, emp); err != nil {
		return nil, utils.Internal("Error al agregar empleado", err.Error())
	}
	return &emp, nil
}

// Compliance scores the pyme out of 100 on four labor law checks.
func (s *DefaultPymeService) Compliance(ctx context.Context, userID string) (*models.ComplianceScore, error) {
	p, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	res := &models.ComplianceScore{Issues: []string{}}
	if p.RFC != "" && p.RazonSocial != "" {
		res.Score += scoreIdentity
	} else {
		res.Issues = append(res.Issues, "Registrar RFC y Razón Social")
	}
	if len(p.Employees) > 0 {
		res.Score += scoreEmployees
	} else {
		res.Issues = append(res.Issues, "Registrar al menos un empleado")
	}
	if p.HasInternalRegulations {
		res.Score += scoreRegulations
	} else {
		res.Issues = append(res.Issues, "Subir o generar Reglamento Interno")
	}

	now := s.now()
	overdue := 0
	for _, e := range p.Employees {
		if e.ContractType == models.ContractTrial && !e.IsRenewed && daysBetween(e.StartDate, now) > trialGraceDays {
			overdue++
		}
	}
	if overdue == 0 {
		res.Score += scoreContracts
	} else {
		res.Issues = append(res.Issues, fmt.Sprintf("Renovar %d contratos de prueba vencidos", overdue))
	}

	switch {
	case res.Score >= 80:
		res.Status, res.Label = "green", "Empresa Blindada"
	case res.Score >= 50:
		res.Status, res.Label = "yellow", "Riesgo Moderado"
	default:
		res.Status, res.Label = "red", "Alto Riesgo de Multa"
	}
	if res.Score != 100-p.RiskScore {
		if err := s.Profiles.UpdatePymeProfile(ctx, p.ID, bson.M{"riskScore": 100 - res.Score}); err != nil {
			utils.GetLogger().Warn("failed to store risk score", zap.String("pymeId", p.ID), zap.Error(err))
		}
	}
	return res, nil
}

// Liability prices laying off every active employee today.
func (s *DefaultPymeService) Liability(ctx context.Context, userID string) (*models.LiabilityReport, error) {
	p, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	report := &models.LiabilityReport{GeneratedAt: now, Items: []models.EmployeeLiability{}}
	var total float64
	for _, e := range p.Employees {
		if !e.Active {
			continue
		}
		salary := e.DailySalary
		if salary <= 0 {
			salary = MinimumDailySalary
		}
		r := Liquidate(salary, e.StartDate, now, true, 0)
		total += r.Total
		report.Items = append(report.Items, models.EmployeeLiability{
			EmployeeID:  e.ID,
			Name:        e.Name,
			Position:    e.Position,
			DailySalary: salary,
			Years:       r.YearsWorked,
			Liability:   r.Total,
			Breakdown:   r,
		})
	}
	report.Total = round2(total)
	report.EmployeeCount = len(report.Items)
	return report, nil
}

// ExportLiability renders the liability report as an XLSX workbook.
func (s *DefaultPymeService) ExportLiability(ctx context.Context, userID string) ([]byte, error) {
	report, err := s.Liability(ctx, userID)
	if err != nil {
		return nil, err
	}
	rows := make([][]interface{}, 0, len(report.Items)+1)
	for _, it := range report.Items {
		b := it.Breakdown
		rows = append(rows, []interface{}{
			it.Name, it.Position, b.SeniorityYears, it.DailySalary,
			b.Aguinaldo, b.Vacations, b.VacationPremium, b.SeniorityPremium, b.Indemnity, b.Total,
		})
	}
	rows = append(rows, []interface{}{"TOTAL", "", "", "", "", "", "", "", "", report.Total})
	data, err := utils.BuildSheet("Pasivo Laboral", []string{
		"Empleado", "Puesto", "Antigüedad (años)", "Salario Diario",
		"Aguinaldo", "Vacaciones", "Prima Vacacional", "Prima de Antigüedad", "Indemnización", "Total",
	}, rows)
	if err != nil {
		return nil, utils.Internal("Error al exportar pasivo laboral", err.Error())
	}
	return data, nil
}

const actSystemPrompt = "Eres un abogado laboral experto en México. Redactas documentos formales citando la Ley Federal del Trabajo."

func (s *DefaultPymeService) DraftAct(ctx context.Context, userID string, in models.ActRequest) (*models.AdministrativeAct, error) {
	p, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Incident) == "" {
		return nil, utils.BadRequest("Describe el incidente")
	}
	var emp *models.Employee
	for i := range p.Employees {
		if p.Employees[i].ID == in.EmployeeID {
			emp = &p.Employees[i]
			break
		}
	}
	if emp == nil {
		return nil, utils.NotFound("Empleado no encontrado")
	}
	company := p.RazonSocial
	if company == "" {
		company = "La Empresa"
	}
	rfc := emp.RFC
	if rfc == "" {
		rfc = "N/A"
	}
	date := in.Date
	if date == "" {
		date = s.now().Format("2006-01-02")
	}

	if s.AI == nil {
		return &models.AdministrativeAct{Draft: true, Content: fmt.Sprintf(
			"# Acta Administrativa\n\n**Empresa:** %s\n\n**Empleado:** %s\n\n**Fecha:** %s\n\n**Hechos:** %s\n",
			company, emp.Name, date, in.Incident)}, nil
	}

	prompt := fmt.Sprintf(`Redacta un "Acta Administrativa" formal.

Datos:
- Empresa: %s
- Empleado: %s (RFC: %s)
- Fecha del incidente: %s
- Descripción de los hechos: "%s"

Instrucciones:
- Cita los artículos de la Ley Federal del Trabajo aplicables.
- Usa lenguaje legal formal, firme pero respetuoso.
- Estructura: Lugar y Fecha, Comparecientes, Declaración de Hechos, Fundamento Legal, Cierre y Firmas.
- Devuelve el resultado en MARKDOWN limpio. No uses HTML.`, company, emp.Name, rfc, date, in.Incident)

	content, err := s.AI.Complete(ctx, actSystemPrompt, prompt, true)
	if err != nil {
		utils.GetLogger().Error("failed to draft administrative act", zap.String("pymeId", p.ID), zap.Error(err))
		return nil, utils.Internal("Error al generar el acta", err.Error())
	}
	return &models.AdministrativeAct{Content: content}, nil
}
