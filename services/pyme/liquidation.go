package pyme

import (
	"math"
	"time"

	"aliadolaboral/models"
	"aliadolaboral/utils"
)

// Federal labor law constants used for terminations.
const (
	UMA               = 108.57
	AguinaldoDays     = 15
	VacationPrimeRate = 0.25
	SeniorityDays     = 12
	IndemnityDays     = 90
	// MinimumDailySalary prices employees registered without a salary.
	MinimumDailySalary = 248.93
)

const day = 24 * time.Hour

// VacationDays returns the yearly vacation entitlement after the given completed years.
func VacationDays(years int) int {
	if years < 5 {
		return 12 + 2*years
	}
	return 20 + (years-5)/5*2
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from) / day)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Liquidate prices a separation on end for an employee hired on start.
func Liquidate(dailySalary float64, start, end time.Time, isLayoff bool, vacationDaysTaken float64) models.LiquidationResult {
	totalDays := daysBetween(start, end)
	years := totalDays / 365
	seniorityYears := float64(totalDays) / 365

	yearStart := time.Date(end.Year(), time.January, 1, 0, 0, 0, 0, end.Location())
	aguinaldo := dailySalary * AguinaldoDays * float64(daysBetween(yearStart, end)+1) / 365

	entitled := VacationDays(years)
	sinceAnniversary := daysBetween(start.AddDate(years, 0, 0), end)
	vacations := float64(entitled) * dailySalary * float64(sinceAnniversary) / 365
	vacations = math.Max(0, vacations-vacationDaysTaken*dailySalary)
	prime := vacations * VacationPrimeRate

	seniority := math.Min(dailySalary, 2*UMA) * SeniorityDays * seniorityYears

	var indemnity float64
	if isLayoff {
		indemnity = dailySalary * IndemnityDays
	}

	return models.LiquidationResult{
		YearsWorked:        years,
		TotalDays:          totalDays,
		SeniorityYears:     round2(seniorityYears),
		VacationDaysEarned: entitled,
		Aguinaldo:          round2(aguinaldo),
		Vacations:          round2(vacations),
		VacationPremium:    round2(prime),
		SeniorityPremium:   round2(seniority),
		Indemnity:          round2(indemnity),
		Total:              round2(aguinaldo + vacations + prime + seniority + indemnity),
	}
}

func (s *DefaultPymeService) CalculateLiquidation(in models.LiquidationInput) (*models.LiquidationResult, error) {
	if in.DailySalary <= 0 {
		return nil, utils.BadRequest("Salario diario inválido")
	}
	if in.StartDate.IsZero() {
		return nil, utils.BadRequest("Fecha de ingreso requerida")
	}
	end := in.EndDate
	if end.IsZero() {
		end = s.now()
	}
	if end.Before(in.StartDate) {
		return nil, utils.BadRequest("La fecha de salida no puede ser anterior al ingreso")
	}
	if in.VacationDaysTaken < 0 {
		return nil, utils.BadRequest("Días de vacaciones inválidos")
	}
	res := Liquidate(in.DailySalary, in.StartDate, end, in.IsLayoff, in.VacationDaysTaken)
	return &res, nil
}
