package ocr

import (
	"math"
	"strings"

	"aliadolaboral/models"
)

// Success fee rates by plan and how the case ended.
const (
	ProConciliationRate   = 0.07
	ProTrialRate          = 0.05
	BasicConciliationRate = 0.10
	BasicTrialRate        = 0.08
)

// CommissionRate picks the success fee for a resolution type. Anything but a trial counts as conciliation.
func CommissionRate(isPro bool, resolutionType string) float64 {
	trial := strings.EqualFold(resolutionType, models.ResolutionTrial)
	switch {
	case isPro && trial:
		return ProTrialRate
	case isPro:
		return ProConciliationRate
	case trial:
		return BasicTrialRate
	default:
		return BasicConciliationRate
	}
}

// Commission applies rate to amount, rounded to cents.
func Commission(amount, rate float64) float64 {
	return math.Round(amount*rate*100) / 100
}

// ProSavings is what a pro lawyer saved against the basic rate on the same settlement.
func ProSavings(amount float64, resolutionType string) float64 {
	saved := CommissionRate(false, resolutionType) - CommissionRate(true, resolutionType)
	return Commission(amount, saved)
}
