package profile

import (
	"context"
	"fmt"
	"math"
	"strings"

	"aliadolaboral/models"
	"aliadolaboral/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func (s *DefaultProfileService) WorkerProfile(ctx context.Context, userID string) (*models.WorkerProfileView, error) {
	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, utils.NotFound("Usuario no encontrado")
	}
	profile, err := s.Profiles.GetWorkerProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load worker profile: %w", err)
	}
	view := &models.WorkerProfileView{FullName: user.FullName}
	if profile != nil {
		view.WorkerProfile = *profile
	} else {
		view.UserID = userID
	}
	return view, nil
}

func (s *DefaultProfileService) UpsertWorkerProfile(ctx context.Context, userID string, in models.WorkerProfileInput) (*models.WorkerProfileView, error) {
	if in.MonthlySalary < 0 || in.YearsOfService < 0 {
		return nil, utils.BadRequest("Salario y antigüedad no pueden ser negativos")
	}
	if in.FullName != nil {
		name := strings.TrimSpace(*in.FullName)
		if name == "" {
			return nil, utils.BadRequest("El nombre no puede estar vacío")
		}
		if err := s.Users.UpdateFields(ctx, userID, bson.M{"fullName": name}); err != nil {
			return nil, utils.Internal("Error al actualizar perfil", err.Error())
		}
	}
	existing, err := s.Profiles.GetWorkerProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load worker profile: %w", err)
	}
	profile := &models.WorkerProfile{
		ID:             uuid.New().String(),
		UserID:         userID,
		Occupation:     strings.TrimSpace(in.Occupation),
		Industry:       in.Industry,
		State:          in.State,
		EmployerName:   in.EmployerName,
		MonthlySalary:  in.MonthlySalary,
		YearsOfService: in.YearsOfService,
	}
	if existing != nil {
		profile.ID = existing.ID
	}
	if err := s.Profiles.UpsertWorkerProfile(ctx, profile); err != nil {
		return nil, utils.Internal("Error al actualizar perfil", err.Error())
	}
	return s.WorkerProfile(ctx, userID)
}

// SalaryBenchmark compares the worker's salary with others in the same occupation.
// With fewer than three peers it falls back to an estimate around the worker's own salary.
func (s *DefaultProfileService) SalaryBenchmark(ctx context.Context, userID string) (*models.SalaryBenchmark, error) {
	profile, err := s.Profiles.GetWorkerProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load worker profile: %w", err)
	}
	if profile == nil || profile.Occupation == "" {
		return nil, utils.BadRequest("Completa tu perfil laboral para comparar tu salario")
	}
	peers, err := s.Profiles.ListPeerSalaries(ctx, profile.Occupation, userID)
	if err != nil {
		return nil, utils.Internal("Error al calcular comparativa", err.Error())
	}

	b := &models.SalaryBenchmark{MySalary: profile.MonthlySalary, SampleSize: len(peers)}
	if len(peers) < minBenchmarkPeer {
		base := profile.MonthlySalary
		if base <= 0 {
			base = defaultMarketSalary
		}
		b.MarketAverage = base
		b.IsEstimate = true
		utils.GetLogger().Debug("salary benchmark estimated",
			zap.String("occupation", profile.Occupation), zap.Int("peers", len(peers)))
	} else {
		var sum float64
		for _, v := range peers {
			sum += v
		}
		b.MarketAverage = sum / float64(len(peers))
	}
	b.MarketAverage = math.Round(b.MarketAverage*100) / 100

	switch {
	case b.MySalary > b.MarketAverage*1.1:
		b.Percentile = "high"
	case b.MySalary < b.MarketAverage*0.9:
		b.Percentile = "low"
	default:
		b.Percentile = "average"
	}
	if b.MarketAverage > 0 {
		b.Difference = math.Round((b.MySalary-b.MarketAverage)/b.MarketAverage*1000) / 10
	}
	return b, nil
}
