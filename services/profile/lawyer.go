package profile

import (
	"context"
	"fmt"
	"strings"

	"aliadolaboral/models"
	"aliadolaboral/services/ocr"
	"aliadolaboral/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func (s *DefaultProfileService) ListLawyers(ctx context.Context, f models.LawyerDirectoryFilter) ([]models.PublicLawyer, error) {
	filter := bson.M{}
	if f.Specialty != "" {
		filter["specialties"] = f.Specialty
	}
	if f.State != "" {
		filter["$or"] = bson.A{
			bson.M{"nationalScope": true},
			bson.M{"availableStates": f.State},
		}
	}
	if ct := strings.ToLower(f.CaseType); ct == "federal" || ct == "local" {
		filter["caseTypes"] = ct
	}
	profiles, err := s.Lawyers.ListProfiles(ctx, filter)
	if err != nil {
		return nil, utils.Internal("Error al obtener abogados", err.Error())
	}

	now := s.now()
	out := make([]models.PublicLawyer, 0, len(profiles))
	for _, p := range profiles {
		lawyer, err := s.Lawyers.GetLawyerByID(ctx, p.LawyerID)
		if err != nil {
			return nil, fmt.Errorf("failed to load lawyer: %w", err)
		}
		if lawyer == nil || !lawyer.IsVerified || lawyer.Status == models.LawyerSuspended {
			continue
		}
		sub, err := s.Lawyers.GetSubscriptionByLawyerID(ctx, p.LawyerID)
		if err != nil {
			return nil, fmt.Errorf("failed to load subscription: %w", err)
		}
		if !sub.IsActive(now) {
			continue
		}
		won, err := s.wonCases(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, toPublic(p, sub.Plan, won))
	}
	return out, nil
}

func (s *DefaultProfileService) PublicProfile(ctx context.Context, profileID string) (*models.PublicLawyer, error) {
	p, err := s.Lawyers.GetProfileByID(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if p == nil {
		return nil, utils.NotFound("Perfil no encontrado")
	}
	sub, err := s.Lawyers.GetSubscriptionByLawyerID(ctx, p.LawyerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	if !sub.IsActive(s.now()) {
		return nil, utils.NotFound("Este abogado no está disponible actualmente")
	}
	if err := s.Lawyers.IncrementProfile(ctx, p.ID, bson.M{"profileViews": 1}); err != nil {
		utils.GetLogger().Warn("failed to count profile view", zap.String("profileId", p.ID), zap.Error(err))
	} else {
		p.ProfileViews++
	}
	won, err := s.wonCases(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	view := toPublic(*p, sub.Plan, won)
	return &view, nil
}

// wonCases returns anonymised summaries of the lawyer's latest won cases.
func (s *DefaultProfileService) wonCases(ctx context.Context, profileID string) ([]models.CaseSummary, error) {
	reqs, err := s.Contacts.List(ctx, bson.M{"lawyerProfileId": profileID, "crmStatus": models.CRMClosedWon}, wonCasesShown)
	if err != nil {
		return nil, fmt.Errorf("failed to list won cases: %w", err)
	}
	out := make([]models.CaseSummary, 0, len(reqs))
	for _, r := range reqs {
		summary := r.AISummary
		if summary == "" {
			summary = fmt.Sprintf("Caso de %s resuelto a favor del trabajador", r.CaseType)
		}
		c := models.CaseSummary{CaseType: r.CaseType, Summary: summary, ClosedAt: r.UpdatedAt}
		if r.ClosedAt != nil {
			c.ClosedAt = *r.ClosedAt
		}
		out = append(out, c)
	}
	return out, nil
}

func toPublic(p models.LawyerProfile, plan string, won []models.CaseSummary) models.PublicLawyer {
	return models.PublicLawyer{
		ProfileID:       p.ID,
		DisplayName:     p.DisplayName,
		Bio:             p.Bio,
		PhotoURL:        p.PhotoURL,
		Specialties:     p.Specialties,
		NationalScope:   p.NationalScope,
		AvailableStates: p.AvailableStates,
		CaseTypes:       p.CaseTypes,
		Reputation:      p.Reputation,
		SuccessfulCases: p.SuccessfulCases,
		ProfileViews:    p.ProfileViews,
		Plan:            plan,
		WonCases:        won,
	}
}

func (s *DefaultProfileService) lawyerRecords(ctx context.Context, userID string) (*models.Lawyer, *models.LawyerProfile, error) {
	lawyer, err := s.Lawyers.GetLawyerByUserID(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load lawyer: %w", err)
	}
	if lawyer == nil {
		return nil, nil, utils.NotFound("Perfil de abogado no encontrado")
	}
	profile, err := s.Lawyers.GetProfileByLawyerID(ctx, lawyer.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return lawyer, profile, nil
}

func (s *DefaultProfileService) MyLawyerProfile(ctx context.Context, userID string) (*models.LawyerAccount, error) {
	lawyer, profile, err := s.lawyerRecords(ctx, userID)
	if err != nil {
		return nil, err
	}
	sub, err := s.Lawyers.GetSubscriptionByLawyerID(ctx, lawyer.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	account := &models.LawyerAccount{Lawyer: lawyer, Profile: profile, Subscription: sub}
	if user, err := s.Users.GetByID(ctx, userID); err == nil && user != nil {
		account.FullName, account.Email, account.Phone = user.FullName, user.Email, user.Phone
	}
	return account, nil
}

func (s *DefaultProfileService) UpdateLawyerProfile(ctx context.Context, userID string, in models.LawyerProfileUpdate, photo, cedula *models.UploadedFile) (*models.ProfileUpdateResult, error) {
	logger := utils.GetLogger()
	lawyer, profile, err := s.lawyerRecords(ctx, userID)
	if err != nil {
		return nil, err
	}

	fields := bson.M{}
	if in.DisplayName != nil {
		fields["displayName"] = strings.TrimSpace(*in.DisplayName)
	}
	if in.Bio != nil {
		fields["bio"] = *in.Bio
	}
	if in.Specialties != nil {
		fields["specialties"] = in.Specialties
	}
	if in.NationalScope != nil {
		fields["nationalScope"] = *in.NationalScope
	}
	if in.AvailableStates != nil {
		fields["availableStates"] = in.AvailableStates
	}
	if in.CaseTypes != nil {
		fields["caseTypes"] = in.CaseTypes
	}
	if in.Schedule != nil {
		if !validClock(in.Schedule.Start) || !validClock(in.Schedule.End) {
			return nil, utils.BadRequest("Horario inválido, usa el formato HH:mm")
		}
		fields["schedule"] = in.Schedule
	}
	if photo != nil && s.Images != nil {
		url, err := s.Images.UploadImage(ctx, photo.Data, photoFolder)
		if err != nil {
			logger.Error("failed to upload profile photo", zap.String("lawyerId", lawyer.ID), zap.Error(err))
		} else {
			fields["photoUrl"] = url
		}
	}

	result := &models.ProfileUpdateResult{Message: "Perfil actualizado"}
	if cedula != nil && !lawyer.IsVerified {
		result.AutoVerified = s.verifyCedula(ctx, lawyer, cedula)
	}

	if len(fields) > 0 {
		if err := s.Lawyers.UpdateProfileFields(ctx, profile.ID, fields); err != nil {
			return nil, utils.Internal("Error al actualizar perfil", err.Error())
		}
		if name, ok := fields["displayName"].(string); ok && name != "" {
			if err := s.Users.UpdateFields(ctx, userID, bson.M{"fullName": name}); err != nil {
				logger.Warn("failed to sync user name", zap.String("userId", userID), zap.Error(err))
			}
		}
	}
	if result.Profile, err = s.Lawyers.GetProfileByID(ctx, profile.ID); err != nil {
		return nil, err
	}
	return result, nil
}

// verifyCedula reads the license photo and verifies the lawyer when the number matches their record.
func (s *DefaultProfileService) verifyCedula(ctx context.Context, lawyer *models.Lawyer, file *models.UploadedFile) bool {
	logger := utils.GetLogger()
	if s.OCR == nil || !ocr.IsImage(file.ContentType) {
		return false
	}
	text, err := s.OCR.ExtractText(ctx, file.ContentType, file.Data)
	if err != nil {
		logger.Warn("cedula OCR failed", zap.String("lawyerId", lawyer.ID), zap.Error(err))
		return false
	}
	if !ocr.MatchesCedula(text, lawyer.LicenseNumber) {
		logger.Info("cedula mismatch", zap.String("lawyerId", lawyer.ID), zap.Strings("read", ocr.ExtractCedulas(text)))
		return false
	}
	if err := s.Lawyers.UpdateLawyerFields(ctx, lawyer.ID, bson.M{"isVerified": true, "verifiedAt": s.now()}); err != nil {
		logger.Error("failed to auto-verify lawyer", zap.String("lawyerId", lawyer.ID), zap.Error(err))
		return false
	}
	logger.Info("lawyer auto-verified from cedula", zap.String("lawyerId", lawyer.ID))
	return true
}

func validClock(v string) bool {
	var h, m int
	if len(v) != 5 {
		return false
	}
	if _, err := fmt.Sscanf(v, "%02d:%02d", &h, &m); err != nil {
		return false
	}
	return h >= 0 && h < 24 && m >= 0 && m < 60
}

func (s *DefaultProfileService) LawyerMetrics(ctx context.Context, userID string) (*models.LawyerMetrics, error) {
	lawyer, profile, err := s.lawyerRecords(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, utils.NotFound("Perfil no encontrado")
	}
	count := func(extra bson.M) (int64, error) {
		filter := bson.M{"lawyerProfileId": profile.ID}
		for k, v := range extra {
			filter[k] = v
		}
		return s.Contacts.Count(ctx, filter)
	}
	m := &models.LawyerMetrics{
		Reputation:                profile.Reputation,
		SuccessfulCases:           profile.SuccessfulCases,
		ProfileViews:              profile.ProfileViews,
		LifetimeCommissionSavings: profile.LifetimeCommissionSavings,
		Strikes:                   lawyer.Strikes,
	}
	counters := []struct {
		dst    *int64
		filter bson.M
	}{
		{&m.TotalRequests, nil},
		{&m.PendingRequests, bson.M{"status": models.StatusPending}},
		{&m.AcceptedRequests, bson.M{"status": models.StatusAccepted}},
		{&m.RejectedRequests, bson.M{"status": models.StatusRejected}},
		{&m.RequestsThisMonth, bson.M{"createdAt": bson.M{"$gt": s.now().AddDate(0, -1, 0)}}},
	}
	for _, c := range counters {
		if *c.dst, err = count(c.filter); err != nil {
			return nil, fmt.Errorf("failed to count requests: %w", err)
		}
	}
	return m, nil
}
