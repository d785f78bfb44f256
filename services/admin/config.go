package admin

import (
	"context"
	"fmt"
	"strconv"

	"aliadolaboral/models"
)

var promoKeys = []string{models.ConfigPromoActive, models.ConfigPromoTrialDays, models.ConfigPromoBanner}

// PromoConfig reads the public promotion settings, falling back to defaults for missing keys.
func (s *DefaultAdminService) PromoConfig(ctx context.Context) (*models.PromoConfig, error) {
	values, err := s.Records.GetConfig(ctx, promoKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to read system config: %w", err)
	}
	days, _ := strconv.Atoi(values[models.ConfigPromoTrialDays])
	banner := values[models.ConfigPromoBanner]
	if banner == "" {
		banner = defaultBanner
	}
	return &models.PromoConfig{
		IsActive:        values[models.ConfigPromoActive] == "true",
		LawyerTrialDays: days,
		BannerText:      banner,
	}, nil
}

func (s *DefaultAdminService) UpdatePromoConfig(ctx context.Context, in models.PromoConfig) error {
	values := map[string]string{
		models.ConfigPromoActive:    strconv.FormatBool(in.IsActive),
		models.ConfigPromoTrialDays: strconv.Itoa(in.LawyerTrialDays),
		models.ConfigPromoBanner:    in.BannerText,
	}
	for _, key := range promoKeys {
		if err := s.Records.SetConfig(ctx, key, values[key]); err != nil {
			return fmt.Errorf("failed to save %s: %w", key, err)
		}
	}
	return nil
}
