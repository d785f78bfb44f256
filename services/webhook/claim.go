package webhook

import (
	"context"
	"fmt"

	"aliadolaboral/utils"

	"go.uber.org/zap"
)

func claimKey(provider, id string) string {
	return fmt.Sprintf("webhook:%s:%s", provider, id)
}

// process claims the event id and runs apply. A failed apply releases the claim so the
// provider's retry is processed again.
func (s *DefaultWebhookService) process(ctx context.Context, provider, id string, apply func() error) error {
	logger := utils.GetLogger().With(zap.String("provider", provider), zap.String("eventId", id))
	key := claimKey(provider, id)
	claimed, err := utils.ClaimOnce(ctx, s.Cache, key, ClaimTTL)
	if err != nil {
		return fmt.Errorf("failed to claim webhook event: %w", err)
	}
	if !claimed {
		logger.Info("duplicate webhook event ignored")
		return nil
	}
	if err := apply(); err != nil {
		if delErr := s.Cache.Del(ctx, key).Err(); delErr != nil {
			logger.Error("failed to release webhook claim", zap.Error(delErr))
		}
		return err
	}
	return nil
}
