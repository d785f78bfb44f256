package news

import (
	"context"
	"encoding/json"

	"aliadolaboral/models"
	"aliadolaboral/utils"

	"go.uber.org/zap"
)

const feedCachePrefix = "news:feed:"

var cachedRoles = []string{utils.RoleWorker, utils.RoleLawyer, utils.RolePyme, utils.RoleAdmin}

func (s *DefaultNewsService) cachedFeed(ctx context.Context, role string) ([]models.NewsFeedItem, bool) {
	if s.Cache == nil {
		return nil, false
	}
	raw, err := s.Cache.Get(ctx, feedCachePrefix+role).Bytes()
	if err != nil {
		return nil, false
	}
	var items []models.NewsFeedItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}

func (s *DefaultNewsService) storeFeed(ctx context.Context, role string, items []models.NewsFeedItem) {
	if s.Cache == nil {
		return
	}
	data, err := json.Marshal(items)
	if err != nil {
		return
	}
	if err := s.Cache.Set(ctx, feedCachePrefix+role, data, feedCacheTTL).Err(); err != nil {
		utils.GetLogger().Warn("failed to cache news feed", zap.String("role", role), zap.Error(err))
	}
}

func (s *DefaultNewsService) invalidateFeed(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	keys := make([]string, 0, len(cachedRoles))
	for _, r := range cachedRoles {
		keys = append(keys, feedCachePrefix+r)
	}
	if err := s.Cache.Del(ctx, keys...).Err(); err != nil {
		utils.GetLogger().Warn("failed to invalidate news feed", zap.Error(err))
	}
}
