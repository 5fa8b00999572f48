package traveltime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/outrigger999/rental-recon/models"
	"github.com/outrigger999/rental-recon/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// CachedService wraps a Service with a Redis-backed report cache. Cache
// failures degrade silently to a live computation.
type CachedService struct {
	Inner Service
	Cache *redis.Client
	TTL   time.Duration
}

// NewCachedService caches reports for 30 minutes, long enough to absorb
// repeated recalculations while a user is comparing properties.
func NewCachedService(inner Service, cache *redis.Client) *CachedService {
	return &CachedService{Inner: inner, Cache: cache, TTL: 30 * time.Minute}
}

func cacheKey(origin, destination string, useTuesday bool, dayOffset int) string {
	return fmt.Sprintf("traveltime:%s|%s|%t|%d", origin, destination, useTuesday, dayOffset)
}

func (s *CachedService) Estimate(ctx context.Context, origin, destination string, useTuesday bool, dayOffset int) (*models.TravelTimeReport, error) {
	key := cacheKey(origin, destination, useTuesday, dayOffset)

	if data, err := s.Cache.Get(ctx, key).Bytes(); err == nil {
		var report models.TravelTimeReport
		if err := json.Unmarshal(data, &report); err == nil {
			return &report, nil
		}
	}

	report, err := s.Inner.Estimate(ctx, origin, destination, useTuesday, dayOffset)
	if err != nil {
		return nil, err
	}

	// An all-absent report (failed geocoding) is not worth pinning for the
	// full TTL.
	if len(report.Estimates) > 0 {
		if data, err := json.Marshal(report); err == nil {
			if err := s.Cache.Set(ctx, key, data, s.TTL).Err(); err != nil {
				utils.GetLogger().Debug("Travel time cache write failed", zap.Error(err))
			}
		}
	}
	return report, nil
}
