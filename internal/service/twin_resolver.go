package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/twin-workflow-service/internal/client"
	"github.com/spec-kit/twin-workflow-service/internal/persistence"
)

// TwinResolver batch-resolves legacy unique ids to twin ids through the
// digital-twin service, with a short-TTL cache in front. A unique id with no
// match is absent from the result; a transport failure is an error, never an
// empty result.
type TwinResolver struct {
	twins  client.DigitalTwinClient
	cache  persistence.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewTwinResolver constructs the resolver. cache may be nil.
func NewTwinResolver(twins client.DigitalTwinClient, cache persistence.Cache, ttl time.Duration, logger *zap.Logger) *TwinResolver {
	return &TwinResolver{twins: twins, cache: cache, ttl: ttl, logger: logger}
}

// Resolve maps uniqueIDs to twin ids for the site. Callers batch the ids of
// a whole operation into a single call; at most one collaborator request is
// made per invocation.
func (r *TwinResolver) Resolve(ctx context.Context, siteID string, uniqueIDs []string) (map[string]string, error) {
	resolved := make(map[string]string, len(uniqueIDs))

	var misses []string
	seen := make(map[string]bool, len(uniqueIDs))
	for _, uniqueID := range uniqueIDs {
		if uniqueID == "" || seen[uniqueID] {
			continue
		}
		seen[uniqueID] = true
		if twinID, ok := r.fromCache(ctx, siteID, uniqueID); ok {
			resolved[uniqueID] = twinID
			continue
		}
		misses = append(misses, uniqueID)
	}
	if len(misses) == 0 {
		return resolved, nil
	}

	twins, err := r.twins.GetTwinsByUniqueIDs(ctx, siteID, misses)
	if err != nil {
		return nil, err
	}
	for _, twin := range twins {
		if twin.ID == "" {
			continue
		}
		resolved[twin.UniqueID] = twin.ID
		r.toCache(ctx, siteID, twin.UniqueID, twin.ID)
	}
	return resolved, nil
}

func (r *TwinResolver) fromCache(ctx context.Context, siteID, uniqueID string) (string, bool) {
	if r.cache == nil {
		return "", false
	}
	val, ok, err := r.cache.Get(ctx, twinCacheKey(siteID, uniqueID))
	if err != nil {
		r.logger.Debug("twin cache read failed", zap.Error(err))
		return "", false
	}
	return val, ok
}

func (r *TwinResolver) toCache(ctx context.Context, siteID, uniqueID, twinID string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Set(ctx, twinCacheKey(siteID, uniqueID), twinID, r.ttl); err != nil {
		r.logger.Debug("twin cache write failed", zap.Error(err))
	}
}

func twinCacheKey(siteID, uniqueID string) string {
	return fmt.Sprintf("twin:%s:%s", siteID, uniqueID)
}
