package feeregistry

import (
	"context"
	"strings"
	"time"

	"github.com/turtacn/civil-general-applications/internal/domain/fee"
	"github.com/turtacn/civil-general-applications/internal/domain/generalapp"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/database/redis"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/monitoring/prometheus"
)

// CachedLookup serves register answers from Redis. Failed lookups are not
// cached, so a NoFeesReturned answer is asked again next time.
type CachedLookup struct {
	next    fee.Lookup
	cache   redis.Cache
	ttl     time.Duration
	metrics *prometheus.EngineMetrics
	logger  logging.Logger
}

var _ fee.Lookup = (*CachedLookup)(nil)

func NewCachedLookup(next fee.Lookup, cache redis.Cache, ttl time.Duration, metrics *prometheus.EngineMetrics, log logging.Logger) *CachedLookup {
	if metrics == nil {
		metrics = prometheus.NewNopEngineMetrics()
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &CachedLookup{next: next, cache: cache, ttl: ttl, metrics: metrics, logger: log.Named("fee-cache")}
}

// CacheKey is the Redis key suffix for one register query.
func CacheKey(req fee.Request) string {
	return strings.Join([]string{
		strings.ReplaceAll(req.Event, " ", "_"),
		req.Service,
		req.Keyword,
	}, ":")
}

func (c *CachedLookup) LookupFee(ctx context.Context, req fee.Request) (generalapp.Fee, error) {
	timer := prometheus.NewTimer(c.metrics.FeeLookupDuration.WithLabelValues(req.Keyword))
	defer timer.ObserveDuration()

	var f generalapp.Fee
	hit, err := c.cache.GetOrLoad(ctx, CacheKey(req), &f, c.ttl, func(ctx context.Context) (interface{}, error) {
		return c.next.LookupFee(ctx, req)
	})
	if err != nil {
		return generalapp.Fee{}, err
	}
	prometheus.RecordCacheAccess(c.metrics, "fee", hit)
	return f, nil
}

//Personal.AI order the ending
