package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/parcelwatch/parcel-tracker/internal/api/metrics"
	"github.com/parcelwatch/parcel-tracker/internal/core/domain"
	"github.com/parcelwatch/parcel-tracker/internal/core/ports"
)

// defaultUUIDTTL matches the upstream session lifetime observed in practice.
// The threshold is configurable because it is not a documented contract.
const defaultUUIDTTL = 30 * time.Minute

// UUIDCache hands out session uuids for tracking ids, re-resolving through
// the API client when the cached one is older than the staleness threshold.
type UUIDCache struct {
	store ports.UUIDStore
	api   ports.TrackingAPI
	ttl   time.Duration
	log   zerolog.Logger
	now   func() time.Time
}

// NewUUIDCache builds a cache over the given store and API client. A
// non-positive ttl falls back to defaultUUIDTTL.
func NewUUIDCache(store ports.UUIDStore, api ports.TrackingAPI, ttl time.Duration, log zerolog.Logger) *UUIDCache {
	if ttl <= 0 {
		ttl = defaultUUIDTTL
	}
	return &UUIDCache{
		store: store,
		api:   api,
		ttl:   ttl,
		log:   log,
		now:   time.Now,
	}
}

// Resolve returns the cached session uuid while it is fresh, otherwise asks
// upstream for a new one and caches it. A store read failure degrades to a
// miss; a failed upstream resolution propagates as KindResolutionFailed and
// leaves the cache untouched (failures are never cached).
func (c *UUIDCache) Resolve(ctx context.Context, trackingID string) (*ports.ResolvedSession, error) {
	entry, err := c.store.Get(ctx, trackingID)
	if err != nil {
		c.log.Warn().Err(err).Str("tracking_id", trackingID).Msg("uuid store read failed, treating as miss")
	}
	if entry != nil && c.now().Sub(entry.ObtainedAt) < c.ttl {
		metrics.UUIDCacheTotal.WithLabelValues("hit").Inc()
		return &ports.ResolvedSession{UUID: entry.UUID, ObtainedAt: entry.ObtainedAt}, nil
	}
	metrics.UUIDCacheTotal.WithLabelValues("miss").Inc()

	result, err := c.api.Track(ctx, trackingID)
	if err != nil {
		return nil, domain.NewTrackingError(domain.KindResolutionFailed, "resolve uuid", err)
	}

	// Upstream already had shipment data: nothing to cache, the caller can
	// skip its fetch step entirely.
	if result.Shipment != nil {
		return &ports.ResolvedSession{Prefetched: result.Shipment}, nil
	}

	obtainedAt := c.now()
	if err := c.store.Set(ctx, trackingID, ports.UUIDEntry{UUID: result.UUID, ObtainedAt: obtainedAt}, c.ttl); err != nil {
		c.log.Warn().Err(err).Str("tracking_id", trackingID).Msg("failed to cache session uuid")
	}

	c.log.Debug().Str("tracking_id", trackingID).Msg("resolved new session uuid")
	return &ports.ResolvedSession{UUID: result.UUID, ObtainedAt: obtainedAt}, nil
}

// Invalidate unconditionally clears the cached entry, forcing the next
// Resolve to re-fetch. Called after a fetch reports an expired session.
func (c *UUIDCache) Invalidate(ctx context.Context, trackingID string) error {
	return c.store.Delete(ctx, trackingID)
}
