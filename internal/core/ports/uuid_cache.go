package ports

import (
	"context"
	"time"
)

// UUIDEntry is one cached session uuid together with the instant it was
// obtained from upstream.
type UUIDEntry struct {
	UUID       string    `json:"uuid"`
	ObtainedAt time.Time `json:"obtained_at"`
}

// UUIDStore is the backing store for cached session uuids. Get returns
// (nil, nil) on a miss; entries past their TTL behave as misses.
type UUIDStore interface {
	Get(ctx context.Context, trackingID string) (*UUIDEntry, error)
	Set(ctx context.Context, trackingID string, entry UUIDEntry, ttl time.Duration) error
	Delete(ctx context.Context, trackingID string) error
}

// ResolvedSession is the result of resolving a session uuid for a tracking
// id. When upstream answered the resolution call with shipment data directly,
// Prefetched carries it and UUID is empty.
type ResolvedSession struct {
	UUID       string
	ObtainedAt time.Time
	Prefetched *ShipmentPayload
}

// UUIDResolver hands out usable session uuids, re-resolving transparently
// when the cached one has gone stale.
type UUIDResolver interface {
	Resolve(ctx context.Context, trackingID string) (*ResolvedSession, error)
	// Invalidate clears the cached entry so the next Resolve re-fetches.
	Invalidate(ctx context.Context, trackingID string) error
}
