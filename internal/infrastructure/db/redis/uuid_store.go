package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/parcelwatch/parcel-tracker/internal/core/ports"
)

// UUIDStore persists cached session uuids in Redis.
// Key format: uuid:<tracking_id>; the staleness threshold doubles as the
// key TTL so expired entries vanish on their own.
type UUIDStore struct {
	client *redis.Client
}

// NewUUIDStore creates a UUIDStore wrapping the given Redis client.
func NewUUIDStore(client *redis.Client) *UUIDStore {
	return &UUIDStore{client: client}
}

// Get returns the cached entry for a tracking id, or (nil, nil) when none
// exists or it has expired.
func (s *UUIDStore) Get(ctx context.Context, trackingID string) (*ports.UUIDEntry, error) {
	raw, err := s.client.Get(ctx, s.key(trackingID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("uuid store get: %w", err)
	}

	var entry ports.UUIDEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("uuid store decode: %w", err)
	}
	return &entry, nil
}

// Set stores an entry with the given TTL.
func (s *UUIDStore) Set(ctx context.Context, trackingID string, entry ports.UUIDEntry, ttl time.Duration) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("uuid store encode: %w", err)
	}
	return s.client.Set(ctx, s.key(trackingID), raw, ttl).Err()
}

// Delete removes the entry; deleting a missing key is not an error.
func (s *UUIDStore) Delete(ctx context.Context, trackingID string) error {
	return s.client.Del(ctx, s.key(trackingID)).Err()
}

func (s *UUIDStore) key(trackingID string) string {
	return "uuid:" + trackingID
}
