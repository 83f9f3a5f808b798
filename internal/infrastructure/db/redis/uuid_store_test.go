package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/parcelwatch/parcel-tracker/internal/core/ports"
)

func newTestStore(t *testing.T) (*UUIDStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewUUIDStore(client), mr
}

func TestUUIDStore_SetGetRoundtrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	obtained := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	entry := ports.UUIDEntry{UUID: "abc-123", ObtainedAt: obtained}
	if err := store.Set(ctx, "PB-1", entry, 30*time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := store.Get(ctx, "PB-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatal("expected an entry")
	}
	if got.UUID != "abc-123" {
		t.Errorf("expected uuid abc-123, got %q", got.UUID)
	}
	if !got.ObtainedAt.Equal(obtained) {
		t.Errorf("expected timestamp %v, got %v", obtained, got.ObtainedAt)
	}
}

func TestUUIDStore_MissReturnsNil(t *testing.T) {
	store, _ := newTestStore(t)

	got, err := store.Get(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("a miss is not an error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil entry, got %+v", got)
	}
}

func TestUUIDStore_Delete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "PB-1", ports.UUIDEntry{UUID: "abc-123", ObtainedAt: time.Now()}, time.Hour); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Delete(ctx, "PB-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := store.Get(ctx, "PB-1")
	if err != nil || got != nil {
		t.Errorf("expected the entry gone, got %+v, %v", got, err)
	}

	// Deleting again is a no-op.
	if err := store.Delete(ctx, "PB-1"); err != nil {
		t.Errorf("deleting a missing key must not fail: %v", err)
	}
}

func TestUUIDStore_EntryExpiresWithTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "PB-1", ports.UUIDEntry{UUID: "abc-123", ObtainedAt: time.Now()}, 30*time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mr.FastForward(31 * time.Minute)

	got, err := store.Get(ctx, "PB-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected the entry expired, got %+v", got)
	}
}

func TestUUIDStore_CorruptEntryIsAnError(t *testing.T) {
	store, mr := newTestStore(t)

	mr.Set("uuid:PB-1", "not json")

	if _, err := store.Get(context.Background(), "PB-1"); err == nil {
		t.Error("expected a decode error for a corrupt entry")
	}
}
