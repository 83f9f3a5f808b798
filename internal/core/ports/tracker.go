package ports

import (
	"context"

	"github.com/parcelwatch/parcel-tracker/internal/core/domain"
)

// AddParcelInput carries the data needed to start tracking a parcel.
type AddParcelInput struct {
	TrackingID string
	// Name is an optional display label; on a duplicate add it replaces the
	// stored name while leaving the rest of the record intact.
	Name string
}

// RefreshOutcome is the per-parcel result of a bulk refresh. Parcel is the
// last known record (updated on success, unchanged on failure); Err is nil
// on success.
type RefreshOutcome struct {
	TrackingID string
	Parcel     *domain.Parcel
	Err        error
}

// RegistryEventType distinguishes the mutations listeners are told about.
type RegistryEventType string

const (
	EventParcelAdded   RegistryEventType = "parcel_added"
	EventParcelUpdated RegistryEventType = "parcel_updated"
	EventParcelRemoved RegistryEventType = "parcel_removed"
)

// RegistryEvent describes one committed registry mutation. Parcel is nil
// for removals.
type RegistryEvent struct {
	Type       RegistryEventType
	TrackingID string
	Parcel     *domain.Parcel
}

// Listener observes committed registry mutations. Listeners run after the
// mutation is committed and never while the registry lock is held; they must
// not block indefinitely.
type Listener func(event RegistryEvent)

// TrackerService defines the coordinator's public operations.
type TrackerService interface {
	// AddParcel registers a tracking id. Adding an id that is already tracked
	// is an idempotent upsert of the display name.
	AddParcel(ctx context.Context, input AddParcelInput) (*domain.Parcel, error)
	// RemoveParcel deletes a record and releases its cached session uuid.
	RemoveParcel(ctx context.Context, trackingID string) error
	// RefreshOne runs the single-parcel refresh. For a tracked id the record
	// is always returned, even alongside a non-nil refresh error; only an
	// unknown id yields domain.ErrParcelNotFound with no record.
	RefreshOne(ctx context.Context, trackingID string) (*domain.Parcel, error)
	// RefreshAll refreshes every parcel not in a terminal-for-polling status.
	// One parcel's failure never aborts the batch.
	RefreshAll(ctx context.Context) []RefreshOutcome
	// GetParcel returns a copy of a single tracked record.
	GetParcel(trackingID string) (*domain.Parcel, error)
	// ListParcels returns copies of all tracked records.
	ListParcels() []*domain.Parcel
	// Subscribe registers a listener for committed registry mutations.
	Subscribe(listener Listener)
}
