package ports

import (
	"context"

	"github.com/parcelwatch/parcel-tracker/internal/core/domain"
)

// ParcelStore persists registry snapshots across process restarts. The
// coordinator itself never reads it; the composition root loads from it at
// startup and writes through a registry listener.
type ParcelStore interface {
	Upsert(ctx context.Context, p *domain.Parcel) error
	Delete(ctx context.Context, trackingID string) error
	LoadAll(ctx context.Context) ([]*domain.Parcel, error)
}
