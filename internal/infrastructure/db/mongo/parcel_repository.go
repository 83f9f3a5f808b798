package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/parcelwatch/parcel-tracker/internal/core/domain"
)

const collectionParcels = "parcels"

// ParcelRepository persists registry snapshots so tracked parcels survive
// process restarts. It implements ports.ParcelStore; the tracking id is the
// document id, so Upsert is naturally idempotent.
type ParcelRepository struct {
	col *mongo.Collection
}

func NewParcelRepository(db *mongo.Database) *ParcelRepository {
	return &ParcelRepository{col: db.Collection(collectionParcels)}
}

// Upsert writes the full record, replacing any previous snapshot.
func (r *ParcelRepository) Upsert(ctx context.Context, p *domain.Parcel) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.ReplaceOne(ctx,
		bson.M{"_id": p.TrackingID},
		p,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert parcel %s: %w", p.TrackingID, err)
	}
	return nil
}

// Delete removes a record; deleting a missing record is not an error.
func (r *ParcelRepository) Delete(ctx context.Context, trackingID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteOne(ctx, bson.M{"_id": trackingID}); err != nil {
		return fmt.Errorf("delete parcel %s: %w", trackingID, err)
	}
	return nil
}

// LoadAll returns every persisted record, used to seed the registry at startup.
func (r *ParcelRepository) LoadAll(ctx context.Context) ([]*domain.Parcel, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("load parcels: %w", err)
	}
	defer cur.Close(ctx)

	var parcels []*domain.Parcel
	if err := cur.All(ctx, &parcels); err != nil {
		return nil, fmt.Errorf("decode parcels: %w", err)
	}
	return parcels, nil
}
