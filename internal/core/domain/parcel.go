package domain

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// ParcelStatus represents the lifecycle state of a tracked parcel as
// reported by the upstream tracking service.
type ParcelStatus string

const (
	StatusUnknown   ParcelStatus = "unknown"
	StatusPickup    ParcelStatus = "pickup"
	StatusTransit   ParcelStatus = "transit"
	StatusArrived   ParcelStatus = "arrived"
	StatusDelivered ParcelStatus = "delivered"
	StatusArchived  ParcelStatus = "archived"
)

var ErrParcelNotFound = errors.New("parcel not found")
var ErrInvalidCredentials = errors.New("invalid credentials")

// ParseStatus normalizes an upstream status string into a ParcelStatus.
// Unrecognized values map to StatusUnknown; upstream remains authoritative,
// so no transition is ever rejected.
func ParseStatus(s string) ParcelStatus {
	switch ParcelStatus(strings.ToLower(strings.TrimSpace(s))) {
	case StatusPickup:
		return StatusPickup
	case StatusTransit:
		return StatusTransit
	case StatusArrived:
		return StatusArrived
	case StatusDelivered:
		return StatusDelivered
	case StatusArchived:
		return StatusArchived
	default:
		return StatusUnknown
	}
}

// TerminalForPolling reports whether a parcel in this status is excluded
// from bulk refresh. Delivered and archived parcels are never polled again.
func (s ParcelStatus) TerminalForPolling() bool {
	return s == StatusDelivered || s == StatusArchived
}

// ETA is a normalized estimated-time-of-arrival window. Both the day-count
// pair and the date pair are always populated together, with min <= max.
type ETA struct {
	DaysMin int       `json:"days_min" bson:"days_min"`
	DaysMax int       `json:"days_max" bson:"days_max"`
	DateMin time.Time `json:"date_min" bson:"date_min"`
	DateMax time.Time `json:"date_max" bson:"date_max"`
}

// Parcel is the core aggregate: one record per tracked shipment, keyed by
// the caller-supplied tracking id. UUID and UUIDTimestamp are set and
// cleared together; ETA is either fully present or absent.
type Parcel struct {
	TrackingID       string       `json:"tracking_id" bson:"_id"`
	Name             string       `json:"name,omitempty" bson:"name,omitempty"`
	Status           ParcelStatus `json:"status" bson:"status"`
	UUID             string       `json:"uuid,omitempty" bson:"uuid,omitempty"`
	UUIDTimestamp    *time.Time   `json:"uuid_timestamp,omitempty" bson:"uuid_timestamp,omitempty"`
	Message          string       `json:"message,omitempty" bson:"message,omitempty"`
	Location         string       `json:"location,omitempty" bson:"location,omitempty"`
	Origin           string       `json:"origin,omitempty" bson:"origin,omitempty"`
	Destination      string       `json:"destination,omitempty" bson:"destination,omitempty"`
	Carrier          string       `json:"carrier,omitempty" bson:"carrier,omitempty"`
	DaysInTransit    *int         `json:"days_in_transit,omitempty" bson:"days_in_transit,omitempty"`
	ExpectedDelivery string       `json:"expected_delivery,omitempty" bson:"expected_delivery,omitempty"`
	LastUpdated      *time.Time   `json:"last_updated,omitempty" bson:"last_updated,omitempty"`
	ETA              *ETA         `json:"eta,omitempty" bson:"eta,omitempty"`
}

// NewParcel creates a fresh record in state unknown with no session uuid.
func NewParcel(trackingID, name string) *Parcel {
	return &Parcel{
		TrackingID: trackingID,
		Name:       name,
		Status:     StatusUnknown,
	}
}

// SetUUID records a freshly resolved session uuid together with the instant
// it was obtained.
func (p *Parcel) SetUUID(uuid string, obtainedAt time.Time) {
	p.UUID = uuid
	ts := obtainedAt
	p.UUIDTimestamp = &ts
}

// ClearUUID drops the session uuid and its timestamp together.
func (p *Parcel) ClearUUID() {
	p.UUID = ""
	p.UUIDTimestamp = nil
}

// Clone returns a deep copy so callers can hand records out without
// exposing registry-internal state.
func (p *Parcel) Clone() *Parcel {
	clone := *p
	if p.UUIDTimestamp != nil {
		ts := *p.UUIDTimestamp
		clone.UUIDTimestamp = &ts
	}
	if p.LastUpdated != nil {
		ts := *p.LastUpdated
		clone.LastUpdated = &ts
	}
	if p.DaysInTransit != nil {
		d := *p.DaysInTransit
		clone.DaysInTransit = &d
	}
	if p.ETA != nil {
		eta := *p.ETA
		clone.ETA = &eta
	}
	return &clone
}

// Attributes renders the persisted attribute surface consumed by dashboards
// and automation. Key names are part of the external contract. The two ETA
// keys are omitted entirely (not null) when no ETA is known.
func (p *Parcel) Attributes() map[string]any {
	attrs := map[string]any{
		"tracking_id":     p.TrackingID,
		"name":            nilIfEmpty(p.Name),
		"status":          string(p.Status),
		"uuid":            nilIfEmpty(p.UUID),
		"uuid_timestamp":  formatInstant(p.UUIDTimestamp),
		"message":         nilIfEmpty(p.Message),
		"location":        nilIfEmpty(p.Location),
		"origin":          nilIfEmpty(p.Origin),
		"destination":     nilIfEmpty(p.Destination),
		"carrier":         nilIfEmpty(p.Carrier),
		"days_in_transit": nilIfNilInt(p.DaysInTransit),
		"last_updated":    formatInstant(p.LastUpdated),
	}
	if p.ETA != nil {
		attrs["eta_days_range"] = p.ETA.DaysRange()
		attrs["eta_date_range"] = p.ETA.DateRange()
	}
	return attrs
}

// DaysRange renders the day-count window as "<min>-<max>".
func (e *ETA) DaysRange() string {
	return strconv.Itoa(e.DaysMin) + "-" + strconv.Itoa(e.DaysMax)
}

// DateRange renders the date window as two ISO-8601 instants joined by "/".
func (e *ETA) DateRange() string {
	return e.DateMin.UTC().Format(time.RFC3339) + "/" + e.DateMax.UTC().Format(time.RFC3339)
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nilIfNilInt(i *int) any {
	if i == nil {
		return nil
	}
	return *i
}

func formatInstant(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
