package ports

import "context"

// ShipmentState is a single carrier scan as reported upstream.
type ShipmentState struct {
	Status   string `json:"status"`
	Location string `json:"location"`
	Date     string `json:"date"`
}

// ShipmentAttribute is an upstream label/value annotation. Values are
// heterogeneous (numbers for transit days, strings for delivery windows).
type ShipmentAttribute struct {
	Label string `json:"l"`
	Value any    `json:"val"`
}

// ETAPayload is the raw, variable-shape ETA sub-payload. Remaining holds
// day-count bounds (0, 1 or 2 entries, possibly null); Period holds date
// bounds as upstream-formatted strings.
type ETAPayload struct {
	Remaining []*int   `json:"remaining"`
	Period    []string `json:"period"`
}

// ShipmentPayload is the decoded upstream shipment object. Most fields are
// optional; absence must not be confused with an empty value.
type ShipmentPayload struct {
	TrackingID  string              `json:"trackingId"`
	Status      string              `json:"status"`
	LastState   *ShipmentState      `json:"lastState"`
	States      []ShipmentState     `json:"states"`
	Origin      string              `json:"origin"`
	Destination string              `json:"destination"`
	Carrier     string              `json:"-"`
	Attributes  []ShipmentAttribute `json:"attributes"`
	ETA         *ETAPayload         `json:"eta"`
}

// TrackResult is the outcome of opening a tracking request. Exactly one of
// the two fields is populated: a fresh session uuid when upstream needs time
// to gather data, or the shipment payload when it already has it.
type TrackResult struct {
	UUID     string
	Shipment *ShipmentPayload
}

// FetchResult is the outcome of a status fetch against an open session.
// Done is false while upstream is still collecting carrier data.
type FetchResult struct {
	Done     bool
	Shipment *ShipmentPayload
}

// TrackingAPI is the stateless client for the remote tracking service.
// Implementations are safe for concurrent use and classify every failure as
// a domain.TrackingError.
type TrackingAPI interface {
	// Track opens (or refreshes) a tracking request for the given id.
	Track(ctx context.Context, trackingID string) (*TrackResult, error)
	// FetchStatus retrieves tracking data for a previously issued session
	// uuid. An unknown or expired uuid surfaces as KindSessionExpired.
	FetchStatus(ctx context.Context, uuid string) (*FetchResult, error)
}
