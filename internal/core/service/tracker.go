package service

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/parcelwatch/parcel-tracker/internal/api/metrics"
	"github.com/parcelwatch/parcel-tracker/internal/core/domain"
	"github.com/parcelwatch/parcel-tracker/internal/core/ports"
)

const defaultMaxInFlight = 4

// Tracker is the tracking coordinator: it owns the parcel registry, drives
// single-parcel and bulk refreshes with per-parcel failure isolation, and
// notifies subscribers after every committed registry mutation.
//
// The registry is instance state; multiple Trackers never interfere.
type Tracker struct {
	api         ports.TrackingAPI
	uuids       ports.UUIDResolver
	log         zerolog.Logger
	maxInFlight int
	now         func() time.Time

	mu      sync.Mutex
	parcels map[string]*domain.Parcel

	listenerMu sync.RWMutex
	listeners  []ports.Listener
}

// NewTracker builds a coordinator over the given API client and uuid
// resolver. maxInFlight bounds concurrent remote call sequences during a
// bulk refresh; non-positive values fall back to defaultMaxInFlight.
func NewTracker(api ports.TrackingAPI, uuids ports.UUIDResolver, maxInFlight int, log zerolog.Logger) *Tracker {
	if maxInFlight <= 0 {
		maxInFlight = defaultMaxInFlight
	}
	return &Tracker{
		api:         api,
		uuids:       uuids,
		log:         log,
		maxInFlight: maxInFlight,
		now:         time.Now,
		parcels:     make(map[string]*domain.Parcel),
	}
}

// Restore seeds the registry from persisted records. Meant to be called once
// at startup, before any listeners subscribe; no events are emitted.
func (t *Tracker) Restore(parcels []*domain.Parcel) {
	t.mu.Lock()
	for _, p := range parcels {
		if p == nil || p.TrackingID == "" {
			continue
		}
		t.parcels[p.TrackingID] = p.Clone()
	}
	n := len(t.parcels)
	t.mu.Unlock()

	metrics.ParcelsTracked.Set(float64(n))
	t.log.Info().Int("count", n).Msg("registry restored")
}

// AddParcel registers a tracking id. A duplicate add is an idempotent upsert:
// the existing record survives and only the display name is replaced (when
// one was supplied).
func (t *Tracker) AddParcel(_ context.Context, input ports.AddParcelInput) (*domain.Parcel, error) {
	t.mu.Lock()
	if existing, ok := t.parcels[input.TrackingID]; ok {
		if input.Name != "" {
			existing.Name = input.Name
		}
		clone := existing.Clone()
		t.mu.Unlock()

		t.notify(ports.RegistryEvent{Type: ports.EventParcelUpdated, TrackingID: input.TrackingID, Parcel: clone})
		return clone, nil
	}

	p := domain.NewParcel(input.TrackingID, input.Name)
	t.parcels[input.TrackingID] = p
	clone := p.Clone()
	n := len(t.parcels)
	t.mu.Unlock()

	metrics.ParcelsTracked.Set(float64(n))
	t.log.Info().Str("tracking_id", input.TrackingID).Msg("parcel added")
	t.notify(ports.RegistryEvent{Type: ports.EventParcelAdded, TrackingID: input.TrackingID, Parcel: clone})
	return clone, nil
}

// RemoveParcel deletes a record and releases its cached session uuid. The
// effect is immediate and final.
func (t *Tracker) RemoveParcel(ctx context.Context, trackingID string) error {
	t.mu.Lock()
	if _, ok := t.parcels[trackingID]; !ok {
		t.mu.Unlock()
		return domain.ErrParcelNotFound
	}
	delete(t.parcels, trackingID)
	n := len(t.parcels)
	t.mu.Unlock()

	if err := t.uuids.Invalidate(ctx, trackingID); err != nil {
		t.log.Warn().Err(err).Str("tracking_id", trackingID).Msg("failed to release cached uuid")
	}

	metrics.ParcelsTracked.Set(float64(n))
	t.log.Info().Str("tracking_id", trackingID).Msg("parcel removed")
	t.notify(ports.RegistryEvent{Type: ports.EventParcelRemoved, TrackingID: trackingID})
	return nil
}

// GetParcel returns a copy of a single tracked record.
func (t *Tracker) GetParcel(trackingID string) (*domain.Parcel, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.parcels[trackingID]
	if !ok {
		return nil, domain.ErrParcelNotFound
	}
	return p.Clone(), nil
}

// ListParcels returns copies of all tracked records, ordered by tracking id.
func (t *Tracker) ListParcels() []*domain.Parcel {
	t.mu.Lock()
	out := make([]*domain.Parcel, 0, len(t.parcels))
	for _, p := range t.parcels {
		out = append(out, p.Clone())
	}
	t.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].TrackingID < out[j].TrackingID })
	return out
}

// Subscribe registers a listener invoked after every committed registry
// mutation. Listeners run synchronously, outside the registry lock.
func (t *Tracker) Subscribe(listener ports.Listener) {
	t.listenerMu.Lock()
	t.listeners = append(t.listeners, listener)
	t.listenerMu.Unlock()
}

// RefreshOne runs the single-parcel refresh for one tracked id. Unknown ids
// yield domain.ErrParcelNotFound; for tracked ids the record is always
// returned, alongside a non-nil error when the refresh failed. Upstream
// failures never blank the stored record.
func (t *Tracker) RefreshOne(ctx context.Context, trackingID string) (*domain.Parcel, error) {
	t.mu.Lock()
	if _, ok := t.parcels[trackingID]; !ok {
		t.mu.Unlock()
		return nil, domain.ErrParcelNotFound
	}
	t.mu.Unlock()

	return t.refresh(ctx, trackingID)
}

// RefreshAll refreshes every parcel not in a terminal-for-polling status,
// fanning out with at most maxInFlight concurrent refreshes. Each parcel's
// outcome is collected independently; one failure never aborts the batch.
func (t *Tracker) RefreshAll(ctx context.Context) []ports.RefreshOutcome {
	t.mu.Lock()
	eligible := make([]string, 0, len(t.parcels))
	for id, p := range t.parcels {
		if !p.Status.TerminalForPolling() {
			eligible = append(eligible, id)
		}
	}
	t.mu.Unlock()
	sort.Strings(eligible)

	outcomes := make([]ports.RefreshOutcome, len(eligible))
	sem := make(chan struct{}, t.maxInFlight)
	var wg sync.WaitGroup
	for i, id := range eligible {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			parcel, err := t.refresh(ctx, id)
			outcomes[i] = ports.RefreshOutcome{TrackingID: id, Parcel: parcel, Err: err}
		}(i, id)
	}
	wg.Wait()

	return outcomes
}

// refresh executes the single-parcel algorithm: resolve the session uuid,
// fetch status, handle one session-expiry retry cycle, and merge the result
// into the registry. On failure the stored record stays untouched and is
// returned as-is.
func (t *Tracker) refresh(ctx context.Context, trackingID string) (*domain.Parcel, error) {
	start := t.now()
	parcel, pending, err := t.refreshOnce(ctx, trackingID)
	metrics.RefreshDuration.Observe(t.now().Sub(start).Seconds())

	switch {
	case err != nil:
		result := string(domain.KindOf(err))
		if result == "" {
			result = "error"
		}
		metrics.RefreshesTotal.WithLabelValues(result).Inc()
		t.log.Warn().Err(err).Str("tracking_id", trackingID).Msg("refresh failed")
	case pending:
		metrics.RefreshesTotal.WithLabelValues("pending").Inc()
	default:
		metrics.RefreshesTotal.WithLabelValues("success").Inc()
	}
	return parcel, err
}

func (t *Tracker) refreshOnce(ctx context.Context, trackingID string) (parcel *domain.Parcel, pending bool, err error) {
	session, err := t.uuids.Resolve(ctx, trackingID)
	if err != nil {
		return t.lastKnown(trackingID), false, err
	}

	// Resolution may already carry shipment data; the fetch step is skipped
	// and the record holds no session uuid afterwards.
	if session.Prefetched != nil {
		parcel, err = t.commitShipment(trackingID, nil, session.Prefetched)
		return parcel, false, err
	}

	result, err := t.api.FetchStatus(ctx, session.UUID)
	if domain.IsSessionExpired(err) {
		// One invalidate-and-retry cycle, never more.
		if invErr := t.uuids.Invalidate(ctx, trackingID); invErr != nil {
			t.log.Warn().Err(invErr).Str("tracking_id", trackingID).Msg("failed to invalidate expired uuid")
		}
		session, err = t.uuids.Resolve(ctx, trackingID)
		if err != nil {
			return t.lastKnown(trackingID), false, err
		}
		if session.Prefetched != nil {
			parcel, err = t.commitShipment(trackingID, nil, session.Prefetched)
			return parcel, false, err
		}
		result, err = t.api.FetchStatus(ctx, session.UUID)
	}
	if err != nil {
		return t.lastKnown(trackingID), false, err
	}

	// Upstream is still collecting carrier data: keep the session uuid on
	// the record but leave everything else, including last_updated, alone.
	if !result.Done {
		t.log.Debug().Str("tracking_id", trackingID).Msg("tracking data not yet available")
		parcel, err = t.commitPending(trackingID, session)
		return parcel, true, err
	}

	parcel, err = t.commitShipment(trackingID, session, result.Shipment)
	return parcel, false, err
}

// commitShipment merges a fetched shipment payload into the stored record.
// Fields absent from the payload keep their last known values; status and
// last_updated always update. Session is nil when the data arrived without
// an open session, in which case the record's uuid is cleared.
func (t *Tracker) commitShipment(trackingID string, session *ports.ResolvedSession, shipment *ports.ShipmentPayload) (*domain.Parcel, error) {
	now := t.now()

	eta, etaErr := ParseETA(shipment.ETA, now)
	if etaErr != nil {
		t.log.Warn().Err(etaErr).Str("tracking_id", trackingID).Msg("eta payload unparseable")
	}

	t.mu.Lock()
	p, ok := t.parcels[trackingID]
	if !ok {
		// Removed while the refresh was in flight; drop the result.
		t.mu.Unlock()
		return nil, domain.ErrParcelNotFound
	}

	p.Status = domain.ParseStatus(shipment.Status)
	ts := now
	p.LastUpdated = &ts
	if session != nil {
		p.SetUUID(session.UUID, session.ObtainedAt)
	} else {
		p.ClearUUID()
	}

	if msg := lastStateStatus(shipment); msg != "" {
		p.Message = msg
	}
	if loc := bestLocation(shipment); loc != "" {
		p.Location = loc
	}
	if shipment.Origin != "" {
		p.Origin = shipment.Origin
	}
	if shipment.Destination != "" {
		p.Destination = shipment.Destination
	}
	if shipment.Carrier != "" {
		p.Carrier = shipment.Carrier
	}
	if days, ok := transitDays(shipment); ok {
		p.DaysInTransit = &days
	}
	if window := attributeString(shipment, "eta"); window != "" {
		p.ExpectedDelivery = window
	}
	if eta != nil {
		p.ETA = eta
	}

	clone := p.Clone()
	t.mu.Unlock()

	t.log.Debug().
		Str("tracking_id", trackingID).
		Str("status", string(clone.Status)).
		Msg("parcel refreshed")
	t.notify(ports.RegistryEvent{Type: ports.EventParcelUpdated, TrackingID: trackingID, Parcel: clone})
	return clone, nil
}

// commitPending records a freshly resolved session uuid on a record whose
// tracking data has not materialized yet.
func (t *Tracker) commitPending(trackingID string, session *ports.ResolvedSession) (*domain.Parcel, error) {
	t.mu.Lock()
	p, ok := t.parcels[trackingID]
	if !ok {
		t.mu.Unlock()
		return nil, domain.ErrParcelNotFound
	}
	p.SetUUID(session.UUID, session.ObtainedAt)
	clone := p.Clone()
	t.mu.Unlock()

	t.notify(ports.RegistryEvent{Type: ports.EventParcelUpdated, TrackingID: trackingID, Parcel: clone})
	return clone, nil
}

// lastKnown returns a copy of the current record, used to hand callers their
// last-known-good view when a refresh fails.
func (t *Tracker) lastKnown(trackingID string) *domain.Parcel {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.parcels[trackingID]
	if !ok {
		return nil
	}
	return p.Clone()
}

func (t *Tracker) notify(event ports.RegistryEvent) {
	t.listenerMu.RLock()
	listeners := make([]ports.Listener, len(t.listeners))
	copy(listeners, t.listeners)
	t.listenerMu.RUnlock()

	for _, l := range listeners {
		l(event)
	}
}

// --- payload extraction helpers ---

func lastStateStatus(s *ports.ShipmentPayload) string {
	if s.LastState == nil {
		return ""
	}
	return s.LastState.Status
}

// bestLocation picks the most recent known location: lastState first, then
// the newest state that carries one.
func bestLocation(s *ports.ShipmentPayload) string {
	if s.LastState != nil && s.LastState.Location != "" {
		return s.LastState.Location
	}
	for i := len(s.States) - 1; i >= 0; i-- {
		if s.States[i].Location != "" {
			return s.States[i].Location
		}
	}
	return ""
}

// transitDays pulls the days_transit attribute. Upstream encodes the value
// as a JSON number or a numeric string depending on carrier.
func transitDays(s *ports.ShipmentPayload) (int, bool) {
	for _, attr := range s.Attributes {
		if attr.Label != "days_transit" {
			continue
		}
		switch v := attr.Value.(type) {
		case float64:
			return int(v), true
		case int:
			return v, true
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				return n, true
			}
		}
		return 0, false
	}
	return 0, false
}

func attributeString(s *ports.ShipmentPayload, label string) string {
	for _, attr := range s.Attributes {
		if attr.Label == label {
			if v, ok := attr.Value.(string); ok {
				return v
			}
		}
	}
	return ""
}
