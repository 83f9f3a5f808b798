// Package sched drives the periodic bulk refresh. Scheduling deliberately
// lives outside the coordinator: the coordinator's refresh operations are
// plain request/response entry points, and this poller (or the HTTP trigger)
// decides when they run.
package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/parcelwatch/parcel-tracker/internal/core/ports"
)

const defaultInterval = 20 * time.Minute

// Poller invokes the coordinator's bulk refresh on a fixed interval.
type Poller struct {
	tracker  ports.TrackerService
	interval time.Duration
	log      zerolog.Logger
}

// NewPoller creates a Poller. A non-positive interval falls back to
// defaultInterval.
func NewPoller(tracker ports.TrackerService, interval time.Duration, log zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Poller{tracker: tracker, interval: interval, log: log}
}

// Start launches the polling goroutine. It runs one refresh cycle
// immediately, then one per interval, and stops when ctx is cancelled.
func (p *Poller) Start(ctx context.Context) {
	go p.run(ctx)
}

func (p *Poller) run(ctx context.Context) {
	p.cycle(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.cycle(ctx)
		}
	}
}

func (p *Poller) cycle(ctx context.Context) {
	outcomes := p.tracker.RefreshAll(ctx)

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	p.log.Info().
		Int("attempted", len(outcomes)).
		Int("failed", failed).
		Msg("refresh cycle complete")
}
