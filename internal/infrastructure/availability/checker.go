// Package availability probes the upstream tracking website's reachability.
// It is independent of the coordinator: the status endpoint calls it on
// demand so dashboards can tell "upstream is down" apart from "my parcel is
// stale".
package availability

import (
	"context"
	"net/http"
	"strings"
	"time"
)

const probeTimeout = 10 * time.Second

// Status is the outcome of one reachability probe.
type Status struct {
	Reachable      bool   `json:"reachable"`
	ResponseCode   int    `json:"response_code,omitempty"`
	ResponseTimeMS int64  `json:"response_time_ms"`
	Error          string `json:"error,omitempty"`
}

// Checker probes the upstream website root with a hard timeout.
type Checker struct {
	http *http.Client
	url  string
}

// NewChecker builds a Checker against the given base URL.
func NewChecker(baseURL string) *Checker {
	return &Checker{
		http: &http.Client{Timeout: probeTimeout},
		url:  strings.TrimRight(baseURL, "/") + "/",
	}
}

// Check performs one probe. A failed probe is reported in the Status, never
// as an error; the upstream being down is a result, not a fault.
func (c *Checker) Check(ctx context.Context) Status {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return Status{Error: err.Error()}
	}

	resp, err := c.http.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		return Status{ResponseTimeMS: elapsed.Milliseconds(), Error: err.Error()}
	}
	defer resp.Body.Close()

	return Status{
		Reachable:      resp.StatusCode == http.StatusOK,
		ResponseCode:   resp.StatusCode,
		ResponseTimeMS: elapsed.Milliseconds(),
	}
}
