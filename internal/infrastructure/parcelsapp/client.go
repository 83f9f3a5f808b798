// Package parcelsapp implements the TrackingAPI port against the ParcelsApp
// public tracking API (api/v3). The client is stateless and safe for
// concurrent use; every failure is classified as a domain.TrackingError so
// the coordinator can decide between retrying, invalidating the session
// uuid, and giving up.
package parcelsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/parcelwatch/parcel-tracker/internal/api/metrics"
	"github.com/parcelwatch/parcel-tracker/internal/core/domain"
	"github.com/parcelwatch/parcel-tracker/internal/core/ports"
)

const (
	defaultBaseURL = "https://parcelsapp.com"
	defaultTimeout = 10 * time.Second
	trackingPath   = "/api/v3/shipments/tracking"

	// maxErrorBody bounds how much of an upstream error body is kept.
	maxErrorBody = 512
)

// Config captures the settings needed to talk to the ParcelsApp API. APIKey
// and DestinationCountry come from the configuration entry and are immutable
// for the client's lifetime.
type Config struct {
	BaseURL            string
	APIKey             string
	DestinationCountry string
	Language           string
	Timeout            time.Duration
}

// Client is the HTTP implementation of ports.TrackingAPI.
type Client struct {
	http               *http.Client
	baseURL            string
	apiKey             string
	destinationCountry string
	language           string
	log                zerolog.Logger
}

// NewClient builds a Client. Defaults are applied for BaseURL, Language,
// and Timeout when unset.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	language := cfg.Language
	if language == "" {
		language = "en"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		http:               &http.Client{Timeout: timeout},
		baseURL:            baseURL,
		apiKey:             cfg.APIKey,
		destinationCountry: cfg.DestinationCountry,
		language:           language,
		log:                log,
	}
}

// --- wire schema ---

type trackShipmentRequest struct {
	TrackingID         string `json:"trackingId"`
	DestinationCountry string `json:"destinationCountry,omitempty"`
}

type trackRequest struct {
	Shipments []trackShipmentRequest `json:"shipments"`
	Language  string                 `json:"language"`
	APIKey    string                 `json:"apiKey"`
}

type carrierResponse struct {
	Name string `json:"name"`
}

type shipmentResponse struct {
	ports.ShipmentPayload
	DetectedCarrier *carrierResponse `json:"detectedCarrier"`
}

type trackingResponse struct {
	UUID      string             `json:"uuid"`
	Done      bool               `json:"done"`
	Error     string             `json:"error"`
	Shipments []shipmentResponse `json:"shipments"`
}

func (s *shipmentResponse) payload() *ports.ShipmentPayload {
	p := s.ShipmentPayload
	if s.DetectedCarrier != nil {
		p.Carrier = s.DetectedCarrier.Name
	}
	return &p
}

// Track opens (or refreshes) a tracking request. Upstream answers with a
// session uuid while it gathers data, or with the shipment payload directly
// when it already has it.
func (c *Client) Track(ctx context.Context, trackingID string) (*ports.TrackResult, error) {
	body, err := json.Marshal(trackRequest{
		Shipments: []trackShipmentRequest{{
			TrackingID:         trackingID,
			DestinationCountry: c.destinationCountry,
		}},
		Language: c.language,
		APIKey:   c.apiKey,
	})
	if err != nil {
		return nil, domain.NewTrackingError(domain.KindMalformedResponse, "track", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+trackingPath, bytes.NewReader(body))
	if err != nil {
		return nil, domain.NewTrackingError(domain.KindTransport, "track", err)
	}
	req.Header.Set("Content-Type", "application/json")

	data, err := c.do("track", req, false)
	if err != nil {
		return nil, err
	}

	switch {
	case data.UUID != "":
		return &ports.TrackResult{UUID: data.UUID}, nil
	case len(data.Shipments) > 0:
		return &ports.TrackResult{Shipment: data.Shipments[0].payload()}, nil
	default:
		return nil, c.fail("track", domain.KindMalformedResponse,
			fmt.Errorf("response carries neither uuid nor shipments"))
	}
}

// FetchStatus retrieves tracking data for a previously issued session uuid.
// An unknown or expired uuid surfaces as KindSessionExpired so the caller
// can run exactly one invalidate-and-retry cycle.
func (c *Client) FetchStatus(ctx context.Context, uuid string) (*ports.FetchResult, error) {
	q := url.Values{}
	q.Set("uuid", uuid)
	q.Set("apiKey", c.apiKey)
	q.Set("language", c.language)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+trackingPath+"?"+q.Encode(), nil)
	if err != nil {
		return nil, domain.NewTrackingError(domain.KindTransport, "fetch_status", err)
	}

	data, err := c.do("fetch_status", req, true)
	if err != nil {
		return nil, err
	}

	if !data.Done {
		return &ports.FetchResult{Done: false}, nil
	}
	if len(data.Shipments) == 0 {
		return nil, c.fail("fetch_status", domain.KindMalformedResponse,
			fmt.Errorf("done response carries no shipments"))
	}
	return &ports.FetchResult{Done: true, Shipment: data.Shipments[0].payload()}, nil
}

// do executes one request and decodes the common response envelope.
// sessionScoped marks calls made against an issued uuid, where upstream
// rejections signal an expired session rather than a hard failure.
func (c *Client) do(op string, req *http.Request, sessionScoped bool) (*trackingResponse, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.fail(op, domain.KindTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, c.fail(op, domain.KindTransport, err)
	}

	if resp.StatusCode >= 400 {
		kind := domain.KindUpstreamRejected
		if sessionScoped && (resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotFound) {
			kind = domain.KindSessionExpired
		}
		return nil, c.fail(op, kind,
			fmt.Errorf("status %d: %s", resp.StatusCode, truncate(raw)))
	}

	var data trackingResponse
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, c.fail(op, domain.KindMalformedResponse, fmt.Errorf("%w: %s", err, truncate(raw)))
	}

	if data.Error != "" {
		kind := domain.KindUpstreamRejected
		if sessionScoped && strings.Contains(strings.ToLower(data.Error), "uuid") {
			kind = domain.KindSessionExpired
		}
		return nil, c.fail(op, kind, fmt.Errorf("upstream error: %s", data.Error))
	}

	metrics.UpstreamRequestsTotal.WithLabelValues(op, "ok").Inc()
	return &data, nil
}

func (c *Client) fail(op string, kind domain.ErrorKind, cause error) error {
	metrics.UpstreamRequestsTotal.WithLabelValues(op, string(kind)).Inc()
	return domain.NewTrackingError(kind, op, cause)
}

func truncate(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		return s[:maxErrorBody] + "..."
	}
	return s
}
