package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a remote-call failure so callers can decide whether
// to retry, invalidate the session uuid, or give up.
type ErrorKind string

const (
	// KindTransport covers network failures and timeouts.
	KindTransport ErrorKind = "transport"
	// KindUpstreamRejected covers HTTP error statuses with a body.
	KindUpstreamRejected ErrorKind = "upstream_rejected"
	// KindMalformedResponse covers bodies that do not match the expected schema.
	KindMalformedResponse ErrorKind = "malformed_response"
	// KindSessionExpired signals that the cached uuid is no longer valid and a
	// single invalidate-and-retry cycle should run.
	KindSessionExpired ErrorKind = "session_expired"
	// KindResolutionFailed wraps a failure to obtain a fresh session uuid.
	KindResolutionFailed ErrorKind = "resolution_failed"
)

// TrackingError is a remote-call failure carrying its classification, the
// operation that failed, and the upstream cause.
type TrackingError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *TrackingError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *TrackingError) Unwrap() error {
	return e.Err
}

// NewTrackingError builds a classified error for operation op wrapping cause.
func NewTrackingError(kind ErrorKind, op string, cause error) *TrackingError {
	return &TrackingError{Kind: kind, Op: op, Err: cause}
}

// KindOf extracts the ErrorKind from err, or "" when err carries none.
func KindOf(err error) ErrorKind {
	var te *TrackingError
	if errors.As(err, &te) {
		return te.Kind
	}
	return ""
}

// IsSessionExpired reports whether err signals an expired session uuid.
func IsSessionExpired(err error) bool {
	return KindOf(err) == KindSessionExpired
}
