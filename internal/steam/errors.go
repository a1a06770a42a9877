package steam

import (
	"errors"
	"fmt"
)

// Sentinel errors for Steam API operations.
var (
	ErrNotFound    = errors.New("steam: not found")
	ErrRateLimited = errors.New("steam: rate limited by server")
	ErrServer      = errors.New("steam: server error")
	ErrMalformed   = errors.New("steam: malformed response")
	ErrCircuitOpen = errors.New("steam: circuit open")
)

// TransportError reports a request that produced no usable response:
// dial failures, timeouts, cancellation, or an open circuit breaker.
type TransportError struct {
	Op    string // "appdetails", "featuredcategories", "featured", "storesearch", "players"
	AppID string // If applicable
	Err   error
}

func (e *TransportError) Error() string {
	if e.AppID != "" {
		return fmt.Sprintf("steam %s [%s]: transport: %v", e.Op, e.AppID, e.Err)
	}
	return fmt.Sprintf("steam %s: transport: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// UpstreamError reports a response Steam did send but that we cannot use:
// a non-2xx status, a body that fails to decode, or a payload missing required fields.
type UpstreamError struct {
	Op         string
	AppID      string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.AppID != "" {
		return fmt.Sprintf("steam %s [%s]: status %d: %v", e.Op, e.AppID, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("steam %s: status %d: %v", e.Op, e.StatusCode, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// withContext stamps op and app id onto errors produced by doRequest.
func withContext(op, appID string, err error) error {
	var te *TransportError
	if errors.As(err, &te) {
		te.Op, te.AppID = op, appID
		return te
	}
	var ue *UpstreamError
	if errors.As(err, &ue) {
		ue.Op, ue.AppID = op, appID
		return ue
	}
	return &TransportError{Op: op, AppID: appID, Err: err}
}

// malformed builds the error for a 200 response whose body cannot be used.
func malformed(op, appID string, cause error) error {
	return &UpstreamError{
		Op:         op,
		AppID:      appID,
		StatusCode: 200,
		Err:        fmt.Errorf("%w: %w", ErrMalformed, cause),
	}
}
