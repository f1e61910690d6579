package weather

import (
	"errors"
	"fmt"
)

var (
	// ErrLocationNotFound is returned when the upstream provider does not
	// recognize the requested location.
	ErrLocationNotFound = errors.New("location not found")
)

// UpstreamError covers every provider-side failure that is not the caller's
// fault: timeouts, transport errors, HTTP 4xx/5xx from the provider, and
// provider body errors other than an unknown location. The message is safe to
// log but is never sent to callers verbatim; Reason carries a short
// classification for logs.
type UpstreamError struct {
	Reason string
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream weather service: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("upstream weather service: %s", e.Reason)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// IsUpstream reports whether err is (or wraps) an UpstreamError.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
