package weather

import "context"

// Provider abstracts the upstream weather data source. Implementations return
// ErrLocationNotFound for unrecognized locations and *UpstreamError for every
// other provider-side failure; no retries are performed at any level.
type Provider interface {
	Name() string
	Current(ctx context.Context, q Query) (Report, error)
}
