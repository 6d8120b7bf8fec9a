package health

import "context"

// UpstreamChecker checks the retrieval engine's availability.
type UpstreamChecker interface {
	HealthCheck(ctx context.Context) error
}
