// Package traffic fetches travel times for the watched route.
package traffic

import (
	"context"

	"github.com/witnessmenow/bridge-traffic-display/internal/models"
)

// Provider produces one travel-time sample per call. Implementations must
// honor ctx cancellation; the monitor bounds every poll with a timeout.
type Provider interface {
	Sample(ctx context.Context, route models.Route) (models.TrafficSample, error)
}
