// Package repositories persists poll history. The monitor works without a
// repository; history only feeds the status endpoint and offline analysis.
package repositories

import (
	"context"
	"time"

	"github.com/witnessmenow/bridge-traffic-display/internal/models"
)

// SampleRecord is one stored poll result.
type SampleRecord struct {
	ID                   string    `json:"id"`
	SampledAt            time.Time `json:"sampled_at"`
	DurationSec          int       `json:"duration_sec"`
	DurationInTrafficSec int       `json:"duration_in_traffic_sec"`
	DeltaSec             int       `json:"delta_sec"`
	Color                string    `json:"color"`
}

type SampleRepository interface {
	Save(ctx context.Context, sample models.TrafficSample, color models.ColorState) error
	Recent(ctx context.Context, limit int) ([]SampleRecord, error)
}
