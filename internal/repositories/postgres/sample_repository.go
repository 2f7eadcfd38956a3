package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/witnessmenow/bridge-traffic-display/internal/models"
	"github.com/witnessmenow/bridge-traffic-display/internal/repositories"
)

type SampleRepository struct {
	pool *pgxpool.Pool
}

func NewSampleRepository(pool *pgxpool.Pool) *SampleRepository {
	return &SampleRepository{pool: pool}
}

// EnsureSchema creates the samples table when it does not exist yet.
func (r *SampleRepository) EnsureSchema(ctx context.Context) error {
	stmt := `
        CREATE TABLE IF NOT EXISTS traffic_samples (
            id TEXT PRIMARY KEY,
            sampled_at TIMESTAMPTZ NOT NULL,
            origin_lat DOUBLE PRECISION NOT NULL,
            origin_lng DOUBLE PRECISION NOT NULL,
            destination_lat DOUBLE PRECISION NOT NULL,
            destination_lng DOUBLE PRECISION NOT NULL,
            duration_sec INTEGER NOT NULL,
            duration_in_traffic_sec INTEGER NOT NULL,
            delta_sec INTEGER NOT NULL,
            color TEXT NOT NULL
        )`
	if _, err := r.pool.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("ensure traffic_samples schema: %w", err)
	}
	return nil
}

func (r *SampleRepository) Save(ctx context.Context, sample models.TrafficSample, color models.ColorState) error {
	stmt := `
        INSERT INTO traffic_samples (
            id, sampled_at, origin_lat, origin_lng, destination_lat,
            destination_lng, duration_sec, duration_in_traffic_sec, delta_sec, color
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, stmt,
		sample.ID,
		sample.SampledAt,
		sample.Route.Origin.Lat,
		sample.Route.Origin.Lng,
		sample.Route.Destination.Lat,
		sample.Route.Destination.Lng,
		sample.DurationWithoutTraffic,
		sample.DurationWithTraffic,
		sample.Delta(),
		color.String(),
	)
	if err != nil {
		return fmt.Errorf("insert traffic sample: %w", err)
	}
	return nil
}

func (r *SampleRepository) Recent(ctx context.Context, limit int) ([]repositories.SampleRecord, error) {
	stmt := `
        SELECT id, sampled_at, duration_sec, duration_in_traffic_sec, delta_sec, color
        FROM traffic_samples
        ORDER BY sampled_at DESC
        LIMIT $1`

	rows, err := r.pool.Query(ctx, stmt, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent samples: %w", err)
	}
	defer rows.Close()

	var records []repositories.SampleRecord
	for rows.Next() {
		var rec repositories.SampleRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.SampledAt,
			&rec.DurationSec,
			&rec.DurationInTrafficSec,
			&rec.DeltaSec,
			&rec.Color,
		); err != nil {
			return nil, fmt.Errorf("scan sample record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
