package sensor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// TelemetryRepository defines the interface for the telemetry cache.
// The cache holds at most one sample per sensor; writes overwrite.
type TelemetryRepository interface {
	// Write serializes the sample and stores it at the sensor's key,
	// overwriting any prior value.
	Write(ctx context.Context, sensorID int64, sample *Telemetry) error

	// Read returns the latest sample for a sensor.
	// Returns ErrNotFound if no telemetry has ever been written. The
	// cache has no notion of sensor existence; "no sample" and "no such
	// sensor" look identical here.
	Read(ctx context.Context, sensorID int64) (*Telemetry, error)

	// Delete removes the sample for a sensor. Idempotent: a missing key
	// is not an error.
	Delete(ctx context.Context, sensorID int64) error
}

// RedisTelemetryRepository implements TelemetryRepository using Redis.
// Keys follow the sensor:<id>:data layout; values are JSON.
type RedisTelemetryRepository struct {
	rdb *redis.Client
}

// NewRedisTelemetryRepository creates a new Redis-backed repository.
func NewRedisTelemetryRepository(rdb *redis.Client) *RedisTelemetryRepository {
	return &RedisTelemetryRepository{rdb: rdb}
}

// TelemetryKey returns the cache key for a sensor's telemetry.
func TelemetryKey(sensorID int64) string {
	return fmt.Sprintf("sensor:%d:data", sensorID)
}

// Write stores the serialized sample. No TTL is set; samples live until
// overwritten or the sensor is deleted.
func (r *RedisTelemetryRepository) Write(ctx context.Context, sensorID int64, sample *Telemetry) error {
	payload, err := json.Marshal(sample)
	if err != nil {
		return fmt.Errorf("marshalling telemetry: %w", err)
	}

	if err := r.rdb.Set(ctx, TelemetryKey(sensorID), payload, 0).Err(); err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	return nil
}

// Read returns the latest sample, or ErrNotFound if none exists.
func (r *RedisTelemetryRepository) Read(ctx context.Context, sensorID int64) (*Telemetry, error) {
	payload, err := r.rdb.Get(ctx, TelemetryKey(sensorID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading telemetry: %w", err)
	}

	var sample Telemetry
	if err := json.Unmarshal(payload, &sample); err != nil {
		return nil, fmt.Errorf("unmarshalling telemetry: %w", err)
	}
	return &sample, nil
}

// Delete removes the sample. Redis DEL on a missing key is a no-op.
func (r *RedisTelemetryRepository) Delete(ctx context.Context, sensorID int64) error {
	if err := r.rdb.Del(ctx, TelemetryKey(sensorID)).Err(); err != nil {
		return fmt.Errorf("deleting telemetry: %w", err)
	}
	return nil
}
