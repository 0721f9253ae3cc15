// Package ingest consumes sensor telemetry from the MQTT broker.
//
// Field devices publish JSON samples to sensorhub/sensors/{id}/data. The
// ingest service subscribes to the wildcard pattern, validates each
// sample through the coordinator (which verifies the sensor's identity
// before touching the cache), and optionally fans accepted samples out
// to live WebSocket subscribers.
//
// Messages that cannot be parsed, or that reference unknown sensors, are
// logged and dropped. MQTT QoS 1 gives at-least-once delivery from the
// broker; the cache write is idempotent so duplicates are harmless.
package ingest
