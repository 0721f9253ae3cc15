// Package influxdb provides InfluxDB connectivity for SensorHub Core.
//
// It wraps the official influxdb-client-go v2 library with SensorHub-specific
// patterns for connection management, metric writing, and health monitoring.
//
// # Purpose
//
// This package handles long-term archival of telemetry that would otherwise
// only live in the volatile cache:
//   - Per-sensor readings (temperature, humidity, velocity, battery)
//   - Complete telemetry samples correlated by timestamp
//
// # Usage
//
//	cfg := config.InfluxDBConfig{
//	    URL:    "http://localhost:8086",
//	    Token:  "your-token",
//	    Org:    "sensorhub",
//	    Bucket: "telemetry",
//	}
//
//	client, err := influxdb.Connect(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Archive a reading
//	client.WriteSensorMetric("42", "temperature", 21.5)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are logged via a callback.
// Connection and health check errors are returned directly.
//
// # Performance
//
// Writes are batched according to config.yaml settings (batch_size, flush_interval).
// This reduces network overhead for high-frequency telemetry data.
package influxdb
