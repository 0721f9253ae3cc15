package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteSensorMetric writes a single sensor measurement to InfluxDB.
//
// This is the primary method for archiving individual telemetry readings.
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - sensorID: Unique identifier for the sensor (e.g., "42")
//   - metric: The metric name (e.g., "temperature", "humidity")
//   - value: The numeric value to record
//
// Example:
//
//	client.WriteSensorMetric("42", "temperature", 21.5)
//	client.WriteSensorMetric("42", "battery_level", 87.0)
func (c *Client) WriteSensorMetric(sensorID string, metric string, value float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"sensor_metrics",
		map[string]string{
			"sensor_id": sensorID,
			"metric":    metric,
		},
		map[string]interface{}{
			"value": value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteTelemetrySample archives a complete telemetry sample for a sensor.
//
// All fields of the sample land in a single point so queries can correlate
// readings taken at the same instant.
//
// Parameters:
//   - sensorID: Sensor identifier (tag, low cardinality)
//   - fields: Field name to value pairs (e.g., temperature, humidity)
//   - at: The sample timestamp (use the device-reported time when available)
func (c *Client) WriteTelemetrySample(sensorID string, fields map[string]interface{}, at time.Time) {
	if !c.IsConnected() {
		return
	}
	if len(fields) == 0 {
		return
	}

	point := write.NewPoint(
		"telemetry",
		map[string]string{
			"sensor_id": sensorID,
		},
		fields,
		at,
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
//
// Example:
//
//	client.WritePoint("system_stats",
//	    map[string]string{"host": "core-01"},
//	    map[string]interface{}{"cpu_percent": 45.2, "memory_mb": 512})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., delayed data).
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing
//   - fields: Key-value pairs for the data
//   - timestamp: The exact time for this data point
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
