package mqtt

import "fmt"

// Topic prefixes for the SensorHub MQTT hierarchy.
//
// Sensor topics use the scheme: sensorhub/sensors/{sensor_id}/{suffix}
const (
	// TopicPrefix is the base for all SensorHub topics.
	TopicPrefix = "sensorhub"

	// TopicPrefixSensors is the base for per-sensor topics.
	TopicPrefixSensors = "sensorhub/sensors"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "sensorhub/system"
)

// Topics provides builders for SensorHub MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	dataTopic := topics.SensorTelemetry("42")
//	// Returns: "sensorhub/sensors/42/data"
type Topics struct{}

// =============================================================================
// Sensor Topics
// =============================================================================

// SensorTelemetry returns the topic carrying telemetry samples for a sensor.
//
// Example: sensorhub/sensors/42/data
func (Topics) SensorTelemetry(sensorID string) string {
	return fmt.Sprintf("%s/%s/data", TopicPrefixSensors, sensorID)
}

// SensorStatus returns the topic carrying lifecycle status for a sensor.
//
// Example: sensorhub/sensors/42/status
func (Topics) SensorStatus(sensorID string) string {
	return fmt.Sprintf("%s/%s/status", TopicPrefixSensors, sensorID)
}

// SensorRegistered returns the topic announcing a newly registered sensor.
//
// Example: sensorhub/sensors/42/registered
func (Topics) SensorRegistered(sensorID string) string {
	return fmt.Sprintf("%s/%s/registered", TopicPrefixSensors, sensorID)
}

// =============================================================================
// System Topics
// =============================================================================

// SystemStatus returns the system status topic. Used for the LWT.
//
// Example: sensorhub/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// SystemShutdown returns the shutdown signal topic.
//
// Example: sensorhub/system/shutdown
func (Topics) SystemShutdown() string {
	return fmt.Sprintf("%s/shutdown", TopicPrefixSystem)
}

// =============================================================================
// Wildcard Patterns for Subscriptions
// =============================================================================

// AllSensorTelemetry returns a pattern matching telemetry from every sensor.
//
// Pattern: sensorhub/sensors/+/data
func (Topics) AllSensorTelemetry() string {
	return fmt.Sprintf("%s/+/data", TopicPrefixSensors)
}

// AllSensorStatus returns a pattern matching status updates from every sensor.
//
// Pattern: sensorhub/sensors/+/status
func (Topics) AllSensorStatus() string {
	return fmt.Sprintf("%s/+/status", TopicPrefixSensors)
}

// AllTopics returns a pattern matching all SensorHub topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: sensorhub/#
func (Topics) AllTopics() string {
	return "sensorhub/#"
}
