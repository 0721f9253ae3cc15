// Package mqtt provides MQTT client connectivity for SensorHub Core.
//
// This package manages:
//   - Connection to Mosquitto broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// SensorHub uses MQTT as the ingest path for sensor telemetry. Field
// devices publish samples to per-sensor topics; the Core subscribes to
// the wildcard pattern and fans samples into the telemetry cache.
//
//	Sensors -> MQTT Broker -> SensorHub Core -> stores
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Performance Characteristics
//
//   - Connection: <1 second to local broker
//   - Publish latency: <10ms for QoS 1 to local broker
//   - Reconnect: Exponential backoff 1s-60s with jitter
//   - Message throughput: Broker-limited (typically 10K+ msg/sec)
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Subscribe to all sensor telemetry
//	err = client.Subscribe(mqtt.Topics{}.AllSensorTelemetry(), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	// Publish a sample
//	topic := mqtt.Topics{}.SensorTelemetry("42")
//	client.Publish(topic, []byte(`{"temperature":21.5}`), 1, false)
package mqtt
