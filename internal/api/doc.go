// Package api implements the HTTP REST API and WebSocket server for SensorHub.
//
// This package provides:
//   - REST endpoints for sensor registration, lookup, deletion, and
//     proximity search
//   - Telemetry read/write endpoints backed by the cache store
//   - WebSocket hub for live telemetry broadcasts
//   - Middleware stack (request ID, logging, recovery, CORS, body limits)
//   - TLS support for production deployments
//
// # Architecture
//
// The API server sits in front of the sensor coordinator, which fans out to
// the identity, document, and telemetry stores. Samples arriving over MQTT
// reach WebSocket subscribers through the shared hub, so a dashboard sees
// the same stream whether data was posted over HTTP or published by a
// device.
//
// # Graceful Degradation
//
// The server reports, rather than hides, backing-store failures: a request
// that needs an unavailable store returns 503 with the failing store named
// in the response body.
package api
