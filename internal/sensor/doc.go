// Package sensor provides the cross-store coordination core for SensorHub.
//
// A sensor lives in three independently-failing stores at once: the
// relational identity store (authoritative existence and name), the
// document store (device attributes and geospatial location), and the
// telemetry cache (latest sample only). No shared transaction boundary
// exists across them; the Coordinator is the sole guarantor of their
// relationship.
//
// # Architecture
//
//	┌──────────────────────────────────────────────────────────────────┐
//	│                         Coordinator                               │
//	│                       (coordinator.go)                            │
//	│                                                                   │
//	│  • register: identity create, then document upsert                │
//	│  • delete: cache, then document, then identity                    │
//	│  • telemetry read/write against the cache                         │
//	│  • proximity search with per-candidate identity/telemetry join    │
//	└───────┬───────────────────────┬───────────────────────┬──────────┘
//	        │                       │                       │
//	        ▼                       ▼                       ▼
//	┌───────────────┐      ┌────────────────┐      ┌────────────────┐
//	│ IdentityRepo  │      │ DocumentRepo   │      │ TelemetryRepo  │
//	│ (SQLite)      │      │ (MongoDB)      │      │ (Redis)        │
//	└───────────────┘      └────────────────┘      └────────────────┘
//
// # Key Types
//
//   - Identity: the authoritative relational record for a sensor
//   - Document: device attributes plus GeoJSON location, keyed by id_sensor
//   - Telemetry: the single most recent sample, keyed sensor:<id>:data
//   - CompositeView: per-request merge of identity, location, telemetry
//   - StoreError: attributes a failure to a specific backing store
//
// # Consistency Contract
//
// Multi-step operations are not atomic. Registration commits the identity
// before the document; deletion removes cache, then document, then
// identity. The first failing step aborts with store attribution and no
// compensation of earlier steps. Each step is idempotent so callers can
// retry the remainder safely.
//
// # Usage
//
//	identities := sensor.NewSQLiteIdentityRepository(db)
//	documents := sensor.NewMongoDocumentRepository(mongoClient.Collection())
//	telemetry := sensor.NewRedisTelemetryRepository(redisClient.Redis())
//
//	coord := sensor.NewCoordinator(identities, documents, telemetry)
//	coord.SetLogger(log)
//
//	identity, err := coord.Register(ctx, &sensor.RegistrationSpec{
//	    Name:      "rooftop-temp",
//	    Longitude: -3.70,
//	    Latitude:  40.41,
//	    Type:      "temp",
//	})
//
//	views, err := coord.FindNear(ctx, 40.41, -3.70, 1000)
//
// # Thread Safety
//
// The Coordinator holds no mutable state; all methods are safe for
// concurrent use provided the injected repositories are.
package sensor
