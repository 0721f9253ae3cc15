package sensor

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"
)

// Logger defines the logging interface used by the Coordinator.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Archiver receives telemetry samples for long-term storage.
// Implementations must be non-blocking; archiving is fire-and-forget.
type Archiver interface {
	WriteTelemetrySample(sensorID string, fields map[string]interface{}, at time.Time)
}

// findNearWorkers bounds the concurrent identity/telemetry lookups during
// proximity search. Lookups are independent point reads; a small pool
// keeps store load predictable at larger candidate counts.
const findNearWorkers = 4

// Coordinator orchestrates the three sensor stores. It owns no persistent
// state and performs no cross-request coordination: each call runs its
// steps sequentially (except the proximity-search fan-out) and surfaces
// the first failing step with store attribution.
//
// There are no cross-store transactions. Registration writes identity
// first, then the document; deletion removes cache, then document, then
// identity. A failure mid-sequence leaves the earlier writes in place and
// the caller decides whether to retry the remaining steps. Every step is
// idempotent so partial retries are safe.
type Coordinator struct {
	identities IdentityRepository
	documents  DocumentRepository
	telemetry  TelemetryRepository

	// archive is optional; nil disables archival.
	archive Archiver

	logger Logger
}

// NewCoordinator creates a coordinator over the three store adapters.
func NewCoordinator(identities IdentityRepository, documents DocumentRepository, telemetry TelemetryRepository) *Coordinator {
	return &Coordinator{
		identities: identities,
		documents:  documents,
		telemetry:  telemetry,
		logger:     noopLogger{},
	}
}

// SetLogger sets the logger for the coordinator.
func (c *Coordinator) SetLogger(logger Logger) {
	c.logger = logger
}

// SetArchiver enables telemetry archival. Samples accepted by
// RecordTelemetry are additionally forwarded to the archiver.
func (c *Coordinator) SetArchiver(archive Archiver) {
	c.archive = archive
}

// Register creates a new sensor across the identity and document stores.
//
// The identity write is authoritative: once it succeeds the sensor exists
// even if the document write fails afterwards. No rollback is attempted;
// a failed document write leaves an orphaned identity and the caller may
// retry by re-registering (the document upsert is idempotent).
func (c *Coordinator) Register(ctx context.Context, spec *RegistrationSpec) (*Identity, error) {
	if err := ValidateRegistration(spec); err != nil {
		return nil, err
	}

	existing, err := c.identities.GetByName(ctx, spec.Name)
	if err != nil {
		return nil, newStoreError(StoreIdentity, "check name", err)
	}
	if existing != nil {
		return nil, ErrConflict
	}

	identity, err := c.identities.Create(ctx, spec.Name)
	if err != nil {
		return nil, newStoreError(StoreIdentity, "create", err)
	}

	doc := spec.Document(identity.ID)
	if err := c.documents.Upsert(ctx, &doc); err != nil {
		// Identity already committed; surface the gap rather than roll back.
		c.logger.Error("document write failed after identity create, orphaned identity remains",
			"id", identity.ID, "name", identity.Name, "error", err)
		return nil, newStoreError(StoreDocument, "upsert", err)
	}

	c.logger.Info("sensor registered", "id", identity.ID, "name", identity.Name)
	return identity, nil
}

// Get retrieves a sensor's identity record.
// Returns ErrNotFound if the sensor does not exist.
func (c *Coordinator) Get(ctx context.Context, id int64) (*Identity, error) {
	identity, err := c.identities.GetByID(ctx, id)
	if err != nil {
		return nil, newStoreError(StoreIdentity, "get", err)
	}
	return identity, nil
}

// List retrieves identity records bounded by offset/limit.
func (c *Coordinator) List(ctx context.Context, offset, limit int) ([]Identity, error) {
	identities, err := c.identities.List(ctx, offset, limit)
	if err != nil {
		return nil, newStoreError(StoreIdentity, "list", err)
	}
	return identities, nil
}

// RecordTelemetry writes the latest sample for a sensor.
//
// The sensor must exist in the identity store; the cache itself has no
// notion of sensor existence.
func (c *Coordinator) RecordTelemetry(ctx context.Context, id int64, sample *Telemetry) error {
	if err := ValidateTelemetry(sample); err != nil {
		return err
	}

	if _, err := c.identities.GetByID(ctx, id); err != nil {
		return newStoreError(StoreIdentity, "get", err)
	}

	if err := c.telemetry.Write(ctx, id, sample); err != nil {
		return newStoreError(StoreTelemetry, "write", err)
	}

	if c.archive != nil {
		c.archive.WriteTelemetrySample(formatSensorID(id), sample.Fields(), sample.LastSeen)
	}

	c.logger.Debug("telemetry recorded", "id", id)
	return nil
}

// GetTelemetry reads the latest sample for a sensor, enriched with
// identity fields when the identity store is reachable.
//
// A missing sample is fatal to the call (ErrNotFound). Identity
// enrichment is best-effort: a failed or empty identity lookup degrades
// IdentityStatus instead of failing the read.
func (c *Coordinator) GetTelemetry(ctx context.Context, id int64) (*TelemetryView, error) {
	sample, err := c.telemetry.Read(ctx, id)
	if err != nil {
		return nil, newStoreError(StoreTelemetry, "read", err)
	}

	view := &TelemetryView{Telemetry: *sample}

	identity, err := c.identities.GetByID(ctx, id)
	switch {
	case err == nil:
		view.ID = identity.ID
		view.Name = identity.Name
		view.IdentityStatus = JoinPresent
	case errors.Is(err, ErrNotFound):
		view.IdentityStatus = JoinAbsent
	default:
		c.logger.Warn("identity enrichment failed", "id", id, "error", err)
		view.IdentityStatus = JoinFailed
	}

	return view, nil
}

// Delete removes a sensor from all three stores.
//
// Order is cache, then document, then identity: least authoritative data
// first, so a retry after partial failure never re-deletes an identity
// whose satellites are already gone. The first failing step aborts the
// call with an error attributing the failing store; earlier deletions are
// not compensated. Returns the deleted identity record on full success.
func (c *Coordinator) Delete(ctx context.Context, id int64) (*Identity, error) {
	if _, err := c.identities.GetByID(ctx, id); err != nil {
		return nil, newStoreError(StoreIdentity, "get", err)
	}

	if err := c.telemetry.Delete(ctx, id); err != nil {
		return nil, newStoreError(StoreTelemetry, "delete", err)
	}

	if err := c.documents.Delete(ctx, id); err != nil {
		return nil, newStoreError(StoreDocument, "delete", err)
	}

	identity, err := c.identities.Delete(ctx, id)
	if err != nil {
		return nil, newStoreError(StoreIdentity, "delete", err)
	}

	c.logger.Info("sensor deleted", "id", id, "name", identity.Name)
	return identity, nil
}

// FindNear returns composite views for all sensors within radiusMeters of
// the given point, ordered nearest-first.
//
// Candidates come from a geospatial query against the document store.
// Each candidate is then joined against the identity store and telemetry
// cache. The per-candidate lookups fan out across a bounded worker pool;
// results are written into position-addressed slots so the nearest-first
// ordering from the index survives the concurrency.
//
// Join semantics per candidate:
//   - identity absent: candidate is dropped (documents can outlive their
//     identity; such drift is not an error)
//   - identity lookup failed: candidate is dropped and the failure logged
//   - telemetry absent or failed: candidate is kept with the
//     corresponding TelemetryStatus and no telemetry fields
//
// Zero nearby sensors yields an empty slice, never an error.
func (c *Coordinator) FindNear(ctx context.Context, latitude, longitude, radiusMeters float64) ([]CompositeView, error) {
	if err := ValidateCoordinates(longitude, latitude); err != nil {
		return nil, err
	}

	if err := c.documents.EnsureGeoIndex(ctx); err != nil {
		return nil, newStoreError(StoreDocument, "ensure index", err)
	}

	docs, err := c.documents.FindNear(ctx, longitude, latitude, radiusMeters)
	if err != nil {
		return nil, newStoreError(StoreDocument, "find near", err)
	}
	if len(docs) == 0 {
		return []CompositeView{}, nil
	}

	// Slot per candidate; nil slots (dropped candidates) are compacted
	// afterwards without disturbing relative order.
	slots := make([]*CompositeView, len(docs))

	var wg sync.WaitGroup
	sem := make(chan struct{}, findNearWorkers)
	for i := range docs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			slots[i] = c.joinCandidate(ctx, &docs[i])
		}(i)
	}
	wg.Wait()

	views := make([]CompositeView, 0, len(docs))
	for _, slot := range slots {
		if slot != nil {
			views = append(views, *slot)
		}
	}
	return views, nil
}

// formatSensorID renders an id the way external systems (archive tags,
// MQTT topics) expect it.
func formatSensorID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// joinCandidate builds the composite view for one proximity hit.
// Returns nil when the candidate has no usable identity.
func (c *Coordinator) joinCandidate(ctx context.Context, doc *Document) *CompositeView {
	identity, err := c.identities.GetByID(ctx, doc.SensorID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.logger.Debug("document without identity skipped", "id", doc.SensorID)
		} else {
			c.logger.Warn("identity lookup failed during proximity join", "id", doc.SensorID, "error", err)
		}
		return nil
	}

	view := &CompositeView{
		ID:        identity.ID,
		Name:      identity.Name,
		CreatedAt: identity.CreatedAt,
		Longitude: doc.Location.Longitude(),
		Latitude:  doc.Location.Latitude(),
	}

	sample, err := c.telemetry.Read(ctx, doc.SensorID)
	switch {
	case err == nil:
		view.Telemetry = sample
		view.TelemetryStatus = JoinPresent
	case errors.Is(err, ErrNotFound):
		view.TelemetryStatus = JoinAbsent
	default:
		c.logger.Warn("telemetry lookup failed during proximity join", "id", doc.SensorID, "error", err)
		view.TelemetryStatus = JoinFailed
	}

	return view
}
