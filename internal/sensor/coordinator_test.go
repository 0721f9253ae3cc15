package sensor

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"
	"testing"
	"time"
)

// MockIdentityRepository is a test implementation of IdentityRepository.
type MockIdentityRepository struct {
	mu         sync.Mutex
	seq        int64
	identities map[int64]*Identity
	// For testing error paths
	getErr    error
	nameErr   error
	createErr error
	deleteErr error
	listErr   error
}

func NewMockIdentityRepository() *MockIdentityRepository {
	return &MockIdentityRepository{identities: make(map[int64]*Identity)}
}

func (m *MockIdentityRepository) GetByID(_ context.Context, id int64) (*Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if identity, ok := m.identities[id]; ok {
		cpy := *identity
		return &cpy, nil
	}
	return nil, ErrNotFound
}

func (m *MockIdentityRepository) GetByName(_ context.Context, name string) (*Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.nameErr != nil {
		return nil, m.nameErr
	}
	for _, identity := range m.identities {
		if identity.Name == name {
			cpy := *identity
			return &cpy, nil
		}
	}
	return nil, nil
}

func (m *MockIdentityRepository) List(_ context.Context, offset, limit int) ([]Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	all := make([]Identity, 0, len(m.identities))
	for _, identity := range m.identities {
		all = append(all, *identity)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	if offset >= len(all) {
		return []Identity{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *MockIdentityRepository) Create(_ context.Context, name string) (*Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	for _, identity := range m.identities {
		if identity.Name == name {
			return nil, ErrConflict
		}
	}
	m.seq++
	identity := &Identity{ID: m.seq, Name: name, CreatedAt: time.Now().UTC()}
	m.identities[identity.ID] = identity
	cpy := *identity
	return &cpy, nil
}

func (m *MockIdentityRepository) Delete(_ context.Context, id int64) (*Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return nil, m.deleteErr
	}
	identity, ok := m.identities[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(m.identities, id)
	cpy := *identity
	return &cpy, nil
}

// MockDocumentRepository is a test implementation of DocumentRepository.
// FindNear orders by straight-line distance so ordering assertions hold.
type MockDocumentRepository struct {
	mu         sync.Mutex
	docs       map[int64]Document
	indexCalls int
	// For testing error paths
	upsertErr error
	deleteErr error
	indexErr  error
	findErr   error
}

func NewMockDocumentRepository() *MockDocumentRepository {
	return &MockDocumentRepository{docs: make(map[int64]Document)}
}

func (m *MockDocumentRepository) Upsert(_ context.Context, doc *Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.docs[doc.SensorID] = *doc
	return nil
}

func (m *MockDocumentRepository) Delete(_ context.Context, sensorID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.docs, sensorID)
	return nil
}

func (m *MockDocumentRepository) EnsureGeoIndex(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.indexErr != nil {
		return m.indexErr
	}
	m.indexCalls++
	return nil
}

// metersPerDegree approximates geodesic distance near the equator, close
// enough for test geometry.
const metersPerDegree = 111320.0

func (m *MockDocumentRepository) FindNear(_ context.Context, longitude, latitude, maxDistanceMeters float64) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}

	type hit struct {
		doc      Document
		distance float64
	}
	hits := make([]hit, 0, len(m.docs))
	for _, doc := range m.docs {
		dLon := (doc.Location.Longitude() - longitude) * metersPerDegree
		dLat := (doc.Location.Latitude() - latitude) * metersPerDegree
		distance := math.Sqrt(dLon*dLon + dLat*dLat)
		if distance <= maxDistanceMeters {
			hits = append(hits, hit{doc: doc, distance: distance})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].distance < hits[j].distance })

	docs := make([]Document, len(hits))
	for i, h := range hits {
		docs[i] = h.doc
	}
	return docs, nil
}

// MockTelemetryRepository is a test implementation of TelemetryRepository.
type MockTelemetryRepository struct {
	mu      sync.Mutex
	samples map[int64]*Telemetry
	// For testing error paths
	writeErr  error
	readErr   error
	deleteErr error
}

func NewMockTelemetryRepository() *MockTelemetryRepository {
	return &MockTelemetryRepository{samples: make(map[int64]*Telemetry)}
}

func (m *MockTelemetryRepository) Write(_ context.Context, sensorID int64, sample *Telemetry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	cpy := *sample
	m.samples[sensorID] = &cpy
	return nil
}

func (m *MockTelemetryRepository) Read(_ context.Context, sensorID int64) (*Telemetry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	sample, ok := m.samples[sensorID]
	if !ok {
		return nil, ErrNotFound
	}
	cpy := *sample
	return &cpy, nil
}

func (m *MockTelemetryRepository) Delete(_ context.Context, sensorID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.samples, sensorID)
	return nil
}

// mockArchiver records archived samples.
type mockArchiver struct {
	mu      sync.Mutex
	sensors []string
}

func (a *mockArchiver) WriteTelemetrySample(sensorID string, _ map[string]interface{}, _ time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sensors = append(a.sensors, sensorID)
}

// testFixture bundles a coordinator with its mocks.
type testFixture struct {
	coord      *Coordinator
	identities *MockIdentityRepository
	documents  *MockDocumentRepository
	telemetry  *MockTelemetryRepository
}

func newFixture() *testFixture {
	f := &testFixture{
		identities: NewMockIdentityRepository(),
		documents:  NewMockDocumentRepository(),
		telemetry:  NewMockTelemetryRepository(),
	}
	f.coord = NewCoordinator(f.identities, f.documents, f.telemetry)
	return f
}

func testSpec(name string) *RegistrationSpec {
	return &RegistrationSpec{
		Name:            name,
		Longitude:       -3.70,
		Latitude:        40.41,
		Type:            "temp",
		MACAddress:      "AA:BB",
		Manufacturer:    "Acme",
		Model:           "T1",
		SerieNumber:     "001",
		FirmwareVersion: "1.0",
	}
}

func floatPtr(v float64) *float64 { return &v }

// =============================================================================
// Register Tests
// =============================================================================

func TestRegister(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	identity, err := f.coord.Register(ctx, testSpec("s1"))
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if identity.ID != 1 || identity.Name != "s1" {
		t.Errorf("Register() = %+v, want id=1 name=s1", identity)
	}

	doc, ok := f.documents.docs[identity.ID]
	if !ok {
		t.Fatal("Register() created no document")
	}
	if doc.Location.Longitude() != -3.70 || doc.Location.Latitude() != 40.41 {
		t.Errorf("document location = %v, want [-3.70, 40.41]", doc.Location.Coordinates)
	}
	if doc.MACAddress != "AA:BB" || doc.FirmwareVersion != "1.0" {
		t.Errorf("document attributes = %+v, want spec attributes", doc)
	}
}

func TestRegister_DuplicateName(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.coord.Register(ctx, testSpec("dup")); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}

	_, err := f.coord.Register(ctx, testSpec("dup"))
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("second Register() error = %v, want ErrConflict", err)
	}

	// No document may exist for the rejected attempt
	if len(f.documents.docs) != 1 {
		t.Errorf("document count = %d after rejected register, want 1", len(f.documents.docs))
	}
}

func TestRegister_DocumentFailure(t *testing.T) {
	f := newFixture()
	f.documents.upsertErr = errors.New("mongo down")
	ctx := context.Background()

	_, err := f.coord.Register(ctx, testSpec("orphan"))
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("Register() error = %v, want ErrStoreUnavailable", err)
	}
	if FailingStore(err) != StoreDocument {
		t.Errorf("FailingStore() = %q, want document", FailingStore(err))
	}

	// Identity write is authoritative: the orphan remains
	if got, _ := f.identities.GetByName(ctx, "orphan"); got == nil {
		t.Error("identity rolled back; registration should not compensate")
	}
}

func TestRegister_InvalidSpec(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	tests := []struct {
		name    string
		modify  func(*RegistrationSpec)
		wantErr error
	}{
		{name: "empty name", modify: func(s *RegistrationSpec) { s.Name = "  " }, wantErr: ErrInvalidName},
		{name: "longitude too big", modify: func(s *RegistrationSpec) { s.Longitude = 181 }, wantErr: ErrInvalidCoordinates},
		{name: "latitude too small", modify: func(s *RegistrationSpec) { s.Latitude = -91 }, wantErr: ErrInvalidCoordinates},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := testSpec("valid")
			tt.modify(spec)
			_, err := f.coord.Register(ctx, spec)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// =============================================================================
// Get / List Tests
// =============================================================================

func TestGet(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.coord.Register(ctx, testSpec("g1"))
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	got, err := f.coord.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("Get() id = %d, want %d", got.ID, created.ID)
	}
}

func TestGet_NotFound(t *testing.T) {
	f := newFixture()

	_, err := f.coord.Get(context.Background(), 404)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestListSensors(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for _, name := range []string{"l1", "l2", "l3"} {
		if _, err := f.coord.Register(ctx, testSpec(name)); err != nil {
			t.Fatalf("Register(%s) error = %v", name, err)
		}
	}

	got, err := f.coord.List(ctx, 1, 10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("List() count = %d, want 2", len(got))
	}
	if got[0].Name != "l2" {
		t.Errorf("List() first = %q, want l2", got[0].Name)
	}
}

// =============================================================================
// Telemetry Tests
// =============================================================================

func TestRecordTelemetry(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	identity, err := f.coord.Register(ctx, testSpec("t1"))
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	sample := &Telemetry{
		Temperature: floatPtr(21.5),
		Humidity:    floatPtr(40),
		LastSeen:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := f.coord.RecordTelemetry(ctx, identity.ID, sample); err != nil {
		t.Fatalf("RecordTelemetry() error = %v", err)
	}

	// Write-then-read consistency
	view, err := f.coord.GetTelemetry(ctx, identity.ID)
	if err != nil {
		t.Fatalf("GetTelemetry() error = %v", err)
	}
	if view.Telemetry.Temperature == nil || *view.Telemetry.Temperature != 21.5 {
		t.Errorf("telemetry temperature = %v, want 21.5", view.Telemetry.Temperature)
	}
	if !view.Telemetry.LastSeen.Equal(sample.LastSeen) {
		t.Errorf("telemetry last_seen = %v, want %v", view.Telemetry.LastSeen, sample.LastSeen)
	}
	if view.ID != identity.ID || view.Name != "t1" {
		t.Errorf("view identity = %d/%q, want %d/t1", view.ID, view.Name, identity.ID)
	}
	if view.IdentityStatus != JoinPresent {
		t.Errorf("IdentityStatus = %q, want present", view.IdentityStatus)
	}
}

func TestRecordTelemetry_UnknownSensor(t *testing.T) {
	f := newFixture()

	err := f.coord.RecordTelemetry(context.Background(), 99, &Telemetry{LastSeen: time.Now()})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("RecordTelemetry() error = %v, want ErrNotFound", err)
	}
}

func TestRecordTelemetry_CacheFailure(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	identity, err := f.coord.Register(ctx, testSpec("t2"))
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	f.telemetry.writeErr = errors.New("redis down")
	err = f.coord.RecordTelemetry(ctx, identity.ID, &Telemetry{LastSeen: time.Now()})
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("RecordTelemetry() error = %v, want ErrStoreUnavailable", err)
	}
	if FailingStore(err) != StoreTelemetry {
		t.Errorf("FailingStore() = %q, want telemetry", FailingStore(err))
	}
}

func TestRecordTelemetry_Archived(t *testing.T) {
	f := newFixture()
	archive := &mockArchiver{}
	f.coord.SetArchiver(archive)
	ctx := context.Background()

	identity, err := f.coord.Register(ctx, testSpec("t3"))
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := f.coord.RecordTelemetry(ctx, identity.ID, &Telemetry{Temperature: floatPtr(19), LastSeen: time.Now()}); err != nil {
		t.Fatalf("RecordTelemetry() error = %v", err)
	}

	archive.mu.Lock()
	defer archive.mu.Unlock()
	if len(archive.sensors) != 1 || archive.sensors[0] != "1" {
		t.Errorf("archived sensors = %v, want [1]", archive.sensors)
	}
}

func TestGetTelemetry_NoSample(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	identity, err := f.coord.Register(ctx, testSpec("quiet"))
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// Identity exists but no telemetry was ever written
	_, err = f.coord.GetTelemetry(ctx, identity.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetTelemetry() error = %v, want ErrNotFound", err)
	}
}

func TestGetTelemetry_IdentityEnrichmentBestEffort(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// Telemetry exists for an id the identity store never heard of
	if err := f.telemetry.Write(ctx, 7, &Telemetry{LastSeen: time.Now()}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	view, err := f.coord.GetTelemetry(ctx, 7)
	if err != nil {
		t.Fatalf("GetTelemetry() error = %v", err)
	}
	if view.IdentityStatus != JoinAbsent {
		t.Errorf("IdentityStatus = %q, want absent", view.IdentityStatus)
	}

	// An unreachable identity store degrades, not fails
	f.identities.getErr = errors.New("sqlite locked")
	view, err = f.coord.GetTelemetry(ctx, 7)
	if err != nil {
		t.Fatalf("GetTelemetry() with identity outage error = %v", err)
	}
	if view.IdentityStatus != JoinFailed {
		t.Errorf("IdentityStatus = %q, want failed", view.IdentityStatus)
	}
}

// =============================================================================
// Delete Tests
// =============================================================================

func TestDeleteSensor(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	identity, err := f.coord.Register(ctx, testSpec("d1"))
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := f.coord.RecordTelemetry(ctx, identity.ID, &Telemetry{LastSeen: time.Now()}); err != nil {
		t.Fatalf("RecordTelemetry() error = %v", err)
	}

	deleted, err := f.coord.Delete(ctx, identity.ID)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if deleted.ID != identity.ID || deleted.Name != "d1" {
		t.Errorf("Delete() = %+v, want the deleted identity", deleted)
	}

	if _, err := f.coord.Get(ctx, identity.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
	if _, err := f.coord.GetTelemetry(ctx, identity.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetTelemetry() after delete error = %v, want ErrNotFound", err)
	}

	views, err := f.coord.FindNear(ctx, 40.41, -3.70, 1000)
	if err != nil {
		t.Fatalf("FindNear() after delete error = %v", err)
	}
	if len(views) != 0 {
		t.Errorf("FindNear() after delete = %d views, want 0", len(views))
	}
}

func TestDeleteSensor_NotFound(t *testing.T) {
	f := newFixture()

	_, err := f.coord.Delete(context.Background(), 404)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

func TestDeleteSensor_CacheFailureAborts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	identity, err := f.coord.Register(ctx, testSpec("d2"))
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	f.telemetry.deleteErr = errors.New("redis down")
	_, err = f.coord.Delete(ctx, identity.ID)
	if FailingStore(err) != StoreTelemetry {
		t.Fatalf("FailingStore() = %q, want telemetry", FailingStore(err))
	}

	// Later steps must not have run: document and identity survive
	if _, ok := f.documents.docs[identity.ID]; !ok {
		t.Error("document deleted despite cache failure")
	}
	if _, err := f.coord.Get(ctx, identity.ID); err != nil {
		t.Errorf("identity gone despite cache failure: %v", err)
	}
}

func TestDeleteSensor_DocumentFailureAborts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	identity, err := f.coord.Register(ctx, testSpec("d3"))
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	f.documents.deleteErr = errors.New("mongo down")
	_, err = f.coord.Delete(ctx, identity.ID)
	if FailingStore(err) != StoreDocument {
		t.Fatalf("FailingStore() = %q, want document", FailingStore(err))
	}

	// Identity must survive a document-store failure
	if _, err := f.coord.Get(ctx, identity.ID); err != nil {
		t.Errorf("identity gone despite document failure: %v", err)
	}
}

// =============================================================================
// FindNear Tests
// =============================================================================

func TestFindNear(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// Three sensors at increasing distance from the query point
	near := testSpec("near")
	mid := testSpec("mid")
	mid.Longitude = -3.705
	far := testSpec("far")
	far.Longitude = -3.71

	// Register out of distance order to prove sorting comes from the query
	for _, spec := range []*RegistrationSpec{far, near, mid} {
		if _, err := f.coord.Register(ctx, spec); err != nil {
			t.Fatalf("Register(%s) error = %v", spec.Name, err)
		}
	}

	views, err := f.coord.FindNear(ctx, 40.41, -3.70, 5000)
	if err != nil {
		t.Fatalf("FindNear() error = %v", err)
	}
	if len(views) != 3 {
		t.Fatalf("FindNear() count = %d, want 3", len(views))
	}
	for i, want := range []string{"near", "mid", "far"} {
		if views[i].Name != want {
			t.Errorf("views[%d].Name = %q, want %q (nearest-first order)", i, views[i].Name, want)
		}
	}
	if f.documents.indexCalls == 0 {
		t.Error("FindNear() never ensured the geo index")
	}
}

func TestFindNear_CompositeMerge(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	identity, err := f.coord.Register(ctx, testSpec("s1"))
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	sample := &Telemetry{
		Temperature:  floatPtr(21.5),
		Humidity:     floatPtr(40),
		BatteryLevel: floatPtr(90),
		Velocity:     floatPtr(0),
		LastSeen:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := f.coord.RecordTelemetry(ctx, identity.ID, sample); err != nil {
		t.Fatalf("RecordTelemetry() error = %v", err)
	}

	views, err := f.coord.FindNear(ctx, 40.41, -3.70, 1000)
	if err != nil {
		t.Fatalf("FindNear() error = %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("FindNear() count = %d, want 1", len(views))
	}

	view := views[0]
	if view.ID != 1 || view.Name != "s1" {
		t.Errorf("view identity = %d/%q, want 1/s1", view.ID, view.Name)
	}
	if view.Longitude != -3.70 || view.Latitude != 40.41 {
		t.Errorf("view location = %v/%v, want -3.70/40.41", view.Longitude, view.Latitude)
	}
	if view.TelemetryStatus != JoinPresent {
		t.Fatalf("TelemetryStatus = %q, want present", view.TelemetryStatus)
	}
	if *view.Telemetry.Temperature != 21.5 {
		t.Errorf("view temperature = %v, want 21.5", *view.Telemetry.Temperature)
	}
}

func TestFindNear_Empty(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.coord.Register(ctx, testSpec("lonely")); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// Query a point far away from the registered sensor
	views, err := f.coord.FindNear(ctx, 0, 0, 100)
	if err != nil {
		t.Fatalf("FindNear() error = %v, want empty result not error", err)
	}
	if len(views) != 0 {
		t.Errorf("FindNear() count = %d, want 0", len(views))
	}
}

func TestFindNear_SkipsOrphanedDocuments(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.coord.Register(ctx, testSpec("kept")); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// A document whose identity was never created (stores drifted)
	orphan := Document{SensorID: 99, Location: NewGeoPoint(-3.70, 40.41)}
	if err := f.documents.Upsert(ctx, &orphan); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	views, err := f.coord.FindNear(ctx, 40.41, -3.70, 1000)
	if err != nil {
		t.Fatalf("FindNear() error = %v", err)
	}
	if len(views) != 1 || views[0].Name != "kept" {
		t.Errorf("FindNear() = %+v, want only the sensor with an identity", views)
	}
}

func TestFindNear_TelemetryJoinStatus(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.coord.Register(ctx, testSpec("silent")); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// No telemetry ever written: known-absent, sensor still included
	views, err := f.coord.FindNear(ctx, 40.41, -3.70, 1000)
	if err != nil {
		t.Fatalf("FindNear() error = %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("FindNear() count = %d, want 1", len(views))
	}
	if views[0].TelemetryStatus != JoinAbsent {
		t.Fatalf("TelemetryStatus = %q, want absent", views[0].TelemetryStatus)
	}

	// Cache outage: lookup-failed, sensor still included
	f.telemetry.readErr = errors.New("redis down")
	views, err = f.coord.FindNear(ctx, 40.41, -3.70, 1000)
	if err != nil {
		t.Fatalf("FindNear() with cache outage error = %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("FindNear() count = %d, want 1", len(views))
	}
	if views[0].TelemetryStatus != JoinFailed {
		t.Fatalf("TelemetryStatus = %q, want failed", views[0].TelemetryStatus)
	}
}

func TestFindNear_DocumentStoreFailure(t *testing.T) {
	f := newFixture()
	f.documents.findErr = errors.New("mongo down")

	_, err := f.coord.FindNear(context.Background(), 40.41, -3.70, 1000)
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("FindNear() error = %v, want ErrStoreUnavailable", err)
	}
	if FailingStore(err) != StoreDocument {
		t.Errorf("FailingStore() = %q, want document", FailingStore(err))
	}
}

// =============================================================================
// End-to-End Scenario
// =============================================================================

func TestRegisterRecordFindScenario(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	identity, err := f.coord.Register(ctx, &RegistrationSpec{
		Name:            "s1",
		Longitude:       -3.70,
		Latitude:        40.41,
		Type:            "temp",
		MACAddress:      "AA:BB",
		Manufacturer:    "Acme",
		Model:           "T1",
		SerieNumber:     "001",
		FirmwareVersion: "1.0",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if identity.ID != 1 || identity.Name != "s1" {
		t.Fatalf("Register() = %+v, want id=1 name=s1", identity)
	}

	err = f.coord.RecordTelemetry(ctx, 1, &Telemetry{
		Temperature:  floatPtr(21.5),
		Humidity:     floatPtr(40),
		BatteryLevel: floatPtr(90),
		Velocity:     floatPtr(0),
		LastSeen:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("RecordTelemetry() error = %v", err)
	}

	views, err := f.coord.FindNear(ctx, 40.41, -3.70, 1000)
	if err != nil {
		t.Fatalf("FindNear() error = %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("FindNear() count = %d, want 1", len(views))
	}
	view := views[0]
	if view.ID != 1 || view.Name != "s1" {
		t.Errorf("view = %d/%q, want 1/s1", view.ID, view.Name)
	}
	if view.Telemetry == nil || *view.Telemetry.Temperature != 21.5 {
		t.Errorf("view temperature missing or wrong, want 21.5")
	}
}
