package sensor

import "time"

// Identity represents the authoritative record of a sensor's existence.
// This matches the database schema in migrations/20260301_120000_initial_schema.up.sql.
//
// The integer ID is the global join key: the document store and telemetry
// cache both key their records by it.
type Identity struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// GeoPoint is a GeoJSON point. Coordinates are [longitude, latitude],
// matching the GeoJSON convention (longitude first).
type GeoPoint struct {
	Type        string     `json:"type" bson:"type"`
	Coordinates [2]float64 `json:"coordinates" bson:"coordinates"`
}

// NewGeoPoint builds a GeoJSON point from a longitude/latitude pair.
func NewGeoPoint(longitude, latitude float64) GeoPoint {
	return GeoPoint{
		Type:        "Point",
		Coordinates: [2]float64{longitude, latitude},
	}
}

// Longitude returns the first coordinate.
func (p GeoPoint) Longitude() float64 { return p.Coordinates[0] }

// Latitude returns the second coordinate.
func (p GeoPoint) Latitude() float64 { return p.Coordinates[1] }

// Document holds the semi-structured device attributes and location for
// a sensor. SensorID must equal an Identity ID; no store-level foreign key
// enforces this, the Coordinator is the sole guarantor.
type Document struct {
	SensorID        int64    `json:"id_sensor" bson:"id_sensor"`
	Location        GeoPoint `json:"location" bson:"location"`
	Type            string   `json:"type" bson:"type"`
	MACAddress      string   `json:"mac_address" bson:"mac_address"`
	Manufacturer    string   `json:"manufacturer" bson:"manufacturer"`
	Model           string   `json:"model" bson:"model"`
	SerieNumber     string   `json:"serie_number" bson:"serie_number"`
	FirmwareVersion string   `json:"firmware_version" bson:"firmware_version"`
}

// Telemetry is the latest measurement set for a sensor. Only LastSeen is
// required; the cache holds exactly one sample per sensor, overwritten on
// every write.
type Telemetry struct {
	Velocity     *float64  `json:"velocity,omitempty"`
	Temperature  *float64  `json:"temperature,omitempty"`
	Humidity     *float64  `json:"humidity,omitempty"`
	BatteryLevel *float64  `json:"battery_level,omitempty"`
	LastSeen     time.Time `json:"last_seen"`
}

// Fields returns the non-nil numeric readings keyed by field name.
// Used when archiving a sample to the time-series store.
func (t *Telemetry) Fields() map[string]interface{} {
	fields := make(map[string]interface{}, 4)
	if t.Velocity != nil {
		fields["velocity"] = *t.Velocity
	}
	if t.Temperature != nil {
		fields["temperature"] = *t.Temperature
	}
	if t.Humidity != nil {
		fields["humidity"] = *t.Humidity
	}
	if t.BatteryLevel != nil {
		fields["battery_level"] = *t.BatteryLevel
	}
	return fields
}

// RegistrationSpec carries everything needed to register a new sensor.
type RegistrationSpec struct {
	Name            string  `json:"name"`
	Longitude       float64 `json:"longitude"`
	Latitude        float64 `json:"latitude"`
	Type            string  `json:"type"`
	MACAddress      string  `json:"mac_address"`
	Manufacturer    string  `json:"manufacturer"`
	Model           string  `json:"model"`
	SerieNumber     string  `json:"serie_number"`
	FirmwareVersion string  `json:"firmware_version"`
}

// Document builds the companion document for a freshly allocated identity.
func (s *RegistrationSpec) Document(sensorID int64) Document {
	return Document{
		SensorID:        sensorID,
		Location:        NewGeoPoint(s.Longitude, s.Latitude),
		Type:            s.Type,
		MACAddress:      s.MACAddress,
		Manufacturer:    s.Manufacturer,
		Model:           s.Model,
		SerieNumber:     s.SerieNumber,
		FirmwareVersion: s.FirmwareVersion,
	}
}

// JoinStatus describes the outcome of a best-effort lookup during a join.
// Distinguishing "no data exists" from "the store could not be reached"
// lets callers and tests tell a quiet sensor from an outage.
type JoinStatus string

const (
	// JoinPresent means the lookup succeeded and data was found.
	JoinPresent JoinStatus = "present"

	// JoinAbsent means the lookup succeeded but no record exists.
	JoinAbsent JoinStatus = "absent"

	// JoinFailed means the store could not be consulted.
	JoinFailed JoinStatus = "failed"
)

// CompositeView is the per-request merge of identity, document location,
// and telemetry data for one sensor. Only the identity portion is
// guaranteed; the rest is best-effort.
type CompositeView struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`

	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`

	Telemetry       *Telemetry `json:"telemetry,omitempty"`
	TelemetryStatus JoinStatus `json:"telemetry_status"`
}

// TelemetryView is the result of a telemetry read joined with identity
// enrichment. Identity fields are zero-valued when IdentityStatus is not
// JoinPresent.
type TelemetryView struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name,omitempty"`

	Telemetry      Telemetry  `json:"telemetry"`
	IdentityStatus JoinStatus `json:"identity_status"`
}
