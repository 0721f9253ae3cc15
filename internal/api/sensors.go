package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/sensorhub-core/internal/sensor"
)

// List pagination bounds.
const (
	defaultListLimit = 100
	maxListLimit     = 500
)

// defaultNearRadiusMeters is used when a proximity query omits the radius.
const defaultNearRadiusMeters = 1000.0

// handleListSensors returns registered sensors ordered by ID.
//
// Query parameters:
//   - offset: number of records to skip (default 0)
//   - limit: maximum records to return (default 100, capped at 500)
func (s *Server) handleListSensors(w http.ResponseWriter, r *http.Request) {
	offset := parseIntParam(r, "offset", 0)
	limit := parseIntParam(r, "limit", defaultListLimit)
	if offset < 0 || limit < 1 {
		writeBadRequest(w, "offset must be >= 0 and limit must be >= 1")
		return
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	sensors, err := s.sensors.List(r.Context(), offset, limit)
	if err != nil {
		writeSensorError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"sensors": sensors, "count": len(sensors)})
}

// handleRegisterSensor registers a new sensor across the identity and
// document stores.
func (s *Server) handleRegisterSensor(w http.ResponseWriter, r *http.Request) {
	var spec sensor.RegistrationSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	identity, err := s.sensors.Register(r.Context(), &spec)
	if err != nil {
		writeSensorError(w, err)
		return
	}

	s.logger.Info("sensor registered", "sensor_id", identity.ID, "name", identity.Name)
	writeJSON(w, http.StatusCreated, identity)
}

// handleGetSensor returns a single sensor identity by ID.
func (s *Server) handleGetSensor(w http.ResponseWriter, r *http.Request) {
	id, ok := parseSensorID(w, r)
	if !ok {
		return
	}

	identity, err := s.sensors.Get(r.Context(), id)
	if err != nil {
		writeSensorError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, identity)
}

// handleDeleteSensor removes a sensor from all three stores. The deleted
// identity is returned so callers can log what was removed.
func (s *Server) handleDeleteSensor(w http.ResponseWriter, r *http.Request) {
	id, ok := parseSensorID(w, r)
	if !ok {
		return
	}

	identity, err := s.sensors.Delete(r.Context(), id)
	if err != nil {
		writeSensorError(w, err)
		return
	}

	s.logger.Info("sensor deleted", "sensor_id", id, "name", identity.Name)
	writeJSON(w, http.StatusOK, map[string]any{"deleted": identity})
}

// handleRecordTelemetry stores a telemetry sample for a sensor.
// A missing last_seen timestamp defaults to the arrival time.
func (s *Server) handleRecordTelemetry(w http.ResponseWriter, r *http.Request) {
	id, ok := parseSensorID(w, r)
	if !ok {
		return
	}

	var sample sensor.Telemetry
	if err := json.NewDecoder(r.Body).Decode(&sample); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if sample.LastSeen.IsZero() {
		sample.LastSeen = time.Now().UTC()
	}

	if err := s.sensors.RecordTelemetry(r.Context(), id, &sample); err != nil {
		writeSensorError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"status": "recorded", "sensor_id": id})
}

// handleGetTelemetry returns the latest telemetry sample for a sensor,
// enriched with identity fields when the identity store can supply them.
func (s *Server) handleGetTelemetry(w http.ResponseWriter, r *http.Request) {
	id, ok := parseSensorID(w, r)
	if !ok {
		return
	}

	view, err := s.sensors.GetTelemetry(r.Context(), id)
	if err != nil {
		writeSensorError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// handleFindNear returns sensors within a radius of a point, nearest first.
//
// Query parameters:
//   - latitude: latitude of the search centre (required)
//   - longitude: longitude of the search centre (required)
//   - radius: search radius in meters (default 1000)
func (s *Server) handleFindNear(w http.ResponseWriter, r *http.Request) {
	lat, err := parseFloatParam(r, "latitude")
	if err != nil {
		writeBadRequest(w, "latitude query parameter is required and must be a number")
		return
	}
	lon, err := parseFloatParam(r, "longitude")
	if err != nil {
		writeBadRequest(w, "longitude query parameter is required and must be a number")
		return
	}

	radius := defaultNearRadiusMeters
	if raw := r.URL.Query().Get("radius"); raw != "" {
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil || radius <= 0 {
			writeBadRequest(w, "radius must be a positive number of meters")
			return
		}
	}

	views, err := s.sensors.FindNear(r.Context(), lat, lon, radius)
	if err != nil {
		writeSensorError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"sensors": views, "count": len(views)})
}

// parseSensorID extracts and validates the {id} route parameter.
// On failure it writes a 400 response and returns false.
func parseSensorID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		writeBadRequest(w, "sensor id must be a positive integer")
		return 0, false
	}
	return id, true
}

// parseIntParam reads an integer query parameter, falling back to def when
// absent. A malformed value returns -1 so callers reject it.
func parseIntParam(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return v
}

// parseFloatParam reads a required float query parameter.
func parseFloatParam(r *http.Request, name string) (float64, error) {
	return strconv.ParseFloat(r.URL.Query().Get(name), 64)
}
