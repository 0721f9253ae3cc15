package sensor

import (
	"fmt"
	"strings"
)

// Validation constants.
const (
	maxNameLength = 100

	minLongitude = -180.0
	maxLongitude = 180.0
	minLatitude  = -90.0
	maxLatitude  = 90.0
)

// ValidateName checks if a sensor name is valid.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, maxNameLength)
	}
	return nil
}

// ValidateCoordinates checks a longitude/latitude pair against the WGS84
// bounds used by the document store's geospatial index.
func ValidateCoordinates(longitude, latitude float64) error {
	if longitude < minLongitude || longitude > maxLongitude {
		return fmt.Errorf("%w: longitude %v outside [%v, %v]", ErrInvalidCoordinates, longitude, minLongitude, maxLongitude)
	}
	if latitude < minLatitude || latitude > maxLatitude {
		return fmt.Errorf("%w: latitude %v outside [%v, %v]", ErrInvalidCoordinates, latitude, minLatitude, maxLatitude)
	}
	return nil
}

// ValidateRegistration performs validation on a registration spec.
// Returns an error describing the first validation failure found.
func ValidateRegistration(spec *RegistrationSpec) error {
	if spec == nil {
		return fmt.Errorf("%w: spec cannot be nil", ErrInvalidName)
	}
	if err := ValidateName(spec.Name); err != nil {
		return err
	}
	return ValidateCoordinates(spec.Longitude, spec.Latitude)
}

// ValidateTelemetry performs validation on a telemetry sample.
func ValidateTelemetry(sample *Telemetry) error {
	if sample == nil {
		return fmt.Errorf("%w: sample cannot be nil", ErrInvalidTelemetry)
	}
	if sample.LastSeen.IsZero() {
		return fmt.Errorf("%w: last_seen is required", ErrInvalidTelemetry)
	}
	if sample.BatteryLevel != nil && (*sample.BatteryLevel < 0 || *sample.BatteryLevel > 100) {
		return fmt.Errorf("%w: battery_level %v outside [0, 100]", ErrInvalidTelemetry, *sample.BatteryLevel)
	}
	if sample.Humidity != nil && (*sample.Humidity < 0 || *sample.Humidity > 100) {
		return fmt.Errorf("%w: humidity %v outside [0, 100]", ErrInvalidTelemetry, *sample.Humidity)
	}
	return nil
}
