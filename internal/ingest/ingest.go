package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nerrad567/sensorhub-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/sensorhub-core/internal/sensor"
)

// expected shape of sensorhub/sensors/{id}/data
const telemetryTopicParts = 4

// defaultHandleTimeout bounds how long a single inbound sample may take
// to verify and store before it is dropped.
const defaultHandleTimeout = 10 * time.Second

// MQTTClient is the interface for MQTT operations.
// This allows mocking in tests and flexibility in implementation.
type MQTTClient interface {
	// Subscribe registers a handler for a topic pattern.
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error

	// Unsubscribe removes a subscription.
	Unsubscribe(topic string) error

	// IsConnected returns true if connected to the broker.
	IsConnected() bool
}

// TelemetryRecorder stores inbound samples. Satisfied by *sensor.Coordinator.
type TelemetryRecorder interface {
	RecordTelemetry(ctx context.Context, id int64, sample *sensor.Telemetry) error
}

// Notifier receives accepted samples for fan-out to live subscribers.
// Optional; satisfied by the API layer's websocket hub.
type Notifier interface {
	NotifyTelemetry(sensorID int64, sample *sensor.Telemetry)
}

// Logger defines the logging interface used by the Service.
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

// Service consumes telemetry published by field devices on the
// sensorhub/sensors/+/data topic pattern and stores each sample through
// the coordinator. Malformed messages and samples for unknown sensors
// are logged and dropped; the subscription stays up.
//
// Thread Safety: All methods are safe for concurrent use.
type Service struct {
	client   MQTTClient
	recorder TelemetryRecorder

	// notifier is optional; nil disables live fan-out.
	notifier Notifier

	logger Logger

	// Shutdown coordination
	ctx       context.Context
	ctxCancel context.CancelFunc
	stopOnce  sync.Once
}

// NewService creates a telemetry ingest service.
func NewService(client MQTTClient, recorder TelemetryRecorder) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		client:    client,
		recorder:  recorder,
		logger:    noopLogger{},
		ctx:       ctx,
		ctxCancel: cancel,
	}
}

// SetLogger sets the logger for the service.
func (s *Service) SetLogger(logger Logger) {
	s.logger = logger
}

// SetNotifier enables live fan-out of accepted samples.
func (s *Service) SetNotifier(notifier Notifier) {
	s.notifier = notifier
}

// Start subscribes to the telemetry wildcard topic.
func (s *Service) Start() error {
	topic := mqtt.Topics{}.AllSensorTelemetry()
	if err := s.client.Subscribe(topic, 1, s.handleMessage); err != nil {
		return fmt.Errorf("subscribe to telemetry: %w", err)
	}
	s.logger.Info("telemetry ingest started", "topic", topic)
	return nil
}

// Stop unsubscribes and aborts in-flight handling.
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		s.ctxCancel()
		if err := s.client.Unsubscribe(mqtt.Topics{}.AllSensorTelemetry()); err != nil {
			s.logger.Warn("unsubscribe failed during stop", "error", err)
		}
		s.logger.Info("telemetry ingest stopped")
	})
}

// handleMessage processes one inbound telemetry publication.
// Returning an error only signals the MQTT layer; the message is never
// redelivered, so every failure path also logs.
func (s *Service) handleMessage(topic string, payload []byte) error {
	sensorID, err := ParseTelemetryTopic(topic)
	if err != nil {
		s.logger.Warn("ignoring message on malformed topic", "topic", topic, "error", err)
		return err
	}

	sample, err := DecodeSample(payload)
	if err != nil {
		s.logger.Warn("ignoring undecodable sample", "id", sensorID, "error", err)
		return err
	}

	ctx, cancel := context.WithTimeout(s.ctx, defaultHandleTimeout)
	defer cancel()

	if err := s.recorder.RecordTelemetry(ctx, sensorID, sample); err != nil {
		s.logger.Warn("sample rejected", "id", sensorID, "error", err)
		return err
	}

	if s.notifier != nil {
		s.notifier.NotifyTelemetry(sensorID, sample)
	}

	s.logger.Debug("sample ingested", "id", sensorID)
	return nil
}

// ParseTelemetryTopic extracts the sensor id from a telemetry topic.
//
// Expects the sensorhub/sensors/{id}/data layout; anything else is an error.
func ParseTelemetryTopic(topic string) (int64, error) {
	parts := strings.Split(topic, "/")
	if len(parts) != telemetryTopicParts || parts[0] != "sensorhub" || parts[1] != "sensors" || parts[3] != "data" {
		return 0, fmt.Errorf("unexpected topic layout: %s", topic)
	}

	id, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("non-numeric sensor id in topic %s: %w", topic, err)
	}
	return id, nil
}

// DecodeSample parses a JSON telemetry payload. A missing last_seen is
// filled with the receive time so devices without clocks can publish
// bare readings.
func DecodeSample(payload []byte) (*sensor.Telemetry, error) {
	var sample sensor.Telemetry
	if err := json.Unmarshal(payload, &sample); err != nil {
		return nil, fmt.Errorf("parsing telemetry payload: %w", err)
	}
	if sample.LastSeen.IsZero() {
		sample.LastSeen = time.Now().UTC()
	}
	return &sample, nil
}
