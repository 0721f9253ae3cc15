package mqtt

import (
	"errors"
	"strings"
	"testing"

	"github.com/nerrad567/sensorhub-core/internal/infrastructure/config"
)

// testConfig returns a valid MQTT configuration for testing.
func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "sensorhub-test",
			TLS:      false,
		},
		Auth: config.MQTTAuthConfig{
			Username: "",
			Password: "",
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

// newDisconnectedClient builds a client that never touched a broker.
// Validation paths reject before any network call is attempted.
func newDisconnectedClient() *Client {
	return &Client{
		cfg:           testConfig(),
		subscriptions: make(map[string]subscription),
	}
}

// =============================================================================
// Publish Validation Tests
// =============================================================================

func TestPublishEmptyTopic(t *testing.T) {
	client := newDisconnectedClient()

	err := client.Publish("", []byte("test"), 1, false)
	if !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Publish() error = %v, want ErrInvalidTopic", err)
	}
}

func TestPublishInvalidQoS(t *testing.T) {
	client := newDisconnectedClient()

	err := client.Publish("test/topic", []byte("test"), 3, false)
	if !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("Publish() error = %v, want ErrInvalidQoS", err)
	}
}

func TestPublishOversizedPayload(t *testing.T) {
	client := newDisconnectedClient()

	payload := make([]byte, maxPayloadSize+1)
	err := client.Publish("test/topic", payload, 1, false)
	if !errors.Is(err, ErrPublishFailed) {
		t.Errorf("Publish() error = %v, want ErrPublishFailed", err)
	}
}

func TestPublishDisconnected(t *testing.T) {
	client := newDisconnectedClient()

	err := client.Publish("test/topic", []byte("test"), 1, false)
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("Publish() error = %v, want ErrNotConnected", err)
	}
}

// =============================================================================
// Subscribe Validation Tests
// =============================================================================

func TestSubscribeEmptyTopic(t *testing.T) {
	client := newDisconnectedClient()

	err := client.Subscribe("", 1, func(_ string, _ []byte) error { return nil })
	if !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Subscribe() error = %v, want ErrInvalidTopic", err)
	}
}

func TestSubscribeInvalidQoS(t *testing.T) {
	client := newDisconnectedClient()

	err := client.Subscribe("test/topic", 3, func(_ string, _ []byte) error { return nil })
	if !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("Subscribe() error = %v, want ErrInvalidQoS", err)
	}
}

func TestSubscribeNilHandler(t *testing.T) {
	client := newDisconnectedClient()

	err := client.Subscribe("test/topic", 1, nil)
	if !errors.Is(err, ErrSubscribeFailed) {
		t.Errorf("Subscribe() error = %v, want ErrSubscribeFailed", err)
	}
}

func TestSubscribeDisconnected(t *testing.T) {
	client := newDisconnectedClient()

	err := client.Subscribe("test/topic", 1, func(_ string, _ []byte) error { return nil })
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("Subscribe() error = %v, want ErrNotConnected", err)
	}
}

func TestUnsubscribeEmptyTopic(t *testing.T) {
	client := newDisconnectedClient()

	err := client.Unsubscribe("")
	if !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Unsubscribe() error = %v, want ErrInvalidTopic", err)
	}
}

// =============================================================================
// Subscription Tracking Tests
// =============================================================================

func TestSubscriptionCountEmpty(t *testing.T) {
	client := newDisconnectedClient()

	if count := client.SubscriptionCount(); count != 0 {
		t.Errorf("SubscriptionCount() = %d, want 0", count)
	}
}

func TestHasSubscriptionNotSubscribed(t *testing.T) {
	client := newDisconnectedClient()

	if client.HasSubscription("sensorhub/sensors/42/data") {
		t.Error("HasSubscription() = true, want false")
	}
}

// =============================================================================
// Topic Builder Tests
// =============================================================================

func TestTopicBuilders(t *testing.T) {
	tests := []struct {
		name     string
		builder  func() string
		expected string
	}{
		{
			name: "SensorTelemetry",
			builder: func() string {
				return Topics{}.SensorTelemetry("42")
			},
			expected: "sensorhub/sensors/42/data",
		},
		{
			name: "SensorStatus",
			builder: func() string {
				return Topics{}.SensorStatus("42")
			},
			expected: "sensorhub/sensors/42/status",
		},
		{
			name: "SensorRegistered",
			builder: func() string {
				return Topics{}.SensorRegistered("7")
			},
			expected: "sensorhub/sensors/7/registered",
		},
		{
			name: "SystemStatus",
			builder: func() string {
				return Topics{}.SystemStatus()
			},
			expected: "sensorhub/system/status",
		},
		{
			name: "SystemShutdown",
			builder: func() string {
				return Topics{}.SystemShutdown()
			},
			expected: "sensorhub/system/shutdown",
		},
		{
			name: "AllSensorTelemetry",
			builder: func() string {
				return Topics{}.AllSensorTelemetry()
			},
			expected: "sensorhub/sensors/+/data",
		},
		{
			name: "AllSensorStatus",
			builder: func() string {
				return Topics{}.AllSensorStatus()
			},
			expected: "sensorhub/sensors/+/status",
		},
		{
			name: "AllTopics",
			builder: func() string {
				return Topics{}.AllTopics()
			},
			expected: "sensorhub/#",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.builder(); got != tt.expected {
				t.Errorf("%s = %q, want %q", tt.name, got, tt.expected)
			}
		})
	}
}

// =============================================================================
// Options Tests
// =============================================================================

func TestBuildClientOptions(t *testing.T) {
	cfg := testConfig()
	opts := buildClientOptions(cfg)

	if len(opts.Servers) != 1 {
		t.Fatalf("Servers count = %d, want 1", len(opts.Servers))
	}
	if got := opts.Servers[0].String(); !strings.Contains(got, "127.0.0.1:1883") {
		t.Errorf("broker URL = %q, want host 127.0.0.1:1883", got)
	}
	if opts.ClientID != "sensorhub-test" {
		t.Errorf("ClientID = %q, want sensorhub-test", opts.ClientID)
	}
}

func TestConfigureLWT(t *testing.T) {
	cfg := testConfig()
	opts := buildClientOptions(cfg)
	configureLWT(opts, cfg.Broker.ClientID)

	if opts.WillTopic != "sensorhub/system/status" {
		t.Errorf("WillTopic = %q, want sensorhub/system/status", opts.WillTopic)
	}
	if !opts.WillRetained {
		t.Error("WillRetained = false, want true")
	}
}