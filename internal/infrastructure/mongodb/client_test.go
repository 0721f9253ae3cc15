package mongodb_test

import (
	"context"
	"testing"
	"time"

	"github.com/nerrad567/sensorhub-core/internal/infrastructure/config"
	"github.com/nerrad567/sensorhub-core/internal/infrastructure/mongodb"
)

// testConfig returns a configuration for the local dev MongoDB.
// These values match docker-compose.yml.
func testConfig() config.MongoDBConfig {
	return config.MongoDBConfig{
		URI:        "mongodb://127.0.0.1:27017",
		Database:   "sensorhub_test",
		Collection: "sensors",
		Timeout:    5,
	}
}

// skipIfNoMongoDB skips the test if MongoDB is not running.
func skipIfNoMongoDB(t *testing.T) *mongodb.Client {
	t.Helper()
	client, err := mongodb.Connect(testConfig())
	if err != nil {
		t.Skip("MongoDB not available, skipping integration test")
	}
	return client
}

func TestConnect(t *testing.T) {
	client := skipIfNoMongoDB(t)
	defer client.Close()

	if !client.IsConnected() {
		t.Error("IsConnected() = false after Connect()")
	}
}

func TestConnect_InvalidURI(t *testing.T) {
	cfg := testConfig()
	cfg.URI = "mongodb://127.0.0.1:59999"

	_, err := mongodb.Connect(cfg)
	if err == nil {
		t.Fatal("Connect() should return error for unreachable server")
	}
}

func TestCollection(t *testing.T) {
	client := skipIfNoMongoDB(t)
	defer client.Close()

	coll := client.Collection()
	if coll.Name() != "sensors" {
		t.Errorf("Collection().Name() = %q, want sensors", coll.Name())
	}
}

func TestHealthCheck(t *testing.T) {
	client := skipIfNoMongoDB(t)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestClose(t *testing.T) {
	client := skipIfNoMongoDB(t)

	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true after Close()")
	}
}
