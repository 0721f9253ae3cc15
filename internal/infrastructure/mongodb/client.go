package mongodb

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/nerrad567/sensorhub-core/internal/infrastructure/config"
)

// Default timeouts for MongoDB operations.
const (
	defaultConnectTimeout    = 10 * time.Second
	defaultPingTimeout       = 5 * time.Second
	defaultDisconnectTimeout = 5 * time.Second
)

// Client wraps the official MongoDB driver with SensorHub-specific
// functionality.
//
// It provides connection management, access to the sensor document
// collection, and health monitoring.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//   - The underlying driver maintains its own connection pool.
type Client struct {
	client *mongo.Client
	cfg    config.MongoDBConfig

	// connected tracks current connection state.
	connected bool
	mu        sync.RWMutex
}

// Connect establishes a connection to the MongoDB server.
//
// It performs the following setup:
//  1. Creates the driver client from the configured URI
//  2. Verifies connectivity with a ping against the primary
//
// Parameters:
//   - cfg: MongoDB configuration from config.yaml
//
// Returns:
//   - *Client: Connected client ready for use
//   - error: If the connection or ping fails
func Connect(cfg config.MongoDBConfig) (*Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultConnectTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(defaultConnectTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	// Verify connectivity before handing the client out
	pingCtx, pingCancel := context.WithTimeout(context.Background(), defaultPingTimeout)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectQuietly(client)
		return nil, fmt.Errorf("%w: ping failed: %w", ErrConnectionFailed, err)
	}

	return &Client{
		client:    client,
		cfg:       cfg,
		connected: true,
	}, nil
}

// disconnectQuietly tears down a half-constructed client.
func disconnectQuietly(client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultDisconnectTimeout)
	defer cancel()
	_ = client.Disconnect(ctx)
}

// Collection returns the configured sensor document collection.
func (c *Client) Collection() *mongo.Collection {
	return c.client.Database(c.cfg.Database).Collection(c.cfg.Collection)
}

// Database returns a handle to the configured database.
func (c *Client) Database() *mongo.Database {
	return c.client.Database(c.cfg.Database)
}

// Close gracefully shuts down the MongoDB connection.
//
// In-flight operations are allowed defaultDisconnectTimeout to finish.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}

	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), defaultDisconnectTimeout)
	defer cancel()

	if err := c.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("mongodb disconnect: %w", err)
	}
	return nil
}

// HealthCheck verifies the MongoDB connection is alive and functioning.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (c *Client) HealthCheck(ctx context.Context) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	checkCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	if err := c.client.Ping(checkCtx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongodb health check failed: %w", err)
	}
	return nil
}

// IsConnected returns the current connection state.
//
// Note: This reflects the last known state. For reliability,
// use HealthCheck which performs an active ping.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}
