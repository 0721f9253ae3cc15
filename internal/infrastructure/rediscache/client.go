package rediscache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nerrad567/sensorhub-core/internal/infrastructure/config"
)

// Default timeouts for Redis operations.
const (
	defaultConnectTimeout = 5 * time.Second
	defaultPingTimeout    = 3 * time.Second
)

// Client wraps go-redis with SensorHub-specific functionality.
//
// It provides connection management and health monitoring for the
// telemetry cache.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//   - The underlying client maintains its own connection pool.
type Client struct {
	client *redis.Client
	cfg    config.RedisConfig

	// connected tracks current connection state.
	connected bool
	mu        sync.RWMutex
}

// Connect establishes a connection to the Redis server.
//
// It creates the client and verifies connectivity with a ping.
//
// Parameters:
//   - cfg: Redis configuration from config.yaml
//
// Returns:
//   - *Client: Connected client ready for use
//   - error: If the ping fails
func Connect(cfg config.RedisConfig) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), defaultConnectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: ping failed: %w", ErrConnectionFailed, err)
	}

	return &Client{
		client:    client,
		cfg:       cfg,
		connected: true,
	}, nil
}

// Redis returns the underlying go-redis client for repository code.
func (c *Client) Redis() *redis.Client {
	return c.client
}

// Close gracefully shuts down the Redis connection pool.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}

	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()

	if err := c.client.Close(); err != nil {
		return fmt.Errorf("redis close: %w", err)
	}
	return nil
}

// HealthCheck verifies the Redis connection is alive and functioning.
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

	if err := c.client.Ping(checkCtx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
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
