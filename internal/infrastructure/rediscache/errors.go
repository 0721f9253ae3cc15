package rediscache

import "errors"

// Sentinel errors for Redis operations.
//
// These errors can be checked using errors.Is() for specific handling:
//
//	if errors.Is(err, rediscache.ErrNotConnected) {
//	    // Handle disconnected state
//	}
var (
	// ErrNotConnected indicates the client is not connected to Redis.
	ErrNotConnected = errors.New("rediscache: not connected")

	// ErrConnectionFailed indicates the initial connection attempt failed.
	ErrConnectionFailed = errors.New("rediscache: connection failed")
)
