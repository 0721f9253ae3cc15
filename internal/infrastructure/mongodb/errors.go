package mongodb

import "errors"

// Sentinel errors for MongoDB operations.
//
// These errors can be checked using errors.Is() for specific handling:
//
//	if errors.Is(err, mongodb.ErrNotConnected) {
//	    // Handle disconnected state
//	}
var (
	// ErrNotConnected indicates the client is not connected to MongoDB.
	ErrNotConnected = errors.New("mongodb: not connected")

	// ErrConnectionFailed indicates the initial connection attempt failed.
	ErrConnectionFailed = errors.New("mongodb: connection failed")
)
