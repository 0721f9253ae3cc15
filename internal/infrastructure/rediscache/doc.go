// Package rediscache provides Redis connectivity for SensorHub Core.
//
// It wraps go-redis with SensorHub-specific patterns for connection
// management and health monitoring. The telemetry cache stores the latest
// sample per sensor under sensor:<id>:data keys; repository code obtains
// the underlying client via Redis().
//
// # Usage
//
//	cfg := config.RedisConfig{
//	    Addr: "localhost:6379",
//	    DB:   0,
//	}
//
//	client, err := rediscache.Connect(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	rdb := client.Redis()
//
// # Thread Safety
//
// All methods are safe for concurrent use. go-redis maintains its own
// connection pool.
package rediscache
