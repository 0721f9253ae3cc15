// Package mongodb provides MongoDB connectivity for SensorHub Core.
//
// It wraps the official mongo-driver with SensorHub-specific patterns for
// connection management and health monitoring. The sensor document store
// lives in a single collection; repository code obtains it via Collection().
//
// # Usage
//
//	cfg := config.MongoDBConfig{
//	    URI:        "mongodb://localhost:27017",
//	    Database:   "sensorhub",
//	    Collection: "sensors",
//	}
//
//	client, err := mongodb.Connect(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	coll := client.Collection()
//
// # Thread Safety
//
// All methods are safe for concurrent use. The driver maintains its own
// connection pool sized from the URI options.
package mongodb
