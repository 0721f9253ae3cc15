package sensor

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DocumentRepository defines the interface for sensor document persistence
// and geospatial search.
type DocumentRepository interface {
	// Upsert writes the full document, replacing any existing document
	// with the same SensorID. Safe to re-run after a partial failure.
	Upsert(ctx context.Context, doc *Document) error

	// Delete removes the document for a sensor. Idempotent: a missing
	// document is not an error.
	Delete(ctx context.Context, sensorID int64) error

	// EnsureGeoIndex creates the 2dsphere index on location if it does
	// not already exist. Must be called before FindNear.
	EnsureGeoIndex(ctx context.Context) error

	// FindNear returns documents within maxDistanceMeters of the given
	// point, ordered nearest-first by the geospatial index.
	FindNear(ctx context.Context, longitude, latitude float64, maxDistanceMeters float64) ([]Document, error)
}

// MongoDocumentRepository implements DocumentRepository using a MongoDB
// collection. One document per sensor, keyed logically by id_sensor.
type MongoDocumentRepository struct {
	coll *mongo.Collection
}

// NewMongoDocumentRepository creates a new MongoDB-backed repository.
func NewMongoDocumentRepository(coll *mongo.Collection) *MongoDocumentRepository {
	return &MongoDocumentRepository{coll: coll}
}

// Upsert writes the full document for a sensor.
func (r *MongoDocumentRepository) Upsert(ctx context.Context, doc *Document) error {
	filter := bson.M{"id_sensor": doc.SensorID}
	opts := options.Replace().SetUpsert(true)

	if _, err := r.coll.ReplaceOne(ctx, filter, doc, opts); err != nil {
		return fmt.Errorf("upserting sensor document: %w", err)
	}
	return nil
}

// Delete removes the document whose id_sensor matches.
func (r *MongoDocumentRepository) Delete(ctx context.Context, sensorID int64) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"id_sensor": sensorID}); err != nil {
		return fmt.Errorf("deleting sensor document: %w", err)
	}
	return nil
}

// EnsureGeoIndex creates the 2dsphere index on location.
// CreateOne is idempotent for an identical index specification.
func (r *MongoDocumentRepository) EnsureGeoIndex(ctx context.Context) error {
	model := mongo.IndexModel{
		Keys: bson.D{{Key: "location", Value: "2dsphere"}},
	}
	if _, err := r.coll.Indexes().CreateOne(ctx, model); err != nil {
		return fmt.Errorf("creating 2dsphere index: %w", err)
	}
	return nil
}

// FindNear performs a $near query against the location index.
func (r *MongoDocumentRepository) FindNear(ctx context.Context, longitude, latitude float64, maxDistanceMeters float64) ([]Document, error) {
	filter := bson.M{
		"location": bson.M{
			"$near": bson.M{
				"$geometry": bson.M{
					"type":        "Point",
					"coordinates": []float64{longitude, latitude},
				},
				"$maxDistance": maxDistanceMeters,
			},
		},
	}

	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("querying sensors near point: %w", err)
	}
	defer cursor.Close(ctx)

	// $near returns results ordered nearest-first; decode preserves that.
	docs := make([]Document, 0)
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding sensor documents: %w", err)
	}
	return docs, nil
}
