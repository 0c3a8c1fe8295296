package config

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ChunkCollection is where the optional Atlas vector backend stores the
// indexed corpus.
const ChunkCollection = "knowledge_chunks"

// ConnectMongoDB connects to MongoDB for the Atlas vector search backend.
// Only called when MONGODB_VECTOR_ENABLED is set.
func ConnectMongoDB(cfg *Config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %v", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %v", err)
	}

	// Regular indexes on the filter fields; the $vectorSearch index itself
	// is defined in Atlas, outside the driver.
	chunks := client.Database(cfg.DBName).Collection(ChunkCollection)
	chunkIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "organization", Value: 1}, {Key: "tier", Value: 1}}},
		{Keys: bson.D{{Key: "document_id", Value: 1}, {Key: "order", Value: 1}}},
	}
	if _, err := chunks.Indexes().CreateMany(context.Background(), chunkIndexes); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %v", err)
	}

	return client, nil
}
