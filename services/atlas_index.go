package services

import (
	"context"
	"fmt"

	"hmo-chatbot-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// AtlasIndex is a KnowledgeStore backed by MongoDB Atlas $vectorSearch, for
// deployments where the corpus outgrows an in-process scan. The hard-filter
// semantics match MemoryIndex: Atlas applies the organization/tier filter
// natively inside the search stage.
type AtlasIndex struct {
	collection *mongo.Collection
	indexName  string
}

func NewAtlasIndex(collection *mongo.Collection, indexName string) *AtlasIndex {
	return &AtlasIndex{collection: collection, indexName: indexName}
}

// Replace swaps the stored corpus for the given chunks. Called at build time
// and on scheduled reindex; queries against the previous documents keep
// working until the delete/insert completes.
func (ix *AtlasIndex) Replace(ctx context.Context, chunks []models.DocumentChunk) error {
	if _, err := ix.collection.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("clearing chunk collection: %w", err)
	}
	docs := make([]interface{}, len(chunks))
	for i, c := range chunks {
		docs[i] = c
	}
	if len(docs) == 0 {
		return nil
	}
	if _, err := ix.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("inserting chunks: %w", err)
	}
	return nil
}

// Query runs a $vectorSearch aggregation restricted to the user's
// organization and tier (plus "all"-tagged chunks).
func (ix *AtlasIndex) Query(ctx context.Context, vector []float32, filter models.ChunkFilter, topK int) ([]models.ScoredChunk, error) {
	if topK <= 0 {
		topK = 3
	}

	pipeline := mongo.Pipeline{
		{{Key: "$vectorSearch", Value: bson.D{
			{Key: "index", Value: ix.indexName},
			{Key: "path", Value: "vector"},
			{Key: "queryVector", Value: vector},
			{Key: "numCandidates", Value: topK * 20},
			{Key: "limit", Value: topK},
			{Key: "filter", Value: bson.D{
				{Key: "organization", Value: bson.D{{Key: "$in", Value: bson.A{filter.Organization, models.TagAll}}}},
				{Key: "tier", Value: bson.D{{Key: "$in", Value: bson.A{filter.Tier, models.TagAll}}}},
			}},
		}}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "score", Value: bson.D{{Key: "$meta", Value: "vectorSearchScore"}}},
		}}},
	}

	cursor, err := ix.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	defer cursor.Close(ctx)

	var results []models.ScoredChunk
	for cursor.Next(ctx) {
		var row struct {
			models.DocumentChunk `bson:",inline"`
			Score                float64 `bson:"score"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("decoding search result: %w", err)
		}
		results = append(results, models.ScoredChunk{Chunk: row.DocumentChunk, Score: row.Score})
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
