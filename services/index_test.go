package services

import (
	"context"
	"testing"

	"hmo-chatbot-backend/models"
)

func chunk(id, org, tier string, vec []float32) models.DocumentChunk {
	return models.DocumentChunk{
		ID:           id,
		DocumentID:   id,
		Text:         "text " + id,
		Vector:       vec,
		Organization: org,
		Tier:         tier,
	}
}

func TestQueryFiltersByOrganizationAndTier(t *testing.T) {
	ix := NewMemoryIndex([]models.DocumentChunk{
		chunk("maccabi-gold", "maccabi", "gold", []float32{1, 0}),
		chunk("maccabi-silver", "maccabi", "silver", []float32{1, 0}),
		chunk("clalit-gold", "clalit", "gold", []float32{1, 0}),
		chunk("shared", models.TagAll, models.TagAll, []float32{1, 0}),
	}, 0)

	results, err := ix.Query(context.Background(), []float32{1, 0},
		models.ChunkFilter{Organization: "maccabi", Tier: "gold"}, 10)
	if err != nil {
		t.Fatalf("query error: %v", err)
	}

	got := map[string]bool{}
	for _, r := range results {
		got[r.Chunk.ID] = true
	}
	if len(results) != 2 || !got["maccabi-gold"] || !got["shared"] {
		t.Fatalf("wrong result set: %v", got)
	}
	if got["maccabi-silver"] || got["clalit-gold"] {
		t.Fatal("out-of-scope chunks leaked past the filter")
	}
}

func TestQueryOrdersBySimilarity(t *testing.T) {
	ix := NewMemoryIndex([]models.DocumentChunk{
		chunk("far", models.TagAll, models.TagAll, []float32{0, 1}),
		chunk("near", models.TagAll, models.TagAll, []float32{1, 0.1}),
		chunk("exact", models.TagAll, models.TagAll, []float32{1, 0}),
	}, 0)

	results, err := ix.Query(context.Background(), []float32{1, 0},
		models.ChunkFilter{Organization: "maccabi", Tier: "gold"}, 2)
	if err != nil {
		t.Fatalf("query error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("topK not applied, got %d results", len(results))
	}
	if results[0].Chunk.ID != "exact" || results[1].Chunk.ID != "near" {
		t.Errorf("wrong order: %s, %s", results[0].Chunk.ID, results[1].Chunk.ID)
	}
	if results[0].Score < results[1].Score {
		t.Error("scores not descending")
	}
}

func TestQueryTiesKeepBuildOrder(t *testing.T) {
	ix := NewMemoryIndex([]models.DocumentChunk{
		chunk("first", models.TagAll, models.TagAll, []float32{1, 0}),
		chunk("second", models.TagAll, models.TagAll, []float32{1, 0}),
		chunk("third", models.TagAll, models.TagAll, []float32{1, 0}),
	}, 0)

	for i := 0; i < 5; i++ {
		results, err := ix.Query(context.Background(), []float32{1, 0},
			models.ChunkFilter{Organization: "clalit", Tier: "bronze"}, 3)
		if err != nil {
			t.Fatalf("query error: %v", err)
		}
		if results[0].Chunk.ID != "first" || results[1].Chunk.ID != "second" || results[2].Chunk.ID != "third" {
			t.Fatalf("tie order changed on run %d: %v", i, results)
		}
	}
}

func TestQueryEmptyResultIsNotAnError(t *testing.T) {
	ix := NewMemoryIndex([]models.DocumentChunk{
		chunk("clalit-only", "clalit", "gold", []float32{1, 0}),
	}, 0)

	results, err := ix.Query(context.Background(), []float32{1, 0},
		models.ChunkFilter{Organization: "maccabi", Tier: "gold"}, 3)
	if err != nil {
		t.Fatalf("empty retrieval must not error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}

func TestQueryMinScoreFloor(t *testing.T) {
	ix := NewMemoryIndex([]models.DocumentChunk{
		chunk("orthogonal", models.TagAll, models.TagAll, []float32{0, 1}),
		chunk("aligned", models.TagAll, models.TagAll, []float32{1, 0}),
	}, 0.5)

	results, err := ix.Query(context.Background(), []float32{1, 0},
		models.ChunkFilter{Organization: "maccabi", Tier: "gold"}, 5)
	if err != nil {
		t.Fatalf("query error: %v", err)
	}
	if len(results) != 1 || results[0].Chunk.ID != "aligned" {
		t.Fatalf("floor not applied: %v", results)
	}
}

func TestIndexProviderSwap(t *testing.T) {
	old := NewMemoryIndex([]models.DocumentChunk{
		chunk("old", models.TagAll, models.TagAll, []float32{1, 0}),
	}, 0)
	provider := NewIndexProvider(old)

	snapshot := provider.Load()

	fresh := NewMemoryIndex([]models.DocumentChunk{
		chunk("fresh", models.TagAll, models.TagAll, []float32{1, 0}),
	}, 0)
	provider.Swap(fresh)

	// The held snapshot still serves the old corpus.
	results, _ := snapshot.Query(context.Background(), []float32{1, 0},
		models.ChunkFilter{Organization: "maccabi", Tier: "gold"}, 1)
	if len(results) != 1 || results[0].Chunk.ID != "old" {
		t.Fatal("held snapshot should keep serving the previous corpus")
	}

	results, _ = provider.Load().Query(context.Background(), []float32{1, 0},
		models.ChunkFilter{Organization: "maccabi", Tier: "gold"}, 1)
	if len(results) != 1 || results[0].Chunk.ID != "fresh" {
		t.Fatal("provider should serve the swapped corpus")
	}
}
