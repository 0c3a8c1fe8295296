package services

import (
	"context"

	"hmo-chatbot-backend/models"
)

// Embedder turns free text into a fixed-dimension vector. Implemented by the
// Gemini embeddings client; tests inject fakes.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator produces a completion for a prompt. The prompt is expected to
// constrain the model to the supplied context; the generator itself is an
// opaque capability.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// KnowledgeStore answers nearest-neighbor queries over the indexed corpus.
// The filter is a hard constraint: chunks outside the user's organization and
// tier (or not tagged "all") must never be returned, whatever the backend.
type KnowledgeStore interface {
	Query(ctx context.Context, vector []float32, filter models.ChunkFilter, topK int) ([]models.ScoredChunk, error)
}
