package services

import (
	"context"
	"fmt"

	"hmo-chatbot-backend/models"
)

// Scoper narrows retrieval to the asking user: it embeds the question and
// derives the applicability filter from the collected profile.
type Scoper struct {
	embedder Embedder
	schema   *FieldSchema
}

func NewScoper(embedder Embedder, schema *FieldSchema) *Scoper {
	return &Scoper{embedder: embedder, schema: schema}
}

// Scope returns the question's embedding and the chunk filter for the user.
// Calling it before the profile is complete violates the state machine's
// guarantee and fails with ErrIncompleteProfile.
func (s *Scoper) Scope(ctx context.Context, profile models.UserProfile, question string) ([]float32, models.ChunkFilter, error) {
	if !s.schema.Complete(profile) {
		return nil, models.ChunkFilter{}, fmt.Errorf("%w: retrieval requested before collection finished", ErrIncompleteProfile)
	}

	vector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, models.ChunkFilter{}, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}

	filter := models.ChunkFilter{
		Organization: profile.Organization(),
		Tier:         profile.Tier(),
	}
	return vector, filter, nil
}
