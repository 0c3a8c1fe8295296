package services

import (
	"context"

	"hmo-chatbot-backend/internal/logger"
	"hmo-chatbot-backend/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// ChatService wires the collection state machine and the retrieval pipeline
// into a single per-turn operation. It holds no per-conversation state:
// everything is derived from the transcript the caller supplies.
type ChatService struct {
	collector   *Collector
	scoper      *Scoper
	index       *IndexProvider
	synthesizer *Synthesizer
	topK        int
}

func NewChatService(collector *Collector, scoper *Scoper, index *IndexProvider, synthesizer *Synthesizer, topK int) *ChatService {
	if topK <= 0 {
		topK = 3
	}
	return &ChatService{
		collector:   collector,
		scoper:      scoper,
		index:       index,
		synthesizer: synthesizer,
		topK:        topK,
	}
}

// HandleTurn processes one user message against the supplied transcript and
// returns the reply plus the phase after the message was applied.
func (s *ChatService) HandleTurn(ctx context.Context, history []models.Turn, message string) (string, models.Phase, error) {
	tracer := otel.Tracer("chat-service")
	ctx, span := tracer.Start(ctx, "chat.turn")
	defer span.End()

	state := s.collector.DeriveState(history)
	span.SetAttributes(
		attribute.String("chat.phase", string(state.Phase)),
		attribute.Int("chat.history_turns", len(history)),
	)

	if state.Phase != models.PhaseQA {
		next, reply := s.collector.Advance(state, message)
		span.SetAttributes(attribute.String("chat.next_phase", string(next.Phase)))
		return reply, next.Phase, nil
	}

	vector, filter, err := s.scoper.Scope(ctx, state.Profile, message)
	if err != nil {
		return "", models.PhaseQA, err
	}

	results, err := s.index.Load().Query(ctx, vector, filter, s.topK)
	if err != nil {
		return "", models.PhaseQA, err
	}
	span.SetAttributes(attribute.Int("chat.retrieved_chunks", len(results)))
	if len(results) == 0 {
		logger.Info("empty retrieval, returning grounding fallback",
			"organization", filter.Organization, "tier", filter.Tier)
	}

	reply, err := s.synthesizer.Synthesize(ctx, message, results, history, state.Profile)
	if err != nil {
		return "", models.PhaseQA, err
	}
	return reply, models.PhaseQA, nil
}
