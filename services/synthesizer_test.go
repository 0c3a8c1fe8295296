package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"hmo-chatbot-backend/models"
)

func scoredChunks() []models.ScoredChunk {
	return []models.ScoredChunk{
		{Chunk: models.DocumentChunk{DocumentID: "dentist", Text: "Gold members get 80% off cleanings."}, Score: 0.9},
		{Chunk: models.DocumentChunk{DocumentID: "optometry", Text: "Eye exams are covered twice a year."}, Score: 0.7},
	}
}

func TestSynthesizeReturnsGeneratorOutput(t *testing.T) {
	gen := &fakeGenerator{reply: "Cleanings are 80% off for Gold members."}
	s := NewSynthesizer(gen, 6)

	answer, err := s.Synthesize(context.Background(), "dental discounts?", scoredChunks(), nil, completeProfile())
	if err != nil {
		t.Fatalf("synthesize error: %v", err)
	}
	if answer != gen.reply {
		t.Errorf("answer should be the model output verbatim, got %q", answer)
	}

	for _, want := range []string{"maccabi", "gold", "dentist", "80% off cleanings", "dental discounts?"} {
		if !strings.Contains(gen.lastPrompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestSynthesizeEmptyRetrievalSkipsGenerator(t *testing.T) {
	gen := &fakeGenerator{reply: "should never be used"}
	s := NewSynthesizer(gen, 6)

	answer, err := s.Synthesize(context.Background(), "is acupuncture covered?", nil, nil, completeProfile())
	if err != nil {
		t.Fatalf("synthesize error: %v", err)
	}
	if gen.calls != 0 {
		t.Fatal("generator must not run without retrieved context")
	}
	if !strings.Contains(answer, "maccabi") || !strings.Contains(answer, "gold") {
		t.Errorf("fallback should name the user's fund and tier, got %q", answer)
	}
}

func TestSynthesizeFallbackMatchesQuestionLanguage(t *testing.T) {
	s := NewSynthesizer(&fakeGenerator{}, 6)

	answer, err := s.Synthesize(context.Background(), "האם דיקור סיני מכוסה?", nil, nil, completeProfile())
	if err != nil {
		t.Fatalf("synthesize error: %v", err)
	}
	if !strings.Contains(answer, "אין לי מידע") {
		t.Errorf("Hebrew question should get the Hebrew fallback, got %q", answer)
	}
}

func TestSynthesizeWrapsGeneratorFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("deadline exceeded")}
	s := NewSynthesizer(gen, 6)

	_, err := s.Synthesize(context.Background(), "dental?", scoredChunks(), nil, completeProfile())
	if !errors.Is(err, ErrGenerationUnavailable) {
		t.Fatalf("want ErrGenerationUnavailable, got %v", err)
	}
}

func TestSynthesizeLimitsHistory(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	s := NewSynthesizer(gen, 2)

	history := []models.Turn{
		{Role: "user", Content: "oldest message"},
		{Role: "assistant", Content: "old reply"},
		{Role: "user", Content: "recent question"},
	}
	if _, err := s.Synthesize(context.Background(), "dental?", scoredChunks(), history, completeProfile()); err != nil {
		t.Fatalf("synthesize error: %v", err)
	}
	if strings.Contains(gen.lastPrompt, "oldest message") {
		t.Error("prompt should drop turns beyond the history window")
	}
	if !strings.Contains(gen.lastPrompt, "recent question") {
		t.Error("prompt should keep the most recent turns")
	}
}
