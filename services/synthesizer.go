package services

import (
	"context"
	"fmt"
	"strings"

	"hmo-chatbot-backend/models"
	"hmo-chatbot-backend/utils"
)

// Synthesizer composes the grounded prompt and produces the final answer.
// It never invents content: empty retrieval short-circuits to a fixed
// fallback without touching the generator, and generator failures propagate
// as typed errors instead of fabricated text.
type Synthesizer struct {
	generator  Generator
	maxHistory int
}

func NewSynthesizer(generator Generator, maxHistory int) *Synthesizer {
	if maxHistory <= 0 {
		maxHistory = 6
	}
	return &Synthesizer{generator: generator, maxHistory: maxHistory}
}

// Synthesize answers the question from the retrieved chunks and recent
// conversation turns. The returned text is the generator's output verbatim.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, results []models.ScoredChunk, history []models.Turn, profile models.UserProfile) (string, error) {
	lang := utils.DetectLanguage(question)
	if len(results) == 0 {
		return noCoverageReply(profile, lang), nil
	}

	prompt := s.buildPrompt(question, results, history, profile)
	answer, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationUnavailable, err)
	}
	return answer, nil
}

func (s *Synthesizer) buildPrompt(question string, results []models.ScoredChunk, history []models.Turn, profile models.UserProfile) string {
	var b strings.Builder

	b.WriteString("You are a medical services assistant specializing in Israeli health funds (קופות חולים).\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("1. Answer ONLY from the knowledge base excerpts below. If they do not contain the answer, say you do not have that information. Never invent facts.\n")
	b.WriteString(fmt.Sprintf("2. The user belongs to the %s health fund with %s membership. Highlight what applies to that fund and tier.\n",
		profile.Organization(), profile.Tier()))
	b.WriteString("3. Respond in the same language as the question (Hebrew or English), with proper right-to-left formatting for Hebrew.\n")
	b.WriteString("4. Be concise, clear, and helpful.\n\n")

	b.WriteString("## User Profile\n")
	b.WriteString(fmt.Sprintf("- Name: %s\n- Health fund: %s\n- Membership tier: %s\n\n",
		profile.FullName(), profile.Organization(), profile.Tier()))

	if recent := recentTurns(history, s.maxHistory); len(recent) > 0 {
		b.WriteString("## Recent Conversation\n")
		for _, turn := range recent {
			b.WriteString(fmt.Sprintf("%s: %s\n", turn.Role, turn.Content))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Knowledge Base\n")
	for i, r := range results {
		b.WriteString(fmt.Sprintf("Excerpt %d (%s):\n%s\n\n", i+1, r.Chunk.DocumentID, r.Chunk.Text))
	}

	b.WriteString("## Question\n")
	b.WriteString(question)
	b.WriteString("\n\nAnswer:")
	return b.String()
}

func recentTurns(history []models.Turn, max int) []models.Turn {
	if len(history) <= max {
		return history
	}
	return history[len(history)-max:]
}

// noCoverageReply is the fixed grounding fallback: stated in the user's
// language, scoped to their fund and tier, with no model involvement.
func noCoverageReply(profile models.UserProfile, lang utils.Language) string {
	if lang == utils.LanguageHebrew {
		return fmt.Sprintf("מצטער/ת, אין לי מידע על כך עבור חברי %s ברמת חברות %s. אפשר לנסות לנסח את השאלה אחרת או לפנות ישירות לקופת החולים.",
			profile.Organization(), profile.Tier())
	}
	return fmt.Sprintf("Sorry, I don't have information about that for %s members at the %s tier. Try rephrasing your question, or contact your health fund directly.",
		profile.Organization(), profile.Tier())
}
