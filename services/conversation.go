package services

import (
	"fmt"
	"strings"

	"hmo-chatbot-backend/models"
	"hmo-chatbot-backend/utils"
)

// CorrectionFallback controls what happens when a user rejects the
// confirmation summary but names no recognizable field.
type CorrectionFallback string

const (
	// CorrectionRestart clears the profile and starts collection over.
	CorrectionRestart CorrectionFallback = "restart"
	// CorrectionReconfirm keeps the profile and asks the user to name the
	// field they want to change.
	CorrectionReconfirm CorrectionFallback = "reconfirm"
)

// ConversationState is derived fresh from the transcript on every request.
// Nothing here survives between calls; the caller owns the transcript.
type ConversationState struct {
	Phase   models.Phase
	Profile models.UserProfile
	// Next is the index of the field being collected, -1 outside COLLECTING.
	Next int
}

// Collector drives the information collection phase: which field to request
// next, validation of answers, and the confirmation handshake.
type Collector struct {
	schema   *FieldSchema
	fallback CorrectionFallback
}

func NewCollector(schema *FieldSchema, fallback CorrectionFallback) *Collector {
	if fallback != CorrectionReconfirm {
		fallback = CorrectionRestart
	}
	return &Collector{schema: schema, fallback: fallback}
}

// InitialState is the state for an empty transcript.
func (c *Collector) InitialState() ConversationState {
	return ConversationState{Phase: models.PhaseCollecting, Profile: models.UserProfile{}, Next: 0}
}

// DeriveState replays the transcript's user turns through the machine.
// Assistant turns are ignored, so identical transcripts always produce
// identical states regardless of what the server said in between.
func (c *Collector) DeriveState(history []models.Turn) ConversationState {
	state := c.InitialState()
	for _, turn := range history {
		if turn.Role != "user" {
			continue
		}
		state, _ = c.Advance(state, turn.Content)
	}
	return state
}

// Advance applies one user message and returns the new state plus the
// outbound reply. In the QA phase the collector emits nothing; those turns
// belong to the retrieval pipeline.
func (c *Collector) Advance(state ConversationState, message string) (ConversationState, string) {
	lang := utils.DetectLanguage(message)

	switch state.Phase {
	case models.PhaseCollecting:
		return c.collect(state, message, lang)
	case models.PhaseConfirming:
		return c.confirm(state, message, lang)
	default:
		return state, ""
	}
}

func (c *Collector) collect(state ConversationState, message string, lang utils.Language) (ConversationState, string) {
	field := c.schema.Fields[state.Next]
	value, verr := field.Validate(message)
	if verr != nil {
		// invalid input keeps the pointer in place: error plus re-prompt
		return state, c.validationReply(field, verr, lang)
	}

	profile := state.Profile.Clone()
	profile[field.ID] = value

	next := c.schema.FirstUnfilled(profile)
	if next == -1 {
		confirming := ConversationState{Phase: models.PhaseConfirming, Profile: profile, Next: -1}
		return confirming, c.summaryReply(profile, lang)
	}
	collecting := ConversationState{Phase: models.PhaseCollecting, Profile: profile, Next: next}
	return collecting, c.schema.Fields[next].Prompt(lang)
}

func (c *Collector) confirm(state ConversationState, message string, lang utils.Language) (ConversationState, string) {
	if isAffirmative(message) {
		qa := ConversationState{Phase: models.PhaseQA, Profile: state.Profile, Next: -1}
		return qa, qaReadyReply(state.Profile, lang)
	}

	if idx, ok := c.schema.MatchFieldMention(message); ok {
		field := c.schema.Fields[idx]
		profile := state.Profile.Clone()
		delete(profile, field.ID)
		next := c.schema.FirstUnfilled(profile)
		collecting := ConversationState{Phase: models.PhaseCollecting, Profile: profile, Next: next}
		return collecting, c.schema.Fields[next].Prompt(lang)
	}

	if c.fallback == CorrectionReconfirm {
		return state, reconfirmReply(lang)
	}
	restarted := c.InitialState()
	return restarted, restartReply(lang) + "\n\n" + c.schema.Fields[0].Prompt(lang)
}

func (c *Collector) validationReply(field FieldSpec, verr *ValidationError, lang utils.Language) string {
	var msg string
	switch verr.Kind {
	case ValidationEmpty:
		if lang == utils.LanguageHebrew {
			msg = fmt.Sprintf("לא הזנת %s.", field.Display(lang))
		} else {
			msg = fmt.Sprintf("You did not enter your %s.", field.Display(lang))
		}
	case ValidationBadFormat:
		if lang == utils.LanguageHebrew {
			msg = fmt.Sprintf("הערך שהוזן עבור %s אינו תקין.", field.Display(lang))
		} else {
			msg = fmt.Sprintf("That does not look like a valid %s.", field.Display(lang))
		}
	case ValidationUnrecognizedValue:
		allowed := strings.Join(field.AllowedDisplay(lang), " / ")
		if lang == utils.LanguageHebrew {
			msg = fmt.Sprintf("לא זיהיתי את הערך עבור %s. האפשרויות הן: %s.", field.Display(lang), allowed)
		} else {
			msg = fmt.Sprintf("I did not recognize that %s. The options are: %s.", field.Display(lang), allowed)
		}
	}
	return msg + "\n" + field.Prompt(lang)
}

func (c *Collector) summaryReply(profile models.UserProfile, lang utils.Language) string {
	var b strings.Builder
	if lang == utils.LanguageHebrew {
		b.WriteString("הנה סיכום המידע שלך:\n")
	} else {
		b.WriteString("Here's a summary of your information:\n")
	}
	for _, field := range c.schema.Fields {
		value := profile[field.ID]
		if field.Kind == KindEnum {
			for _, opt := range field.Options {
				if opt.Canonical == value {
					if lang == utils.LanguageHebrew {
						value = opt.DisplayHE
					} else {
						value = opt.DisplayEN
					}
					break
				}
			}
		}
		b.WriteString(fmt.Sprintf("- %s: %s\n", field.Display(lang), value))
	}
	if lang == utils.LanguageHebrew {
		b.WriteString("\nהאם הפרטים נכונים?")
	} else {
		b.WriteString("\nIs everything correct?")
	}
	return b.String()
}

func qaReadyReply(profile models.UserProfile, lang utils.Language) string {
	name := profile.FullName()
	if lang == utils.LanguageHebrew {
		return fmt.Sprintf("תודה %s! במה אפשר לעזור? אפשר לשאול אותי כל שאלה על שירותי קופת החולים שלך.", name)
	}
	return fmt.Sprintf("Thank you, %s! How can I help? You can ask me anything about your health fund services.", name)
}

func reconfirmReply(lang utils.Language) string {
	if lang == utils.LanguageHebrew {
		return "איזה פרט תרצה/י לתקן? (למשל: שם, תעודת זהות, קופת חולים, רמת חברות)"
	}
	return "Which detail would you like to change? (for example: name, ID number, health fund, membership tier)"
}

func restartReply(lang utils.Language) string {
	if lang == utils.LanguageHebrew {
		return "אין בעיה, נתחיל מחדש."
	}
	return "No problem, let's start over."
}

// Confirmation keyword lists, matched by containment on the folded message.
var affirmativeKeywords = []string{
	"כן", "נכון", "מאשר", "מאשרת", "מדויק", "בסדר", "מצוין", "מעולה", "סבבה",
	"yes", "correct", "confirm", "confirmed", "right", "ok", "okay", "sure",
	"good", "fine", "perfect", "exactly", "yep", "yeah",
}

var negativeKeywords = []string{
	"לא", "טעות", "שגוי", "שגויה", "לתקן", "לשנות",
	"no", "not", "wrong", "incorrect", "change", "fix", "mistake",
}

func isAffirmative(message string) bool {
	folded := utils.Fold(message)
	for _, kw := range negativeKeywords {
		if containsWord(folded, kw) {
			return false
		}
	}
	for _, kw := range affirmativeKeywords {
		if containsWord(folded, kw) {
			return true
		}
	}
	return false
}

func containsWord(folded, word string) bool {
	idx := strings.Index(folded, word)
	for idx >= 0 {
		before := idx == 0 || isBoundary(rune(folded[idx-1]))
		afterIdx := idx + len(word)
		after := afterIdx >= len(folded) || isBoundary(rune(folded[afterIdx]))
		if before && after {
			return true
		}
		next := strings.Index(folded[idx+1:], word)
		if next < 0 {
			return false
		}
		idx = idx + 1 + next
	}
	return false
}

func isBoundary(r rune) bool {
	return r == ' ' || r == ',' || r == '.' || r == '!' || r == '?' || r == ':' || r == ';' || r == '\n' || r == '\t' || r == '-' || r == '(' || r == ')'
}
