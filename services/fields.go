package services

import (
	"strconv"
	"strings"

	"hmo-chatbot-backend/models"
	"hmo-chatbot-backend/utils"
)

// FieldKind is the closed set of validation behaviors. The field set is fixed
// at compile time, so kinds are tagged variants rather than an open interface.
type FieldKind int

const (
	KindFreeText FieldKind = iota
	KindNumericID
	KindNumericRange
	KindEnum
)

// EnumOption is one allowed value of an enumerated field. Aliases are
// pre-folded (lowercase, diacritics stripped) spellings in both languages.
type EnumOption struct {
	Canonical string
	Aliases   []string
	DisplayEN string
	DisplayHE string
}

// FieldSpec declares one required field: how to prompt for it, how to
// validate raw input, and how to normalize the accepted value. Specs are
// immutable and defined once at startup.
type FieldSpec struct {
	ID        string
	Kind      FieldKind
	Digits    int          // KindNumericID: exact digit count
	Min, Max  int          // KindNumericRange bounds, inclusive
	Options   []EnumOption // KindEnum
	PromptEN  string
	PromptHE  string
	DisplayEN string
	DisplayHE string
	// NameKeywords are folded bilingual tokens used to match a field the
	// user names during the confirmation phase ("my tier is wrong").
	NameKeywords []string
}

// Prompt returns the field's question in the given language.
func (f FieldSpec) Prompt(lang utils.Language) string {
	if lang == utils.LanguageHebrew {
		return f.PromptHE
	}
	return f.PromptEN
}

// Display returns the field's human name in the given language.
func (f FieldSpec) Display(lang utils.Language) string {
	if lang == utils.LanguageHebrew {
		return f.DisplayHE
	}
	return f.DisplayEN
}

// Validate checks raw input against the field's rule and returns the
// normalized value. Pure function: no side effects, no I/O.
//
// Numeric kinds tolerate surrounding words and separators ("my ID is
// 123-456-789"); only the digits are kept. Enum aliases match whole tokens,
// never substrings, so "female" cannot hit the "male" alias.
func (f FieldSpec) Validate(raw string) (string, *ValidationError) {
	trimmed := strings.TrimSpace(raw)

	switch f.Kind {
	case KindFreeText:
		if trimmed == "" {
			return "", &ValidationError{FieldID: f.ID, Kind: ValidationEmpty}
		}
		return trimmed, nil

	case KindNumericID:
		digits := utils.DigitsOnly(trimmed)
		if len(digits) != f.Digits {
			return "", &ValidationError{FieldID: f.ID, Kind: ValidationBadFormat}
		}
		return digits, nil

	case KindNumericRange:
		digits := utils.DigitsOnly(trimmed)
		if digits == "" {
			return "", &ValidationError{FieldID: f.ID, Kind: ValidationBadFormat}
		}
		n, err := strconv.Atoi(digits)
		if err != nil || n < f.Min || n > f.Max {
			return "", &ValidationError{FieldID: f.ID, Kind: ValidationBadFormat}
		}
		return strconv.Itoa(n), nil

	case KindEnum:
		tokens := splitTokens(utils.Fold(trimmed))
		for _, opt := range f.Options {
			for _, alias := range opt.Aliases {
				for _, tok := range tokens {
					if tokenMatches(tok, alias) {
						return opt.Canonical, nil
					}
				}
			}
		}
		return "", &ValidationError{
			FieldID: f.ID,
			Kind:    ValidationUnrecognizedValue,
			Allowed: f.canonicalValues(),
		}
	}
	return "", &ValidationError{FieldID: f.ID, Kind: ValidationBadFormat}
}

func (f FieldSpec) canonicalValues() []string {
	vals := make([]string, len(f.Options))
	for i, opt := range f.Options {
		vals[i] = opt.Canonical
	}
	return vals
}

// AllowedDisplay lists the enumerated options in the given language.
func (f FieldSpec) AllowedDisplay(lang utils.Language) []string {
	vals := make([]string, len(f.Options))
	for i, opt := range f.Options {
		if lang == utils.LanguageHebrew {
			vals[i] = opt.DisplayHE
		} else {
			vals[i] = opt.DisplayEN
		}
	}
	return vals
}

// FieldSchema is the ordered set of required fields.
type FieldSchema struct {
	Fields []FieldSpec
}

// ByID returns the spec for a field id.
func (s *FieldSchema) ByID(id string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// FirstUnfilled returns the index of the first field missing from the
// profile, or -1 when every field is present.
func (s *FieldSchema) FirstUnfilled(profile models.UserProfile) int {
	for i, f := range s.Fields {
		if profile[f.ID] == "" {
			return i
		}
	}
	return -1
}

// Complete reports whether every required field holds a validated value.
func (s *FieldSchema) Complete(profile models.UserProfile) bool {
	return s.FirstUnfilled(profile) == -1
}

// MatchFieldMention finds the field a correction message refers to. Fields
// are scanned in reverse schema order so the more specific ones (card number
// before HMO name) win when several keywords appear.
func (s *FieldSchema) MatchFieldMention(message string) (int, bool) {
	folded := utils.Fold(message)
	tokens := splitTokens(folded)

	for i := len(s.Fields) - 1; i >= 0; i-- {
		for _, kw := range s.Fields[i].NameKeywords {
			if strings.Contains(kw, " ") {
				if strings.Contains(folded, kw) {
					return i, true
				}
				continue
			}
			for _, tok := range tokens {
				if tokenMatches(tok, kw) {
					return i, true
				}
			}
		}
	}
	return -1, false
}

// splitTokens breaks folded text into letter/digit tokens (Latin and Hebrew).
func splitTokens(folded string) []string {
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || (r >= 0x0590 && r <= 0x05FF))
	})
}

// tokenMatches reports whether tok is kw, possibly carrying a common Hebrew
// prefix letter (definite article, conjunction, or preposition).
func tokenMatches(tok, kw string) bool {
	if tok == kw {
		return true
	}
	if !strings.HasSuffix(tok, kw) {
		return false
	}
	switch strings.TrimSuffix(tok, kw) {
	case "ה", "ו", "ב", "ל", "ש", "מה", "וה", "שה", "בה":
		return true
	}
	return false
}

// DefaultSchema returns the field set collected before the Q&A phase, in
// collection order.
func DefaultSchema() *FieldSchema {
	return &FieldSchema{Fields: []FieldSpec{
		{
			ID:           "full_name",
			Kind:         KindFreeText,
			PromptEN:     "Hello! To get started, what is your full name?",
			PromptHE:     "שלום! כדי להתחיל, מה שמך המלא?",
			DisplayEN:    "full name",
			DisplayHE:    "שם מלא",
			NameKeywords: []string{"name", "שם"},
		},
		{
			ID:           "id_number",
			Kind:         KindNumericID,
			Digits:       9,
			PromptEN:     "Thanks! What is your ID number? (9 digits)",
			PromptHE:     "תודה! מה מספר תעודת הזהות שלך? (9 ספרות)",
			DisplayEN:    "ID number",
			DisplayHE:    "מספר תעודת זהות",
			NameKeywords: []string{"id", "identity", "תעודת זהות", "זהות"},
		},
		{
			ID:   "gender",
			Kind: KindEnum,
			Options: []EnumOption{
				{Canonical: "male", Aliases: []string{"male", "man", "זכר", "גבר"}, DisplayEN: "male", DisplayHE: "זכר"},
				{Canonical: "female", Aliases: []string{"female", "woman", "נקבה", "אישה"}, DisplayEN: "female", DisplayHE: "נקבה"},
			},
			PromptEN:     "What is your gender? (male / female)",
			PromptHE:     "מה המגדר שלך? (זכר / נקבה)",
			DisplayEN:    "gender",
			DisplayHE:    "מגדר",
			NameKeywords: []string{"gender", "sex", "מגדר", "מין"},
		},
		{
			ID:           "age",
			Kind:         KindNumericRange,
			Min:          0,
			Max:          120,
			PromptEN:     "How old are you?",
			PromptHE:     "בן/בת כמה את/ה?",
			DisplayEN:    "age",
			DisplayHE:    "גיל",
			NameKeywords: []string{"age", "old", "גיל"},
		},
		{
			ID:   "hmo_name",
			Kind: KindEnum,
			Options: []EnumOption{
				{Canonical: "maccabi", Aliases: []string{"maccabi", "מכבי"}, DisplayEN: "Maccabi", DisplayHE: "מכבי"},
				{Canonical: "meuhedet", Aliases: []string{"meuhedet", "meuchedet", "מאוחדת"}, DisplayEN: "Meuhedet", DisplayHE: "מאוחדת"},
				{Canonical: "clalit", Aliases: []string{"clalit", "כללית"}, DisplayEN: "Clalit", DisplayHE: "כללית"},
			},
			PromptEN:     "Which health fund (HMO) are you a member of? (Maccabi / Meuhedet / Clalit)",
			PromptHE:     "באיזו קופת חולים את/ה חבר/ה? (מכבי / מאוחדת / כללית)",
			DisplayEN:    "health fund",
			DisplayHE:    "קופת חולים",
			NameKeywords: []string{"hmo", "fund", "health fund", "קופה", "קופת חולים"},
		},
		{
			ID:           "hmo_card_number",
			Kind:         KindNumericID,
			Digits:       9,
			PromptEN:     "What is your HMO card number? (9 digits)",
			PromptHE:     "מה מספר כרטיס קופת החולים שלך? (9 ספרות)",
			DisplayEN:    "HMO card number",
			DisplayHE:    "מספר כרטיס קופת חולים",
			NameKeywords: []string{"card", "כרטיס"},
		},
		{
			ID:   "membership_tier",
			Kind: KindEnum,
			Options: []EnumOption{
				{Canonical: "gold", Aliases: []string{"gold", "זהב"}, DisplayEN: "Gold", DisplayHE: "זהב"},
				{Canonical: "silver", Aliases: []string{"silver", "כסף"}, DisplayEN: "Silver", DisplayHE: "כסף"},
				{Canonical: "bronze", Aliases: []string{"bronze", "ארד"}, DisplayEN: "Bronze", DisplayHE: "ארד"},
			},
			PromptEN:     "What is your membership tier? (Gold / Silver / Bronze)",
			PromptHE:     "מהי רמת החברות שלך? (זהב / כסף / ארד)",
			DisplayEN:    "membership tier",
			DisplayHE:    "רמת חברות",
			NameKeywords: []string{"tier", "level", "membership", "רמה", "רמת", "מסלול", "חברות"},
		},
	}}
}
