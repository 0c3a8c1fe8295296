package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for dependency and invariant failures. Validation problems
// never surface through these: they are handled inside the collection state
// machine as in-conversation re-prompts.
var (
	// ErrIncompleteProfile means retrieval was invoked before every required
	// field was collected. The state machine guarantees this cannot happen,
	// so hitting it is a programming error, not a user-facing condition.
	ErrIncompleteProfile = errors.New("incomplete profile")

	// ErrGenerationUnavailable wraps transport failures of the text
	// generation provider.
	ErrGenerationUnavailable = errors.New("generation unavailable")

	// ErrEmbeddingUnavailable wraps transport failures of the embedding
	// provider.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")
)

// ValidationErrorKind classifies why a field value was rejected.
type ValidationErrorKind string

const (
	ValidationEmpty             ValidationErrorKind = "EMPTY"
	ValidationBadFormat         ValidationErrorKind = "BAD_FORMAT"
	ValidationUnrecognizedValue ValidationErrorKind = "UNRECOGNIZED_VALUE"
)

// ValidationError is a recoverable user-input problem. It carries the
// canonical allowed values for enumerated fields so the re-prompt can list
// them in the user's language.
type ValidationError struct {
	FieldID string
	Kind    ValidationErrorKind
	Allowed []string
}

func (e *ValidationError) Error() string {
	if len(e.Allowed) > 0 {
		return fmt.Sprintf("field %s: %s (allowed: %s)", e.FieldID, e.Kind, strings.Join(e.Allowed, ", "))
	}
	return fmt.Sprintf("field %s: %s", e.FieldID, e.Kind)
}
