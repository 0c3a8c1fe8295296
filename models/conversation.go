package models

import "time"

// Phase is the conversation phase derived from the transcript.
type Phase string

const (
	PhaseCollecting Phase = "COLLECTING"
	PhaseConfirming Phase = "CONFIRMING"
	PhaseQA         Phase = "QA"
)

// Turn is a single message in the conversation transcript.
type Turn struct {
	Role    string `json:"role" binding:"required,oneof=user assistant"`
	Content string `json:"content" binding:"required"`
}

// ChatRequest carries the full prior transcript plus the current message.
// The server keeps no session state: the caller owns the transcript and
// sends it back in full every turn.
type ChatRequest struct {
	History []Turn `json:"history"`
	Message string `json:"message" binding:"required,min=1,max=2000"`
}

// ChatResponse is the per-turn reply. Phase is exposed so the UI layer can
// render appropriately (e.g. a summary card during CONFIRMING) without
// re-deriving it.
type ChatResponse struct {
	Reply     string    `json:"reply"`
	Phase     Phase     `json:"phase"`
	Timestamp time.Time `json:"timestamp"`
}
