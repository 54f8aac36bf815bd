// Package disambiguation implements the follow-up-question state machine:
// IDLE / AWAITING_SELECTION / RESOLVED / REPROMPTED / EXPIRED, backed by a
// network key-value store with an in-process fallback.
package disambiguation

import "time"

// State names one stage of the disambiguation lifecycle.
type State string

const (
	StateIdle              State = "IDLE"
	StateAwaitingSelection State = "AWAITING_SELECTION"
	StateResolved          State = "RESOLVED"
	StateReprompted        State = "REPROMPTED"
	StateExpired           State = "EXPIRED"
)

// Option is one selectable branch of a pending follow-up question.
type Option struct {
	Index       int               `json:"index"`
	DisplayName string            `json:"display_name"`
	CanonicalID string            `json:"canonical_id"`
	MatchKeys   []string          `json:"match_keys"`
	AnswerText  string            `json:"answer_text"`
	Params      map[string]string `json:"params"`
}

// PendingState is the persisted AWAITING_SELECTION record.
type PendingState struct {
	Kind       string    `json:"kind"`
	PromptText string    `json:"prompt_text"`
	Options    []Option  `json:"options"`
	CreatedAt  time.Time `json:"created_at"`

	// Context is the opaque carry-over: whatever the originating
	// collaborator needs to complete the query once an Option is selected.
	Context map[string]string `json:"context,omitempty"`
}
