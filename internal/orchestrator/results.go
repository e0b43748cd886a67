package orchestrator

import (
	"time"

	"github.com/roach88/tally/internal/action"
	"github.com/roach88/tally/internal/executor"
)

// StageReason explains why Stage did not stage anything.
type StageReason string

const (
	ReasonEmptyInput           StageReason = "empty_input"
	ReasonClassificationFailed StageReason = "classification_failed"
	ReasonNotAnAction          StageReason = "not_an_action"
	ReasonValidationFailed     StageReason = "validation_failed"
)

// StageResult is the answer to Stage.
type StageResult struct {
	Staged     bool           `json:"staged"`
	ID         string         `json:"id,omitempty"`
	Kind       action.Kind    `json:"kind,omitempty"`
	Payload    action.Payload `json:"payload,omitempty"`
	Preview    string         `json:"preview,omitempty"`
	Confidence float64        `json:"confidence,omitempty"`
	ExpiresAt  time.Time      `json:"expires_at,omitzero"`

	// Set when Staged is false.
	Reason  StageReason `json:"reason,omitempty"`
	Detail  string      `json:"detail,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Outcome is how a Resolve ended.
type Outcome string

const (
	OutcomeExecuted  Outcome = "executed"
	OutcomeFailed    Outcome = "failed"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeNotFound  Outcome = "not_found"
	OutcomeForbidden Outcome = "forbidden"
)

// Consumed reports whether the outcome removed the staged action.
func (o Outcome) Consumed() bool {
	switch o {
	case OutcomeExecuted, OutcomeFailed, OutcomeCancelled:
		return true
	default:
		return false
	}
}

// ResolveResult is the answer to Resolve.
type ResolveResult struct {
	Outcome Outcome     `json:"outcome"`
	ID      string      `json:"id"`
	Kind    action.Kind `json:"kind,omitempty"`
	Message string      `json:"message"`

	// Set for OutcomeExecuted.
	Result *executor.Result `json:"result,omitempty"`

	// Set for OutcomeFailed.
	Code executor.Code `json:"code,omitempty"`
	Item string        `json:"item,omitempty"`
}
