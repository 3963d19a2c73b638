package agent

import (
	"fmt"
)

// Kind classifies what went wrong inside a stage.
type Kind string

const (
	// KindCompletionFailed: the completion service call itself failed.
	KindCompletionFailed Kind = "COMPLETION_FAILED"
	// KindMalformedModelOutput: JSON parse or schema-shape failure from the
	// completion service. Never retried automatically.
	KindMalformedModelOutput Kind = "MALFORMED_MODEL_OUTPUT"
	// KindProviderError: non-success parts-provider response after the
	// single token-refresh retry.
	KindProviderError Kind = "PROVIDER_ERROR"
	// KindAuthError: the credential exchange itself failed.
	KindAuthError Kind = "AUTH_ERROR"
	// KindValidationError: a synthesized item set failed its bounds.
	KindValidationError Kind = "VALIDATION_ERROR"
)

// Stage names for error tagging.
const (
	StageExtraction = "extraction"
	StageSourcing   = "sourcing"
	StageSynthesis  = "synthesis"
	StagePinmap     = "pinmap"
)

// AgentError tags a stage failure with its originating stage. The
// orchestrator never swallows these; they surface to the caller as a single
// structured failure instead of a partial response.
type AgentError struct {
	Stage  string
	Kind   Kind
	Detail string
	Err    error
}

func (e *AgentError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Stage, e.Kind, e.Detail)
}

func (e *AgentError) Unwrap() error {
	return e.Err
}

func newAgentError(stage string, kind Kind, detail string, err error) *AgentError {
	return &AgentError{
		Stage:  stage,
		Kind:   kind,
		Detail: detail,
		Err:    err,
	}
}
