package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"circuitech-be/internal/constant"
	"circuitech-be/pkg/llm"

	"github.com/go-playground/validator/v10"
)

const synthesisTimeout = 30 * time.Second

// Synthesizer turns the full per-query outcome map into a typed, validated
// BOM item list via the select-best-components prompt contract.
type Synthesizer struct {
	provider llm.LLMProvider
	validate *validator.Validate
}

func NewSynthesizer(provider llm.LLMProvider) *Synthesizer {
	return &Synthesizer{
		provider: provider,
		validate: validator.New(),
	}
}

type synthesisReply struct {
	Items []BomItem `json:"items"`
}

// Synthesize serializes the outcome map (per-query errors included, which
// tells the model a source was unavailable) alongside the original request
// into one completion call. The model is an untrusted text producer: the
// decoded items are validated before becoming domain entities, and one
// invalid item rejects the whole set. There is no fallback; a broken
// synthesis fails the request rather than returning a partial BOM.
func (s *Synthesizer) Synthesize(ctx context.Context, request string, outcome SearchOutcome) ([]BomItem, error) {
	outcomeJSON, err := json.Marshal(outcome)
	if err != nil {
		return nil, newAgentError(StageSynthesis, KindMalformedModelOutput,
			fmt.Sprintf("serialize search outcome: %v", err), err)
	}

	messages := []llm.Message{
		{
			Role:    constant.ChatMessageRoleSystem,
			Content: constant.SynthesisPromptV1,
		},
		{
			Role:    constant.ChatMessageRoleUser,
			Content: fmt.Sprintf("User Request: %s\n\nSearch Results:\n%s", request, string(outcomeJSON)),
		},
	}

	ctx, cancel := context.WithTimeout(ctx, synthesisTimeout)
	defer cancel()

	raw, err := s.provider.Chat(ctx, messages,
		llm.WithTemperature(0.2),
		llm.WithJSONOutput(),
	)
	if err != nil {
		return nil, newAgentError(StageSynthesis, KindCompletionFailed,
			fmt.Sprintf("completion call failed: %v", err), err)
	}

	var reply synthesisReply
	if err := json.Unmarshal(stripJSONFences([]byte(raw)), &reply); err != nil {
		return nil, newAgentError(StageSynthesis, KindMalformedModelOutput,
			fmt.Sprintf("invalid synthesis JSON: %v", err), err)
	}

	for i, item := range reply.Items {
		if err := s.validate.Struct(item); err != nil {
			return nil, newAgentError(StageSynthesis, KindValidationError,
				fmt.Sprintf("item %d (%s) failed validation: %v", i, item.PartNumber, err), err)
		}
	}

	return reply.Items, nil
}
