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

const pinmapTimeout = 45 * time.Second

// PinmapAgent is the single-stage sibling of the BOM orchestrator: BOM items
// in, validated pin-level netlist out.
type PinmapAgent struct {
	provider llm.LLMProvider
	validate *validator.Validate
}

func NewPinmapAgent(provider llm.LLMProvider) *PinmapAgent {
	return &PinmapAgent{
		provider: provider,
		validate: validator.New(),
	}
}

// Run sends the BOM array through the netlist prompt contract and returns a
// validated PinMap. Failures are tagged with the pinmap stage.
func (p *PinmapAgent) Run(ctx context.Context, bomItems []map[string]interface{}) (*PinMap, error) {
	itemsJSON, err := json.Marshal(bomItems)
	if err != nil {
		return nil, newAgentError(StagePinmap, KindMalformedModelOutput,
			fmt.Sprintf("serialize bom items: %v", err), err)
	}

	messages := []llm.Message{
		{
			Role:    constant.ChatMessageRoleSystem,
			Content: constant.PinmapPromptV1,
		},
		{
			Role:    constant.ChatMessageRoleUser,
			Content: fmt.Sprintf("Generate a pin map for these components: %s", string(itemsJSON)),
		},
	}

	ctx, cancel := context.WithTimeout(ctx, pinmapTimeout)
	defer cancel()

	raw, err := p.provider.Chat(ctx, messages,
		llm.WithTemperature(0.2),
		llm.WithJSONOutput(),
	)
	if err != nil {
		return nil, newAgentError(StagePinmap, KindCompletionFailed,
			fmt.Sprintf("completion call failed: %v", err), err)
	}
	if raw == "" {
		return nil, newAgentError(StagePinmap, KindMalformedModelOutput, "empty response from LLM", nil)
	}

	var pinmap PinMap
	if err := json.Unmarshal(stripJSONFences([]byte(raw)), &pinmap); err != nil {
		return nil, newAgentError(StagePinmap, KindMalformedModelOutput,
			fmt.Sprintf("invalid netlist JSON: %v", err), err)
	}

	if err := p.validate.Struct(&pinmap); err != nil {
		return nil, newAgentError(StagePinmap, KindValidationError,
			fmt.Sprintf("netlist failed validation: %v", err), err)
	}

	return &pinmap, nil
}
