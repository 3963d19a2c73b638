package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"circuitech-be/internal/constant"
	"circuitech-be/pkg/llm"
)

const extractionTimeout = 30 * time.Second

// Extractor runs the clarify-or-query prompt contract against the
// completion service.
type Extractor struct {
	provider llm.LLMProvider
}

func NewExtractor(provider llm.LLMProvider) *Extractor {
	return &Extractor{provider: provider}
}

// Extract builds the message sequence (system instruction, history, optional
// serialized context turn, new user message) and parses the model's JSON
// reply into an ExtractionResult. Parse failures surface as
// MALFORMED_MODEL_OUTPUT and are not retried.
func (e *Extractor) Extract(ctx context.Context, history []llm.Message, designContext map[string]interface{}, message string) (*ExtractionResult, error) {
	messages := make([]llm.Message, 0, len(history)+3)
	messages = append(messages, llm.Message{
		Role:    constant.ChatMessageRoleSystem,
		Content: constant.ExtractionPromptV1,
	})
	messages = append(messages, history...)

	if designContext != nil {
		contextJSON, err := json.Marshal(designContext)
		if err != nil {
			return nil, newAgentError(StageExtraction, KindMalformedModelOutput,
				fmt.Sprintf("serialize design context: %v", err), err)
		}
		messages = append(messages, llm.Message{
			Role:    constant.ChatMessageRoleUser,
			Content: string(contextJSON),
		})
	}

	messages = append(messages, llm.Message{
		Role:    constant.ChatMessageRoleUser,
		Content: message,
	})

	ctx, cancel := context.WithTimeout(ctx, extractionTimeout)
	defer cancel()

	raw, err := e.provider.Chat(ctx, messages,
		llm.WithTemperature(0.2),
		llm.WithJSONOutput(),
	)
	if err != nil {
		return nil, newAgentError(StageExtraction, KindCompletionFailed,
			fmt.Sprintf("completion call failed: %v", err), err)
	}

	var result ExtractionResult
	if err := json.Unmarshal(stripJSONFences([]byte(raw)), &result); err != nil {
		return nil, newAgentError(StageExtraction, KindMalformedModelOutput,
			fmt.Sprintf("invalid extraction JSON: %v", err), err)
	}

	return &result, nil
}

// stripJSONFences removes markdown code fences some models wrap around JSON
// even when JSON output was requested.
func stripJSONFences(raw []byte) []byte {
	raw = bytes.TrimSpace(raw)
	raw = bytes.TrimPrefix(raw, []byte("```json"))
	raw = bytes.TrimPrefix(raw, []byte("```"))
	raw = bytes.TrimSuffix(raw, []byte("```"))
	return bytes.TrimSpace(raw)
}
