package agent

import (
	"context"
	"math"
	"time"

	"circuitech-be/internal/pkg/logger"
	"circuitech-be/pkg/llm"
	"circuitech-be/pkg/parts"
)

// State names for the orchestration state machine. Extracting is the only
// entry point; Done and Failed are terminal.
type State string

const (
	StateStart        State = "start"
	StateExtracting   State = "extracting"
	StateSourcing     State = "sourcing"
	StateSynthesizing State = "synthesizing"
	StateDone         State = "done"
	StateFailed       State = "failed"
)

// Orchestrator sequences Extraction -> (conditionally) Sourcing -> Synthesis
// for one user message. Stage failures surface as *AgentError; there is no
// cross-stage recovery. The orchestrator holds no per-call state, so one
// instance serves concurrent calls.
type Orchestrator struct {
	extractor   *Extractor
	sourcer     *Sourcer
	synthesizer *Synthesizer
	logger      logger.ILogger
}

func NewOrchestrator(llmProvider llm.LLMProvider, searchProvider parts.SearchProvider, log logger.ILogger) *Orchestrator {
	return &Orchestrator{
		extractor:   NewExtractor(llmProvider),
		sourcer:     NewSourcer(searchProvider),
		synthesizer: NewSynthesizer(llmProvider),
		logger:      log,
	}
}

// Run executes one orchestration call. Either a full Response comes back
// (ready or not-ready) or an *AgentError tagged with the failing stage --
// never a partial ready Response.
func (o *Orchestrator) Run(ctx context.Context, message string, history []llm.Message, designContext map[string]interface{}) (*Response, error) {
	state := StateExtracting
	o.logger.Debug("bom_agent", "state transition", map[string]interface{}{"state": string(state)})

	extraction, err := o.extractor.Extract(ctx, history, designContext, message)
	if err != nil {
		o.logFailure(state, err)
		return nil, err
	}

	// Not-ready short circuit: zero provider calls, no items, reply passes
	// through verbatim.
	if !extraction.IsReadyForBom || len(extraction.SearchQueries) == 0 {
		state = StateDone
		o.logger.Info("bom_agent", "clarification needed", map[string]interface{}{
			"queries": len(extraction.SearchQueries),
		})
		return &Response{
			IsReadyForBom: false,
			Reply:         extraction.Reply,
			Items:         nil,
			TotalCost:     0.0,
			CreatedAt:     time.Now().UTC(),
		}, nil
	}

	state = StateSourcing
	o.logger.Debug("bom_agent", "state transition", map[string]interface{}{
		"state":   string(state),
		"queries": len(extraction.SearchQueries),
	})

	outcome := o.sourcer.Source(ctx, extraction.SearchQueries)

	state = StateSynthesizing
	o.logger.Debug("bom_agent", "state transition", map[string]interface{}{"state": string(state)})

	items, err := o.synthesizer.Synthesize(ctx, message, outcome)
	if err != nil {
		o.logFailure(state, err)
		return nil, err
	}

	state = StateDone
	total := totalCost(items)
	o.logger.Info("bom_agent", "bom synthesized", map[string]interface{}{
		"items":     len(items),
		"totalCost": total,
	})

	return &Response{
		IsReadyForBom: true,
		Reply:         extraction.Reply,
		Items:         items,
		TotalCost:     total,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

func (o *Orchestrator) logFailure(state State, err error) {
	o.logger.Error("bom_agent", "stage failed", map[string]interface{}{
		"state": string(state),
		"error": err.Error(),
	})
}

// totalCost rounds the item sum to cents. Idempotent for a given item list.
func totalCost(items []BomItem) float64 {
	if len(items) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, item := range items {
		sum += float64(item.Quantity) * item.EstimatedCost
	}
	return math.Round(sum*100) / 100
}
