package agent

import (
	"circuitech-be/pkg/parts"
	"encoding/json"
	"time"
)

// ExtractionResult is the clarify-or-query decision for one user message.
// Immutable once produced.
type ExtractionResult struct {
	IsReadyForBom bool     `json:"isReadyForBom"`
	Reply         string   `json:"reply"`
	SearchQueries []string `json:"search_queries"`
}

// QueryResult is the outcome of a single sourcing query: either a candidate
// list or the error that query ran into. Partial data is the steady state,
// not an error path.
type QueryResult struct {
	Parts []parts.PartCandidate
	Err   string
}

// MarshalJSON keeps the shape the synthesis prompt expects: a plain candidate
// array on success, an {"error": ...} object on failure, so the model can see
// that a source was unavailable.
func (q QueryResult) MarshalJSON() ([]byte, error) {
	if q.Err != "" {
		return json.Marshal(map[string]string{"error": q.Err})
	}
	return json.Marshal(q.Parts)
}

// SearchOutcome maps each issued query to its result. One entry per query,
// always, successes and failures alike.
type SearchOutcome map[string]QueryResult

// BomItem is a single line-item in a Bill of Materials. The whole item set
// is rejected when any item fails its bounds.
type BomItem struct {
	PartNumber    string  `json:"partNumber" validate:"required"`
	Manufacturer  string  `json:"manufacturer"`
	Description   string  `json:"description" validate:"required"`
	Quantity      int     `json:"quantity" validate:"gte=1"`
	EstimatedCost float64 `json:"estimatedCost" validate:"gte=0"`
}

// Response is the terminal artifact of one orchestration call. TotalCost is
// round(sum quantity*estimatedCost, 2) when Items is non-empty, 0 otherwise.
// Never mutated after construction.
type Response struct {
	IsReadyForBom bool      `json:"isReadyForBom"`
	Reply         string    `json:"reply"`
	Items         []BomItem `json:"items,omitempty"`
	TotalCost     float64   `json:"totalCost"`
	CreatedAt     time.Time `json:"createdAt"`
}

// PinConnection is a single logical connection in the generated netlist.
type PinConnection struct {
	SourcePart  string `json:"source_part" validate:"required"`
	SourcePin   string `json:"source_pin" validate:"required"`
	TargetPart  string `json:"target_part" validate:"required"`
	TargetPin   string `json:"target_pin" validate:"required"`
	SignalType  string `json:"signal_type"` // e.g., "I2C", "UART", "Power", "Ground"
	Description string `json:"description"`
}

// PinMap is the netlist derived from a BOM.
type PinMap struct {
	Connections []PinConnection `json:"connections" validate:"required,dive"`
}
