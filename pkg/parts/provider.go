package parts

import "context"

// PartCandidate is a provider-neutral search hit. Provider-specific response
// shapes (nested price breaks, manufacturer sub-objects) are normalized away
// by each client.
type PartCandidate struct {
	PartNumber   string  `json:"partNumber"`
	Manufacturer string  `json:"manufacturer"`
	Description  string  `json:"description"`
	UnitPrice    float64 `json:"unitPrice"`
}

// SearchProvider defines the contract for any parts-search backend
type SearchProvider interface {
	// Search runs a free-text or exact-MPN query and returns normalized candidates
	Search(ctx context.Context, query string) ([]PartCandidate, error)
}
