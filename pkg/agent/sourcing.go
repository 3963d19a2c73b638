package agent

import (
	"context"
	"sync"

	"circuitech-be/pkg/parts"
)

const defaultMaxConcurrentSearches = 5

// Sourcer fans search queries out to the parts provider concurrently. A
// failing query lands in its outcome slot as an error string and never
// aborts sibling queries. Retries live in the provider's token-refresh
// logic, not here. Identical queries are issued independently.
type Sourcer struct {
	provider      parts.SearchProvider
	maxConcurrent int
}

func NewSourcer(provider parts.SearchProvider) *Sourcer {
	return &Sourcer{
		provider:      provider,
		maxConcurrent: defaultMaxConcurrentSearches,
	}
}

// Source issues one provider call per query. The returned outcome has
// exactly one entry per query regardless of individual failures; completion
// order never affects key identity.
func (s *Sourcer) Source(ctx context.Context, queries []string) SearchOutcome {
	outcome := make(SearchOutcome, len(queries))
	if len(queries) == 0 {
		return outcome
	}

	type slot struct {
		query  string
		result QueryResult
	}

	results := make([]slot, len(queries))

	sem := make(chan struct{}, s.maxConcurrent)
	var wg sync.WaitGroup

	for i, query := range queries {
		wg.Add(1)
		go func(i int, query string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			candidates, err := s.provider.Search(ctx, query)
			if err != nil {
				results[i] = slot{query: query, result: QueryResult{Err: err.Error()}}
				return
			}
			results[i] = slot{query: query, result: QueryResult{Parts: candidates}}
		}(i, query)
	}

	wg.Wait()

	for _, r := range results {
		outcome[r.query] = r.result
	}

	return outcome
}
