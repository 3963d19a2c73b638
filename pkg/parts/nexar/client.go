package nexar

import (
	"bytes"
	"circuitech-be/pkg/parts"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.nexar.com"

// supSearchQuery fetches the cheapest live offer for an exact MPN.
const supSearchQuery = `
query Search($mpn: String!) {
  supSearch(q: $mpn, limit: 1) {
    results {
      part {
        mpn
        manufacturer {
          name
        }
        shortDescription
        sellers {
          company {
            name
          }
          offers {
            prices {
              price
              currency
            }
            inventoryLevel
          }
        }
      }
    }
  }
}`

// Client queries the Nexar (Octopart) GraphQL API for real-time stock and
// pricing by exact part number. It is the alternate provider next to the
// DigiKey keyword search.
type Client struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// Ensure Client implements SearchProvider
var _ parts.SearchProvider = &Client{}

func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		APIKey:  apiKey,
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// --- Wire structs (Internal to this package) ---

type graphqlRequest struct {
	Query     string            `json:"query"`
	Variables map[string]string `json:"variables"`
}

type supSearchResponse struct {
	Data struct {
		SupSearch struct {
			Results []struct {
				Part struct {
					Mpn          string `json:"mpn"`
					Manufacturer struct {
						Name string `json:"name"`
					} `json:"manufacturer"`
					ShortDescription string `json:"shortDescription"`
					Sellers          []struct {
						Offers []struct {
							Prices []struct {
								Price    float64 `json:"price"`
								Currency string  `json:"currency"`
							} `json:"prices"`
							InventoryLevel int `json:"inventoryLevel"`
						} `json:"offers"`
					} `json:"sellers"`
				} `json:"part"`
			} `json:"results"`
		} `json:"supSearch"`
	} `json:"data"`
}

// Search resolves an exact MPN and returns at most one candidate, priced at
// the first in-stock USD offer. An unknown MPN yields an empty list, not an
// error.
func (c *Client) Search(ctx context.Context, query string) ([]parts.PartCandidate, error) {
	payload := graphqlRequest{
		Query:     supSearchQuery,
		Variables: map[string]string{"mpn": query},
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal graphql request: %v", parts.ErrProvider, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/graphql", bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: create graphql request: %v", parts.ErrProvider, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: graphql request failed: %v", parts.ErrProvider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read graphql response: %v", parts.ErrProvider, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: graphql status %d: %s", parts.ErrProvider, resp.StatusCode, string(body))
	}

	var searchResp supSearchResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return nil, fmt.Errorf("%w: decode graphql response: %v", parts.ErrProvider, err)
	}

	results := searchResp.Data.SupSearch.Results
	if len(results) == 0 {
		return []parts.PartCandidate{}, nil
	}

	part := results[0].Part

	// First available in-stock USD price wins
	bestPrice := 0.0
	for _, seller := range part.Sellers {
		for _, offer := range seller.Offers {
			if offer.InventoryLevel <= 0 || len(offer.Prices) == 0 {
				continue
			}
			if offer.Prices[0].Currency == "USD" {
				bestPrice = offer.Prices[0].Price
				break
			}
		}
		if bestPrice > 0 {
			break
		}
	}

	return []parts.PartCandidate{{
		PartNumber:   part.Mpn,
		Manufacturer: part.Manufacturer.Name,
		Description:  part.ShortDescription,
		UnitPrice:    bestPrice,
	}}, nil
}
