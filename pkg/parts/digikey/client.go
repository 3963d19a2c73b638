package digikey

import (
	"bytes"
	"circuitech-be/pkg/parts"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const defaultBaseURL = "https://api.digikey.com"

// Client searches the DigiKey keyword API using the OAuth2 client-credentials
// flow. The bearer token is cached for the process lifetime and invalidated
// only when the search endpoint answers 401; there is no expiry tracking.
type Client struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	HTTPClient   *http.Client

	mu    sync.Mutex
	token string
}

// Ensure Client implements SearchProvider
var _ parts.SearchProvider = &Client{}

func NewClient(clientID, clientSecret, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		BaseURL:      baseURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// --- Wire structs (Internal to this package) ---

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

type keywordRequest struct {
	Keywords             string               `json:"Keywords"`
	RecordCount          int                  `json:"RecordCount"`
	RecordStartPosition  int                  `json:"RecordStartPosition"`
	Sort                 keywordSort          `json:"Sort"`
	FilterOptionsRequest keywordFilterOptions `json:"FilterOptionsRequest"`
}

type keywordSort struct {
	SortOption string `json:"SortOption"`
	Direction  string `json:"Direction"`
}

type keywordFilterOptions struct {
	SearchOptions []string `json:"SearchOptions"`
}

type keywordResponse struct {
	Products []struct {
		ManufacturerPartNumber string `json:"ManufacturerPartNumber"`
		Manufacturer           struct {
			Value string `json:"Value"`
		} `json:"Manufacturer"`
		ProductDescription string `json:"ProductDescription"`
		StandardPricing    []struct {
			UnitPrice float64 `json:"UnitPrice"`
		} `json:"StandardPricing"`
	} `json:"Products"`
}

// getToken returns the cached bearer token, exchanging client credentials
// when no token is cached yet.
func (c *Client) getToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("client_id", c.ClientID)
	form.Set("client_secret", c.ClientSecret)
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: create token request: %v", parts.ErrAuth, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: token request failed: %v", parts.ErrAuth, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: token endpoint status %d: %s", parts.ErrAuth, resp.StatusCode, string(body))
	}

	var tokenResp tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("%w: decode token response: %v", parts.ErrAuth, err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("%w: token endpoint returned empty access_token", parts.ErrAuth)
	}

	c.token = tokenResp.AccessToken
	return c.token, nil
}

// invalidate clears the cached token only if it is still the stale value,
// so a concurrent refresh that already replaced it is not thrown away.
func (c *Client) invalidate(stale string) {
	c.mu.Lock()
	if c.token == stale {
		c.token = ""
	}
	c.mu.Unlock()
}

// Search runs a keyword search and normalizes the result list. A 401 from
// the search endpoint invalidates the cached token and retries exactly once
// with a fresh one; a second 401 propagates as a provider error.
func (c *Client) Search(ctx context.Context, query string) ([]parts.PartCandidate, error) {
	token, err := c.getToken(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.doSearch(ctx, token, query)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		c.invalidate(token)
		token, err = c.getToken(ctx)
		if err != nil {
			return nil, err
		}

		resp, err = c.doSearch(ctx, token, query)
		if err != nil {
			return nil, err
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read search response: %v", parts.ErrProvider, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: search status %d: %s", parts.ErrProvider, resp.StatusCode, string(body))
	}

	var searchResp keywordResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return nil, fmt.Errorf("%w: decode search response: %v", parts.ErrProvider, err)
	}

	results := make([]parts.PartCandidate, 0, len(searchResp.Products))
	for _, product := range searchResp.Products {
		cost := 0.0
		if len(product.StandardPricing) > 0 {
			cost = product.StandardPricing[0].UnitPrice
		}
		results = append(results, parts.PartCandidate{
			PartNumber:   product.ManufacturerPartNumber,
			Manufacturer: product.Manufacturer.Value,
			Description:  product.ProductDescription,
			UnitPrice:    cost,
		})
	}

	return results, nil
}

func (c *Client) doSearch(ctx context.Context, token, query string) (*http.Response, error) {
	payload := keywordRequest{
		Keywords:            query,
		RecordCount:         3,
		RecordStartPosition: 0,
		Sort: keywordSort{
			SortOption: "SortByPrice",
			Direction:  "Ascending",
		},
		FilterOptionsRequest: keywordFilterOptions{
			SearchOptions: []string{"InStock"},
		},
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal search request: %v", parts.ErrProvider, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/Search/v3/Products/Keyword", bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: create search request: %v", parts.ErrProvider, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-DIGIKEY-Client-Id", c.ClientID)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: search request failed: %v", parts.ErrProvider, err)
	}
	return resp, nil
}
