package nexar

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"circuitech-be/pkg/parts"

	"github.com/stretchr/testify/assert"
)

const supSearchBody = `{
	"data": {
		"supSearch": {
			"results": [
				{
					"part": {
						"mpn": "AHT20",
						"manufacturer": {"name": "Aosong"},
						"shortDescription": "Humidity and temperature sensor",
						"sellers": [
							{
								"offers": [
									{"prices": [{"price": 9.99, "currency": "EUR"}], "inventoryLevel": 100},
									{"prices": [{"price": 1.45, "currency": "USD"}], "inventoryLevel": 0},
									{"prices": [{"price": 1.5, "currency": "USD"}], "inventoryLevel": 320}
								]
							}
						]
					}
				}
			]
		}
	}
}`

func TestClient_Search_PicksFirstInStockUSDOffer(t *testing.T) {
	var gotReq graphqlRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Write([]byte(supSearchBody))
	}))
	defer srv.Close()

	c := NewClient("key", srv.URL)
	candidates, err := c.Search(context.Background(), "AHT20")

	assert.NoError(t, err)
	assert.Len(t, candidates, 1)
	assert.Equal(t, parts.PartCandidate{
		PartNumber:   "AHT20",
		Manufacturer: "Aosong",
		Description:  "Humidity and temperature sensor",
		UnitPrice:    1.5,
	}, candidates[0])
	assert.Equal(t, "AHT20", gotReq.Variables["mpn"])
}

func TestClient_Search_UnknownMpnIsEmptyNotError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {"supSearch": {"results": []}}}`))
	}))
	defer srv.Close()

	c := NewClient("key", srv.URL)
	candidates, err := c.Search(context.Background(), "NOPE-123")

	assert.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestClient_Search_HTTPErrorIsProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient("key", srv.URL)
	_, err := c.Search(context.Background(), "AHT20")

	assert.True(t, errors.Is(err, parts.ErrProvider))
}
