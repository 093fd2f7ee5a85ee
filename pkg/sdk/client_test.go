package sdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethanbaker/smartmarket/pkg/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientSendsKeyAndDecodesData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-API-KEY"))
		assert.Equal(t, "/api/items", r.URL.Path)
		assert.Equal(t, "fruit", r.URL.Query().Get("category"))
		assert.Equal(t, "app", r.URL.Query().Get("q"))

		_ = json.NewEncoder(w).Encode(NewSuccessResponse("ok", []ledger.Item{{ItemID: "A", Name: "Apple"}}))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", "secret")
	items, err := client.ListItems(context.Background(), ledger.Filter{Text: "app", Category: "fruit"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Apple", items[0].Name)
}

func TestClientDecodesErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(NewFailResponse(http.StatusConflict, "Failed to record sale", "insufficient stock"))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "").Sell(context.Background(), "A", &SaleRequest{Quantity: 3})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "Failed to record sale", apiErr.Message)
	assert.Equal(t, "insufficient stock", apiErr.Detail)
	assert.Equal(t, "/api/items/A/sale", apiErr.Path)
}

func TestClientKeepsPlainErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "").Health(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "bad gateway", apiErr.Message)
	assert.Nil(t, apiErr.Detail)
}

func TestItemPathEscapesID(t *testing.T) {
	assert.Equal(t, "/api/items/a%2Fb/events", itemPath("a/b", "events"))
	assert.Equal(t, "/api/items/A", itemPath("A"))
}
