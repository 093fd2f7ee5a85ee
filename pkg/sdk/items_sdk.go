package sdk

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ethanbaker/smartmarket/pkg/ledger"
)

// Health checks the backend and its database
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var out ApiResponse[HealthResponse]
	if err := c.doJSON(ctx, http.MethodGet, "/api/health", nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// Create a new item
func (c *Client) CreateItem(ctx context.Context, req *CreateItemRequest) (*ledger.Fact, error) {
	return c.mutate(ctx, http.MethodPost, "/api/items", req)
}

// Update the descriptive fields of an item. A nil fact means nothing changed.
func (c *Client) UpdateItem(ctx context.Context, id string, req *UpdateItemRequest) (*ledger.Fact, error) {
	return c.mutate(ctx, http.MethodPut, itemPath(id), req)
}

// Change the selling and/or cost price of an item
func (c *Client) ChangePrice(ctx context.Context, id string, req *PriceChangeRequest) (*ledger.Fact, error) {
	return c.mutate(ctx, http.MethodPost, itemPath(id, "price"), req)
}

// Record stock bought for an item
func (c *Client) Purchase(ctx context.Context, id string, req *PurchaseRequest) (*ledger.Fact, error) {
	return c.mutate(ctx, http.MethodPost, itemPath(id, "purchase"), req)
}

// Record units of an item sold
func (c *Client) Sell(ctx context.Context, id string, req *SaleRequest) (*ledger.Fact, error) {
	return c.mutate(ctx, http.MethodPost, itemPath(id, "sale"), req)
}

// Set the promotion of an item
func (c *Client) SetPromotion(ctx context.Context, id string, req *PromotionRequest) (*ledger.Fact, error) {
	return c.mutate(ctx, http.MethodPost, itemPath(id, "promotion"), req)
}

// Replace the note of an item
func (c *Client) AddNote(ctx context.Context, id string, req *NoteRequest) (*ledger.Fact, error) {
	return c.mutate(ctx, http.MethodPost, itemPath(id, "note"), req)
}

// Point an item at an image
func (c *Client) SetImage(ctx context.Context, id string, req *ImageRequest) (*ledger.Fact, error) {
	return c.mutate(ctx, http.MethodPost, itemPath(id, "image"), req)
}

// Delete an item. Its history stays available.
func (c *Client) DeleteItem(ctx context.Context, id string) (*ledger.Fact, error) {
	return c.mutate(ctx, http.MethodDelete, itemPath(id), nil)
}

// Get the live read row of an item
func (c *Client) GetItem(ctx context.Context, id string) (*ledger.Item, error) {
	var out ApiResponse[ledger.Item]
	if err := c.doJSON(ctx, http.MethodGet, itemPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// List live items matching the filter
func (c *Client) ListItems(ctx context.Context, filter ledger.Filter) ([]ledger.Item, error) {
	query := url.Values{}
	if filter.Text != "" {
		query.Set("q", filter.Text)
	}
	if filter.Category != "" {
		query.Set("category", filter.Category)
	}
	if filter.Brand != "" {
		query.Set("brand", filter.Brand)
	}

	path := "/api/items"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var out ApiResponse[[]ledger.Item]
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// Get every fact recorded for an item in occurrence order
func (c *Client) GetHistory(ctx context.Context, id string) ([]ledger.Fact, error) {
	var out ApiResponse[[]ledger.Fact]
	if err := c.doJSON(ctx, http.MethodGet, itemPath(id, "events"), nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// Replay the facts of an item and compare them with its read row
func (c *Client) Replay(ctx context.Context, id string) (*ReplayResponse, error) {
	var out ApiResponse[ReplayResponse]
	if err := c.doJSON(ctx, http.MethodGet, itemPath(id, "replay"), nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// List the distinct categories of live items
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	return c.stringList(ctx, "/api/items/distinct/categories")
}

// List the distinct brands of live items
func (c *Client) Brands(ctx context.Context) ([]string, error) {
	return c.stringList(ctx, "/api/items/distinct/brands")
}

// Get the accumulated profit of every live item
func (c *Client) ProfitReport(ctx context.Context) ([]ledger.ItemProfit, error) {
	var out ApiResponse[[]ledger.ItemProfit]
	if err := c.doJSON(ctx, http.MethodGet, "/api/reports/profit", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// Get inventory value grouped by category
func (c *Client) CategoryValueReport(ctx context.Context) ([]ledger.CategoryValue, error) {
	var out ApiResponse[[]ledger.CategoryValue]
	if err := c.doJSON(ctx, http.MethodGet, "/api/reports/category-value", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// Get realised sale margin per month
func (c *Client) MonthlyProfitReport(ctx context.Context) ([]ledger.MonthProfit, error) {
	var out ApiResponse[[]ledger.MonthProfit]
	if err := c.doJSON(ctx, http.MethodGet, "/api/reports/monthly-profit", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) mutate(ctx context.Context, method, path string, in any) (*ledger.Fact, error) {
	var out ApiResponse[*ledger.Fact]
	if err := c.doJSON(ctx, method, path, in, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) stringList(ctx context.Context, path string) ([]string, error) {
	var out ApiResponse[[]string]
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}
