package sdk

import (
	"encoding/json"

	"github.com/ethanbaker/api/pkg/api_types"
	"github.com/ethanbaker/smartmarket/pkg/gateway"
	"github.com/ethanbaker/smartmarket/pkg/ledger"
	"github.com/shopspring/decimal"
)

// ApiResponse represents a standard API response structure
type ApiResponse[T any] struct {
	Status  api_types.StatusType `json:"status"`          // Status message
	Code    int                  `json:"code"`            // Status code
	Message string               `json:"message"`         // Human-readable message
	Data    T                    `json:"data,omitempty"`  // Optional data field for successful responses
	Error   any                  `json:"error,omitempty"` // Optional errors field for error responses
}

// AsGinResponse converts the ApiResponse to a format suitable for Gin framework
func (r ApiResponse[T]) AsGinResponse() (int, any) {
	return r.Code, r
}

// AsJSON converts the ApiResponse to a format suitable for JSON responses
func (r ApiResponse[T]) AsJSON() (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func NewSuccessResponse[T any](message string, data T) ApiResponse[T] {
	return ApiResponse[T]{
		Status:  api_types.StatusSuccess,
		Code:    200,
		Message: message,
		Data:    data,
	}
}

func NewCreatedResponse[T any](message string, data T) ApiResponse[T] {
	return ApiResponse[T]{
		Status:  api_types.StatusSuccess,
		Code:    201,
		Message: message,
		Data:    data,
	}
}

// NewFailResponse reports a request the caller must change before retrying
func NewFailResponse(code int, message string, err any) ApiResponse[any] {
	return ApiResponse[any]{
		Status:  api_types.StatusFail,
		Code:    code,
		Message: message,
		Error:   err,
	}
}

func NewErrorResponse(code int, message string, err any) ApiResponse[any] {
	return ApiResponse[any]{
		Status:  api_types.StatusError,
		Code:    code,
		Message: message,
		Error:   err,
	}
}

/** Item Requests */

// CreateItemRequest represents the request body for creating an item
type CreateItemRequest struct {
	ItemID       string          `json:"item_id" binding:"required"`
	Name         string          `json:"name" binding:"required"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	Quantity     int64           `json:"quantity"`

	Brand                    *string          `json:"brand,omitempty"`
	Category                 *string          `json:"category,omitempty"`
	IsOnPromotion            *bool            `json:"is_on_promotion,omitempty"`
	PromotionDiscountPercent *decimal.Decimal `json:"promotion_discount_percent,omitempty"`
	ImageURL                 *string          `json:"image_url,omitempty"`
	Note                     *string          `json:"note,omitempty"`
}

func (r *CreateItemRequest) ToNewItem() ledger.NewItem {
	return ledger.NewItem{
		ItemID:                   r.ItemID,
		Name:                     r.Name,
		CurrentPrice:             r.CurrentPrice,
		CostPrice:                r.CostPrice,
		Quantity:                 r.Quantity,
		Brand:                    r.Brand,
		Category:                 r.Category,
		IsOnPromotion:            r.IsOnPromotion,
		PromotionDiscountPercent: r.PromotionDiscountPercent,
		ImageURL:                 r.ImageURL,
		Note:                     r.Note,
	}
}

// UpdateItemRequest carries the writable descriptive fields. Any other key
// in the body (quantity, prices, ...) is ignored.
type UpdateItemRequest struct {
	Name                     *string          `json:"name,omitempty"`
	Brand                    *string          `json:"brand,omitempty"`
	Category                 *string          `json:"category,omitempty"`
	ImageURL                 *string          `json:"image_url,omitempty"`
	Note                     *string          `json:"note,omitempty"`
	IsOnPromotion            *bool            `json:"is_on_promotion,omitempty"`
	PromotionDiscountPercent *decimal.Decimal `json:"promotion_discount_percent,omitempty"`
}

func (r *UpdateItemRequest) ToFields() ledger.ItemFields {
	return ledger.ItemFields{
		Name:                     r.Name,
		Brand:                    r.Brand,
		Category:                 r.Category,
		ImageURL:                 r.ImageURL,
		Note:                     r.Note,
		IsOnPromotion:            r.IsOnPromotion,
		PromotionDiscountPercent: r.PromotionDiscountPercent,
	}
}

// PriceChangeRequest represents the request body for changing prices
type PriceChangeRequest struct {
	CurrentPrice *decimal.Decimal `json:"current_price,omitempty"`
	CostPrice    *decimal.Decimal `json:"cost_price,omitempty"`
}

// PurchaseRequest represents the request body for recording a purchase
type PurchaseRequest struct {
	Quantity         int64           `json:"quantity" binding:"required"`
	PurchaseUnitCost decimal.Decimal `json:"purchase_unit_cost"`
}

// SaleRequest represents the request body for recording a sale. A missing
// sale_unit_cost uses the item's current cost price.
type SaleRequest struct {
	Quantity      int64            `json:"quantity" binding:"required"`
	SaleUnitPrice decimal.Decimal  `json:"sale_unit_price"`
	SaleUnitCost  *decimal.Decimal `json:"sale_unit_cost,omitempty"`
}

// PromotionRequest represents the request body for setting a promotion
type PromotionRequest struct {
	IsOnPromotion            bool            `json:"is_on_promotion"`
	PromotionDiscountPercent decimal.Decimal `json:"promotion_discount_percent"`
}

// NoteRequest represents the request body for replacing an item's note
type NoteRequest struct {
	Note string `json:"note"`
}

// ImageRequest represents the request body for pointing an item at an image
type ImageRequest struct {
	ImageURL string `json:"image_url" binding:"required"`
}

// ReplayResponse compares an item's live read row with the fold of its facts
type ReplayResponse struct {
	ItemID     string             `json:"item_id"`
	Live       bool               `json:"live"`
	Replayed   *ledger.Item       `json:"replayed"`
	Divergence *ledger.Divergence `json:"divergence,omitempty"`
}

/** Chat Requests */

// AskRequest represents the request body for a conversational question.
// Confirm must be set to execute a write returned as pending.
type AskRequest struct {
	Question string `json:"question" binding:"required"`
	Confirm  bool   `json:"confirm"`
}

// AskResponse is the flattened outcome of an ask
type AskResponse = gateway.Result

// AnalyzeNoteRequest represents the request body for note analysis
type AnalyzeNoteRequest struct {
	Note string `json:"note" binding:"required"`
}

// HealthResponse represents the health check payload
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}
