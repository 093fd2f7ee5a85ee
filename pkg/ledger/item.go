package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is the current-state read row of one live item. It is a cache that
// must always equal the fold of the item's facts.
type Item struct {
	ItemID                   string          `json:"item_id" gorm:"column:item_id;primaryKey;size:64"`
	Name                     string          `json:"name" gorm:"size:255;not null"`
	CurrentPrice             decimal.Decimal `json:"current_price" gorm:"type:decimal(20,4);not null"`
	CostPrice                decimal.Decimal `json:"cost_price" gorm:"type:decimal(20,4);not null"`
	Quantity                 int64           `json:"quantity" gorm:"not null"`
	Brand                    string          `json:"brand" gorm:"size:255;index"`
	Category                 string          `json:"category" gorm:"size:255;index"`
	IsOnPromotion            bool            `json:"is_on_promotion" gorm:"not null"`
	PromotionDiscountPercent decimal.Decimal `json:"promotion_discount_percent" gorm:"type:decimal(20,4);not null"`
	ImageURL                 string          `json:"image_url" gorm:"type:text"`
	Note                     string          `json:"note" gorm:"type:text"`
	InventoryValue           decimal.Decimal `json:"inventory_value" gorm:"type:decimal(20,4);not null"`
	TotalProfit              decimal.Decimal `json:"total_profit" gorm:"type:decimal(20,4);not null"`

	// UpdatedAt is the occurrence time of the last fact folded into the row
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime:false;autoCreateTime:false"`
}

// TableName sets the table name for GORM
func (Item) TableName() string {
	return "read_items"
}

// Equal reports whether two rows hold the same projected state
func (i *Item) Equal(o *Item) bool {
	if i == nil || o == nil {
		return i == nil && o == nil
	}
	return i.ItemID == o.ItemID &&
		i.Name == o.Name &&
		i.CurrentPrice.Equal(o.CurrentPrice) &&
		i.CostPrice.Equal(o.CostPrice) &&
		i.Quantity == o.Quantity &&
		i.Brand == o.Brand &&
		i.Category == o.Category &&
		i.IsOnPromotion == o.IsOnPromotion &&
		i.PromotionDiscountPercent.Equal(o.PromotionDiscountPercent) &&
		i.ImageURL == o.ImageURL &&
		i.Note == o.Note &&
		i.InventoryValue.Equal(o.InventoryValue) &&
		i.TotalProfit.Equal(o.TotalProfit) &&
		i.UpdatedAt.Equal(o.UpdatedAt)
}

// Diff lists the names of projected fields that differ between two rows
func (i *Item) Diff(o *Item) []string {
	if i == nil || o == nil {
		if i == nil && o == nil {
			return nil
		}
		return []string{"item_id"}
	}

	var fields []string
	add := func(name string, same bool) {
		if !same {
			fields = append(fields, name)
		}
	}
	add("name", i.Name == o.Name)
	add("current_price", i.CurrentPrice.Equal(o.CurrentPrice))
	add("cost_price", i.CostPrice.Equal(o.CostPrice))
	add("quantity", i.Quantity == o.Quantity)
	add("brand", i.Brand == o.Brand)
	add("category", i.Category == o.Category)
	add("is_on_promotion", i.IsOnPromotion == o.IsOnPromotion)
	add("promotion_discount_percent", i.PromotionDiscountPercent.Equal(o.PromotionDiscountPercent))
	add("image_url", i.ImageURL == o.ImageURL)
	add("note", i.Note == o.Note)
	add("inventory_value", i.InventoryValue.Equal(o.InventoryValue))
	add("total_profit", i.TotalProfit.Equal(o.TotalProfit))
	add("updated_at", i.UpdatedAt.Equal(o.UpdatedAt))
	return fields
}

// Filter narrows ListItems. Empty fields match everything.
type Filter struct {
	Text     string `json:"text" form:"q"`
	Category string `json:"category" form:"category"`
	Brand    string `json:"brand" form:"brand"`
}
