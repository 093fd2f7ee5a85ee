package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind identifies what happened to an item
type Kind string

const (
	KindCreate       Kind = "CREATE"
	KindUpdate       Kind = "UPDATE"
	KindPriceChange  Kind = "PRICE_CHANGE"
	KindPurchase     Kind = "PURCHASE"
	KindSale         Kind = "SALE"
	KindSetPromotion Kind = "SET_PROMOTION"
	KindNoteAdded    Kind = "NOTE_ADDED"
	KindDelete       Kind = "DELETE"

	// KindReconcile carries an absolute snapshot of a read row. It is only
	// appended when a confirmed gateway write changed read rows directly.
	KindReconcile Kind = "RECONCILE"
)

// Valid reports whether k is a known fact kind
func (k Kind) Valid() bool {
	switch k {
	case KindCreate, KindUpdate, KindPriceChange, KindPurchase, KindSale,
		KindSetPromotion, KindNoteAdded, KindDelete, KindReconcile:
		return true
	}
	return false
}

// Fact is an immutable record of something that happened to an item. Facts
// are appended once and never updated or deleted; corrections are new facts.
type Fact struct {
	Seq        uint64    `json:"seq" gorm:"primaryKey;autoIncrement"`
	EventID    uuid.UUID `json:"event_id" gorm:"type:char(36);uniqueIndex;not null"`
	ItemID     string    `json:"item_id" gorm:"size:64;not null;index:idx_facts_item_occurred,priority:1"`
	Kind       Kind      `json:"kind" gorm:"size:20;not null;index"`
	OccurredAt time.Time `json:"occurred_at" gorm:"not null;index:idx_facts_item_occurred,priority:2"`

	// Projected payload, nil when the fact does not touch the field
	Name                     *string          `json:"name,omitempty" gorm:"size:255"`
	CurrentPrice             *decimal.Decimal `json:"current_price,omitempty" gorm:"type:decimal(20,4)"`
	CostPrice                *decimal.Decimal `json:"cost_price,omitempty" gorm:"type:decimal(20,4)"`
	QuantityAfter            *int64           `json:"quantity_after,omitempty"`
	QuantityDelta            *int64           `json:"quantity_delta,omitempty"`
	Brand                    *string          `json:"brand,omitempty" gorm:"size:255"`
	Category                 *string          `json:"category,omitempty" gorm:"size:255"`
	IsOnPromotion            *bool            `json:"is_on_promotion,omitempty"`
	PromotionDiscountPercent *decimal.Decimal `json:"promotion_discount_percent,omitempty" gorm:"type:decimal(20,4)"`
	ImageURL                 *string          `json:"image_url,omitempty" gorm:"type:text"`
	Note                     *string          `json:"note,omitempty" gorm:"type:text"`

	// Transaction-only payload
	SaleUnitPrice    *decimal.Decimal `json:"sale_unit_price,omitempty" gorm:"type:decimal(20,4)"`
	SaleUnitCost     *decimal.Decimal `json:"sale_unit_cost,omitempty" gorm:"type:decimal(20,4)"`
	PurchaseUnitCost *decimal.Decimal `json:"purchase_unit_cost,omitempty" gorm:"type:decimal(20,4)"`

	// Derived snapshot values, only set on RECONCILE facts
	InventoryValue *decimal.Decimal `json:"inventory_value,omitempty" gorm:"type:decimal(20,4)"`
	TotalProfit    *decimal.Decimal `json:"total_profit,omitempty" gorm:"type:decimal(20,4)"`
}

// TableName sets the table name for GORM
func (Fact) TableName() string {
	return "facts"
}

// NewFact creates an empty fact of the given kind for an item
func NewFact(itemID string, kind Kind) *Fact {
	return &Fact{
		EventID: uuid.New(),
		ItemID:  itemID,
		Kind:    kind,
	}
}

// snapshotFact builds a RECONCILE fact holding every projected field of row
func snapshotFact(row *Item) *Fact {
	f := NewFact(row.ItemID, KindReconcile)
	f.Name = ptr(row.Name)
	f.CurrentPrice = ptr(row.CurrentPrice)
	f.CostPrice = ptr(row.CostPrice)
	f.QuantityAfter = ptr(row.Quantity)
	f.Brand = ptr(row.Brand)
	f.Category = ptr(row.Category)
	f.IsOnPromotion = ptr(row.IsOnPromotion)
	f.PromotionDiscountPercent = ptr(row.PromotionDiscountPercent)
	f.ImageURL = ptr(row.ImageURL)
	f.Note = ptr(row.Note)
	f.InventoryValue = ptr(row.InventoryValue)
	f.TotalProfit = ptr(row.TotalProfit)
	return f
}

func ptr[T any](v T) *T {
	return &v
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}
