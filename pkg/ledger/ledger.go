package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// NewItem holds the attributes of an item being created
type NewItem struct {
	ItemID       string
	Name         string
	CurrentPrice decimal.Decimal
	CostPrice    decimal.Decimal
	Quantity     int64

	Brand                    *string
	Category                 *string
	IsOnPromotion            *bool
	PromotionDiscountPercent *decimal.Decimal
	ImageURL                 *string
	Note                     *string
}

// ItemFields is the set of fields UpdateItem may change. Nil fields are left untouched.
type ItemFields struct {
	Name                     *string
	Brand                    *string
	Category                 *string
	ImageURL                 *string
	Note                     *string
	IsOnPromotion            *bool
	PromotionDiscountPercent *decimal.Decimal
}

// Empty reports whether no field is set
func (f ItemFields) Empty() bool {
	return f.Name == nil && f.Brand == nil && f.Category == nil && f.ImageURL == nil &&
		f.Note == nil && f.IsOnPromotion == nil && f.PromotionDiscountPercent == nil
}

// PriceChange holds new selling and/or cost prices
type PriceChange struct {
	CurrentPrice *decimal.Decimal
	CostPrice    *decimal.Decimal
}

// Sale describes units sold. A nil UnitCost uses the item's current cost price.
type Sale struct {
	Quantity  int64
	UnitPrice decimal.Decimal
	UnitCost  *decimal.Decimal
}

// Ledger is the public operation set over the fact store. Every operation
// validates its input, builds exactly one fact and appends it together with
// the read row update.
type Ledger struct {
	store *Store
}

// New creates a ledger backed by the given store
func New(store *Store) *Ledger {
	return &Ledger{store: store}
}

// Store returns the fact store backing the ledger
func (l *Ledger) Store() *Store {
	return l.store
}

// CreateItem records a new item
func (l *Ledger) CreateItem(ctx context.Context, req NewItem) (*Fact, error) {
	id, err := validID(req.ItemID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: create requires a name", ErrInvalidInput)
	}
	if req.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", ErrInvalidInput)
	}
	if req.CurrentPrice.IsNegative() || req.CostPrice.IsNegative() {
		return nil, fmt.Errorf("%w: prices must not be negative", ErrInvalidInput)
	}
	if err := validPercent(req.PromotionDiscountPercent); err != nil {
		return nil, err
	}

	return l.store.Append(ctx, id, func(current *Item) (*Fact, error) {
		if current != nil {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateItem, id)
		}

		f := NewFact(id, KindCreate)
		f.Name = ptr(strings.TrimSpace(req.Name))
		f.CurrentPrice = ptr(money(req.CurrentPrice))
		f.CostPrice = ptr(money(req.CostPrice))
		f.QuantityAfter = ptr(req.Quantity)
		f.Brand = req.Brand
		f.Category = req.Category
		f.IsOnPromotion = req.IsOnPromotion
		f.PromotionDiscountPercent = roundPtr(req.PromotionDiscountPercent)
		f.ImageURL = req.ImageURL
		f.Note = req.Note
		return f, nil
	})
}

// UpdateItem changes descriptive fields. An empty field set appends nothing.
func (l *Ledger) UpdateItem(ctx context.Context, itemID string, fields ItemFields) (*Fact, error) {
	id, err := validID(itemID)
	if err != nil {
		return nil, err
	}
	if fields.Empty() {
		return nil, nil
	}
	if fields.Name != nil && strings.TrimSpace(*fields.Name) == "" {
		return nil, fmt.Errorf("%w: name must not be blank", ErrInvalidInput)
	}
	if err := validPercent(fields.PromotionDiscountPercent); err != nil {
		return nil, err
	}

	return l.store.Append(ctx, id, func(current *Item) (*Fact, error) {
		if current == nil {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}

		f := NewFact(id, KindUpdate)
		f.Name = fields.Name
		f.Brand = fields.Brand
		f.Category = fields.Category
		f.ImageURL = fields.ImageURL
		f.Note = fields.Note
		f.IsOnPromotion = fields.IsOnPromotion
		f.PromotionDiscountPercent = roundPtr(fields.PromotionDiscountPercent)
		return f, nil
	})
}

// SetImage points the item at a new image location
func (l *Ledger) SetImage(ctx context.Context, itemID, imageURL string) (*Fact, error) {
	url := strings.TrimSpace(imageURL)
	if url == "" {
		return nil, fmt.Errorf("%w: image_url is required", ErrInvalidInput)
	}
	return l.UpdateItem(ctx, itemID, ItemFields{ImageURL: &url})
}

// ChangePrice changes the selling price, the cost price, or both
func (l *Ledger) ChangePrice(ctx context.Context, itemID string, change PriceChange) (*Fact, error) {
	id, err := validID(itemID)
	if err != nil {
		return nil, err
	}
	if change.CurrentPrice == nil && change.CostPrice == nil {
		return nil, fmt.Errorf("%w: price change requires current_price and/or cost_price", ErrInvalidInput)
	}
	if (change.CurrentPrice != nil && change.CurrentPrice.IsNegative()) || (change.CostPrice != nil && change.CostPrice.IsNegative()) {
		return nil, fmt.Errorf("%w: prices must not be negative", ErrInvalidInput)
	}

	return l.store.Append(ctx, id, func(current *Item) (*Fact, error) {
		if current == nil {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}

		f := NewFact(id, KindPriceChange)
		f.CurrentPrice = roundPtr(change.CurrentPrice)
		f.CostPrice = roundPtr(change.CostPrice)
		return f, nil
	})
}

// Purchase adds stock bought at unitCost and moves the cost price to the
// quantity-weighted average
func (l *Ledger) Purchase(ctx context.Context, itemID string, quantity int64, unitCost decimal.Decimal) (*Fact, error) {
	id, err := validID(itemID)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: purchase quantity must be > 0", ErrInvalidInput)
	}
	if unitCost.IsNegative() {
		return nil, fmt.Errorf("%w: purchase_unit_cost must not be negative", ErrInvalidInput)
	}

	return l.store.Append(ctx, id, func(current *Item) (*Fact, error) {
		if current == nil {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}

		f := NewFact(id, KindPurchase)
		f.QuantityDelta = ptr(quantity)
		f.PurchaseUnitCost = ptr(money(unitCost))
		return f, nil
	})
}

// Sell removes sold stock and accumulates the sale margin into total profit
func (l *Ledger) Sell(ctx context.Context, itemID string, sale Sale) (*Fact, error) {
	id, err := validID(itemID)
	if err != nil {
		return nil, err
	}
	if sale.Quantity <= 0 {
		return nil, fmt.Errorf("%w: sale quantity must be > 0", ErrInvalidInput)
	}
	if sale.UnitPrice.IsNegative() || (sale.UnitCost != nil && sale.UnitCost.IsNegative()) {
		return nil, fmt.Errorf("%w: sale prices must not be negative", ErrInvalidInput)
	}

	return l.store.Append(ctx, id, func(current *Item) (*Fact, error) {
		if current == nil {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if sale.Quantity > current.Quantity {
			return nil, fmt.Errorf("%w: sale quantity %d exceeds current stock %d", ErrInsufficientStock, sale.Quantity, current.Quantity)
		}

		unitCost := current.CostPrice
		if sale.UnitCost != nil {
			unitCost = money(*sale.UnitCost)
		}

		f := NewFact(id, KindSale)
		f.QuantityDelta = ptr(-sale.Quantity)
		f.SaleUnitPrice = ptr(money(sale.UnitPrice))
		f.SaleUnitCost = ptr(unitCost)
		return f, nil
	})
}

// SetPromotion replaces the promotion flag and discount
func (l *Ledger) SetPromotion(ctx context.Context, itemID string, onPromotion bool, discountPercent decimal.Decimal) (*Fact, error) {
	id, err := validID(itemID)
	if err != nil {
		return nil, err
	}
	if err := validPercent(&discountPercent); err != nil {
		return nil, err
	}

	return l.store.Append(ctx, id, func(current *Item) (*Fact, error) {
		if current == nil {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}

		f := NewFact(id, KindSetPromotion)
		f.IsOnPromotion = ptr(onPromotion)
		f.PromotionDiscountPercent = ptr(money(discountPercent))
		return f, nil
	})
}

// AddNote replaces the item's note
func (l *Ledger) AddNote(ctx context.Context, itemID, note string) (*Fact, error) {
	id, err := validID(itemID)
	if err != nil {
		return nil, err
	}

	return l.store.Append(ctx, id, func(current *Item) (*Fact, error) {
		if current == nil {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}

		f := NewFact(id, KindNoteAdded)
		f.Note = ptr(note)
		return f, nil
	})
}

// DeleteItem removes the read row. The item's facts, including the DELETE
// fact itself, stay in the fact store.
func (l *Ledger) DeleteItem(ctx context.Context, itemID string) (*Fact, error) {
	id, err := validID(itemID)
	if err != nil {
		return nil, err
	}

	return l.store.Append(ctx, id, func(current *Item) (*Fact, error) {
		if current == nil {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return NewFact(id, KindDelete), nil
	})
}

// GetItem returns the live read row for an item
func (l *Ledger) GetItem(ctx context.Context, itemID string) (*Item, error) {
	id, err := validID(itemID)
	if err != nil {
		return nil, err
	}
	return l.store.GetItem(ctx, id)
}

// ListItems returns live read rows matching the filter
func (l *Ledger) ListItems(ctx context.Context, filter Filter) ([]Item, error) {
	return l.store.ListItems(ctx, filter)
}

// GetHistory returns every fact recorded for an item in occurrence order
func (l *Ledger) GetHistory(ctx context.Context, itemID string) ([]Fact, error) {
	id, err := validID(itemID)
	if err != nil {
		return nil, err
	}
	return l.store.History(ctx, id)
}

func validID(itemID string) (string, error) {
	id := strings.TrimSpace(itemID)
	if id == "" {
		return "", fmt.Errorf("%w: item_id is required", ErrInvalidInput)
	}
	if len(id) > 64 {
		return "", fmt.Errorf("%w: item_id is longer than 64 characters", ErrInvalidInput)
	}
	return id, nil
}

func validPercent(p *decimal.Decimal) error {
	if p == nil {
		return nil
	}
	if p.IsNegative() || p.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("%w: promotion_discount_percent must be between 0 and 100", ErrInvalidInput)
	}
	return nil
}

func roundPtr(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	return ptr(money(*d))
}
