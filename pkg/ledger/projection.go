package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// moneyScale matches the decimal(20,4) columns so that values computed in
// memory round-trip through the store unchanged
const moneyScale = 4

func money(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyScale)
}

// Apply folds a single fact into the current read row and returns the next
// row. A nil current row means the item is not live; a nil result means the
// fact removed it. The current row is never modified.
func Apply(current *Item, f *Fact) (*Item, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: nil fact", ErrInvalidInput)
	}

	switch f.Kind {
	case KindCreate:
		if current != nil {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateItem, f.ItemID)
		}
		return applyCreate(f), nil

	case KindReconcile:
		return applyReconcile(f), nil
	}

	if current == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, f.ItemID)
	}
	next := *current
	next.UpdatedAt = f.OccurredAt

	switch f.Kind {
	case KindUpdate:
		applyFields(&next, f)

	case KindPriceChange:
		if f.CurrentPrice == nil && f.CostPrice == nil {
			return nil, fmt.Errorf("%w: price change requires current_price and/or cost_price", ErrInvalidInput)
		}
		if f.CurrentPrice != nil {
			next.CurrentPrice = money(*f.CurrentPrice)
		}
		if f.CostPrice != nil {
			next.CostPrice = money(*f.CostPrice)
			next.InventoryValue = inventoryValue(next.Quantity, next.CostPrice)
		}

	case KindPurchase:
		delta := deref(f.QuantityDelta)
		if delta <= 0 {
			return nil, fmt.Errorf("%w: purchase requires quantity_delta > 0", ErrInvalidInput)
		}
		if f.PurchaseUnitCost == nil {
			return nil, fmt.Errorf("%w: purchase requires purchase_unit_cost", ErrInvalidInput)
		}
		next.Quantity = current.Quantity + delta
		next.CostPrice = weightedCost(current.Quantity, current.CostPrice, delta, *f.PurchaseUnitCost)
		next.InventoryValue = inventoryValue(next.Quantity, next.CostPrice)

	case KindSale:
		delta := deref(f.QuantityDelta)
		if delta >= 0 {
			return nil, fmt.Errorf("%w: sale requires quantity_delta < 0", ErrInvalidInput)
		}
		if f.SaleUnitPrice == nil || f.SaleUnitCost == nil {
			return nil, fmt.Errorf("%w: sale requires sale_unit_price and sale_unit_cost", ErrInvalidInput)
		}
		sold := -delta
		if sold > current.Quantity {
			return nil, fmt.Errorf("%w: sale quantity %d exceeds current stock %d", ErrInsufficientStock, sold, current.Quantity)
		}
		margin := f.SaleUnitPrice.Sub(*f.SaleUnitCost)
		next.Quantity = current.Quantity - sold
		next.TotalProfit = money(current.TotalProfit.Add(margin.Mul(decimal.NewFromInt(sold))))
		next.InventoryValue = inventoryValue(next.Quantity, current.CostPrice)

	case KindSetPromotion:
		next.IsOnPromotion = deref(f.IsOnPromotion)
		next.PromotionDiscountPercent = money(deref(f.PromotionDiscountPercent))

	case KindNoteAdded:
		next.Note = deref(f.Note)

	case KindDelete:
		return nil, nil

	default:
		return nil, fmt.Errorf("%w: unknown fact kind %q", ErrInvalidInput, f.Kind)
	}

	return &next, nil
}

// Fold replays facts in order from an empty state
func Fold(facts []Fact) (*Item, error) {
	var row *Item
	for i := range facts {
		next, err := Apply(row, &facts[i])
		if err != nil {
			return nil, fmt.Errorf("fold fact %d (%s): %w", facts[i].Seq, facts[i].Kind, err)
		}
		row = next
	}
	return row, nil
}

func applyCreate(f *Fact) *Item {
	row := &Item{
		ItemID:                   f.ItemID,
		Name:                     deref(f.Name),
		CurrentPrice:             money(deref(f.CurrentPrice)),
		CostPrice:                money(deref(f.CostPrice)),
		Quantity:                 deref(f.QuantityAfter),
		Brand:                    deref(f.Brand),
		Category:                 deref(f.Category),
		IsOnPromotion:            deref(f.IsOnPromotion),
		PromotionDiscountPercent: money(deref(f.PromotionDiscountPercent)),
		ImageURL:                 deref(f.ImageURL),
		Note:                     deref(f.Note),
		TotalProfit:              decimal.Zero,
		UpdatedAt:                f.OccurredAt,
	}
	row.InventoryValue = inventoryValue(row.Quantity, row.CostPrice)
	return row
}

func applyReconcile(f *Fact) *Item {
	return &Item{
		ItemID:                   f.ItemID,
		Name:                     deref(f.Name),
		CurrentPrice:             deref(f.CurrentPrice),
		CostPrice:                deref(f.CostPrice),
		Quantity:                 deref(f.QuantityAfter),
		Brand:                    deref(f.Brand),
		Category:                 deref(f.Category),
		IsOnPromotion:            deref(f.IsOnPromotion),
		PromotionDiscountPercent: deref(f.PromotionDiscountPercent),
		ImageURL:                 deref(f.ImageURL),
		Note:                     deref(f.Note),
		InventoryValue:           deref(f.InventoryValue),
		TotalProfit:              deref(f.TotalProfit),
		UpdatedAt:                f.OccurredAt,
	}
}

// applyFields copies the writable UPDATE fields present on the fact
func applyFields(row *Item, f *Fact) {
	if f.Name != nil {
		row.Name = *f.Name
	}
	if f.Brand != nil {
		row.Brand = *f.Brand
	}
	if f.Category != nil {
		row.Category = *f.Category
	}
	if f.ImageURL != nil {
		row.ImageURL = *f.ImageURL
	}
	if f.Note != nil {
		row.Note = *f.Note
	}
	if f.IsOnPromotion != nil {
		row.IsOnPromotion = *f.IsOnPromotion
	}
	if f.PromotionDiscountPercent != nil {
		row.PromotionDiscountPercent = money(*f.PromotionDiscountPercent)
	}
}

// weightedCost returns the quantity-weighted average cost after a purchase
func weightedCost(oldQty int64, oldCost decimal.Decimal, qty int64, unitCost decimal.Decimal) decimal.Decimal {
	newQty := oldQty + qty
	if newQty <= 0 {
		return money(unitCost)
	}
	before := oldCost.Mul(decimal.NewFromInt(oldQty))
	bought := unitCost.Mul(decimal.NewFromInt(qty))
	return money(before.Add(bought).Div(decimal.NewFromInt(newQty)))
}

func inventoryValue(qty int64, cost decimal.Decimal) decimal.Decimal {
	return money(cost.Mul(decimal.NewFromInt(qty)))
}
