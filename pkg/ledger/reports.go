package ledger

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// ItemProfit is the accumulated profit of one live item
type ItemProfit struct {
	ItemID      string          `json:"item_id"`
	Name        string          `json:"name"`
	TotalProfit decimal.Decimal `json:"total_profit"`
}

// CategoryValue aggregates inventory value per category
type CategoryValue struct {
	Category            string          `json:"category"`
	TotalItems          int64           `json:"total_items"`
	TotalInventoryValue decimal.Decimal `json:"total_inventory_value"`
}

// MonthProfit is the realised sale margin within one calendar month (UTC)
type MonthProfit struct {
	Year        int             `json:"year"`
	Month       int             `json:"month"`
	TotalProfit decimal.Decimal `json:"total_profit"`
}

// DistinctCategories returns the non-blank categories of live items
func (l *Ledger) DistinctCategories(ctx context.Context) ([]string, error) {
	return l.distinct(ctx, "category")
}

// DistinctBrands returns the non-blank brands of live items
func (l *Ledger) DistinctBrands(ctx context.Context) ([]string, error) {
	return l.distinct(ctx, "brand")
}

func (l *Ledger) distinct(ctx context.Context, column string) ([]string, error) {
	values := []string{}
	err := l.store.DB().WithContext(ctx).Model(&Item{}).
		Where(column + " IS NOT NULL AND TRIM(" + column + ") <> ''").
		Distinct().Order(column).Pluck(column, &values).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list distinct %s: %w", column, err)
	}
	return values, nil
}

// ProfitByItem returns the accumulated profit of every live item
func (l *Ledger) ProfitByItem(ctx context.Context) ([]ItemProfit, error) {
	out := []ItemProfit{}
	err := l.store.DB().WithContext(ctx).Model(&Item{}).
		Select("item_id, name, total_profit").Order("item_id").Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query profit: %w", err)
	}
	return out, nil
}

// CategoryValue returns item counts and inventory value grouped by category
func (l *Ledger) CategoryValue(ctx context.Context) ([]CategoryValue, error) {
	out := []CategoryValue{}
	err := l.store.DB().WithContext(ctx).Model(&Item{}).
		Select("category, COUNT(*) AS total_items, SUM(inventory_value) AS total_inventory_value").
		Group("category").Order("category").Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query category value: %w", err)
	}
	return out, nil
}

// MonthlyProfit sums the margin of every SALE fact per month. Deleted items
// still count since their facts remain.
func (l *Ledger) MonthlyProfit(ctx context.Context) ([]MonthProfit, error) {
	sales, err := l.store.FactsOfKind(ctx, KindSale)
	if err != nil {
		return nil, err
	}

	type month struct{ year, month int }
	totals := make(map[month]decimal.Decimal)
	for _, f := range sales {
		if f.QuantityDelta == nil {
			continue
		}
		sold := decimal.NewFromInt(*f.QuantityDelta).Abs()
		margin := deref(f.SaleUnitPrice).Sub(deref(f.SaleUnitCost))

		at := f.OccurredAt.UTC()
		key := month{at.Year(), int(at.Month())}
		totals[key] = totals[key].Add(sold.Mul(margin))
	}

	out := make([]MonthProfit, 0, len(totals))
	for k, total := range totals {
		out = append(out, MonthProfit{Year: k.year, Month: k.month, TotalProfit: money(total)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out, nil
}
