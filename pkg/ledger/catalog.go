package ledger

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Catalog is a seed file of items and the operations to replay on them
type Catalog struct {
	Items []CatalogItem `yaml:"items"`
}

// CatalogItem is one item of a seed catalog
type CatalogItem struct {
	ID                       string   `yaml:"id"`
	Name                     string   `yaml:"name"`
	CurrentPrice             float64  `yaml:"current_price"`
	CostPrice                float64  `yaml:"cost_price"`
	Quantity                 int64    `yaml:"quantity"`
	Brand                    string   `yaml:"brand"`
	Category                 string   `yaml:"category"`
	IsOnPromotion            bool     `yaml:"is_on_promotion"`
	PromotionDiscountPercent float64  `yaml:"promotion_discount_percent"`
	ImageURL                 string   `yaml:"image_url"`
	Note                     string   `yaml:"note"`
	History                  []SeedOp `yaml:"history"`
}

// SeedOp is a purchase, sale, price change or note applied after creation
type SeedOp struct {
	Op        string   `yaml:"op"` // purchase, sale, price, note
	Quantity  int64    `yaml:"quantity"`
	UnitCost  *float64 `yaml:"unit_cost"`
	UnitPrice *float64 `yaml:"unit_price"`
	CostPrice *float64 `yaml:"cost_price"`
	Note      string   `yaml:"note"`
}

// LoadCatalog parses a YAML seed catalog
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.NewDecoder(r).Decode(&catalog); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return &catalog, nil
}

// LoadCatalogFile parses a YAML seed catalog from disk
func LoadCatalogFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog %s: %w", path, err)
	}
	defer f.Close()

	return LoadCatalog(f)
}

// Seed creates every catalog item and replays its history through the
// regular ledger operations. It returns the number of facts appended.
func (l *Ledger) Seed(ctx context.Context, catalog *Catalog) (int, error) {
	appended := 0
	count := func(f *Fact, err error) error {
		if f != nil {
			appended++
		}
		return err
	}

	for _, it := range catalog.Items {
		req := NewItem{
			ItemID:                   it.ID,
			Name:                     it.Name,
			CurrentPrice:             decimal.NewFromFloat(it.CurrentPrice),
			CostPrice:                decimal.NewFromFloat(it.CostPrice),
			Quantity:                 it.Quantity,
			Brand:                    optional(it.Brand),
			Category:                 optional(it.Category),
			IsOnPromotion:            ptr(it.IsOnPromotion),
			PromotionDiscountPercent: ptr(decimal.NewFromFloat(it.PromotionDiscountPercent)),
			ImageURL:                 optional(it.ImageURL),
			Note:                     optional(it.Note),
		}
		if err := count(l.CreateItem(ctx, req)); err != nil {
			return appended, fmt.Errorf("seed %s: %w", it.ID, err)
		}

		for i, op := range it.History {
			if err := count(l.applySeedOp(ctx, it.ID, op)); err != nil {
				return appended, fmt.Errorf("seed %s history[%d]: %w", it.ID, i, err)
			}
		}
	}

	return appended, nil
}

func (l *Ledger) applySeedOp(ctx context.Context, itemID string, op SeedOp) (*Fact, error) {
	switch op.Op {
	case "purchase":
		if op.UnitCost == nil {
			return nil, fmt.Errorf("%w: purchase requires unit_cost", ErrInvalidInput)
		}
		return l.Purchase(ctx, itemID, op.Quantity, decimal.NewFromFloat(*op.UnitCost))

	case "sale":
		if op.UnitPrice == nil {
			return nil, fmt.Errorf("%w: sale requires unit_price", ErrInvalidInput)
		}
		sale := Sale{Quantity: op.Quantity, UnitPrice: decimal.NewFromFloat(*op.UnitPrice)}
		if op.UnitCost != nil {
			sale.UnitCost = ptr(decimal.NewFromFloat(*op.UnitCost))
		}
		return l.Sell(ctx, itemID, sale)

	case "price":
		change := PriceChange{}
		if op.UnitPrice != nil {
			change.CurrentPrice = ptr(decimal.NewFromFloat(*op.UnitPrice))
		}
		if op.CostPrice != nil {
			change.CostPrice = ptr(decimal.NewFromFloat(*op.CostPrice))
		}
		return l.ChangePrice(ctx, itemID, change)

	case "note":
		return l.AddNote(ctx, itemID, op.Note)
	}

	return nil, fmt.Errorf("%w: unknown seed op %q", ErrInvalidInput, op.Op)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
