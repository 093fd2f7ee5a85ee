package ledger

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalog = `
items:
  - id: MILK-1L
    name: Whole milk 1L
    current_price: 1.49
    cost_price: 0.9
    quantity: 10
    brand: Farmhouse
    category: dairy
    history:
      - op: purchase
        quantity: 10
        unit_cost: 1.1
      - op: sale
        quantity: 4
        unit_price: 1.49
      - op: note
        note: check expiry dates
  - id: BREAD
    name: Rye bread
    current_price: 2.2
    cost_price: 1.2
    quantity: 5
`

func TestSeedCatalog(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t)

	catalog, err := LoadCatalog(strings.NewReader(testCatalog))
	require.NoError(t, err)
	require.Len(t, catalog.Items, 2)

	appended, err := l.Seed(ctx, catalog)
	require.NoError(t, err)
	assert.Equal(t, 5, appended)

	milk, err := l.GetItem(ctx, "MILK-1L")
	require.NoError(t, err)
	assert.Equal(t, int64(16), milk.Quantity)
	assertMoney(t, "1", milk.CostPrice)
	assertMoney(t, "1.96", milk.TotalProfit)
	assert.Equal(t, "check expiry dates", milk.Note)
	assert.Equal(t, "dairy", milk.Category)

	requireConsistent(t, l, "MILK-1L")
	requireConsistent(t, l, "BREAD")

	_, err = l.Seed(ctx, catalog)
	assert.ErrorIs(t, err, ErrDuplicateItem)
}

func TestSeedRejectsUnknownOp(t *testing.T) {
	l := newTestLedger(t)

	catalog := &Catalog{Items: []CatalogItem{{
		ID: "X", Name: "x", History: []SeedOp{{Op: "teleport"}},
	}}}
	_, err := l.Seed(context.Background(), catalog)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
