package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateItem(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t)

	mustCreate(t, l, "A", 10, "9", "5")

	item, err := l.GetItem(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, "Item A", item.Name)
	assert.Equal(t, int64(10), item.Quantity)
	assertMoney(t, "50", item.InventoryValue)
	assertMoney(t, "0", item.TotalProfit)

	history, err := l.GetHistory(ctx, "A")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, KindCreate, history[0].Kind)
	assert.True(t, item.UpdatedAt.Equal(history[0].OccurredAt))

	t.Run("duplicate", func(t *testing.T) {
		_, err := l.CreateItem(ctx, NewItem{ItemID: "A", Name: "again"})
		assert.ErrorIs(t, err, ErrDuplicateItem)

		history, err := l.GetHistory(ctx, "A")
		require.NoError(t, err)
		assert.Len(t, history, 1)
	})

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name string
			req  NewItem
		}{
			{"missing id", NewItem{Name: "x"}},
			{"missing name", NewItem{ItemID: "B"}},
			{"negative quantity", NewItem{ItemID: "B", Name: "x", Quantity: -1}},
			{"negative price", NewItem{ItemID: "B", Name: "x", CurrentPrice: dec("-1")}},
			{"bad discount", NewItem{ItemID: "B", Name: "x", PromotionDiscountPercent: ptr(dec("120"))}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := l.CreateItem(ctx, tt.req)
				assert.ErrorIs(t, err, ErrInvalidInput)
			})
		}
	})
}

func TestPurchaseWeightedAverage(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t)
	mustCreate(t, l, "A", 10, "9", "5")

	fact, err := l.Purchase(ctx, "A", 10, dec("7"))
	require.NoError(t, err)
	require.NotNil(t, fact)
	assert.Equal(t, int64(20), *fact.QuantityAfter)

	item, err := l.GetItem(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, int64(20), item.Quantity)
	assertMoney(t, "6", item.CostPrice)
	assertMoney(t, "120", item.InventoryValue)

	_, err = l.Purchase(ctx, "A", 0, dec("7"))
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = l.Purchase(ctx, "missing", 1, dec("7"))
	assert.ErrorIs(t, err, ErrNotFound)

	requireConsistent(t, l, "A")
}

func TestSellAccumulatesProfit(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t)
	mustCreate(t, l, "A", 10, "9", "6")

	_, err := l.Sell(ctx, "A", Sale{Quantity: 5, UnitPrice: dec("9")})
	require.NoError(t, err)

	item, err := l.GetItem(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, int64(5), item.Quantity)
	assertMoney(t, "15", item.TotalProfit)
	assertMoney(t, "30", item.InventoryValue)

	_, err = l.Sell(ctx, "A", Sale{Quantity: 1, UnitPrice: dec("10"), UnitCost: ptr(dec("4"))})
	require.NoError(t, err)

	item, err = l.GetItem(ctx, "A")
	require.NoError(t, err)
	assertMoney(t, "21", item.TotalProfit)

	requireConsistent(t, l, "A")
}

func TestSellInsufficientStock(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t)
	mustCreate(t, l, "A", 2, "9", "6")

	_, err := l.Sell(ctx, "A", Sale{Quantity: 3, UnitPrice: dec("9")})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	history, err := l.GetHistory(ctx, "A")
	require.NoError(t, err)
	assert.Len(t, history, 1, "no fact may be appended for a rejected sale")

	item, err := l.GetItem(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, int64(2), item.Quantity)
}

// The SQLite test database holds a single connection, so these sales are
// serialized by the pool. Run with -tags mysql and MYSQL_TEST_DSN set to
// exercise the row lock itself.
func TestConcurrentSalesNeverOversell(t *testing.T) {
	l := newTestLedger(t)
	mustCreate(t, l, "A", 20, "9", "6")

	sellConcurrently(t, l, "A")
}

// sellConcurrently races ten sales of 3 against a stock of 20 at cost 6
func sellConcurrently(t *testing.T, l *Ledger, itemID string) {
	t.Helper()
	ctx := context.Background()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Sell(ctx, itemID, Sale{Quantity: 3, UnitPrice: dec("9")})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrInsufficientStock):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 6, succeeded)
	assert.Equal(t, 4, rejected)

	item, err := l.GetItem(ctx, itemID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), item.Quantity)
	assertMoney(t, "54", item.TotalProfit)

	requireConsistent(t, l, itemID)
}

func TestUpdateItem(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t)
	mustCreate(t, l, "A", 4, "9", "5")

	t.Run("empty field set appends nothing", func(t *testing.T) {
		fact, err := l.UpdateItem(ctx, "A", ItemFields{})
		require.NoError(t, err)
		assert.Nil(t, fact)

		history, err := l.GetHistory(ctx, "A")
		require.NoError(t, err)
		assert.Len(t, history, 1)
	})

	t.Run("descriptive fields", func(t *testing.T) {
		_, err := l.UpdateItem(ctx, "A", ItemFields{Name: ptr("Green Apple"), Category: ptr("fruit")})
		require.NoError(t, err)

		item, err := l.GetItem(ctx, "A")
		require.NoError(t, err)
		assert.Equal(t, "Green Apple", item.Name)
		assert.Equal(t, "fruit", item.Category)
		assert.Equal(t, "acme", item.Brand)
		assert.Equal(t, int64(4), item.Quantity)
	})

	t.Run("image", func(t *testing.T) {
		_, err := l.SetImage(ctx, "A", "https://img.test/a.png")
		require.NoError(t, err)

		item, err := l.GetItem(ctx, "A")
		require.NoError(t, err)
		assert.Equal(t, "https://img.test/a.png", item.ImageURL)

		_, err = l.SetImage(ctx, "A", " ")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("missing item", func(t *testing.T) {
		_, err := l.UpdateItem(ctx, "missing", ItemFields{Name: ptr("x")})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	requireConsistent(t, l, "A")
}

func TestChangePrice(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t)
	mustCreate(t, l, "A", 4, "9", "5")

	_, err := l.ChangePrice(ctx, "A", PriceChange{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = l.ChangePrice(ctx, "A", PriceChange{CostPrice: ptr(dec("-1"))})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = l.ChangePrice(ctx, "missing", PriceChange{CurrentPrice: ptr(dec("1"))})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = l.ChangePrice(ctx, "A", PriceChange{CurrentPrice: ptr(dec("12.5")), CostPrice: ptr(dec("6"))})
	require.NoError(t, err)

	item, err := l.GetItem(ctx, "A")
	require.NoError(t, err)
	assertMoney(t, "12.5", item.CurrentPrice)
	assertMoney(t, "6", item.CostPrice)
	assertMoney(t, "24", item.InventoryValue)

	requireConsistent(t, l, "A")
}

func TestPromotionAndNote(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t)
	mustCreate(t, l, "A", 4, "9", "5")

	_, err := l.SetPromotion(ctx, "A", true, dec("15"))
	require.NoError(t, err)
	_, err = l.AddNote(ctx, "A", "shelf 3")
	require.NoError(t, err)

	item, err := l.GetItem(ctx, "A")
	require.NoError(t, err)
	assert.True(t, item.IsOnPromotion)
	assertMoney(t, "15", item.PromotionDiscountPercent)
	assert.Equal(t, "shelf 3", item.Note)

	_, err = l.SetPromotion(ctx, "A", true, dec("101"))
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = l.SetPromotion(ctx, "missing", false, decimal.Zero)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = l.AddNote(ctx, "missing", "x")
	assert.ErrorIs(t, err, ErrNotFound)

	requireConsistent(t, l, "A")
}

func TestDeleteRetainsHistory(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t)
	mustCreate(t, l, "A", 4, "9", "5")
	_, err := l.Purchase(ctx, "A", 1, dec("5"))
	require.NoError(t, err)

	_, err = l.DeleteItem(ctx, "A")
	require.NoError(t, err)

	_, err = l.GetItem(ctx, "A")
	assert.ErrorIs(t, err, ErrNotFound)

	history, err := l.GetHistory(ctx, "A")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, []Kind{KindCreate, KindPurchase, KindDelete}, []Kind{history[0].Kind, history[1].Kind, history[2].Kind})

	_, err = l.DeleteItem(ctx, "A")
	assert.ErrorIs(t, err, ErrNotFound)

	requireConsistent(t, l, "A")

	t.Run("recreate after delete", func(t *testing.T) {
		mustCreate(t, l, "A", 1, "2", "1")
		requireConsistent(t, l, "A")
	})
}

func TestOccurrenceTimeIsMonotonic(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t)

	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	l.store.now = func() time.Time { return start }
	mustCreate(t, l, "A", 4, "9", "5")

	// A clock that went backwards still cannot order a fact before its predecessor
	l.store.now = func() time.Time { return start.Add(-time.Hour) }
	fact, err := l.AddNote(ctx, "A", "late")
	require.NoError(t, err)
	assert.True(t, fact.OccurredAt.Equal(start))

	history, err := l.GetHistory(ctx, "A")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, KindNoteAdded, history[1].Kind)
	assert.Less(t, history[0].Seq, history[1].Seq)

	requireConsistent(t, l, "A")
}

func TestListItems(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t)
	mustCreate(t, l, "apple", 1, "1", "1")
	mustCreate(t, l, "banana", 1, "1", "1")
	_, err := l.UpdateItem(ctx, "banana", ItemFields{Category: ptr("fruit")})
	require.NoError(t, err)

	items, err := l.ListItems(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "apple", items[0].ItemID)

	items, err = l.ListItems(ctx, Filter{Category: "fruit"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "banana", items[0].ItemID)

	items, err = l.ListItems(ctx, Filter{Text: "APP"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "apple", items[0].ItemID)
}
