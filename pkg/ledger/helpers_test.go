package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethanbaker/smartmarket/pkg/database"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "ledger.db"), logger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	store := NewStore(db)
	require.NoError(t, store.Migrate())
	return New(store)
}

// clock returns a store clock that advances one minute per call from start
func clock(start time.Time) func() time.Time {
	next := start
	return func() time.Time {
		now := next
		next = next.Add(time.Minute)
		return now
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertMoney(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), append([]any{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

func mustCreate(t *testing.T, l *Ledger, id string, qty int64, price, cost string) {
	t.Helper()
	_, err := l.CreateItem(context.Background(), NewItem{
		ItemID:       id,
		Name:         "Item " + id,
		CurrentPrice: dec(price),
		CostPrice:    dec(cost),
		Quantity:     qty,
		Category:     ptr("grocery"),
		Brand:        ptr("acme"),
	})
	require.NoError(t, err)
}

func requireConsistent(t *testing.T, l *Ledger, id string) {
	t.Helper()
	d, err := l.Verify(context.Background(), id)
	require.NoError(t, err)
	if d != nil {
		t.Fatalf("read row of %s diverges from replay on %v", id, d.Fields)
	}
}
