package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplayMatchesReadRow(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t)
	l.store.now = clock(time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC))

	mustCreate(t, l, "A", 10, "9", "5")
	steps := []func() (*Fact, error){
		func() (*Fact, error) { return l.Purchase(ctx, "A", 5, dec("6.35")) },
		func() (*Fact, error) { return l.Sell(ctx, "A", Sale{Quantity: 7, UnitPrice: dec("9.99")}) },
		func() (*Fact, error) { return l.ChangePrice(ctx, "A", PriceChange{CurrentPrice: ptr(dec("10.49"))}) },
		func() (*Fact, error) { return l.SetPromotion(ctx, "A", true, dec("12.5")) },
		func() (*Fact, error) { return l.Purchase(ctx, "A", 3, dec("4.1")) },
		func() (*Fact, error) { return l.AddNote(ctx, "A", "restocked") },
		func() (*Fact, error) { return l.UpdateItem(ctx, "A", ItemFields{Brand: ptr("other")}) },
		func() (*Fact, error) { return l.Sell(ctx, "A", Sale{Quantity: 11, UnitPrice: dec("10.49")}) },
	}
	for i, step := range steps {
		_, err := step()
		require.NoError(t, err, "step %d", i)
		requireConsistent(t, l, "A")
	}

	replayed, err := l.Replay(ctx, "A")
	require.NoError(t, err)
	live, err := l.GetItem(ctx, "A")
	require.NoError(t, err)
	assert.True(t, live.Equal(replayed), "diff: %v", live.Diff(replayed))
	assert.Equal(t, int64(0), live.Quantity)

	_, err = l.DeleteItem(ctx, "A")
	require.NoError(t, err)

	replayed, err = l.Replay(ctx, "A")
	require.NoError(t, err)
	assert.Nil(t, replayed)
}

func TestVerifyAndRepair(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t)
	mustCreate(t, l, "A", 10, "9", "5")
	mustCreate(t, l, "B", 3, "2", "1")

	divergences, err := l.VerifyAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, divergences)

	// Corrupt the read row behind the ledger's back
	require.NoError(t, l.store.DB().Exec("UPDATE read_items SET quantity = 999 WHERE item_id = ?", "A").Error)

	d, err := l.Verify(ctx, "A")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, []string{"quantity"}, d.Fields)
	assert.Equal(t, int64(999), d.Live.Quantity)
	assert.Equal(t, int64(10), d.Replayed.Quantity)

	divergences, err = l.VerifyAll(ctx)
	require.NoError(t, err)
	require.Len(t, divergences, 1)
	assert.Equal(t, "A", divergences[0].ItemID)

	require.NoError(t, l.Repair(ctx, "A"))
	requireConsistent(t, l, "A")

	item, err := l.GetItem(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, int64(10), item.Quantity)

	history, err := l.GetHistory(ctx, "A")
	require.NoError(t, err)
	assert.Len(t, history, 1, "repair must not append facts")
}

func TestRepairRemovesOrphanRow(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t)
	mustCreate(t, l, "A", 1, "1", "1")
	_, err := l.DeleteItem(ctx, "A")
	require.NoError(t, err)

	require.NoError(t, l.store.DB().Create(&Item{ItemID: "A", Name: "ghost"}).Error)

	d, err := l.Verify(ctx, "A")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Nil(t, d.Replayed)

	require.NoError(t, l.Repair(ctx, "A"))
	_, err = l.GetItem(ctx, "A")
	assert.ErrorIs(t, err, ErrNotFound)
}
