package gateway

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/ethanbaker/smartmarket/pkg/database"
	"github.com/ethanbaker/smartmarket/pkg/ledger"
	"github.com/ethanbaker/smartmarket/pkg/llm"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

// fakeModel answers query-generation prompts (recognized by their schema
// section) with query and every other chat with summary
type fakeModel struct {
	mu sync.Mutex

	scores      map[string]float64
	classifyErr error
	query       string
	queryErr    error
	summary     string
	summaryErr  error

	classified []string
	prompts    []string
}

func (f *fakeModel) Classify(_ context.Context, text string, labels []string) (map[string]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.classified = append(f.classified, text)
	if f.classifyErr != nil {
		return nil, f.classifyErr
	}
	out := make(map[string]float64)
	for _, label := range labels {
		if score, ok := f.scores[label]; ok {
			out[label] = score
		}
	}
	return out, nil
}

func (f *fakeModel) Chat(_ context.Context, messages []llm.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	prompt := messages[len(messages)-1].Content
	f.prompts = append(f.prompts, prompt)
	if strings.Contains(prompt, "[SCHEMA]") {
		return f.query, f.queryErr
	}
	return f.summary, f.summaryErr
}

func (f *fakeModel) queryPrompts() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, p := range f.prompts {
		if strings.Contains(p, "[SCHEMA]") {
			n++
		}
	}
	return n
}

type fixture struct {
	ledger  *ledger.Ledger
	model   *fakeModel
	asks    *AskLog
	gateway *Gateway
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "gateway.db"), logger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	store := ledger.NewStore(db)
	require.NoError(t, store.Migrate())
	asks := NewAskLog(db)
	require.NoError(t, asks.Migrate())

	model := &fakeModel{
		scores:  map[string]float64{"current_price": 0.93, "name": 0.51, "quantity": 0.5},
		summary: "Done.",
	}
	l := ledger.New(store)

	_, err = l.CreateItem(context.Background(), ledger.NewItem{
		ItemID:       "A",
		Name:         "Apple",
		CurrentPrice: decimal.NewFromInt(9),
		CostPrice:    decimal.NewFromInt(5),
		Quantity:     10,
	})
	require.NoError(t, err)
	_, err = l.CreateItem(context.Background(), ledger.NewItem{
		ItemID:       "B",
		Name:         "Bread",
		CurrentPrice: decimal.NewFromInt(3),
		CostPrice:    decimal.NewFromInt(2),
		Quantity:     4,
	})
	require.NoError(t, err)

	return &fixture{
		ledger:  l,
		model:   model,
		asks:    asks,
		gateway: New(model, store, Options{Dialect: "SQLite", Log: asks}),
	}
}

func (fx *fixture) requireConsistent(t *testing.T, itemID string) {
	t.Helper()
	d, err := fx.ledger.Verify(context.Background(), itemID)
	require.NoError(t, err)
	require.Nil(t, d, "read row of %s diverges from replay", itemID)
}
