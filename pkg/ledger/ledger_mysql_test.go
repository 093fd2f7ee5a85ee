//go:build mysql

package ledger

import (
	"os"
	"testing"

	"github.com/ethanbaker/smartmarket/pkg/database"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

// newMySQLLedger connects to MYSQL_TEST_DSN, which must point at a
// disposable database
func newMySQLLedger(t *testing.T) *Ledger {
	t.Helper()

	dsn := os.Getenv("MYSQL_TEST_DSN")
	if dsn == "" {
		t.Skip("MYSQL_TEST_DSN is not set")
	}

	db, err := database.OpenMySQL(dsn, logger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	store := NewStore(db)
	require.NoError(t, store.Migrate())
	return New(store)
}

func TestConcurrentSalesNeverOversellMySQL(t *testing.T) {
	l := newMySQLLedger(t)

	id := "race-" + uuid.NewString()
	mustCreate(t, l, id, 20, "9", "6")

	sellConcurrently(t, l, id)
}
