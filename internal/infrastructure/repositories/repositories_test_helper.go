package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createTxJournalTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE tx_journal (
		id TEXT PRIMARY KEY,
		action TEXT NOT NULL,
		target TEXT,
		account TEXT NOT NULL,
		args TEXT DEFAULT '{}',
		note TEXT,
		tx_hash TEXT,
		surface TEXT,
		state TEXT NOT NULL,
		error TEXT,
		block_number INTEGER,
		created_at DATETIME,
		updated_at DATETIME,
		confirmed_at DATETIME
	);`)
}
