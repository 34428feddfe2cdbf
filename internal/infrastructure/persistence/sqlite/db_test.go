package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	sqlDB, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	_, err = sqlDB.Exec(`CREATE TABLE clients (code TEXT PRIMARY KEY)`)
	require.NoError(t, err)
	return NewDB(sqlDB, zap.NewNop())
}

func countClients(t *testing.T, db *DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM clients`).Scan(&n))
	return n
}

func insertClient(ctx context.Context, db *DB, code string) error {
	_, err := ExecutorFrom(ctx, db.DB).ExecContext(ctx, `INSERT INTO clients (code) VALUES (?)`, code)
	return err
}

func TestWithTransaction_Commit(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	err := db.WithTransaction(ctx, func(ctx context.Context) error {
		return insertClient(ctx, db, "C001")
	})
	require.NoError(t, err)
	assert.Equal(t, 1, countClients(t, db))
}

func TestWithTransaction_RollbackOnError(t *testing.T) {
	db := newTestDB(t)
	boom := errors.New("boom")

	err := db.WithTransaction(context.Background(), func(ctx context.Context) error {
		require.NoError(t, insertClient(ctx, db, "C001"))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, countClients(t, db))
}

func TestWithTransaction_NestedJoinsOuter(t *testing.T) {
	db := newTestDB(t)

	err := db.WithTransaction(context.Background(), func(ctx context.Context) error {
		outer := extractTx(ctx)
		require.NotNil(t, outer)

		require.NoError(t, db.WithTransaction(ctx, func(inner context.Context) error {
			assert.Same(t, outer, extractTx(inner))
			return insertClient(inner, db, "C001")
		}))
		return errors.New("abort outer")
	})
	require.Error(t, err)
	assert.Equal(t, 0, countClients(t, db), "inner work is rolled back with the outer transaction")
}

func TestWithTransaction_PanicRollsBack(t *testing.T) {
	db := newTestDB(t)

	assert.Panics(t, func() {
		_ = db.WithTransaction(context.Background(), func(ctx context.Context) error {
			require.NoError(t, insertClient(ctx, db, "C001"))
			panic("unexpected")
		})
	})
	assert.Equal(t, 0, countClients(t, db))
}

func TestExecutorFrom_WithoutTransaction(t *testing.T) {
	db := newTestDB(t)
	assert.Equal(t, db.DB, ExecutorFrom(context.Background(), db.DB))
}
