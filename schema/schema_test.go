package schema_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skryldev/hrdao/db"
	"github.com/Skryldev/hrdao/schema"
)

func TestStatements(t *testing.T) {
	stmts := schema.Statements()
	require.Len(t, stmts, 2)
	assert.True(t, strings.HasPrefix(stmts[0], "CREATE TABLE IF NOT EXISTS Dept"))
	assert.True(t, strings.HasPrefix(stmts[1], "CREATE TABLE IF NOT EXISTS Emp"))
}

func TestEnsure_Idempotent(t *testing.T) {
	d, err := db.Open(db.Config{
		DSN:        filepath.Join(t.TempDir(), "hr.db"),
		DriverName: "sqlite3",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	ctx := context.Background()
	require.NoError(t, schema.Ensure(ctx, d))
	require.NoError(t, schema.Ensure(ctx, d), "second run must be a no-op")

	var n int
	require.NoError(t, d.QueryRow(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('Dept', 'Emp')`).Scan(&n))
	assert.Equal(t, 2, n)
}
