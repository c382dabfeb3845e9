package sqlitedb

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), "  ")
	require.ErrorIs(t, err, ErrPathRequired)
}

func TestOpenAppliesMigrationsOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "laurel.db")

	db, err := Open(ctx, path)
	require.NoError(t, err)

	var tables int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('criterion_state', 'content_items')`,
	).Scan(&tables))
	require.Equal(t, 2, tables)
	require.NoError(t, db.Close())

	db, err = Open(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	var applied int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&applied))
	require.Equal(t, 2, applied)
}

func TestApplyMigrationsUsesUpSectionOnly(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "m.db"))
	require.NoError(t, err)
	defer db.Close()

	fsys := fstest.MapFS{
		"9000_extra.sql": {Data: []byte("-- +migrate Up\nCREATE TABLE extra (id INTEGER);\n-- +migrate Down\nDROP TABLE extra;\n")},
	}
	require.NoError(t, ApplyMigrations(ctx, db, fsys))
	require.NoError(t, ApplyMigrations(ctx, db, fsys))

	var n int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE name = 'extra'`).Scan(&n))
	require.Equal(t, 1, n)
}

func TestUpSectionAndMillis(t *testing.T) {
	t.Parallel()

	require.Equal(t, "\nA\n", UpSection("-- +migrate Up\nA\n-- +migrate Down\nB"))
	require.Equal(t, "plain", UpSection("plain"))

	now := time.Date(2026, time.March, 1, 12, 0, 0, 123_000_000, time.UTC)
	require.True(t, FromMillis(ToMillis(now)).Equal(now))
	require.False(t, IsBusy(nil))
	require.False(t, IsConstraint(context.Canceled))
}
