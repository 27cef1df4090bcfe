package db

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate applies the *_up.sql files from fsys in ascending order. Each
// file runs in its own transaction.
func Migrate(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS) error {
	return runMigrations(ctx, pool, fsys, "_up.sql")
}

// Rollback applies the *_down.sql files from fsys in descending order.
func Rollback(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS) error {
	return runMigrations(ctx, pool, fsys, "_down.sql")
}

func runMigrations(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS, suffix string) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("platform/db: read migrations: %w", err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), suffix) {
			files = append(files, entry.Name())
		}
	}
	if suffix == "_down.sql" {
		sort.Sort(sort.Reverse(sort.StringSlice(files)))
	} else {
		sort.Strings(files)
	}

	for _, name := range files {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("platform/db: read %s: %w", name, err)
		}
		tx, err := pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("platform/db: begin %s: %w", name, err)
		}
		if _, err := tx.Exec(ctx, string(raw)); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("platform/db: exec %s: %w", name, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("platform/db: commit %s: %w", name, err)
		}
	}
	return nil
}
