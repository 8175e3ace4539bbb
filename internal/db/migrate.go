package db

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// Migrate applies the embedded SQL migrations in name order, recording each in
// `schema_migrations`, then seeds the activity metadata schemas. Both steps are
// idempotent.
func Migrate(ctx context.Context, d *DB, migrationFS embed.FS, seedFS embed.FS) error {
	// ensure migrations table exists
	if _, err := d.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY, applied INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}
	// embedded migrations are provided under "migrations/..." in the top-level db package
	migDir := "migrations"

	entries, err := fs.ReadDir(migrationFS, migDir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	// collect .sql files and sort
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(strings.ToLower(name), ".sql") {
			files = append(files, name)
		}
	}
	sort.Strings(files)

	for _, fname := range files {
		// use filename (without extension) as migration version key
		version := strings.TrimSuffix(fname, path.Ext(fname))

		// check if already applied
		var count int
		row := d.QueryRow(ctx, `SELECT COUNT(1) FROM schema_migrations WHERE version = ?`, version)
		if row == nil {
			return fmt.Errorf("migration check query returned nil row for %s", version)
		}
		if err := row.Scan(&count); err != nil {
			return fmt.Errorf("scan migration applied count: %w", err)
		}
		if count > 0 {
			// already applied
			continue
		}

		// read and execute migration from embedded FS (use posix path.Join)
		p := path.Join(migDir, fname)
		b, err := fs.ReadFile(migrationFS, p)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", fname, err)
		}
		if err := applyMigration(ctx, d, version, string(b)); err != nil {
			return fmt.Errorf("apply migration %s: %w", fname, err)
		}
	}

	// optional seed files (ignore not-found)
	schemaPath := path.Join("seed", "metadata_default.json")
	if b, err := fs.ReadFile(seedFS, schemaPath); err == nil {
		if _, err := d.Exec(ctx, `INSERT INTO metadata_schemas (activity_type, description, schema_json, created, updated) VALUES ('default', 'fallback activity metadata schema', ?, strftime('%s','now') * 1000, strftime('%s','now') * 1000) ON CONFLICT(activity_type) DO NOTHING`, string(b)); err != nil {
			return fmt.Errorf("seed metadata schema: %w", err)
		}
	}

	diffPath := path.Join("seed", "metadata_profile_updated.json")
	if b, err := fs.ReadFile(seedFS, diffPath); err == nil {
		if _, err := d.Exec(ctx, `INSERT INTO metadata_schemas (activity_type, description, schema_json, created, updated) VALUES ('profile.updated', 'profile field diff', ?, strftime('%s','now') * 1000, strftime('%s','now') * 1000) ON CONFLICT(activity_type) DO NOTHING`, string(b)); err != nil {
			return fmt.Errorf("seed profile diff schema: %w", err)
		}
	}

	return nil
}

// applyMigration runs one migration script and records it atomically so a
// failed script can be retried on the next start.
func applyMigration(ctx context.Context, d *DB, version, script string) error {
	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, script); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version, applied) VALUES (?, strftime('%s','now'))`, version); err != nil {
		return fmt.Errorf("record: %w", err)
	}

	return tx.Commit()
}
