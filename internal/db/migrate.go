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

// Migrate applies migrations and optional seed files found in the repository.
// It creates a `schema_migrations` table to track applied migrations and applies
// any SQL files in `db/migrations/` that have not yet been recorded. Seed files
// (prompt templates and response schemas) are applied idempotently.
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

		var count int
		row := d.QueryRow(ctx, `SELECT COUNT(1) FROM schema_migrations WHERE version = ?`, version)
		if err := row.Scan(&count); err != nil {
			return fmt.Errorf("scan migration applied count: %w", err)
		}
		if count > 0 {
			// already applied
			continue
		}

		p := path.Join(migDir, fname)
		b, err := fs.ReadFile(migrationFS, p)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", fname, err)
		}
		if _, err := d.Exec(ctx, string(b)); err != nil {
			return fmt.Errorf("exec migration %s: %w", fname, err)
		}

		if _, err := d.Exec(ctx, `INSERT INTO schema_migrations (version, applied) VALUES (?, strftime('%s','now'))`, version); err != nil {
			return fmt.Errorf("record migration %s: %w", fname, err)
		}
	}

	return seed(ctx, d, seedFS)
}

// seedSchemas maps schema version -> embedded file.
var seedSchemas = map[string]struct {
	file        string
	description string
}{
	"screening_v1": {"seed/schema_screening_v1.json", "screening verdict response"},
	"feedback_v1":  {"seed/schema_feedback_v1.json", "interview round feedback response"},
}

// seedTemplates maps prompt name -> embedded file and the schema it must obey.
// The report prompt produces prose, so it has no schema.
var seedTemplates = map[string]struct {
	file      string
	schemaVer string
}{
	"screening": {"seed/template_screening_v1.txt", "screening_v1"},
	"feedback":  {"seed/template_feedback_v1.txt", "feedback_v1"},
	"report":    {"seed/template_report_v1.txt", ""},
}

func seed(ctx context.Context, d *DB, seedFS embed.FS) error {
	for version, s := range seedSchemas {
		b, err := fs.ReadFile(seedFS, s.file)
		if err != nil {
			return fmt.Errorf("read seed schema %s: %w", s.file, err)
		}
		if _, err := d.Exec(ctx, `INSERT OR REPLACE INTO ai_schemas (version, description, schema_json, created, updated) VALUES (?, ?, ?, strftime('%s','now'), strftime('%s','now'))`, version, s.description, string(b)); err != nil {
			return fmt.Errorf("seed schema %s: %w", version, err)
		}
	}

	for name, t := range seedTemplates {
		b, err := fs.ReadFile(seedFS, t.file)
		if err != nil {
			return fmt.Errorf("read seed template %s: %w", t.file, err)
		}
		var schemaVer any
		if t.schemaVer != "" {
			schemaVer = t.schemaVer
		}
		if _, err := d.Exec(ctx, `INSERT OR REPLACE INTO ai_templates (name, version, template_text, schema_version, metadata, created, updated) VALUES (?, 'v1', ?, ?, ?, strftime('%s','now'), strftime('%s','now'))`, name, string(b), schemaVer, `{"owner":"system"}`); err != nil {
			return fmt.Errorf("seed template %s: %w", name, err)
		}
	}

	return nil
}
