package db_test

import (
	"context"
	"testing"

	"log/slog"

	dbfs "github.com/hirepipe/hirepipe/db"
	"github.com/hirepipe/hirepipe/internal/db"
)

func openTestDB(t *testing.T) *db.DB {
	t.Helper()
	d, err := db.New(context.Background(), "file:"+t.Name()+"?mode=memory&cache=shared", slog.Default())
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestNewAndExec(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	if _, err := d.Exec(ctx, `CREATE TABLE t (id INTEGER PRIMARY KEY, v TEXT)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := d.Exec(ctx, `INSERT INTO t (v) VALUES (?)`, "x"); err != nil {
		t.Fatalf("insert: %v", err)
	}

	var v string
	if err := d.QueryRow(ctx, `SELECT v FROM t WHERE id = 1`).Scan(&v); err != nil {
		t.Fatalf("query: %v", err)
	}
	if v != "x" {
		t.Fatalf("unexpected value %q", v)
	}
}

func TestMigrate_IsIdempotent(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	if err := db.Migrate(ctx, d, dbfs.Migrations, dbfs.SeedFiles); err != nil {
		t.Fatalf("first migrate: %v", err)
	}
	if err := db.Migrate(ctx, d, dbfs.Migrations, dbfs.SeedFiles); err != nil {
		t.Fatalf("second migrate: %v", err)
	}

	var applied int
	if err := d.QueryRow(ctx, `SELECT COUNT(1) FROM schema_migrations`).Scan(&applied); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if applied != 1 {
		t.Fatalf("expected 1 applied migration, got %d", applied)
	}

	var templates int
	if err := d.QueryRow(ctx, `SELECT COUNT(1) FROM ai_templates`).Scan(&templates); err != nil {
		t.Fatalf("count templates: %v", err)
	}
	if templates != 3 {
		t.Fatalf("expected 3 seeded templates, got %d", templates)
	}

	var schemas int
	if err := d.QueryRow(ctx, `SELECT COUNT(1) FROM ai_schemas`).Scan(&schemas); err != nil {
		t.Fatalf("count schemas: %v", err)
	}
	if schemas != 2 {
		t.Fatalf("expected 2 seeded schemas, got %d", schemas)
	}
}
