package shared

import (
	"context"
	"errors"
	"testing"
)

func TestMigrationRunner(t *testing.T) {
	ctx := context.Background()

	t.Run("loadMigrations", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}

		if len(migrations) == 0 {
			t.Fatal("expected at least one migration")
		}

		for i := 1; i < len(migrations); i++ {
			if migrations[i].Version <= migrations[i-1].Version {
				t.Errorf("migrations not sorted: version %d comes after %d", migrations[i].Version, migrations[i-1].Version)
			}
		}

		if migrations[0].Name != "create_kv_items" {
			t.Errorf("expected first migration name create_kv_items, got %q", migrations[0].Name)
		}
	})

	t.Run("RunMigrations is idempotent", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		for i := 0; i < 2; i++ {
			if err := RunMigrations(ctx, db); err != nil {
				t.Fatalf("run %d: failed to run migrations: %v", i, err)
			}
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
			t.Fatalf("failed to query schema_migrations: %v", err)
		}
		if count != 1 {
			t.Errorf("expected 1 applied migration, got %d", count)
		}

		if _, err := db.Exec("INSERT INTO kv_items (key, value) VALUES ('k', 'v')"); err != nil {
			t.Errorf("expected kv_items table to exist: %v", err)
		}
	})

	t.Run("RollbackMigration", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(ctx, db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
		if err := RollbackMigration(ctx, db); err != nil {
			t.Fatalf("failed to rollback: %v", err)
		}

		var name string
		err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='kv_items'").Scan(&name)
		if err == nil {
			t.Error("expected kv_items table to be dropped")
		}

		if err := RollbackMigration(ctx, db); !errors.Is(err, ErrNoMigrations) {
			t.Errorf("expected ErrNoMigrations when nothing is left to roll back, got %v", err)
		}
	})

	t.Run("splitStatements", func(t *testing.T) {
		stmts := splitStatements("-- comment\nCREATE TABLE a (x INT);\n\n-- trailing\n;SELECT 1;")
		if len(stmts) != 2 {
			t.Fatalf("expected 2 statements, got %d: %q", len(stmts), stmts)
		}
		if stmts[0] != "CREATE TABLE a (x INT)" {
			t.Errorf("unexpected first statement %q", stmts[0])
		}
	})
}
