package migrations

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Simplici0/foodcost/internal/db"
)

func TestUpIsIdempotentAndCreatesSchema(t *testing.T) {
	database, err := db.Open(filepath.Join(t.TempDir(), "migrate-test.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	defer database.Close()

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := Up(ctx, database); err != nil {
			t.Fatalf("run migrations (iteration=%d): %v", i, err)
		}
	}

	version, err := Version(ctx, database)
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if version != 1 {
		t.Fatalf("expected schema version 1, got %d", version)
	}

	for _, table := range []string{"ingredients", "products", "product_formulations", "production_batches", "packs", "label_templates", "productions", "costs"} {
		var count int
		if err := database.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&count); err != nil {
			t.Fatalf("query sqlite_master: %v", err)
		}
		if count != 1 {
			t.Fatalf("expected table %s to exist", table)
		}
	}
}
