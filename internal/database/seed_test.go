package database

import (
	"testing"
)

func TestSeedIdempotent(t *testing.T) {
	db, err := Connect(testDSN())
	if err != nil {
		t.Skipf("skipping: DB not available: %v", err)
	}
	defer db.Close()

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	// Seed creates data only when the categories table is empty, so calling
	// it twice must not duplicate anything. The database is not cleared
	// first because other test packages may run against it concurrently.
	if err := Seed(db); err != nil {
		t.Fatalf("first Seed: %v", err)
	}

	var before int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&before); err != nil {
		t.Fatalf("count categories: %v", err)
	}
	if before < 1 {
		t.Fatalf("expected seeded categories, got %d", before)
	}

	if err := Seed(db); err != nil {
		t.Fatalf("second Seed: %v", err)
	}

	var after int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&after); err != nil {
		t.Fatalf("count categories: %v", err)
	}
	if after != before {
		t.Errorf("second Seed changed category count: before %d, after %d", before, after)
	}
}
