package mining

import (
	"context"
	"errors"
	"testing"
)

func TestFindPrimaryKey_ScoresCandidates(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	columns, err := SchemaColumns(ctx, db)
	if err != nil {
		t.Fatal(err)
	}

	candidates, err := FindPrimaryKey(ctx, db, "orders", "customer_id", columns,
		KeySearchOptions{StrictType: true})
	if err != nil {
		t.Fatalf("FindPrimaryKey() error = %v", err)
	}
	if len(candidates) == 0 {
		t.Fatal("expected at least one candidate")
	}

	// customers.id covers both distinct foreign key values (1, 2) and
	// has one unused value (3); it must rank first.
	best := candidates[0]
	if best.Table != "customers" || best.Column != "id" {
		t.Fatalf("best candidate = %s.%s, want customers.id", best.Table, best.Column)
	}
	if best.MatchedValues != 2 {
		t.Errorf("matched values = %d, want 2", best.MatchedValues)
	}
	if best.UnusedValues != 1 {
		t.Errorf("unused values = %d, want 1", best.UnusedValues)
	}
	if best.PercentMatch != 1.0 {
		t.Errorf("percent match = %v, want 1.0", best.PercentMatch)
	}
}

func TestFindPrimaryKey_KeysOnly(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	columns, err := SchemaColumns(ctx, db)
	if err != nil {
		t.Fatal(err)
	}

	candidates, err := FindPrimaryKey(ctx, db, "orders", "customer_id", columns,
		KeySearchOptions{KeysOnly: true, StrictType: true})
	if err != nil {
		t.Fatalf("FindPrimaryKey() error = %v", err)
	}
	for _, c := range candidates {
		if c.Table == "customers" && c.Column == "region" {
			t.Error("keysOnly must exclude non-key columns")
		}
	}
}

func TestFindPrimaryKey_LooseTypeComparesAsStrings(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	// amount is TEXT while order_id is INTEGER; loose matching must
	// still score them without type errors.
	columns, err := SchemaColumns(ctx, db)
	if err != nil {
		t.Fatal(err)
	}
	candidates, err := FindPrimaryKey(ctx, db, "orders", "customer_id", columns,
		KeySearchOptions{StrictType: false})
	if err != nil {
		t.Fatalf("FindPrimaryKey() error = %v", err)
	}
	if len(candidates) != 5 {
		t.Errorf("expected all 5 other columns scored, got %d", len(candidates))
	}
}

func TestFindPrimaryKey_UnknownColumn(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	columns, err := SchemaColumns(ctx, db)
	if err != nil {
		t.Fatal(err)
	}
	_, err = FindPrimaryKey(ctx, db, "orders", "nope", columns, KeySearchOptions{})
	if !errors.Is(err, ErrColumnNotFound) {
		t.Fatalf("expected ErrColumnNotFound, got %v", err)
	}
}

func TestFindValue(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	columns, err := SchemaColumns(ctx, db)
	if err != nil {
		t.Fatal(err)
	}

	matches, err := FindValue(ctx, db, columns, "TEXT", "alice")
	if err != nil {
		t.Fatalf("FindValue() error = %v", err)
	}
	if len(matches) != 1 || matches[0].Table != "customers" || matches[0].Column != "name" {
		t.Errorf("matches = %v, want customers.name", matches)
	}

	// Without a datatype filter the integer columns are scanned too.
	matches, err = FindValue(ctx, db, columns, "", int64(1))
	if err != nil {
		t.Fatalf("FindValue() error = %v", err)
	}
	found := false
	for _, m := range matches {
		if m.Table == "customers" && m.Column == "id" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected customers.id among matches, got %v", matches)
	}
}
