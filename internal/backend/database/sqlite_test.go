package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

func newTestDB(t *testing.T) DatabaseService {
	t.Helper()

	ds, err := NewSQLiteDatabase(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteDatabase error: %v", err)
	}
	if err := ds.CreateDatabase(context.Background()); err != nil {
		t.Fatalf("CreateDatabase error: %v", err)
	}
	t.Cleanup(func() { _ = ds.Close() })
	return ds
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	if err != nil {
		t.Fatalf("tableExists query failed: %v", err)
	}
	return n > 0
}

func TestSQLite_DoesDatabaseExist(t *testing.T) {
	ds := newTestDB(t)
	if !ds.DoesDatabaseExist(context.Background()) {
		t.Fatalf("expected DoesDatabaseExist to return true")
	}
}

func TestSQLite_CreateDatabase_AppliesMigrations(t *testing.T) {
	ds := newTestDB(t)
	db := ds.(*SQLiteDatabase).db

	if !tableExists(t, db, "diary_entries") {
		t.Fatalf("expected diary_entries table to exist after migrations")
	}
	if !tableExists(t, db, "goose_db_version") {
		t.Fatalf("expected goose_db_version table to exist after migrations")
	}
}

func TestSQLite_CreateDatabase_IsIdempotent(t *testing.T) {
	ds := newTestDB(t)
	if err := ds.CreateDatabase(context.Background()); err != nil {
		t.Fatalf("CreateDatabase (second) should be idempotent, got error: %v", err)
	}
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "diary.db")

	ds, err := NewSQLiteDatabase(path)
	if err != nil {
		t.Fatalf("NewSQLiteDatabase error: %v", err)
	}
	if err := ds.CreateDatabase(ctx); err != nil {
		t.Fatalf("CreateDatabase error: %v", err)
	}
	created, err := ds.CreateEntry(ctx, "durable", time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("CreateEntry error: %v", err)
	}
	if err := ds.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	reopened, err := NewSQLiteDatabase(path)
	if err != nil {
		t.Fatalf("NewSQLiteDatabase (reopen) error: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })
	if err := reopened.CreateDatabase(ctx); err != nil {
		t.Fatalf("CreateDatabase (reopen) error: %v", err)
	}

	got, err := reopened.GetEntryByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetEntryByID after reopen error: %v", err)
	}
	if got.Content != "durable" {
		t.Errorf("expected content %q, got %q", "durable", got.Content)
	}
}
