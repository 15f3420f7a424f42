package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jo-hoe/godiary/internal/backend/database/migrations"
	"github.com/jo-hoe/godiary/internal/common"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

type SQLiteDatabase struct {
	db               *sql.DB
	connectionString string
}

func NewSQLiteDatabase(connectionString string) (DatabaseService, error) {
	db, err := sql.Open("sqlite", connectionString)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Every connection to ":memory:" is its own database, so keep exactly one.
	// This also serializes writers.
	db.SetMaxOpenConns(1)

	return &SQLiteDatabase{
		db:               db,
		connectionString: connectionString,
	}, nil
}

func (s *SQLiteDatabase) CreateDatabase(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, s.db, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteDatabase) DoesDatabaseExist(ctx context.Context) bool {
	// In SQLite, the database file is created when you connect to it.
	// So we can assume it exists if we can successfully ping the database.
	err := s.db.PingContext(ctx)
	return err == nil
}

func (s *SQLiteDatabase) CreateEntry(ctx context.Context, content string, createdAt time.Time) (*Entry, error) {
	if err := validateContent(content); err != nil {
		return nil, err
	}
	createdAt = normalizeCreatedAt(createdAt)

	result, err := s.db.ExecContext(ctx,
		"INSERT INTO diary_entries (content, created_at) VALUES (?, ?)",
		content, toMillis(createdAt))
	if err != nil {
		return nil, fmt.Errorf("failed to insert entry: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read inserted entry id: %w", err)
	}

	return &Entry{ID: id, Content: content, CreatedAt: createdAt}, nil
}

func (s *SQLiteDatabase) GetEntryByID(ctx context.Context, id int64) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, content, created_at FROM diary_entries WHERE id = ?", id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("entry %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select entry %d: %w", id, err)
	}
	return entry, nil
}

func (s *SQLiteDatabase) DeleteEntry(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM diary_entries WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete entry %d: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("entry %d: %w", id, common.ErrNotFound)
	}
	return nil
}

func (s *SQLiteDatabase) GetAllEntries(ctx context.Context) ([]*Entry, error) {
	return s.queryEntries(ctx, "SELECT id, content, created_at FROM diary_entries")
}

func (s *SQLiteDatabase) GetEntriesBetween(ctx context.Context, from, to time.Time) ([]*Entry, error) {
	return s.queryEntries(ctx,
		"SELECT id, content, created_at FROM diary_entries WHERE created_at >= ? AND created_at < ?",
		toMillis(from), toMillis(to))
}

func (s *SQLiteDatabase) queryEntries(ctx context.Context, query string, args ...any) ([]*Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer func() {
		_ = rows.Close() // Explicitly ignore error as we're already returning an error from the function
	}()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var (
		entry     Entry
		createdAt int64
	)
	if err := row.Scan(&entry.ID, &entry.Content, &createdAt); err != nil {
		return nil, err
	}
	entry.CreatedAt = fromMillis(createdAt)
	return &entry, nil
}
