package database

import (
	"context"
	"time"
)

type DatabaseService interface {
	// CreateDatabase ensures the schema exists. Calling it repeatedly is safe.
	CreateDatabase(ctx context.Context) error
	DoesDatabaseExist(ctx context.Context) bool
	Close() error

	// CreateEntry persists a new entry and returns it with its assigned id.
	// Content that is blank after trimming is rejected with common.ErrValidation.
	// A zero createdAt defaults to the current time.
	CreateEntry(ctx context.Context, content string, createdAt time.Time) (*Entry, error)
	GetEntryByID(ctx context.Context, id int64) (*Entry, error)
	DeleteEntry(ctx context.Context, id int64) error
	GetAllEntries(ctx context.Context) ([]*Entry, error)
	// GetEntriesBetween returns entries with from <= created_at < to. Both
	// bounds are always applied, including zero times.
	GetEntriesBetween(ctx context.Context, from, to time.Time) ([]*Entry, error)
}
