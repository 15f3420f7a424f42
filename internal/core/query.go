package core

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/jo-hoe/godiary/internal/backend/database"
)

// EntryQueryService builds the ordered, filtered entry listing.
type EntryQueryService struct {
	store    database.DatabaseService
	location *time.Location
	now      func() time.Time
}

func NewEntryQueryService(store database.DatabaseService, location *time.Location, now func() time.Time) *EntryQueryService {
	if location == nil {
		location = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &EntryQueryService{
		store:    store,
		location: location,
		now:      now,
	}
}

// Query returns the entries selected by filter, newest first. Entries with
// equal timestamps are ordered by id, highest first.
func (q *EntryQueryService) Query(ctx context.Context, filter Filter) ([]*database.Entry, error) {
	var (
		entries []*database.Entry
		err     error
	)

	switch filter.Mode {
	case FilterToday:
		from, to := q.dayRange(q.now())
		entries, err = q.store.GetEntriesBetween(ctx, from, to)
	case FilterMonth:
		if filter.Month == nil {
			entries, err = q.store.GetAllEntries(ctx)
			break
		}
		if !filter.Month.valid() {
			return []*database.Entry{}, nil
		}
		from, to := q.monthRange(*filter.Month)
		entries, err = q.store.GetEntriesBetween(ctx, from, to)
	default:
		entries, err = q.store.GetAllEntries(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query entries (filter=%s): %w", filter.Mode, err)
	}

	sortNewestFirst(entries)
	if entries == nil {
		entries = []*database.Entry{}
	}
	return entries, nil
}

// Today returns the current calendar date in the configured time zone.
func (q *EntryQueryService) Today() time.Time {
	now := q.now().In(q.location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, q.location)
}

func (q *EntryQueryService) Location() *time.Location {
	return q.location
}

func (q *EntryQueryService) dayRange(now time.Time) (time.Time, time.Time) {
	local := now.In(q.location)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, q.location)
	return start, start.AddDate(0, 0, 1)
}

func (q *EntryQueryService) monthRange(ym YearMonth) (time.Time, time.Time) {
	start := time.Date(ym.Year, time.Month(ym.Month), 1, 0, 0, 0, 0, q.location)
	return start, start.AddDate(0, 1, 0)
}

func sortNewestFirst(entries []*database.Entry) {
	slices.SortStableFunc(entries, func(a, b *database.Entry) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
}
