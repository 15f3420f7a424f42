package core

import (
	"context"
	"testing"
	"time"

	"github.com/jo-hoe/godiary/internal/backend/database"
)

func newTestQueryService(t *testing.T, loc *time.Location, now time.Time) (*EntryQueryService, database.DatabaseService) {
	t.Helper()
	store, err := database.NewDatabase(context.Background(), "sqlite", ":memory:")
	if err != nil {
		t.Fatalf("NewDatabase error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return NewEntryQueryService(store, loc, func() time.Time { return now }), store
}

func mustCreate(t *testing.T, store database.DatabaseService, content string, createdAt time.Time) *database.Entry {
	t.Helper()
	entry, err := store.CreateEntry(context.Background(), content, createdAt)
	if err != nil {
		t.Fatalf("CreateEntry(%q) error: %v", content, err)
	}
	return entry
}

func contents(entries []*database.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Content)
	}
	return out
}

func assertContents(t *testing.T, entries []*database.Entry, want ...string) {
	t.Helper()
	got := contents(entries)
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestQuery_AllNewestFirst(t *testing.T) {
	q, store := newTestQueryService(t, time.UTC, time.Now())
	t1 := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	mustCreate(t, store, "a", t1)
	mustCreate(t, store, "b", t1.Add(time.Hour))
	mustCreate(t, store, "c", t1.Add(2*time.Hour))

	entries, err := q.Query(context.Background(), Filter{Mode: FilterAll})
	if err != nil {
		t.Fatalf("Query error: %v", err)
	}
	assertContents(t, entries, "c", "b", "a")
}

func TestQuery_AllIgnoresInsertionOrder(t *testing.T) {
	q, store := newTestQueryService(t, time.UTC, time.Now())
	mustCreate(t, store, "middle", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	mustCreate(t, store, "oldest", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	mustCreate(t, store, "newest", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	entries, err := q.Query(context.Background(), ParseFilter("all", ""))
	if err != nil {
		t.Fatalf("Query error: %v", err)
	}
	assertContents(t, entries, "newest", "middle", "oldest")
}

func TestQuery_EqualTimestampsLatestInsertFirst(t *testing.T) {
	q, store := newTestQueryService(t, time.UTC, time.Now())
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mustCreate(t, store, "first", ts)
	mustCreate(t, store, "second", ts)

	entries, err := q.Query(context.Background(), Filter{Mode: FilterAll})
	if err != nil {
		t.Fatalf("Query error: %v", err)
	}
	assertContents(t, entries, "second", "first")
}

func TestQuery_Today(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	q, store := newTestQueryService(t, time.UTC, now)
	mustCreate(t, store, "yesterday", now.AddDate(0, 0, -1))
	mustCreate(t, store, "start of day", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	mustCreate(t, store, "now", now)
	mustCreate(t, store, "tomorrow", time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC))

	entries, err := q.Query(context.Background(), ParseFilter("today", ""))
	if err != nil {
		t.Fatalf("Query error: %v", err)
	}
	assertContents(t, entries, "now", "start of day")
}

func TestQuery_TodayUsesConfiguredTimezone(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	// 23:30 UTC on the 14th is already the 15th at UTC+2
	now := time.Date(2024, 3, 14, 23, 30, 0, 0, time.UTC)
	q, store := newTestQueryService(t, loc, now)
	mustCreate(t, store, "late utc 14th", time.Date(2024, 3, 14, 22, 30, 0, 0, time.UTC))
	mustCreate(t, store, "early utc 14th", time.Date(2024, 3, 14, 21, 30, 0, 0, time.UTC))

	entries, err := q.Query(context.Background(), Filter{Mode: FilterToday})
	if err != nil {
		t.Fatalf("Query error: %v", err)
	}
	assertContents(t, entries, "late utc 14th")

	today := q.Today()
	if today.Day() != 15 || today.Location() != loc {
		t.Errorf("expected Today to be the 15th in %s, got %v", loc, today)
	}
}

func TestQuery_Month(t *testing.T) {
	q, store := newTestQueryService(t, time.UTC, time.Now())
	mustCreate(t, store, "feb", time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC))
	mustCreate(t, store, "ides", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	mustCreate(t, store, "mar end", time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC))
	mustCreate(t, store, "apr", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))
	mustCreate(t, store, "mar other year", time.Date(2023, 3, 10, 0, 0, 0, 0, time.UTC))

	ctx := context.Background()
	entries, err := q.Query(ctx, ParseFilter("month", "2024-03"))
	if err != nil {
		t.Fatalf("Query error: %v", err)
	}
	assertContents(t, entries, "mar end", "ides")

	entries, err = q.Query(ctx, ParseFilter("month", "2024-04"))
	if err != nil {
		t.Fatalf("Query error: %v", err)
	}
	assertContents(t, entries, "apr")
}

func TestQuery_MonthDecember(t *testing.T) {
	q, store := newTestQueryService(t, time.UTC, time.Now())
	mustCreate(t, store, "december", time.Date(2024, 12, 31, 12, 0, 0, 0, time.UTC))
	mustCreate(t, store, "january", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	entries, err := q.Query(context.Background(), ParseFilter("month", "2024-12"))
	if err != nil {
		t.Fatalf("Query error: %v", err)
	}
	assertContents(t, entries, "december")
}

func TestQuery_MalformedMonthBehavesAsAll(t *testing.T) {
	q, store := newTestQueryService(t, time.UTC, time.Now())
	mustCreate(t, store, "a", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	mustCreate(t, store, "b", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))

	ctx := context.Background()
	all, err := q.Query(ctx, ParseFilter("all", ""))
	if err != nil {
		t.Fatalf("Query(all) error: %v", err)
	}
	for _, value := range []string{"not-a-date", "", "2024", "2024-03-01"} {
		got, err := q.Query(ctx, ParseFilter("month", value))
		if err != nil {
			t.Fatalf("Query(month, %q) error: %v", value, err)
		}
		assertContents(t, got, contents(all)...)
	}
}

func TestQuery_MonthOutOfRangeMatchesNothing(t *testing.T) {
	q, store := newTestQueryService(t, time.UTC, time.Now())
	mustCreate(t, store, "jan next year", time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))
	mustCreate(t, store, "march", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))

	// "0-12" ends exactly at the zero time; "584556073-06" overflows unix millis
	for _, value := range []string{"2024-13", "2024-0", "0-12", "0-01", "10000-01", "584556073-06"} {
		entries, err := q.Query(context.Background(), ParseFilter("month", value))
		if err != nil {
			t.Fatalf("Query(month, %q) error: %v", value, err)
		}
		if len(entries) != 0 {
			t.Errorf("month %q: expected no entries, got %v", value, contents(entries))
		}
	}
}

func TestQuery_MonthAtYearLimits(t *testing.T) {
	q, store := newTestQueryService(t, time.UTC, time.Now())
	mustCreate(t, store, "first year", time.Date(1, 1, 15, 0, 0, 0, 0, time.UTC))
	mustCreate(t, store, "last year", time.Date(9999, 12, 31, 12, 0, 0, 0, time.UTC))
	mustCreate(t, store, "present", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))

	ctx := context.Background()
	entries, err := q.Query(ctx, ParseFilter("month", "1-01"))
	if err != nil {
		t.Fatalf("Query error: %v", err)
	}
	assertContents(t, entries, "first year")

	entries, err = q.Query(ctx, ParseFilter("month", "9999-12"))
	if err != nil {
		t.Fatalf("Query error: %v", err)
	}
	assertContents(t, entries, "last year")
}

func TestQuery_MonthFilterWithoutPayloadBehavesAsAll(t *testing.T) {
	q, store := newTestQueryService(t, time.UTC, time.Now())
	mustCreate(t, store, "a", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

	entries, err := q.Query(context.Background(), Filter{Mode: FilterMonth})
	if err != nil {
		t.Fatalf("Query error: %v", err)
	}
	assertContents(t, entries, "a")
}

func TestQuery_EmptyStoreReturnsEmptySlice(t *testing.T) {
	q, _ := newTestQueryService(t, time.UTC, time.Now())
	entries, err := q.Query(context.Background(), Filter{Mode: FilterToday})
	if err != nil {
		t.Fatalf("Query error: %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", entries)
	}
}
