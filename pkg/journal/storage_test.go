package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func storageBackends(t *testing.T) map[string]Storage {
	t.Helper()

	sqlite, err := NewSQLiteStorage(&SQLiteConfig{
		Path:         filepath.Join(t.TempDir(), "journal.db"),
		MaxOpenConns: 2,
		BusyTimeout:  time.Second,
	})
	if err != nil {
		t.Fatalf("NewSQLiteStorage() error = %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Storage{
		"memory": NewMemoryStorage(0),
		"sqlite": sqlite,
	}
}

func makeRecord(id, source string, eventTime time.Time) *Record {
	return &Record{
		ID:         id,
		Source:     source,
		Method:     "POST",
		URL:        "/llm/generate",
		Status:     200,
		Body:       []byte(`{"source":"` + source + `"}`),
		EventTime:  eventTime,
		RecordedAt: time.Now(),
	}
}

func TestStorageStoreAndQuery(t *testing.T) {
	for name, store := range storageBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Now().Add(-time.Hour).Truncate(time.Millisecond)

			for i, source := range []string{"client_request", "server_response", "client_request"} {
				rec := makeRecord(string(rune('a'+i)), source, base.Add(time.Duration(i)*time.Minute))
				if err := store.Store(ctx, rec); err != nil {
					t.Fatalf("Store() error = %v", err)
				}
			}

			all, err := store.Query(ctx, &Query{})
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if len(all) != 3 {
				t.Fatalf("Query() returned %d records, want 3", len(all))
			}
			// Oldest first.
			if all[0].ID != "a" || all[2].ID != "c" {
				t.Errorf("records out of order: %s, %s, %s", all[0].ID, all[1].ID, all[2].ID)
			}

			bySource, err := store.Query(ctx, &Query{Source: "client_request"})
			if err != nil {
				t.Fatalf("Query(source) error = %v", err)
			}
			if len(bySource) != 2 {
				t.Errorf("Query(source) returned %d records, want 2", len(bySource))
			}

			limited, err := store.Query(ctx, &Query{Limit: 1})
			if err != nil {
				t.Fatalf("Query(limit) error = %v", err)
			}
			if len(limited) != 1 || limited[0].ID != "a" {
				t.Errorf("Query(limit) = %v, want oldest record only", limited)
			}

			n, err := store.Count(ctx, &Query{Source: "server_response"})
			if err != nil {
				t.Fatalf("Count() error = %v", err)
			}
			if n != 1 {
				t.Errorf("Count() = %d, want 1", n)
			}
		})
	}
}

func TestStorageDeleteBefore(t *testing.T) {
	for name, store := range storageBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			now := time.Now().Truncate(time.Millisecond)

			store.Store(ctx, makeRecord("old", "client_request", now.Add(-48*time.Hour)))
			store.Store(ctx, makeRecord("recent", "client_request", now.Add(-time.Minute)))

			deleted, err := store.DeleteBefore(ctx, now.Add(-24*time.Hour))
			if err != nil {
				t.Fatalf("DeleteBefore() error = %v", err)
			}
			if deleted != 1 {
				t.Errorf("DeleteBefore() = %d, want 1", deleted)
			}

			remaining, _ := store.Query(ctx, &Query{})
			if len(remaining) != 1 || remaining[0].ID != "recent" {
				t.Errorf("remaining = %v, want only the recent record", remaining)
			}
		})
	}
}

func TestStorageDeleteOldest(t *testing.T) {
	for name, store := range storageBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Now().Add(-time.Hour).Truncate(time.Millisecond)

			for i := 0; i < 5; i++ {
				store.Store(ctx, makeRecord(string(rune('a'+i)), "client_request", base.Add(time.Duration(i)*time.Second)))
			}

			deleted, err := store.DeleteOldest(ctx, 3)
			if err != nil {
				t.Fatalf("DeleteOldest() error = %v", err)
			}
			if deleted != 3 {
				t.Errorf("DeleteOldest() = %d, want 3", deleted)
			}

			remaining, _ := store.Query(ctx, &Query{})
			if len(remaining) != 2 || remaining[0].ID != "d" {
				t.Errorf("remaining = %v, want records d and e", remaining)
			}
		})
	}
}

func TestMemoryStorageEvictsOldestWhenFull(t *testing.T) {
	store := NewMemoryStorage(2)
	ctx := context.Background()
	base := time.Now()

	store.Store(ctx, makeRecord("a", "client_request", base))
	store.Store(ctx, makeRecord("b", "client_request", base.Add(time.Second)))
	store.Store(ctx, makeRecord("c", "client_request", base.Add(2*time.Second)))

	all, _ := store.Query(ctx, &Query{})
	if len(all) != 2 || all[0].ID != "b" || all[1].ID != "c" {
		t.Errorf("ring contents = %v, want [b c]", all)
	}
}

func TestSQLiteStorageSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	ctx := context.Background()

	store, err := NewSQLiteStorage(&SQLiteConfig{Path: path, MaxOpenConns: 1, BusyTimeout: time.Second})
	if err != nil {
		t.Fatalf("NewSQLiteStorage() error = %v", err)
	}
	if err := store.Store(ctx, makeRecord("a", "client_request", time.Now())); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	store.Close()

	reopened, err := NewSQLiteStorage(&SQLiteConfig{Path: path, MaxOpenConns: 1, BusyTimeout: time.Second})
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	n, err := reopened.Count(ctx, &Query{})
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Count() after reopen = %d, want 1", n)
	}
}
