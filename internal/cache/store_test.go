package cache_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"tunebot/internal/cache"
	"tunebot/internal/config"
)

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.Telegram.BotToken = "123:test"
	cfg.Paths.DownloadDir = filepath.Join(base, "downloads")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	return &cfg
}

func mustOpen(t *testing.T, cfg *config.Config) *cache.Store {
	t.Helper()
	store, err := cache.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndLookup(t *testing.T) {
	store := mustOpen(t, newTestConfig(t))
	ctx := context.Background()

	entry := cache.Entry{
		VideoID:   "dQw4w9WgXcQ",
		Query:     "never gonna give you up",
		FileID:    "CQACAgIAAxkBAAE",
		Title:     "Never Gonna Give You Up",
		Performer: "Rick Astley",
	}
	if err := store.Record(ctx, entry); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err := store.Lookup(ctx, entry.VideoID)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got == nil {
		t.Fatal("expected cached entry")
	}
	if got.FileID != entry.FileID || got.Title != entry.Title || got.Performer != entry.Performer {
		t.Fatalf("unexpected entry: %+v", got)
	}
	if got.DeliveredAt.IsZero() {
		t.Fatal("expected delivered_at to be populated")
	}
}

func TestLookupMissReturnsNil(t *testing.T) {
	store := mustOpen(t, newTestConfig(t))

	got, err := store.Lookup(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil entry, got %+v", got)
	}
}

func TestRecordUpdatesExistingVideo(t *testing.T) {
	store := mustOpen(t, newTestConfig(t))
	ctx := context.Background()

	first := cache.Entry{VideoID: "abc123", Query: "q", FileID: "file-1", Title: "Old", Performer: "A"}
	if err := store.Record(ctx, first); err != nil {
		t.Fatalf("Record: %v", err)
	}
	second := first
	second.FileID = "file-2"
	second.Title = "New"
	if err := store.Record(ctx, second); err != nil {
		t.Fatalf("Record update: %v", err)
	}

	got, err := store.Lookup(ctx, "abc123")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got == nil || got.FileID != "file-2" || got.Title != "New" {
		t.Fatalf("expected refreshed entry, got %+v", got)
	}

	entries, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected single entry, got %d", len(entries))
	}
}

func TestRecordRequiresIdentifiers(t *testing.T) {
	store := mustOpen(t, newTestConfig(t))
	ctx := context.Background()

	if err := store.Record(ctx, cache.Entry{FileID: "f"}); err == nil {
		t.Fatal("expected error for missing video id")
	}
	if err := store.Record(ctx, cache.Entry{VideoID: "v"}); err == nil {
		t.Fatal("expected error for missing file id")
	}
}

func TestListOrdersNewestFirst(t *testing.T) {
	store := mustOpen(t, newTestConfig(t))
	ctx := context.Background()

	older := cache.Entry{VideoID: "old", Query: "q1", FileID: "f1", Title: "Old", Performer: "A",
		DeliveredAt: time.Now().UTC().Add(-time.Hour)}
	newer := cache.Entry{VideoID: "new", Query: "q2", FileID: "f2", Title: "New", Performer: "B",
		DeliveredAt: time.Now().UTC()}
	for _, entry := range []cache.Entry{older, newer} {
		if err := store.Record(ctx, entry); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	entries, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].VideoID != "new" || entries[1].VideoID != "old" {
		t.Fatalf("unexpected order: %s, %s", entries[0].VideoID, entries[1].VideoID)
	}
}

func TestClearDropsEverything(t *testing.T) {
	store := mustOpen(t, newTestConfig(t))
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		entry := cache.Entry{VideoID: id, Query: "q", FileID: "f-" + id, Title: "T", Performer: "P"}
		if err := store.Record(ctx, entry); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	dropped, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if dropped != 3 {
		t.Fatalf("expected 3 dropped, got %d", dropped)
	}
	entries, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty cache, got %d entries", len(entries))
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	cfg := newTestConfig(t)
	store := mustOpen(t, cfg)
	ctx := context.Background()

	entry := cache.Entry{VideoID: "persist", Query: "q", FileID: "f", Title: "T", Performer: "P"}
	if err := store.Record(ctx, entry); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened := mustOpen(t, cfg)
	got, err := reopened.Lookup(ctx, "persist")
	if err != nil {
		t.Fatalf("Lookup after reopen: %v", err)
	}
	if got == nil || got.FileID != "f" {
		t.Fatalf("expected persisted entry, got %+v", got)
	}
}
