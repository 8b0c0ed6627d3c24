package testsupport

import (
	"context"
	"testing"

	"tunebot/internal/cache"
	"tunebot/internal/config"
)

// MustOpenStore opens a cache.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *cache.Store {
	t.Helper()

	store, err := cache.Open(cfg)
	if err != nil {
		t.Fatalf("cache.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// RecordDelivery inserts a delivery entry for tests using the provided store.
func RecordDelivery(t testing.TB, store *cache.Store, entry cache.Entry) {
	t.Helper()

	if err := store.Record(context.Background(), entry); err != nil {
		t.Fatalf("store.Record: %v", err)
	}
}
