package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/louisbranch/monsterkeep/internal/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "saves.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("   "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	if err := store.Set(ctx, "ranch-save-1", []byte("payload")); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := store.Get(ctx, "ranch-save-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "payload" {
		t.Fatalf("expected payload, got %q", got)
	}
}

func TestStoreOverwrite(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	if err := store.Set(ctx, "k", []byte("first")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, "k", []byte("second")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	got, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "second" {
		t.Fatalf("expected second, got %q", got)
	}
}

func TestStoreGetMissing(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Get(context.Background(), "absent")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreRemove(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	if err := store.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Remove(ctx, "k"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := store.Get(ctx, "k"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after remove, got %v", err)
	}
	if err := store.Remove(ctx, "k"); err != nil {
		t.Fatalf("remove absent: %v", err)
	}
}

func TestStoreListByPrefix(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	for _, key := range []string{
		"ranch-save-1",
		"ranch-save-1-backup-1",
		"ranch-save-1-backup-2",
		"ranch-save-12-backup-1",
	} {
		if err := store.Set(ctx, key, []byte("x")); err != nil {
			t.Fatalf("set %s: %v", key, err)
		}
	}

	keys, err := store.List(ctx, "ranch-save-1-backup-")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %v", keys)
	}
	if keys[0] != "ranch-save-1-backup-1" || keys[1] != "ranch-save-1-backup-2" {
		t.Fatalf("unexpected keys %v", keys)
	}
}

func TestStoreListEscapesWildcards(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	if err := store.Set(ctx, "ns_a-save-1", []byte("x")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, "nsXa-save-1", []byte("x")); err != nil {
		t.Fatalf("set: %v", err)
	}

	keys, err := store.List(ctx, "ns_a-")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(keys) != 1 || keys[0] != "ns_a-save-1" {
		t.Fatalf("expected underscore to match literally, got %v", keys)
	}
}
