package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/louisbranch/monsterkeep/internal/storage"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

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

func TestStoreGetMissing(t *testing.T) {
	store := NewStore()

	_, err := store.Get(context.Background(), "absent")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreRemoveAbsentIsNoop(t *testing.T) {
	store := NewStore()

	if err := store.Remove(context.Background(), "absent"); err != nil {
		t.Fatalf("remove absent: %v", err)
	}
}

func TestStoreListByPrefix(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	for _, key := range []string{
		"ranch-save-1",
		"ranch-save-1-backup-2",
		"ranch-save-1-backup-1",
		"ranch-save-2",
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
		t.Fatalf("expected 2 keys, got %d: %v", len(keys), keys)
	}
	if keys[0] != "ranch-save-1-backup-1" || keys[1] != "ranch-save-1-backup-2" {
		t.Fatalf("expected sorted backup keys, got %v", keys)
	}
}

func TestStoreGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	if err := store.Set(ctx, "k", []byte("abc")); err != nil {
		t.Fatalf("set: %v", err)
	}
	first, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	first[0] = 'z'

	second, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(second) != "abc" {
		t.Fatalf("stored value mutated through returned slice: %q", second)
	}
}

func TestStoreHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewStore()
	if err := store.Set(ctx, "k", []byte("v")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := store.Get(ctx, "k"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
