package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/louisbranch/monsterkeep/internal/storage/memory"
)

func TestNewAutosaverRequiresDependencies(t *testing.T) {
	o := newTestOrchestrator(t, testConfig(), memory.NewStore())

	if _, err := NewAutosaver(nil, newFakeGame(1)); err == nil {
		t.Fatal("expected error for nil orchestrator")
	}
	if _, err := NewAutosaver(o, nil); err == nil {
		t.Fatal("expected error for nil game context")
	}
}

func TestAutosaverWritesConfiguredSlot(t *testing.T) {
	store := memory.NewStore()
	cfg := testConfig()
	cfg.AutosaveSlot = 2
	cfg.AutosaveInterval = 5 * time.Millisecond
	o := newTestOrchestrator(t, cfg, store)

	saver, err := NewAutosaver(o, newFakeGame(4))
	if err != nil {
		t.Fatalf("new autosaver: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		saver.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for {
		if _, err := o.Load(context.Background(), 2); err == nil {
			break
		} else if !errors.Is(err, ErrSlotEmpty) {
			t.Fatalf("load autosave slot: %v", err)
		}
		select {
		case <-deadline:
			t.Fatal("autosave never wrote slot 2")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	<-done

	doc, err := o.Load(context.Background(), 2)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Player.Level != 4 {
		t.Fatalf("expected autosaved snapshot, got level %d", doc.Player.Level)
	}
}
