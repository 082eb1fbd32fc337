package service

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Autosaver periodically snapshots the game context into a fixed slot. The
// per-slot lock arena serializes its writes against manual saves on the
// same slot.
type Autosaver struct {
	orchestrator *Orchestrator
	game         GameContext
	slot         int
	interval     time.Duration
}

// NewAutosaver creates an autosaver for the configured autosave slot.
func NewAutosaver(o *Orchestrator, game GameContext) (*Autosaver, error) {
	if o == nil {
		return nil, fmt.Errorf("orchestrator is required")
	}
	if game == nil {
		return nil, fmt.Errorf("game context is required")
	}
	return &Autosaver{
		orchestrator: o,
		game:         game,
		slot:         o.cfg.AutosaveSlot,
		interval:     o.cfg.AutosaveInterval,
	}, nil
}

// Run saves on every tick until the context is cancelled. Save failures are
// logged and the loop keeps going; an autosave must never crash the game.
func (a *Autosaver) Run(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := a.orchestrator.Save(ctx, a.slot, a.game); err != nil {
				log.Printf("autosave failed slot=%d error=%v", a.slot, err)
			}
		}
	}
}
