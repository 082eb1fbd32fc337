package service

import (
	"time"

	"github.com/louisbranch/monsterkeep/internal/save/domain"
)

// GameContext is the read-only snapshot provider the orchestrator builds
// save documents from. The save layer never mutates it.
type GameContext interface {
	Player() domain.PlayerProfile
	Monsters() []domain.Monster
	Trainers() []domain.Trainer
	Facilities() []domain.Facility
	Expeditions() []domain.Expedition
	Ledger() []domain.Transaction
	Progression() domain.Progression
}

// BuildDocument snapshots the live game context into a save document at the
// current schema version.
func BuildDocument(game GameContext, now func() time.Time) domain.SaveDocument {
	if now == nil {
		now = time.Now
	}
	return domain.SaveDocument{
		Version:     domain.CurrentVersion,
		Player:      game.Player(),
		Monsters:    append([]domain.Monster(nil), game.Monsters()...),
		Trainers:    append([]domain.Trainer(nil), game.Trainers()...),
		Facilities:  append([]domain.Facility(nil), game.Facilities()...),
		Expeditions: append([]domain.Expedition(nil), game.Expeditions()...),
		Ledger:      append([]domain.Transaction(nil), game.Ledger()...),
		Progression: game.Progression(),
		SavedAt:     now().UTC(),
	}
}
