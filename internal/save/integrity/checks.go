package integrity

import (
	"fmt"

	"github.com/louisbranch/monsterkeep/internal/save/domain"
)

// Config holds the tunables the default checks depend on. Tolerances are
// configuration, never per-call literals.
type Config struct {
	// LedgerTolerance is the maximum allowed absolute difference between
	// the reported balance and the ledger-derived balance.
	LedgerTolerance int64
	// StartingBalance is the balance assumed before the first ledger entry.
	StartingBalance int64
	// MonsterLevelMin and MonsterLevelMax bound monster levels.
	MonsterLevelMin int
	MonsterLevelMax int
}

// DefaultConfig returns the default integrity tunables.
func DefaultConfig() Config {
	return Config{
		LedgerTolerance: 1000,
		StartingBalance: 1000,
		MonsterLevelMin: 1,
		MonsterLevelMax: 100,
	}
}

// DefaultChecks returns the check set registered for every orchestrator.
func DefaultChecks(cfg Config) []Check {
	return []Check{
		playerIdentityCheck(),
		playerCurrencyCheck(),
		playerLevelCheck(),
		monsterLevelCheck(cfg),
		monsterIdentityCheck(),
		facilityStatusCheck(),
		ledgerBalanceCheck(cfg),
		referenceResolutionCheck(),
	}
}

// NewDefaultRegistry creates a registry with the default check set.
func NewDefaultRegistry(cfg Config) (*Registry, error) {
	return NewRegistry(DefaultChecks(cfg)...)
}

func playerIdentityCheck() Check {
	return Check{
		Name:        "player.identity",
		Description: "player has an id and a display name",
		Critical:    true,
		Validate: func(doc domain.SaveDocument) error {
			if doc.Player.ID == "" {
				return fmt.Errorf("player id is empty")
			}
			if doc.Player.Name == "" {
				return fmt.Errorf("player name is empty")
			}
			return nil
		},
	}
}

func playerCurrencyCheck() Check {
	return Check{
		Name:        "player.currency",
		Description: "currency balance is non-negative",
		Critical:    true,
		Validate: func(doc domain.SaveDocument) error {
			if doc.Player.Currency < 0 {
				return fmt.Errorf("currency balance is negative: %d", doc.Player.Currency)
			}
			return nil
		},
		Repair: func(doc domain.SaveDocument) domain.SaveDocument {
			if doc.Player.Currency < 0 {
				doc.Player.Currency = 0
			}
			return doc
		},
	}
}

func playerLevelCheck() Check {
	return Check{
		Name:        "player.level",
		Description: "player level is at least 1",
		Critical:    true,
		Validate: func(doc domain.SaveDocument) error {
			if doc.Player.Level < 1 {
				return fmt.Errorf("player level %d is below 1", doc.Player.Level)
			}
			return nil
		},
		Repair: func(doc domain.SaveDocument) domain.SaveDocument {
			if doc.Player.Level < 1 {
				doc.Player.Level = 1
			}
			return doc
		},
	}
}

func monsterLevelCheck(cfg Config) Check {
	return Check{
		Name:        "monster.levels",
		Description: "monster levels are within configured bounds",
		Critical:    true,
		Validate: func(doc domain.SaveDocument) error {
			for _, monster := range doc.Monsters {
				if monster.Level < cfg.MonsterLevelMin || monster.Level > cfg.MonsterLevelMax {
					return fmt.Errorf("monster %s level %d outside [%d,%d]",
						monster.ID, monster.Level, cfg.MonsterLevelMin, cfg.MonsterLevelMax)
				}
			}
			return nil
		},
		Repair: func(doc domain.SaveDocument) domain.SaveDocument {
			// Copy before mutating so the input document stays untouched.
			clamped := append([]domain.Monster(nil), doc.Monsters...)
			for i, monster := range clamped {
				if monster.Level < cfg.MonsterLevelMin {
					clamped[i].Level = cfg.MonsterLevelMin
				}
				if monster.Level > cfg.MonsterLevelMax {
					clamped[i].Level = cfg.MonsterLevelMax
				}
			}
			doc.Monsters = clamped
			return doc
		},
	}
}

func monsterIdentityCheck() Check {
	return Check{
		Name:        "monster.identity",
		Description: "every roster entry has an id and a species id",
		Critical:    true,
		Validate: func(doc domain.SaveDocument) error {
			for i, monster := range doc.Monsters {
				if monster.ID == "" || monster.SpeciesID == "" {
					return fmt.Errorf("roster entry %d is missing identity fields", i)
				}
			}
			return nil
		},
		Repair: func(doc domain.SaveDocument) domain.SaveDocument {
			kept := doc.Monsters[:0:0]
			for _, monster := range doc.Monsters {
				if monster.ID != "" && monster.SpeciesID != "" {
					kept = append(kept, monster)
				}
			}
			doc.Monsters = kept
			return doc
		},
	}
}

func facilityStatusCheck() Check {
	return Check{
		Name:        "facility.status",
		Description: "facility statuses belong to the known enum",
		Critical:    false,
		Validate: func(doc domain.SaveDocument) error {
			for _, facility := range doc.Facilities {
				if !domain.ValidFacilityStatus(facility.Status) {
					return fmt.Errorf("facility %s has unknown status %q", facility.ID, facility.Status)
				}
			}
			return nil
		},
		Repair: func(doc domain.SaveDocument) domain.SaveDocument {
			reset := append([]domain.Facility(nil), doc.Facilities...)
			for i, facility := range reset {
				if !domain.ValidFacilityStatus(facility.Status) {
					reset[i].Status = domain.FacilityStatusIdle
				}
			}
			doc.Facilities = reset
			return doc
		},
	}
}

func ledgerBalanceCheck(cfg Config) Check {
	return Check{
		Name:        "ledger.balance",
		Description: "reported balance is plausible against the ledger",
		Critical:    false,
		Validate: func(doc domain.SaveDocument) error {
			derived := doc.LedgerBalance(cfg.StartingBalance)
			diff := doc.Player.Currency - derived
			if diff < 0 {
				diff = -diff
			}
			if diff > cfg.LedgerTolerance {
				return fmt.Errorf("balance %d deviates from ledger-derived %d by more than %d",
					doc.Player.Currency, derived, cfg.LedgerTolerance)
			}
			return nil
		},
	}
}

func referenceResolutionCheck() Check {
	return Check{
		Name:        "refs.resolve",
		Description: "expedition references resolve to entities in the document",
		Critical:    true,
		Validate: func(doc domain.SaveDocument) error {
			for _, exp := range doc.Expeditions {
				if _, ok := doc.Trainer(exp.TrainerID); !ok {
					return fmt.Errorf("expedition %s references missing trainer %s", exp.ID, exp.TrainerID)
				}
				if _, ok := doc.Facility(exp.FacilityID); !ok {
					return fmt.Errorf("expedition %s references missing facility %s", exp.ID, exp.FacilityID)
				}
			}
			return nil
		},
		Repair: func(doc domain.SaveDocument) domain.SaveDocument {
			kept := doc.Expeditions[:0:0]
			for _, exp := range doc.Expeditions {
				_, trainerOK := doc.Trainer(exp.TrainerID)
				_, facilityOK := doc.Facility(exp.FacilityID)
				if trainerOK && facilityOK {
					kept = append(kept, exp)
				}
			}
			doc.Expeditions = kept
			return doc
		},
	}
}
