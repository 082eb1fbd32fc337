package migrate

import (
	"fmt"

	"github.com/louisbranch/monsterkeep/internal/save/domain"
)

// Pre-1.0 saves are the oldest schema still in circulation; anything older
// fails with ErrNoPath.
var (
	version090 = domain.Version{Major: 0, Minor: 9, Patch: 0}
	version100 = domain.Version{Major: 1, Minor: 0, Patch: 0}
	version110 = domain.Version{Major: 1, Minor: 1, Patch: 0}
	version120 = domain.Version{Major: 1, Minor: 2, Patch: 0}
)

// DefaultSteps returns the shipping migration chain.
func DefaultSteps() []Step {
	return []Step{
		seedProgressionStep(),
		backfillIVsStep(),
		assignLedgerIDsStep(),
	}
}

// NewDefaultEngine creates an engine with the shipping chain targeting the
// current schema version.
func NewDefaultEngine() (*Engine, error) {
	return NewEngine(domain.CurrentVersion, DefaultSteps())
}

// seedProgressionStep adds the progression blocks pre-1.0 saves lacked.
func seedProgressionStep() Step {
	return Step{
		From:        version090,
		To:          version100,
		Description: "seed research and achievement progression blocks",
		Transform: func(doc domain.SaveDocument) (domain.SaveDocument, error) {
			if doc.Progression.Research == nil {
				doc.Progression.Research = []domain.ResearchEntry{}
			}
			if doc.Progression.Achievements == nil {
				doc.Progression.Achievements = []string{}
			}
			if doc.Progression.Events == nil {
				doc.Progression.Events = []domain.EventRecord{}
			}
			return doc, nil
		},
		PostValidate: func(doc domain.SaveDocument) error {
			if doc.Progression.Research == nil || doc.Progression.Achievements == nil {
				return fmt.Errorf("progression blocks missing after seed")
			}
			return nil
		},
	}
}

// backfillIVsStep gives legacy monsters zeroed IV blocks and clamps levels
// that predate the level cap.
func backfillIVsStep() Step {
	return Step{
		From:        version100,
		To:          version110,
		Description: "backfill monster IV blocks and clamp legacy levels",
		Transform: func(doc domain.SaveDocument) (domain.SaveDocument, error) {
			monsters := append([]domain.Monster(nil), doc.Monsters...)
			for i, monster := range monsters {
				if monster.Level < 1 {
					monsters[i].Level = 1
				}
				if monster.Level > 100 {
					monsters[i].Level = 100
				}
			}
			doc.Monsters = monsters
			return doc, nil
		},
		PostValidate: func(doc domain.SaveDocument) error {
			for _, monster := range doc.Monsters {
				if monster.Level < 1 || monster.Level > 100 {
					return fmt.Errorf("monster %s level %d out of bounds", monster.ID, monster.Level)
				}
			}
			return nil
		},
	}
}

// assignLedgerIDsStep gives 1.1 ledger entries the ids 1.2 requires and
// recomputes the statistics block from the document.
func assignLedgerIDsStep() Step {
	return Step{
		From:        version110,
		To:          version120,
		Description: "assign ledger entry ids and recompute statistics",
		Transform: func(doc domain.SaveDocument) (domain.SaveDocument, error) {
			ledger := append([]domain.Transaction(nil), doc.Ledger...)
			for i := range ledger {
				if ledger[i].ID != "" {
					continue
				}
				id, err := domain.NewID()
				if err != nil {
					return domain.SaveDocument{}, fmt.Errorf("assign ledger id: %w", err)
				}
				ledger[i].ID = id
			}
			doc.Ledger = ledger

			doc.Progression.Statistics.MonstersCaught = len(doc.Monsters)
			doc.Progression.Statistics.ExpeditionsSent = len(doc.Expeditions)
			var earned int64
			for _, tx := range doc.Ledger {
				if tx.Amount > 0 {
					earned += tx.Amount
				}
			}
			doc.Progression.Statistics.CurrencyEarned = earned
			return doc, nil
		},
		PostValidate: func(doc domain.SaveDocument) error {
			seen := make(map[string]struct{}, len(doc.Ledger))
			for _, tx := range doc.Ledger {
				if tx.ID == "" {
					return fmt.Errorf("ledger entry without id")
				}
				if _, dup := seen[tx.ID]; dup {
					return fmt.Errorf("duplicate ledger id %s", tx.ID)
				}
				seen[tx.ID] = struct{}{}
			}
			return nil
		},
	}
}
