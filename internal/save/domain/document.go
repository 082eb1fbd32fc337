package domain

import "time"

// FacilityStatus describes what a ranch facility is currently doing.
type FacilityStatus string

const (
	// FacilityStatusIdle indicates an unoccupied facility.
	FacilityStatusIdle FacilityStatus = "idle"
	// FacilityStatusTraining indicates an active training program.
	FacilityStatusTraining FacilityStatus = "training"
	// FacilityStatusBreeding indicates an active breeding program.
	FacilityStatusBreeding FacilityStatus = "breeding"
	// FacilityStatusMaintenance indicates the facility is closed for repairs.
	FacilityStatusMaintenance FacilityStatus = "maintenance"
)

// ValidFacilityStatus reports whether s is a known facility status.
func ValidFacilityStatus(s FacilityStatus) bool {
	switch s {
	case FacilityStatusIdle, FacilityStatusTraining, FacilityStatusBreeding, FacilityStatusMaintenance:
		return true
	}
	return false
}

// SaveDocument is the complete snapshot of game progress at a point in time.
// Every reference field (e.g., an expedition's trainer id) must resolve to
// an entity present in the same document.
type SaveDocument struct {
	Version     Version       `json:"version"`
	Player      PlayerProfile `json:"player"`
	Monsters    []Monster     `json:"monsters"`
	Trainers    []Trainer     `json:"trainers"`
	Facilities  []Facility    `json:"facilities"`
	Expeditions []Expedition  `json:"expeditions"`
	Ledger      []Transaction `json:"ledger"`
	Progression Progression   `json:"progression"`
	SavedAt     time.Time     `json:"saved_at"`
}

// PlayerProfile holds player identity and top-level progress.
type PlayerProfile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Currency int64  `json:"currency"`
	Level    int    `json:"level"`
}

// StatBlock holds a monster's effective combat stats.
type StatBlock struct {
	HP      int `json:"hp"`
	Attack  int `json:"attack"`
	Defense int `json:"defense"`
	Speed   int `json:"speed"`
}

// IVBlock holds a monster's individual values, fixed at capture time.
type IVBlock struct {
	HP      int `json:"hp"`
	Attack  int `json:"attack"`
	Defense int `json:"defense"`
	Speed   int `json:"speed"`
}

// Monster is a single captured monster instance in the player's roster.
type Monster struct {
	ID        string    `json:"id"`
	SpeciesID string    `json:"species_id"`
	Nickname  string    `json:"nickname,omitempty"`
	Level     int       `json:"level"`
	Stats     StatBlock `json:"stats"`
	IVs       IVBlock   `json:"ivs"`
}

// Trainer is a hired ranch trainer.
type Trainer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Skill int    `json:"skill"`
}

// Facility is a ranch building monsters are assigned to.
type Facility struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Status FacilityStatus `json:"status"`
}

// Expedition is an in-progress field assignment. TrainerID and FacilityID
// reference entities stored in the same document.
type Expedition struct {
	ID         string    `json:"id"`
	TrainerID  string    `json:"trainer_id"`
	FacilityID string    `json:"facility_id"`
	StartedAt  time.Time `json:"started_at"`
}

// Transaction is a single entry in the currency ledger. Amount is positive
// for income and negative for spending.
type Transaction struct {
	ID     string    `json:"id"`
	Amount int64     `json:"amount"`
	Reason string    `json:"reason"`
	At     time.Time `json:"at"`
}

// Progression groups the secondary progression blocks.
type Progression struct {
	Research     []ResearchEntry `json:"research"`
	Achievements []string        `json:"achievements"`
	Events       []EventRecord   `json:"events"`
	Statistics   Statistics      `json:"statistics"`
}

// ResearchEntry tracks progress on one research topic.
type ResearchEntry struct {
	Topic    string `json:"topic"`
	Progress int    `json:"progress"`
}

// EventRecord is a completed seasonal event.
type EventRecord struct {
	Name        string    `json:"name"`
	CompletedAt time.Time `json:"completed_at"`
}

// Statistics holds derived lifetime counters.
type Statistics struct {
	TotalSaves      int   `json:"total_saves"`
	MonstersCaught  int   `json:"monsters_caught"`
	CurrencyEarned  int64 `json:"currency_earned"`
	ExpeditionsSent int   `json:"expeditions_sent"`
}

// LedgerBalance derives the expected currency balance from the starting
// balance plus every ledger entry.
func (d SaveDocument) LedgerBalance(startingBalance int64) int64 {
	balance := startingBalance
	for _, tx := range d.Ledger {
		balance += tx.Amount
	}
	return balance
}

// Trainer returns the trainer with the given id, if present.
func (d SaveDocument) Trainer(id string) (Trainer, bool) {
	for _, trainer := range d.Trainers {
		if trainer.ID == id {
			return trainer, true
		}
	}
	return Trainer{}, false
}

// Facility returns the facility with the given id, if present.
func (d SaveDocument) Facility(id string) (Facility, bool) {
	for _, facility := range d.Facilities {
		if facility.ID == id {
			return facility, true
		}
	}
	return Facility{}, false
}
