package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Save holds the tunables of the save-game persistence layer. Values come
// from the environment (LoadSave) or a YAML file (LoadSaveFile); embedding
// applications may also construct one directly.
type Save struct {
	// Namespace prefixes every store key.
	Namespace string `env:"MONSTERKEEP_SAVE_NAMESPACE" envDefault:"monsterkeep" yaml:"namespace"`
	// MaxSlots is the number of fixed save slots, indexed 1..MaxSlots.
	MaxSlots int `env:"MONSTERKEEP_SAVE_MAX_SLOTS" envDefault:"3" yaml:"max_slots"`
	// MaxBackups bounds the rotating backup chain per slot.
	MaxBackups int `env:"MONSTERKEEP_SAVE_MAX_BACKUPS" envDefault:"3" yaml:"max_backups"`
	// Compaction enables the reversible compaction pass on encoded saves.
	Compaction bool `env:"MONSTERKEEP_SAVE_COMPACTION" envDefault:"true" yaml:"compaction"`
	// LedgerTolerance bounds the allowed drift between the reported balance
	// and the ledger-derived balance.
	LedgerTolerance int64 `env:"MONSTERKEEP_SAVE_LEDGER_TOLERANCE" envDefault:"1000" yaml:"ledger_tolerance"`
	// StartingBalance is the balance assumed before the first ledger entry.
	StartingBalance int64 `env:"MONSTERKEEP_SAVE_STARTING_BALANCE" envDefault:"1000" yaml:"starting_balance"`
	// MonsterLevelMin and MonsterLevelMax bound monster levels for the
	// integrity checks.
	MonsterLevelMin int `env:"MONSTERKEEP_SAVE_MONSTER_LEVEL_MIN" envDefault:"1" yaml:"monster_level_min"`
	MonsterLevelMax int `env:"MONSTERKEEP_SAVE_MONSTER_LEVEL_MAX" envDefault:"100" yaml:"monster_level_max"`
	// AutosaveInterval is the period of the autosave ticker.
	AutosaveInterval time.Duration `env:"MONSTERKEEP_SAVE_AUTOSAVE_INTERVAL" envDefault:"5m" yaml:"autosave_interval"`
	// AutosaveSlot is the slot the autosave ticker writes to.
	AutosaveSlot int `env:"MONSTERKEEP_SAVE_AUTOSAVE_SLOT" envDefault:"1" yaml:"autosave_slot"`
}

// DefaultSave returns the save configuration with every default applied.
func DefaultSave() Save {
	return Save{
		Namespace:        "monsterkeep",
		MaxSlots:         3,
		MaxBackups:       3,
		Compaction:       true,
		LedgerTolerance:  1000,
		StartingBalance:  1000,
		MonsterLevelMin:  1,
		MonsterLevelMax:  100,
		AutosaveInterval: 5 * time.Minute,
		AutosaveSlot:     1,
	}
}

// LoadSave loads the save configuration from environment variables.
func LoadSave() (Save, error) {
	var cfg Save
	if err := ParseEnv(&cfg); err != nil {
		return Save{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Save{}, err
	}
	return cfg, nil
}

// LoadSaveFile loads the save configuration from a YAML file. Fields absent
// from the file keep their defaults.
func LoadSaveFile(path string) (Save, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Save{}, fmt.Errorf("read config file: %w", err)
	}

	cfg := DefaultSave()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Save{}, fmt.Errorf("parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Save{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the save layer cannot operate with.
func (c Save) Validate() error {
	if c.MaxSlots < 1 {
		return fmt.Errorf("max slots must be at least 1, got %d", c.MaxSlots)
	}
	if c.MaxBackups < 1 {
		return fmt.Errorf("max backups must be at least 1, got %d", c.MaxBackups)
	}
	if c.LedgerTolerance < 0 {
		return fmt.Errorf("ledger tolerance must be non-negative, got %d", c.LedgerTolerance)
	}
	if c.MonsterLevelMin < 1 {
		return fmt.Errorf("monster level minimum must be at least 1, got %d", c.MonsterLevelMin)
	}
	if c.MonsterLevelMax < c.MonsterLevelMin {
		return fmt.Errorf("monster level maximum %d below minimum %d", c.MonsterLevelMax, c.MonsterLevelMin)
	}
	if c.AutosaveInterval <= 0 {
		return fmt.Errorf("autosave interval must be positive, got %s", c.AutosaveInterval)
	}
	if c.AutosaveSlot < 1 || c.AutosaveSlot > c.MaxSlots {
		return fmt.Errorf("autosave slot %d outside [1,%d]", c.AutosaveSlot, c.MaxSlots)
	}
	return nil
}
