package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/monsterkeep/internal/save/integrity"
)

var (
	// ErrInvalidSlot indicates a slot index outside [1, MaxSlots]. It is
	// returned before any store I/O happens.
	ErrInvalidSlot = errors.New("slot index out of range")
	// ErrSlotEmpty indicates a load from a slot with no save.
	ErrSlotEmpty = errors.New("slot is empty")
	// ErrCorruptedNoBackup indicates the primary failed verification and no
	// backup rank verified either. Terminal; the data is unavailable.
	ErrCorruptedNoBackup = errors.New("save corrupted and no valid backup")
)

// CriticalViolationError reports the critical integrity violations that
// survived repair attempts. Saves abort rather than persist such a document.
type CriticalViolationError struct {
	Violations []integrity.Violation
}

// Error implements the error interface.
func (e *CriticalViolationError) Error() string {
	names := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		if v.Critical && !v.Repaired {
			names = append(names, v.Check)
		}
	}
	return fmt.Sprintf("critical integrity violations: %s", strings.Join(names, ", "))
}
