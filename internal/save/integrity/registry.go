// Package integrity runs named semantic validators over decoded save
// documents, applying auto-repairs where a check provides one.
package integrity

import (
	"errors"
	"fmt"

	"github.com/louisbranch/monsterkeep/internal/save/domain"
)

var (
	// ErrCheckExecution indicates a check panicked instead of reporting a
	// violation. It is always recorded as an advisory violation scoped to
	// the failing check.
	ErrCheckExecution = errors.New("integrity check execution failed")
	// ErrDuplicateCheck indicates two checks registered under one name.
	ErrDuplicateCheck = errors.New("integrity check name already registered")
)

// Check is a named, stateless validator over a save document. Checks must be
// commutative: registration order must not change the outcome of RunAll.
type Check struct {
	Name        string
	Description string
	Critical    bool
	Validate    func(domain.SaveDocument) error
	Repair      func(domain.SaveDocument) domain.SaveDocument
}

// Violation records one failing check from a RunAll pass.
type Violation struct {
	Check       string
	Description string
	Critical    bool
	Repaired    bool
	Err         error
}

// Result is the outcome of a RunAll pass. Valid is false only when a
// critical check still fails after repair attempts.
type Result struct {
	Valid      bool
	Violations []Violation
	Repaired   domain.SaveDocument
}

// Registry holds the checks registered at construction time.
type Registry struct {
	checks []Check
	names  map[string]struct{}
}

// NewRegistry creates a registry with the given checks.
func NewRegistry(checks ...Check) (*Registry, error) {
	r := &Registry{names: make(map[string]struct{})}
	for _, check := range checks {
		if err := r.register(check); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) register(check Check) error {
	if check.Name == "" {
		return fmt.Errorf("integrity check name is required")
	}
	if check.Validate == nil {
		return fmt.Errorf("integrity check %s has no validator", check.Name)
	}
	if _, exists := r.names[check.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateCheck, check.Name)
	}
	r.names[check.Name] = struct{}{}
	r.checks = append(r.checks, check)
	return nil
}

// RunAll evaluates every check independently. Failing checks with a repair
// function are repaired and re-validated; checks without one only report. A
// panicking check is isolated and recorded as an advisory violation without
// aborting the remaining checks.
func (r *Registry) RunAll(doc domain.SaveDocument) Result {
	result := Result{Valid: true, Repaired: doc}

	for _, check := range r.checks {
		violations, repaired := runCheck(check, result.Repaired)
		result.Repaired = repaired
		for _, violation := range violations {
			result.Violations = append(result.Violations, violation)
			if violation.Critical && !violation.Repaired {
				result.Valid = false
			}
		}
	}
	return result
}

// runCheck executes one check against doc, applying its repair on failure.
// A panicking repair does not absolve the check: the validation failure is
// kept at its original severity and the execution error is recorded as a
// separate advisory violation.
func runCheck(check Check, doc domain.SaveDocument) ([]Violation, domain.SaveDocument) {
	err, execErr := validateSafely(check, doc)
	if execErr != nil {
		return []Violation{{
			Check:       check.Name,
			Description: check.Description,
			Err:         execErr,
		}}, doc
	}
	if err == nil {
		return nil, doc
	}

	violation := Violation{
		Check:       check.Name,
		Description: check.Description,
		Critical:    check.Critical,
		Err:         err,
	}
	if check.Repair == nil {
		return []Violation{violation}, doc
	}

	fixed, execErr := repairSafely(check, doc)
	if execErr != nil {
		return []Violation{violation, {
			Check:       check.Name,
			Description: check.Description,
			Err:         execErr,
		}}, doc
	}

	if recheck, execErr := validateSafely(check, fixed); execErr == nil && recheck == nil {
		violation.Repaired = true
		return []Violation{violation}, fixed
	}
	return []Violation{violation}, doc
}

// validateSafely isolates panics from a single check.
func validateSafely(check Check, doc domain.SaveDocument) (validationErr, execErr error) {
	defer func() {
		if r := recover(); r != nil {
			execErr = fmt.Errorf("%w: %s: %v", ErrCheckExecution, check.Name, r)
		}
	}()
	return check.Validate(doc), nil
}

// repairSafely isolates panics from a single repair function.
func repairSafely(check Check, doc domain.SaveDocument) (repaired domain.SaveDocument, execErr error) {
	defer func() {
		if r := recover(); r != nil {
			repaired = doc
			execErr = fmt.Errorf("%w: %s repair: %v", ErrCheckExecution, check.Name, r)
		}
	}()
	return check.Repair(doc), nil
}
