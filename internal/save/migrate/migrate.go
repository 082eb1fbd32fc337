// Package migrate brings older save documents to the current schema version
// through an ordered chain of version-range migration steps.
package migrate

import (
	"errors"
	"fmt"
	"sort"

	"github.com/louisbranch/monsterkeep/internal/save/domain"
)

var (
	// ErrNoPath indicates no registered step covers the document's version.
	ErrNoPath = errors.New("no migration path to current schema")
	// ErrTransform indicates a step's transform reported an error.
	ErrTransform = errors.New("migration transform failed")
	// ErrValidation indicates a step's post-validation rejected its output.
	// The whole load aborts; partially migrated data is never persisted.
	ErrValidation = errors.New("migration validation failed")
)

// ValidationError reports which step failed post-validation.
type ValidationError struct {
	From domain.Version
	To   domain.Version
	Err  error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("migration %s -> %s: %v", e.From, e.To, e.Err)
}

// Unwrap exposes ErrValidation for errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Step transforms documents whose version falls within [From, To) up to To.
// Steps are stateless.
type Step struct {
	From         domain.Version
	To           domain.Version
	Description  string
	Transform    func(domain.SaveDocument) (domain.SaveDocument, error)
	PostValidate func(domain.SaveDocument) error
}

// Engine applies migration steps in ascending order until a document reaches
// the target version.
type Engine struct {
	target domain.Version
	steps  []Step
}

// NewEngine creates an engine targeting the given version. Steps are sorted
// by From; when two steps share a From version the one with the lower To is
// applied first.
func NewEngine(target domain.Version, steps []Step) (*Engine, error) {
	if target.IsZero() {
		return nil, fmt.Errorf("migration target version is required")
	}

	ordered := make([]Step, len(steps))
	copy(ordered, steps)
	for _, step := range ordered {
		if step.Transform == nil {
			return nil, fmt.Errorf("migration %s -> %s has no transform", step.From, step.To)
		}
		if !step.From.Less(step.To) {
			return nil, fmt.Errorf("migration %s -> %s does not advance the version", step.From, step.To)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if c := ordered[i].From.Compare(ordered[j].From); c != 0 {
			return c < 0
		}
		return ordered[i].To.Less(ordered[j].To)
	})

	return &Engine{target: target, steps: ordered}, nil
}

// Target returns the version documents are migrated to.
func (e *Engine) Target() domain.Version {
	return e.target
}

// Migrate transforms doc up to the target version. Migration is a no-op when
// the document's version already equals or exceeds the target.
func (e *Engine) Migrate(doc domain.SaveDocument) (domain.SaveDocument, error) {
	for doc.Version.Less(e.target) {
		step, ok := e.next(doc.Version)
		if !ok {
			return domain.SaveDocument{}, fmt.Errorf("%w: document version %s", ErrNoPath, doc.Version)
		}

		migrated, err := step.Transform(doc)
		if err != nil {
			return domain.SaveDocument{}, fmt.Errorf("%w: %s -> %s: %w", ErrTransform, step.From, step.To, err)
		}
		migrated.Version = step.To

		if step.PostValidate != nil {
			if err := step.PostValidate(migrated); err != nil {
				return domain.SaveDocument{}, &ValidationError{From: step.From, To: step.To, Err: err}
			}
		}
		doc = migrated
	}
	return doc, nil
}

// next returns the step to apply at version v: the first step whose From
// matches v exactly, or failing that the first step whose [From, To) range
// contains v (covers off-chain patch versions). Steps that would overshoot
// the target are never chosen.
func (e *Engine) next(v domain.Version) (Step, bool) {
	for _, step := range e.steps {
		if step.From == v && !e.target.Less(step.To) {
			return step, true
		}
	}
	for _, step := range e.steps {
		if v.Less(step.From) || !v.Less(step.To) {
			continue
		}
		if e.target.Less(step.To) {
			continue
		}
		return step, true
	}
	return Step{}, false
}
