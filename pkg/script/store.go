package script

import (
	"context"
	"fmt"

	"github.com/aretw0/genie/pkg/domain"
	"github.com/aretw0/genie/pkg/ports"
)

// Store is the immutable mapping from step identifier to step definition.
type Store struct {
	name    string
	initial string
	order   []string
	steps   map[string]domain.Step
}

// Load validates the definition and builds a Store.
// Every problem found is reported in a single *domain.ValidationError.
func Load(def domain.Script) (*Store, error) {
	if problems := Validate(def); len(problems) > 0 {
		return nil, &domain.ValidationError{Problems: problems}
	}

	s := &Store{
		name:    def.Name,
		initial: def.InitialStepID(),
		order:   make([]string, 0, len(def.Steps)),
		steps:   make(map[string]domain.Step, len(def.Steps)),
	}
	for _, step := range def.Steps {
		s.order = append(s.order, step.ID)
		s.steps[step.ID] = step.Clone()
	}
	return s, nil
}

// LoadFrom fetches the definition through the loader and validates it.
func LoadFrom(ctx context.Context, loader ports.ScriptLoader) (*Store, error) {
	def, err := loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load script: %w", err)
	}
	return Load(def)
}

// Name returns the script name, possibly empty.
func (s *Store) Name() string {
	return s.name
}

// Get returns a copy of the step or a *domain.NotFoundError.
func (s *Store) Get(stepID string) (domain.Step, error) {
	step, ok := s.steps[stepID]
	if !ok {
		return domain.Step{}, &domain.NotFoundError{StepID: stepID}
	}
	return step.Clone(), nil
}

// Initial returns the designated initial step.
func (s *Store) Initial() domain.Step {
	return s.steps[s.initial].Clone()
}

// Steps returns every step in definition order.
func (s *Store) Steps() []domain.Step {
	out := make([]domain.Step, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.steps[id].Clone())
	}
	return out
}

// Actions returns the follow-ups declared by a step.
func (s *Store) Actions(stepID string) ([]domain.Action, error) {
	step, ok := s.steps[stepID]
	if !ok {
		return nil, &domain.NotFoundError{StepID: stepID}
	}
	return append([]domain.Action{}, step.Actions...), nil
}

// Script returns a copy of the whole definition, e.g. for export.
func (s *Store) Script() domain.Script {
	return domain.Script{
		Name:    s.name,
		Initial: s.initial,
		Steps:   s.Steps(),
	}
}
