package memory

import (
	"context"

	"github.com/aretw0/genie/pkg/domain"
)

// Loader implements ports.ScriptLoader over a script held in memory.
type Loader struct {
	script domain.Script
}

// NewLoader creates a Loader serving a copy of the given script.
func NewLoader(s domain.Script) *Loader {
	return &Loader{script: s.Clone()}
}

// NewFromSteps builds a script from steps, starting at the first one.
// This improves DX for tests.
func NewFromSteps(steps ...domain.Step) *Loader {
	s := domain.Script{Steps: steps}
	if len(steps) > 0 {
		s.Initial = steps[0].ID
	}
	return NewLoader(s)
}

// Load returns a copy so callers can never mutate the loader's script.
func (l *Loader) Load(ctx context.Context) (domain.Script, error) {
	if err := ctx.Err(); err != nil {
		return domain.Script{}, err
	}
	return l.script.Clone(), nil
}
