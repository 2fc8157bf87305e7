package file

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/genie/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.ScriptLoader for a single YAML or JSON file.
type Loader struct {
	Path string
}

// New creates a Loader reading the given file on every Load.
func New(path string) *Loader {
	return &Loader{Path: path}
}

// Load reads, schema-checks and decodes the file.
func (l *Loader) Load(ctx context.Context) (domain.Script, error) {
	if err := ctx.Err(); err != nil {
		return domain.Script{}, err
	}

	data, err := os.ReadFile(l.Path)
	if err != nil {
		return domain.Script{}, fmt.Errorf("failed to read script %s: %w", l.Path, err)
	}

	s, err := Decode(data)
	if err != nil {
		return domain.Script{}, fmt.Errorf("script %s: %w", l.Path, err)
	}
	return s, nil
}

// Decode parses a YAML (or JSON) document into a script.
// Documents violating the schema fail with a *domain.ValidationError.
func Decode(data []byte) (domain.Script, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return domain.Script{}, fmt.Errorf("failed to parse script: %w", err)
	}
	if err := validateDocument(raw); err != nil {
		return domain.Script{}, err
	}

	var s domain.Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return domain.Script{}, fmt.Errorf("failed to decode script: %w", err)
	}
	return s, nil
}
