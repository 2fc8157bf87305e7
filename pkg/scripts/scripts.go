// Package scripts embeds the built-in dialogue definitions.
package scripts

import (
	_ "embed"
	"fmt"

	"github.com/aretw0/genie/pkg/domain"
	"gopkg.in/yaml.v3"
)

//go:embed quality.yaml
var qualityYAML []byte

// QualityRaw returns the YAML source of the quality investigation script.
func QualityRaw() []byte {
	return append([]byte(nil), qualityYAML...)
}

// Quality returns the quality investigation script: a hop degradation
// complaint spike on Batch #992 traced back to Hop Lot #8821.
func Quality() domain.Script {
	var s domain.Script
	if err := yaml.Unmarshal(qualityYAML, &s); err != nil {
		panic(fmt.Sprintf("scripts: embedded quality.yaml is invalid: %v", err))
	}
	return s
}
