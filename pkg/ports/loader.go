package ports

import (
	"context"

	"github.com/aretw0/genie/pkg/domain"
)

// ScriptLoader defines how the engine retrieves the dialogue definition.
// This allows the storage layer (File, Loam, Memory) to be decoupled.
type ScriptLoader interface {
	// Load returns the raw, unvalidated script. Structural validation is the
	// responsibility of the script store; loaders only report decoding failures.
	Load(ctx context.Context) (domain.Script, error)
}
