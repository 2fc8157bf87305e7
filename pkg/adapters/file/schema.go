package file

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/aretw0/genie/pkg/domain"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed script.schema.json
var schemaJSON []byte

const schemaName = "script.schema.json"

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// Schema returns the raw JSON Schema every script file must satisfy.
func Schema() []byte {
	return append([]byte(nil), schemaJSON...)
}

func scriptSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaName, bytes.NewReader(schemaJSON)); err != nil {
			compileErr = fmt.Errorf("load schema: %w", err)
			return
		}
		compiled, compileErr = compiler.Compile(schemaName)
	})
	return compiled, compileErr
}

// validateDocument checks a decoded document against the schema.
// The document is normalized through JSON first so YAML scalars match JSON types.
func validateDocument(doc any) error {
	schema, err := scriptSchema()
	if err != nil {
		return err
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("normalize document: %w", err)
	}
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("normalize document: %w", err)
	}

	if err := schema.Validate(payload); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return &domain.ValidationError{Problems: schemaProblems(verr, nil)}
		}
		return err
	}
	return nil
}

// schemaProblems flattens the leaves of the validation error tree.
func schemaProblems(verr *jsonschema.ValidationError, acc []domain.Problem) []domain.Problem {
	if len(verr.Causes) == 0 {
		location := verr.InstanceLocation
		if location == "" {
			location = "/"
		}
		return append(acc, domain.Problem{Reason: fmt.Sprintf("schema: %s: %s", location, verr.Message)})
	}
	for _, cause := range verr.Causes {
		acc = schemaProblems(cause, acc)
	}
	return acc
}
