package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/jsonc"
)

// documentSchema describes what a storage file must look like for the
// identity fields to be read or written: an object whose telemetry member,
// when present, holds string identity values.
const documentSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "telemetry": {
      "type": "object",
      "properties": {
        "machineId":    {"type": "string"},
        "macMachineId": {"type": "string"},
        "devDeviceId":  {"type": "string"},
        "sqmId":        {"type": "string"}
      }
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("storage.json", strings.NewReader(documentSchema)); err != nil {
			schemaErr = fmt.Errorf("failed to add schema resource: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile("storage.json")
	})
	return schema, schemaErr
}

// SchemaError lists why a document does not have the storage file layout.
type SchemaError struct {
	Path     string
	Problems []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s does not look like a storage file: %s", e.Path, strings.Join(e.Problems, "; "))
}

// Validate checks that data is a storage document. Comments are tolerated.
func Validate(path string, data []byte) error {
	var doc any
	if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
		return &ParseError{Path: path, Err: err}
	}
	s, err := compiledSchema()
	if err != nil {
		return err
	}
	if err := s.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return &SchemaError{Path: path, Problems: collectProblems(verr, nil)}
		}
		return err
	}
	return nil
}

// collectProblems flattens the leaves of a validation error tree.
func collectProblems(err *jsonschema.ValidationError, out []string) []string {
	if len(err.Causes) == 0 {
		loc := err.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		return append(out, loc+": "+err.Message)
	}
	for _, cause := range err.Causes {
		out = collectProblems(cause, out)
	}
	return out
}
