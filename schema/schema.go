// Package schema provides a concrete river.InputValidator backed by
// JSON Schema, replacing the source's dynamic-object validator with an
// explicit, inspectable contract (§9 design note: "re-architect as: the
// stream definition holds an opaque InputValidator capability").
//
// Grounded on _examples/dagu-org-dagu's executor config schema validation
// (internal/core/executor_schema_test.go), which validates arbitrary
// map[string]any configs against a *jsonschema.Schema the same way.
package schema

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/leonj1/river"
)

// Validator validates input_data against a compiled JSON Schema.
type Validator struct {
	resolved *jsonschema.Resolved
}

// New compiles s and returns a river.InputValidator. It panics if s fails
// to resolve — schemas are stream-definition-time constants, so a bad
// schema is a programming error, not a runtime condition.
func New(s *jsonschema.Schema) *Validator {
	resolved, err := s.Resolve(nil)
	if err != nil {
		panic(fmt.Sprintf("schema: invalid input schema: %v", err))
	}
	return &Validator{resolved: resolved}
}

// Validate implements river.InputValidator.
func (v *Validator) Validate(input map[string]any) (any, *river.Error) {
	if err := v.resolved.Validate(input); err != nil {
		return nil, river.NewError(river.ErrorKindValidation, "input validation failed: "+err.Error()).
			WithDetails(map[string]any{"errors": err.Error()})
	}
	return input, nil
}

var _ river.InputValidator = (*Validator)(nil)
