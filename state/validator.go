package state

import (
	_ "embed"

	"github.com/kaptinlin/jsonschema"
)

//go:embed schema.json
var rawSchema []byte

func ValidateState(stateBytes []byte) []error {
	return Validate(rawSchema, stateBytes)
}

// Validate checks a JSON document against a JSON schema.
func Validate(schemaBytes []byte, data []byte) []error {
	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile(schemaBytes)
	if err != nil {
		return []error{err}
	}

	var errors []error
	result := schema.Validate(data)
	if !result.IsValid() {
		for _, err := range result.Errors {
			errors = append(errors, err)
		}
	}
	return errors
}
