package framework

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema is a JSON Schema document in its unmarshaled Go form: maps, slices,
// strings, numbers, booleans. The boolean schema true accepts every document and
// contributes nothing when schemas are merged.
type Schema interface{}

// TrueSchema accepts everything.
var TrueSchema Schema = true

// MergeSchemas combines schemas conjunctively into a single allOf schema.
// Schemas equal to true are skipped; if nothing remains, the result is TrueSchema.
// The merge is order-independent with respect to the accept/reject verdict.
func MergeSchemas(schemas ...Schema) Schema {
	var allOf []interface{}
	for _, s := range schemas {
		if s == nil {
			continue
		}
		if b, ok := s.(bool); ok && b {
			continue
		}
		allOf = append(allOf, s)
	}
	if len(allOf) == 0 {
		return TrueSchema
	}
	return map[string]interface{}{"allOf": allOf}
}

// ValidateSchema checks a value against a JSON Schema and returns a non-nil error
// describing the first violation if the value does not conform.
func ValidateSchema(schema Schema, value interface{}) error {
	if b, ok := schema.(bool); ok {
		if b {
			return nil
		}
		return fmt.Errorf("schema accepts nothing")
	}
	schemaDoc, err := canonicalJSON(schema)
	if err != nil {
		return fmt.Errorf("malformed schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("inline://schema", schemaDoc); err != nil {
		return fmt.Errorf("malformed schema: %w", err)
	}
	compiled, err := compiler.Compile("inline://schema")
	if err != nil {
		return fmt.Errorf("malformed schema: %w", err)
	}
	instance, err := canonicalJSON(value)
	if err != nil {
		return err
	}
	return compiled.Validate(instance)
}

// canonicalJSON round-trips a value through JSON so that the validator sees the
// exact number and key representations it expects, regardless of whether the
// value came from YAML decoding or from a Go literal.
func canonicalJSON(v interface{}) (interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(data))
}
