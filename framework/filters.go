package framework

import (
	"encoding/json"
)

// Capability names for the filtering and expectation facets.
const (
	CapabilitySchemaFilter      = "SchemaFilter"
	CapabilityPropertyFilter    = "PropertyFilter"
	CapabilitySchemaExpectation = "SchemaExpectation"
)

func filterFragmentSchema() Schema {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"filter": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"json_schema": map[string]interface{}{"type": "object"},
					"properties": map[string]interface{}{
						"type":                 "object",
						"additionalProperties": map[string]interface{}{"type": "string"},
					},
				},
			},
		},
	}
}

// SchemaFilterCapability decides, on the producer side, whether an inbound raw
// payload should be captured. A payload is accepted only if it parses as JSON
// and validates against the configured filter schema. Rejection is always
// silent: rejected payloads are never enqueued and never reported as errors.
type SchemaFilterCapability struct {
	baseCapability
	schema Schema // nil when no filter schema is configured
}

// NewSchemaFilterCapability reads the optional filter.json_schema config key.
func NewSchemaFilterCapability(run *Runner, config Config) (*SchemaFilterCapability, error) {
	base, err := newBaseCapability(CapabilitySchemaFilter, run, config, filterFragmentSchema())
	if err != nil {
		return nil, err
	}
	c := &SchemaFilterCapability{baseCapability: base}
	if filter := config.Map("filter"); filter.Has("json_schema") {
		c.schema = filter["json_schema"]
	}
	return c, nil
}

// Accept reports whether the raw payload passes the filter. With no filter
// schema configured every payload is accepted. The verdict is deterministic for
// a given payload.
func (c *SchemaFilterCapability) Accept(payload []byte) bool {
	if c.schema == nil {
		return true
	}
	var value interface{}
	if err := json.Unmarshal(payload, &value); err != nil {
		return false
	}
	return ValidateSchema(c.schema, value) == nil
}

// PropertyFilterCapability decides, on the producer side, whether an inbound
// item's metadata matches the configured expected values. Any mismatch rejects
// silently.
type PropertyFilterCapability struct {
	baseCapability
	expected map[string]string // nil when no property filter is configured
}

// NewPropertyFilterCapability reads the optional filter.properties config key.
func NewPropertyFilterCapability(run *Runner, config Config) (*PropertyFilterCapability, error) {
	base, err := newBaseCapability(CapabilityPropertyFilter, run, config, filterFragmentSchema())
	if err != nil {
		return nil, err
	}
	c := &PropertyFilterCapability{baseCapability: base}
	if filter := config.Map("filter"); filter.Has("properties") {
		expected := make(map[string]string)
		for k, v := range filter.Map("properties") {
			if s, ok := v.(string); ok {
				expected[k] = s
			}
		}
		c.expected = expected
	}
	return c, nil
}

// Match reports whether every configured property equals the corresponding
// metadata field.
func (c *PropertyFilterCapability) Match(metadata map[string]string) bool {
	for k, want := range c.expected {
		if metadata[k] != want {
			return false
		}
	}
	return true
}

// SchemaExpectationCapability checks consumed content against the schema given
// in the expect.json_schema config key. Unlike a filter, a failed expectation is
// an error that fails the step.
type SchemaExpectationCapability struct {
	baseCapability
	schema Schema // nil when no expectation schema is configured
}

// NewSchemaExpectationCapability reads the optional expect.json_schema config key.
func NewSchemaExpectationCapability(run *Runner, config Config) (*SchemaExpectationCapability, error) {
	fragment := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"expect": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"json_schema": map[string]interface{}{"type": "object"},
				},
			},
		},
	}
	base, err := newBaseCapability(CapabilitySchemaExpectation, run, config, fragment)
	if err != nil {
		return nil, err
	}
	c := &SchemaExpectationCapability{baseCapability: base}
	if expect := config.Map("expect"); expect.Has("json_schema") {
		c.schema = expect["json_schema"]
	}
	return c, nil
}

// Check validates the value against the expectation schema, returning an
// ExpectationFailureError on mismatch. Without a configured schema it accepts
// everything.
func (c *SchemaExpectationCapability) Check(value interface{}) error {
	if c.schema == nil {
		return nil
	}
	if err := ValidateSchema(c.schema, value); err != nil {
		return NewExpectationFailureError("content schema", c.schema, err.Error())
	}
	return nil
}
