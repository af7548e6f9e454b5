package framework

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// parsedDocument is a suite document converted to JSON-typed values, plus the
// original key order of the services and testCases mappings. Go maps do not
// preserve document order, and cases must execute in the order the author wrote
// them.
type parsedDocument struct {
	config       Config
	serviceOrder []string
	caseOrder    []string
}

// parseSuiteDocument decodes a YAML (or JSON, which is a YAML subset) suite
// document.
func parseSuiteDocument(data []byte) (parsedDocument, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return parsedDocument{}, NewInvalidConfigError("cannot parse suite document: %s", err)
	}
	normalized, err := jsonNormalize(doc)
	if err != nil {
		return parsedDocument{}, NewInvalidConfigError("cannot normalize suite document: %s", err)
	}
	config, ok := normalized.(map[string]interface{})
	if !ok {
		return parsedDocument{}, NewInvalidConfigError("suite document must be an object")
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return parsedDocument{}, NewInvalidConfigError("cannot parse suite document: %s", err)
	}
	return parsedDocument{
		config:       Config(config),
		serviceOrder: mappingKeys(&root, "services"),
		caseOrder:    mappingKeys(&root, "testCases"),
	}, nil
}

// jsonNormalize round-trips a decoded YAML value through JSON so that the rest
// of the engine only ever sees JSON's Go types (string-keyed maps, float64
// numbers). YAML allows non-string mapping keys, which fail the round trip and
// are rejected here.
func jsonNormalize(v interface{}) (interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("document is not JSON-representable: %w", err)
	}
	var out interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// mappingKeys returns the keys of the named top-level mapping in document order.
func mappingKeys(root *yaml.Node, name string) []string {
	doc := root
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		if doc.Content[i].Value != name {
			continue
		}
		mapping := doc.Content[i+1]
		if mapping.Kind != yaml.MappingNode {
			return nil
		}
		var keys []string
		for j := 0; j+1 < len(mapping.Content); j += 2 {
			keys = append(keys, mapping.Content[j].Value)
		}
		return keys
	}
	return nil
}
