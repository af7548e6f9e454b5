package framework

import (
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Config is the immutable, schema-validated configuration document attached to a
// configurable object at construction time. Values use JSON's Go representation:
// map[string]interface{}, []interface{}, float64, bool, string, nil.
type Config map[string]interface{}

// Has reports whether the key is present at the top level of the config.
func (c Config) Has(key string) bool {
	_, ok := c[key]
	return ok
}

// String returns the string at key, or the default if the key is absent or not a
// string.
func (c Config) String(key, def string) string {
	if s, ok := c[key].(string); ok {
		return s
	}
	return def
}

// Int returns the integer at key, or the default if the key is absent or not a
// number.
func (c Config) Int(key string, def int) int {
	switch n := c[key].(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return def
}

// Float returns the number at key, or the default if the key is absent or not a
// number.
func (c Config) Float(key string, def float64) float64 {
	switch n := c[key].(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return def
}

// Bool returns the boolean at key, or the default if the key is absent or not a
// boolean.
func (c Config) Bool(key string, def bool) bool {
	if b, ok := c[key].(bool); ok {
		return b
	}
	return def
}

// Map returns the nested object at key, or nil if the key is absent or not an
// object. A nil Config is safe to query.
func (c Config) Map(key string) Config {
	if m, ok := c[key].(map[string]interface{}); ok {
		return Config(m)
	}
	return nil
}

// Slice returns the array at key, or nil.
func (c Config) Slice(key string) []interface{} {
	if s, ok := c[key].([]interface{}); ok {
		return s
	}
	return nil
}

// Value returns the value at key as an ldvalue.Value, which is ldvalue.Null()
// when the key is absent.
func (c Config) Value(key string) ldvalue.Value {
	v, ok := c[key]
	if !ok {
		return ldvalue.Null()
	}
	return ldvalue.CopyArbitraryValue(v)
}

// Raw returns the config's underlying document for schema validation.
func (c Config) Raw() map[string]interface{} {
	return map[string]interface{}(c)
}
