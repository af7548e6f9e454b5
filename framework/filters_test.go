package framework

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaFilterWithoutSchemaAcceptsEverything(t *testing.T) {
	c, err := NewSchemaFilterCapability(nil, Config{})
	require.NoError(t, err)

	assert.True(t, c.Accept([]byte(`{"any": "thing"}`)))
	assert.True(t, c.Accept([]byte(`"just a string"`)))
}

func TestSchemaFilterAcceptsOnlyMatchingPayloads(t *testing.T) {
	config := Config{
		"filter": map[string]interface{}{
			"json_schema": map[string]interface{}{
				"type":     "object",
				"required": []interface{}{"deviceId"},
			},
		},
	}
	c, err := NewSchemaFilterCapability(nil, config)
	require.NoError(t, err)

	assert.True(t, c.Accept([]byte(`{"deviceId": "alpha"}`)))
	assert.False(t, c.Accept([]byte(`{"other": true}`)))
	assert.False(t, c.Accept([]byte(`not json at all`)))
}

func TestSchemaFilterVerdictIsDeterministic(t *testing.T) {
	config := Config{
		"filter": map[string]interface{}{
			"json_schema": map[string]interface{}{"type": "object"},
		},
	}
	c, err := NewSchemaFilterCapability(nil, config)
	require.NoError(t, err)

	payload := []byte(`{"a": 1}`)
	first := c.Accept(payload)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, c.Accept(payload))
	}
}

func TestPropertyFilterMatchesConfiguredMetadata(t *testing.T) {
	config := Config{
		"filter": map[string]interface{}{
			"properties": map[string]interface{}{"topic": "alerts/high"},
		},
	}
	c, err := NewPropertyFilterCapability(nil, config)
	require.NoError(t, err)

	assert.True(t, c.Match(map[string]string{"topic": "alerts/high", "extra": "ignored"}))
	assert.False(t, c.Match(map[string]string{"topic": "alerts/low"}))
	assert.False(t, c.Match(map[string]string{}))
}

func TestPropertyFilterWithoutConfigMatchesEverything(t *testing.T) {
	c, err := NewPropertyFilterCapability(nil, Config{})
	require.NoError(t, err)
	assert.True(t, c.Match(nil))
	assert.True(t, c.Match(map[string]string{"topic": "whatever"}))
}

func TestSchemaExpectationFailureIsAnError(t *testing.T) {
	config := Config{
		"expect": map[string]interface{}{
			"json_schema": map[string]interface{}{
				"type":     "object",
				"required": []interface{}{"status"},
			},
		},
	}
	c, err := NewSchemaExpectationCapability(nil, config)
	require.NoError(t, err)

	assert.NoError(t, c.Check(map[string]interface{}{"status": "ok"}))

	err = c.Check(map[string]interface{}{})
	var failure *ExpectationFailureError
	require.ErrorAs(t, err, &failure)
}

func TestSchemaExpectationWithoutSchemaAcceptsEverything(t *testing.T) {
	c, err := NewSchemaExpectationCapability(nil, Config{})
	require.NoError(t, err)
	assert.NoError(t, c.Check("anything"))
	assert.NoError(t, c.Check(nil))
}
