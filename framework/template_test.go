package framework

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func templateContext() *TemplateContext {
	return &TemplateContext{
		Env:  map[string]string{"BROKER_HOST": "broker.local"},
		Vars: map[string]interface{}{"deviceId": "alpha", "port": 1883},
	}
}

func TestEvalTemplateStringPassesPlainStringsThrough(t *testing.T) {
	out, err := EvalTemplateString("no markers here", templateContext())
	require.NoError(t, err)
	assert.Equal(t, "no markers here", out)
}

func TestEvalTemplateStringExpandsEnvAndVars(t *testing.T) {
	out, err := EvalTemplateString("{{.Env.BROKER_HOST}}:{{.Vars.port}}", templateContext())
	require.NoError(t, err)
	assert.Equal(t, "broker.local:1883", out)

	out, err = EvalTemplateString("devices/{{.Vars.deviceId}}/state", templateContext())
	require.NoError(t, err)
	assert.Equal(t, "devices/alpha/state", out)
}

func TestEvalTemplateStringFailsOnMissingKey(t *testing.T) {
	_, err := EvalTemplateString("{{.Vars.nope}}", templateContext())
	var invalid *InvalidConfigError
	require.ErrorAs(t, err, &invalid)
}

func TestEvalTemplateStringFailsOnBadSyntax(t *testing.T) {
	_, err := EvalTemplateString("{{.Vars.deviceId", templateContext())
	var invalid *InvalidConfigError
	require.ErrorAs(t, err, &invalid)
}

func TestEvalTemplateValueOnlyTemplatesStrings(t *testing.T) {
	out, err := EvalTemplateValue(float64(3), templateContext())
	require.NoError(t, err)
	assert.Equal(t, float64(3), out)

	out, err = EvalTemplateValue("{{.Vars.deviceId}}", templateContext())
	require.NoError(t, err)
	assert.Equal(t, "alpha", out)
}

func TestEvalTemplateDeepWalksMapsAndSlices(t *testing.T) {
	payload := map[string]interface{}{
		"deviceId": "{{.Vars.deviceId}}",
		"tags":     []interface{}{"{{.Env.BROKER_HOST}}", "static"},
		"count":    float64(3),
	}
	out, err := EvalTemplateDeep(payload, templateContext())
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"deviceId": "alpha",
		"tags":     []interface{}{"broker.local", "static"},
		"count":    float64(3),
	}, out)

	_, err = EvalTemplateDeep(map[string]interface{}{"bad": "{{.Vars.nope}}"}, templateContext())
	assert.Error(t, err)
}

func TestEvalInt(t *testing.T) {
	ctx := templateContext()

	n, err := EvalInt(float64(5), ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = EvalInt("{{.Vars.port}}", ctx)
	require.NoError(t, err)
	assert.Equal(t, 1883, n)

	_, err = EvalInt("{{.Vars.deviceId}}", ctx)
	assert.Error(t, err)

	_, err = EvalInt(true, ctx)
	assert.Error(t, err)
}

func TestEvalBool(t *testing.T) {
	ctx := templateContext()

	b, err := EvalBool(true, ctx)
	require.NoError(t, err)
	assert.True(t, b)

	b, err = EvalBool("false", ctx)
	require.NoError(t, err)
	assert.False(t, b)

	_, err = EvalBool("maybe", ctx)
	assert.Error(t, err)
}

func TestEvalString(t *testing.T) {
	ctx := templateContext()

	s, err := EvalString("{{.Env.BROKER_HOST}}", ctx)
	require.NoError(t, err)
	assert.Equal(t, "broker.local", s)

	s, err = EvalString(float64(8080), ctx)
	require.NoError(t, err)
	assert.Equal(t, "8080", s)

	s, err = EvalString(true, ctx)
	require.NoError(t, err)
	assert.Equal(t, "true", s)
}
