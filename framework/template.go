package framework

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/template"
)

// TemplateContext is the immutable data made available to template expressions
// in config values. It is built once per evaluation from the run's environment
// and the suite- and case-scoped variable maps (case variables shadow suite
// variables).
type TemplateContext struct {
	Env  map[string]string
	Vars map[string]interface{}
}

// EvalTemplateString evaluates template expressions in s against the context.
// A string without template markers is returned unchanged without invoking the
// template engine.
func EvalTemplateString(s string, ctx *TemplateContext) (string, error) {
	if !strings.Contains(s, "{{") {
		return s, nil
	}
	tmpl, err := template.New("config").Option("missingkey=error").Parse(s)
	if err != nil {
		return "", NewInvalidConfigError("bad template %q: %s", s, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return "", NewInvalidConfigError("template %q: %s", s, err)
	}
	return buf.String(), nil
}

// EvalTemplateValue evaluates template expressions in any config scalar. Strings
// are templated directly; numbers and booleans pass through unchanged (they can
// only carry a template by being written as strings, in which case the result is
// converted back to the scalar kind the caller asked for via EvalInt and
// friends). Other value kinds pass through unchanged.
func EvalTemplateValue(v interface{}, ctx *TemplateContext) (interface{}, error) {
	if s, ok := v.(string); ok {
		return EvalTemplateString(s, ctx)
	}
	return v, nil
}

// EvalTemplateDeep evaluates template expressions in every string nested inside
// maps and slices, returning a copy. Used for JSON payload bodies.
func EvalTemplateDeep(v interface{}, ctx *TemplateContext) (interface{}, error) {
	switch t := v.(type) {
	case string:
		return EvalTemplateString(t, ctx)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, e := range t {
			ev, err := EvalTemplateDeep(e, ctx)
			if err != nil {
				return nil, err
			}
			out[k] = ev
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			ev, err := EvalTemplateDeep(e, ctx)
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil
	}
	return v, nil
}

// EvalInt evaluates a config value that should produce an integer: either a
// number literal or a templated string whose expansion parses as an integer.
func EvalInt(v interface{}, ctx *TemplateContext) (int, error) {
	switch n := v.(type) {
	case float64:
		return int(n), nil
	case int:
		return n, nil
	case string:
		expanded, err := EvalTemplateString(n, ctx)
		if err != nil {
			return 0, err
		}
		i, err := strconv.Atoi(strings.TrimSpace(expanded))
		if err != nil {
			return 0, NewInvalidConfigError("%q does not evaluate to an integer", n)
		}
		return i, nil
	}
	return 0, NewInvalidConfigError("expected an integer, got %v", v)
}

// EvalBool evaluates a config value that should produce a boolean.
func EvalBool(v interface{}, ctx *TemplateContext) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		expanded, err := EvalTemplateString(b, ctx)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(expanded)) {
		case "true", "1":
			return true, nil
		case "false", "0", "":
			return false, nil
		}
		return false, NewInvalidConfigError("%q does not evaluate to a boolean", b)
	}
	return false, NewInvalidConfigError("expected a boolean, got %v", v)
}

// EvalString evaluates a config value that should produce a string; numbers and
// booleans are stringified.
func EvalString(v interface{}, ctx *TemplateContext) (string, error) {
	switch s := v.(type) {
	case string:
		return EvalTemplateString(s, ctx)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(s), nil
	case nil:
		return "", nil
	}
	return "", NewInvalidConfigError("expected a string, got %v", fmt.Sprintf("%T", v))
}
