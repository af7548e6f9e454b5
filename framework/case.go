package framework

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strconv"
)

// TestCase owns three ordered step lists - setup, body, teardown - plus an index
// of its steps by declared id and a case-scoped variable map. Each phase runs
// strictly sequentially with fail-fast semantics: the first failure in a phase
// aborts the remaining steps of that phase. The teardown phase always runs, even
// after an earlier failure, to guarantee cleanup. The case passes only if every
// phase completed without failure.
type TestCase struct {
	*ConfigurableObject
	run      *Runner
	name     string
	setup    []Step
	body     []Step
	teardown []Step
	byID     map[string]Step
	vars     map[string]interface{}
}

func caseGenericSchema() Schema {
	stepsArray := map[string]interface{}{
		"type":  "array",
		"items": stepGenericSchema(),
	}
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"name":          map[string]interface{}{"type": "string"},
			"setupSteps":    stepsArray,
			"steps":         stepsArray,
			"teardownSteps": stepsArray,
		},
		"required": []interface{}{"steps"},
	}
}

func newTestCase(run *Runner, key string, config Config) (*TestCase, error) {
	obj, err := NewConfigurableObject(config, TrueSchema, caseGenericSchema())
	if err != nil {
		return nil, err
	}
	c := &TestCase{
		ConfigurableObject: obj,
		run:                run,
		name:               config.String("name", key),
		byID:               make(map[string]Step),
		vars:               make(map[string]interface{}),
	}
	if c.setup, err = c.buildSteps(config.Slice("setupSteps")); err != nil {
		return nil, err
	}
	if c.body, err = c.buildSteps(config.Slice("steps")); err != nil {
		return nil, err
	}
	if c.teardown, err = c.buildSteps(config.Slice("teardownSteps")); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *TestCase) buildSteps(configs []interface{}) ([]Step, error) {
	var steps []Step
	for _, raw := range configs {
		stepConfig, ok := raw.(map[string]interface{})
		if !ok {
			return nil, NewInvalidConfigError("step config must be an object, got %v", raw)
		}
		step, err := newStep(c.run, Config(stepConfig))
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
		if id := step.ID(); id != "" {
			// Duplicate ids are not rejected; the last registration wins.
			c.byID[id] = step
		}
	}
	return steps, nil
}

// Name returns the case's display name.
func (c *TestCase) Name() string { return c.name }

// Step resolves a step of this case by its declared id.
func (c *TestCase) Step(id string) (Step, error) {
	step, ok := c.byID[id]
	if !ok {
		return nil, NewInvalidConfigError("no step with id %q in case %q", id, c.name)
	}
	return step, nil
}

// Variable returns a case-scoped variable.
func (c *TestCase) Variable(name string) (interface{}, bool) {
	v, ok := c.vars[name]
	return v, ok
}

// SetVariable writes a case-scoped variable. Only the sequential execution
// goroutine touches the variable map.
func (c *TestCase) SetVariable(name string, value interface{}) {
	c.vars[name] = value
}

// Run executes the case's phases in order and reports each step's progress.
func (c *TestCase) Run(rep Reporter) CaseResult {
	result := CaseResult{Name: c.name}
	setupOK := c.runPhase(rep, PhaseSetup, c.setup, true, &result)
	c.runPhase(rep, PhaseBody, c.body, setupOK, &result)
	c.runPhase(rep, PhaseTeardown, c.teardown, true, &result)
	return result
}

// runPhase runs one phase's steps sequentially. When runnable is false (an
// earlier phase failed), the steps are recorded as not run. Within the phase the
// first failure skips the remaining steps.
func (c *TestCase) runPhase(rep Reporter, phase Phase, steps []Step, runnable bool, result *CaseResult) bool {
	ok := true
	for i, step := range steps {
		name := step.Name(strconv.Itoa(i))
		record := StepResult{Name: name, Phase: phase}
		if !runnable || !ok {
			result.Steps = append(result.Steps, record)
			continue
		}
		rep.StartStep(name)
		logger := c.run.beginStepCapture()
		err := c.runStep(step)
		if out := logger.Output(); len(out) > 0 {
			rep.StepInfo("debug", out)
		}
		if err != nil {
			record.State = StepFailed
			record.Err = err
			title, detail := describeFailure(err)
			rep.StepFailure(title, detail)
			rep.EndStep(false)
			ok = false
		} else {
			record.State = StepPassed
			rep.EndStep(true)
		}
		result.Steps = append(result.Steps, record)
	}
	return ok
}

// runStep converts a panic inside a step into a step failure so that a broken
// step cannot take down the suite.
func (c *TestCase) runStep(step Step) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected panic in step: %+v\n%s", r, string(debug.Stack()))
		}
	}()
	return step.Run()
}

// describeFailure maps an error to the title and structured detail sent to the
// reporter.
func describeFailure(err error) (string, interface{}) {
	var expectation *ExpectationFailureError
	if errors.As(err, &expectation) {
		return "Expectation failed: " + expectation.Title, map[string]interface{}{
			"expected": expectation.Expected,
			"actual":   expectation.Actual,
		}
	}
	var missing *MissingCapabilityError
	if errors.As(err, &missing) {
		return "Missing capability", missing.Capability
	}
	var invalid *InvalidConfigError
	if errors.As(err, &invalid) {
		return "Invalid config", invalid.Detail
	}
	return "Step error", err.Error()
}
