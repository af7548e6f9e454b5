package framework

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The engine tests drive whole suites through fake service and step kinds
// registered below. The fakes record what the engine did to them.

var (
	engineLogLock sync.Mutex
	engineLog     []string
	fakeServices  []*fakeService
)

func resetEngineLog() {
	engineLogLock.Lock()
	engineLog = nil
	fakeServices = nil
	engineLogLock.Unlock()
}

func logEngineEvent(format string, args ...interface{}) {
	engineLogLock.Lock()
	engineLog = append(engineLog, fmt.Sprintf(format, args...))
	engineLogLock.Unlock()
}

func engineEvents() []string {
	engineLogLock.Lock()
	defer engineLogLock.Unlock()
	return append([]string(nil), engineLog...)
}

type fakeService struct {
	ServiceBase
	setups    int
	resets    int
	teardowns int
}

func newFakeService(run *Runner, config Config) (Service, error) {
	base, err := NewServiceBase(run, config, TrueSchema)
	if err != nil {
		return nil, err
	}
	s := &fakeService{ServiceBase: base}
	engineLogLock.Lock()
	fakeServices = append(fakeServices, s)
	engineLogLock.Unlock()
	return s, nil
}

func (s *fakeService) Setup() error {
	s.setups++
	if s.Config().Bool("failSetup", false) {
		return fmt.Errorf("deliberate setup failure")
	}
	s.MarkSetUp()
	return nil
}

func (s *fakeService) Reset() error {
	s.resets++
	if s.Config().Bool("failReset", false) {
		return fmt.Errorf("deliberate reset failure")
	}
	return nil
}

func (s *fakeService) Teardown() error {
	s.teardowns++
	s.MarkTornDown()
	return nil
}

type fakeActionStep struct {
	StepBase
}

func newFakeActionStep(run *Runner, config Config) (Step, error) {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"label": map[string]interface{}{"type": "string"},
			"fail":  map[string]interface{}{"type": "boolean"},
			"panic": map[string]interface{}{"type": "boolean"},
		},
		"required": []interface{}{"label"},
	}
	base, err := NewStepBase(run, config, schema)
	if err != nil {
		return nil, err
	}
	return &fakeActionStep{StepBase: base}, nil
}

func (s *fakeActionStep) Run() error {
	label := s.Config().String("label", "")
	logEngineEvent("ran %s", label)
	if s.Config().Bool("panic", false) {
		panic("deliberate panic in " + label)
	}
	if s.Config().Bool("fail", false) {
		return fmt.Errorf("deliberate failure in %s", label)
	}
	return nil
}

func init() {
	RegisterService("fakeService", newFakeService)
	RegisterStep("act", newFakeActionStep)
}

func runEngineSuite(t *testing.T, document string) (SuiteResult, error) {
	resetEngineLog()
	runner, err := NewRunner("engine test", []byte(document), nil)
	require.NoError(t, err)
	return runner.Execute()
}

func actionStep(label string, extra string) string {
	s := fmt.Sprintf(`      - type: act
        label: %s
`, label)
	if extra != "" {
		s += fmt.Sprintf("        %s\n", extra)
	}
	return s
}

func TestSuitePassesWhenEveryStepPasses(t *testing.T) {
	result, err := runEngineSuite(t, `
services:
  svc:
    type: fakeService
testCases:
  happy path:
    steps:
`+actionStep("one", "")+actionStep("two", ""))
	require.NoError(t, err)
	assert.True(t, result.OK())
	assert.Equal(t, []string{"ran one", "ran two"}, engineEvents())
}

func TestStepFailureSkipsRestOfPhaseButRunsTeardown(t *testing.T) {
	result, err := runEngineSuite(t, `
services:
  svc:
    type: fakeService
testCases:
  failing case:
    steps:
`+actionStep("first", "fail: true")+actionStep("second", "")+`    teardownSteps:
`+actionStep("cleanup", ""))
	require.NoError(t, err)
	assert.False(t, result.OK())
	assert.Equal(t, []string{"ran first", "ran cleanup"}, engineEvents())

	require.Len(t, result.Cases, 1)
	steps := result.Cases[0].Steps
	require.Len(t, steps, 3)
	assert.Equal(t, StepFailed, steps[0].State)
	assert.Equal(t, StepConstructed, steps[1].State)
	assert.Equal(t, StepPassed, steps[2].State)
	assert.Equal(t, PhaseTeardown, steps[2].Phase)
}

func TestSetupFailureSkipsBodyButRunsTeardown(t *testing.T) {
	result, err := runEngineSuite(t, `
services:
  svc:
    type: fakeService
testCases:
  broken setup:
    setupSteps:
`+actionStep("setup", "fail: true")+`    steps:
`+actionStep("body", "")+`    teardownSteps:
`+actionStep("cleanup", ""))
	require.NoError(t, err)
	assert.False(t, result.OK())
	assert.Equal(t, []string{"ran setup", "ran cleanup"}, engineEvents())
}

func TestPanicInStepBecomesStepFailure(t *testing.T) {
	result, err := runEngineSuite(t, `
services:
  svc:
    type: fakeService
testCases:
  panicky:
    steps:
`+actionStep("boom", "panic: true")+actionStep("after", ""))
	require.NoError(t, err)
	assert.False(t, result.OK())
	assert.Equal(t, []string{"ran boom"}, engineEvents())

	steps := result.Cases[0].Steps
	require.Len(t, steps, 2)
	assert.Equal(t, StepFailed, steps[0].State)
	assert.Contains(t, steps[0].Err.Error(), "panic")
}

func TestCaseFailureDoesNotStopLaterCases(t *testing.T) {
	result, err := runEngineSuite(t, `
services:
  svc:
    type: fakeService
testCases:
  fails:
    steps:
`+actionStep("bad", "fail: true")+`  still runs:
    steps:
`+actionStep("good", ""))
	require.NoError(t, err)
	assert.False(t, result.OK())
	require.Len(t, result.Cases, 2)
	assert.False(t, result.Cases[0].OK())
	assert.True(t, result.Cases[1].OK())
	assert.Equal(t, []string{"ran bad", "ran good"}, engineEvents())
	assert.Equal(t, []string{"fails"}, result.FailedCases())
}

func TestServicesResetAfterEveryCaseAndTornDownAtEnd(t *testing.T) {
	_, err := runEngineSuite(t, `
services:
  svc:
    type: fakeService
testCases:
  one:
    steps:
`+actionStep("a", "")+`  two:
    steps:
`+actionStep("b", "fail: true"))
	require.NoError(t, err)

	require.Len(t, fakeServices, 1)
	svc := fakeServices[0]
	assert.Equal(t, 1, svc.setups)
	assert.Equal(t, 2, svc.resets, "reset must run after failed cases too")
	assert.Equal(t, 1, svc.teardowns)
	assert.Equal(t, ServiceTornDown, svc.State())
}

func TestServiceSetupFailureIsFatal(t *testing.T) {
	_, err := runEngineSuite(t, `
services:
  svc:
    type: fakeService
    failSetup: true
testCases:
  never runs:
    steps:
`+actionStep("a", ""))
	require.Error(t, err)
	assert.Empty(t, engineEvents())
}

func TestServiceResetFailureIsFatal(t *testing.T) {
	_, err := runEngineSuite(t, `
services:
  svc:
    type: fakeService
    failReset: true
testCases:
  one:
    steps:
`+actionStep("a", "")+`  two:
    steps:
`+actionStep("b", ""))
	require.Error(t, err)
	assert.Equal(t, []string{"ran a"}, engineEvents())

	// The started service is still torn down on the way out.
	require.Len(t, fakeServices, 1)
	assert.Equal(t, 1, fakeServices[0].teardowns)
}

func TestCaseFilterSkipsCases(t *testing.T) {
	resetEngineLog()
	runner, err := NewRunner("engine test", []byte(`
services:
  svc:
    type: fakeService
testCases:
  wanted:
    steps:
`+actionStep("wanted step", "")+`  unwanted:
    steps:
`+actionStep("unwanted step", "")), nil)
	require.NoError(t, err)

	var filters RegexFilters
	require.NoError(t, filters.MustMatch.Set("^wanted$"))
	runner.SetCaseFilter(filters.AsFilter)

	result, err := runner.Execute()
	require.NoError(t, err)
	require.Len(t, result.Cases, 1)
	assert.Equal(t, "wanted", result.Cases[0].Name)
	assert.Equal(t, []string{"ran wanted step"}, engineEvents())
}

func TestUnknownStepTypeFailsLoad(t *testing.T) {
	_, err := NewRunner("engine test", []byte(`
services: {}
testCases:
  bad:
    steps:
      - type: noSuchStep
`), nil)
	var invalid *InvalidConfigError
	require.ErrorAs(t, err, &invalid)
}

func TestUnknownServiceTypeFailsLoad(t *testing.T) {
	_, err := NewRunner("engine test", []byte(`
services:
  svc:
    type: noSuchService
testCases: {}
`), nil)
	var invalid *InvalidConfigError
	require.ErrorAs(t, err, &invalid)
}

func TestStepConfigViolatingSchemaFailsLoad(t *testing.T) {
	// The act step requires a label.
	_, err := NewRunner("engine test", []byte(`
services: {}
testCases:
  bad:
    steps:
      - type: act
`), nil)
	var invalid *InvalidConfigError
	require.ErrorAs(t, err, &invalid)
}

func TestDuplicateStepIDLastRegistrationWins(t *testing.T) {
	resetEngineLog()
	runner, err := NewRunner("engine test", []byte(`
services: {}
testCases:
  dups:
    steps:
      - type: act
        id: shared
        label: first
      - type: act
        id: shared
        label: second
`), nil)
	require.NoError(t, err)

	testCase := runner.Suite().cases[0]
	step, err := testCase.Step("shared")
	require.NoError(t, err)
	assert.Equal(t, "second", step.(*fakeActionStep).Config().String("label", ""))
}

func TestStepByIDOutsideRunningCaseFails(t *testing.T) {
	runner, err := NewRunner("engine test", []byte(`
services: {}
testCases: {}
`), nil)
	require.NoError(t, err)

	_, err = runner.StepByID("anything")
	var invalid *InvalidConfigError
	require.ErrorAs(t, err, &invalid)
}
