package framework

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Runner is the run context: it loads a suite document, owns the constructed
// suite, the template environment, the reporter, and the per-step debug logger.
// One Runner corresponds to one execution of one suite; nothing persists across
// runs.
type Runner struct {
	suite      *TestSuite
	reporter   Reporter
	env        map[string]string
	caseFilter CaseFilter

	stepLogger *CapturingLogger
	loggerLock sync.Mutex
}

// NewRunnerFromFile loads a suite document from a YAML or JSON file. Any schema
// violation or unknown service/step type in the document fails the load with an
// InvalidConfigError.
func NewRunnerFromFile(path string, reporter Reporter) (*Runner, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewRunner(filepath.Base(path), data, reporter)
}

// NewRunner loads a suite document from bytes.
func NewRunner(name string, data []byte, reporter Reporter) (*Runner, error) {
	if reporter == nil {
		reporter = NullReporter()
	}
	r := &Runner{
		reporter: reporter,
		env:      environMap(),
	}
	doc, err := parseSuiteDocument(data)
	if err != nil {
		return nil, err
	}
	suite, err := newTestSuite(r, name, doc)
	if err != nil {
		return nil, err
	}
	r.suite = suite
	return r, nil
}

func environMap() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if i := strings.IndexByte(kv, '='); i > 0 {
			env[kv[:i]] = kv[i+1:]
		}
	}
	return env
}

// Suite returns the loaded suite.
func (r *Runner) Suite() *TestSuite { return r.suite }

// Reporter returns the reporter steps send their progress to.
func (r *Runner) Reporter() Reporter { return r.reporter }

// Service resolves a named service of the suite.
func (r *Runner) Service(name string) (Service, error) {
	return r.suite.Service(name)
}

// StepByID resolves a step id in the currently executing case.
func (r *Runner) StepByID(id string) (Step, error) {
	current := r.suite.CurrentCase()
	if current == nil {
		return nil, NewInvalidConfigError("step reference %q outside of a running case", id)
	}
	return current.Step(id)
}

// SetCaseFilter restricts Execute to the cases the filter accepts.
func (r *Runner) SetCaseFilter(f CaseFilter) {
	r.caseFilter = f
}

// Execute runs the suite. The returned error is non-nil only for run-fatal
// conditions (a service failing to set up or reset); ordinary case failures are
// in the result.
func (r *Runner) Execute() (SuiteResult, error) {
	return r.suite.Run(r.reporter, r.caseFilter)
}

// TemplateContext builds the immutable context for evaluating template
// expressions at this moment of the run: the process environment plus the
// suite-scoped variables, shadowed by the current case's variables.
func (r *Runner) TemplateContext() *TemplateContext {
	vars := make(map[string]interface{}, len(r.suite.vars))
	for k, v := range r.suite.vars {
		vars[k] = v
	}
	if current := r.suite.CurrentCase(); current != nil {
		for k, v := range current.vars {
			vars[k] = v
		}
	}
	return &TemplateContext{Env: r.env, Vars: vars}
}

// EvalString evaluates a config value to a string with the current context.
func (r *Runner) EvalString(v interface{}) (string, error) {
	return EvalString(v, r.TemplateContext())
}

// EvalInt evaluates a config value to an integer with the current context.
func (r *Runner) EvalInt(v interface{}) (int, error) {
	return EvalInt(v, r.TemplateContext())
}

// EvalBool evaluates a config value to a boolean with the current context.
func (r *Runner) EvalBool(v interface{}) (bool, error) {
	return EvalBool(v, r.TemplateContext())
}

// SetSuiteVariable writes a suite-scoped variable.
func (r *Runner) SetSuiteVariable(name string, value interface{}) {
	r.suite.SetVariable(name, value)
}

// SetCaseVariable writes a variable scoped to the currently executing case.
func (r *Runner) SetCaseVariable(name string, value interface{}) error {
	current := r.suite.CurrentCase()
	if current == nil {
		return NewInvalidConfigError("cannot set case variable %q outside of a running case", name)
	}
	current.SetVariable(name, value)
	return nil
}

// beginStepCapture installs a fresh capturing logger for the step about to run
// and returns it. Background callbacks that outlive their step log to whichever
// logger is current.
func (r *Runner) beginStepCapture() *CapturingLogger {
	logger := &CapturingLogger{}
	r.loggerLock.Lock()
	r.stepLogger = logger
	r.loggerLock.Unlock()
	return logger
}

// Debugf writes debug output attributed to the currently executing step. Safe to
// call from background callbacks.
func (r *Runner) Debugf(format string, args ...interface{}) {
	r.loggerLock.Lock()
	logger := r.stepLogger
	r.loggerLock.Unlock()
	if logger != nil {
		logger.Printf(format, args...)
	}
}
