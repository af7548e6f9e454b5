package framework

// Phase identifies which of a case's three ordered phases a step belongs to.
type Phase string

const (
	PhaseSetup    Phase = "setup"
	PhaseBody     Phase = "body"
	PhaseTeardown Phase = "teardown"
)

// StepState is a step's position in its lifecycle. Every step starts as
// Constructed; the engine moves it to Passed or Failed when it has run. Steps
// skipped because an earlier step in the same phase failed stay Constructed.
type StepState int

const (
	StepConstructed StepState = iota
	StepPassed
	StepFailed
)

func (s StepState) String() string {
	switch s {
	case StepPassed:
		return "passed"
	case StepFailed:
		return "failed"
	}
	return "not run"
}

// StepResult records one step's outcome within a case.
type StepResult struct {
	Name  string
	Phase Phase
	State StepState
	Err   error
}

// CaseResult records one case's outcome. The case passes only if every phase
// completed without failure.
type CaseResult struct {
	Name  string
	Steps []StepResult
}

// OK reports whether the case passed.
func (c CaseResult) OK() bool {
	for _, s := range c.Steps {
		if s.State == StepFailed {
			return false
		}
	}
	return true
}

// SuiteResult records the outcome of a whole run.
type SuiteResult struct {
	Name  string
	Cases []CaseResult
}

// OK reports whether every executed case passed.
func (r SuiteResult) OK() bool {
	for _, c := range r.Cases {
		if !c.OK() {
			return false
		}
	}
	return true
}

// FailedCases returns the names of the cases that failed, in execution order.
func (r SuiteResult) FailedCases() []string {
	var names []string
	for _, c := range r.Cases {
		if !c.OK() {
			names = append(names, c.Name)
		}
	}
	return names
}
