package framework

// Step is one executable unit of a test case. Steps run strictly sequentially,
// but a step may own long-lived capabilities (content queues) that keep
// receiving data from background callbacks after Run returns, for the remainder
// of the case. Later steps locate a step through its declared id and dispatch on
// its available capabilities.
type Step interface {
	CapabilityOwner
	// ID returns the step's declared id, or "" if it has none.
	ID() string
	// Name returns the step's display name: its id when declared, else the
	// fallback (typically the step's position in the case).
	Name(fallback string) string
	// Run performs the step's action. Any returned error fails the step.
	Run() error
}

// StepBase carries the configurable-object behavior shared by every step
// implementation.
type StepBase struct {
	*ConfigurableObject
	run *Runner
}

// stepGenericSchema is the schema every step config must satisfy regardless of
// kind.
func stepGenericSchema() Schema {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"type": map[string]interface{}{"type": "string"},
			"id":   map[string]interface{}{"type": "string"},
		},
		"required": []interface{}{"type"},
	}
}

// NewStepBase validates the config against the merged capability, object and
// generic step schemas.
func NewStepBase(run *Runner, config Config, objectSchema Schema, capabilities ...Capability) (StepBase, error) {
	obj, err := NewConfigurableObject(config, objectSchema, stepGenericSchema(), capabilities...)
	if err != nil {
		return StepBase{}, err
	}
	return StepBase{ConfigurableObject: obj, run: run}, nil
}

// Runner returns the run context this step belongs to.
func (s *StepBase) Runner() *Runner { return s.run }

// ID returns the step's declared id, or "".
func (s *StepBase) ID() string {
	return s.Config().String("id", "")
}

// Name returns the step's id, or the fallback when no id is declared.
func (s *StepBase) Name(fallback string) string {
	return s.Config().String("id", fallback)
}

// Debugf writes to the debug logger of whichever step is currently executing.
func (s *StepBase) Debugf(format string, args ...interface{}) {
	s.run.Debugf(format, args...)
}
