package framework

// ServiceState tracks a service through its lifecycle:
// Created -> SetUp -> (reset any number of times) -> TornDown.
type ServiceState int

const (
	ServiceCreated ServiceState = iota
	ServiceSetUp
	ServiceTornDown
)

// Service is a long-lived external connection available to every step in a
// suite. Setup is called exactly once per run and may connect; its failure is
// fatal to the whole run. Reset is called after every case, pass or fail, and
// must release per-case registrations (subscriptions, cookies) without breaking
// the connection - once Reset returns, no background callback registered during
// the case may push any further content. Teardown releases the connection and is
// terminal.
//
// Concrete services additionally expose kind-specific publish/request/subscribe
// operations that steps call directly.
type Service interface {
	CapabilityOwner
	Setup() error
	Reset() error
	Teardown() error
	State() ServiceState
}

// ServiceBase carries the configurable-object behavior and lifecycle state
// shared by every service implementation.
type ServiceBase struct {
	*ConfigurableObject
	run   *Runner
	state ServiceState
}

// serviceGenericSchema is the schema every service config must satisfy
// regardless of kind.
func serviceGenericSchema() Schema {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"type": map[string]interface{}{"type": "string"},
		},
		"required": []interface{}{"type"},
	}
}

// NewServiceBase validates the config against the merged capability, object and
// generic service schemas.
func NewServiceBase(run *Runner, config Config, objectSchema Schema, capabilities ...Capability) (ServiceBase, error) {
	obj, err := NewConfigurableObject(config, objectSchema, serviceGenericSchema(), capabilities...)
	if err != nil {
		return ServiceBase{}, err
	}
	return ServiceBase{ConfigurableObject: obj, run: run, state: ServiceCreated}, nil
}

// Runner returns the run context this service belongs to.
func (s *ServiceBase) Runner() *Runner { return s.run }

// State returns the current lifecycle state.
func (s *ServiceBase) State() ServiceState { return s.state }

// MarkSetUp records the transition into the SetUp state. Service
// implementations call it at the end of a successful Setup.
func (s *ServiceBase) MarkSetUp() { s.state = ServiceSetUp }

// MarkTornDown records the terminal transition.
func (s *ServiceBase) MarkTornDown() { s.state = ServiceTornDown }
