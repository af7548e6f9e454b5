package framework

// Capability names for the cross-reference facets.
const (
	CapabilityServiceDependency = "ServiceDependency"
	CapabilityFromStep          = "FromStep"
)

// ServiceDependencyCapability lets a step declare which named service of the
// suite it operates on, via the "service" config key.
type ServiceDependencyCapability struct {
	baseCapability
}

// NewServiceDependencyCapability requires the "service" config key.
func NewServiceDependencyCapability(run *Runner, config Config) (*ServiceDependencyCapability, error) {
	fragment := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"service": map[string]interface{}{"type": "string"},
		},
		"required": []interface{}{"service"},
	}
	base, err := newBaseCapability(CapabilityServiceDependency, run, config, fragment)
	if err != nil {
		return nil, err
	}
	return &ServiceDependencyCapability{baseCapability: base}, nil
}

// Service resolves the declared service in the suite. An unknown name is an
// InvalidConfigError.
func (c *ServiceDependencyCapability) Service() (Service, error) {
	return c.run.Service(c.config.String("service", ""))
}

// FromStepCapability lets a step reference another step of the currently
// executing case by its declared id, via the "from" config key, and query the
// referenced step's capabilities.
type FromStepCapability struct {
	baseCapability
}

// NewFromStepCapability requires the "from" config key.
func NewFromStepCapability(run *Runner, config Config) (*FromStepCapability, error) {
	fragment := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"from": map[string]interface{}{"type": "string"},
		},
		"required": []interface{}{"from"},
	}
	base, err := newBaseCapability(CapabilityFromStep, run, config, fragment)
	if err != nil {
		return nil, err
	}
	return &FromStepCapability{baseCapability: base}, nil
}

// Step resolves the referenced step in the currently executing case. An unknown
// id is an InvalidConfigError.
func (c *FromStepCapability) Step() (Step, error) {
	return c.run.StepByID(c.config.String("from", ""))
}
