package framework

// Capability is a named facet attached to a configurable object. A capability may
// contribute a fragment to the owner's configuration schema; fragments from all
// capabilities are merged conjunctively. Capability names are unique within an
// owner, and consumers locate capabilities by name rather than by concrete type.
type Capability interface {
	// Name returns the capability's identifier within its owner.
	Name() string
	// ConfigSchema returns the schema fragment this capability contributes to the
	// owner's configuration, or TrueSchema to contribute nothing.
	ConfigSchema() Schema
}

// baseCapability carries the pieces every capability needs: its name, the run it
// belongs to, its owner's config, and its schema fragment. Concrete capabilities
// embed it.
type baseCapability struct {
	name   string
	run    *Runner
	config Config
	schema Schema
}

// newBaseCapability validates the config against the capability's own schema
// fragment. Capabilities are independently schema-validated in addition to
// participating in the owner's merged schema.
func newBaseCapability(name string, run *Runner, config Config, schema Schema) (baseCapability, error) {
	if err := ValidateSchema(schema, config.Raw()); err != nil {
		return baseCapability{}, NewInvalidConfigError("capability %s: %s", name, err)
	}
	return baseCapability{name: name, run: run, config: config, schema: schema}, nil
}

func (c *baseCapability) Name() string         { return c.name }
func (c *baseCapability) ConfigSchema() Schema { return c.schema }

// CapabilityOwner is the querying surface of a configurable object. Steps are
// exposed to each other through this interface so that consumers can dispatch on
// available capabilities.
type CapabilityOwner interface {
	HasCapability(name string) bool
	GetCapability(name string) (Capability, error)
	FindCapability(name string) Capability
}

// ConfigurableObject is the base of every service and step: it exclusively owns
// zero or more capabilities and a config that was validated, at construction
// time, against the conjunction of every capability's schema fragment, the
// object-specific schema, and the generic schema for the object's role.
type ConfigurableObject struct {
	config Config
	caps   map[string]Capability
	order  []string
}

// NewConfigurableObject builds the object and validates its config against the
// merged schema. On validation failure it returns an InvalidConfigError and no
// object; no other side effects occur.
func NewConfigurableObject(config Config, objectSchema, genericSchema Schema, capabilities ...Capability) (*ConfigurableObject, error) {
	o := &ConfigurableObject{
		config: config,
		caps:   make(map[string]Capability),
	}
	for _, cap := range capabilities {
		o.attach(cap)
	}
	if err := ValidateSchema(o.effectiveSchema(objectSchema, genericSchema), config.Raw()); err != nil {
		return nil, NewInvalidConfigError("%s", err)
	}
	return o, nil
}

func (o *ConfigurableObject) attach(cap Capability) {
	if _, exists := o.caps[cap.Name()]; !exists {
		o.order = append(o.order, cap.Name())
	}
	o.caps[cap.Name()] = cap
}

// AddCapability attaches a capability after construction. The config is not
// revalidated; capabilities added late must validate their own schema fragment
// in their constructors.
func (o *ConfigurableObject) AddCapability(cap Capability) {
	o.attach(cap)
}

// Config returns the object's configuration.
func (o *ConfigurableObject) Config() Config {
	return o.config
}

// HasCapability reports whether a capability with the given name is attached.
func (o *ConfigurableObject) HasCapability(name string) bool {
	_, ok := o.caps[name]
	return ok
}

// GetCapability returns the named capability, or a MissingCapabilityError if it
// is not attached. Use this when the caller requires the capability to exist.
func (o *ConfigurableObject) GetCapability(name string) (Capability, error) {
	cap, ok := o.caps[name]
	if !ok {
		return nil, &MissingCapabilityError{Capability: name}
	}
	return cap, nil
}

// FindCapability returns the named capability or nil. Use this when the caller
// probes optionally in order to dispatch on whatever capabilities are available.
func (o *ConfigurableObject) FindCapability(name string) Capability {
	return o.caps[name]
}

// effectiveSchema merges the capability schema fragments with the object-specific
// and generic role schemas. Attachment order does not affect the verdict.
func (o *ConfigurableObject) effectiveSchema(objectSchema, genericSchema Schema) Schema {
	schemas := make([]Schema, 0, len(o.order)+2)
	for _, name := range o.order {
		schemas = append(schemas, o.caps[name].ConfigSchema())
	}
	schemas = append(schemas, objectSchema, genericSchema)
	return MergeSchemas(schemas...)
}
