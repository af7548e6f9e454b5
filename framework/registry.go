package framework

import (
	"fmt"
	"sort"
	"sync"
)

// ServiceFactory constructs a service of one kind from its config.
type ServiceFactory func(run *Runner, config Config) (Service, error)

// StepFactory constructs a step of one kind from its config.
type StepFactory func(run *Runner, config Config) (Step, error)

var (
	registryLock     sync.Mutex
	serviceFactories = make(map[string]ServiceFactory)
	stepFactories    = make(map[string]StepFactory)
)

// RegisterService makes a service kind available to suite documents. It is
// meant to be called from package init functions, database/sql-driver style;
// registering the same kind twice panics.
func RegisterService(kind string, factory ServiceFactory) {
	registryLock.Lock()
	defer registryLock.Unlock()
	if _, dup := serviceFactories[kind]; dup {
		panic(fmt.Sprintf("service kind %q registered twice", kind))
	}
	serviceFactories[kind] = factory
}

// RegisterStep makes a step kind available to suite documents. Registering the
// same kind twice panics.
func RegisterStep(kind string, factory StepFactory) {
	registryLock.Lock()
	defer registryLock.Unlock()
	if _, dup := stepFactories[kind]; dup {
		panic(fmt.Sprintf("step kind %q registered twice", kind))
	}
	stepFactories[kind] = factory
}

// RegisteredStepKinds returns the registered step kinds, sorted.
func RegisteredStepKinds() []string {
	registryLock.Lock()
	defer registryLock.Unlock()
	kinds := make([]string, 0, len(stepFactories))
	for k := range stepFactories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

func newService(run *Runner, config Config) (Service, error) {
	kind := config.String("type", "")
	registryLock.Lock()
	factory := serviceFactories[kind]
	registryLock.Unlock()
	if factory == nil {
		return nil, NewInvalidConfigError("unknown service type %q", kind)
	}
	return factory(run, config)
}

func newStep(run *Runner, config Config) (Step, error) {
	kind := config.String("type", "")
	registryLock.Lock()
	factory := stepFactories[kind]
	registryLock.Unlock()
	if factory == nil {
		return nil, NewInvalidConfigError("unknown step type %q", kind)
	}
	return factory(run, config)
}
