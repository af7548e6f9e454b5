package framework

import "fmt"

// TestSuite is the largest unit: named services plus named test cases, defined
// by one suite document, with a suite-scoped variable map. It orchestrates
// service setup, the case loop with a service reset after every case, and
// service teardown.
type TestSuite struct {
	*ConfigurableObject
	run          *Runner
	name         string
	services     map[string]Service
	serviceOrder []string
	cases        []*TestCase
	vars         map[string]interface{}
	current      *TestCase
}

func suiteGenericSchema() Schema {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"services": map[string]interface{}{
				"type":                 "object",
				"additionalProperties": serviceGenericSchema(),
			},
			"testCases": map[string]interface{}{
				"type":                 "object",
				"additionalProperties": caseGenericSchema(),
			},
		},
		"required": []interface{}{"services", "testCases"},
	}
}

func newTestSuite(run *Runner, name string, doc parsedDocument) (*TestSuite, error) {
	obj, err := NewConfigurableObject(doc.config, TrueSchema, suiteGenericSchema())
	if err != nil {
		return nil, err
	}
	s := &TestSuite{
		ConfigurableObject: obj,
		run:                run,
		name:               name,
		services:           make(map[string]Service),
		serviceOrder:       doc.serviceOrder,
		vars:               make(map[string]interface{}),
	}
	serviceConfigs := doc.config.Map("services")
	for _, serviceName := range doc.serviceOrder {
		service, err := newService(run, serviceConfigs.Map(serviceName))
		if err != nil {
			return nil, err
		}
		s.services[serviceName] = service
	}
	caseConfigs := doc.config.Map("testCases")
	for _, caseKey := range doc.caseOrder {
		testCase, err := newTestCase(run, caseKey, caseConfigs.Map(caseKey))
		if err != nil {
			return nil, err
		}
		s.cases = append(s.cases, testCase)
	}
	return s, nil
}

// Name returns the suite's display name.
func (s *TestSuite) Name() string { return s.name }

// Service returns a named service of the suite.
func (s *TestSuite) Service(name string) (Service, error) {
	service, ok := s.services[name]
	if !ok {
		return nil, NewInvalidConfigError("no service named %q", name)
	}
	return service, nil
}

// CurrentCase returns the currently executing case, or nil outside the case
// loop. Cross-case step lookup resolves against it.
func (s *TestSuite) CurrentCase() *TestCase { return s.current }

// Variable returns a suite-scoped variable.
func (s *TestSuite) Variable(name string) (interface{}, bool) {
	v, ok := s.vars[name]
	return v, ok
}

// SetVariable writes a suite-scoped variable.
func (s *TestSuite) SetVariable(name string, value interface{}) {
	s.vars[name] = value
}

// Run sets up every service, executes the cases in document order with a
// service reset after each one, and tears the services down. A service failing
// to set up or reset is fatal to the whole run; already-running services are
// still torn down on the way out.
func (s *TestSuite) Run(rep Reporter, filter CaseFilter) (SuiteResult, error) {
	result := SuiteResult{Name: s.name}
	rep.StartSuite(s.name)
	for _, name := range s.serviceOrder {
		rep.AddService(name)
	}

	var started []Service
	teardownAll := func() {
		for _, service := range started {
			_ = service.Teardown()
		}
	}
	for _, name := range s.serviceOrder {
		service := s.services[name]
		if err := service.Setup(); err != nil {
			teardownAll()
			rep.EndSuite(false)
			return result, fmt.Errorf("service %q failed to set up: %w", name, err)
		}
		started = append(started, service)
	}

	for _, testCase := range s.cases {
		if filter != nil && !filter(testCase.Name()) {
			continue
		}
		rep.StartCase(testCase.Name())
		s.current = testCase
		caseResult := testCase.Run(rep)
		s.current = nil
		result.Cases = append(result.Cases, caseResult)
		rep.EndCase(caseResult.OK())
		for _, name := range s.serviceOrder {
			if err := s.services[name].Reset(); err != nil {
				teardownAll()
				rep.EndSuite(false)
				return result, fmt.Errorf("service %q failed to reset: %w", name, err)
			}
		}
	}

	teardownAll()
	rep.EndSuite(result.OK())
	return result, nil
}
