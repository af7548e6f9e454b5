package framework

// Reporter is the narrow sink the engine sends execution progress to. The engine
// calls it only from the sequential execution goroutine, in strict nesting
// order: StartSuite, then for each case StartCase/StartStep.../EndCase, then
// EndSuite. Every failure is reported with a title and structured detail before
// execution continues.
type Reporter interface {
	StartSuite(name string)
	EndSuite(ok bool)
	StartCase(name string)
	EndCase(ok bool)
	StartStep(name string)
	StepInfo(title string, detail interface{})
	StepFailure(title string, detail interface{})
	EndStep(ok bool)
	AddService(name string)
}

type nullReporter struct{}

func (nullReporter) StartSuite(string)               {}
func (nullReporter) EndSuite(bool)                   {}
func (nullReporter) StartCase(string)                {}
func (nullReporter) EndCase(bool)                    {}
func (nullReporter) StartStep(string)                {}
func (nullReporter) StepInfo(string, interface{})    {}
func (nullReporter) StepFailure(string, interface{}) {}
func (nullReporter) EndStep(bool)                    {}
func (nullReporter) AddService(string)               {}

// NullReporter returns a Reporter that discards everything.
func NullReporter() Reporter { return nullReporter{} }

// MultiReporter fans every call out to a list of reporters in order.
type MultiReporter struct {
	reporters []Reporter
}

// NewMultiReporter combines reporters into one.
func NewMultiReporter(reporters ...Reporter) *MultiReporter {
	return &MultiReporter{reporters: reporters}
}

func (m *MultiReporter) StartSuite(name string) {
	for _, r := range m.reporters {
		r.StartSuite(name)
	}
}

func (m *MultiReporter) EndSuite(ok bool) {
	for _, r := range m.reporters {
		r.EndSuite(ok)
	}
}

func (m *MultiReporter) StartCase(name string) {
	for _, r := range m.reporters {
		r.StartCase(name)
	}
}

func (m *MultiReporter) EndCase(ok bool) {
	for _, r := range m.reporters {
		r.EndCase(ok)
	}
}

func (m *MultiReporter) StartStep(name string) {
	for _, r := range m.reporters {
		r.StartStep(name)
	}
}

func (m *MultiReporter) StepInfo(title string, detail interface{}) {
	for _, r := range m.reporters {
		r.StepInfo(title, detail)
	}
}

func (m *MultiReporter) StepFailure(title string, detail interface{}) {
	for _, r := range m.reporters {
		r.StepFailure(title, detail)
	}
}

func (m *MultiReporter) EndStep(ok bool) {
	for _, r := range m.reporters {
		r.EndStep(ok)
	}
}

func (m *MultiReporter) AddService(name string) {
	for _, r := range m.reporters {
		r.AddService(name)
	}
}
