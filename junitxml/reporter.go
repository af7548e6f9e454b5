// Package junitxml writes suite results as a JUnit XML file, the
// machine-readable artifact most CI systems ingest.
package junitxml

import (
	"encoding/xml"
	"fmt"
	"os"
	"time"
)

type testSuites struct {
	XMLName xml.Name    `xml:"testsuites"`
	Suites  []testSuite `xml:"testsuite"`
}

type testSuite struct {
	Name     string     `xml:"name,attr"`
	Tests    int        `xml:"tests,attr"`
	Failures int        `xml:"failures,attr"`
	Cases    []testCase `xml:"testcase"`
}

type testCase struct {
	Name    string   `xml:"name,attr"`
	Time    string   `xml:"time,attr"`
	Failure *failure `xml:"failure,omitempty"`
}

type failure struct {
	Message string `xml:"message,attr"`
	Detail  string `xml:",chardata"`
}

// Reporter collects case results during a run and writes the XML file when the
// suite ends. It implements the engine's Reporter interface.
type Reporter struct {
	path      string
	suiteName string
	cases     []testCase
	caseStart time.Time
	writeErr  error
}

// NewReporter creates a reporter that will write to the given path.
func NewReporter(path string) *Reporter {
	return &Reporter{path: path}
}

// Err returns the error from writing the results file, if any.
func (r *Reporter) Err() error { return r.writeErr }

func (r *Reporter) StartSuite(name string) {
	r.suiteName = name
}

func (r *Reporter) EndSuite(ok bool) {
	failures := 0
	for _, c := range r.cases {
		if c.Failure != nil {
			failures++
		}
	}
	doc := testSuites{
		Suites: []testSuite{{
			Name:     r.suiteName,
			Tests:    len(r.cases),
			Failures: failures,
			Cases:    r.cases,
		}},
	}
	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		r.writeErr = err
		return
	}
	r.writeErr = os.WriteFile(r.path, append([]byte(xml.Header), append(data, '\n')...), 0644)
}

func (r *Reporter) StartCase(name string) {
	r.cases = append(r.cases, testCase{Name: name})
	r.caseStart = time.Now()
}

func (r *Reporter) EndCase(ok bool) {
	if len(r.cases) == 0 {
		return
	}
	r.cases[len(r.cases)-1].Time = fmt.Sprintf("%.3f", time.Since(r.caseStart).Seconds())
}

func (r *Reporter) StartStep(name string) {}

func (r *Reporter) StepInfo(title string, detail interface{}) {}

// StepFailure records the first failure of the current case.
func (r *Reporter) StepFailure(title string, detail interface{}) {
	if len(r.cases) == 0 {
		return
	}
	current := &r.cases[len(r.cases)-1]
	if current.Failure == nil {
		current.Failure = &failure{Message: title, Detail: fmt.Sprintf("%v", detail)}
	}
}

func (r *Reporter) EndStep(ok bool) {}

func (r *Reporter) AddService(name string) {}
