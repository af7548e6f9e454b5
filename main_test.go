package main

import (
	"bytes"
	"os"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dugway-project/dugway/framework"
)

func TestRerunCommandEscapesCaseNames(t *testing.T) {
	cmd := rerunCommand("suite.yaml", []string{"simple", "name with spaces"})

	assert.True(t, strings.HasPrefix(cmd, os.Args[0]+" run suite.yaml"))
	assert.Contains(t, cmd, `--run '^simple$'`)
	assert.Contains(t, cmd, `--run '^name with spaces$'`)
}

func TestRerunCommandPatternsMatchOnlyTheNamedCase(t *testing.T) {
	cmd := rerunCommand("suite.yaml", []string{"a.b"})
	// The dot must be quoted so that "axb" does not match.
	pattern := regexp.QuoteMeta("a.b")
	assert.Contains(t, cmd, "^"+pattern+"$")
}

func TestConsoleReporterShowsDebugOutputOnFailureOnly(t *testing.T) {
	debug := framework.CapturedOutput{{Message: "something happened"}}

	renderStep := func(rep *consoleReporter, ok bool) string {
		var buf bytes.Buffer
		rep.out = &buf
		rep.StartStep("the step")
		rep.StepInfo("debug", debug)
		if !ok {
			rep.StepFailure("Step error", "boom")
		}
		rep.EndStep(ok)
		return buf.String()
	}

	out := renderStep(newConsoleReporter(true, false), false)
	assert.Contains(t, out, "DEBUG")
	assert.Contains(t, out, "something happened")
	assert.Contains(t, out, "boom")

	out = renderStep(newConsoleReporter(true, false), true)
	assert.NotContains(t, out, "DEBUG")

	out = renderStep(newConsoleReporter(false, true), true)
	assert.Contains(t, out, "DEBUG")
}
