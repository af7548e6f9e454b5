package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dugway-project/dugway/framework"

	"github.com/fatih/color"
)

var (
	consolePass   = color.New(color.FgGreen)
	consoleFail   = color.New(color.FgRed, color.Bold)
	consoleDetail = color.New(color.Faint)
)

// consoleReporter renders execution progress as an indented tree on the
// terminal. Step output is buffered and rendered when the step ends, so the
// pass/fail mark comes first on each line.
type consoleReporter struct {
	out                  io.Writer
	debugOutputOnFailure bool
	debugOutputOnSuccess bool

	stepName    string
	stepInfos   []consoleInfo
	stepDebug   framework.CapturedOutput
	stepFailure *consoleInfo
}

type consoleInfo struct {
	title  string
	detail interface{}
}

func newConsoleReporter(debug, debugAll bool) *consoleReporter {
	return &consoleReporter{
		out:                  os.Stdout,
		debugOutputOnFailure: debug || debugAll,
		debugOutputOnSuccess: debugAll,
	}
}

func (c *consoleReporter) StartSuite(name string) {
	fmt.Fprintf(c.out, "Running suite: %s\n", name)
}

func (c *consoleReporter) EndSuite(ok bool) {
	fmt.Fprintln(c.out)
	if ok {
		consolePass.Fprintln(c.out, "All test cases passed")
	} else {
		consoleFail.Fprintln(c.out, "Some test cases failed")
	}
}

func (c *consoleReporter) AddService(name string) {
	consoleDetail.Fprintf(c.out, "  using service: %s\n", name)
}

func (c *consoleReporter) StartCase(name string) {
	fmt.Fprintf(c.out, "\n[%s]\n", name)
}

func (c *consoleReporter) EndCase(ok bool) {}

func (c *consoleReporter) StartStep(name string) {
	c.stepName = name
	c.stepInfos = nil
	c.stepDebug = nil
	c.stepFailure = nil
}

func (c *consoleReporter) StepInfo(title string, detail interface{}) {
	if output, ok := detail.(framework.CapturedOutput); ok && title == "debug" {
		c.stepDebug = output
		return
	}
	c.stepInfos = append(c.stepInfos, consoleInfo{title: title, detail: detail})
}

func (c *consoleReporter) StepFailure(title string, detail interface{}) {
	if c.stepFailure == nil {
		c.stepFailure = &consoleInfo{title: title, detail: detail}
	}
}

func (c *consoleReporter) EndStep(ok bool) {
	if ok {
		consolePass.Fprintf(c.out, "  ✔ %s\n", c.stepName)
	} else {
		consoleFail.Fprintf(c.out, "  ✘ %s\n", c.stepName)
	}
	for _, info := range c.stepInfos {
		consoleDetail.Fprintf(c.out, "      %s: %v\n", info.title, info.detail)
	}
	if c.stepFailure != nil {
		consoleFail.Fprintf(c.out, "      %s\n", c.stepFailure.title)
		if c.stepFailure.detail != nil {
			fmt.Fprintf(c.out, "      %v\n", c.stepFailure.detail)
		}
	}
	if len(c.stepDebug) > 0 &&
		((!ok && c.debugOutputOnFailure) || (ok && c.debugOutputOnSuccess)) {
		c.stepDebug.Dump(c.out, "      DEBUG ")
	}
}
