package main

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/dugway-project/dugway/framework"
	"github.com/dugway-project/dugway/junitxml"

	"github.com/alessio/shellescape"
	"github.com/spf13/cobra"

	// Register the built-in service and step kinds.
	_ "github.com/dugway-project/dugway/builtins"
	_ "github.com/dugway-project/dugway/mqtt"
	_ "github.com/dugway-project/dugway/web"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "dugway",
		Short:         "Declarative integration test runner",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(runCommand())
	return cmd
}

func runCommand() *cobra.Command {
	var junitPath string
	var filters framework.RegexFilters
	var debug bool
	var debugAll bool

	cmd := &cobra.Command{
		Use:   "run <suite file>",
		Short: "Run a test suite file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reporter := framework.Reporter(newConsoleReporter(debug, debugAll))
			var junitReporter *junitxml.Reporter
			if junitPath != "" {
				junitReporter = junitxml.NewReporter(junitPath)
				reporter = framework.NewMultiReporter(reporter, junitReporter)
			}

			runner, err := framework.NewRunnerFromFile(args[0], reporter)
			if err != nil {
				return fmt.Errorf("cannot load suite: %w", err)
			}
			if filters.IsDefined() {
				runner.SetCaseFilter(filters.AsFilter)
			}

			result, err := runner.Execute()
			if err != nil {
				return err
			}
			if junitReporter != nil {
				if err := junitReporter.Err(); err != nil {
					return fmt.Errorf("cannot write results file: %w", err)
				}
			}
			if !result.OK() {
				fmt.Println()
				fmt.Println("To run only the failed cases:")
				fmt.Printf("  %s\n", rerunCommand(args[0], result.FailedCases()))
				os.Exit(1)
			}
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&junitPath, "junit", "", "write results to this file in JUnit XML format")
	fs.Var(&filters.MustMatch, "run", "regex pattern(s) to select cases to run")
	fs.Var(&filters.MustNotMatch, "skip", "regex pattern(s) to select cases not to run")
	fs.BoolVar(&debug, "debug", false, "show debug output for failed steps")
	fs.BoolVar(&debugAll, "debug-all", false, "show debug output for all steps")
	return cmd
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}

// rerunCommand builds a command line that reruns only the given cases.
func rerunCommand(suitePath string, caseNames []string) string {
	var b commandBuilder
	b.add(os.Args[0], "run", suitePath)
	for _, name := range caseNames {
		b.add("--run", "^"+regexp.QuoteMeta(name)+"$")
	}
	return b.String()
}
