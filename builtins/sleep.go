package builtins

import (
	"time"

	"github.com/dugway-project/dugway/framework"
)

func init() {
	framework.RegisterStep("sleep", newSleepStep)
}

// sleepStep pauses the sequential execution thread for a number of seconds,
// typically to give a background producer time to deliver.
type sleepStep struct {
	framework.StepBase
}

func newSleepStep(run *framework.Runner, config framework.Config) (framework.Step, error) {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"time": map[string]interface{}{
				"oneOf": []interface{}{
					map[string]interface{}{"type": "number", "minimum": 0},
					map[string]interface{}{"type": "string"},
				},
			},
		},
	}
	base, err := framework.NewStepBase(run, config, schema)
	if err != nil {
		return nil, err
	}
	return &sleepStep{StepBase: base}, nil
}

func (s *sleepStep) Run() error {
	seconds := 1
	if s.Config().Has("time") {
		n, err := s.Runner().EvalInt(s.Config()["time"])
		if err != nil {
			return err
		}
		seconds = n
	}
	s.Runner().Reporter().StepInfo("Sleep", seconds)
	time.Sleep(time.Duration(seconds) * time.Second)
	return nil
}
