package builtins

import (
	"github.com/dugway-project/dugway/framework"
)

func init() {
	framework.RegisterStep("setVariable", newSetVariableStep)
}

// setVariableStep writes a case- or suite-scoped variable that later steps can
// read through template expressions.
type setVariableStep struct {
	framework.StepBase
}

func newSetVariableStep(run *framework.Runner, config framework.Config) (framework.Step, error) {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"name": map[string]interface{}{"type": "string"},
			"value": map[string]interface{}{
				"type": []interface{}{"string", "number", "boolean", "null"},
			},
			"scope": map[string]interface{}{
				"type": "string",
				"enum": []interface{}{"case", "suite"},
			},
		},
		"required": []interface{}{"name", "value"},
	}
	base, err := framework.NewStepBase(run, config, schema)
	if err != nil {
		return nil, err
	}
	return &setVariableStep{StepBase: base}, nil
}

func (s *setVariableStep) Run() error {
	config := s.Config()
	name := config.String("name", "")
	value, err := framework.EvalTemplateValue(config["value"], s.Runner().TemplateContext())
	if err != nil {
		return err
	}
	s.Runner().Reporter().StepInfo("Set variable "+name, value)
	if config.String("scope", "case") == "suite" {
		s.Runner().SetSuiteVariable(name, value)
		return nil
	}
	return s.Runner().SetCaseVariable(name, value)
}
