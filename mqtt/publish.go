package mqtt

import (
	"encoding/json"

	"github.com/dugway-project/dugway/framework"
)

func init() {
	framework.RegisterStep("publish", newPublishStep)
}

// publishStep publishes one message to a topic of an mqtt service. The payload
// is either a JSON document or explicitly null.
type publishStep struct {
	framework.StepBase
	dep *framework.ServiceDependencyCapability
}

func publishStepSchema() framework.Schema {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"topic":  map[string]interface{}{"type": "string"},
			"qos":    map[string]interface{}{"type": "integer", "minimum": 0, "maximum": 2},
			"retain": map[string]interface{}{"type": "boolean"},
			"json":   true,
			"nullPayload": map[string]interface{}{
				"type":  "boolean",
				"const": true,
			},
		},
		"required": []interface{}{"topic"},
	}
}

func newPublishStep(run *framework.Runner, config framework.Config) (framework.Step, error) {
	dep, err := framework.NewServiceDependencyCapability(run, config)
	if err != nil {
		return nil, err
	}
	base, err := framework.NewStepBase(run, config, publishStepSchema(), dep)
	if err != nil {
		return nil, err
	}
	if !config.Has("json") && !config.Bool("nullPayload", false) {
		return nil, framework.NewInvalidConfigError("publish step needs either a json payload or nullPayload: true")
	}
	return &publishStep{StepBase: base, dep: dep}, nil
}

func (s *publishStep) Run() error {
	service, err := s.dep.Service()
	if err != nil {
		return err
	}
	mqttService, ok := service.(*Service)
	if !ok {
		return framework.NewInvalidConfigError("service %q is not an mqtt service", s.Config().String("service", ""))
	}

	config := s.Config()
	run := s.Runner()
	topic, err := run.EvalString(config["topic"])
	if err != nil {
		return err
	}
	qos := config.Int("qos", 0)
	retain := config.Bool("retain", false)

	var payload []byte
	if config.Has("json") {
		value, err := framework.EvalTemplateDeep(config["json"], run.TemplateContext())
		if err != nil {
			return err
		}
		payload, err = json.Marshal(value)
		if err != nil {
			return err
		}
	}

	run.Reporter().StepInfo("MQTT publish", map[string]interface{}{
		"topic": topic, "qos": qos, "retain": retain, "payload": string(payload),
	})
	return mqttService.Publish(topic, byte(qos), retain, payload)
}
