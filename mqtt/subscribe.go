package mqtt

import (
	"encoding/json"

	paho "github.com/eclipse/paho.mqtt.golang"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/dugway-project/dugway/framework"
)

func init() {
	framework.RegisterStep("subscribe", newSubscribeStep)
}

// subscribeStep subscribes to a topic and captures the messages that pass its
// filters. Capture happens on the paho client's background goroutine for the
// remainder of the case; the step itself returns as soon as the subscription is
// registered. Each accepted message is appended to the step's content queue and
// latched into its single holder if it is the first.
type subscribeStep struct {
	framework.StepBase
	dep        *framework.ServiceDependencyCapability
	filter     *framework.SchemaFilterCapability
	properties *framework.PropertyFilterCapability
	multi      *framework.MultiContentCapability
	single     *framework.SingleContentCapability
}

func subscribeStepSchema() framework.Schema {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"topic": map[string]interface{}{"type": "string"},
			"qos":   map[string]interface{}{"type": "integer", "minimum": 0, "maximum": 2},
		},
		"required": []interface{}{"topic"},
	}
}

func newSubscribeStep(run *framework.Runner, config framework.Config) (framework.Step, error) {
	dep, err := framework.NewServiceDependencyCapability(run, config)
	if err != nil {
		return nil, err
	}
	filter, err := framework.NewSchemaFilterCapability(run, config)
	if err != nil {
		return nil, err
	}
	properties, err := framework.NewPropertyFilterCapability(run, config)
	if err != nil {
		return nil, err
	}
	multi, err := framework.NewMultiContentCapability(run, config)
	if err != nil {
		return nil, err
	}
	single, err := framework.NewSingleContentCapability(run, config)
	if err != nil {
		return nil, err
	}
	base, err := framework.NewStepBase(run, config, subscribeStepSchema(), dep, filter, properties, multi, single)
	if err != nil {
		return nil, err
	}
	return &subscribeStep{
		StepBase:   base,
		dep:        dep,
		filter:     filter,
		properties: properties,
		multi:      multi,
		single:     single,
	}, nil
}

func (s *subscribeStep) Run() error {
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

	run.Reporter().StepInfo("MQTT subscribe", topic)
	return mqttService.Subscribe(topic, byte(qos), s.onMessage)
}

// onMessage runs the capture pipeline for one inbound message, in order and
// short-circuiting on first rejection: schema filter, property filter, enqueue.
// Rejection is always silent.
func (s *subscribeStep) onMessage(_ paho.Client, message paho.Message) {
	payload := message.Payload()
	s.Debugf("received message on %s", message.Topic())

	if !s.filter.Accept(payload) {
		s.Debugf("dropped message that did not match the filter schema")
		return
	}
	metadata := map[string]string{"topic": message.Topic()}
	if !s.properties.Match(metadata) {
		s.Debugf("dropped message whose properties did not match")
		return
	}
	var value interface{}
	if err := json.Unmarshal(payload, &value); err != nil {
		s.Debugf("dropped message that was not valid JSON")
		return
	}
	item := framework.ContentItem{Value: ldvalue.CopyArbitraryValue(value), Metadata: metadata}
	s.multi.Add(item)
	s.single.Set(item)
}
