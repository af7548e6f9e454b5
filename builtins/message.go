package builtins

import (
	"encoding/json"
	"time"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/dugway-project/dugway/framework"
)

// countPollInterval is how often the message step re-checks the queue size while
// waiting for an expected count.
const countPollInterval = 100 * time.Millisecond

func init() {
	framework.RegisterStep("message", newMessageStep)
}

// messageStep consumes content captured by a referenced step. It resolves the
// producer via FromStep and dispatches on whichever content capability the
// producer exposes, probing in fixed order: the multi-content queue first, then
// the single content holder, then raw text content.
type messageStep struct {
	framework.StepBase
	from   *framework.FromStepCapability
	expect *framework.SchemaExpectationCapability
}

func messageStepSchema() framework.Schema {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"consume": map[string]interface{}{
				"oneOf": []interface{}{
					map[string]interface{}{"type": "integer", "minimum": 0},
					map[string]interface{}{"type": "string", "const": "all"},
				},
			},
			"timeoutSeconds": map[string]interface{}{
				"type": []interface{}{"number", "null"},
			},
			"expect": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"count":       map[string]interface{}{"type": "integer"},
					"json_schema": map[string]interface{}{"type": "object"},
					"properties": map[string]interface{}{
						"type":                 "object",
						"additionalProperties": map[string]interface{}{"type": "string"},
					},
				},
			},
		},
	}
}

func newMessageStep(run *framework.Runner, config framework.Config) (framework.Step, error) {
	from, err := framework.NewFromStepCapability(run, config)
	if err != nil {
		return nil, err
	}
	expect, err := framework.NewSchemaExpectationCapability(run, config)
	if err != nil {
		return nil, err
	}
	base, err := framework.NewStepBase(run, config, messageStepSchema(), from, expect)
	if err != nil {
		return nil, err
	}
	return &messageStep{StepBase: base, from: from, expect: expect}, nil
}

func (s *messageStep) Run() error {
	producer, err := s.from.Step()
	if err != nil {
		return err
	}
	if cap := producer.FindCapability(framework.CapabilityMultiContent); cap != nil {
		return s.consumeQueue(cap.(*framework.MultiContentCapability))
	}
	if cap := producer.FindCapability(framework.CapabilitySingleContent); cap != nil {
		return s.checkSingle(cap.(*framework.SingleContentCapability))
	}
	if cap := producer.FindCapability(framework.CapabilityTextContent); cap != nil {
		return s.checkText(cap.(*framework.TextContentCapability))
	}
	return &framework.MissingCapabilityError{
		Capability: "MultiContent, SingleContent or TextContent",
	}
}

// consumeQueue implements the consumption protocol against a producer's queue:
// first wait for the expected count if one was declared, then resolve how many
// items to consume, then drain them in FIFO order checking each one.
func (s *messageStep) consumeQueue(multi *framework.MultiContentCapability) error {
	config := s.Config()
	queue := multi.Queue()

	var deadline time.Time
	hasTimeout := false
	if raw, present := config["timeoutSeconds"]; present && raw != nil {
		deadline = time.Now().Add(time.Duration(config.Float("timeoutSeconds", 0) * float64(time.Second)))
		hasTimeout = true
	}

	expect := config.Map("expect")
	if expect.Has("count") {
		expected := expect.Int("count", 0)
		if err := s.awaitCount(queue, expected, deadline, hasTimeout); err != nil {
			return err
		}
	}

	// "all" means the queue size at this moment, not a moving target. A literal
	// count blocks until that many items have arrived, with no timeout.
	toConsume := 0
	switch consume := config["consume"].(type) {
	case string:
		toConsume = queue.Count()
	case float64:
		toConsume = int(consume)
	default:
		toConsume = queue.Count()
	}
	s.Runner().Reporter().StepInfo("Consume messages", toConsume)

	for i := 0; i < toConsume; i++ {
		item := queue.Take()
		if err := s.checkItem(item); err != nil {
			return err
		}
	}
	return nil
}

// awaitCount polls the queue size at a fixed interval until it equals the
// expected count. With no timeout it polls indefinitely.
func (s *messageStep) awaitCount(queue *framework.ContentQueue, expected int, deadline time.Time, hasTimeout bool) error {
	for {
		actual := queue.Count()
		if actual == expected {
			return nil
		}
		if hasTimeout && !time.Now().Before(deadline) {
			return framework.NewExpectationFailureError("message count", expected, actual)
		}
		s.Debugf("waiting for %d messages, have %d", expected, actual)
		time.Sleep(countPollInterval)
	}
}

func (s *messageStep) checkSingle(single *framework.SingleContentCapability) error {
	item, ok := single.Get()
	if !ok {
		return framework.NewExpectationFailureError("captured content", "a captured value", "nothing captured")
	}
	return s.checkItem(item)
}

func (s *messageStep) checkText(text *framework.TextContentCapability) error {
	raw, ok := text.Get()
	if !ok {
		return framework.NewExpectationFailureError("captured content", "a captured value", "nothing captured")
	}
	var value interface{}
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return framework.NewExpectationFailureError("content format", "JSON content", raw)
	}
	return s.checkItem(framework.ContentItem{Value: ldvalue.CopyArbitraryValue(value)})
}

// checkItem verifies one consumed item: metadata properties first, then the
// expectation schema. The first mismatch fails the step, aborting any remaining
// consumption.
func (s *messageStep) checkItem(item framework.ContentItem) error {
	expect := s.Config().Map("expect")
	for key, raw := range expect.Map("properties") {
		want, ok := raw.(string)
		if !ok {
			continue
		}
		if got := item.Metadata[key]; got != want {
			return framework.NewExpectationFailureError("property "+key, want, got)
		}
	}
	return s.expect.Check(item.Value.AsArbitraryValue())
}
