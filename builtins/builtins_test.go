package builtins

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/dugway-project/dugway/framework"
)

// emitStep is a test-only producer. Its mode decides which content capabilities
// it exposes, so the consuming message step's dispatch order can be tested
// against every kind of producer.
type emitStep struct {
	framework.StepBase
	multi  *framework.MultiContentCapability
	single *framework.SingleContentCapability
	text   *framework.TextContentCapability
}

func newEmitStep(run *framework.Runner, config framework.Config) (framework.Step, error) {
	var caps []framework.Capability
	s := &emitStep{}
	var err error
	switch config.String("mode", "queue") {
	case "queue":
		if s.multi, err = framework.NewMultiContentCapability(run, config); err != nil {
			return nil, err
		}
		caps = append(caps, s.multi)
	case "single":
		if s.single, err = framework.NewSingleContentCapability(run, config); err != nil {
			return nil, err
		}
		caps = append(caps, s.single)
	case "text":
		if s.text, err = framework.NewTextContentCapability(run, config); err != nil {
			return nil, err
		}
		caps = append(caps, s.text)
	case "none":
	}
	base, err := framework.NewStepBase(run, config, framework.TrueSchema, caps...)
	if err != nil {
		return nil, err
	}
	s.StepBase = base
	return s, nil
}

func (s *emitStep) Run() error {
	config := s.Config()
	switch {
	case s.multi != nil:
		metadata := make(map[string]string)
		for k, v := range config.Map("metadata") {
			if str, ok := v.(string); ok {
				metadata[k] = str
			}
		}
		deliver := func() {
			for _, v := range config.Slice("values") {
				s.multi.Add(framework.ContentItem{
					Value:    ldvalue.CopyArbitraryValue(v),
					Metadata: metadata,
				})
			}
		}
		if delay := config.Int("delayMillis", 0); delay > 0 {
			go func() {
				time.Sleep(time.Duration(delay) * time.Millisecond)
				deliver()
			}()
		} else {
			deliver()
		}
	case s.single != nil:
		s.single.Set(framework.ContentItem{Value: config.Value("value")})
	case s.text != nil:
		raw, err := s.Runner().EvalString(config["text"])
		if err != nil {
			return err
		}
		s.text.Set(raw)
	}
	return nil
}

func init() {
	framework.RegisterStep("emit", newEmitStep)
}

func runSuite(t *testing.T, document string) framework.SuiteResult {
	runner, err := framework.NewRunner("builtins test", []byte(document), nil)
	require.NoError(t, err)
	result, err := runner.Execute()
	require.NoError(t, err)
	return result
}

func failedStepError(t *testing.T, result framework.SuiteResult) error {
	require.Len(t, result.Cases, 1)
	for _, step := range result.Cases[0].Steps {
		if step.State == framework.StepFailed {
			return step.Err
		}
	}
	require.Fail(t, "expected a failed step")
	return nil
}
