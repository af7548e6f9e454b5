package web

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/dugway-project/dugway/framework"
)

func init() {
	framework.RegisterStep("request", newRequestStep)
}

// requestStep performs one HTTP request against an http service and captures
// the response: the raw body always lands in the step's TextContent holder, and
// when the body parses as JSON it also lands in the SingleContent holder so
// that a later message step can assert on it.
type requestStep struct {
	framework.StepBase
	dep    *framework.ServiceDependencyCapability
	text   *framework.TextContentCapability
	single *framework.SingleContentCapability
}

func requestStepSchema() framework.Schema {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"method": map[string]interface{}{
				"type": "string",
				"enum": []interface{}{"GET", "POST", "PUT", "HEAD", "DELETE", "PATCH", "OPTIONS"},
			},
			"path":            map[string]interface{}{"type": "string"},
			"headers":         headersSchema(),
			"followRedirects": map[string]interface{}{"type": "boolean"},
			"json":            true,
			"content":         map[string]interface{}{"type": "string"},
			"expect": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"status_code": map[string]interface{}{
						"type":    "integer",
						"minimum": 200,
						"maximum": 599,
					},
				},
			},
		},
		"required": []interface{}{"path"},
	}
}

func newRequestStep(run *framework.Runner, config framework.Config) (framework.Step, error) {
	dep, err := framework.NewServiceDependencyCapability(run, config)
	if err != nil {
		return nil, err
	}
	text, err := framework.NewTextContentCapability(run, config)
	if err != nil {
		return nil, err
	}
	single, err := framework.NewSingleContentCapability(run, config)
	if err != nil {
		return nil, err
	}
	base, err := framework.NewStepBase(run, config, requestStepSchema(), dep, text, single)
	if err != nil {
		return nil, err
	}
	return &requestStep{StepBase: base, dep: dep, text: text, single: single}, nil
}

func (s *requestStep) Run() error {
	service, err := s.dep.Service()
	if err != nil {
		return err
	}
	httpService, ok := service.(*Service)
	if !ok {
		return framework.NewInvalidConfigError("service %q is not an http service", s.Config().String("service", ""))
	}

	config := s.Config()
	run := s.Runner()
	method := config.String("method", "GET")
	path, err := run.EvalString(config["path"])
	if err != nil {
		return err
	}

	headers := make(map[string]string)
	for k, raw := range config.Map("headers") {
		v, err := run.EvalString(raw)
		if err != nil {
			return err
		}
		headers[k] = v
	}

	var body []byte
	if config.Has("json") {
		payload, err := framework.EvalTemplateDeep(config["json"], run.TemplateContext())
		if err != nil {
			return err
		}
		body, err = json.Marshal(payload)
		if err != nil {
			return err
		}
		if !hasContentType(headers) {
			headers["Content-Type"] = "application/json"
		}
	} else if config.Has("content") {
		raw, err := run.EvalString(config["content"])
		if err != nil {
			return err
		}
		body = []byte(raw)
	}

	run.Reporter().StepInfo(method+" request", httpService.URL(path))
	resp, respBody, err := httpService.Request(method, path, headers, body, config.Bool("followRedirects", true))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	run.Reporter().StepInfo(fmt.Sprintf("%d response", resp.StatusCode), string(respBody))

	if expect := config.Map("expect"); expect.Has("status_code") {
		want := expect.Int("status_code", 0)
		if resp.StatusCode != want {
			return framework.NewExpectationFailureError("status code", want, resp.StatusCode)
		}
	}

	s.text.Set(string(respBody))
	var parsed interface{}
	if err := json.Unmarshal(respBody, &parsed); err == nil {
		s.single.Set(framework.ContentItem{
			Value: ldvalue.CopyArbitraryValue(parsed),
			Metadata: map[string]string{
				"statusCode":  strconv.Itoa(resp.StatusCode),
				"contentType": resp.Header.Get("Content-Type"),
			},
		})
	}
	return nil
}

func hasContentType(headers map[string]string) bool {
	for k := range headers {
		if strings.EqualFold(k, "Content-Type") {
			return true
		}
	}
	return false
}
