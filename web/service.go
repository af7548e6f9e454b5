// Package web provides the HTTP service and the request step.
package web

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"

	"github.com/dugway-project/dugway/framework"
)

func init() {
	framework.RegisterService("http", newService)
}

// Service is a long-lived HTTP client connection to one host. Per-case state is
// limited to cookies, which Reset discards.
type Service struct {
	framework.ServiceBase
	baseURL string
	headers map[string]string
	jar     http.CookieJar
	client  *http.Client
}

func serviceSchema() framework.Schema {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"hostname": map[string]interface{}{"type": "string"},
			"port":     map[string]interface{}{"type": "integer"},
			"tls":      map[string]interface{}{"type": "boolean"},
			"headers":  headersSchema(),
		},
		"required": []interface{}{"hostname"},
	}
}

func headersSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":                 "object",
		"additionalProperties": map[string]interface{}{"type": "string"},
	}
}

func newService(run *framework.Runner, config framework.Config) (framework.Service, error) {
	base, err := framework.NewServiceBase(run, config, serviceSchema())
	if err != nil {
		return nil, err
	}
	return &Service{ServiceBase: base}, nil
}

// Setup resolves the templated connection parameters and prepares the client.
// No connection is made until the first request.
func (s *Service) Setup() error {
	config := s.Config()
	run := s.Runner()
	hostname, err := run.EvalString(config["hostname"])
	if err != nil {
		return err
	}
	useTLS := config.Bool("tls", false)
	defaultPort := 80
	scheme := "http"
	if useTLS {
		defaultPort = 443
		scheme = "https"
	}
	port := config.Int("port", defaultPort)
	s.baseURL = fmt.Sprintf("%s://%s:%d", scheme, hostname, port)

	s.headers = make(map[string]string)
	for k, raw := range config.Map("headers") {
		v, err := run.EvalString(raw)
		if err != nil {
			return err
		}
		s.headers[k] = v
	}

	s.jar, _ = cookiejar.New(nil)
	s.client = &http.Client{Jar: s.jar}
	s.MarkSetUp()
	return nil
}

// Reset discards cookies accumulated during the case. The underlying
// connections stay pooled.
func (s *Service) Reset() error {
	s.jar, _ = cookiejar.New(nil)
	s.client.Jar = s.jar
	return nil
}

// Teardown closes pooled connections.
func (s *Service) Teardown() error {
	if s.client != nil {
		s.client.CloseIdleConnections()
	}
	s.MarkTornDown()
	return nil
}

// URL joins the service's base URL with an already-evaluated request path.
func (s *Service) URL(path string) string {
	return s.baseURL + path
}

// Request performs one HTTP request. Service-level headers apply first and
// request headers override them. The response body is fully read and returned.
func (s *Service) Request(method, path string, headers map[string]string, body []byte, followRedirects bool) (*http.Response, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, s.URL(path), reader)
	if err != nil {
		return nil, nil, err
	}
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	client := s.client
	if !followRedirects {
		client = &http.Client{
			Jar: s.jar,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, nil, err
	}
	return resp, respBody, nil
}
