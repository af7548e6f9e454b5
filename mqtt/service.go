// Package mqtt provides the MQTT service and the publish and subscribe steps.
package mqtt

import (
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/dugway-project/dugway/framework"
)

const connectTimeout = 10 * time.Second

func init() {
	framework.RegisterService("mqtt", newService)
}

// client is the slice of the paho client API the service uses. The paho client
// satisfies it; tests substitute an in-memory fake.
type client interface {
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
	Unsubscribe(topics ...string) paho.Token
}

// Service is a long-lived connection to an MQTT broker. Subscriptions are
// per-case state: Reset unsubscribes everything registered since the previous
// reset without dropping the connection, which guarantees that no subscription
// callback pushes any further content once Reset returns.
type Service struct {
	framework.ServiceBase
	dial          func(opts *paho.ClientOptions) client
	client        client
	subscriptions []string
}

func serviceSchema() framework.Schema {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"hostname":     map[string]interface{}{"type": "string"},
			"port":         map[string]interface{}{"type": "integer"},
			"tls":          map[string]interface{}{"type": "boolean"},
			"clientId":     map[string]interface{}{"type": "string"},
			"cleanSession": map[string]interface{}{"type": "boolean"},
			"keepAlive":    map[string]interface{}{"type": "integer"},
			"credentials": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"username": map[string]interface{}{"type": "string"},
					"password": map[string]interface{}{"type": "string"},
				},
				"required": []interface{}{"username", "password"},
			},
		},
		"required": []interface{}{"hostname"},
	}
}

func newService(run *framework.Runner, config framework.Config) (framework.Service, error) {
	base, err := framework.NewServiceBase(run, config, serviceSchema())
	if err != nil {
		return nil, err
	}
	return &Service{
		ServiceBase: base,
		dial: func(opts *paho.ClientOptions) client {
			return paho.NewClient(opts)
		},
	}, nil
}

// Setup connects to the broker. Connection failure is fatal to the run.
func (s *Service) Setup() error {
	config := s.Config()
	run := s.Runner()

	hostname, err := run.EvalString(config["hostname"])
	if err != nil {
		return err
	}
	port := config.Int("port", 1883)
	scheme := "tcp"
	if config.Bool("tls", false) {
		scheme = "ssl"
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("%s://%s:%d", scheme, hostname, port))
	opts.SetKeepAlive(time.Duration(config.Int("keepAlive", 60)) * time.Second)
	opts.SetCleanSession(config.Bool("cleanSession", true))
	if config.Has("clientId") {
		clientID, err := run.EvalString(config["clientId"])
		if err != nil {
			return err
		}
		opts.SetClientID(clientID)
	}
	if creds := config.Map("credentials"); creds != nil {
		username, err := run.EvalString(creds["username"])
		if err != nil {
			return err
		}
		password, err := run.EvalString(creds["password"])
		if err != nil {
			return err
		}
		opts.SetUsername(username)
		opts.SetPassword(password)
	}

	s.client = s.dial(opts)
	if err := await(s.client.Connect()); err != nil {
		return fmt.Errorf("cannot connect to broker: %w", err)
	}
	s.MarkSetUp()
	return nil
}

// Reset removes every subscription registered during the case.
func (s *Service) Reset() error {
	if len(s.subscriptions) == 0 {
		return nil
	}
	topics := s.subscriptions
	s.subscriptions = nil
	if err := await(s.client.Unsubscribe(topics...)); err != nil {
		return fmt.Errorf("cannot unsubscribe: %w", err)
	}
	return nil
}

// Teardown disconnects from the broker.
func (s *Service) Teardown() error {
	if s.client != nil {
		s.client.Disconnect(250)
	}
	s.MarkTornDown()
	return nil
}

// Publish sends one message.
func (s *Service) Publish(topic string, qos byte, retain bool, payload []byte) error {
	return await(s.client.Publish(topic, qos, retain, payload))
}

// Subscribe registers a topic callback for the remainder of the case. The
// callback runs on the paho client's background goroutine for every inbound
// message on the topic.
func (s *Service) Subscribe(topic string, qos byte, callback paho.MessageHandler) error {
	if err := await(s.client.Subscribe(topic, qos, callback)); err != nil {
		return err
	}
	s.subscriptions = append(s.subscriptions, topic)
	return nil
}

func await(token paho.Token) error {
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("operation timed out after %s", connectTimeout)
	}
	return token.Error()
}
