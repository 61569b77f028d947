package notify

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

// LogSink writes every toast to a logrus logger.
type LogSink struct {
	Logger log.FieldLogger
}

// Publish logs t at a level matching its severity.
func (s LogSink) Publish(t Toast) {
	logger := s.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	entry := logger.WithFields(log.Fields{
		"toast_id": t.ID,
		"scope":    t.Scope,
		"severity": t.Severity,
	})
	switch t.Severity {
	case SeverityError:
		entry.Warn(t.Message)
	default:
		entry.Info(t.Message)
	}
}

// MQTTSink mirrors toasts to an MQTT topic as JSON.
type MQTTSink struct {
	client  mqtt.Client
	topic   string
	timeout time.Duration
}

// NewMQTTSink publishes to topic through client.
func NewMQTTSink(client mqtt.Client, topic string) *MQTTSink {
	return &MQTTSink{client: client, topic: topic, timeout: 2 * time.Second}
}

// Publish sends t with QoS 0. Failures are logged and never reach the caller.
func (s *MQTTSink) Publish(t Toast) {
	payload, err := json.Marshal(t)
	if err != nil {
		log.WithError(err).Error("Failed to marshal toast")
		return
	}
	token := s.client.Publish(s.topic, 0, false, payload)
	if !token.WaitTimeout(s.timeout) {
		log.WithField("topic", s.topic).Warn("Timed out publishing toast")
		return
	}
	if err := token.Error(); err != nil {
		log.WithError(err).WithField("topic", s.topic).Warn("Failed to publish toast")
	}
}

// DialMQTT connects to broker and returns a ready client.
func DialMQTT(broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second)
	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect to %s timed out", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	return client, nil
}
