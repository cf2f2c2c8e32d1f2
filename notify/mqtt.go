package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const mqttPublishTimeout = 10 * time.Second

type MqttConfig struct {
	Broker   string
	ClientId string
	Username string
	Password string
}

// NewMqttClient connects to the broker and keeps reconnecting in the background.
func NewMqttClient(logger *slog.Logger, cfg MqttConfig) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientId)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(10 * time.Second)

	opts.SetOnConnectHandler(func(c mqtt.Client) {
		logger.Info("MQTT client connected", slog.String("broker", cfg.Broker))
	})
	opts.SetConnectionLostHandler(func(c mqtt.Client, err error) {
		logger.Error("MQTT connection lost", slog.Any("error", err))
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return client, nil
}

type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MqttSender publishes each notification as JSON at QoS 1.
type MqttSender struct {
	client  publisher
	topic   string
	timeout time.Duration
}

func NewMqttSender(client publisher, topic string) MqttSender {
	return MqttSender{
		client:  client,
		topic:   topic,
		timeout: mqttPublishTimeout,
	}
}

func (s MqttSender) Name() string { return "mqtt" }

func (s MqttSender) Send(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}

	token := s.client.Publish(s.topic, 1, false, payload)
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.timeout):
		return errors.New("timed out publishing to MQTT broker")
	}
}
