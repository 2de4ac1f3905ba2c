package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// startMQTT connects to the configured broker and subscribes to the
// datagram topic; each message carries the same JSON body as the HTTP
// endpoint. A missing broker URL disables the ingress. The client
// disconnects when ctx ends.
func startMQTT(ctx context.Context, config *Config, logger *slog.Logger, server *Server) mqtt.Client {
	if config.MqttBroker == "" {
		return nil
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(config.MqttBroker)
	opts.SetClientID(config.MqttClientID)
	if config.MqttUser != "" {
		opts.SetUsername(config.MqttUser)
		opts.SetPassword(config.MqttPass)
	}
	opts.SetOrderMatters(false)
	opts.SetAutoReconnect(true)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("MQTT connection lost", "error", err)
	})
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		logger.Info("MQTT connected, subscribing", "topic", config.MqttTopic)
		token := c.Subscribe(config.MqttTopic, 0, func(_ mqtt.Client, msg mqtt.Message) {
			var req DatagramRequest
			if err := json.Unmarshal(msg.Payload(), &req); err != nil {
				logger.Error("MQTT bad payload", "error", err)
				return
			}
			if req.Host == "" || req.Port == 0 || req.Payload == "" {
				logger.Error("MQTT message missing host/port/payload")
				return
			}
			data, err := base64.StdEncoding.DecodeString(req.Payload)
			if err != nil {
				logger.Error("MQTT payload is not valid base64", "error", err)
				return
			}
			if err := server.SendDatagram(req.Host, req.Port, data); err != nil {
				logger.Error("Failed to send datagram", "error", err, "host", req.Host, "port", req.Port)
				return
			}
			logger.Info("Datagram sent", "host", req.Host, "port", req.Port, "bytes", len(data))
		})
		if token.Wait() && token.Error() != nil {
			logger.Error("MQTT subscribe failed", "error", token.Error())
		}
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		logger.Error("MQTT connect failed", "error", token.Error())
	}

	go func() {
		<-ctx.Done()
		client.Disconnect(500)
	}()

	return client
}
