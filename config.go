package main

import (
	"flag"
	"os"
	"strconv"
)

// Config holds the application configuration
type Config struct {
	// BindAddress is the address the server listens on (e.g. "0.0.0.0:8080")
	BindAddress string
	// SerialPort is the path to the modem's serial port (e.g. "/dev/ttyACM0")
	SerialPort string
	// BaudRate is the baud rate for serial communication with the modem (e.g. 115200)
	BaudRate int
	// LogLevel sets the logging level (e.g. "debug", "info", "warn", "error")
	LogLevel string
	// APN is the access point name the modem attaches to
	APN string
	// Operator is the forced numeric operator code; empty keeps the current
	// selection, "0" selects automatic registration
	Operator string
	// Band optionally pins the radio band (e.g. "8,20")
	Band string
	// MinRSSI is the weakest acceptable signal in dBm
	MinRSSI int
	// MqttBroker is the MQTT broker URL; empty disables the MQTT ingress
	MqttBroker string
	// MqttClientID identifies this gateway on the broker
	MqttClientID string
	// MqttTopic is the topic carrying datagram requests
	MqttTopic string
	// MqttUser is the broker username
	MqttUser string
	// MqttPass is the broker password
	MqttPass string
}

// ConfigOption is a function that modifies a Config
type ConfigOption func(*Config) error

// LoadConfig creates a new config by applying the given options in order
func LoadConfig(opts ...ConfigOption) (*Config, error) {
	config := &Config{}

	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, err
		}
	}

	return config, nil
}

// WithDefaults applies default configuration values
func WithDefaults() ConfigOption {
	return func(c *Config) error {
		c.BindAddress = "0.0.0.0:8080"
		c.SerialPort = "/dev/ttyACM0"
		c.BaudRate = 115200
		c.LogLevel = "info"
		c.MinRSSI = -113
		c.MqttClientID = "nb-gw-1"
		c.MqttTopic = "nb/datagram"
		return nil
	}
}

// WithEnv loads configuration from environment variables
func WithEnv() ConfigOption {
	return func(c *Config) error {
		if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
			c.BindAddress = addr
		}

		if serial := os.Getenv("SERIAL_PORT"); serial != "" {
			c.SerialPort = serial
		}

		if baud := os.Getenv("BAUD_RATE"); baud != "" {
			if b, err := strconv.Atoi(baud); err == nil {
				c.BaudRate = b
			}
		}

		if level := os.Getenv("LOG_LEVEL"); level != "" {
			c.LogLevel = level
		}

		if apn := os.Getenv("APN"); apn != "" {
			c.APN = apn
		}

		if op := os.Getenv("OPERATOR"); op != "" {
			c.Operator = op
		}

		if band := os.Getenv("BAND"); band != "" {
			c.Band = band
		}

		if rssi := os.Getenv("MIN_RSSI"); rssi != "" {
			if r, err := strconv.Atoi(rssi); err == nil {
				c.MinRSSI = r
			}
		}

		if broker := os.Getenv("MQTT_BROKER"); broker != "" {
			c.MqttBroker = broker
		}

		if clientID := os.Getenv("MQTT_CLIENT_ID"); clientID != "" {
			c.MqttClientID = clientID
		}

		if topic := os.Getenv("MQTT_TOPIC"); topic != "" {
			c.MqttTopic = topic
		}

		if user := os.Getenv("MQTT_USERNAME"); user != "" {
			c.MqttUser = user
		}

		if pass := os.Getenv("MQTT_PASSWORD"); pass != "" {
			c.MqttPass = pass
		}

		return nil
	}
}

// WithFlags loads configuration from command-line flags
func WithFlags(fSet *flag.FlagSet) ConfigOption {
	return func(c *Config) error {
		fSet.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "bind-address":
				c.BindAddress = f.Value.String()
			case "serial-port":
				c.SerialPort = f.Value.String()
			case "baud-rate":
				if b, err := strconv.Atoi(f.Value.String()); err == nil {
					c.BaudRate = b
				}
			case "log-level":
				c.LogLevel = f.Value.String()
			case "apn":
				c.APN = f.Value.String()
			case "operator":
				c.Operator = f.Value.String()
			case "band":
				c.Band = f.Value.String()
			case "min-rssi":
				if r, err := strconv.Atoi(f.Value.String()); err == nil {
					c.MinRSSI = r
				}
			case "mqtt-broker":
				c.MqttBroker = f.Value.String()
			case "mqtt-client-id":
				c.MqttClientID = f.Value.String()
			case "mqtt-topic":
				c.MqttTopic = f.Value.String()
			}

		})
		return nil
	}

}
