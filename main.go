package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.bug.st/serial"

	"i4.energy/across/nbgw/modem"
)

func main() {
	flag.String("serial-port", "/dev/ttyACM0", "Serial port to connect to the modem")
	flag.Int("baud-rate", 115200, "Baud rate for serial communication")
	flag.String("bind-address", "0.0.0.0:8080", "Bind address for the HTTP server")
	flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.String("apn", "", "Access point name to attach to")
	flag.String("operator", "", "Forced numeric operator code (empty keeps current, 0 is automatic)")
	flag.String("band", "", "Radio band selection (e.g. 8,20)")
	flag.Int("min-rssi", -113, "Weakest acceptable signal in dBm")
	flag.String("mqtt-broker", "", "MQTT broker URL (empty disables the MQTT ingress)")
	flag.String("mqtt-client-id", "nb-gw-1", "MQTT client identifier")
	flag.String("mqtt-topic", "nb/datagram", "MQTT topic carrying datagram requests")
	flag.Parse()

	config, err := LoadConfig(WithDefaults(), WithEnv(), WithFlags(flag.CommandLine))
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	switch config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	if config.APN == "" {
		logger.Error("An APN is required; set APN or pass -apn")
		os.Exit(1)
	}

	modemConfig, err := modem.NewConfigBuilder().
		WithLogger(logger.With("component", "modem")).
		WithMinRSSI(config.MinRSSI).
		WithDialer(modem.SerialDialer{
			PortName: config.SerialPort,
			Mode:     &serial.Mode{BaudRate: config.BaudRate, DataBits: 8, Parity: serial.NoParity, StopBits: serial.OneStopBit},
		}).
		Build()
	if err != nil {
		logger.Error("Failed to create modem config", "error", err)
		os.Exit(1)
	}

	m, err := modem.New(context.Background(), modemConfig)
	if err != nil {
		logger.Error("Failed to create modem", "error", err)
		os.Exit(1)
	}

	logger.Info("Starting NB-IoT gateway", "port", config.SerialPort, "apn", config.APN)

	if err := m.Connect(context.Background(), config.APN, config.Operator, config.Band); err != nil {
		logger.Error("Failed to attach to the network", "error", err)
		os.Exit(1)
	}
	logger.Info("Network attached", "rssi", m.LastRSSI(), "acquisition", m.SignalAcquisitionTime())

	server := &Server{
		Logger: logger.With("component", "server"),
		Modem:  m,
	}
	httpServer := &http.Server{
		Addr:    config.BindAddress,
		Handler: server,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		logger.Info("Starting HTTP server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	startMQTT(ctx, config, logger.With("component", "mqtt"), server)

	<-ctx.Done()
	logger.Info("Received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	logger.Info("Closing HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to gracefully shutdown server", "error", err)
	}

	logger.Info("Closing sockets and powering modem down")
	if n := m.SocketCloseAll(); n > 0 {
		logger.Info("Closed sockets", "count", n)
	}
	if err := m.Off(); err != nil {
		logger.Warn("Modem still powered", "error", err)
	}
	if err := m.Close(); err != nil {
		logger.Error("Failed to close modem", "error", err)
	}
}
