package modem

import (
	"log/slog"
	"time"
)

// KeepAliveFunc is invoked at bounded intervals (at least once per second)
// during every long wait, so an external watchdog can be serviced while
// the driver polls the modem.
type KeepAliveFunc func()

// Config carries the modem configuration. Use NewConfigBuilder to
// construct one; Build applies the defaults below.
type Config struct {
	// Dialer opens the byte transport. Required.
	Dialer Dialer
	// Power drives the modem's power line; nil means always on.
	Power PowerControl
	// Logger receives driver diagnostics, including URC traffic at debug
	// level. Defaults to slog.Default().
	Logger *slog.Logger
	// KeepAlive is the watchdog callback; defaults to a no-op.
	KeepAlive KeepAliveFunc
	// CID is the PDP context id the driver binds the APN to. Default 1.
	CID uint8
	// MinRSSI is the weakest acceptable signal in dBm. Default -113.
	MinRSSI int
	// ReadTimeout is the default budget for a command's final response.
	// Default 5s.
	ReadTimeout time.Duration
	// ByteTimeout bounds each single-byte transport read inside the line
	// framer. Default 250ms.
	ByteTimeout time.Duration
}

func (c *Config) validate() error {
	if c.Dialer == nil {
		return ErrNoDialer
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.KeepAlive == nil {
		c.KeepAlive = func() {}
	}
	if c.CID == 0 {
		c.CID = 1
	}
	if c.MinRSSI == 0 {
		c.MinRSSI = -113
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 5 * time.Second
	}
	if c.ByteTimeout == 0 {
		c.ByteTimeout = 250 * time.Millisecond
	}
}

// ConfigBuilder assembles a Config step by step.
type ConfigBuilder struct {
	config Config
}

func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{}
}

func (b *ConfigBuilder) WithDialer(d Dialer) *ConfigBuilder {
	b.config.Dialer = d
	return b
}

func (b *ConfigBuilder) WithPowerControl(p PowerControl) *ConfigBuilder {
	b.config.Power = p
	return b
}

func (b *ConfigBuilder) WithLogger(l *slog.Logger) *ConfigBuilder {
	b.config.Logger = l
	return b
}

func (b *ConfigBuilder) WithKeepAlive(f KeepAliveFunc) *ConfigBuilder {
	b.config.KeepAlive = f
	return b
}

func (b *ConfigBuilder) WithCID(cid uint8) *ConfigBuilder {
	b.config.CID = cid
	return b
}

func (b *ConfigBuilder) WithMinRSSI(dbm int) *ConfigBuilder {
	b.config.MinRSSI = dbm
	return b
}

func (b *ConfigBuilder) WithReadTimeout(d time.Duration) *ConfigBuilder {
	b.config.ReadTimeout = d
	return b
}

func (b *ConfigBuilder) WithByteTimeout(d time.Duration) *ConfigBuilder {
	b.config.ByteTimeout = d
	return b
}

// Build validates the configuration and fills in defaults.
func (b *ConfigBuilder) Build() (Config, error) {
	config := b.config
	config.setDefaults()
	if err := config.validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}
