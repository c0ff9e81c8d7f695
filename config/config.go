package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"homematic-voice/internal/domain"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Homematic HomematicConfig `yaml:"homematic"`
	Devices   []DeviceConfig  `yaml:"devices"`
	Messages  MessagesConfig  `yaml:"messages"`
	Pushover  PushoverConfig  `yaml:"pushover"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	HTTPAddr          string `yaml:"http_addr"`
	AuthToken         string `yaml:"auth_token"`
	TrustProxyHeaders bool   `yaml:"trust_proxy_headers"`
}

type HomematicConfig struct {
	BaseURL string `yaml:"base_url"`
	// Timeout is a duration string; empty keeps the HTTP client default.
	Timeout string `yaml:"timeout"`

	// TimeoutDuration is Timeout parsed by Load/Parse.
	TimeoutDuration time.Duration `yaml:"-"`
}

type DeviceConfig struct {
	Pref   string `yaml:"pref"`
	Switch string `yaml:"switch"`
	ISEID  string `yaml:"ise_id"`
	Name   string `yaml:"name"`
}

type MessagesConfig struct {
	LaunchApp string `yaml:"launch_app"`
}

type PushoverConfig struct {
	Token   string `yaml:"token"`
	UserKey string `yaml:"user_key"`
	Enabled bool   `yaml:"enabled"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.setDefaults()

	timeout, err := parseTimeout(cfg.Homematic.Timeout)
	if err != nil {
		return nil, err
	}
	cfg.Homematic.TimeoutDuration = timeout

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = ":8080"
	}
	if c.Homematic.BaseURL == "" {
		c.Homematic.BaseURL = "http://homematic-ccu2"
	}
	if c.Messages.LaunchApp == "" {
		c.Messages.LaunchApp = domain.DefaultLaunchAppMessage
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

func parseTimeout(value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parsing homematic.timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("homematic.timeout must not be negative: %s", value)
	}
	return d, nil
}

func (c *Config) DomainDevices() []domain.Device {
	devices := make([]domain.Device, 0, len(c.Devices))
	for _, d := range c.Devices {
		devices = append(devices, domain.Device{
			Pref:   d.Pref,
			Switch: d.Switch,
			ISEID:  d.ISEID,
			Name:   d.Name,
		})
	}
	return devices
}
