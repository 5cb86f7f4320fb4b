// Package config loads and validates the daemon configuration from YAML.
package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/vncserve/pkg/x11vnc"
)

// Config is the root daemon configuration.
type Config struct {
	Server     x11vnc.Config    `yaml:"server"`
	Admin      AdminConfig      `yaml:"admin"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Events     EventsConfig     `yaml:"events"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// AdminConfig configures the admin HTTP endpoint (health, status, metrics).
type AdminConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// MonitoringConfig configures the periodic statistics sampler.
type MonitoringConfig struct {
	Enabled          bool    `yaml:"enabled"`
	IntervalSeconds  int     `yaml:"interval_seconds"`
	CPUWarnThreshold float64 `yaml:"cpu_warn_threshold"`
}

// EventsConfig configures event persistence and forwarding.
type EventsConfig struct {
	LogPath     string `yaml:"log_path"`
	NATSURL     string `yaml:"nats_url"`
	NATSSubject string `yaml:"nats_subject"`
}

// LoggingConfig configures structured log output.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// Load reads, parses, defaults and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// envRef matches ${VAR} references. Only the braced form is substituted so
// that a literal dollar sign in a value (a password, say) passes through.
var envRef = regexp.MustCompile(`\$\{[A-Za-z_][A-Za-z0-9_]*\}`)

func expandEnv(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(ref string) string {
		return os.Getenv(ref[2 : len(ref)-1])
	})
}

// Parse parses raw YAML, applies defaults and validates. ${VAR} references
// are resolved from the environment before decoding; an unset variable
// expands to the empty string.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expandEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = x11vnc.DefaultPort
	}
	if c.Server.PollIntervalMS == 0 {
		c.Server.PollIntervalMS = x11vnc.DefaultPollIntervalMS
	}

	if c.Admin.Listen == "" {
		c.Admin.Listen = "127.0.0.1:8040"
	}

	if c.Monitoring.IntervalSeconds <= 0 {
		c.Monitoring.IntervalSeconds = 30
	}
	if c.Monitoring.CPUWarnThreshold <= 0 || c.Monitoring.CPUWarnThreshold > 1 {
		c.Monitoring.CPUWarnThreshold = 0.8
	}

	if c.Events.NATSSubject == "" {
		c.Events.NATSSubject = "vncserve.events"
	}

	c.Logging.Level = NormalizeLogLevel(string(c.Logging.Level))
	c.Logging.Format = NormalizeLogFormat(string(c.Logging.Format))
}

func (c *Config) validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.PollIntervalMS < 0 {
		return fmt.Errorf("server.poll_interval_ms must not be negative")
	}
	if c.Server.Password != "" && c.Server.PasswordFile != "" {
		return fmt.Errorf("server.password and server.password_file are mutually exclusive")
	}
	if c.Monitoring.Enabled && c.Monitoring.IntervalSeconds < 1 {
		return fmt.Errorf("monitoring.interval_seconds must be at least 1")
	}
	if c.Events.NATSURL != "" && c.Events.NATSSubject == "" {
		return fmt.Errorf("events.nats_subject is required when events.nats_url is set")
	}
	return nil
}
