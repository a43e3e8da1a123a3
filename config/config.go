// Package config loads the service declaration shepherdd converges toward.
//
// Config is stored at $XDG_CONFIG_HOME/shepherd/config.yaml (defaults to
// ~/.config/shepherd/config.yaml) unless an explicit path is given. The
// service, image and replica count are fixed for the lifetime of the
// process; the timing knobs default to the daemon's built-in cadence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like "5s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// PortMapping publishes one container port on the host.
type PortMapping struct {
	HostPort      uint16
	ContainerPort uint16
	Protocol      string
}

// Config declares one service and its reconciliation knobs.
type Config struct {
	Service  string   `yaml:"service"`
	Image    string   `yaml:"image"`
	Replicas int      `yaml:"replicas"`
	Ports    []string `yaml:"ports,omitempty"` // "HOST:CONTAINER[/proto]"

	Interval    Duration `yaml:"interval,omitempty"`
	SettleDelay Duration `yaml:"settle-delay,omitempty"`
	NTPCheck    bool     `yaml:"ntp-check,omitempty"`
}

// Path returns the default config file location. It respects
// XDG_CONFIG_HOME, falling back to ~/.config/shepherd/config.yaml.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".config", "shepherd", "config.yaml")
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "shepherd", "config.yaml")
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the declaration for the mistakes a reconciler cannot
// recover from.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Service) == "" {
		return fmt.Errorf("config: service must not be empty")
	}
	if strings.TrimSpace(c.Image) == "" {
		return fmt.Errorf("config: image must not be empty")
	}
	if c.Replicas < 0 {
		return fmt.Errorf("config: replicas must not be negative, got %d", c.Replicas)
	}
	if _, err := c.PortMappings(); err != nil {
		return err
	}
	return nil
}

// PortMappings parses the port strings into typed mappings.
func (c *Config) PortMappings() ([]PortMapping, error) {
	out := make([]PortMapping, 0, len(c.Ports))
	for _, p := range c.Ports {
		pm, err := parsePort(p)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		out = append(out, pm)
	}
	return out, nil
}

func parsePort(s string) (PortMapping, error) {
	spec, proto, found := strings.Cut(s, "/")
	if !found {
		proto = "tcp"
	}
	host, cont, found := strings.Cut(spec, ":")
	if !found {
		return PortMapping{}, fmt.Errorf("port %q: want HOST:CONTAINER[/proto]", s)
	}
	h, err := strconv.ParseUint(host, 10, 16)
	if err != nil {
		return PortMapping{}, fmt.Errorf("port %q: host part: %w", s, err)
	}
	ct, err := strconv.ParseUint(cont, 10, 16)
	if err != nil {
		return PortMapping{}, fmt.Errorf("port %q: container part: %w", s, err)
	}
	switch proto {
	case "tcp", "udp", "sctp":
	default:
		return PortMapping{}, fmt.Errorf("port %q: unknown protocol %q", s, proto)
	}
	return PortMapping{HostPort: uint16(h), ContainerPort: uint16(ct), Protocol: proto}, nil
}
