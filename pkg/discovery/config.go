package discovery

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all settings for the discovery service.
type Config struct {
	// Port is the UDP port every instance listens on and broadcasts to.
	Port int `yaml:"port"`
	// ListenHost restricts the listener to one local address. Empty means all.
	ListenHost string `yaml:"listen_host"`
	// Interval between two announcements.
	Interval time.Duration `yaml:"interval"`
	// Targets overrides the broadcast destination with explicit host:port pairs.
	Targets []string `yaml:"targets"`

	// Identity overrides the hostname derived identity.
	Identity string `yaml:"identity"`
	// UniqueIdentity appends a random suffix to the identity.
	UniqueIdentity bool `yaml:"unique_identity"`

	// ReusePort additionally sets SO_REUSEPORT where the platform supports it.
	ReusePort bool `yaml:"reuse_port"`
}

// DefaultConfig returns a configuration that interoperates with every other
// instance using the defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:      DefaultPort,
		Interval:  DefaultInterval,
		ReusePort: true,
	}
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Port)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	if c.ListenHost != "" && net.ParseIP(c.ListenHost) == nil {
		return fmt.Errorf("%w: listen_host %q is not an IP address", ErrInvalidConfig, c.ListenHost)
	}
	for _, t := range c.Targets {
		host, port, err := net.SplitHostPort(t)
		if err != nil {
			return fmt.Errorf("%w: target %q: %v", ErrInvalidConfig, t, err)
		}
		if host == "" {
			return fmt.Errorf("%w: target %q has no host", ErrInvalidConfig, t)
		}
		if p, err := strconv.Atoi(port); err != nil || p <= 0 || p > 65535 {
			return fmt.Errorf("%w: target %q has an invalid port", ErrInvalidConfig, t)
		}
	}
	return nil
}

// destinations resolves the addresses announcements are sent to.
func (c *Config) destinations() ([]*net.UDPAddr, error) {
	if len(c.Targets) == 0 {
		return []*net.UDPAddr{{IP: net.IPv4bcast, Port: c.Port}}, nil
	}
	out := make([]*net.UDPAddr, 0, len(c.Targets))
	for _, t := range c.Targets {
		addr, err := net.ResolveUDPAddr("udp4", t)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve target %q: %w", t, err)
		}
		out = append(out, addr)
	}
	return out, nil
}

// LoadConfig reads a YAML file on top of DefaultConfig. Unknown keys are rejected.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
