package discovery

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultInterval, cfg.Interval)
	assert.Empty(t, cfg.Targets)

	dests, err := cfg.destinations()
	require.NoError(t, err)
	require.Len(t, dests, 1)
	assert.Equal(t, "255.255.255.255:54545", dests[0].String())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{"valid", func(*Config) {}, ""},
		{"ephemeral port", func(c *Config) { c.Port = 0 }, ""},
		{"negative port", func(c *Config) { c.Port = -1 }, "out of range"},
		{"port too large", func(c *Config) { c.Port = 70000 }, "out of range"},
		{"zero interval", func(c *Config) { c.Interval = 0 }, "interval must be positive"},
		{"bad listen host", func(c *Config) { c.ListenHost = "localhost" }, "not an IP address"},
		{"target without port", func(c *Config) { c.Targets = []string{"10.0.0.255"} }, "target"},
		{"target without host", func(c *Config) { c.Targets = []string{":54545"} }, "has no host"},
		{"target bad port", func(c *Config) { c.Targets = []string{"10.0.0.255:0"} }, "invalid port"},
		{"valid targets", func(c *Config) { c.Targets = []string{"10.0.0.255:54545", "127.0.0.1:9000"} }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lanroster.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
port: 40000
interval: 250ms
targets:
  - 127.0.0.1:40001
identity: hostA
unique_identity: true
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 40000, cfg.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.Interval)
	assert.Equal(t, []string{"127.0.0.1:40001"}, cfg.Targets)
	assert.Equal(t, "hostA", cfg.Identity)
	assert.True(t, cfg.UniqueIdentity)
	assert.True(t, cfg.ReusePort, "unset keys keep their defaults")
}

func TestLoadConfig_Empty(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_RejectsUnknownKeys(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "port: 1\nexpiry: 10s\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadConfig_RejectsInvalidValues(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "interval: -1s\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
