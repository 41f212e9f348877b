package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleConfig struct {
	Port    int           `env:"PORT" envDefault:"8080"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"2s"`
	Brokers []string      `env:"BROKERS" envDefault:"localhost:9092" envSeparator:","`
}

type checkedConfig struct {
	Port int `env:"PORT" envDefault:"8080"`
}

func (c *checkedConfig) Validate() error {
	if c.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func TestLoad_Defaults(t *testing.T) {
	var cfg sampleConfig
	require.NoError(t, Load(&cfg, "CFGTEST_"))

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Brokers)
}

func TestLoad_PrefixedEnv(t *testing.T) {
	t.Setenv("CFGTEST_PORT", "9090")
	t.Setenv("CFGTEST_TIMEOUT", "750ms")
	t.Setenv("CFGTEST_BROKERS", "a:9092,b:9092")
	t.Setenv("PORT", "1")

	var cfg sampleConfig
	require.NoError(t, Load(&cfg, "CFGTEST_"))

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 750*time.Millisecond, cfg.Timeout)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Brokers)
}

func TestLoad_InvalidType(t *testing.T) {
	t.Setenv("CFGTEST_PORT", "not-a-number")

	var cfg sampleConfig
	err := Load(&cfg, "CFGTEST_")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_RunsValidate(t *testing.T) {
	t.Setenv("CFGTEST_PORT", "-1")

	var cfg checkedConfig
	err := Load(&cfg, "CFGTEST_")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "validate config")
	assert.Contains(t, err.Error(), "port must be positive")
}
