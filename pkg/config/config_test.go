package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
environment: prod
fetch:
  cache:
    backend: sqlite
    ttl: 30m
simulation:
  method: capm
  simulations: 250
schedule:
  enabled: true
  symbols: [AAPL, MSFT]
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Environment != "prod" || c.Fetch.Cache.Backend != "sqlite" || c.Fetch.Cache.TTL != 30*time.Minute {
		t.Fatalf("file values not applied: %+v", c.Fetch.Cache)
	}
	if c.Simulation.Simulations != 250 || c.Simulation.Method != "capm" {
		t.Fatalf("simulation section not applied: %+v", c.Simulation)
	}
	if c.Simulation.HorizonMonths != 12 || c.Fetch.Provider != "yahoo" {
		t.Fatalf("defaults lost for unset keys")
	}
	if len(c.Schedule.Symbols) != 2 || c.Schedule.Spec == "" {
		t.Fatalf("schedule not loaded: %+v", c.Schedule)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(c *Config){
		"unknown provider":         func(c *Config) { c.Fetch.Provider = "bloomberg" },
		"clickhouse provider off":  func(c *Config) { c.Fetch.Provider = "clickhouse" },
		"unknown cache":            func(c *Config) { c.Fetch.Cache.Backend = "memcached" },
		"redis without addr":       func(c *Config) { c.Fetch.Cache.Backend = "redis" },
		"kafka without brokers":    func(c *Config) { c.Kafka.Enabled = true },
		"zero horizon":             func(c *Config) { c.Simulation.HorizonMonths = 0 },
		"zero simulations":         func(c *Config) { c.Simulation.Simulations = 0 },
		"schedule without symbols": func(c *Config) { c.Schedule.Enabled = true },
		"non-positive rate limit":  func(c *Config) { c.Fetch.RateLimit.Requests = 0 },
		"missing environment":      func(c *Config) { c.Environment = "" },
		"queue without redis":      func(c *Config) { c.Queue.Enabled = true },
	}
	for name, mutate := range cases {
		c := Default()
		mutate(c)
		if err := c.Validate(); err == nil {
			t.Fatalf("%s: expected a validation error", name)
		}
	}
}

func TestLoadWithEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("CACHE_BACKEND", "none")

	c, err := LoadWithEnv(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", c.Server.Port)
	}
	if !c.Kafka.Enabled || len(c.Kafka.Brokers) != 2 {
		t.Fatalf("expected kafka enabled with two brokers, got %+v", c.Kafka.Brokers)
	}
	if c.Fetch.Cache.Backend != "none" {
		t.Fatalf("expected cache backend override, got %s", c.Fetch.Cache.Backend)
	}
}
