package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"MonteSim/pkg/logger"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string        `yaml:"environment"`
	Log         logger.Config `yaml:"log"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Fetch struct {
		Provider  string        `yaml:"provider"` // yahoo or clickhouse
		BaseURL   string        `yaml:"base_url"`
		UserAgent string        `yaml:"user_agent"`
		Timeout   time.Duration `yaml:"timeout"`
		RateLimit struct {
			Requests int           `yaml:"requests"`
			Per      time.Duration `yaml:"per"`
		} `yaml:"rate_limit"`
		Cache struct {
			Backend string        `yaml:"backend"` // memory, redis, sqlite or none
			TTL     time.Duration `yaml:"ttl"`
			L1Size  int           `yaml:"l1_size"`
		} `yaml:"cache"`
	} `yaml:"fetch"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic"`
		RequiredAcks int           `yaml:"required_acks"`
		Compression  string        `yaml:"compression"`
		MaxAttempts  int           `yaml:"max_attempts"`
		BatchTimeout time.Duration `yaml:"batch_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"kafka"`
	Simulation struct {
		MarketSymbol     string  `yaml:"market_symbol"`
		RiskFreeSymbol   string  `yaml:"risk_free_symbol"`
		Period           string  `yaml:"period"`
		Method           string  `yaml:"method"`
		HorizonMonths    float64 `yaml:"horizon_months"`
		Simulations      int     `yaml:"simulations"`
		ReturnsWindow    int     `yaml:"returns_window"`
		VolatilityWindow float64 `yaml:"volatility_window"`
		CumulativeDrift  bool    `yaml:"cumulative_drift"`
		AnchorStepZero   bool    `yaml:"anchor_step_zero"`
	} `yaml:"simulation"`
	Chart struct {
		Width       int `yaml:"width"`
		Height      int `yaml:"height"`
		SamplePaths int `yaml:"sample_paths"`
	} `yaml:"chart"`
	Schedule struct {
		Enabled bool     `yaml:"enabled"`
		Spec    string   `yaml:"spec"` // cron expression
		Symbols []string `yaml:"symbols"`
	} `yaml:"schedule"`
	Queue struct {
		Enabled    bool          `yaml:"enabled"` // run scheduled jobs through redis
		Prefix     string        `yaml:"prefix"`
		Workers    int           `yaml:"workers"`
		RetryLimit int           `yaml:"retry_limit"`
		RetryDelay time.Duration `yaml:"retry_delay"`
	} `yaml:"queue"`
}

// Default returns a configuration usable without a file: Yahoo fetch with an
// in-memory cache, no Kafka, no ClickHouse.
func Default() *Config {
	var c Config
	c.Environment = "local"
	c.Log = logger.Config{Level: "info", Format: "console", Output: "stdout"}
	c.Server.Port = 8080
	c.Server.ReadTimeout = 15 * time.Second
	c.Server.WriteTimeout = 60 * time.Second
	c.Server.ShutdownTimeout = 10 * time.Second
	c.Metrics.Enabled = true
	c.Metrics.Path = "/metrics"
	c.Fetch.Provider = "yahoo"
	c.Fetch.BaseURL = "https://query1.finance.yahoo.com"
	c.Fetch.UserAgent = "Mozilla/5.0"
	c.Fetch.Timeout = 20 * time.Second
	c.Fetch.RateLimit.Requests = 2
	c.Fetch.RateLimit.Per = 5 * time.Second
	c.Fetch.Cache.Backend = "memory"
	c.Fetch.Cache.TTL = time.Hour
	c.Fetch.Cache.L1Size = 256
	c.SQLite.Path = "montesim_cache.db"
	c.Kafka.Topic = "simulation-runs"
	c.Kafka.RequiredAcks = 1
	c.Kafka.MaxAttempts = 3
	c.Simulation.MarketSymbol = "^GSPC"
	c.Simulation.RiskFreeSymbol = "^TNX"
	c.Simulation.Period = "5y"
	c.Simulation.Method = "sma"
	c.Simulation.HorizonMonths = 12
	c.Simulation.Simulations = 1000
	c.Simulation.ReturnsWindow = 150
	c.Simulation.VolatilityWindow = 30
	c.ClickHouse.Host = "localhost"
	c.ClickHouse.Port = 9000
	c.ClickHouse.Database = "default"
	c.ClickHouse.User = "default"
	c.ClickHouse.DialTimeout = 5 * time.Second
	c.ClickHouse.ReadTimeout = 30 * time.Second
	c.Chart.Width = 1000
	c.Chart.Height = 600
	c.Chart.SamplePaths = 10
	c.Schedule.Spec = "0 18 * * 1-5"
	c.Queue.Prefix = "montesim:queue"
	c.Queue.Workers = 1
	c.Queue.RetryLimit = 3
	c.Queue.RetryDelay = time.Minute
	return &c
}

// Load reads a YAML configuration file on top of Default.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
// A missing file falls back to Default.
func LoadWithEnv(path string) (*Config, error) {
	var c *Config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		c = Default()
	} else {
		if c, err = Load(path); err != nil {
			return nil, err
		}
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("FETCH_PROVIDER"); v != "" {
		c.Fetch.Provider = v
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		c.Fetch.Cache.Backend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
		c.ClickHouse.Enabled = true
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Fetch.Provider {
	case "yahoo":
		if c.Fetch.BaseURL == "" {
			return fmt.Errorf("fetch.base_url is required for the yahoo provider")
		}
	case "clickhouse":
		if !c.ClickHouse.Enabled {
			return fmt.Errorf("fetch.provider 'clickhouse' requires clickhouse.enabled")
		}
	default:
		return fmt.Errorf("fetch.provider must be 'yahoo' or 'clickhouse', got '%s'", c.Fetch.Provider)
	}
	switch c.Fetch.Cache.Backend {
	case "none", "memory", "sqlite":
	case "redis":
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is required for the redis cache")
		}
	default:
		return fmt.Errorf("fetch.cache.backend must be one of none, memory, redis, sqlite, got '%s'", c.Fetch.Cache.Backend)
	}
	if c.Fetch.RateLimit.Requests <= 0 || c.Fetch.RateLimit.Per <= 0 {
		return fmt.Errorf("fetch.rate_limit requests and per must be positive")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Simulation.HorizonMonths <= 0 {
		return fmt.Errorf("simulation.horizon_months must be positive")
	}
	if c.Simulation.Simulations <= 0 {
		return fmt.Errorf("simulation.simulations must be positive")
	}
	if c.Schedule.Enabled && len(c.Schedule.Symbols) == 0 {
		return fmt.Errorf("schedule.symbols cannot be empty when the schedule is enabled")
	}
	if c.Queue.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required for the job queue")
	}
	return nil
}
