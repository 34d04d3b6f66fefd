package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Engine struct {
		SnapshotPath    string        `yaml:"snapshot_path" default:"data/forecast_snapshots.json"`
		TrackingPath    string        `yaml:"tracking_path" default:"data/signal_tracking.json"`
		BufferCapacity  int           `yaml:"buffer_capacity" default:"500"`
		TrackHorizon    time.Duration `yaml:"track_horizon" default:"24h"`
		MatchTolerance  time.Duration `yaml:"match_tolerance" default:"2m"`
		MaxTracked      int           `yaml:"max_tracked" default:"100"`
		MinCompleted    int           `yaml:"min_completed" default:"3"`
		SampleSize      int           `yaml:"sample_size" default:"8"`
		ContrarianTau   float64       `yaml:"contrarian_tau" default:"0.015"`
		BandEpsilon     float64       `yaml:"band_epsilon" default:"0.0005"`
		DriftEpsilon    float64       `yaml:"drift_epsilon" default:"0.001"`
		MergeWindow     int           `yaml:"merge_window" default:"7"`
		DefaultStrategy string        `yaml:"default_strategy" default:"regime"`
	} `yaml:"engine"`
	Scheduler struct {
		Enabled  bool          `yaml:"enabled" default:"true"`
		Interval time.Duration `yaml:"interval" default:"5m"`
	} `yaml:"scheduler"`
	Symbols []string `yaml:"symbols"`
	Cache   struct {
		TTL   time.Duration `yaml:"ttl" default:"30s"`
		Redis struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic" default:"trading.signals"`
		RequiredAcks int           `yaml:"required_acks" default:"-1"`
		Compression  string        `yaml:"compression" default:"gzip"`
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled     bool          `yaml:"enabled"`
		Host        string        `yaml:"host"`
		Port        int           `yaml:"port" default:"9000"`
		Database    string        `yaml:"database" default:"signals"`
		User        string        `yaml:"user" default:"default"`
		Password    string        `yaml:"password"`
		DialTimeout time.Duration `yaml:"dial_timeout" default:"5s"`
	} `yaml:"clickhouse"`
}

// Load reads and parses a YAML configuration file, applying struct defaults
// for anything the file leaves unset.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("SNAPSHOT_PATH"); v != "" {
		c.Engine.SnapshotPath = v
	}
	if v := os.Getenv("TRACKING_PATH"); v != "" {
		c.Engine.TrackingPath = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
		c.Cache.Redis.Enabled = true
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if len(c.Symbols) == 0 {
		return fmt.Errorf("symbols cannot be empty")
	}
	if c.Engine.BufferCapacity < 2 {
		return fmt.Errorf("engine.buffer_capacity must be at least 2, got %d", c.Engine.BufferCapacity)
	}
	if c.Engine.DefaultStrategy != "regime" && c.Engine.DefaultStrategy != "percentile" {
		return fmt.Errorf("engine.default_strategy must be 'regime' or 'percentile', got '%s'", c.Engine.DefaultStrategy)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers are required when kafka is enabled")
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when clickhouse is enabled")
	}
	return nil
}
