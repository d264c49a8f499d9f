package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default values for the configuration.
const (
	DefaultAddr            = ":8080"
	DefaultRateLimit       = 10.0
	DefaultBurst           = 20
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
	DefaultNamespace       = "goliq"
	DefaultWorkers         = 4
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "GOLIQ_"

// Config holds the goliq configuration parsed from config.yaml.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Model   ModelConfig   `yaml:"model"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Report  ReportConfig  `yaml:"report"`
	Batch   BatchConfig   `yaml:"batch"`
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	// Addr is the listen address of `goliq serve` (default ":8080").
	Addr string `yaml:"addr"`

	// RateLimit is the sustained request rate allowed per client, in
	// requests per second. Zero disables rate limiting.
	RateLimit float64 `yaml:"rate_limit"`

	// Burst is the token bucket size per client.
	Burst int `yaml:"burst"`

	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// ModelConfig locates the classifier artifacts. Both paths empty means
// the classifier is not configured and only the safety factor is reported.
type ModelConfig struct {
	Classifier string `yaml:"classifier"`
	Scaler     string `yaml:"scaler"`

	// Watch reloads the artifacts when either file changes.
	Watch bool `yaml:"watch"`
}

// Configured reports whether classifier artifacts are set.
func (m ModelConfig) Configured() bool {
	return m.Classifier != "" && m.Scaler != ""
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// MetricsConfig controls the Prometheus collector.
type MetricsConfig struct {
	Namespace string `yaml:"namespace"`
}

// ReportConfig fills the header of PDF reports.
type ReportConfig struct {
	Author  string `yaml:"author"`
	Project string `yaml:"project"`
}

// BatchConfig controls `goliq batch`.
type BatchConfig struct {
	Workers int `yaml:"workers"`
}

// Default returns a Config pre-populated with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            DefaultAddr,
			RateLimit:       DefaultRateLimit,
			Burst:           DefaultBurst,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Metrics: MetricsConfig{
			Namespace: DefaultNamespace,
		},
		Batch: BatchConfig{
			Workers: DefaultWorkers,
		},
	}
}

// Load reads the config file at path, applies GOLIQ_* environment
// overrides and validates the result. An empty path yields the defaults
// with overrides applied.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse yaml: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// LoadDotEnv loads KEY=value pairs from a .env file into the environment.
// Variables already set are not overwritten. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

// applyEnv overrides fields from GOLIQ_* variables.
func applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"ADDR":           &cfg.Server.Addr,
		"MODEL":          &cfg.Model.Classifier,
		"SCALER":         &cfg.Model.Scaler,
		"LOG_LEVEL":      &cfg.Logging.Level,
		"LOG_FORMAT":     &cfg.Logging.Format,
		"METRICS_NS":     &cfg.Metrics.Namespace,
		"REPORT_AUTHOR":  &cfg.Report.Author,
		"REPORT_PROJECT": &cfg.Report.Project,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}

	if v := os.Getenv(EnvPrefix + "RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sRATE_LIMIT: %w", EnvPrefix, err)
		}
		cfg.Server.RateLimit = f
	}
	ints := map[string]*int{
		"BURST":   &cfg.Server.Burst,
		"WORKERS": &cfg.Batch.Workers,
	}
	for key, dst := range ints {
		if v := os.Getenv(EnvPrefix + key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
			}
			*dst = n
		}
	}
	if v := os.Getenv(EnvPrefix + "MODEL_WATCH"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sMODEL_WATCH: %w", EnvPrefix, err)
		}
		cfg.Model.Watch = b
	}
	return nil
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	if cfg.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if cfg.Server.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit must not be negative")
	}
	if cfg.Server.RateLimit > 0 && cfg.Server.Burst < 1 {
		return fmt.Errorf("server.burst %d must be at least 1 when rate limiting is on", cfg.Server.Burst)
	}
	if cfg.Server.ReadTimeout < 0 || cfg.Server.WriteTimeout < 0 || cfg.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("server timeouts must not be negative")
	}
	if (cfg.Model.Classifier == "") != (cfg.Model.Scaler == "") {
		return fmt.Errorf("model.classifier and model.scaler must be set together")
	}
	if cfg.Model.Watch && !cfg.Model.Configured() {
		return fmt.Errorf("model.watch needs model.classifier and model.scaler")
	}
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q unknown: want debug|info|warn|error", cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format %q unknown: want text|json", cfg.Logging.Format)
	}
	if cfg.Metrics.Namespace == "" {
		return fmt.Errorf("metrics.namespace must not be empty")
	}
	if cfg.Batch.Workers < 1 {
		return fmt.Errorf("batch.workers %d must be at least 1", cfg.Batch.Workers)
	}
	return nil
}
