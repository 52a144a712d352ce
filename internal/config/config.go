package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Publish   PublishConfig   `yaml:"publish" envconfig:"PUBLISH"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// PipelineConfig controls a single batch run
type PipelineConfig struct {
	InputPath            string   `yaml:"input_path" envconfig:"INPUT_PATH"`
	OutputDir            string   `yaml:"output_dir" envconfig:"OUTPUT_DIR"`
	ClassificationFile   string   `yaml:"classification_file" envconfig:"CLASSIFICATION_FILE"`
	MunicipalitiesFile   string   `yaml:"municipalities_file" envconfig:"MUNICIPALITIES_FILE"`
	SubclassDescriptions string   `yaml:"subclass_descriptions" envconfig:"SUBCLASS_DESCRIPTIONS"`
	SourceIsOfficial     bool     `yaml:"source_is_official" envconfig:"SOURCE_IS_OFFICIAL"`
	State                string   `yaml:"state" envconfig:"STATE"`
	Divisions            []string `yaml:"divisions" envconfig:"DIVISIONS"`
	Workers              int      `yaml:"workers" envconfig:"WORKERS"`
	TopMunicipalities    int      `yaml:"top_municipalities" envconfig:"TOP_MUNICIPALITIES"`
	Formats              []string `yaml:"formats" envconfig:"FORMATS"`
	GzipCube             bool     `yaml:"gzip_cube" envconfig:"GZIP_CUBE"`
	Title                string   `yaml:"title" envconfig:"TITLE"`
	Subtitle             string   `yaml:"subtitle" envconfig:"SUBTITLE"`
	Source               string   `yaml:"source" envconfig:"SOURCE"`
	SampleSource         string   `yaml:"sample_source" envconfig:"SAMPLE_SOURCE"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	CacheTTL        time.Duration   `yaml:"cache_ttl" envconfig:"CACHE_TTL"`
	AllowedOrigins  []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// PublishConfig describes the optional S3-compatible destination for a run's outputs
type PublishConfig struct {
	Enabled         bool          `yaml:"enabled" envconfig:"ENABLED"`
	Bucket          string        `yaml:"bucket" envconfig:"BUCKET"`
	Prefix          string        `yaml:"prefix" envconfig:"PREFIX"`
	Region          string        `yaml:"region" envconfig:"REGION"`
	Endpoint        string        `yaml:"endpoint" envconfig:"ENDPOINT"`
	AccessKeyID     string        `yaml:"access_key_id" envconfig:"ACCESS_KEY_ID"`
	SecretAccessKey string        `yaml:"secret_access_key" envconfig:"SECRET_ACCESS_KEY"`
	UsePathStyle    bool          `yaml:"use_path_style" envconfig:"USE_PATH_STYLE"`
	MaxElapsed      time.Duration `yaml:"max_elapsed" envconfig:"MAX_ELAPSED"`
}

// TelemetryConfig controls tracing and metrics exporters
type TelemetryConfig struct {
	TracingEnabled bool    `yaml:"tracing_enabled" envconfig:"TRACING_ENABLED"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
	SampleRate     float64 `yaml:"sample_rate" envconfig:"SAMPLE_RATE"`
	MetricsEnabled bool    `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED"`
}

// Load builds the configuration from defaults, then the YAML file, then AGRO_* environment variables.
// An empty configFile falls back to the well-known locations.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Variables that are not set leave the file and default values untouched
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML document onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks the configuration and normalizes formats and logging options
func (c *Config) Validate() error {
	if c.Pipeline.OutputDir == "" {
		return fmt.Errorf("pipeline output directory must be set")
	}
	if c.Pipeline.Workers < 0 {
		return fmt.Errorf("pipeline workers must not be negative: %d", c.Pipeline.Workers)
	}
	if c.Pipeline.TopMunicipalities <= 0 {
		return fmt.Errorf("top municipalities must be positive: %d", c.Pipeline.TopMunicipalities)
	}
	for i, format := range c.Pipeline.Formats {
		format = strings.ToLower(strings.TrimSpace(format))
		if !isSupportedFormat(format) {
			return fmt.Errorf("unsupported output format %q", format)
		}
		c.Pipeline.Formats[i] = format
	}
	for _, division := range c.Pipeline.Divisions {
		if len(division) != 2 {
			return fmt.Errorf("CNAE division must have two digits: %q", division)
		}
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output != "console" && c.Logging.Output != "file" && c.Logging.Output != "both" {
		c.Logging.Output = "console"
	}
	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		c.Logging.FilePath = DefaultLogFile
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}

	if c.Publish.Enabled && c.Publish.Bucket == "" {
		return fmt.Errorf("publish bucket must be set when publishing is enabled")
	}

	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		return fmt.Errorf("trace sample rate must be within [0,1]: %v", c.Telemetry.SampleRate)
	}

	return nil
}

// HasFormat reports whether the given output format is enabled
func (p PipelineConfig) HasFormat(format string) bool {
	for _, f := range p.Formats {
		if f == format {
			return true
		}
	}
	return false
}

func isSupportedFormat(format string) bool {
	switch format {
	case FormatJSON, FormatCSV, FormatXLSX:
		return true
	}
	return false
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			OutputDir:         DefaultOutputDir,
			SourceIsOfficial:  true,
			State:             DefaultState,
			Divisions:         []string{"01", "02", "03"},
			TopMunicipalities: DefaultTopMunicipalities,
			Formats:           []string{FormatJSON},
			Title:             DefaultTitle,
			Subtitle:          DefaultSubtitle,
			Source:            DefaultSource,
			SampleSource:      DefaultSampleSource,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "console",
		},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			CacheTTL:        DefaultCacheTTL,
			AllowedOrigins:  []string{"*"},
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Publish: PublishConfig{
			Region:     "us-east-1",
			MaxElapsed: 2 * time.Minute,
		},
		Telemetry: TelemetryConfig{
			TraceExporter:  "stdout",
			SampleRate:     1.0,
			MetricsEnabled: true,
		},
	}
}
