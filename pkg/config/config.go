// Package config provides configuration loading and validation for the gitledger tool.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/gitledger/pkg/safeconv"
)

// Sentinel validation errors.
var (
	ErrInvalidLogLevel    = errors.New("invalid log level")
	ErrInvalidLogFormat   = errors.New("invalid log format")
	ErrInvalidMaxLineSize = errors.New("invalid max line size")
	ErrInvalidTimeout     = errors.New("graph timeout must be positive")
)

// Supported log output formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Default configuration values.
const (
	defaultLogLevel      = "info"
	defaultMaxLineSize   = "1MiB"
	defaultGraphURI      = "bolt://localhost:7687"
	defaultDatabaseClass = "Database"
	defaultGraphTimeout  = "30s"
	defaultSummaryTop    = 20
)

// Config holds all configuration for the gitledger tool.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Parse   ParseConfig   `mapstructure:"parse"`
	Graph   GraphConfig   `mapstructure:"graph"`
	Summary SummaryConfig `mapstructure:"summary"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SlogLevel parses the configured level name into a slog severity.
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level

	err := level.UnmarshalText([]byte(l.Level))
	if err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, l.Level)
	}

	return level, nil
}

// ParseConfig holds history parsing configuration.
type ParseConfig struct {
	MaxLineSize string `mapstructure:"max_line_size"`
}

// MaxLineSizeBytes resolves the configured line size limit into bytes.
// The value accepts human-readable sizes such as "1MiB" or "512KB".
func (p ParseConfig) MaxLineSizeBytes() (int, error) {
	parsed, err := humanize.ParseBytes(p.MaxLineSize)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMaxLineSize, p.MaxLineSize)
	}

	if parsed == 0 || parsed > uint64(safeconv.MaxInt) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMaxLineSize, p.MaxLineSize)
	}

	return int(parsed), nil
}

// GraphConfig holds call-graph database connection configuration.
type GraphConfig struct {
	URI           string        `mapstructure:"uri"`
	Username      string        `mapstructure:"username"`
	Password      string        `mapstructure:"password"`
	Database      string        `mapstructure:"database"`
	DatabaseClass string        `mapstructure:"database_class"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// SummaryConfig holds summary rendering configuration.
type SummaryConfig struct {
	Top int `mapstructure:"top"`
}

// LoadConfig loads configuration from file and environment variables.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	// Set defaults.
	setDefaults(viperCfg)

	// Read config file.
	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("gitledger")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")
		viperCfg.AddConfigPath("/etc/gitledger")
	}

	// Read environment variables.
	viperCfg.SetEnvPrefix("GITLEDGER")
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file.
	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validateConfig(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	// Logging defaults.
	viperCfg.SetDefault("logging.level", defaultLogLevel)
	viperCfg.SetDefault("logging.format", LogFormatText)

	// Parse defaults.
	viperCfg.SetDefault("parse.max_line_size", defaultMaxLineSize)

	// Graph defaults. Password and database default to empty so the keys
	// stay visible to environment variable overrides.
	viperCfg.SetDefault("graph.uri", defaultGraphURI)
	viperCfg.SetDefault("graph.username", "neo4j")
	viperCfg.SetDefault("graph.password", "")
	viperCfg.SetDefault("graph.database", "")
	viperCfg.SetDefault("graph.database_class", defaultDatabaseClass)
	viperCfg.SetDefault("graph.timeout", defaultGraphTimeout)

	// Summary defaults.
	viperCfg.SetDefault("summary.top", defaultSummaryTop)
}

// validateConfig validates the configuration.
func validateConfig(config *Config) error {
	_, levelErr := config.Logging.SlogLevel()
	if levelErr != nil {
		return levelErr
	}

	if config.Logging.Format != LogFormatText && config.Logging.Format != LogFormatJSON {
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, config.Logging.Format)
	}

	_, sizeErr := config.Parse.MaxLineSizeBytes()
	if sizeErr != nil {
		return sizeErr
	}

	if config.Graph.Timeout <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTimeout, config.Graph.Timeout)
	}

	return nil
}
