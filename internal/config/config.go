// Package config loads gamestory settings from defaults, an optional YAML
// file and GAMESTORY_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/Sumatoshi-tech/gamestory/pkg/dataset"
	"github.com/Sumatoshi-tech/gamestory/pkg/plotpage"
)

// Config is the top-level configuration struct for gamestory.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Dataset   DatasetConfig   `mapstructure:"dataset"`
	Story     StoryConfig     `mapstructure:"story"`
	Render    RenderConfig    `mapstructure:"render"`
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// DatasetConfig locates the release CSV and names its columns.
type DatasetConfig struct {
	Path    string        `mapstructure:"path"`
	Columns ColumnsConfig `mapstructure:"columns"`
}

// ColumnsConfig holds the header names of the columns the loader reads.
type ColumnsConfig struct {
	Title       string `mapstructure:"title"`
	ReleaseDate string `mapstructure:"release_date"`
	Developers  string `mapstructure:"developers"`
	Publishers  string `mapstructure:"publishers"`
}

// StoryConfig selects the narrative file. Empty uses the built-in story.
type StoryConfig struct {
	Path string `mapstructure:"path"`
}

// RenderConfig holds static page output settings.
type RenderConfig struct {
	Theme     string `mapstructure:"theme"`
	OutputDir string `mapstructure:"output_dir"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	Metrics      bool          `mapstructure:"metrics"`
}

// LoggingConfig holds slog settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	Environment  string  `mapstructure:"environment"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

// Sentinel errors for configuration validation.
var (
	// ErrInvalidPort indicates the server port is outside 1-65535.
	ErrInvalidPort = errors.New("server.port must be between 1 and 65535")
	// ErrInvalidTimeout indicates a negative server timeout.
	ErrInvalidTimeout = errors.New("server timeouts must be non-negative")
	// ErrInvalidTheme indicates an unknown render theme.
	ErrInvalidTheme = errors.New("render.theme must be light or dark")
	// ErrInvalidLogLevel indicates an unknown logging level.
	ErrInvalidLogLevel = errors.New("logging.level must be debug, info, warn or error")
	// ErrInvalidSampleRatio indicates a sample ratio outside [0, 1].
	ErrInvalidSampleRatio = errors.New("telemetry.sample_ratio must be between 0 and 1")
	// ErrEmptyColumn indicates a blank dataset column name.
	ErrEmptyColumn = errors.New("dataset.columns entries must not be empty")
)

const maxPort = 65535

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	err := c.validateDataset()
	if err != nil {
		return err
	}

	err = c.validateServer()
	if err != nil {
		return err
	}

	_, err = c.Theme()
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, c.Render.Theme)
	}

	_, err = c.LogLevel()
	if err != nil {
		return err
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return ErrInvalidSampleRatio
	}

	return nil
}

func (c *Config) validateDataset() error {
	cols := c.Dataset.Columns
	for _, name := range []string{cols.Title, cols.ReleaseDate, cols.Developers, cols.Publishers} {
		if strings.TrimSpace(name) == "" {
			return ErrEmptyColumn
		}
	}

	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > maxPort {
		return ErrInvalidPort
	}

	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Server.IdleTimeout < 0 {
		return ErrInvalidTimeout
	}

	return nil
}

// Columns returns the loader column mapping.
func (c *Config) Columns() dataset.Columns {
	return dataset.Columns{
		Title:       c.Dataset.Columns.Title,
		ReleaseDate: c.Dataset.Columns.ReleaseDate,
		Developers:  c.Dataset.Columns.Developers,
		Publishers:  c.Dataset.Columns.Publishers,
	}
}

// Theme returns the parsed render theme.
func (c *Config) Theme() (plotpage.Theme, error) {
	return plotpage.ParseTheme(c.Render.Theme)
}

// LogLevel returns the parsed slog level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level

	err := level.UnmarshalText([]byte(c.Logging.Level))
	if err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}

	return level, nil
}

// Addr returns the host:port the server listens on.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}
