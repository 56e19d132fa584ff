package config

import (
	"time"

	"github.com/Sumatoshi-tech/gamestory/pkg/dataset"
)

// Render defaults.
const (
	DefaultRenderTheme     = "light"
	DefaultRenderOutputDir = "story"
)

// Server defaults.
const (
	DefaultServerHost         = "127.0.0.1"
	DefaultServerPort         = 8080
	DefaultServerReadTimeout  = 10 * time.Second
	DefaultServerWriteTimeout = 30 * time.Second
	DefaultServerIdleTimeout  = 60 * time.Second
	DefaultServerMetrics      = true
)

// Logging defaults.
const (
	DefaultLoggingLevel = "info"
	DefaultLoggingJSON  = false
)

// Telemetry defaults.
const (
	DefaultTelemetrySampleRatio = 1.0
)

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	return &Config{
		Dataset: DatasetConfig{
			Columns: ColumnsConfig{
				Title:       dataset.DefaultTitleColumn,
				ReleaseDate: dataset.DefaultReleaseDateColumn,
				Developers:  dataset.DefaultDevelopersColumn,
				Publishers:  dataset.DefaultPublishersColumn,
			},
		},
		Render: RenderConfig{Theme: DefaultRenderTheme, OutputDir: DefaultRenderOutputDir},
		Server: ServerConfig{
			Host:         DefaultServerHost,
			Port:         DefaultServerPort,
			ReadTimeout:  DefaultServerReadTimeout,
			WriteTimeout: DefaultServerWriteTimeout,
			IdleTimeout:  DefaultServerIdleTimeout,
			Metrics:      DefaultServerMetrics,
		},
		Logging:   LoggingConfig{Level: DefaultLoggingLevel, JSON: DefaultLoggingJSON},
		Telemetry: TelemetryConfig{SampleRatio: DefaultTelemetrySampleRatio},
	}
}
